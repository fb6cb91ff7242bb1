// Package engine implements the price-time priority limit order book
// CORE: the dual-index data structure (ladders, order index, level
// cache), the admission policies, the matching engine, and the
// end-of-day pruner for GOODFORDAY orders.
package engine

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/2019UGEC100/limitbook/pkg/model"
)

// OrderBook is the book façade: the single object external callers use.
// Every exported method that reads or mutates book state acquires mu for
// its full duration; none yields or suspends while holding it. Close and
// Metrics do not take mu.
type OrderBook struct {
	mu sync.Mutex

	bids  *ladder
	asks  *ladder
	index *orderIndex
	cache *levelCache

	cfg     Config
	logger  *zap.Logger
	metrics *bookMetrics

	pruner *pruner
}

// New constructs an empty book and starts its end-of-day pruner. Callers
// must eventually call Close to stop the pruner cleanly.
func New(cfg Config, logger *zap.Logger) *OrderBook {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = DefaultConfig().Location
	}

	ob := &OrderBook{
		bids:    newLadder(model.Buy),
		asks:    newLadder(model.Sell),
		index:   newOrderIndex(),
		cache:   newLevelCache(),
		cfg:     cfg,
		logger:  logger,
		metrics: newBookMetrics(),
	}
	ob.pruner = startPruner(ob, cfg, logger)
	return ob
}

// Close signals the pruner to stop and waits for it to exit.
func (ob *OrderBook) Close() error {
	ob.pruner.stop()
	return nil
}

// Metrics returns the book's private Prometheus registry. The book never
// serves this over HTTP itself; exposing it is left to an external
// collaborator.
func (ob *OrderBook) Metrics() *prometheus.Registry {
	return ob.metrics.registry
}

// SetLogger swaps the book's logger.
func (ob *OrderBook) SetLogger(logger *zap.Logger) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	ob.logger = logger
}

func (ob *OrderBook) ladderFor(side model.Side) *ladder {
	if side == model.Buy {
		return ob.bids
	}
	return ob.asks
}

// panicInvariant logs a fatal logic error at DPanic and panics: these
// are programmer bugs, not input errors, and must not be mistaken for
// an ordinary admission rejection.
func (ob *OrderBook) panicInvariant(op string, err error) {
	violation := newInvariantViolation(op, err)
	ob.logger.DPanic("invariant violation", zap.String("op", op), zap.Error(err))
	panic(violation)
}

// AddOrder is the book's admission entry point. It returns the trades
// produced by matching, in order; the result is empty if the order was
// rejected or was admitted without crossing anything.
func (ob *OrderBook) AddOrder(order *model.Order) []model.Trade {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.addOrderLocked(order)
}

func (ob *OrderBook) reject(order *model.Order, reason string) []model.Trade {
	ob.metrics.ordersRejected.WithLabelValues(string(order.Type), reason).Inc()
	ob.logger.Debug("order rejected",
		zap.String("id", string(order.ID)),
		zap.String("type", string(order.Type)),
		zap.String("reason", reason))
	return nil
}

func (ob *OrderBook) addOrderLocked(order *model.Order) []model.Trade {
	// 1. Duplicate id.
	if ob.index.has(order.ID) {
		return ob.reject(order, "duplicate_id")
	}

	// 2. MARKET conversion.
	if order.Type == model.Market {
		opposite := ob.ladderFor(order.Side.Opposite())
		worst, ok := opposite.worst()
		if !ok {
			return ob.reject(order, "no_opposite_liquidity")
		}
		if err := order.PromoteToGTC(worst.price); err != nil {
			ob.panicInvariant("PromoteToGTC", err)
		}
	}

	// 3. FILLANDKILL feasibility.
	if order.Type == model.FillAndKill && !ob.canMatch(order.Side, order.Price) {
		return ob.reject(order, "fak_infeasible")
	}

	// 4. FILLORKILL feasibility.
	if order.Type == model.FillOrKill && !ob.canFullyFill(order.Side, order.Price, order.InitialQty) {
		return ob.reject(order, "fok_infeasible")
	}

	// 5. Insert.
	ob.insertOrderLocked(order)
	ob.metrics.ordersAdmitted.WithLabelValues(string(order.Type)).Inc()
	ob.logger.Debug("order admitted",
		zap.String("id", string(order.ID)),
		zap.String("type", string(order.Type)),
		zap.String("side", string(order.Side)))

	// 6. Match.
	return ob.matchOrders()
}

// insertOrderLocked appends order to its own ladder/price bucket, records
// it in the order index, and applies the level-cache ADD delta.
func (ob *OrderBook) insertOrderLocked(order *model.Order) {
	lad := ob.ladderFor(order.Side)
	lvl := lad.level(order.Price)
	elem := lvl.orders.PushBack(order)
	ob.index.put(order, elem)
	ob.cache.apply(order.Price, order.RemainingQty, levelAdd)
}

// canMatch reports whether side/price can cross the opposite top of
// book.
func (ob *OrderBook) canMatch(side model.Side, price model.Price) bool {
	if side == model.Buy {
		lvl, ok := ob.asks.best()
		if !ok {
			return false
		}
		return price.GreaterThanOrEqual(lvl.price)
	}
	lvl, ok := ob.bids.best()
	if !ok {
		return false
	}
	return price.LessThanOrEqual(lvl.price)
}

// canFullyFill reports whether qty can be fully matched immediately at
// or better than price: the FILLORKILL admission pre-check. It walks
// the level-aggregate cache restricted to the feasibility cone between
// the opposite side's top of book and the order's own limit.
func (ob *OrderBook) canFullyFill(side model.Side, price model.Price, qty model.Quantity) bool {
	if !ob.canMatch(side, price) {
		return false
	}

	var threshold model.Price
	if side == model.Buy {
		lvl, _ := ob.asks.best()
		threshold = lvl.price
	} else {
		lvl, _ := ob.bids.best()
		threshold = lvl.price
	}

	remaining := qty
	for _, d := range ob.cache.all() {
		if side == model.Buy {
			if threshold.GreaterThan(d.price) || d.price.GreaterThan(price) {
				continue
			}
		} else {
			if threshold.LessThan(d.price) || d.price.LessThan(price) {
				continue
			}
		}

		if remaining.LessThanOrEqual(d.quantity) {
			return true
		}
		remaining = remaining.Sub(d.quantity)
	}
	return false
}

// CancelOrder removes one order. Unknown ids are silently ignored
// (idempotent).
func (ob *OrderBook) CancelOrder(id model.OrderID) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.cancelOrderLocked(id)
}

// CancelOrders removes many orders under a single critical section.
func (ob *OrderBook) CancelOrders(ids []model.OrderID) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	for _, id := range ids {
		ob.cancelOrderLocked(id)
	}
}

func (ob *OrderBook) cancelOrderLocked(id model.OrderID) {
	entry, ok := ob.index.get(id)
	if !ok {
		return
	}

	lad := ob.ladderFor(entry.order.Side)
	if lvl, ok := lad.peek(entry.order.Price); ok {
		lvl.orders.Remove(entry.position)
		lad.removeIfEmpty(entry.order.Price)
	}
	ob.index.delete(id)
	ob.cache.apply(entry.order.Price, entry.order.RemainingQty, levelRemove)

	ob.logger.Debug("order cancelled", zap.String("id", string(id)))
}

// ModifyOrder is "cancel then re-add", inheriting the original order's
// type. Re-admission re-runs every admission policy, so a modify loses
// time priority.
func (ob *OrderBook) ModifyOrder(id model.OrderID, side model.Side, price model.Price, qty model.Quantity) []model.Trade {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	entry, ok := ob.index.get(id)
	if !ok {
		return nil
	}
	origType := entry.order.Type

	ob.cancelOrderLocked(id)
	fresh := model.NewOrder(origType, id, side, price, qty)
	return ob.addOrderLocked(fresh)
}

// Size returns the number of resting orders.
func (ob *OrderBook) Size() int {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.index.size()
}

// Snapshot returns the aggregated per-price view of both ladders. Bids
// are in descending price, asks in ascending price.
func (ob *OrderBook) Snapshot() model.BookSnapshot {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return model.BookSnapshot{
		Bids: ob.bids.snapshot(),
		Asks: ob.asks.snapshot(),
	}
}

func levelActionFor(filled bool) levelAction {
	if filled {
		return levelRemove
	}
	return levelMatch
}

// matchOrders is the matching engine. It drains crossing top-of-book
// volume between the two ladders, emitting one Trade per fill, until no
// cross remains, then cleans up a lingering FILLANDKILL at the very top
// of either side.
func (ob *OrderBook) matchOrders() []model.Trade {
	var trades []model.Trade

	for {
		bidLvl, bidOK := ob.bids.best()
		askLvl, askOK := ob.asks.best()
		if !bidOK || !askOK {
			break
		}
		if bidLvl.price.LessThan(askLvl.price) {
			break
		}

		for bidLvl.orders.Len() > 0 && askLvl.orders.Len() > 0 {
			bidElem := bidLvl.orders.Front()
			askElem := askLvl.orders.Front()
			bid := bidElem.Value.(*model.Order)
			ask := askElem.Value.(*model.Order)

			qty := minQuantity(bid.RemainingQty, ask.RemainingQty)
			if err := bid.Fill(qty); err != nil {
				ob.panicInvariant("Fill bid", err)
			}
			if err := ask.Fill(qty); err != nil {
				ob.panicInvariant("Fill ask", err)
			}

			bidFilled := bid.IsFilled()
			askFilled := ask.IsFilled()

			if bidFilled {
				bidLvl.orders.Remove(bidElem)
				ob.index.delete(bid.ID)
			}
			if askFilled {
				askLvl.orders.Remove(askElem)
				ob.index.delete(ask.ID)
			}

			trades = append(trades, model.Trade{
				Bid: model.TradeLeg{OrderID: bid.ID, Price: bid.Price, Quantity: qty},
				Ask: model.TradeLeg{OrderID: ask.ID, Price: ask.Price, Quantity: qty},
			})

			ob.cache.apply(bid.Price, qty, levelActionFor(bidFilled))
			ob.cache.apply(ask.Price, qty, levelActionFor(askFilled))

			ob.metrics.tradesTotal.Inc()
			ob.metrics.tradedQuantity.Observe(quantityToFloat(qty))
			ob.logger.Debug("trade",
				zap.String("bid_id", string(bid.ID)), zap.String("ask_id", string(ask.ID)),
				zap.String("qty", qty.String()))
		}

		// The per-fill cache deltas above already drop a drained bucket's
		// share of the cache entry; erasing the entry outright here would
		// also drop volume resting at the same price on the other side.
		if bidLvl.orders.Len() == 0 {
			ob.bids.delete(bidLvl.price)
		}
		if askLvl.orders.Len() == 0 {
			ob.asks.delete(askLvl.price)
		}
	}

	ob.killLingeringFAK(ob.bids)
	ob.killLingeringFAK(ob.asks)

	return trades
}

// killLingeringFAK cancels a FILLANDKILL order found at the very top of
// lad, the only place one can linger after the match loop exhausts its
// counterparty volume mid-fill.
func (ob *OrderBook) killLingeringFAK(lad *ladder) {
	lvl, ok := lad.best()
	if !ok {
		return
	}
	front := lvl.orders.Front()
	if front == nil {
		return
	}
	order := front.Value.(*model.Order)
	if order.Type == model.FillAndKill {
		ob.cancelOrderLocked(order.ID)
	}
}

func minQuantity(a, b model.Quantity) model.Quantity {
	if a.LessThan(b) {
		return a
	}
	return b
}

func quantityToFloat(q model.Quantity) float64 {
	f, _ := q.Float64()
	return f
}
