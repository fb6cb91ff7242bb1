package engine

import (
	"container/list"

	"github.com/google/btree"

	"github.com/2019UGEC100/limitbook/pkg/model"
)

// priceLevel is one price's FIFO bucket of resting orders. The bucket
// must stay non-empty while it exists — callers are responsible for
// removing it from its ladder the instant it drains.
type priceLevel struct {
	price  model.Price
	orders *list.List // of *model.Order, front = earliest arrival
}

func newPriceLevel(price model.Price) *priceLevel {
	return &priceLevel{price: price, orders: list.New()}
}

// ladder is a price-keyed ordered bucket map for one side of the book,
// backed by a B-tree so best-price lookup, insertion and deletion are all
// O(log n) without re-sorting on every read (the cost a plain map +
// sort.Slice pays).
type ladder struct {
	tree *btree.BTreeG[*priceLevel]
	side model.Side
}

// newLadder builds a ladder for side. Bid ladders iterate best (highest)
// price first; ask ladders iterate best (lowest) price first.
func newLadder(side model.Side) *ladder {
	var less btree.LessFunc[*priceLevel]
	if side == model.Buy {
		less = func(a, b *priceLevel) bool { return a.price.GreaterThan(b.price) }
	} else {
		less = func(a, b *priceLevel) bool { return a.price.LessThan(b.price) }
	}
	return &ladder{tree: btree.NewG(32, less), side: side}
}

// level returns the bucket at price, creating it if absent.
func (l *ladder) level(price model.Price) *priceLevel {
	probe := &priceLevel{price: price}
	if lvl, ok := l.tree.Get(probe); ok {
		return lvl
	}
	lvl := newPriceLevel(price)
	l.tree.ReplaceOrInsert(lvl)
	return lvl
}

// peek returns the bucket at price without creating it.
func (l *ladder) peek(price model.Price) (*priceLevel, bool) {
	return l.tree.Get(&priceLevel{price: price})
}

// removeIfEmpty deletes the bucket at price from the ladder if it has no
// resting orders left.
func (l *ladder) removeIfEmpty(price model.Price) {
	lvl, ok := l.peek(price)
	if !ok || lvl.orders.Len() > 0 {
		return
	}
	l.tree.Delete(&priceLevel{price: price})
}

// delete unconditionally removes the bucket at price from the ladder.
func (l *ladder) delete(price model.Price) {
	l.tree.Delete(&priceLevel{price: price})
}

// best returns the top-of-book bucket: the highest bid / lowest ask.
func (l *ladder) best() (*priceLevel, bool) {
	return l.tree.Min()
}

// worst returns the bucket furthest from top-of-book: the lowest bid /
// highest ask. Used to reprice a MARKET order against the opposite side.
func (l *ladder) worst() (*priceLevel, bool) {
	return l.tree.Max()
}

func (l *ladder) empty() bool {
	return l.tree.Len() == 0
}

// ascend walks buckets in the ladder's natural best-first order, calling
// fn for each; it stops early if fn returns false.
func (l *ladder) ascend(fn func(*priceLevel) bool) {
	l.tree.Ascend(func(lvl *priceLevel) bool { return fn(lvl) })
}

// snapshot builds LevelInfos in the ladder's natural order.
func (l *ladder) snapshot() model.LevelInfos {
	infos := make(model.LevelInfos, 0, l.tree.Len())
	l.tree.Ascend(func(lvl *priceLevel) bool {
		total := model.ZeroQuantity
		for e := lvl.orders.Front(); e != nil; e = e.Next() {
			total = total.Add(e.Value.(*model.Order).RemainingQty)
		}
		infos = append(infos, model.LevelInfo{Price: lvl.price, Quantity: total})
		return true
	})
	return infos
}
