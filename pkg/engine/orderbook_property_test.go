package engine

import (
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/2019UGEC100/limitbook/pkg/model"
)

// checkInvariants verifies the book's core structural invariants hold
// for ob's current state: non-empty buckets, index/ladder agreement,
// a cache with no stale zero-count entries, and no resting cross.
func checkInvariants(t *rapid.T, ob *OrderBook) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	// Invariant 1 & 2: every ladder bucket is non-empty, and every order
	// in the index appears exactly once in its recorded bucket.
	seen := make(map[model.OrderID]bool)
	checkSide := func(lad *ladder) {
		lad.ascend(func(lvl *priceLevel) bool {
			if lvl.orders.Len() == 0 {
				t.Fatalf("empty bucket left in ladder at price %s", lvl.price)
			}
			for e := lvl.orders.Front(); e != nil; e = e.Next() {
				o := e.Value.(*model.Order)
				if seen[o.ID] {
					t.Fatalf("order %s appears twice across ladders", o.ID)
				}
				seen[o.ID] = true
				entry, ok := ob.index.get(o.ID)
				if !ok {
					t.Fatalf("order %s in ladder but missing from index", o.ID)
				}
				if entry.order != o {
					t.Fatalf("index entry for %s does not match ladder order", o.ID)
				}
			}
			return true
		})
	}
	checkSide(ob.bids)
	checkSide(ob.asks)

	if len(seen) != len(ob.index.entries) {
		t.Fatalf("index has %d entries but ladders contain %d orders", len(ob.index.entries), len(seen))
	}

	// Invariant 3 (zero-count part only): no zero-count cache entry
	// survives.
	for _, d := range ob.cache.all() {
		if d.count == 0 {
			t.Fatalf("cache entry at %s has count 0 but was retained", d.price)
		}
	}

	// Invariant 4: never crossed at quiescence.
	bestBid, hasBid := ob.bids.best()
	bestAsk, hasAsk := ob.asks.best()
	if hasBid && hasAsk && bestBid.price.GreaterThanOrEqual(bestAsk.price) {
		t.Fatalf("book crossed: best bid %s >= best ask %s", bestBid.price, bestAsk.price)
	}

	// Invariant 5: size equals index size.
	if ob.index.size() != len(seen) {
		t.Fatalf("Size() inconsistent with ladder contents")
	}
}

func TestPropertyInvariantsHoldAfterRandomOperations(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ob := New(DefaultConfig(), zap.NewNop())
		defer ob.Close()

		ids := []model.OrderID{"1", "2", "3", "4", "5"}
		orderTypes := []model.OrderType{
			model.GoodTillCancel, model.Market, model.FillAndKill,
			model.FillOrKill, model.GoodForDay,
		}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			op := rapid.SampledFrom([]string{"add", "cancel", "modify"}).Draw(t, "op")
			id := rapid.SampledFrom(ids).Draw(t, "id")

			switch op {
			case "add":
				typ := rapid.SampledFrom(orderTypes).Draw(t, "type")
				side := rapid.SampledFrom([]model.Side{model.Buy, model.Sell}).Draw(t, "side")
				price := rapid.Int64Range(90, 110).Draw(t, "price")
				qty := rapid.Int64Range(1, 20).Draw(t, "qty")
				ob.AddOrder(order(typ, id, side, price, qty))
			case "cancel":
				ob.CancelOrder(id)
			case "modify":
				side := rapid.SampledFrom([]model.Side{model.Buy, model.Sell}).Draw(t, "side")
				price := rapid.Int64Range(90, 110).Draw(t, "price")
				qty := rapid.Int64Range(1, 20).Draw(t, "qty")
				ob.ModifyOrder(id, side, p(price), q(qty))
			}

			checkInvariants(t, ob)
		}
	})
}

func TestPropertyCancelIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ob := New(DefaultConfig(), zap.NewNop())
		defer ob.Close()

		price := rapid.Int64Range(90, 110).Draw(t, "price")
		qty := rapid.Int64Range(1, 20).Draw(t, "qty")
		ob.AddOrder(order(model.GoodTillCancel, "1", model.Buy, price, qty))

		ob.CancelOrder("1")
		sizeOnce := ob.Size()
		snapOnce := ob.Snapshot()

		ob.CancelOrder("1")
		sizeTwice := ob.Size()
		snapTwice := ob.Snapshot()

		if sizeOnce != sizeTwice {
			t.Fatalf("second cancel changed size: %d vs %d", sizeOnce, sizeTwice)
		}
		if len(snapOnce.Bids) != len(snapTwice.Bids) || len(snapOnce.Asks) != len(snapTwice.Asks) {
			t.Fatalf("second cancel changed book shape")
		}
	})
}

func TestPropertyFillOrKillAtomicity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ob := New(DefaultConfig(), zap.NewNop())
		defer ob.Close()

		restingQty := rapid.Int64Range(1, 10).Draw(t, "restingQty")
		ob.AddOrder(order(model.GoodTillCancel, "1", model.Sell, 100, restingQty))

		before := ob.Snapshot()
		beforeSize := ob.Size()

		fokQty := rapid.Int64Range(1, 10).Draw(t, "fokQty")
		trades := ob.AddOrder(order(model.FillOrKill, "2", model.Buy, 100, fokQty))

		if fokQty > restingQty {
			if len(trades) != 0 {
				t.Fatalf("expected FOK to be rejected, got %d trades", len(trades))
			}
			after := ob.Snapshot()
			if ob.Size() != beforeSize {
				t.Fatalf("rejected FOK changed book size")
			}
			if len(after.Bids) != len(before.Bids) || len(after.Asks) != len(before.Asks) {
				t.Fatalf("rejected FOK changed ladder shape")
			}
		}
	})
}
