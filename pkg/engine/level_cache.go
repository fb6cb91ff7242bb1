package engine

import (
	"github.com/2019UGEC100/limitbook/pkg/model"
)

// levelAction is the delta kind applied to the level-aggregate cache on a
// mutation, mirroring original_source/order_book.hpp's LevelData::Action.
type levelAction int

const (
	levelAdd levelAction = iota
	levelRemove
	levelMatch
)

// levelData is the per-price (count, totalQuantity) mirror of both
// ladders used by the FILLORKILL pre-check: component C6.
type levelData struct {
	price    model.Price
	count    int
	quantity model.Quantity
}

// levelCache maps a price (by its normalized decimal string, since
// decimal.Decimal is not itself comparable as a map key) to its
// levelData. An entry with count == 0 is never retained.
type levelCache struct {
	data map[string]*levelData
}

func newLevelCache() *levelCache {
	return &levelCache{data: make(map[string]*levelData)}
}

// priceKey canonicalizes p into a map key independent of the decimal's
// internal exponent, so e.g. a price built as NewFromInt(100) and one
// built as NewFromFloat(100.00) collide on the same cache entry.
func priceKey(p model.Price) string {
	return p.Rat().RatString()
}

// apply folds a mutation of qty at price into the cache, using the
// signed-intermediate delta scheme: count moves by +1 on ADD, -1 on
// REMOVE, 0 on MATCH; quantity moves by +qty on ADD and -qty otherwise.
// An entry that reaches count == 0 is deleted.
func (c *levelCache) apply(price model.Price, qty model.Quantity, action levelAction) {
	key := priceKey(price)
	d, ok := c.data[key]
	if !ok {
		d = &levelData{price: price, quantity: model.ZeroQuantity}
		c.data[key] = d
	}

	switch action {
	case levelAdd:
		d.count++
		d.quantity = d.quantity.Add(qty)
	case levelRemove:
		d.count--
		d.quantity = d.quantity.Sub(qty)
	case levelMatch:
		d.quantity = d.quantity.Sub(qty)
	}

	if d.count == 0 && d.quantity.IsZero() {
		delete(c.data, key)
	}
}

func (c *levelCache) get(price model.Price) (*levelData, bool) {
	d, ok := c.data[priceKey(price)]
	return d, ok
}

// deleteAt unconditionally removes any cache entry at price, whatever
// its count. The matching engine does not call it when a bucket drains:
// the entry may still hold the other side's volume at that price.
func (c *levelCache) deleteAt(price model.Price) {
	delete(c.data, priceKey(price))
}

// all returns every retained levelData, in no particular order — the
// FILLORKILL pre-check sums over all qualifying entries, and since
// addition is commutative the iteration order does not affect
// correctness.
func (c *levelCache) all() []*levelData {
	out := make([]*levelData, 0, len(c.data))
	for _, d := range c.data {
		out = append(out, d)
	}
	return out
}
