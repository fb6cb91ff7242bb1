package engine

import (
	"container/list"

	"github.com/2019UGEC100/limitbook/pkg/model"
)

// indexEntry is the order index's record: the order plus its stable
// position inside its bucket. The *list.Element is never invalidated by
// insertions or deletions elsewhere in the same bucket — the property
// the bucket representation needs in order to keep cancel and modify O(1).
type indexEntry struct {
	order    *model.Order
	position *list.Element
}

// orderIndex is the flat map from OrderID to (order, position-in-bucket):
// component C5.
type orderIndex struct {
	entries map[model.OrderID]indexEntry
}

func newOrderIndex() *orderIndex {
	return &orderIndex{entries: make(map[model.OrderID]indexEntry)}
}

func (idx *orderIndex) has(id model.OrderID) bool {
	_, ok := idx.entries[id]
	return ok
}

func (idx *orderIndex) get(id model.OrderID) (indexEntry, bool) {
	e, ok := idx.entries[id]
	return e, ok
}

func (idx *orderIndex) put(order *model.Order, position *list.Element) {
	idx.entries[order.ID] = indexEntry{order: order, position: position}
}

func (idx *orderIndex) delete(id model.OrderID) {
	delete(idx.entries, id)
}

func (idx *orderIndex) size() int {
	return len(idx.entries)
}
