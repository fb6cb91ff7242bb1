// Package model holds the value types and the Order shared by the engine
// package: Price, Quantity, OrderID, Side, OrderType, Order, Trade and
// LevelInfo.
package model

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Price is a numeric value with a distinguished sentinel, InvalidPrice,
// used only to mark "not yet assigned" on a MARKET order prior to
// admission. Ordering is numeric.
type Price = decimal.Decimal

// Quantity is a non-negative numeric amount.
type Quantity = decimal.Decimal

// InvalidPrice is the sentinel carried by a MARKET order before it is
// promoted to GOODTILLCANCEL at admission. It is never a price an admitted
// order can legitimately rest at.
var InvalidPrice = decimal.NewFromInt(math.MinInt64)

// IsValidPrice reports whether p is a concrete, assigned price.
func IsValidPrice(p Price) bool {
	return !p.Equal(InvalidPrice)
}

// ZeroQuantity is the zero value for Quantity, exported for readability at
// call sites that build one up incrementally.
var ZeroQuantity = decimal.Zero

// OrderID opaquely identifies an order, unique over the lifetime of a book.
type OrderID string

// NewOrderID generates a fresh, practically-unique order id. Callers may
// also supply their own ids; the book only requires uniqueness.
func NewOrderID() OrderID {
	return OrderID(uuid.NewString())
}

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType is the lifetime/execution flavor of an order.
type OrderType string

const (
	// GoodTillCancel rests until filled or cancelled.
	GoodTillCancel OrderType = "GOODTILLCANCEL"
	// Market is repriced to the worst resting opposite price on
	// admission and then treated as GoodTillCancel; rejected if the
	// opposite side is empty.
	Market OrderType = "MARKET"
	// FillAndKill matches what it can immediately; any unfilled
	// remainder is cancelled.
	FillAndKill OrderType = "FILLANDKILL"
	// FillOrKill is admitted only if it can be fully filled
	// immediately; otherwise it is dropped untouched.
	FillOrKill OrderType = "FILLORKILL"
	// GoodForDay rests like GoodTillCancel but is cancelled by the
	// end-of-day pruner at the configured cutoff.
	GoodForDay OrderType = "GOODFORDAY"
)
