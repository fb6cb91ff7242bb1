package model

import "fmt"

// Order is one resting or incoming instruction with mutable
// remaining-quantity state.
//
// Invariants: 0 <= RemainingQty <= InitialQty; IsFilled() iff
// RemainingQty == 0. Only a MARKET order may have its price re-assigned,
// and only exactly once, via PromoteToGTC at admission.
type Order struct {
	Type         OrderType
	ID           OrderID
	Side         Side
	Price        Price
	InitialQty   Quantity
	RemainingQty Quantity
}

// NewOrder constructs a limit-priced order of the given type.
func NewOrder(typ OrderType, id OrderID, side Side, price Price, qty Quantity) *Order {
	return &Order{
		Type:         typ,
		ID:           id,
		Side:         side,
		Price:        price,
		InitialQty:   qty,
		RemainingQty: qty,
	}
}

// NewMarketOrder constructs an unpriced MARKET order.
func NewMarketOrder(id OrderID, side Side, qty Quantity) *Order {
	return NewOrder(Market, id, side, InvalidPrice, qty)
}

// FilledQty is the quantity traded so far.
func (o *Order) FilledQty() Quantity {
	return o.InitialQty.Sub(o.RemainingQty)
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.RemainingQty.IsZero()
}

// Fill decrements RemainingQty by qty. It is a fatal logic error — an
// overfill — to fill for more than the remaining quantity; see
// engine.InvariantViolation.
func (o *Order) Fill(qty Quantity) error {
	if qty.GreaterThan(o.RemainingQty) {
		return fmt.Errorf("order %s cannot be filled for %s, only %s remains", o.ID, qty, o.RemainingQty)
	}
	o.RemainingQty = o.RemainingQty.Sub(qty)
	return nil
}

// PromoteToGTC is legal only when the order is currently MARKET. It
// assigns the concrete price and converts the order to
// GoodTillCancel. It is a fatal logic error to call it on any other
// order type.
func (o *Order) PromoteToGTC(price Price) error {
	if o.Type != Market {
		return fmt.Errorf("order %s cannot have its price adjusted, only MARKET orders can", o.ID)
	}
	o.Price = price
	o.Type = GoodTillCancel
	return nil
}
