package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func price(v int64) Price       { return decimal.NewFromInt(v) }
func quantity(v int64) Quantity { return decimal.NewFromInt(v) }

func TestOrderFillDecrementsRemaining(t *testing.T) {
	o := NewOrder(GoodTillCancel, "1", Buy, price(100), quantity(10))

	if err := o.Fill(quantity(4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.RemainingQty.Equal(quantity(6)) {
		t.Fatalf("expected remaining 6, got %s", o.RemainingQty)
	}
	if o.IsFilled() {
		t.Fatalf("order should not be filled yet")
	}
}

func TestOrderFillRejectsOverfill(t *testing.T) {
	o := NewOrder(GoodTillCancel, "1", Buy, price(100), quantity(10))

	if err := o.Fill(quantity(11)); err == nil {
		t.Fatalf("expected overfill error")
	}
	if !o.RemainingQty.Equal(quantity(10)) {
		t.Fatalf("overfill must not mutate remaining quantity, got %s", o.RemainingQty)
	}
}

func TestOrderIsFilledWhenRemainingZero(t *testing.T) {
	o := NewOrder(GoodTillCancel, "1", Sell, price(100), quantity(5))
	if err := o.Fill(quantity(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.IsFilled() {
		t.Fatalf("expected order to be filled")
	}
	if !o.FilledQty().Equal(quantity(5)) {
		t.Fatalf("expected filled qty 5, got %s", o.FilledQty())
	}
}

func TestPromoteToGTCOnlyLegalForMarket(t *testing.T) {
	mkt := NewMarketOrder("1", Buy, quantity(5))
	if err := mkt.PromoteToGTC(price(105)); err != nil {
		t.Fatalf("unexpected error promoting market order: %v", err)
	}
	if mkt.Type != GoodTillCancel {
		t.Fatalf("expected GOODTILLCANCEL after promotion, got %s", mkt.Type)
	}
	if !mkt.Price.Equal(price(105)) {
		t.Fatalf("expected price 105 after promotion, got %s", mkt.Price)
	}

	gtc := NewOrder(GoodTillCancel, "2", Buy, price(100), quantity(5))
	if err := gtc.PromoteToGTC(price(110)); err == nil {
		t.Fatalf("expected error promoting a non-MARKET order")
	}
}

func TestInvalidPriceIsNotAValidPrice(t *testing.T) {
	if IsValidPrice(InvalidPrice) {
		t.Fatalf("InvalidPrice must not be reported as valid")
	}
	if !IsValidPrice(price(100)) {
		t.Fatalf("a concrete price must be reported as valid")
	}
}
