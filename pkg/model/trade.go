package model

// TradeLeg is one side's view of a single fill: the resting or incoming
// order's own id, its own resting price, and the traded quantity.
type TradeLeg struct {
	OrderID  OrderID
	Price    Price
	Quantity Quantity
}

// Trade is an immutable pair of bid-side and ask-side fills produced by
// the matching engine. Each leg carries its own resting price — not a
// single agreed cross price — because price-time priority matching can
// pair an incoming order against a resting order at a better price.
type Trade struct {
	Bid TradeLeg
	Ask TradeLeg
}
