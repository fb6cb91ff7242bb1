package model

// LevelInfo summarizes all resting quantity at one price on one side.
type LevelInfo struct {
	Price    Price
	Quantity Quantity
}

// LevelInfos is an ordered slice of LevelInfo: bids in descending price,
// asks in ascending price.
type LevelInfos []LevelInfo

// BookSnapshot is a point-in-time view of both ladders.
type BookSnapshot struct {
	Bids LevelInfos
	Asks LevelInfos
}
