package types

// Trade represents a matched trade between a buy and sell order.
// Seq is the trade's 1-based position in the trade log.
type Trade struct {
	Seq         uint64   `json:"seq"`
	BuyOrderID  uint64   `json:"buy_order_id"`
	BuyPrice    int64    `json:"buy_price"`
	SellOrderID uint64   `json:"sell_order_id"`
	SellPrice   int64    `json:"sell_price"`
	Quantity    int64    `json:"quantity"`
	Aggressor   SideType `json:"aggressor"`
}

// Price returns the execution price, which is always the resting order's price
func (t Trade) Price() int64 {
	if t.Aggressor == Buy {
		return t.SellPrice
	}
	return t.BuyPrice
}

// MakerOrderID returns the id of the resting side of the trade
func (t Trade) MakerOrderID() uint64 {
	if t.Aggressor == Buy {
		return t.SellOrderID
	}
	return t.BuyOrderID
}
