package matching

import "github.com/PxPatel/matching-core/internal/types"

// TradeLog is the append-only record of executed trades. Entries are never
// modified once recorded; reads hand out copies.
type TradeLog struct {
	trades  []types.Trade
	lastSeq uint64
}

// NewTradeLog creates a trade log with room for capacity trades
func NewTradeLog(capacity int) *TradeLog {
	return NewTradeLogAfter(capacity, 0)
}

// NewTradeLogAfter creates a trade log whose first trade is stamped
// lastSeq+1, continuing a sequence already published by an earlier run.
func NewTradeLogAfter(capacity int, lastSeq uint64) *TradeLog {
	if capacity < 0 {
		capacity = 0
	}
	return &TradeLog{trades: make([]types.Trade, 0, capacity), lastSeq: lastSeq}
}

// Record appends a trade and stamps it with its sequence number
func (l *TradeLog) Record(trade types.Trade) types.Trade {
	trade.Seq = l.lastSeq + uint64(len(l.trades)+1)
	l.trades = append(l.trades, trade)
	return trade
}

// Len returns the number of trades recorded so far
func (l *TradeLog) Len() int {
	return len(l.trades)
}

// LastSeq returns the sequence number of the newest trade, or the starting
// point when nothing has been recorded yet
func (l *TradeLog) LastSeq() uint64 {
	return l.lastSeq + uint64(len(l.trades))
}

// All returns a copy of every trade in execution order
func (l *TradeLog) All() []types.Trade {
	return l.Since(0)
}

// Since returns a copy of the trades recorded at index i and later.
// Out of range indexes yield an empty slice.
func (l *TradeLog) Since(i int) []types.Trade {
	if i < 0 {
		i = 0
	}
	if i >= len(l.trades) {
		return []types.Trade{}
	}
	out := make([]types.Trade, len(l.trades)-i)
	copy(out, l.trades[i:])
	return out
}
