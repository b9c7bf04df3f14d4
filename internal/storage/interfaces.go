package storage

import "github.com/PxPatel/matching-core/internal/types"

// TradeStore abstracts publication of executed trades.
// Implementations can be in-memory buffer, file log, Redis, PostgreSQL, etc.
// Stores receive trades in sequence order and must not reorder them.
type TradeStore interface {
	// Save persists a single trade
	Save(trade types.Trade) error

	// SaveBatch persists multiple trades (useful for database batch inserts)
	SaveBatch(trades []types.Trade) error

	// GetRecent retrieves the N most recent trades, oldest first
	GetRecent(limit int) ([]types.Trade, error)

	// Close releases any resources held by the store
	Close() error
}

// SeqTracker is implemented by stores that can report the highest trade
// sequence they hold, so a restarted engine can continue numbering after it.
type SeqTracker interface {
	LastSeq() (uint64, error)
}

// LastSeq returns the highest sequence held by store, or 0 when the store
// does not track sequences
func LastSeq(store TradeStore) (uint64, error) {
	tracker, ok := store.(SeqTracker)
	if !ok {
		return 0, nil
	}
	return tracker.LastSeq()
}
