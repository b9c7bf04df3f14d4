package storage

import (
	"errors"

	"github.com/PxPatel/matching-core/internal/types"
)

// CompositeTradeStore combines multiple TradeStore implementations.
// Writes go to ALL stores, reads come from the FIRST store that has data.
// Example: CompositeTradeStore([memoryStore, fileStore]) writes to both,
// reads from memory (fast), and persists to file (durable).
type CompositeTradeStore struct {
	stores []TradeStore
}

// NewCompositeTradeStore creates a composite store from multiple stores
func NewCompositeTradeStore(stores ...TradeStore) *CompositeTradeStore {
	return &CompositeTradeStore{
		stores: stores,
	}
}

func (c *CompositeTradeStore) Save(trade types.Trade) error {
	var errs []error
	for _, store := range c.stores {
		if err := store.Save(trade); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *CompositeTradeStore) SaveBatch(trades []types.Trade) error {
	var errs []error
	for _, store := range c.stores {
		if err := store.SaveBatch(trades); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *CompositeTradeStore) GetRecent(limit int) ([]types.Trade, error) {
	// Read from first store that returns data
	for _, store := range c.stores {
		trades, err := store.GetRecent(limit)
		if err != nil {
			continue
		}
		if len(trades) > 0 {
			return trades, nil
		}
	}
	return []types.Trade{}, nil
}

// LastSeq is the highest sequence across every layer. Any failing layer
// fails the lookup.
func (c *CompositeTradeStore) LastSeq() (uint64, error) {
	var last uint64
	var errs []error
	for _, store := range c.stores {
		seq, err := LastSeq(store)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if seq > last {
			last = seq
		}
	}
	return last, errors.Join(errs...)
}

func (c *CompositeTradeStore) Close() error {
	var errs []error
	for _, store := range c.stores {
		if err := store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
