package memory

import (
	"sync"

	"github.com/PxPatel/matching-core/internal/types"
)

// InMemoryTradeStore keeps only the N most recent trades in memory
type InMemoryTradeStore struct {
	trades  []types.Trade
	maxSize int
	mutex   sync.RWMutex
}

// NewInMemoryTradeStore creates a new in-memory trade store with a size limit
func NewInMemoryTradeStore(maxSize int) *InMemoryTradeStore {
	if maxSize < 1 {
		maxSize = 1
	}
	return &InMemoryTradeStore{
		trades:  make([]types.Trade, 0, maxSize),
		maxSize: maxSize,
	}
}

func (s *InMemoryTradeStore) Save(trade types.Trade) error {
	return s.SaveBatch([]types.Trade{trade})
}

func (s *InMemoryTradeStore) SaveBatch(trades []types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trades = append(s.trades, trades...)

	// Trim to max size, compacting so the backing array does not grow forever
	if over := len(s.trades) - s.maxSize; over > 0 {
		n := copy(s.trades, s.trades[over:])
		s.trades = s.trades[:n]
	}

	return nil
}

func (s *InMemoryTradeStore) GetRecent(limit int) ([]types.Trade, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	// Clamp limit to actual size
	if limit <= 0 || limit > len(s.trades) {
		limit = len(s.trades)
	}

	start := len(s.trades) - limit
	result := make([]types.Trade, limit)
	copy(result, s.trades[start:])

	return result, nil
}

func (s *InMemoryTradeStore) LastSeq() (uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.trades) == 0 {
		return 0, nil
	}
	return s.trades[len(s.trades)-1].Seq, nil
}

func (s *InMemoryTradeStore) Close() error {
	// No cleanup needed for in-memory store
	return nil
}
