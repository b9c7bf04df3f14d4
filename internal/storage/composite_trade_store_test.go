package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/matching-core/internal/storage/memory"
	"github.com/PxPatel/matching-core/internal/types"
)

// failingStore rejects every write and read
type failingStore struct {
	closed bool
}

func (f *failingStore) Save(types.Trade) error { return errors.New("save failed") }
func (f *failingStore) SaveBatch([]types.Trade) error { return errors.New("batch failed") }
func (f *failingStore) GetRecent(int) ([]types.Trade, error) {
	return nil, errors.New("read failed")
}
func (f *failingStore) Close() error {
	f.closed = true
	return nil
}

func TestCompositeWritesToAllStores(t *testing.T) {
	a := memory.NewInMemoryTradeStore(10)
	b := memory.NewInMemoryTradeStore(10)
	c := NewCompositeTradeStore(a, b)

	require.NoError(t, c.SaveBatch([]types.Trade{{Seq: 1}, {Seq: 2}}))
	require.NoError(t, c.Save(types.Trade{Seq: 3}))

	for _, store := range []*memory.InMemoryTradeStore{a, b} {
		got, err := store.GetRecent(0)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	}
}

func TestCompositeKeepsWritingPastFailures(t *testing.T) {
	bad := &failingStore{}
	good := memory.NewInMemoryTradeStore(10)
	c := NewCompositeTradeStore(bad, good)

	err := c.SaveBatch([]types.Trade{{Seq: 1}})
	assert.Error(t, err)

	got, err := c.GetRecent(5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].Seq)

	require.NoError(t, c.Close())
	assert.True(t, bad.closed)
}

func TestCompositeEmptyRead(t *testing.T) {
	c := NewCompositeTradeStore(&failingStore{})
	got, err := c.GetRecent(5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// seqFailStore writes fine but cannot report its sequence
type seqFailStore struct {
	failingStore
}

func (s *seqFailStore) LastSeq() (uint64, error) { return 0, errors.New("seq unavailable") }

func TestCompositeLastSeqTakesHighestLayer(t *testing.T) {
	a := memory.NewInMemoryTradeStore(10)
	b := memory.NewInMemoryTradeStore(10)
	require.NoError(t, a.SaveBatch([]types.Trade{{Seq: 4}}))
	require.NoError(t, b.SaveBatch([]types.Trade{{Seq: 9}}))

	// failingStore does not track sequences and is skipped
	last, err := LastSeq(NewCompositeTradeStore(a, &failingStore{}, b))
	require.NoError(t, err)
	assert.Equal(t, uint64(9), last)

	_, err = LastSeq(NewCompositeTradeStore(a, &seqFailStore{}))
	assert.Error(t, err)
}

func TestLastSeqUntrackedStore(t *testing.T) {
	last, err := LastSeq(&failingStore{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), last)
}
