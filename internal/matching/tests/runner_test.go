package matching

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/matching-core/internal/matching"
	"github.com/PxPatel/matching-core/internal/metrics"
	"github.com/PxPatel/matching-core/internal/storage/memory"
	"github.com/PxPatel/matching-core/internal/types"
)

// flakyStore fails the first batch it sees and records the rest
type flakyStore struct {
	mu      sync.Mutex
	failed  bool
	batches [][]types.Trade
}

func (s *flakyStore) Save(trade types.Trade) error { return s.SaveBatch([]types.Trade{trade}) }

func (s *flakyStore) SaveBatch(trades []types.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.failed {
		s.failed = true
		return errors.New("store unavailable")
	}
	s.batches = append(s.batches, trades)
	return nil
}

func (s *flakyStore) GetRecent(int) ([]types.Trade, error) { return nil, nil }
func (s *flakyStore) Close() error { return nil }

func runAsync(ctx context.Context, t *testing.T, runner *matching.Runner) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()
	return done
}

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
		return nil
	}
}

// TestRunnerPublishesEveryTradeInOrder tests the runner end to end
func TestRunnerPublishesEveryTradeInOrder(t *testing.T) {
	engine := matching.NewEngine()
	store := memory.NewInMemoryTradeStore(100)
	m := metrics.New("test")
	runner := matching.NewRunner(engine, matching.RunnerConfig{QueueSize: 4, Store: store, Metrics: m})

	done := runAsync(context.Background(), t, runner)

	ctx := context.Background()
	for id := uint64(1); id <= 10; id++ {
		require.NoError(t, runner.Submit(ctx, matching.NewLimit(id, matching.Sell, 100+int64(id%3), 2)))
	}
	require.NoError(t, runner.Submit(ctx, matching.NewLimit(50, matching.Buy, 102, 25)))
	require.NoError(t, runner.Submit(ctx, matching.NewAmend(50, matching.Buy, 102, 0)))

	runner.Close()
	require.NoError(t, waitRun(t, done))

	published, err := store.GetRecent(0)
	require.NoError(t, err)
	assert.Equal(t, engine.Trades().All(), published)
	for i, trade := range published {
		assert.Equal(t, uint64(i+1), trade.Seq)
	}

	assert.Equal(t, 11.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues("NEW", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues("AMEND", "invalid")))
	assert.Equal(t, float64(len(published)), testutil.ToFloat64(m.TradesTotal))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.TradedQuantity))
	assert.Equal(t, float64(engine.Book().RestingCount()), testutil.ToFloat64(m.RestingOrders))
	checkBook(t, engine)
}

// TestRunnerPublishFailureDoesNotStopMatching tests that storage errors are
// counted and matching carries on
func TestRunnerPublishFailureDoesNotStopMatching(t *testing.T) {
	engine := matching.NewEngine()
	store := &flakyStore{}
	m := metrics.New("test")
	runner := matching.NewRunner(engine, matching.RunnerConfig{QueueSize: 8, Store: store, Metrics: m})

	done := runAsync(context.Background(), t, runner)
	ctx := context.Background()
	require.NoError(t, runner.Submit(ctx, matching.NewLimit(1, matching.Sell, 100, 1)))
	require.NoError(t, runner.Submit(ctx, matching.NewLimit(2, matching.Buy, 100, 1)))
	require.NoError(t, runner.Submit(ctx, matching.NewLimit(3, matching.Sell, 100, 1)))
	require.NoError(t, runner.Submit(ctx, matching.NewLimit(4, matching.Buy, 100, 1)))
	runner.Close()
	require.NoError(t, waitRun(t, done))

	assert.Equal(t, 2, engine.Trades().Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishFailures))
	require.Len(t, store.batches, 1)
	assert.Equal(t, uint64(2), store.batches[0][0].Seq)
}

// TestRunnerTrySubmitQueueFull tests the non-blocking submit path
func TestRunnerTrySubmitQueueFull(t *testing.T) {
	runner := matching.NewRunner(matching.NewEngine(), matching.RunnerConfig{QueueSize: 2})

	require.NoError(t, runner.TrySubmit(matching.NewLimit(1, matching.Buy, 100, 1)))
	require.NoError(t, runner.TrySubmit(matching.NewLimit(2, matching.Buy, 100, 1)))
	assert.ErrorIs(t, runner.TrySubmit(matching.NewLimit(3, matching.Buy, 100, 1)), matching.ErrQueueFull)
}

// TestRunnerSubmitTimeout tests that a blocked submit honours its context
func TestRunnerSubmitTimeout(t *testing.T) {
	runner := matching.NewRunner(matching.NewEngine(), matching.RunnerConfig{QueueSize: 1})
	require.NoError(t, runner.TrySubmit(matching.NewLimit(1, matching.Buy, 100, 1)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := runner.Submit(ctx, matching.NewLimit(2, matching.Buy, 100, 1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestRunnerClosedRejectsSubmissions tests intake after Close
func TestRunnerClosedRejectsSubmissions(t *testing.T) {
	engine := matching.NewEngine()
	runner := matching.NewRunner(engine, matching.RunnerConfig{QueueSize: 4})
	require.NoError(t, runner.TrySubmit(matching.NewLimit(1, matching.Buy, 100, 1)))

	runner.Close()
	runner.Close()

	assert.ErrorIs(t, runner.Submit(context.Background(), matching.NewLimit(2, matching.Buy, 100, 1)), matching.ErrRunnerClosed)
	assert.ErrorIs(t, runner.TrySubmit(matching.NewLimit(3, matching.Buy, 100, 1)), matching.ErrRunnerClosed)

	// Orders queued before Close are still applied
	require.NoError(t, runner.Run(context.Background()))
	assert.Equal(t, 1, engine.Book().RestingCount())
}

// TestRunnerStopsOnContextCancel tests shutdown through the context
func TestRunnerStopsOnContextCancel(t *testing.T) {
	runner := matching.NewRunner(matching.NewEngine(), matching.RunnerConfig{})
	ctx, cancel := context.WithCancel(context.Background())

	done := runAsync(ctx, t, runner)
	cancel()
	assert.NoError(t, waitRun(t, done))
}

// TestRunnerCloseNeverLosesAcceptedOrders tests that every order accepted while
// Close races with submitters is applied before Run returns
func TestRunnerCloseNeverLosesAcceptedOrders(t *testing.T) {
	const submitters = 8
	const perSubmitter = 50

	for iter := 0; iter < 200; iter++ {
		engine := matching.NewEngine()
		runner := matching.NewRunner(engine, matching.RunnerConfig{QueueSize: 16})
		done := runAsync(context.Background(), t, runner)

		var accepted atomic.Int64
		var wg sync.WaitGroup
		for g := 0; g < submitters; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < perSubmitter; i++ {
					id := uint64(g*perSubmitter + i + 1)
					ctx, cancel := context.WithTimeout(context.Background(), time.Second)
					err := runner.Submit(ctx, matching.NewLimit(id, matching.Buy, 100, 1))
					cancel()
					if err == nil {
						accepted.Add(1)
						continue
					}
					if errors.Is(err, matching.ErrRunnerClosed) {
						return
					}
					t.Errorf("unexpected submit error: %v", err)
					return
				}
			}(g)
		}

		runner.Close()
		wg.Wait()
		require.NoError(t, waitRun(t, done))

		require.Equal(t, int(accepted.Load()), engine.Book().RestingCount(), "iteration %d", iter)
		require.NoError(t, engine.Book().CheckInvariants())
	}
}
