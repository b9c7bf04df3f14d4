package matching

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/PxPatel/matching-core/internal/logger"
	"github.com/PxPatel/matching-core/internal/metrics"
	"github.com/PxPatel/matching-core/internal/storage"
	"github.com/PxPatel/matching-core/internal/types"
)

const (
	defaultQueueSize   = 1024
	publishQueueFactor = 4
)

// RunnerConfig wires a Runner to its collaborators. Store and Metrics may be nil.
type RunnerConfig struct {
	QueueSize int
	Store     storage.TradeStore
	Metrics   *metrics.Metrics
}

// Runner is the single owner of an Engine. Orders reach it through a bounded
// mailbox and are applied one at a time; new trades are handed to a separate
// publisher goroutine so storage latency never stalls matching.
type Runner struct {
	engine  *Engine
	store   storage.TradeStore
	metrics *metrics.Metrics

	orders  chan types.Order
	batches chan []types.Trade

	// closing turns submitters away; closed is closed once no submitter can
	// still be sending, and tells the match loop to drain.
	intake    sync.RWMutex
	closing   chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func NewRunner(engine *Engine, cfg RunnerConfig) *Runner {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Runner{
		engine:  engine,
		store:   cfg.Store,
		metrics: cfg.Metrics,
		orders:  make(chan types.Order, size),
		batches: make(chan []types.Trade, size*publishQueueFactor),
		closing: make(chan struct{}),
		closed:  make(chan struct{}),
	}
}

// Submit queues order, blocking until there is room, ctx is done or the
// runner is closed.
func (r *Runner) Submit(ctx context.Context, order types.Order) error {
	r.intake.RLock()
	defer r.intake.RUnlock()

	select {
	case <-r.closing:
		return ErrRunnerClosed
	default:
	}

	select {
	case r.orders <- order:
		return nil
	case <-r.closing:
		return ErrRunnerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit queues order without blocking
func (r *Runner) TrySubmit(order types.Order) error {
	r.intake.RLock()
	defer r.intake.RUnlock()

	select {
	case <-r.closing:
		return ErrRunnerClosed
	default:
	}

	select {
	case r.orders <- order:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops intake. Run finishes the orders already queued, publishes the
// resulting trades and returns. A Submit racing with Close either returns
// ErrRunnerClosed or queues an order that Run still applies.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.closing)
		r.intake.Lock()
		close(r.closed)
		r.intake.Unlock()
	})
}

// Run drives the engine until Close is called or ctx is canceled. The engine
// may be read by the caller once Run has returned.
func (r *Runner) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(r.batches)
		return r.matchLoop(gctx)
	})
	g.Go(func() error {
		r.publishLoop()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (r *Runner) matchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case order := <-r.orders:
			if err := r.process(ctx, order); err != nil {
				return err
			}
		case <-r.closed:
			return r.drain(ctx)
		}
	}
}

// drain applies whatever is still buffered after Close
func (r *Runner) drain(ctx context.Context) error {
	for {
		select {
		case order := <-r.orders:
			if err := r.process(ctx, order); err != nil {
				return err
			}
		default:
			logger.Info("Order runner drained", map[string]interface{}{
				"resting_orders": r.engine.Book().RestingCount(),
				"trades":         r.engine.Trades().Len(),
			})
			return nil
		}
	}
}

func (r *Runner) process(ctx context.Context, order types.Order) error {
	cursor := r.engine.Trades().Len()
	err := r.engine.ProcessOrder(order)

	result := "ok"
	if err != nil {
		result = rejectReason(err)
		logger.Warn("Order rejected", map[string]interface{}{
			"order_id": order.ID,
			"action":   order.Action.String(),
			"side":     order.Side.String(),
			"price":    order.Price,
			"quantity": order.Quantity,
			"error":    err,
		})
	}
	r.metrics.ObserveOrder(order.Action.String(), result)
	r.metrics.SetBookState(r.engine.Book().RestingCount(), len(r.orders))

	if r.engine.Trades().Len() == cursor {
		return nil
	}
	batch := r.engine.Trades().Since(cursor)
	var qty int64
	for _, trade := range batch {
		qty += trade.Quantity
	}
	r.metrics.ObserveTrades(len(batch), qty)

	select {
	case r.batches <- batch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) publishLoop() {
	for batch := range r.batches {
		if r.store == nil {
			continue
		}
		if err := r.store.SaveBatch(batch); err != nil {
			r.metrics.ObservePublishFailure()
			logger.Error("Failed to publish trades", map[string]interface{}{
				"first_seq": batch[0].Seq,
				"count":     len(batch),
				"error":     err,
			})
		}
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidOrder):
		return "invalid"
	case errors.Is(err, ErrUnsupportedAmend):
		return "unsupported_amend"
	case errors.Is(err, ErrDuplicateOrder):
		return "duplicate"
	case errors.Is(err, ErrUnknownAction):
		return "unknown_action"
	default:
		return "error"
	}
}
