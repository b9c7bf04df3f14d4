package matching

import (
	"testing"

	"github.com/PxPatel/matching-core/internal/matching"
)

// eventRecorder collects order events emitted by an engine
type eventRecorder struct {
	events []matching.OrderEvent
}

func (r *eventRecorder) handle(ev matching.OrderEvent) {
	r.events = append(r.events, ev)
}

func (r *eventRecorder) statusesFor(id uint64) []matching.OrderStatus {
	var out []matching.OrderStatus
	for _, ev := range r.events {
		if ev.OrderID == id {
			out = append(out, ev.Status)
		}
	}
	return out
}

func newRecordingEngine() (*matching.Engine, *eventRecorder) {
	rec := &eventRecorder{}
	engine := matching.NewEngine(
		matching.WithArenaCapacity(64),
		matching.WithTradeLogCapacity(64),
		matching.WithEventHandler(rec.handle),
	)
	return engine, rec
}

// mustProcess applies orders and fails the test on the first error
func mustProcess(t *testing.T, engine *matching.Engine, orders ...matching.Order) {
	t.Helper()
	for _, order := range orders {
		if err := engine.ProcessOrder(order); err != nil {
			t.Fatalf("ProcessOrder(%+v) returned error: %v", order, err)
		}
	}
}

func checkBook(t *testing.T, engine *matching.Engine) {
	t.Helper()
	if err := engine.Book().CheckInvariants(); err != nil {
		t.Fatalf("book invariant violated: %v", err)
	}
}

func orderIDs(orders []matching.Order) []uint64 {
	ids := make([]uint64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}
