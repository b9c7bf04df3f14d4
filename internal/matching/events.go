package matching

import "github.com/PxPatel/matching-core/internal/types"

// OrderStatus is the state an order moved into after an action was applied
type OrderStatus int

const (
	StatusResting OrderStatus = iota
	StatusPartiallyFilled
	StatusFilled
	StatusCanceled
	StatusAmended
	StatusRejected
)

func (s OrderStatus) String() string {
	switch s {
	case StatusResting:
		return "RESTING"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusFilled:
		return "FILLED"
	case StatusCanceled:
		return "CANCELED"
	case StatusAmended:
		return "AMENDED"
	case StatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// OrderEvent reports a per-order status change. Remaining is the quantity
// still open after the change.
type OrderEvent struct {
	OrderID   uint64
	Side      types.SideType
	Price     int64
	Remaining int64
	Status    OrderStatus
}

// EventHandler receives order events synchronously on the engine's goroutine.
// It must not call back into the engine.
type EventHandler func(OrderEvent)
