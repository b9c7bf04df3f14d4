package matching

import "github.com/PxPatel/matching-core/internal/types"

// Re-export types so callers driving the engine need a single import
type (
	Order      = types.Order
	Trade      = types.Trade
	SideType   = types.SideType
	ActionType = types.ActionType
)

// Re-export constants
const (
	Buy  = types.Buy
	Sell = types.Sell

	New    = types.New
	Amend  = types.Amend
	Cancel = types.Cancel
)

// Re-export constructor
var NewOrder = types.NewOrder

// NewLimit builds a New action, the common case in tests and benchmarks
func NewLimit(id uint64, side SideType, price, quantity int64) Order {
	return types.NewOrder(id, types.New, side, price, quantity)
}

// NewCancel builds a Cancel action for id
func NewCancel(id uint64) Order {
	return Order{ID: id, Action: types.Cancel}
}

// NewAmend builds an Amend action carrying the replacement price and quantity
func NewAmend(id uint64, side SideType, price, quantity int64) Order {
	return types.NewOrder(id, types.Amend, side, price, quantity)
}
