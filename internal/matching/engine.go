package matching

import (
	"fmt"

	"github.com/PxPatel/matching-core/internal/types"
)

const (
	defaultArenaCapacity    = 1 << 14
	defaultTradeLogCapacity = 1 << 14
)

// Engine matches orders for a single instrument with price-time priority.
// It is synchronous and not safe for concurrent use: one goroutine owns it.
type Engine struct {
	book    *OrderBook
	trades  *TradeLog
	onEvent EventHandler
}

type engineOptions struct {
	arenaCapacity    int
	tradeLogCapacity int
	tradeSeqStart    uint64
	onEvent          EventHandler
}

// Option configures an Engine
type Option func(*engineOptions)

// WithArenaCapacity pre-sizes the resting order storage
func WithArenaCapacity(n int) Option {
	return func(o *engineOptions) { o.arenaCapacity = n }
}

// WithTradeLogCapacity pre-sizes the trade log
func WithTradeLogCapacity(n int) Option {
	return func(o *engineOptions) { o.tradeLogCapacity = n }
}

// WithTradeSeqStart numbers trades after lastSeq instead of from 1, so a
// restarted engine never reuses sequence numbers already published
func WithTradeSeqStart(lastSeq uint64) Option {
	return func(o *engineOptions) { o.tradeSeqStart = lastSeq }
}

// WithEventHandler registers a callback for per-order status changes
func WithEventHandler(h EventHandler) Option {
	return func(o *engineOptions) { o.onEvent = h }
}

func NewEngine(opts ...Option) *Engine {
	o := engineOptions{
		arenaCapacity:    defaultArenaCapacity,
		tradeLogCapacity: defaultTradeLogCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.onEvent == nil {
		o.onEvent = func(OrderEvent) {}
	}
	return &Engine{
		book:    newOrderBook(o.arenaCapacity),
		trades:  NewTradeLogAfter(o.tradeLogCapacity, o.tradeSeqStart),
		onEvent: o.onEvent,
	}
}

// Book exposes read access to the resting orders
func (e *Engine) Book() *OrderBook {
	return e.book
}

// Trades exposes the trade log. Callers must only read it.
func (e *Engine) Trades() *TradeLog {
	return e.trades
}

// ProcessOrder applies one action to the book. Cancels and amends of ids
// that are not resting are ignored and return nil.
func (e *Engine) ProcessOrder(order types.Order) error {
	switch order.Action {
	case types.New:
		return e.placeOrder(order)
	case types.Cancel:
		e.cancelOrder(order.ID)
		return nil
	case types.Amend:
		return e.amendOrder(order)
	default:
		return fmt.Errorf("%w: %d (order %d)", ErrUnknownAction, order.Action, order.ID)
	}
}

func (e *Engine) placeOrder(order types.Order) error {
	if err := order.Validate(); err != nil {
		e.reject(order)
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	if _, ok := e.book.index.find(order.ID); ok {
		e.reject(order)
		return fmt.Errorf("%w: %d", ErrDuplicateOrder, order.ID)
	}
	e.execute(order)
	return nil
}

// execute matches order against the opposite side and rests what is left
func (e *Engine) execute(order types.Order) {
	original := order.Quantity
	e.match(&order)

	status := StatusResting
	switch {
	case order.Quantity == 0:
		status = StatusFilled
	case order.Quantity < original:
		status = StatusPartiallyFilled
	}
	if order.Quantity > 0 {
		e.book.add(order)
	}
	e.emit(order, status)
}

func (e *Engine) match(order *types.Order) {
	opposite := e.book.side(order.Side.Opposite())
	for order.Quantity > 0 {
		level := opposite.bestLevel()
		if level == nil || !crosses(order.Side, order.Price, level.price) {
			return
		}
		e.matchLevel(order, level)
	}
}

// matchLevel fills order against level in FIFO order until one of them is
// exhausted. A drained level is removed by the last remove call.
func (e *Engine) matchLevel(order *types.Order, level *priceLevel) {
	for order.Quantity > 0 && !level.empty() {
		s := level.head
		resting := &e.book.arena.node(s).order

		fill := min(order.Quantity, resting.Quantity)
		order.Quantity -= fill
		resting.Quantity -= fill
		level.volume -= fill
		e.trades.Record(newTrade(*order, *resting, fill))

		if resting.Quantity > 0 {
			e.emit(*resting, StatusPartiallyFilled)
			continue
		}
		filled := e.book.remove(orderRef{slot: s, level: level})
		e.emit(filled, StatusFilled)
	}
}

func (e *Engine) cancelOrder(id uint64) {
	ref, ok := e.book.index.find(id)
	if !ok {
		return
	}
	canceled := e.book.remove(ref)
	e.emit(canceled, StatusCanceled)
}

// amendOrder applies a replacement price and quantity to a resting order.
// A price change re-enters the order as new and may trade. A quantity cut
// keeps queue position; an increase sends the order to the back of its level.
// An unset side keeps the resting side.
func (e *Engine) amendOrder(amend types.Order) error {
	ref, ok := e.book.index.find(amend.ID)
	if !ok {
		return nil
	}
	node := e.book.arena.node(ref.slot)
	current := node.order

	if amend.Side == types.NoActionSide {
		amend.Side = current.Side
	}
	if amend.Price <= 0 || amend.Quantity <= 0 {
		e.reject(amend)
		return fmt.Errorf("%w: amend of %d needs positive price and quantity", ErrInvalidOrder, amend.ID)
	}
	if amend.Side != current.Side {
		e.reject(amend)
		return fmt.Errorf("%w: order %d cannot change side", ErrUnsupportedAmend, amend.ID)
	}

	if amend.Price != current.Price {
		e.book.remove(ref)
		replacement := current
		replacement.Price = amend.Price
		replacement.Quantity = amend.Quantity
		e.emit(replacement, StatusAmended)
		e.execute(replacement)
		return nil
	}

	delta := amend.Quantity - current.Quantity
	if delta == 0 {
		return nil
	}
	node.order.Quantity = amend.Quantity
	ref.level.volume += delta
	if delta > 0 {
		ref.level.moveToBack(e.book.arena, ref.slot)
	}
	e.emit(node.order, StatusAmended)
	return nil
}

func (e *Engine) reject(order types.Order) {
	e.emit(order, StatusRejected)
}

func (e *Engine) emit(order types.Order, status OrderStatus) {
	e.onEvent(OrderEvent{
		OrderID:   order.ID,
		Side:      order.Side,
		Price:     order.Price,
		Remaining: order.Quantity,
		Status:    status,
	})
}

// crosses reports whether an incoming order at limit can trade at price
func crosses(side types.SideType, limit, price int64) bool {
	if side == types.Buy {
		return price <= limit
	}
	return price >= limit
}

func newTrade(taker, maker types.Order, quantity int64) types.Trade {
	trade := types.Trade{Quantity: quantity, Aggressor: taker.Side}
	buy, sell := taker, maker
	if taker.Side == types.Sell {
		buy, sell = maker, taker
	}
	trade.BuyOrderID, trade.BuyPrice = buy.ID, buy.Price
	trade.SellOrderID, trade.SellPrice = sell.ID, sell.Price
	return trade
}
