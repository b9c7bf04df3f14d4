package types

import (
	"fmt"
	"strings"
)

// SideType identifies which side of the book an order belongs to
type SideType int

const (
	NoActionSide SideType = iota
	Buy
	Sell
)

// ActionType identifies what the caller wants done with an order
type ActionType int

const (
	NoAction ActionType = iota
	New
	Amend
	Cancel
)

func (s SideType) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the side an incoming order of this side matches against
func (s SideType) Opposite() SideType {
	switch s {
	case Buy:
		return Sell
	case Sell:
		return Buy
	default:
		return NoActionSide
	}
}

func (a ActionType) String() string {
	switch a {
	case New:
		return "NEW"
	case Amend:
		return "AMEND"
	case Cancel:
		return "CANCEL"
	default:
		return "UNKNOWN"
	}
}

// ParseSide accepts "buy"/"sell" in any case
func ParseSide(s string) (SideType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	default:
		return NoActionSide, fmt.Errorf("unknown side %q", s)
	}
}

// ParseAction accepts "new"/"amend"/"cancel" in any case
func ParseAction(s string) (ActionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NEW":
		return New, nil
	case "AMEND":
		return Amend, nil
	case "CANCEL":
		return Cancel, nil
	default:
		return NoAction, fmt.Errorf("unknown action %q", s)
	}
}

// Order is a single order action handed to the matching core.
// Price is in integer ticks; Quantity is the remaining size.
type Order struct {
	ID       uint64
	Side     SideType
	Price    int64
	Quantity int64
	Action   ActionType
}

// NewOrder creates an order value
func NewOrder(id uint64, action ActionType, side SideType, price, quantity int64) Order {
	return Order{
		ID:       id,
		Side:     side,
		Price:    price,
		Quantity: quantity,
		Action:   action,
	}
}

// Validate checks the fields a New or Amend needs before it may touch the book.
// Cancel orders only need an id.
func (o Order) Validate() error {
	if o.Action == Cancel {
		return nil
	}
	if o.Side != Buy && o.Side != Sell {
		return fmt.Errorf("order %d: invalid side %d", o.ID, o.Side)
	}
	if o.Price <= 0 {
		return fmt.Errorf("order %d: price must be positive, got %d", o.ID, o.Price)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("order %d: quantity must be positive, got %d", o.ID, o.Quantity)
	}
	return nil
}
