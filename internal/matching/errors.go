package matching

import "errors"

var (
	// ErrInvalidOrder is returned for a New or Amend with a non-positive
	// price or quantity, or an unknown side. The book is not touched.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrUnsupportedAmend is returned when an amend tries to change side
	ErrUnsupportedAmend = errors.New("unsupported amend")

	// ErrDuplicateOrder is returned for a New whose id is already resting
	ErrDuplicateOrder = errors.New("duplicate order id")

	ErrUnknownAction = errors.New("unknown order action")

	// ErrQueueFull is returned by Runner.TrySubmit when the mailbox is full
	ErrQueueFull = errors.New("order queue full")

	ErrRunnerClosed = errors.New("runner closed")
)
