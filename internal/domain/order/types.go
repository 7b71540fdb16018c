package order

import "errors"

var (
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrNotCancellable = errors.New("only pending orders can be cancelled")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Cancellable reports whether the compensating pending → cancelled transition
// is allowed. Administrative status updates bypass this and may set any
// status; cancellation is the only guarded transition.
func (s Status) Cancellable() bool {
	return s == StatusPending
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
