package batch

import (
	"errors"
	"fmt"
)

var (
	ErrNoFiles         = errors.New("no files selected")
	ErrSlotNotFound    = errors.New("upload slot not found")
	ErrNotRetryable    = errors.New("upload slot cannot be retried")
	ErrNotInFlight     = errors.New("upload slot is not in flight")
	ErrNotFailed       = errors.New("upload slot has not failed")
	ErrIndexOutOfRange = errors.New("image index out of range")
)

// LimitError rejects a submission that would exceed the image ceiling.
type LimitError struct {
	Max       int
	Remaining int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("Maximum %d images allowed. You can add %d more.", e.Max, e.Remaining)
}
