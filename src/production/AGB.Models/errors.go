package agbmodels

import "fmt"

// ValidationError marks a payload that cannot identify its device or
// carries an unusable parameter. Mapped to HTTP 400, never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError marks a lookup for a kit, user or notification that does
// not exist (or is not visible to the caller). Mapped to HTTP 404.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// ThresholdRejection is the business-rule refusal of a manual pump-ON
// request while a safety threshold is breached. Mapped to HTTP 400 and
// always paired with an alert Notification.
type ThresholdRejection struct {
	Msg string
}

func (e *ThresholdRejection) Error() string { return e.Msg }

// StoreError wraps a persistence failure. It surfaces once, synchronously,
// to whichever caller triggered it (HTTP 500); there is no automatic retry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }
