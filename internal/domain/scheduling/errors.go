package scheduling

import "errors"

// Errors returned by the reservation engine. All are recoverable by the
// caller; conflict resolution (picking another slot) is the caller's job.
var (
	ErrSlotTaken         = errors.New("slot is already reserved")
	ErrNotFound          = errors.New("appointment not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownUser       = errors.New("unknown user")

	// ErrStatusChanged is returned by UpdateStatus when the appointment no
	// longer holds the expected prior status, meaning a concurrent
	// transition committed first. The service re-reads and resolves it.
	ErrStatusChanged = errors.New("appointment status changed concurrently")
)
