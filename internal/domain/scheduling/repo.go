package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// AppointmentRepository is the storage abstraction for the reservation engine.
// Create must be atomic with respect to concurrent Creates targeting the same
// (doctor, date, slot) key: when an active appointment already occupies the
// slot it returns ErrSlotTaken, and under any interleaving at most one caller
// wins the slot.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// UpdateStatus is a compare-and-swap: the write only lands while the
	// appointment still holds the expected prior status. ErrStatusChanged
	// signals that a concurrent transition won; ErrNotFound that no such
	// appointment exists.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	// BookedSlots returns the set of slot times occupied by an active
	// (PENDING_PAYMENT or CONFIRMED) appointment for the doctor and date.
	BookedSlots(ctx context.Context, doctorID uuid.UUID, visitDate string) (map[string]bool, error)
}

// UserDirectory is the identity-store collaborator the engine consults before
// booking. The engine does not own user lifecycle; it only needs existence.
type UserDirectory interface {
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PaymentLedger records a charge when an appointment is confirmed. The write
// happens inside the confirmation transaction; a ledger failure rolls the
// status transition back.
type PaymentLedger interface {
	RecordPayment(ctx context.Context, appointmentID, patientID uuid.UUID, amount float64, method string) error
}

// TxRunner executes fn atomically. The production implementation wraps a
// database transaction; tests run fn directly.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
