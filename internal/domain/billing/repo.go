package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDuplicatePayment is returned when a second payment is inserted for the
// same appointment. The unique index on appointment_id is the backstop behind
// the idempotent confirmation path.
var ErrDuplicatePayment = errors.New("payment already recorded for appointment")

// PaymentRepository is the persistence boundary for the payment ledger.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Payment, error)
}
