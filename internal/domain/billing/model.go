package billing

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatusSuccess is the only status the ledger records today. Payments
// are written inside the appointment-confirmation transaction, so a failed
// charge never reaches the table.
const PaymentStatusSuccess = "SUCCESS"

// Payment is one ledger entry. At most one payment exists per appointment.
type Payment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	AppointmentID   uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	Amount          float64   `db:"amount" json:"amount"`
	Status          string    `db:"status" json:"status"`
	Method          string    `db:"method" json:"method"`
	TransactionDate time.Time `db:"transaction_date" json:"transaction_date"`
}
