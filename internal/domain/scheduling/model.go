package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusCancelled      Status = "CANCELLED"
	StatusCompleted      Status = "COMPLETED"
)

// ParseStatus converts a raw string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPendingPayment, StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown appointment status: %s", s)
}

// IsActive reports whether an appointment in this status occupies its slot.
func (s Status) IsActive() bool {
	return s == StatusPendingPayment || s == StatusConfirmed
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo validates a move against the appointment state machine.
// Re-entering the current status is always allowed as an idempotent no-op;
// terminal states permit nothing else.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPendingPayment:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled || next == StatusCompleted
	}
	return false
}

// Appointment maps to the appointments table. The patient/doctor name and
// specialty columns are denormalized copies frozen at booking time; they are
// deliberately not refreshed when the user record changes later.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	VisitDate   string    `db:"visit_date" json:"date"`
	Slot        string    `db:"slot" json:"slot"`
	Status      Status    `db:"status" json:"status"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	DoctorName  string    `db:"doctor_name" json:"doctor_name"`
	Specialty   string    `db:"specialty" json:"specialty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DateLayout is the calendar-day format used for visit dates.
const DateLayout = "2006-01-02"

// ValidDate reports whether d is a well-formed YYYY-MM-DD calendar date.
func ValidDate(d string) bool {
	_, err := time.Parse(DateLayout, d)
	return err == nil
}
