package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultPaymentMethod is used when a payment confirmation carries no method.
const DefaultPaymentMethod = "Credit Card"

// Service is the reservation engine: it owns the appointment lifecycle and
// enforces the no-double-booking invariant and the status state machine.
type Service struct {
	appointments AppointmentRepository
	directory    UserDirectory
	ledger       PaymentLedger
	tx           TxRunner
	fee          float64
}

func NewService(appts AppointmentRepository, directory UserDirectory, ledger PaymentLedger, tx TxRunner, consultationFee float64) *Service {
	return &Service{
		appointments: appts,
		directory:    directory,
		ledger:       ledger,
		tx:           tx,
		fee:          consultationFee,
	}
}

// CreateAppointmentRequest carries a booking request. The display fields are
// denormalized onto the appointment as-is.
type CreateAppointmentRequest struct {
	PatientID   uuid.UUID `json:"patient_id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	VisitDate   string    `json:"date"`
	Slot        string    `json:"slot"`
	PatientName string    `json:"patient_name"`
	DoctorName  string    `json:"doctor_name"`
	Specialty   string    `json:"specialty"`
}

// PaymentDetails carries optional payment metadata for ConfirmPayment.
type PaymentDetails struct {
	Method string `json:"method"`
}

// AvailableSlots returns the full daily slot template for the doctor and
// date, marking a slot unavailable iff an active appointment occupies it.
// Cancelled and completed appointments do not block slots.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, visitDate string) ([]SlotAvailability, error) {
	if doctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if !ValidDate(visitDate) {
		return nil, fmt.Errorf("date must be formatted as %s", DateLayout)
	}

	booked, err := s.appointments.BookedSlots(ctx, doctorID, visitDate)
	if err != nil {
		return nil, err
	}

	slots := make([]SlotAvailability, 0, len(DailySlots))
	for _, t := range DailySlots {
		slots = append(slots, SlotAvailability{Time: t, IsAvailable: !booked[t]})
	}
	return slots, nil
}

// CreateAppointment books a slot. The check-then-insert race is resolved by
// the repository: concurrent requests for the same (doctor, date, slot) key
// end with exactly one PENDING_PAYMENT appointment and ErrSlotTaken for the
// rest.
func (s *Service) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*Appointment, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if req.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if !ValidDate(req.VisitDate) {
		return nil, fmt.Errorf("date must be formatted as %s", DateLayout)
	}
	if !ValidSlot(req.Slot) {
		return nil, fmt.Errorf("slot %q is not in the daily template", req.Slot)
	}

	for _, id := range []uuid.UUID{req.PatientID, req.DoctorID} {
		exists, err := s.directory.UserExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrUnknownUser, id)
		}
	}

	a := &Appointment{
		ID:          uuid.New(),
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		VisitDate:   req.VisitDate,
		Slot:        req.Slot,
		Status:      StatusPendingPayment,
		PatientName: req.PatientName,
		DoctorName:  req.DoctorName,
		Specialty:   req.Specialty,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ConfirmPayment moves a PENDING_PAYMENT appointment to CONFIRMED and records
// exactly one payment. Confirming an already-CONFIRMED appointment is an
// idempotent success and does not record a second payment. The transition and
// the ledger write share one transaction, so a ledger failure leaves the
// appointment in PENDING_PAYMENT.
func (s *Service) ConfirmPayment(ctx context.Context, id uuid.UUID, details PaymentDetails) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch a.Status {
	case StatusConfirmed:
		return a, nil
	case StatusPendingPayment:
		// fall through to the transition below
	default:
		return nil, fmt.Errorf("%w: cannot confirm payment from %s", ErrInvalidTransition, a.Status)
	}

	method := details.Method
	if method == "" {
		method = DefaultPaymentMethod
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.appointments.UpdateStatus(ctx, a.ID, StatusPendingPayment, StatusConfirmed); err != nil {
			return err
		}
		return s.ledger.RecordPayment(ctx, a.ID, a.PatientID, s.fee, method)
	})
	if err != nil {
		// A concurrent transition committed between our read and the
		// compare-and-swap. Re-read and resolve: an appointment another
		// caller already confirmed is an idempotent success, anything
		// else rejects the confirmation.
		if errors.Is(err, ErrStatusChanged) {
			cur, rerr := s.appointments.GetByID(ctx, a.ID)
			if rerr != nil {
				return nil, rerr
			}
			if cur.Status == StatusConfirmed {
				return cur, nil
			}
			return nil, fmt.Errorf("%w: cannot confirm payment from %s", ErrInvalidTransition, cur.Status)
		}
		return nil, err
	}

	a.Status = StatusConfirmed
	return a, nil
}

// SetStatus performs a generic administrative transition (cancellation,
// completion). The move is validated against the state machine; re-entering
// the current status is a no-op.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.Status == status {
		return a, nil
	}
	if !a.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, status)
	}

	if err := s.appointments.UpdateStatus(ctx, a.ID, a.Status, status); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			cur, rerr := s.appointments.GetByID(ctx, a.ID)
			if rerr != nil {
				return nil, rerr
			}
			if cur.Status == status {
				return cur, nil
			}
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, status)
		}
		return nil, err
	}
	a.Status = status
	return a, nil
}

// ListByPatient returns every appointment for the patient, oldest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientID)
}

// ListByDoctor returns every appointment for the doctor, oldest first.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return s.appointments.ListByDoctor(ctx, doctorID)
}
