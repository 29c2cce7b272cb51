package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service owns the payment ledger.
type Service struct {
	payments PaymentRepository
}

func NewService(payments PaymentRepository) *Service {
	return &Service{payments: payments}
}

// RecordPayment writes one successful ledger entry for the appointment.
func (s *Service) RecordPayment(ctx context.Context, appointmentID, patientID uuid.UUID, amount float64, method string) (*Payment, error) {
	p := &Payment{
		ID:              uuid.New(),
		AppointmentID:   appointmentID,
		PatientID:       patientID,
		Amount:          amount,
		Status:          PaymentStatusSuccess,
		Method:          method,
		TransactionDate: time.Now().UTC(),
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByPatient returns the patient's payments, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Payment, error) {
	return s.payments.ListByPatient(ctx, patientID)
}
