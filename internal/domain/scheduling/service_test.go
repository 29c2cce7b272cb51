package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// -- Mock repository --

// mockApptRepo enforces the same active-slot uniqueness contract as the
// Postgres repository (partial unique index), guarded by a mutex so the
// concurrency tests exercise the real invariant.
type mockApptRepo struct {
	mu    sync.Mutex
	appts map[uuid.UUID]*Appointment
	order []uuid.UUID
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockApptRepo) Create(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.appts {
		if existing.DoctorID == a.DoctorID && existing.VisitDate == a.VisitDate &&
			existing.Slot == a.Slot && existing.Status.IsActive() {
			return ErrSlotTaken
		}
	}
	m.appts[a.ID] = a
	m.order = append(m.order, a.ID)
	return nil
}

func (m *mockApptRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *a
	return &copy, nil
}

func (m *mockApptRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != from {
		return ErrStatusChanged
	}
	a.Status = to
	return nil
}

func (m *mockApptRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return m.list(func(a *Appointment) bool { return a.PatientID == patientID }), nil
}

func (m *mockApptRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return m.list(func(a *Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (m *mockApptRepo) list(match func(*Appointment) bool) []*Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Appointment
	for _, id := range m.order {
		if a := m.appts[id]; match(a) {
			copy := *a
			result = append(result, &copy)
		}
	}
	return result
}

func (m *mockApptRepo) BookedSlots(_ context.Context, doctorID uuid.UUID, visitDate string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booked := make(map[string]bool)
	for _, a := range m.appts {
		if a.DoctorID == doctorID && a.VisitDate == visitDate && a.Status.IsActive() {
			booked[a.Slot] = true
		}
	}
	return booked, nil
}

// snapshot/restore support for the fake transaction runner

func (m *mockApptRepo) snapshot() map[uuid.UUID]Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[uuid.UUID]Appointment, len(m.appts))
	for id, a := range m.appts {
		snap[id] = *a
	}
	return snap
}

func (m *mockApptRepo) restore(snap map[uuid.UUID]Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.appts {
		if orig, ok := snap[id]; ok {
			copy := orig
			m.appts[id] = &copy
		}
	}
}

// -- Mock collaborators --

type mockDirectory struct {
	mu    sync.Mutex
	users map[uuid.UUID]bool
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{users: make(map[uuid.UUID]bool)}
}

func (m *mockDirectory) add() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.users[id] = true
	return id
}

func (m *mockDirectory) UserExists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

type ledgerEntry struct {
	appointmentID uuid.UUID
	patientID     uuid.UUID
	amount        float64
	method        string
}

type mockLedger struct {
	mu      sync.Mutex
	entries []ledgerEntry
	err     error
}

func (m *mockLedger) RecordPayment(_ context.Context, appointmentID, patientID uuid.UUID, amount float64, method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, ledgerEntry{appointmentID, patientID, amount, method})
	return nil
}

func (m *mockLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// fakeTx emulates transactional rollback over the mock repository: on error
// the repository is restored to its pre-transaction state.
type fakeTx struct {
	repo *mockApptRepo
}

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := f.repo.snapshot()
	if err := fn(ctx); err != nil {
		f.repo.restore(snap)
		return err
	}
	return nil
}

// interceptTx runs a hook once before the transaction body, emulating a
// concurrent writer that commits between the service's read and its
// transaction.
type interceptTx struct {
	inner  TxRunner
	before func()
}

func (i *interceptTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if i.before != nil {
		hook := i.before
		i.before = nil
		hook()
	}
	return i.inner.InTx(ctx, fn)
}

// staleReadRepo serves one stale appointment snapshot on the first GetByID,
// emulating a read that a concurrent transition has since invalidated.
type staleReadRepo struct {
	*mockApptRepo
	stale *Appointment
}

func (r *staleReadRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	if r.stale != nil && r.stale.ID == id {
		a := *r.stale
		r.stale = nil
		return &a, nil
	}
	return r.mockApptRepo.GetByID(ctx, id)
}

// -- Fixture --

type fixture struct {
	svc       *Service
	repo      *mockApptRepo
	directory *mockDirectory
	ledger    *mockLedger
	patientID uuid.UUID
	doctorID  uuid.UUID
}

func newFixture() *fixture {
	repo := newMockApptRepo()
	dir := newMockDirectory()
	ledger := &mockLedger{}
	svc := NewService(repo, dir, ledger, &fakeTx{repo: repo}, 52.50)
	return &fixture{
		svc:       svc,
		repo:      repo,
		directory: dir,
		ledger:    ledger,
		patientID: dir.add(),
		doctorID:  dir.add(),
	}
}

func (f *fixture) bookingRequest() CreateAppointmentRequest {
	return CreateAppointmentRequest{
		PatientID:   f.patientID,
		DoctorID:    f.doctorID,
		VisitDate:   "2024-06-01",
		Slot:        "09:00",
		PatientName: "Ada Lovelace",
		DoctorName:  "Dr. Gregory House",
		Specialty:   "Cardiology",
	}
}

// -- CreateAppointment --

func TestCreateAppointment(t *testing.T) {
	f := newFixture()

	a, err := f.svc.CreateAppointment(context.Background(), f.bookingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == uuid.Nil {
		t.Error("expected a generated id")
	}
	if a.Status != StatusPendingPayment {
		t.Errorf("expected status PENDING_PAYMENT, got %s", a.Status)
	}
	if a.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
	if a.PatientName != "Ada Lovelace" || a.Specialty != "Cardiology" {
		t.Error("expected display fields to be copied onto the appointment")
	}
}

func TestCreateAppointment_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := map[string]CreateAppointmentRequest{
		"missing patient": func() CreateAppointmentRequest {
			r := f.bookingRequest()
			r.PatientID = uuid.Nil
			return r
		}(),
		"missing doctor": func() CreateAppointmentRequest {
			r := f.bookingRequest()
			r.DoctorID = uuid.Nil
			return r
		}(),
		"bad date": func() CreateAppointmentRequest {
			r := f.bookingRequest()
			r.VisitDate = "June 1st"
			return r
		}(),
		"slot outside template": func() CreateAppointmentRequest {
			r := f.bookingRequest()
			r.Slot = "12:00"
			return r
		}(),
	}

	for name, req := range cases {
		if _, err := f.svc.CreateAppointment(ctx, req); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestCreateAppointment_UnknownUser(t *testing.T) {
	f := newFixture()
	req := f.bookingRequest()
	req.DoctorID = uuid.New() // never registered

	_, err := f.svc.CreateAppointment(context.Background(), req)
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestCreateAppointment_SlotConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.CreateAppointment(ctx, f.bookingRequest()); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestCreateAppointment_ConflictWithConfirmed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := f.svc.ConfirmPayment(ctx, a.ID, PaymentDetails{}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	_, err = f.svc.CreateAppointment(ctx, f.bookingRequest())
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken against a confirmed appointment, got %v", err)
	}
}

func TestCreateAppointment_CancelledSlotReusable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, a.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := f.svc.CreateAppointment(ctx, f.bookingRequest()); err != nil {
		t.Fatalf("expected cancelled slot to be bookable again, got %v", err)
	}
}

func TestCreateAppointment_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture()
	const racers = 50

	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateAppointment(context.Background(), f.bookingRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotTaken):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("expected exactly 1 successful booking, got %d", wins)
	}
	if conflicts != racers-1 {
		t.Errorf("expected %d conflicts, got %d", racers-1, conflicts)
	}
}

// -- AvailableSlots --

func TestAvailableSlots_EmptyDay(t *testing.T) {
	f := newFixture()

	slots, err := f.svc.AvailableSlots(context.Background(), f.doctorID, "2024-06-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != len(DailySlots) {
		t.Fatalf("expected %d slots, got %d", len(DailySlots), len(slots))
	}
	for i, sl := range slots {
		if sl.Time != DailySlots[i] {
			t.Errorf("position %d: expected %s, got %s", i, DailySlots[i], sl.Time)
		}
		if !sl.IsAvailable {
			t.Errorf("slot %s: expected available on an empty day", sl.Time)
		}
	}
}

func TestAvailableSlots_BookedSlotUnavailable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.CreateAppointment(ctx, f.bookingRequest()); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	slots, err := f.svc.AvailableSlots(ctx, f.doctorID, "2024-06-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byTime := make(map[string]bool)
	for _, sl := range slots {
		byTime[sl.Time] = sl.IsAvailable
	}
	if byTime["09:00"] {
		t.Error("expected 09:00 to be unavailable after booking")
	}
	if !byTime["09:30"] {
		t.Error("expected 09:30 to remain available")
	}
}

func TestAvailableSlots_CancelledDoesNotBlock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, a.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	slots, err := f.svc.AvailableSlots(ctx, f.doctorID, "2024-06-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, sl := range slots {
		if sl.Time == "09:00" && !sl.IsAvailable {
			t.Error("expected 09:00 to be available after cancellation")
		}
	}
}

func TestAvailableSlots_BadInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.AvailableSlots(ctx, uuid.Nil, "2024-06-01"); err == nil {
		t.Error("expected error for nil doctor id")
	}
	if _, err := f.svc.AvailableSlots(ctx, f.doctorID, "not-a-date"); err == nil {
		t.Error("expected error for malformed date")
	}
}

// -- ConfirmPayment --

func TestConfirmPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	confirmed, err := f.svc.ConfirmPayment(ctx, a.ID, PaymentDetails{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", confirmed.Status)
	}

	if f.ledger.count() != 1 {
		t.Fatalf("expected exactly 1 payment record, got %d", f.ledger.count())
	}
	entry := f.ledger.entries[0]
	if entry.appointmentID != a.ID {
		t.Error("payment recorded against wrong appointment")
	}
	if entry.amount != 52.50 {
		t.Errorf("expected amount 52.50, got %v", entry.amount)
	}
	if entry.method != DefaultPaymentMethod {
		t.Errorf("expected default method, got %s", entry.method)
	}
}

func TestConfirmPayment_ExplicitMethod(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, _ := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if _, err := f.svc.ConfirmPayment(ctx, a.ID, PaymentDetails{Method: "UPI"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ledger.entries[0].method != "UPI" {
		t.Errorf("expected method UPI, got %s", f.ledger.entries[0].method)
	}
}

func TestConfirmPayment_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, _ := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if _, err := f.svc.ConfirmPayment(ctx, a.ID, PaymentDetails{}); err != nil {
		t.Fatalf("first confirmation failed: %v", err)
	}

	confirmed, err := f.svc.ConfirmPayment(ctx, a.ID, PaymentDetails{})
	if err != nil {
		t.Fatalf("repeated confirmation should succeed, got %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", confirmed.Status)
	}
	if f.ledger.count() != 1 {
		t.Errorf("expected no duplicate payment record, got %d", f.ledger.count())
	}
}

func TestConfirmPayment_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ConfirmPayment(context.Background(), uuid.New(), PaymentDetails{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConfirmPayment_FromTerminalState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, _ := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if _, err := f.svc.SetStatus(ctx, a.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err := f.svc.ConfirmPayment(ctx, a.ID, PaymentDetails{})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if f.ledger.count() != 0 {
		t.Error("expected no payment record for a cancelled appointment")
	}
}

func TestConfirmPayment_CancelledMidConfirmStaysCancelled(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	// A cancellation commits after ConfirmPayment's read but before its
	// transaction body runs.
	tx := &interceptTx{
		inner: &fakeTx{repo: f.repo},
		before: func() {
			if err := f.repo.UpdateStatus(ctx, a.ID, StatusPendingPayment, StatusCancelled); err != nil {
				t.Errorf("concurrent cancel failed: %v", err)
			}
		},
	}
	racySvc := NewService(f.repo, f.directory, f.ledger, tx, 52.50)

	_, err = racySvc.ConfirmPayment(ctx, a.ID, PaymentDetails{})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, err := f.repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("expected appointment to stay CANCELLED, got %s", got.Status)
	}
	if f.ledger.count() != 0 {
		t.Errorf("expected no payment for a cancelled appointment, got %d", f.ledger.count())
	}
}

func TestConfirmPayment_ConcurrentConfirmIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	// Another caller confirms and pays first; this caller still holds a
	// PENDING_PAYMENT read.
	if _, err := f.svc.ConfirmPayment(ctx, a.ID, PaymentDetails{}); err != nil {
		t.Fatalf("winning confirmation failed: %v", err)
	}
	stale := *a
	stale.Status = StatusPendingPayment
	repo := &staleReadRepo{mockApptRepo: f.repo, stale: &stale}
	racySvc := NewService(repo, f.directory, f.ledger, &fakeTx{repo: f.repo}, 52.50)

	got, err := racySvc.ConfirmPayment(ctx, a.ID, PaymentDetails{})
	if err != nil {
		t.Fatalf("expected idempotent success, got %v", err)
	}
	if got.Status != StatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", got.Status)
	}
	if f.ledger.count() != 1 {
		t.Errorf("expected exactly 1 payment record, got %d", f.ledger.count())
	}
}

func TestConfirmPayment_LedgerFailureRollsBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, _ := f.svc.CreateAppointment(ctx, f.bookingRequest())
	f.ledger.err = errors.New("ledger unavailable")

	if _, err := f.svc.ConfirmPayment(ctx, a.ID, PaymentDetails{}); err == nil {
		t.Fatal("expected error when the ledger write fails")
	}

	got, err := f.repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusPendingPayment {
		t.Errorf("expected status to roll back to PENDING_PAYMENT, got %s", got.Status)
	}
}

// -- SetStatus --

func TestSetStatus_Transitions(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		prepare func(f *fixture, id uuid.UUID)
		target  Status
		wantErr bool
	}{
		{"pending to cancelled", func(*fixture, uuid.UUID) {}, StatusCancelled, false},
		{"pending to completed", func(*fixture, uuid.UUID) {}, StatusCompleted, true},
		{"confirmed to completed", func(f *fixture, id uuid.UUID) {
			f.svc.ConfirmPayment(ctx, id, PaymentDetails{})
		}, StatusCompleted, false},
		{"confirmed to cancelled", func(f *fixture, id uuid.UUID) {
			f.svc.ConfirmPayment(ctx, id, PaymentDetails{})
		}, StatusCancelled, false},
		{"cancelled is terminal", func(f *fixture, id uuid.UUID) {
			f.svc.SetStatus(ctx, id, StatusCancelled)
		}, StatusConfirmed, true},
		{"completed is terminal", func(f *fixture, id uuid.UUID) {
			f.svc.ConfirmPayment(ctx, id, PaymentDetails{})
			f.svc.SetStatus(ctx, id, StatusCompleted)
		}, StatusCancelled, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			a, err := f.svc.CreateAppointment(ctx, f.bookingRequest())
			if err != nil {
				t.Fatalf("booking failed: %v", err)
			}
			tc.prepare(f, a.ID)

			_, err = f.svc.SetStatus(ctx, a.ID, tc.target)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSetStatus_SameStateNoOp(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, _ := f.svc.CreateAppointment(ctx, f.bookingRequest())
	got, err := f.svc.SetStatus(ctx, a.ID, StatusPendingPayment)
	if err != nil {
		t.Fatalf("expected same-state transition to be a no-op, got %v", err)
	}
	if got.Status != StatusPendingPayment {
		t.Errorf("unexpected status %s", got.Status)
	}
}

func TestSetStatus_ConcurrentCancellationWins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	// A cancellation commits first; this caller still reads PENDING_PAYMENT.
	if _, err := f.svc.SetStatus(ctx, a.ID, StatusCancelled); err != nil {
		t.Fatalf("concurrent cancel failed: %v", err)
	}
	stale := *a
	stale.Status = StatusPendingPayment
	repo := &staleReadRepo{mockApptRepo: f.repo, stale: &stale}
	racySvc := NewService(repo, f.directory, f.ledger, &fakeTx{repo: f.repo}, 52.50)

	_, err = racySvc.SetStatus(ctx, a.ID, StatusConfirmed)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, err := f.repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("expected appointment to stay CANCELLED, got %s", got.Status)
	}
}

func TestSetStatus_ConcurrentSameTargetIsNoOp(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.CreateAppointment(ctx, f.bookingRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, a.ID, StatusCancelled); err != nil {
		t.Fatalf("concurrent cancel failed: %v", err)
	}
	stale := *a
	stale.Status = StatusPendingPayment
	repo := &staleReadRepo{mockApptRepo: f.repo, stale: &stale}
	racySvc := NewService(repo, f.directory, f.ledger, &fakeTx{repo: f.repo}, 52.50)

	got, err := racySvc.SetStatus(ctx, a.ID, StatusCancelled)
	if err != nil {
		t.Fatalf("expected losing an identical transition to succeed, got %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", got.Status)
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SetStatus(context.Background(), uuid.New(), StatusCancelled)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// -- Listings --

func TestListByPatient_OrderedAscending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var ids []uuid.UUID
	for i, slot := range []string{"09:00", "10:00", "11:00"} {
		req := f.bookingRequest()
		req.Slot = slot
		a, err := f.svc.CreateAppointment(ctx, req)
		if err != nil {
			t.Fatalf("booking %d failed: %v", i, err)
		}
		ids = append(ids, a.ID)
	}
	// A cancelled appointment still shows up in history
	if _, err := f.svc.SetStatus(ctx, ids[1], StatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	items, err := f.svc.ListByPatient(ctx, f.patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 appointments, got %d", len(items))
	}
	for i := range items {
		if items[i].ID != ids[i] {
			t.Errorf("position %d: expected %s, got %s", i, ids[i], items[i].ID)
		}
	}
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.Before(items[i-1].CreatedAt) {
			t.Error("expected created_at ascending order")
		}
	}
}

func TestListByDoctor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.CreateAppointment(ctx, f.bookingRequest()); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	items, err := f.svc.ListByDoctor(ctx, f.doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(items))
	}

	other, err := f.svc.ListByDoctor(ctx, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no appointments for an unknown doctor, got %d", len(other))
	}
}
