package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medlink/medlink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type paymentRepoPG struct{ pool *pgxpool.Pool }

func NewPaymentRepoPG(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepoPG{pool: pool}
}

func (r *paymentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *paymentRepoPG) Create(ctx context.Context, p *Payment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payments (id, appointment_id, patient_id, amount, status, method, transaction_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.AppointmentID, p.PatientID, p.Amount, p.Status, p.Method, p.TransactionDate)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicatePayment
	}
	return err
}

func (r *paymentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, appointment_id, patient_id, amount, status, method, transaction_date
		FROM payments WHERE patient_id = $1 ORDER BY transaction_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.AppointmentID, &p.PatientID, &p.Amount,
			&p.Status, &p.Method, &p.TransactionDate); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}
