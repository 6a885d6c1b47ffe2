package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/hallbridge/internal/models"
)

// paymentInsertBatch keeps a multi-row insert well under the 65535 bind parameter limit
const paymentInsertBatch = 500

const paymentColumns = `id, student_id, type, amount, billing_month, billing_year, due_date,
	late_fee, final_amount, status, paid_at, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }, p *models.Payment) error {
	var paidAt sql.NullTime
	err := row.Scan(&p.ID, &p.StudentID, &p.Type, &p.Amount, &p.BillingMonth, &p.BillingYear, &p.DueDate,
		&p.LateFee, &p.FinalAmount, &p.Status, &paidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	return nil
}

// InsertPayments bulk-inserts payments in a single transaction. Rows that collide with an
// existing (student, month, year, type) are skipped; the number actually inserted is returned.
func (r *Repository) InsertPayments(ctx context.Context, payments []models.Payment) (int, error) {
	if len(payments) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for start := 0; start < len(payments); start += paymentInsertBatch {
		end := min(start+paymentInsertBatch, len(payments))
		query, args := buildPaymentInsert(payments[start:end])
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert payments: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read inserted rows: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit payments: %w", err)
	}
	return inserted, nil
}

func buildPaymentInsert(payments []models.Payment) (string, []any) {
	const cols = 12
	var sb strings.Builder
	sb.WriteString(`INSERT INTO hall.payments (id, student_id, type, amount, billing_month, billing_year,
		due_date, late_fee, final_amount, status, created_at, updated_at) VALUES `)
	args := make([]any, 0, len(payments)*cols)
	for i, p := range payments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := 1; c <= cols; c++ {
			if c > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*cols+c)
		}
		sb.WriteString(")")
		args = append(args, p.ID, p.StudentID, p.Type, p.Amount, p.BillingMonth, p.BillingYear,
			p.DueDate, p.LateFee, p.FinalAmount, p.Status, p.CreatedAt, p.UpdatedAt)
	}
	sb.WriteString(" ON CONFLICT ON CONSTRAINT payments_period_type_key DO NOTHING")
	return sb.String(), args
}

// CountPaymentsForPeriod counts payments issued for a billing period
func (r *Repository) CountPaymentsForPeriod(ctx context.Context, month, year int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hall.payments WHERE billing_month = $1 AND billing_year = $2`, month, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return n, nil
}

// ApplyLateFees charges percent of the amount on every pending payment past due that has no
// late fee yet. The predicate and the computation run in one statement, so concurrent runs
// cannot charge twice.
func (r *Repository) ApplyLateFees(ctx context.Context, percent float64, now time.Time) (int, error) {
	query := `
		UPDATE hall.payments
		SET late_fee = ROUND(amount * $1 / 100, 2),
			final_amount = amount + ROUND(amount * $1 / 100, 2),
			updated_at = $2
		WHERE status = 'pending' AND due_date < $2 AND late_fee = 0 AND amount > 0`
	res, err := r.db.ExecContext(ctx, query, percent, now)
	if err != nil {
		return 0, fmt.Errorf("failed to apply late fees: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read updated rows: %w", err)
	}
	return int(n), nil
}

// CompletePayment marks a pending payment as paid
func (r *Repository) CompletePayment(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE hall.payments SET status = 'completed', paid_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'pending'`, id, at)
	if err != nil {
		return fmt.Errorf("failed to complete payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.casFailure(ctx, "payments", id)
	}
	return nil
}

// FindPayment retrieves a payment by id
func (r *Repository) FindPayment(ctx context.Context, id string) (*models.Payment, error) {
	p := &models.Payment{}
	err := scanPayment(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM hall.payments WHERE id = $1`, id), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return p, nil
}

// ListPayments lists payments matching filter, newest period first
func (r *Repository) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM hall.payments
		WHERE ($1 = '' OR student_id::text = $1)
		AND ($2 = 0 OR billing_month = $2)
		AND ($3 = 0 OR billing_year = $3)
		AND ($4 = '' OR status = $4)
		ORDER BY billing_year DESC, billing_month DESC, student_id, type`
	rows, err := r.db.QueryContext(ctx, query, filter.StudentID, filter.BillingMonth, filter.BillingYear, filter.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
