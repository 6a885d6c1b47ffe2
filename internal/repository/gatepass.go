package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/hallbridge/internal/models"
)

const gatePassColumns = `id, student_id, purpose, destination, out_date, out_time, return_date, return_time,
	contact_number, emergency_contact, status, approved_by, approved_at, rejected_by, rejected_at,
	rejection_reason, checked_out_by, actual_out_time, checked_in_by, actual_return_time, created_at, updated_at`

func scanGatePass(row interface{ Scan(...any) error }, p *models.GatePass) error {
	var approvedBy, rejectedBy, reason, outBy, inBy sql.NullString
	var approvedAt, rejectedAt, outAt, inAt sql.NullTime
	err := row.Scan(&p.ID, &p.StudentID, &p.Purpose, &p.Destination, &p.OutDate, &p.OutTime, &p.ReturnDate, &p.ReturnTime,
		&p.ContactNumber, &p.EmergencyContact, &p.Status, &approvedBy, &approvedAt, &rejectedBy, &rejectedAt,
		&reason, &outBy, &outAt, &inBy, &inAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}
	p.ApprovedBy, p.RejectedBy, p.RejectionReason = approvedBy.String, rejectedBy.String, reason.String
	p.CheckedOutBy, p.CheckedInBy = outBy.String, inBy.String
	p.ApprovedAt = timePtr(approvedAt)
	p.RejectedAt = timePtr(rejectedAt)
	p.ActualOutTime = timePtr(outAt)
	p.ActualReturnTime = timePtr(inAt)
	return nil
}

// CreateGatePass stores a newly submitted gate pass
func (r *Repository) CreateGatePass(ctx context.Context, p *models.GatePass) error {
	query := `
		INSERT INTO hall.gate_passes (id, student_id, purpose, destination, out_date, out_time, return_date,
			return_time, contact_number, emergency_contact, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.StudentID, p.Purpose, p.Destination, p.OutDate, p.OutTime,
		p.ReturnDate, p.ReturnTime, p.ContactNumber, p.EmergencyContact, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create gate pass: %w", err)
	}
	return nil
}

// FindGatePass retrieves a gate pass by id
func (r *Repository) FindGatePass(ctx context.Context, id string) (*models.GatePass, error) {
	p := &models.GatePass{}
	err := scanGatePass(r.db.QueryRowContext(ctx, `SELECT `+gatePassColumns+` FROM hall.gate_passes WHERE id = $1`, id), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("gate pass %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find gate pass: %w", err)
	}
	return p, nil
}

// transitionColumns names the actor and timestamp columns written when entering a status
var transitionColumns = map[string][2]string{
	models.PassApproved:  {"approved_by", "approved_at"},
	models.PassRejected:  {"rejected_by", "rejected_at"},
	models.PassActive:    {"checked_out_by", "actual_out_time"},
	models.PassCompleted: {"checked_in_by", "actual_return_time"},
	models.PassLate:      {"checked_in_by", "actual_return_time"},
}

// TransitionGatePass applies tr as one conditional update on the current status
func (r *Repository) TransitionGatePass(ctx context.Context, id string, tr models.PassTransition) error {
	cols, ok := transitionColumns[tr.To]
	if !ok {
		return fmt.Errorf("gate pass status %q: %w", tr.To, models.ErrInvalidTransition)
	}
	query := fmt.Sprintf(`
		UPDATE hall.gate_passes
		SET status = $3, %s = $4, %s = $5,
			rejection_reason = CASE WHEN $3 = 'rejected' THEN $6 ELSE rejection_reason END,
			updated_at = $5
		WHERE id = $1 AND status = $2`, cols[0], cols[1])
	res, err := r.db.ExecContext(ctx, query, id, tr.From, tr.To, tr.Actor, tr.At, nullString(tr.Reason))
	if err != nil {
		return fmt.Errorf("failed to update gate pass: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.casFailure(ctx, "gate_passes", id)
	}
	return nil
}

// ListGatePasses lists passes, newest first; empty arguments do not filter
func (r *Repository) ListGatePasses(ctx context.Context, studentID, status string) ([]models.GatePass, error) {
	query := `SELECT ` + gatePassColumns + ` FROM hall.gate_passes
		WHERE ($1 = '' OR student_id::text = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, studentID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list gate passes: %w", err)
	}
	defer rows.Close()

	var passes []models.GatePass
	for rows.Next() {
		var p models.GatePass
		if err := scanGatePass(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan gate pass: %w", err)
		}
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
