package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/hallbridge/internal/models"
)

const laundryColumns = `id, student_id, items, status, pickup_at, delivered_at, created_at, updated_at`

func scanLaundry(row interface{ Scan(...any) error }, req *models.LaundryRequest) error {
	var items []byte
	var pickup, delivered sql.NullTime
	if err := row.Scan(&req.ID, &req.StudentID, &items, &req.Status, &pickup, &delivered, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return err
	}
	if err := json.Unmarshal(items, &req.Items); err != nil {
		return fmt.Errorf("failed to decode laundry items: %w", err)
	}
	if pickup.Valid {
		req.PickupAt = &pickup.Time
	}
	if delivered.Valid {
		req.DeliveredAt = &delivered.Time
	}
	return nil
}

// CreateLaundryRequest stores a new laundry request
func (r *Repository) CreateLaundryRequest(ctx context.Context, req *models.LaundryRequest) error {
	items, err := json.Marshal(req.Items)
	if err != nil {
		return fmt.Errorf("failed to encode laundry items: %w", err)
	}
	query := `
		INSERT INTO hall.laundry_requests (id, student_id, items, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, req.ID, req.StudentID, items, req.Status, req.CreatedAt, req.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create laundry request: %w", err)
	}
	return nil
}

// FindLaundryRequest retrieves a laundry request by id
func (r *Repository) FindLaundryRequest(ctx context.Context, id string) (*models.LaundryRequest, error) {
	req := &models.LaundryRequest{}
	query := `SELECT ` + laundryColumns + ` FROM hall.laundry_requests WHERE id = $1`
	err := scanLaundry(r.db.QueryRowContext(ctx, query, id), req)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("laundry request %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find laundry request: %w", err)
	}
	return req, nil
}

// AdvanceLaundryStatus moves a request from one status to the next,
// stamping pickup and delivery times on the way
func (r *Repository) AdvanceLaundryStatus(ctx context.Context, id, from, to string, at time.Time) error {
	query := `
		UPDATE hall.laundry_requests
		SET status = $3,
			pickup_at = CASE WHEN $3 = 'collected' THEN $4 ELSE pickup_at END,
			delivered_at = CASE WHEN $3 = 'delivered' THEN $4 ELSE delivered_at END,
			updated_at = $4
		WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, at)
	if err != nil {
		return fmt.Errorf("failed to update laundry request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.casFailure(ctx, "laundry_requests", id)
	}
	return nil
}

// ListLaundryRequests lists requests, newest first; an empty studentID lists everyone's
func (r *Repository) ListLaundryRequests(ctx context.Context, studentID string) ([]models.LaundryRequest, error) {
	query := `SELECT ` + laundryColumns + ` FROM hall.laundry_requests
		WHERE ($1 = '' OR student_id::text = $1) ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list laundry requests: %w", err)
	}
	defer rows.Close()

	var reqs []models.LaundryRequest
	for rows.Next() {
		var req models.LaundryRequest
		if err := scanLaundry(rows, &req); err != nil {
			return nil, fmt.Errorf("failed to scan laundry request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// CountLaundryRequests counts requests per student created in [from, to)
func (r *Repository) CountLaundryRequests(ctx context.Context, from, to time.Time, studentIDs ...string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT student_id, COUNT(*)
		FROM hall.laundry_requests
		WHERE created_at >= $1 AND created_at < $2 AND ($3::uuid[] IS NULL OR student_id = ANY($3))
		GROUP BY student_id`, from, to, studentFilter(studentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to count laundry requests: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan laundry count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
