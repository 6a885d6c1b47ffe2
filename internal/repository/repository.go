package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dan9191/hallbridge/internal/models"
)

const uniqueViolation = "23505"

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// isUniqueViolation reports whether err comes from a unique constraint
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// casFailure explains why a conditional update touched no rows: the row is either
// missing or no longer in the expected state.
func (r *Repository) casFailure(ctx context.Context, table, id string) error {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM hall.%s WHERE id = $1)`, table)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check %s %s: %w", table, id, err)
	}
	if !exists {
		return models.ErrNotFound
	}
	return models.ErrInvalidTransition
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
