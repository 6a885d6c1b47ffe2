package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/hallbridge/internal/models"
)

const userColumns = `id, name, email, password_hash, role, status, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, user *models.User) error {
	return row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt)
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO hall.users (id, name, email, password_hash, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash,
		user.Role, user.Status, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Email, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM hall.users WHERE id = $1`
	err := scanUser(r.db.QueryRowContext(ctx, query, id), user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM hall.users WHERE email = $1`
	err := scanUser(r.db.QueryRowContext(ctx, query, email), user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateUserStatus moves a user from one status to another
func (r *Repository) UpdateUserStatus(ctx context.Context, id, from, to string) error {
	query := `
		UPDATE hall.users SET status = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.casFailure(ctx, "users", id)
	}
	return nil
}

// ListActiveStudents returns every student taking part in billing
func (r *Repository) ListActiveStudents(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM hall.users WHERE role = $1 AND status = $2 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, models.RoleStudent, models.UserActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
