package repository

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE SCHEMA IF NOT EXISTS hall`,
	`CREATE TABLE IF NOT EXISTS hall.users (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		status        TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS hall.settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		category   TEXT NOT NULL DEFAULT 'general',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS hall.meal_records (
		student_id UUID NOT NULL REFERENCES hall.users(id),
		date       DATE NOT NULL,
		breakfast  BOOLEAN NOT NULL DEFAULT FALSE,
		lunch      BOOLEAN NOT NULL DEFAULT FALSE,
		dinner     BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (student_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS hall.guest_meal_records (
		id         UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES hall.users(id),
		date       DATE NOT NULL,
		guest_name TEXT NOT NULL,
		breakfast  INT NOT NULL DEFAULT 0 CHECK (breakfast >= 0),
		lunch      INT NOT NULL DEFAULT 0 CHECK (lunch >= 0),
		dinner     INT NOT NULL DEFAULT 0 CHECK (dinner >= 0),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS guest_meal_records_date_idx ON hall.guest_meal_records (date)`,
	`CREATE TABLE IF NOT EXISTS hall.meal_votes (
		id         UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES hall.users(id),
		date       DATE NOT NULL,
		slot       TEXT NOT NULL,
		rating     INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (student_id, date, slot)
	)`,
	`CREATE TABLE IF NOT EXISTS hall.meal_ratings (
		date       DATE NOT NULL,
		slot       TEXT NOT NULL,
		votes      INT NOT NULL DEFAULT 0,
		rating_sum INT NOT NULL DEFAULT 0,
		PRIMARY KEY (date, slot)
	)`,
	`CREATE TABLE IF NOT EXISTS hall.laundry_requests (
		id           UUID PRIMARY KEY,
		student_id   UUID NOT NULL REFERENCES hall.users(id),
		items        JSONB NOT NULL,
		status       TEXT NOT NULL,
		pickup_at    TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS laundry_requests_created_idx ON hall.laundry_requests (created_at)`,
	`CREATE TABLE IF NOT EXISTS hall.payments (
		id            UUID PRIMARY KEY,
		student_id    UUID NOT NULL REFERENCES hall.users(id),
		type          TEXT NOT NULL,
		amount        NUMERIC(12,2) NOT NULL,
		billing_month INT NOT NULL CHECK (billing_month BETWEEN 1 AND 12),
		billing_year  INT NOT NULL,
		due_date      TIMESTAMPTZ NOT NULL,
		late_fee      NUMERIC(12,2) NOT NULL DEFAULT 0,
		final_amount  NUMERIC(12,2) NOT NULL,
		status        TEXT NOT NULL,
		paid_at       TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		CONSTRAINT payments_period_type_key UNIQUE (student_id, billing_month, billing_year, type)
	)`,
	`CREATE INDEX IF NOT EXISTS payments_overdue_idx ON hall.payments (due_date) WHERE status = 'pending' AND late_fee = 0`,
	`CREATE TABLE IF NOT EXISTS hall.gate_passes (
		id                 UUID PRIMARY KEY,
		student_id         UUID NOT NULL REFERENCES hall.users(id),
		purpose            TEXT NOT NULL,
		destination        TEXT NOT NULL,
		out_date           TEXT NOT NULL,
		out_time           TEXT NOT NULL,
		return_date        TEXT NOT NULL,
		return_time        TEXT NOT NULL,
		contact_number     TEXT NOT NULL,
		emergency_contact  TEXT NOT NULL,
		status             TEXT NOT NULL,
		approved_by        UUID,
		approved_at        TIMESTAMPTZ,
		rejected_by        UUID,
		rejected_at        TIMESTAMPTZ,
		rejection_reason   TEXT,
		checked_out_by     UUID,
		actual_out_time    TIMESTAMPTZ,
		checked_in_by      UUID,
		actual_return_time TIMESTAMPTZ,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS gate_passes_student_idx ON hall.gate_passes (student_id)`,
}

// Migrate creates the hall schema; every statement is idempotent
func (r *Repository) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
