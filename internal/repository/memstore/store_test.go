package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/hallbridge/internal/models"
)

func TestInsertPaymentsUniquePerPeriodAndType(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := models.Payment{ID: "p1", StudentID: "s1", Type: models.PaymentHallFee, Amount: 10, BillingMonth: 11, BillingYear: 2025}

	n, err := s.InsertPayments(ctx, []models.Payment{p})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	dup := p
	dup.ID = "p2"
	next := p
	next.ID, next.BillingMonth = "p3", 12
	n, err = s.InsertPayments(ctx, []models.Payment{dup, next})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.FindPayment(ctx, "p2")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestApplyLateFeesRoundsToCents(t *testing.T) {
	s := New()
	ctx := context.Background()
	due := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)
	_, err := s.InsertPayments(ctx, []models.Payment{{
		ID: "p1", StudentID: "s1", Type: models.PaymentMessFee, Amount: 123.45,
		FinalAmount: 123.45, DueDate: due, Status: models.PaymentPending, BillingMonth: 11, BillingYear: 2025,
	}})
	require.NoError(t, err)

	n, err := s.ApplyLateFees(ctx, 7, due)
	require.NoError(t, err)
	assert.Zero(t, n, "payments are only late after the due date")

	n, err = s.ApplyLateFees(ctx, 7, due.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := s.FindPayment(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 8.64, p.LateFee)
	assert.InDelta(t, 132.09, p.FinalAmount, 1e-9)
}

func TestUserEmailsAreUnique(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u1", Email: "a@hall.test"}))
	err := s.CreateUser(ctx, &models.User{ID: "u2", Email: "A@hall.test"})
	assert.ErrorIs(t, err, models.ErrConflict)
}
