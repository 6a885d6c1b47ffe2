package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/hallbridge/internal/models"
	"github.com/Dan9191/hallbridge/internal/utils"
)

func TestCurrentBill(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setSettings(t, map[string]string{
		models.SettingMonthlyRent:    "5000",
		models.SettingMaintenanceFee: "100",
		models.SettingWifiFee:        "50",
		models.SettingBreakfastPrice: "30",
	})
	student := env.addStudent(t, models.UserActive)
	other := env.addStudent(t, models.UserActive)
	env.markBreakfasts(t, student, 10)
	env.markBreakfasts(t, other, 3)
	november := utils.Period{Month: 11, Year: 2025}

	view, err := env.svc.CurrentBill(ctx, student, november)
	require.NoError(t, err)
	assert.Equal(t, 10, view.Usage.Meals.Breakfast)
	assert.Equal(t, Charges{HallFee: 5000, MessFee: 300, Other: 150}, view.Charges)
	assert.Equal(t, 5450.0, view.Total)
	assert.False(t, view.Paid)
	require.Len(t, view.Items, 3)
	for _, item := range view.Items {
		assert.Equal(t, BillUnbilled, item.Status)
		assert.Empty(t, item.PaymentID)
	}

	_, err = env.svc.RunMonthlyBilling(ctx)
	require.NoError(t, err)
	byType := paymentsByType(t, env, student.UserID)
	_, err = env.svc.CompletePayment(ctx, staff, byType[models.PaymentHallFee].ID)
	require.NoError(t, err)

	view, err = env.svc.CurrentBill(ctx, student, november)
	require.NoError(t, err)
	assert.False(t, view.Paid)
	statuses := make(map[string]string)
	for _, item := range view.Items {
		statuses[item.Type] = item.Status
		assert.Equal(t, byType[item.Type].ID, item.PaymentID)
	}
	assert.Equal(t, map[string]string{
		models.PaymentHallFee: models.PaymentCompleted,
		models.PaymentMessFee: models.PaymentPending,
		models.PaymentOther:   models.PaymentPending,
	}, statuses)

	for _, typ := range []string{models.PaymentMessFee, models.PaymentOther} {
		_, err = env.svc.CompletePayment(ctx, admin, byType[typ].ID)
		require.NoError(t, err)
	}
	view, err = env.svc.CurrentBill(ctx, student, november)
	require.NoError(t, err)
	assert.True(t, view.Paid)

	_, err = env.svc.CurrentBill(ctx, staff, november)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestCurrentBillKeepsIssuedPayments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setSettings(t, map[string]string{
		models.SettingMonthlyRent:    "5000",
		models.SettingBreakfastPrice: "30",
	})
	student := env.addStudent(t, models.UserActive)
	env.markBreakfasts(t, student, 10)
	_, err := env.svc.RunMonthlyBilling(ctx)
	require.NoError(t, err)

	byType := paymentsByType(t, env, student.UserID)
	for _, typ := range []string{models.PaymentHallFee, models.PaymentOther} {
		_, err = env.svc.CompletePayment(ctx, staff, byType[typ].ID)
		require.NoError(t, err)
	}
	// the student clears the billed days afterwards
	for d := 1; d <= 10; d++ {
		_, err = env.svc.MarkMeals(ctx, student, MealInput{Date: fmt.Sprintf("2025-11-%02d", d)})
		require.NoError(t, err)
	}

	view, err := env.svc.CurrentBill(ctx, student, utils.Period{Month: 11, Year: 2025})
	require.NoError(t, err)
	assert.Zero(t, view.Charges.MessFee)
	assert.False(t, view.Paid, "a pending mess fee keeps the bill unpaid")

	items := make(map[string]BillItem)
	for _, item := range view.Items {
		items[item.Type] = item
	}
	require.Contains(t, items, models.PaymentMessFee)
	mess := items[models.PaymentMessFee]
	assert.Equal(t, models.PaymentPending, mess.Status)
	assert.Equal(t, 300.0, mess.Amount)
	assert.Equal(t, byType[models.PaymentMessFee].ID, mess.PaymentID)
	assert.NotContains(t, items, models.PaymentLaundryFee)
}

func TestCompletePayment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setSettings(t, map[string]string{models.SettingMonthlyRent: "5000"})
	student := env.addStudent(t, models.UserActive)
	_, err := env.svc.RunMonthlyBilling(ctx)
	require.NoError(t, err)
	hall := paymentsByType(t, env, student.UserID)[models.PaymentHallFee]

	_, err = env.svc.CompletePayment(ctx, student, hall.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	paid, err := env.svc.CompletePayment(ctx, staff, hall.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(env.now))

	_, err = env.svc.CompletePayment(ctx, staff, hall.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = env.svc.CompletePayment(ctx, staff, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListPayments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setSettings(t, map[string]string{models.SettingMonthlyRent: "5000"})
	alice := env.addStudent(t, models.UserActive)
	bob := env.addStudent(t, models.UserActive)
	_, err := env.svc.RunMonthlyBilling(ctx)
	require.NoError(t, err)

	own, err := env.svc.ListPayments(ctx, alice, models.PaymentFilter{StudentID: bob.UserID})
	require.NoError(t, err)
	require.Len(t, own, 2)
	for _, p := range own {
		assert.Equal(t, alice.UserID, p.StudentID, "students only see their own payments")
	}

	all, err := env.svc.ListPayments(ctx, staff, models.PaymentFilter{Status: models.PaymentPending})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = env.svc.ListPayments(ctx, security, models.PaymentFilter{})
	assert.ErrorIs(t, err, models.ErrForbidden)

	period, err := env.svc.PeriodPayments(ctx, admin, utils.Period{Month: 11, Year: 2025})
	require.NoError(t, err)
	assert.Len(t, period, 4)
	_, err = env.svc.PeriodPayments(ctx, staff, utils.Period{Month: 11, Year: 2025})
	assert.ErrorIs(t, err, models.ErrForbidden)
}
