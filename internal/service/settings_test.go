package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/hallbridge/internal/models"
)

func TestGetSetting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setSettings(t, map[string]string{
		models.SettingMonthlyRent: " 4500.50 ",
		"hall_name":               "North Hall",
	})

	v, err := env.svc.GetSetting(ctx, models.SettingMonthlyRent)
	require.NoError(t, err)
	assert.Equal(t, 4500.5, v)

	v, err = env.svc.GetSetting(ctx, models.SettingWifiFee)
	require.NoError(t, err)
	assert.Zero(t, v, "missing keys read as 0")

	v, err = env.svc.GetSetting(ctx, "hall_name")
	require.NoError(t, err)
	assert.Zero(t, v, "non-numeric values read as 0")
}

func TestSetSettings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.svc.SetSettings(ctx, admin, []SettingInput{
		{Key: models.SettingMonthlyRent, Value: "5000", Category: "billing"},
		{Key: models.SettingWifiFee, Value: "50"},
	}))
	require.NoError(t, env.svc.SetSettings(ctx, admin, []SettingInput{
		{Key: models.SettingMonthlyRent, Value: "5500"},
	}))

	settings, err := env.svc.ListSettings(ctx)
	require.NoError(t, err)
	byKey := make(map[string]models.Setting)
	for _, s := range settings {
		byKey[s.Key] = s
	}
	assert.Equal(t, models.Setting{Key: models.SettingMonthlyRent, Value: "5500", Category: "billing"}, byKey[models.SettingMonthlyRent])
	assert.Equal(t, models.DefaultSettingCategory, byKey[models.SettingWifiFee].Category)
}

func TestSetSettingsRejects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	err := env.svc.SetSettings(ctx, staff, []SettingInput{{Key: models.SettingWifiFee, Value: "1"}})
	assert.ErrorIs(t, err, models.ErrForbidden)

	var verr *models.ValidationError
	err = env.svc.SetSettings(ctx, admin, nil)
	assert.ErrorAs(t, err, &verr)

	err = env.svc.SetSettings(ctx, admin, []SettingInput{{Key: "", Value: "1"}})
	assert.ErrorAs(t, err, &verr)
}

func TestLoadBillingSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("missing keys default to zero", func(t *testing.T) {
		env := newTestEnv(t)
		env.setSettings(t, map[string]string{
			models.SettingMonthlyRent:    "5000",
			models.SettingPaymentDueDays: "7",
		})
		st, err := env.svc.LoadBillingSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.BillingSettings{MonthlyRent: 5000, PaymentDueDays: 7}, st)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		env := newTestEnv(t)
		env.setSettings(t, map[string]string{
			models.SettingWifiFee:        "-5",
			models.SettingBreakfastPrice: "thirty",
			models.SettingPaymentDueDays: "2.5",
		})
		_, err := env.svc.LoadBillingSettings(ctx)
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		fields := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, f.Field)
		}
		assert.ElementsMatch(t, []string{
			models.SettingWifiFee,
			models.SettingBreakfastPrice,
			models.SettingPaymentDueDays,
		}, fields)
	})

	t.Run("due days are bounded", func(t *testing.T) {
		for _, v := range []string{"1e30", "367"} {
			env := newTestEnv(t)
			env.setSettings(t, map[string]string{models.SettingPaymentDueDays: v})
			_, err := env.svc.LoadBillingSettings(ctx)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr, v)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, models.SettingPaymentDueDays, verr.Fields[0].Field)
		}

		env := newTestEnv(t)
		env.setSettings(t, map[string]string{models.SettingPaymentDueDays: "366"})
		st, err := env.svc.LoadBillingSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 366, st.PaymentDueDays)
	})

	t.Run("late fee percent does not block billing", func(t *testing.T) {
		env := newTestEnv(t)
		env.setSettings(t, map[string]string{
			models.SettingMonthlyRent:    "5000",
			models.SettingLateFeePercent: "-3",
		})
		st, err := env.svc.LoadBillingSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5000.0, st.MonthlyRent)

		env.addStudent(t, models.UserActive)
		result, err := env.svc.RunMonthlyBilling(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Created)
	})
}
