package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Dan9191/hallbridge/internal/models"
)

// maxPaymentDueDays bounds payment_due_days to one year
const maxPaymentDueDays = 366

// SettingInput is one entry of a bulk settings update
type SettingInput struct {
	Key      string `json:"key" validate:"required,max=100"`
	Value    string `json:"value" validate:"max=255"`
	Category string `json:"category,omitempty" validate:"max=50"`
}

// GetSetting returns the numeric value of key. Missing and non-numeric values read as 0.
func (s *Service) GetSetting(ctx context.Context, key string) (float64, error) {
	raw, ok, err := s.store.GetSetting(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		s.log.Warnf("Setting %s has non-numeric value %q, reading as 0", key, raw)
		return 0, nil
	}
	return v, nil
}

// ListSettings returns every stored setting
func (s *Service) ListSettings(ctx context.Context) ([]models.Setting, error) {
	return s.store.ListSettings(ctx)
}

// SetSettings upserts every entry; new keys without a category land in "general"
func (s *Service) SetSettings(ctx context.Context, actor models.Identity, inputs []SettingInput) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if len(inputs) == 0 {
		return models.NewValidationError("no settings given")
	}
	settings := make([]models.Setting, 0, len(inputs))
	for _, in := range inputs {
		if err := s.validateStruct(in); err != nil {
			return err
		}
		settings = append(settings, models.Setting{
			Key:      strings.TrimSpace(in.Key),
			Value:    strings.TrimSpace(in.Value),
			Category: strings.TrimSpace(in.Category),
		})
	}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		return err
	}
	s.log.Infof("Settings updated by %s: %d keys", actor.UserID, len(settings))
	return nil
}

// LoadBillingSettings reads the typed settings used by billing. Missing keys default to 0
// with a warning; malformed, negative or out of range values are rejected.
// late_fee_percent is left to the late-fee job.
func (s *Service) LoadBillingSettings(ctx context.Context) (models.BillingSettings, error) {
	all, err := s.store.ListSettings(ctx)
	if err != nil {
		return models.BillingSettings{}, err
	}
	raw := make(map[string]string, len(all))
	for _, st := range all {
		raw[st.Key] = st.Value
	}

	var st models.BillingSettings
	var fields []models.FieldError
	num := func(key string) float64 {
		v, ok := raw[key]
		if !ok {
			s.log.Warnf("Setting %s is not configured, using 0", key)
			return 0
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		switch {
		case err != nil:
			fields = append(fields, models.FieldError{Field: key, Error: fmt.Sprintf("not a number: %q", v)})
		case f < 0 || math.IsNaN(f) || math.IsInf(f, 0):
			fields = append(fields, models.FieldError{Field: key, Error: "must be a non-negative number"})
		}
		return f
	}

	st.MonthlyRent = num(models.SettingMonthlyRent)
	st.MaintenanceFee = num(models.SettingMaintenanceFee)
	st.WifiFee = num(models.SettingWifiFee)
	st.BreakfastPrice = num(models.SettingBreakfastPrice)
	st.LunchPrice = num(models.SettingLunchPrice)
	st.DinnerPrice = num(models.SettingDinnerPrice)
	st.GuestMealPrice = num(models.SettingGuestMealPrice)
	st.LaundryFee = num(models.SettingLaundryFee)
	dueDays := num(models.SettingPaymentDueDays)
	switch {
	case dueDays != math.Trunc(dueDays):
		fields = append(fields, models.FieldError{Field: models.SettingPaymentDueDays, Error: "must be a whole number of days"})
	case dueDays > maxPaymentDueDays:
		fields = append(fields, models.FieldError{Field: models.SettingPaymentDueDays, Error: fmt.Sprintf("must be at most %d days", maxPaymentDueDays)})
	}
	st.PaymentDueDays = int(dueDays)

	if len(fields) > 0 {
		return models.BillingSettings{}, models.NewValidationError("invalid billing settings", fields...)
	}
	return st, nil
}
