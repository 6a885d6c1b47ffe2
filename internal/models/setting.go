package models

// Setting keys read by the billing and late-fee jobs
const (
	SettingMonthlyRent    = "monthly_rent"
	SettingMaintenanceFee = "maintenance_fee"
	SettingWifiFee        = "wifi_fee"
	SettingBreakfastPrice = "breakfast_price"
	SettingLunchPrice     = "lunch_price"
	SettingDinnerPrice    = "dinner_price"
	SettingGuestMealPrice = "guest_meal_price"
	SettingLaundryFee     = "laundry_fee"
	SettingPaymentDueDays = "payment_due_days"
	SettingLateFeePercent = "late_fee_percent"
)

// DefaultSettingCategory is assigned to keys inserted without one
const DefaultSettingCategory = "general"

// Setting is a single key/value configuration entry
type Setting struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Category string `json:"category"`
}

// BillingSettings is the typed view of the settings used for charge calculation
type BillingSettings struct {
	MonthlyRent    float64 `json:"monthly_rent"`
	MaintenanceFee float64 `json:"maintenance_fee"`
	WifiFee        float64 `json:"wifi_fee"`
	BreakfastPrice float64 `json:"breakfast_price"`
	LunchPrice     float64 `json:"lunch_price"`
	DinnerPrice    float64 `json:"dinner_price"`
	GuestMealPrice float64 `json:"guest_meal_price"`
	LaundryFee     float64 `json:"laundry_fee"`
	PaymentDueDays int     `json:"payment_due_days"`
}
