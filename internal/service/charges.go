package service

import "github.com/Dan9191/hallbridge/internal/models"

// Usage is what a student consumed during a billing period
type Usage struct {
	Meals           models.MealCounts `json:"meals"`
	GuestMeals      int               `json:"guest_meals"`
	LaundryRequests int               `json:"laundry_requests"`
}

// Charges is the per-category bill derived from settings and usage
type Charges struct {
	HallFee    float64 `json:"hall_fee"`
	MessFee    float64 `json:"mess_fee"`
	LaundryFee float64 `json:"laundry_fee"`
	Other      float64 `json:"other"`
}

// CalculateCharges is the single charge computation shared by the monthly billing job and
// the live bill view.
func CalculateCharges(st models.BillingSettings, u Usage) Charges {
	mess := float64(u.Meals.Breakfast)*st.BreakfastPrice +
		float64(u.Meals.Lunch)*st.LunchPrice +
		float64(u.Meals.Dinner)*st.DinnerPrice +
		float64(u.GuestMeals)*st.GuestMealPrice
	return Charges{
		HallFee:    st.MonthlyRent,
		MessFee:    mess,
		LaundryFee: float64(u.LaundryRequests) * st.LaundryFee,
		Other:      st.MaintenanceFee + st.WifiFee,
	}
}

// Amount returns the charge of a payment type
func (c Charges) Amount(paymentType string) float64 {
	switch paymentType {
	case models.PaymentHallFee:
		return c.HallFee
	case models.PaymentMessFee:
		return c.MessFee
	case models.PaymentLaundryFee:
		return c.LaundryFee
	case models.PaymentOther:
		return c.Other
	}
	return 0
}

// Billable reports whether a payment of that type is issued: hall and other always,
// mess and laundry only when something is owed.
func (c Charges) Billable(paymentType string) bool {
	switch paymentType {
	case models.PaymentHallFee, models.PaymentOther:
		return true
	case models.PaymentMessFee, models.PaymentLaundryFee:
		return c.Amount(paymentType) > 0
	}
	return false
}

// Total sums every category
func (c Charges) Total() float64 {
	return c.HallFee + c.MessFee + c.LaundryFee + c.Other
}
