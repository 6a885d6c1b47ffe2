package models

import "time"

// Payment types
const (
	PaymentHallFee    = "hall_fee"
	PaymentMessFee    = "mess_fee"
	PaymentLaundryFee = "laundry_fee"
	PaymentOther      = "other"
)

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// PaymentTypes lists every payment category in statement order
var PaymentTypes = []string{PaymentHallFee, PaymentMessFee, PaymentLaundryFee, PaymentOther}

// Payment is one charge issued to a student for a billing period
type Payment struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"student_id"`
	Type         string     `json:"type"`
	Amount       float64    `json:"amount"`
	BillingMonth int        `json:"billing_month"`
	BillingYear  int        `json:"billing_year"`
	DueDate      time.Time  `json:"due_date"`
	LateFee      float64    `json:"late_fee"`
	FinalAmount  float64    `json:"final_amount"`
	Status       string     `json:"status"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PaymentFilter narrows payment listings; zero fields are ignored
type PaymentFilter struct {
	StudentID    string
	BillingMonth int
	BillingYear  int
	Status       string
}
