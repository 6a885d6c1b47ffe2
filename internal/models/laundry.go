package models

import "time"

// Laundry statuses in processing order
const (
	LaundryPending   = "pending"
	LaundryCollected = "collected"
	LaundryWashing   = "washing"
	LaundryReady     = "ready"
	LaundryDelivered = "delivered"
)

var laundryFlow = []string{LaundryPending, LaundryCollected, LaundryWashing, LaundryReady, LaundryDelivered}

// LaundryItem is one line of a laundry request
type LaundryItem struct {
	ItemType string `json:"item_type" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

// LaundryRequest is a batch of clothes handed to the laundry
type LaundryRequest struct {
	ID          string        `json:"id"`
	StudentID   string        `json:"student_id"`
	Items       []LaundryItem `json:"items"`
	Status      string        `json:"status"`
	PickupAt    *time.Time    `json:"pickup_at,omitempty"`
	DeliveredAt *time.Time    `json:"delivered_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NextLaundryStatus returns the status following current, or "" when current is final or unknown
func NextLaundryStatus(current string) string {
	for i, s := range laundryFlow {
		if s == current && i+1 < len(laundryFlow) {
			return laundryFlow[i+1]
		}
	}
	return ""
}
