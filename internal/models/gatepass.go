package models

import "time"

// Gate pass statuses
const (
	PassPending   = "pending"
	PassApproved  = "approved"
	PassActive    = "active"
	PassCompleted = "completed"
	PassLate      = "late"
	PassRejected  = "rejected"
)

// Gate pass actions
const (
	ActionApprove      = "approve"
	ActionReject       = "reject"
	ActionVerifyExit   = "verify_exit"
	ActionVerifyReturn = "verify_return"
)

// DefaultRejectionReason is recorded when a rejection carries no reason
const DefaultRejectionReason = "Not specified"

// GatePass is a resident's permission to leave the hall and come back
type GatePass struct {
	ID               string     `json:"id"`
	StudentID        string     `json:"student_id"`
	Purpose          string     `json:"purpose"`
	Destination      string     `json:"destination"`
	OutDate          string     `json:"out_date"`    // Format: YYYY-MM-DD
	OutTime          string     `json:"out_time"`    // Format: HH:MM
	ReturnDate       string     `json:"return_date"` // Format: YYYY-MM-DD
	ReturnTime       string     `json:"return_time"` // Format: HH:MM
	ContactNumber    string     `json:"contact_number"`
	EmergencyContact string     `json:"emergency_contact"`
	Status           string     `json:"status"`
	ApprovedBy       string     `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	RejectedBy       string     `json:"rejected_by,omitempty"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	CheckedOutBy     string     `json:"checked_out_by,omitempty"`
	ActualOutTime    *time.Time `json:"actual_out_time,omitempty"`
	CheckedInBy      string     `json:"checked_in_by,omitempty"`
	ActualReturnTime *time.Time `json:"actual_return_time,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsTerminal reports whether the pass can no longer change
func (p *GatePass) IsTerminal() bool {
	switch p.Status {
	case PassCompleted, PassLate, PassRejected:
		return true
	}
	return false
}

// PassTransition is a status change applied as a compare-and-swap on From.
// Actor and At are written to the columns belonging to To.
type PassTransition struct {
	From   string
	To     string
	Actor  string
	At     time.Time
	Reason string
}
