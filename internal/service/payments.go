package service

import (
	"context"

	"github.com/Dan9191/hallbridge/internal/models"
	"github.com/Dan9191/hallbridge/internal/utils"
)

// BillUnbilled marks a bill category no payment has been issued for yet
const BillUnbilled = "unbilled"

// BillItem is one category of the live bill
type BillItem struct {
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
	LateFee   float64 `json:"late_fee"`
	Status    string  `json:"status"`
	PaymentID string  `json:"payment_id,omitempty"`
}

// BillView is a student's bill for a period computed from the live ledgers
type BillView struct {
	Period  utils.Period `json:"period"`
	Usage   Usage        `json:"usage"`
	Charges Charges      `json:"charges"`
	Total   float64      `json:"total"`
	Items   []BillItem   `json:"items"`
	Paid    bool         `json:"paid"`
}

// CurrentBill computes the calling student's bill for period from the ledgers, with the same
// charge calculation as the monthly job, and marks each category with the state of its payment.
func (s *Service) CurrentBill(ctx context.Context, actor models.Identity, period utils.Period) (*BillView, error) {
	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	settings, err := s.LoadBillingSettings(ctx)
	if err != nil {
		return nil, err
	}
	usage, err := s.collectUsage(ctx, period, actor.UserID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPayments(ctx, models.PaymentFilter{
		StudentID:    actor.UserID,
		BillingMonth: period.Month,
		BillingYear:  period.Year,
	})
	if err != nil {
		return nil, err
	}
	byType := make(map[string]models.Payment, len(payments))
	for _, p := range payments {
		byType[p.Type] = p
	}

	u := usage[actor.UserID]
	charges := CalculateCharges(settings, u)
	view := &BillView{Period: period, Usage: u, Charges: charges, Total: charges.Total(), Paid: true}
	for _, typ := range models.PaymentTypes {
		// an issued payment stays on the bill even when the ledgers no longer charge for it
		p, issued := byType[typ]
		if !issued && !charges.Billable(typ) {
			continue
		}
		item := BillItem{Type: typ, Amount: charges.Amount(typ), Status: BillUnbilled}
		if issued {
			item.Amount, item.LateFee, item.Status, item.PaymentID = p.Amount, p.LateFee, p.Status, p.ID
		}
		if item.Status != models.PaymentCompleted {
			view.Paid = false
		}
		view.Items = append(view.Items, item)
	}
	return view, nil
}

// ListPayments returns the caller's payments; staff may filter across students
func (s *Service) ListPayments(ctx context.Context, actor models.Identity, filter models.PaymentFilter) ([]models.Payment, error) {
	switch {
	case actor.Is(models.RoleStudent):
		filter.StudentID = actor.UserID
	case actor.Is(models.RoleStaff, models.RoleAdmin):
	default:
		return nil, models.ErrForbidden
	}
	return s.store.ListPayments(ctx, filter)
}

// CompletePayment records a pending payment as paid
func (s *Service) CompletePayment(ctx context.Context, actor models.Identity, id string) (*models.Payment, error) {
	if err := requireRole(actor, models.RoleStaff, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := checkID("payment", id); err != nil {
		return nil, err
	}
	if err := s.store.CompletePayment(ctx, id, s.now().UTC()); err != nil {
		return nil, err
	}
	p, err := s.store.FindPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Payment %s (%s %d/%d) completed by %s", p.ID, p.Type, p.BillingMonth, p.BillingYear, actor.UserID)
	return p, nil
}

// PeriodPayments returns every payment of a billing period for statements
func (s *Service) PeriodPayments(ctx context.Context, actor models.Identity, period utils.Period) ([]models.Payment, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, models.PaymentFilter{BillingMonth: period.Month, BillingYear: period.Year})
}
