package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Dan9191/hallbridge/internal/models"
	"github.com/Dan9191/hallbridge/internal/utils"
)

// BillingResult summarises one run of the monthly billing job
type BillingResult struct {
	Period        utils.Period `json:"period"`
	Students      int          `json:"students"`
	Created       int          `json:"created"`
	Skipped       int          `json:"skipped"`
	AlreadyBilled bool         `json:"already_billed"`
}

// RunMonthlyBilling charges every active student for the previous month.
// Payments are unique per (student, month, year, type) in storage, so a rerun only fills in
// what is missing and a complete period is left untouched.
func (s *Service) RunMonthlyBilling(ctx context.Context) (*BillingResult, error) {
	now := s.now()
	period := utils.PreviousPeriod(now)
	result := &BillingResult{Period: period}
	log := s.log.WithField("period", period.String())

	settings, err := s.LoadBillingSettings(ctx)
	if err != nil {
		return nil, err
	}

	students, err := s.store.ListActiveStudents(ctx)
	if err != nil {
		return nil, err
	}
	result.Students = len(students)
	if len(students) == 0 {
		log.Info("No active students to bill")
		return result, nil
	}

	usage, err := s.collectUsage(ctx, period)
	if err != nil {
		return nil, err
	}

	dueDate := utils.DueDate(now, settings.PaymentDueDays)
	createdAt := now.UTC()
	payments := make([]models.Payment, 0, len(students)*len(models.PaymentTypes))
	for _, st := range students {
		charges := CalculateCharges(settings, usage[st.ID])
		for _, typ := range models.PaymentTypes {
			if !charges.Billable(typ) {
				continue
			}
			amount := charges.Amount(typ)
			payments = append(payments, models.Payment{
				ID:           uuid.NewString(),
				StudentID:    st.ID,
				Type:         typ,
				Amount:       amount,
				BillingMonth: period.Month,
				BillingYear:  period.Year,
				DueDate:      dueDate,
				FinalAmount:  amount,
				Status:       models.PaymentPending,
				CreatedAt:    createdAt,
				UpdatedAt:    createdAt,
			})
		}
	}

	created, err := s.store.InsertPayments(ctx, payments)
	if err != nil {
		return nil, fmt.Errorf("billing %s: %w", period, err)
	}
	result.Created = created
	result.Skipped = len(payments) - created
	if created == 0 {
		existing, err := s.store.CountPaymentsForPeriod(ctx, period.Month, period.Year)
		if err != nil {
			return nil, err
		}
		result.AlreadyBilled = existing > 0
	}

	log.WithFields(logrus.Fields{
		"students": result.Students,
		"created":  result.Created,
		"skipped":  result.Skipped,
	}).Info("Monthly billing finished")
	return result, nil
}

// collectUsage aggregates the three ledgers over period, concurrently, keyed by student id.
// With no studentIDs every student is aggregated.
func (s *Service) collectUsage(ctx context.Context, period utils.Period, studentIDs ...string) (map[string]Usage, error) {
	var (
		meals   map[string]models.MealCounts
		guests  map[string]int
		laundry map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		meals, err = s.store.AggregateMeals(gctx, period.StartDate(), period.EndDate(), studentIDs...)
		return err
	})
	g.Go(func() (err error) {
		guests, err = s.store.AggregateGuestMeals(gctx, period.StartDate(), period.EndDate(), studentIDs...)
		return err
	})
	g.Go(func() (err error) {
		laundry, err = s.store.CountLaundryRequests(gctx, period.Start(), period.End(), studentIDs...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to aggregate usage for %s: %w", period, err)
	}

	usage := make(map[string]Usage, len(meals))
	for id, c := range meals {
		u := usage[id]
		u.Meals = c
		usage[id] = u
	}
	for id, n := range guests {
		u := usage[id]
		u.GuestMeals = n
		usage[id] = u
	}
	for id, n := range laundry {
		u := usage[id]
		u.LaundryRequests = n
		usage[id] = u
	}
	return usage, nil
}
