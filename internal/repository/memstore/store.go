// Package memstore keeps every hall table in process memory. It honours the same
// uniqueness and compare-and-swap contracts as the PostgreSQL repository and backs
// STORAGE=memory as well as the service and handler tests.
package memstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dan9191/hallbridge/internal/models"
)

type mealKey struct {
	studentID, date string
}

type voteKey struct {
	studentID, date, slot string
}

type ratingKey struct {
	date, slot string
}

type paymentKey struct {
	studentID   string
	month, year int
	paymentType string
}

// Store is an in-memory implementation of the hall repositories
type Store struct {
	mu           sync.RWMutex
	users        map[string]*models.User
	settings     map[string]models.Setting
	meals        map[mealKey]models.MealRecord
	guestMeals   []models.GuestMealRecord
	votes        map[voteKey]models.MealVote
	ratings      map[ratingKey]models.MealRating
	laundry      map[string]*models.LaundryRequest
	payments     map[string]*models.Payment
	paymentIndex map[paymentKey]string
	passes       map[string]*models.GatePass
}

// New returns an empty store
func New() *Store {
	return &Store{
		users:        make(map[string]*models.User),
		settings:     make(map[string]models.Setting),
		meals:        make(map[mealKey]models.MealRecord),
		votes:        make(map[voteKey]models.MealVote),
		ratings:      make(map[ratingKey]models.MealRating),
		laundry:      make(map[string]*models.LaundryRequest),
		payments:     make(map[string]*models.Payment),
		paymentIndex: make(map[paymentKey]string),
		passes:       make(map[string]*models.GatePass),
	}
}

// Users

// CreateUser creates a new user; emails are unique regardless of case
func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user %s: %w", user.Email, models.ErrConflict)
		}
	}
	u := *user
	s.users[u.ID] = &u
	return nil
}

// FindUserByID retrieves a user by id
func (s *Store) FindUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
}

// FindUserByEmail retrieves a user by email
func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
}

// UpdateUserStatus moves a user from one status to another
func (s *Store) UpdateUserStatus(_ context.Context, id, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.ErrNotFound
	}
	if u.Status != from {
		return models.ErrInvalidTransition
	}
	u.Status = to
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ListActiveStudents returns every student taking part in billing, oldest first
func (s *Store) ListActiveStudents(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []models.User
	for _, u := range s.users {
		if u.IsActiveStudent() {
			users = append(users, *u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// Settings

// GetSetting returns the raw value of key and whether it exists
func (s *Store) GetSetting(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.settings[key]
	return st.Value, ok, nil
}

// ListSettings returns all settings ordered by category and key
func (s *Store) ListSettings(_ context.Context) ([]models.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := make([]models.Setting, 0, len(s.settings))
	for _, st := range s.settings {
		settings = append(settings, st)
	}
	sort.Slice(settings, func(i, j int) bool {
		if settings[i].Category != settings[j].Category {
			return settings[i].Category < settings[j].Category
		}
		return settings[i].Key < settings[j].Key
	})
	return settings, nil
}

// UpsertSettings writes every setting; existing keys keep their category
func (s *Store) UpsertSettings(_ context.Context, settings []models.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range settings {
		if cur, ok := s.settings[st.Key]; ok {
			cur.Value = st.Value
			s.settings[st.Key] = cur
			continue
		}
		if st.Category == "" {
			st.Category = models.DefaultSettingCategory
		}
		s.settings[st.Key] = st
	}
	return nil
}

// Meals

// UpsertMealRecord replaces a student's meals for a day
func (s *Store) UpsertMealRecord(_ context.Context, rec *models.MealRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meals[mealKey{rec.StudentID, rec.Date}] = *rec
	return nil
}

// CreateGuestMeal stores a guest meal record
func (s *Store) CreateGuestMeal(_ context.Context, rec *models.GuestMealRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guestMeals = append(s.guestMeals, *rec)
	return nil
}

// CreateMealVote stores a vote and folds it into the rating of the meal
func (s *Store) CreateMealVote(_ context.Context, vote *models.MealVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vk := voteKey{vote.StudentID, vote.Date, vote.Slot}
	if _, ok := s.votes[vk]; ok {
		return fmt.Errorf("vote for %s %s: %w", vote.Date, vote.Slot, models.ErrConflict)
	}
	s.votes[vk] = *vote

	rk := ratingKey{vote.Date, vote.Slot}
	r := s.ratings[rk]
	r.Date, r.Slot = vote.Date, vote.Slot
	r.Votes++
	r.RatingSum += vote.Rating
	s.ratings[rk] = r
	return nil
}

// ListMealRatings returns the ratings of every slot voted on for date
func (s *Store) ListMealRatings(_ context.Context, date string) ([]models.MealRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ratings []models.MealRating
	for k, r := range s.ratings {
		if k.date == date {
			ratings = append(ratings, r)
		}
	}
	sort.Slice(ratings, func(i, j int) bool { return ratings[i].Slot < ratings[j].Slot })
	return ratings, nil
}

// AggregateMeals counts regular meals per student and slot for dates in [from, to)
func (s *Store) AggregateMeals(_ context.Context, from, to string, studentIDs ...string) (map[string]models.MealCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := idSet(studentIDs)
	counts := make(map[string]models.MealCounts)
	for k, rec := range s.meals {
		if k.date < from || k.date >= to || !want.has(k.studentID) {
			continue
		}
		c := counts[k.studentID]
		if rec.Breakfast {
			c.Breakfast++
		}
		if rec.Lunch {
			c.Lunch++
		}
		if rec.Dinner {
			c.Dinner++
		}
		counts[k.studentID] = c
	}
	return counts, nil
}

// AggregateGuestMeals sums guest meals per sponsoring student for dates in [from, to)
func (s *Store) AggregateGuestMeals(_ context.Context, from, to string, studentIDs ...string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := idSet(studentIDs)
	totals := make(map[string]int)
	for _, g := range s.guestMeals {
		if g.Date < from || g.Date >= to || !want.has(g.StudentID) {
			continue
		}
		totals[g.StudentID] += g.Total()
	}
	return totals, nil
}

// Laundry

// CreateLaundryRequest stores a new laundry request
func (s *Store) CreateLaundryRequest(_ context.Context, req *models.LaundryRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *req
	cp.Items = append([]models.LaundryItem(nil), req.Items...)
	s.laundry[cp.ID] = &cp
	return nil
}

// FindLaundryRequest retrieves a laundry request by id
func (s *Store) FindLaundryRequest(_ context.Context, id string) (*models.LaundryRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.laundry[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, fmt.Errorf("laundry request %s: %w", id, models.ErrNotFound)
}

// AdvanceLaundryStatus moves a request from one status to the next
func (s *Store) AdvanceLaundryStatus(_ context.Context, id, from, to string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.laundry[id]
	if !ok {
		return models.ErrNotFound
	}
	if r.Status != from {
		return models.ErrInvalidTransition
	}
	r.Status = to
	switch to {
	case models.LaundryCollected:
		r.PickupAt = &at
	case models.LaundryDelivered:
		r.DeliveredAt = &at
	}
	r.UpdatedAt = at
	return nil
}

// ListLaundryRequests lists requests, newest first; an empty studentID lists everyone's
func (s *Store) ListLaundryRequests(_ context.Context, studentID string) ([]models.LaundryRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reqs []models.LaundryRequest
	for _, r := range s.laundry {
		if studentID == "" || r.StudentID == studentID {
			reqs = append(reqs, *r)
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return reqs, nil
}

// CountLaundryRequests counts requests per student created in [from, to)
func (s *Store) CountLaundryRequests(_ context.Context, from, to time.Time, studentIDs ...string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := idSet(studentIDs)
	counts := make(map[string]int)
	for _, r := range s.laundry {
		if r.CreatedAt.Before(from) || !r.CreatedAt.Before(to) || !want.has(r.StudentID) {
			continue
		}
		counts[r.StudentID]++
	}
	return counts, nil
}

// Payments

// InsertPayments stores payments, skipping those that collide on (student, month, year, type)
func (s *Store) InsertPayments(_ context.Context, payments []models.Payment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, p := range payments {
		k := paymentKey{p.StudentID, p.BillingMonth, p.BillingYear, p.Type}
		if _, ok := s.paymentIndex[k]; ok {
			continue
		}
		cp := p
		s.payments[cp.ID] = &cp
		s.paymentIndex[k] = cp.ID
		inserted++
	}
	return inserted, nil
}

// CountPaymentsForPeriod counts the payments of a billing period
func (s *Store) CountPaymentsForPeriod(_ context.Context, month, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.payments {
		if p.BillingMonth == month && p.BillingYear == year {
			n++
		}
	}
	return n, nil
}

// ApplyLateFees charges percent of the amount on every overdue pending payment without a late fee
func (s *Store) ApplyLateFees(_ context.Context, percent float64, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, p := range s.payments {
		if p.Status != models.PaymentPending || !p.DueDate.Before(now) || p.LateFee != 0 || p.Amount <= 0 {
			continue
		}
		p.LateFee = roundCents(p.Amount * percent / 100)
		p.FinalAmount = p.Amount + p.LateFee
		p.UpdatedAt = now
		n++
	}
	return n, nil
}

// CompletePayment marks a pending payment as paid
func (s *Store) CompletePayment(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return models.ErrNotFound
	}
	if p.Status != models.PaymentPending {
		return models.ErrInvalidTransition
	}
	p.Status = models.PaymentCompleted
	p.PaidAt = &at
	p.UpdatedAt = at
	return nil
}

// FindPayment retrieves a payment by id
func (s *Store) FindPayment(_ context.Context, id string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("payment %s: %w", id, models.ErrNotFound)
}

// ListPayments lists payments matching the filter
func (s *Store) ListPayments(_ context.Context, f models.PaymentFilter) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payments []models.Payment
	for _, p := range s.payments {
		if (f.StudentID != "" && p.StudentID != f.StudentID) ||
			(f.BillingMonth != 0 && p.BillingMonth != f.BillingMonth) ||
			(f.BillingYear != 0 && p.BillingYear != f.BillingYear) ||
			(f.Status != "" && p.Status != f.Status) {
			continue
		}
		payments = append(payments, *p)
	}
	sort.Slice(payments, func(i, j int) bool {
		a, b := payments[i], payments[j]
		if a.BillingYear != b.BillingYear {
			return a.BillingYear > b.BillingYear
		}
		if a.BillingMonth != b.BillingMonth {
			return a.BillingMonth > b.BillingMonth
		}
		if a.StudentID != b.StudentID {
			return a.StudentID < b.StudentID
		}
		return a.Type < b.Type
	})
	return payments, nil
}

// Gate passes

// CreateGatePass stores a newly submitted gate pass
func (s *Store) CreateGatePass(_ context.Context, p *models.GatePass) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.passes[cp.ID] = &cp
	return nil
}

// FindGatePass retrieves a gate pass by id
func (s *Store) FindGatePass(_ context.Context, id string) (*models.GatePass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.passes[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("gate pass %s: %w", id, models.ErrNotFound)
}

// TransitionGatePass applies tr when the pass is still in tr.From
func (s *Store) TransitionGatePass(_ context.Context, id string, tr models.PassTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.passes[id]
	if !ok {
		return models.ErrNotFound
	}
	if p.Status != tr.From {
		return models.ErrInvalidTransition
	}
	at := tr.At
	switch tr.To {
	case models.PassApproved:
		p.ApprovedBy, p.ApprovedAt = tr.Actor, &at
	case models.PassRejected:
		p.RejectedBy, p.RejectedAt, p.RejectionReason = tr.Actor, &at, tr.Reason
	case models.PassActive:
		p.CheckedOutBy, p.ActualOutTime = tr.Actor, &at
	case models.PassCompleted, models.PassLate:
		p.CheckedInBy, p.ActualReturnTime = tr.Actor, &at
	default:
		return models.ErrInvalidTransition
	}
	p.Status = tr.To
	p.UpdatedAt = at
	return nil
}

// ListGatePasses lists passes, newest first; empty arguments do not filter
func (s *Store) ListGatePasses(_ context.Context, studentID, status string) ([]models.GatePass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var passes []models.GatePass
	for _, p := range s.passes {
		if (studentID == "" || p.StudentID == studentID) && (status == "" || p.Status == status) {
			passes = append(passes, *p)
		}
	}
	sort.Slice(passes, func(i, j int) bool { return passes[i].CreatedAt.After(passes[j].CreatedAt) })
	return passes, nil
}

type ids map[string]struct{}

func idSet(list []string) ids {
	if len(list) == 0 {
		return nil
	}
	set := make(ids, len(list))
	for _, id := range list {
		set[id] = struct{}{}
	}
	return set
}

// has treats a nil set as "every id"
func (s ids) has(id string) bool {
	if s == nil {
		return true
	}
	_, ok := s[id]
	return ok
}

// roundCents mirrors the NUMERIC(12,2) columns of the SQL schema
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
