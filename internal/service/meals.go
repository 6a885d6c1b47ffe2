package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Dan9191/hallbridge/internal/models"
)

// MealInput sets a student's regular meals for a day
type MealInput struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Breakfast bool   `json:"breakfast"`
	Lunch     bool   `json:"lunch"`
	Dinner    bool   `json:"dinner"`
}

// GuestMealInput records meals taken by a guest of the student
type GuestMealInput struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	GuestName string `json:"guestName" validate:"required,max=100"`
	Breakfast int    `json:"breakfast" validate:"min=0,max=20"`
	Lunch     int    `json:"lunch" validate:"min=0,max=20"`
	Dinner    int    `json:"dinner" validate:"min=0,max=20"`
}

// VoteInput rates a served meal
type VoteInput struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot    string `json:"slot" validate:"required,oneof=breakfast lunch dinner"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

// MarkMeals stores the meal selection of the calling student for a day
func (s *Service) MarkMeals(ctx context.Context, actor models.Identity, in MealInput) (*models.MealRecord, error) {
	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	rec := &models.MealRecord{
		StudentID: actor.UserID,
		Date:      in.Date,
		Breakfast: in.Breakfast,
		Lunch:     in.Lunch,
		Dinner:    in.Dinner,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.store.UpsertMealRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AddGuestMeal attributes a guest's meals to the calling student
func (s *Service) AddGuestMeal(ctx context.Context, actor models.Identity, in GuestMealInput) (*models.GuestMealRecord, error) {
	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	rec := &models.GuestMealRecord{
		ID:        uuid.NewString(),
		StudentID: actor.UserID,
		Date:      in.Date,
		GuestName: strings.TrimSpace(in.GuestName),
		Breakfast: in.Breakfast,
		Lunch:     in.Lunch,
		Dinner:    in.Dinner,
		CreatedAt: s.now().UTC(),
	}
	if rec.Total() == 0 {
		return nil, models.NewValidationError("a guest meal needs at least one meal")
	}
	if err := s.store.CreateGuestMeal(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// VoteMeal records the caller's rating; a second vote for the same meal is a conflict
func (s *Service) VoteMeal(ctx context.Context, actor models.Identity, in VoteInput) (*models.MealVote, error) {
	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	vote := &models.MealVote{
		ID:        uuid.NewString(),
		StudentID: actor.UserID,
		Date:      in.Date,
		Slot:      in.Slot,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateMealVote(ctx, vote); err != nil {
		return nil, err
	}
	return vote, nil
}

// MealRatings returns the average rating per slot for date
func (s *Service) MealRatings(ctx context.Context, date string) ([]models.MealRating, error) {
	if err := s.validate.Var(date, "required,datetime=2006-01-02"); err != nil {
		return nil, models.NewValidationError("date must be YYYY-MM-DD", models.FieldError{Field: "date", Error: "must match 2006-01-02"})
	}
	ratings, err := s.store.ListMealRatings(ctx, date)
	if err != nil {
		return nil, err
	}
	for i := range ratings {
		if ratings[i].Votes > 0 {
			ratings[i].Average = float64(ratings[i].RatingSum) / float64(ratings[i].Votes)
		}
	}
	return ratings, nil
}
