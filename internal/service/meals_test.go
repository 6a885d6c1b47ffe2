package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/hallbridge/internal/models"
)

func TestMarkMealsOverwritesDay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	student := env.addStudent(t, models.UserActive)

	_, err := env.svc.MarkMeals(ctx, student, MealInput{Date: "2025-11-05", Breakfast: true, Dinner: true})
	require.NoError(t, err)
	_, err = env.svc.MarkMeals(ctx, student, MealInput{Date: "2025-11-05", Lunch: true})
	require.NoError(t, err)

	counts, err := env.store.AggregateMeals(ctx, "2025-11-01", "2025-12-01", student.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.MealCounts{Lunch: 1}, counts[student.UserID])
}

func TestMealInputValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	student := env.addStudent(t, models.UserActive)
	var verr *models.ValidationError

	_, err := env.svc.MarkMeals(ctx, student, MealInput{Date: "05/11/2025", Breakfast: true})
	assert.ErrorAs(t, err, &verr)

	_, err = env.svc.MarkMeals(ctx, staff, MealInput{Date: "2025-11-05"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = env.svc.AddGuestMeal(ctx, student, GuestMealInput{Date: "2025-11-05", GuestName: "Rafi"})
	assert.ErrorAs(t, err, &verr, "a guest meal needs at least one meal")

	_, err = env.svc.AddGuestMeal(ctx, student, GuestMealInput{Date: "2025-11-05", GuestName: "Rafi", Lunch: -1, Dinner: 2})
	assert.ErrorAs(t, err, &verr)
}

func TestVoteMeal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addStudent(t, models.UserActive)
	bob := env.addStudent(t, models.UserActive)

	_, err := env.svc.VoteMeal(ctx, alice, VoteInput{Date: "2025-11-05", Slot: models.SlotLunch, Rating: 4})
	require.NoError(t, err)
	_, err = env.svc.VoteMeal(ctx, bob, VoteInput{Date: "2025-11-05", Slot: models.SlotLunch, Rating: 5})
	require.NoError(t, err)
	_, err = env.svc.VoteMeal(ctx, bob, VoteInput{Date: "2025-11-05", Slot: models.SlotDinner, Rating: 2, Comment: "cold"})
	require.NoError(t, err)

	_, err = env.svc.VoteMeal(ctx, alice, VoteInput{Date: "2025-11-05", Slot: models.SlotLunch, Rating: 1})
	assert.ErrorIs(t, err, models.ErrConflict)

	var verr *models.ValidationError
	_, err = env.svc.VoteMeal(ctx, alice, VoteInput{Date: "2025-11-05", Slot: "brunch", Rating: 3})
	assert.ErrorAs(t, err, &verr)
	_, err = env.svc.VoteMeal(ctx, alice, VoteInput{Date: "2025-11-05", Slot: models.SlotDinner, Rating: 6})
	assert.ErrorAs(t, err, &verr)

	ratings, err := env.svc.MealRatings(ctx, "2025-11-05")
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, models.SlotDinner, ratings[0].Slot)
	assert.Equal(t, 2.0, ratings[0].Average)
	assert.Equal(t, models.SlotLunch, ratings[1].Slot)
	assert.Equal(t, 2, ratings[1].Votes)
	assert.Equal(t, 4.5, ratings[1].Average)

	_, err = env.svc.MealRatings(ctx, "yesterday")
	assert.ErrorAs(t, err, &verr)
}
