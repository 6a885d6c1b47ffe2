package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/hallbridge/internal/models"
)

// openTestRepository connects to the database named by HALLBRIDGE_TEST_DB and empties the hall tables.
// The tests are skipped when the variable is unset.
func openTestRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("HALLBRIDGE_TEST_DB")
	if dsn == "" {
		t.Skip("integration tests are disabled; set HALLBRIDGE_TEST_DB to a PostgreSQL DSN to enable")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Migrate(ctx))
	_, err = db.ExecContext(ctx, `TRUNCATE hall.payments, hall.gate_passes, hall.laundry_requests,
		hall.meal_votes, hall.meal_ratings, hall.guest_meal_records, hall.meal_records,
		hall.settings, hall.users`)
	require.NoError(t, err)
	return repo
}

func createStudent(t *testing.T, repo *Repository) *models.User {
	t.Helper()
	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         "Student",
		Email:        uuid.NewString() + "@hall.test",
		PasswordHash: "x",
		Role:         models.RoleStudent,
		Status:       models.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func TestInsertPaymentsSkipsDuplicates(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	student := createStudent(t, repo)

	due := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)
	payment := func(typ string, amount float64) models.Payment {
		return models.Payment{
			ID: uuid.NewString(), StudentID: student.ID, Type: typ, Amount: amount,
			BillingMonth: 11, BillingYear: 2025, DueDate: due, FinalAmount: amount,
			Status: models.PaymentPending, CreatedAt: due, UpdatedAt: due,
		}
	}

	n, err := repo.InsertPayments(ctx, []models.Payment{payment(models.PaymentHallFee, 5000), payment(models.PaymentOther, 150)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.InsertPayments(ctx, []models.Payment{payment(models.PaymentHallFee, 5000), payment(models.PaymentMessFee, 300)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := repo.CountPaymentsForPeriod(ctx, 11, 2025)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestApplyLateFeesOnce(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	student := createStudent(t, repo)

	due := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)
	p := models.Payment{
		ID: uuid.NewString(), StudentID: student.ID, Type: models.PaymentHallFee, Amount: 5000,
		BillingMonth: 11, BillingYear: 2025, DueDate: due, FinalAmount: 5000,
		Status: models.PaymentPending, CreatedAt: due, UpdatedAt: due,
	}
	_, err := repo.InsertPayments(ctx, []models.Payment{p})
	require.NoError(t, err)

	later := due.Add(48 * time.Hour)
	n, err := repo.ApplyLateFees(ctx, 5, later)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = repo.ApplyLateFees(ctx, 5, later)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := repo.FindPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.LateFee)
	assert.Equal(t, 5250.0, got.FinalAmount)
}

func TestTransitionGatePassCompareAndSwap(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	student := createStudent(t, repo)
	now := time.Now().UTC()

	pass := &models.GatePass{
		ID: uuid.NewString(), StudentID: student.ID, Purpose: "Visit", Destination: "Home",
		OutDate: "2025-12-30", OutTime: "09:00", ReturnDate: "2025-12-31", ReturnTime: "12:00",
		ContactNumber: "1", EmergencyContact: "2", Status: models.PassPending, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.CreateGatePass(ctx, pass))

	approve := models.PassTransition{From: models.PassPending, To: models.PassApproved, Actor: uuid.NewString(), At: now}
	require.NoError(t, repo.TransitionGatePass(ctx, pass.ID, approve))
	assert.ErrorIs(t, repo.TransitionGatePass(ctx, pass.ID, approve), models.ErrInvalidTransition)
	assert.ErrorIs(t, repo.TransitionGatePass(ctx, uuid.NewString(), approve), models.ErrNotFound)

	got, err := repo.FindGatePass(ctx, pass.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PassApproved, got.Status)
	assert.Equal(t, approve.Actor, got.ApprovedBy)
}

func TestMealVotesAndAggregates(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	alice := createStudent(t, repo)
	bob := createStudent(t, repo)
	now := time.Now().UTC()

	require.NoError(t, repo.UpsertMealRecord(ctx, &models.MealRecord{StudentID: alice.ID, Date: "2025-11-02", Breakfast: true, UpdatedAt: now}))
	require.NoError(t, repo.UpsertMealRecord(ctx, &models.MealRecord{StudentID: alice.ID, Date: "2025-11-03", Breakfast: true, Lunch: true, UpdatedAt: now}))
	require.NoError(t, repo.UpsertMealRecord(ctx, &models.MealRecord{StudentID: bob.ID, Date: "2025-12-01", Dinner: true, UpdatedAt: now}))

	counts, err := repo.AggregateMeals(ctx, "2025-11-01", "2025-12-01")
	require.NoError(t, err)
	assert.Equal(t, models.MealCounts{Breakfast: 2, Lunch: 1}, counts[alice.ID])
	assert.NotContains(t, counts, bob.ID)

	vote := &models.MealVote{ID: uuid.NewString(), StudentID: alice.ID, Date: "2025-11-02", Slot: models.SlotLunch, Rating: 4, CreatedAt: now}
	require.NoError(t, repo.CreateMealVote(ctx, vote))
	vote.ID = uuid.NewString()
	assert.ErrorIs(t, repo.CreateMealVote(ctx, vote), models.ErrConflict)

	ratings, err := repo.ListMealRatings(ctx, "2025-11-02")
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 1, ratings[0].Votes)
	assert.Equal(t, 4, ratings[0].RatingSum)
}
