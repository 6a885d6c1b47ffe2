package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dan9191/hallbridge/internal/models"
)

// UpsertMealRecord stores a student's meal flags for a day
func (r *Repository) UpsertMealRecord(ctx context.Context, rec *models.MealRecord) error {
	query := `
		INSERT INTO hall.meal_records (student_id, date, breakfast, lunch, dinner, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, date) DO UPDATE
		SET breakfast = EXCLUDED.breakfast, lunch = EXCLUDED.lunch, dinner = EXCLUDED.dinner, updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, query, rec.StudentID, rec.Date, rec.Breakfast, rec.Lunch, rec.Dinner, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert meal record: %w", err)
	}
	return nil
}

// CreateGuestMeal records guest meals sponsored by a student
func (r *Repository) CreateGuestMeal(ctx context.Context, rec *models.GuestMealRecord) error {
	query := `
		INSERT INTO hall.guest_meal_records (id, student_id, date, guest_name, breakfast, lunch, dinner, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.StudentID, rec.Date, rec.GuestName,
		rec.Breakfast, rec.Lunch, rec.Dinner, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create guest meal: %w", err)
	}
	return nil
}

// CreateMealVote stores a vote and folds it into the rating of the meal in one transaction
func (r *Repository) CreateMealVote(ctx context.Context, vote *models.MealVote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO hall.meal_votes (id, student_id, date, slot, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		vote.ID, vote.StudentID, vote.Date, vote.Slot, vote.Rating, vote.Comment, vote.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("vote for %s %s: %w", vote.Date, vote.Slot, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert meal vote: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO hall.meal_ratings (date, slot, votes, rating_sum)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (date, slot) DO UPDATE
		SET votes = hall.meal_ratings.votes + 1, rating_sum = hall.meal_ratings.rating_sum + EXCLUDED.rating_sum`,
		vote.Date, vote.Slot, vote.Rating)
	if err != nil {
		return fmt.Errorf("failed to update meal rating: %w", err)
	}
	return tx.Commit()
}

// ListMealRatings returns the ratings of every slot voted on for date
func (r *Repository) ListMealRatings(ctx context.Context, date string) ([]models.MealRating, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), slot, votes, rating_sum
		FROM hall.meal_ratings WHERE date = $1 ORDER BY slot`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.MealRating
	for rows.Next() {
		var mr models.MealRating
		if err := rows.Scan(&mr.Date, &mr.Slot, &mr.Votes, &mr.RatingSum); err != nil {
			return nil, fmt.Errorf("failed to scan meal rating: %w", err)
		}
		ratings = append(ratings, mr)
	}
	return ratings, rows.Err()
}

// AggregateMeals counts regular meals per student and slot for dates in [from, to).
// With no studentIDs every student is aggregated.
func (r *Repository) AggregateMeals(ctx context.Context, from, to string, studentIDs ...string) (map[string]models.MealCounts, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT student_id,
			COUNT(*) FILTER (WHERE breakfast),
			COUNT(*) FILTER (WHERE lunch),
			COUNT(*) FILTER (WHERE dinner)
		FROM hall.meal_records
		WHERE date >= $1 AND date < $2 AND ($3::uuid[] IS NULL OR student_id = ANY($3))
		GROUP BY student_id`, from, to, studentFilter(studentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate meals: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]models.MealCounts)
	for rows.Next() {
		var id string
		var c models.MealCounts
		if err := rows.Scan(&id, &c.Breakfast, &c.Lunch, &c.Dinner); err != nil {
			return nil, fmt.Errorf("failed to scan meal counts: %w", err)
		}
		counts[id] = c
	}
	return counts, rows.Err()
}

// AggregateGuestMeals sums guest meals per sponsoring student for dates in [from, to)
func (r *Repository) AggregateGuestMeals(ctx context.Context, from, to string, studentIDs ...string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT student_id, COALESCE(SUM(breakfast + lunch + dinner), 0)
		FROM hall.guest_meal_records
		WHERE date >= $1 AND date < $2 AND ($3::uuid[] IS NULL OR student_id = ANY($3))
		GROUP BY student_id`, from, to, studentFilter(studentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate guest meals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan guest meal total: %w", err)
		}
		totals[id] = n
	}
	return totals, rows.Err()
}

// studentFilter turns an empty id list into SQL NULL
func studentFilter(ids []string) any {
	if len(ids) == 0 {
		return nil
	}
	return pq.Array(ids)
}
