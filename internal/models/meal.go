package models

import "time"

// Meal slots
const (
	SlotBreakfast = "breakfast"
	SlotLunch     = "lunch"
	SlotDinner    = "dinner"
)

// MealRecord holds a student's regular meals for one day
type MealRecord struct {
	StudentID string    `json:"student_id"`
	Date      string    `json:"date"` // Format: YYYY-MM-DD
	Breakfast bool      `json:"breakfast"`
	Lunch     bool      `json:"lunch"`
	Dinner    bool      `json:"dinner"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GuestMealRecord attributes a guest's meals to the sponsoring student
type GuestMealRecord struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Date      string    `json:"date"`
	GuestName string    `json:"guest_name"`
	Breakfast int       `json:"breakfast"`
	Lunch     int       `json:"lunch"`
	Dinner    int       `json:"dinner"`
	CreatedAt time.Time `json:"created_at"`
}

// Total returns the number of guest meals in the record
func (g *GuestMealRecord) Total() int {
	return g.Breakfast + g.Lunch + g.Dinner
}

// MealVote is a student's rating of one served meal
type MealVote struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Date      string    `json:"date"`
	Slot      string    `json:"slot"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MealRating aggregates votes for a (date, slot)
type MealRating struct {
	Date      string  `json:"date"`
	Slot      string  `json:"slot"`
	Votes     int     `json:"votes"`
	RatingSum int     `json:"-"`
	Average   float64 `json:"average"`
}

// MealCounts is the number of regular meals per slot over a period
type MealCounts struct {
	Breakfast int `json:"breakfast"`
	Lunch     int `json:"lunch"`
	Dinner    int `json:"dinner"`
}

// ValidSlot reports whether slot is a known meal slot
func ValidSlot(slot string) bool {
	return slot == SlotBreakfast || slot == SlotLunch || slot == SlotDinner
}
