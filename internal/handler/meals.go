package handler

import (
	"net/http"

	"github.com/Dan9191/hallbridge/internal/service"
	"github.com/Dan9191/hallbridge/internal/utils"
)

// MarkMeals stores the caller's meal selection for a day
func (h *Handler) MarkMeals(w http.ResponseWriter, r *http.Request) {
	var in service.MealInput
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.svc.MarkMeals(r.Context(), identity(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// AddGuestMeal records a guest's meals
func (h *Handler) AddGuestMeal(w http.ResponseWriter, r *http.Request) {
	var in service.GuestMealInput
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.svc.AddGuestMeal(r.Context(), identity(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rec)
}

// VoteMeal records the caller's rating of a meal
func (h *Handler) VoteMeal(w http.ResponseWriter, r *http.Request) {
	var in service.VoteInput
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	vote, err := h.svc.VoteMeal(r.Context(), identity(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, vote)
}

// MealRatings returns the ratings of ?date= (default: today)
func (h *Handler) MealRatings(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = utils.Today(h.svc.Now())
	}
	ratings, err := h.svc.MealRatings(r.Context(), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"date": date, "ratings": ratings})
}
