package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/hallbridge/internal/middleware"
	"github.com/Dan9191/hallbridge/internal/models"
)

// NewRouter wires every route; auth resolves the caller of protected routes
func NewRouter(h *Handler, auth mux.MiddlewareFunc, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Public routes
	r.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/api/auth/logout", h.Logout).Methods("POST")

	// Protected routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth)

	jobs := api.PathPrefix("/job").Subrouter()
	jobs.Use(middleware.RequireRoles(models.RoleScheduler, models.RoleAdmin))
	jobs.HandleFunc("/student-billing", h.StudentBilling).Methods("GET")
	jobs.HandleFunc("/late-fee", h.LateFee).Methods("GET")

	api.HandleFunc("/gate-pass", h.SubmitGatePass).Methods("POST")
	api.HandleFunc("/gate-pass", h.UpdateGatePass).Methods("PATCH")
	api.HandleFunc("/gate-pass", h.ListGatePasses).Methods("GET")

	api.HandleFunc("/student/billing", h.CurrentBill).Methods("GET")
	api.HandleFunc("/payments", h.ListPayments).Methods("GET")
	api.HandleFunc("/payments/{id}/complete", h.CompletePayment).Methods("POST")

	api.HandleFunc("/meals", h.MarkMeals).Methods("PUT")
	api.HandleFunc("/meals/guest", h.AddGuestMeal).Methods("POST")
	api.HandleFunc("/meals/vote", h.VoteMeal).Methods("POST")
	api.HandleFunc("/meals/ratings", h.MealRatings).Methods("GET")

	api.HandleFunc("/laundry", h.CreateLaundry).Methods("POST")
	api.HandleFunc("/laundry", h.ListLaundry).Methods("GET")
	api.HandleFunc("/laundry/{id}", h.AdvanceLaundry).Methods("PATCH")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.HandleFunc("/students/{id}/approve", h.ApproveStudent).Methods("PATCH")
	admin.HandleFunc("/settings", h.GetSettings).Methods("GET")
	admin.HandleFunc("/settings", h.PutSettings).Methods("PUT")
	admin.HandleFunc("/payments", h.ListPayments).Methods("GET")
	admin.HandleFunc("/payments/export", h.ExportPayments).Methods("GET")

	return r
}
