package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Dan9191/hallbridge/internal/export"
	"github.com/Dan9191/hallbridge/internal/models"
	"github.com/Dan9191/hallbridge/internal/utils"
)

// CurrentBill returns the caller's live bill for ?month=&year= (default: current month)
func (h *Handler) CurrentBill(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r, utils.CurrentPeriod(h.svc.Now()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.svc.CurrentBill(r.Context(), identity(r), period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// ListPayments lists payments; students only ever see their own
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.PaymentFilter{StudentID: q.Get("student_id"), Status: q.Get("status")}
	if q.Get("month") != "" || q.Get("year") != "" {
		period, err := periodParam(r, utils.PreviousPeriod(h.svc.Now()))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.BillingMonth, filter.BillingYear = period.Month, period.Year
	}
	payments, err := h.svc.ListPayments(r.Context(), identity(r), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

// CompletePayment marks a payment as paid
func (h *Handler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.CompletePayment(r.Context(), identity(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"message": "Payment completed", "payment": p})
}

// ExportPayments returns the XML statement of a billing period (default: previous month)
func (h *Handler) ExportPayments(w http.ResponseWriter, r *http.Request) {
	now := h.svc.Now()
	period, err := periodParam(r, utils.PreviousPeriod(now))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	payments, err := h.svc.PeriodPayments(r.Context(), identity(r), period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	body, err := export.Statement(period, payments, now)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="statement-%s.xml"`, period))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
