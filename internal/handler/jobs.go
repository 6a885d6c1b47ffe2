package handler

import (
	"fmt"
	"net/http"
)

// StudentBilling triggers the monthly billing job
func (h *Handler) StudentBilling(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RunMonthlyBilling(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var msg string
	switch {
	case res.Students == 0:
		msg = "No active students to bill"
	case res.AlreadyBilled:
		msg = fmt.Sprintf("Billing already generated for %s", res.Period)
	default:
		msg = fmt.Sprintf("Generated %d payments for %d students for %s", res.Created, res.Students, res.Period)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message":  msg,
		"period":   res.Period,
		"students": res.Students,
		"created":  res.Created,
		"skipped":  res.Skipped,
	})
}

// LateFee triggers the late fee job
func (h *Handler) LateFee(w http.ResponseWriter, r *http.Request) {
	updated, err := h.svc.RunLateFees(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Late fee applied to %d payments", updated),
		"updated": updated,
	})
}
