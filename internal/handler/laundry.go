package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Dan9191/hallbridge/internal/service"
)

// CreateLaundry submits a laundry request
func (h *Handler) CreateLaundry(w http.ResponseWriter, r *http.Request) {
	var in service.LaundryInput
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := h.svc.CreateLaundryRequest(r.Context(), identity(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, req)
}

// ListLaundry lists laundry requests visible to the caller
func (h *Handler) ListLaundry(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.ListLaundry(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"requests": reqs})
}

// AdvanceLaundry moves a laundry request to its next status
func (h *Handler) AdvanceLaundry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decode(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := h.svc.AdvanceLaundry(r.Context(), identity(r), mux.Vars(r)["id"], body.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, req)
}
