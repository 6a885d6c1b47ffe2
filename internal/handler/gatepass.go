package handler

import (
	"net/http"

	"github.com/Dan9191/hallbridge/internal/service"
)

type gatePassAction struct {
	PassID string `json:"passId"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// SubmitGatePass handles a student's gate pass request
func (h *Handler) SubmitGatePass(w http.ResponseWriter, r *http.Request) {
	var req service.GatePassRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	pass, err := h.svc.SubmitGatePass(r.Context(), identity(r), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Gate pass submitted",
		"id":      pass.ID,
		"status":  pass.Status,
	})
}

// UpdateGatePass drives a gate pass through its lifecycle
func (h *Handler) UpdateGatePass(w http.ResponseWriter, r *http.Request) {
	var req gatePassAction
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	pass, err := h.svc.TransitionGatePass(r.Context(), identity(r), req.PassID, req.Action, req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Gate pass updated",
		"id":      pass.ID,
		"status":  pass.Status,
		"pass":    pass,
	})
}

// ListGatePasses lists passes visible to the caller, optionally by ?status=
func (h *Handler) ListGatePasses(w http.ResponseWriter, r *http.Request) {
	passes, err := h.svc.ListGatePasses(r.Context(), identity(r), r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"passes": passes})
}
