package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Dan9191/hallbridge/internal/middleware"
	"github.com/Dan9191/hallbridge/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles student registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration received, awaiting approval",
		"user":    user,
	})
}

// Login handles user authentication and sets the session cookie
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		Expires:  time.Now().Add(h.svc.SessionTTL()),
	})
	h.writeJSON(w, http.StatusOK, map[string]any{"message": "Logged in", "user": user})
}

// Logout clears the session cookie
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	h.writeMessage(w, http.StatusOK, "Logged out")
}

// ApproveStudent handles admin approval of a pending registration
func (h *Handler) ApproveStudent(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.ApproveStudent(r.Context(), identity(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"message": "Student approved", "user": user})
}
