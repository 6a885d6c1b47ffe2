package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/hallbridge/internal/middleware"
	"github.com/Dan9191/hallbridge/internal/models"
	"github.com/Dan9191/hallbridge/internal/service"
	"github.com/Dan9191/hallbridge/internal/utils"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type errorResponse struct {
	Message string              `json:"message"`
	Fields  []models.FieldError `json:"fields,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Message: msg})
}

// writeError maps the error taxonomy onto HTTP statuses. Anything unrecognised is a 500
// whose detail only goes to the log.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Message: verr.Message, Fields: verr.Fields})
	case errors.Is(err, models.ErrInvalidTransition):
		h.writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnauthenticated):
		h.writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrForbidden):
		h.writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrNotFound):
		h.writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrConflict):
		h.writeMessage(w, http.StatusConflict, err.Error())
	default:
		h.log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Errorf("Request failed: %v", err)
		h.writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode reads a JSON body into v
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return models.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}

func identity(r *http.Request) models.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}

// periodParam reads ?month=&year=, falling back to def for missing values
func periodParam(r *http.Request, def utils.Period) (utils.Period, error) {
	month, year := def.Month, def.Year
	q := r.URL.Query()
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return utils.Period{}, models.NewValidationError("month must be a number")
		}
		month = m
	}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return utils.Period{}, models.NewValidationError("year must be a number")
		}
		year = y
	}
	p, err := utils.NewPeriod(month, year)
	if err != nil {
		return utils.Period{}, models.NewValidationError(err.Error())
	}
	return p, nil
}
