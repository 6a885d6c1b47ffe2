package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dan9191/hallbridge/internal/models"
	"github.com/Dan9191/hallbridge/internal/utils"
)

// GatePassRequest is the body of a gate pass submission
type GatePassRequest struct {
	Purpose          string `json:"purpose" validate:"required,max=200"`
	Destination      string `json:"destination" validate:"required,max=200"`
	OutDate          string `json:"outDate" validate:"required,datetime=2006-01-02"`
	OutTime          string `json:"outTime" validate:"required,datetime=15:04"`
	ReturnDate       string `json:"returnDate" validate:"required,datetime=2006-01-02"`
	ReturnTime       string `json:"returnTime" validate:"required,datetime=15:04"`
	ContactNumber    string `json:"contactNumber" validate:"required,max=30"`
	EmergencyContact string `json:"emergencyContact" validate:"required,max=100"`
}

// passStep is one edge of the gate pass state machine
type passStep struct {
	from string
	to   string
}

var passSteps = map[string]passStep{
	models.ActionApprove:    {models.PassPending, models.PassApproved},
	models.ActionReject:     {models.PassPending, models.PassRejected},
	models.ActionVerifyExit: {models.PassApproved, models.PassActive},
	// the target of verify_return is decided by the clock, see returnStatus
	models.ActionVerifyReturn: {models.PassActive, ""},
}

// staffRoles may drive gate pass transitions
var staffRoles = []string{models.RoleStaff, models.RoleSecurity, models.RoleAdmin}

// SubmitGatePass creates a pending pass for the calling student
func (s *Service) SubmitGatePass(ctx context.Context, actor models.Identity, req GatePassRequest) (*models.GatePass, error) {
	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	out, err := utils.ParseCivil(req.OutDate, req.OutTime)
	if err != nil {
		return nil, models.NewValidationError(err.Error(), models.FieldError{Field: "outDate", Error: "invalid date or time"})
	}
	ret, err := utils.ParseCivil(req.ReturnDate, req.ReturnTime)
	if err != nil {
		return nil, models.NewValidationError(err.Error(), models.FieldError{Field: "returnDate", Error: "invalid date or time"})
	}
	if !ret.After(out) {
		return nil, models.NewValidationError("return must be after departure",
			models.FieldError{Field: "returnDate", Error: "must be after out date and time"})
	}
	now := s.now()
	if req.OutDate < utils.Today(now) {
		return nil, models.NewValidationError("departure date is in the past",
			models.FieldError{Field: "outDate", Error: "must not be before today"})
	}

	pass := &models.GatePass{
		ID:               uuid.NewString(),
		StudentID:        actor.UserID,
		Purpose:          strings.TrimSpace(req.Purpose),
		Destination:      strings.TrimSpace(req.Destination),
		OutDate:          req.OutDate,
		OutTime:          req.OutTime,
		ReturnDate:       req.ReturnDate,
		ReturnTime:       req.ReturnTime,
		ContactNumber:    strings.TrimSpace(req.ContactNumber),
		EmergencyContact: strings.TrimSpace(req.EmergencyContact),
		Status:           models.PassPending,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}
	if err := s.store.CreateGatePass(ctx, pass); err != nil {
		return nil, err
	}
	s.log.Infof("Gate pass %s submitted by %s", pass.ID, actor.UserID)
	return pass, nil
}

// TransitionGatePass applies action to a pass as a compare-and-swap on its current status
func (s *Service) TransitionGatePass(ctx context.Context, actor models.Identity, passID, action, reason string) (*models.GatePass, error) {
	if err := requireRole(actor, staffRoles...); err != nil {
		return nil, err
	}
	if passID == "" {
		return nil, models.NewValidationError("passId is required", models.FieldError{Field: "passId", Error: "is required"})
	}
	if err := checkID("gate pass", passID); err != nil {
		return nil, err
	}
	step, ok := passSteps[action]
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("unknown action %q", action),
			models.FieldError{Field: "action", Error: "must be one of: approve reject verify_exit verify_return"})
	}

	now := s.now()
	tr := models.PassTransition{From: step.from, To: step.to, Actor: actor.UserID, At: now.UTC()}
	switch action {
	case models.ActionReject:
		tr.Reason = strings.TrimSpace(reason)
		if tr.Reason == "" {
			tr.Reason = models.DefaultRejectionReason
		}
	case models.ActionVerifyReturn:
		pass, err := s.store.FindGatePass(ctx, passID)
		if err != nil {
			return nil, err
		}
		if pass.Status != models.PassActive {
			return nil, invalidPassTransition(action, pass.Status)
		}
		if tr.To, err = returnStatus(pass, now); err != nil {
			return nil, err
		}
	}

	if err := s.store.TransitionGatePass(ctx, passID, tr); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			if cur, ferr := s.store.FindGatePass(ctx, passID); ferr == nil {
				return nil, invalidPassTransition(action, cur.Status)
			}
		}
		return nil, err
	}

	pass, err := s.store.FindGatePass(ctx, passID)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Gate pass %s: %s by %s -> %s", passID, action, actor.UserID, pass.Status)
	return pass, nil
}

// returnStatus is late when now is past the expected return instant, completed otherwise
func returnStatus(pass *models.GatePass, now time.Time) (string, error) {
	expected, err := utils.ParseCivil(pass.ReturnDate, pass.ReturnTime)
	if err != nil {
		return "", fmt.Errorf("gate pass %s has malformed return time: %w", pass.ID, err)
	}
	if now.After(expected) {
		return models.PassLate, nil
	}
	return models.PassCompleted, nil
}

func invalidPassTransition(action, status string) error {
	return fmt.Errorf("cannot %s a %s gate pass: %w", action, status, models.ErrInvalidTransition)
}

// ListGatePasses returns the caller's own passes, or every pass for staff roles
func (s *Service) ListGatePasses(ctx context.Context, actor models.Identity, status string) ([]models.GatePass, error) {
	studentID := ""
	switch {
	case actor.Is(models.RoleStudent):
		studentID = actor.UserID
	case actor.Is(staffRoles...):
	default:
		return nil, models.ErrForbidden
	}
	return s.store.ListGatePasses(ctx, studentID, status)
}
