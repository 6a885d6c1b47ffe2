package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/hallbridge/internal/config"
	"github.com/Dan9191/hallbridge/internal/models"
)

type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *models.User) error
		FindUserByID(ctx context.Context, id string) (*models.User, error)
		FindUserByEmail(ctx context.Context, email string) (*models.User, error)
		UpdateUserStatus(ctx context.Context, id, from, to string) error
		ListActiveStudents(ctx context.Context) ([]models.User, error)
	}

	SettingsRepository interface {
		GetSetting(ctx context.Context, key string) (string, bool, error)
		ListSettings(ctx context.Context) ([]models.Setting, error)
		UpsertSettings(ctx context.Context, settings []models.Setting) error
	}

	MealRepository interface {
		UpsertMealRecord(ctx context.Context, rec *models.MealRecord) error
		CreateGuestMeal(ctx context.Context, rec *models.GuestMealRecord) error
		// CreateMealVote stores the vote and updates the meal rating atomically.
		CreateMealVote(ctx context.Context, vote *models.MealVote) error
		ListMealRatings(ctx context.Context, date string) ([]models.MealRating, error)
		AggregateMeals(ctx context.Context, from, to string, studentIDs ...string) (map[string]models.MealCounts, error)
		AggregateGuestMeals(ctx context.Context, from, to string, studentIDs ...string) (map[string]int, error)
	}

	LaundryRepository interface {
		CreateLaundryRequest(ctx context.Context, req *models.LaundryRequest) error
		FindLaundryRequest(ctx context.Context, id string) (*models.LaundryRequest, error)
		AdvanceLaundryStatus(ctx context.Context, id, from, to string, at time.Time) error
		ListLaundryRequests(ctx context.Context, studentID string) ([]models.LaundryRequest, error)
		CountLaundryRequests(ctx context.Context, from, to time.Time, studentIDs ...string) (map[string]int, error)
	}

	PaymentRepository interface {
		// InsertPayments skips rows colliding on (student, month, year, type) and returns how many were stored.
		InsertPayments(ctx context.Context, payments []models.Payment) (int, error)
		CountPaymentsForPeriod(ctx context.Context, month, year int) (int, error)
		ApplyLateFees(ctx context.Context, percent float64, now time.Time) (int, error)
		CompletePayment(ctx context.Context, id string, at time.Time) error
		FindPayment(ctx context.Context, id string) (*models.Payment, error)
		ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	}

	GatePassRepository interface {
		CreateGatePass(ctx context.Context, p *models.GatePass) error
		FindGatePass(ctx context.Context, id string) (*models.GatePass, error)
		// TransitionGatePass is a compare-and-swap on tr.From: ErrNotFound when the pass is
		// missing, ErrInvalidTransition when its status is not tr.From.
		TransitionGatePass(ctx context.Context, id string, tr models.PassTransition) error
		ListGatePasses(ctx context.Context, studentID, status string) ([]models.GatePass, error)
	}

	// Store is everything the service persists
	Store interface {
		UserRepository
		SettingsRepository
		MealRepository
		LaundryRepository
		PaymentRepository
		GatePassRepository
	}
)

// Service handles business logic
type Service struct {
	store    Store
	log      *logrus.Logger
	config   *config.Config
	validate *validator.Validate
	now      func() time.Time
}

// NewService initializes a new service
func NewService(store Store, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		log:      log,
		config:   cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// SetClock replaces the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// validateStruct runs the struct tags of req and converts failures into a ValidationError
func (s *Service) validateStruct(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{Field: fe.Field(), Error: describeTag(fe)})
	}
	return models.NewValidationError("invalid request", fields...)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must match " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func requireRole(actor models.Identity, roles ...string) error {
	if !actor.Is(roles...) {
		return models.ErrForbidden
	}
	return nil
}

// checkID rejects ids that cannot name a stored record
func checkID(kind, id string) error {
	if uuid.Validate(id) != nil {
		return fmt.Errorf("%s %q: %w", kind, id, models.ErrNotFound)
	}
	return nil
}

// Now returns the current time of the service clock
func (s *Service) Now() time.Time {
	return s.now()
}
