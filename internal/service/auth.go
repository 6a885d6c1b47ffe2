package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/hallbridge/internal/models"
)

// RegisterRequest is the body of a student registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// sessionClaims is the payload of the session cookie token
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Register creates a student account awaiting admin approval
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	return s.createUser(ctx, req.Name, req.Email, req.Password, models.RoleStudent, models.UserPending)
}

func (s *Service) createUser(ctx context.Context, name, email, password, role, status string) (*models.User, error) {
	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: string(hashedPassword),
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.NewValidationError("email already registered", models.FieldError{Field: "email", Error: "already registered"})
		}
		return nil, err
	}

	s.log.Infof("User registered: %s (%s)", user.Email, user.Role)
	return user, nil
}

// ApproveStudent activates a pending student account
func (s *Service) ApproveStudent(ctx context.Context, actor models.Identity, id string) (*models.User, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := checkID("user", id); err != nil {
		return nil, err
	}
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleStudent {
		return nil, models.NewValidationError("only students need approval")
	}
	if err := s.store.UpdateUserStatus(ctx, id, models.UserPending, models.UserActive); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			return nil, fmt.Errorf("student %s is %s: %w", id, user.Status, err)
		}
		return nil, err
	}
	user.Status = models.UserActive
	s.log.Infof("Student %s approved by %s", user.Email, actor.UserID)
	return user, nil
}

// Login authenticates a user and returns a signed session token
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
		}
		return "", nil, err
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}
	if user.Status != models.UserActive {
		return "", nil, fmt.Errorf("account is %s: %w", user.Status, models.ErrForbidden)
	}

	// Generate JWT
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.SessionTTL)),
		},
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, user, nil
}

// ParseSession validates a session token and returns the caller it names
func (s *Service) ParseSession(tokenString string) (models.Identity, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return models.Identity{}, fmt.Errorf("invalid session: %w", models.ErrUnauthenticated)
	}
	if claims.Subject == "" || !models.ValidRole(claims.Role) {
		return models.Identity{}, fmt.Errorf("invalid session claims: %w", models.ErrUnauthenticated)
	}
	return models.Identity{UserID: claims.Subject, Role: claims.Role}, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if password == "" {
		s.log.Warn("ADMIN_PASSWORD is empty, skipping admin bootstrap")
		return nil
	}
	_, err := s.store.FindUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}
	_, err = s.createUser(ctx, "Administrator", email, password, models.RoleAdmin, models.UserActive)
	return err
}

// SessionTTL is how long an issued session stays valid
func (s *Service) SessionTTL() time.Duration {
	return s.config.SessionTTL
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
