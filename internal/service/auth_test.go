package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/hallbridge/internal/models"
)

func TestRegisterApproveLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user, err := env.svc.Register(ctx, RegisterRequest{Name: "Nadia", Email: " Nadia@Hall.test ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, models.UserPending, user.Status)
	assert.Equal(t, "nadia@hall.test", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	_, _, err = env.svc.Login(ctx, "nadia@hall.test", "correct-horse")
	assert.ErrorIs(t, err, models.ErrForbidden, "pending students cannot log in")

	_, err = env.svc.ApproveStudent(ctx, staff, user.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	approved, err := env.svc.ApproveStudent(ctx, admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, approved.Status)

	_, err = env.svc.ApproveStudent(ctx, admin, user.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	token, loggedIn, err := env.svc.Login(ctx, "NADIA@hall.test", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	id, err := env.svc.ParseSession(token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: user.ID, Role: models.RoleStudent}, id)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	var verr *models.ValidationError
	_, err := env.svc.Register(ctx, RegisterRequest{Name: "A", Email: "not-an-email", Password: "long-enough"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email", verr.Fields[0].Field)

	_, err = env.svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@hall.test", Password: "short"})
	require.ErrorAs(t, err, &verr)

	_, err = env.svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@hall.test", Password: "long-enough"})
	require.NoError(t, err)
	_, err = env.svc.Register(ctx, RegisterRequest{Name: "B", Email: "A@hall.test", Password: "long-enough"})
	require.ErrorAs(t, err, &verr, "duplicate emails are rejected")
}

func TestLoginWrongCredentials(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.svc.EnsureAdmin(ctx, "admin@hall.test", "admin-password"))

	_, _, err := env.svc.Login(ctx, "admin@hall.test", "wrong")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, _, err = env.svc.Login(ctx, "nobody@hall.test", "admin-password")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	token, user, err := env.svc.Login(ctx, "admin@hall.test", "admin-password")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NotEmpty(t, token)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.svc.EnsureAdmin(ctx, "admin@hall.test", "admin-password"))
	require.NoError(t, env.svc.EnsureAdmin(ctx, "admin@hall.test", "other-password"))

	_, _, err := env.svc.Login(ctx, "admin@hall.test", "admin-password")
	assert.NoError(t, err)
}

func TestParseSessionRejects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.svc.EnsureAdmin(ctx, "admin@hall.test", "admin-password"))
	token, _, err := env.svc.Login(ctx, "admin@hall.test", "admin-password")
	require.NoError(t, err)

	_, err = env.svc.ParseSession(token + "x")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = env.svc.ParseSession("not-a-token")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	env.now = env.now.Add(2 * time.Hour)
	_, err = env.svc.ParseSession(token)
	assert.ErrorIs(t, err, models.ErrUnauthenticated, "expired sessions are rejected")
}
