package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/hallbridge/internal/config"
	"github.com/Dan9191/hallbridge/internal/models"
	"github.com/Dan9191/hallbridge/internal/repository/memstore"
	"github.com/Dan9191/hallbridge/internal/utils"
)

var _ Store = (*memstore.Store)(nil)

var (
	admin    = models.Identity{UserID: "admin-1", Role: models.RoleAdmin}
	staff    = models.Identity{UserID: "staff-1", Role: models.RoleStaff}
	security = models.Identity{UserID: "guard-1", Role: models.RoleSecurity}
)

type testEnv struct {
	svc   *Service
	store *memstore.Store
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "test-secret", SessionTTL: time.Hour}

	env := &testEnv{store: memstore.New(), now: at("2025-12-01", "01:00")}
	env.svc = NewService(env.store, log, cfg)
	env.svc.SetClock(func() time.Time { return env.now })
	return env
}

// at returns an instant in the hall calendar
func at(date, clock string) time.Time {
	t, err := utils.ParseCivil(date, clock)
	if err != nil {
		panic(err)
	}
	return t
}

func (e *testEnv) addStudent(t *testing.T, status string) models.Identity {
	t.Helper()
	u := &models.User{
		ID:        uuid.NewString(),
		Name:      "Student",
		Email:     uuid.NewString() + "@hall.test",
		Role:      models.RoleStudent,
		Status:    status,
		CreatedAt: e.now,
		UpdatedAt: e.now,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return models.Identity{UserID: u.ID, Role: models.RoleStudent}
}

func (e *testEnv) setSettings(t *testing.T, kv map[string]string) {
	t.Helper()
	inputs := make([]SettingInput, 0, len(kv))
	for k, v := range kv {
		inputs = append(inputs, SettingInput{Key: k, Value: v})
	}
	require.NoError(t, e.svc.SetSettings(context.Background(), admin, inputs))
}

// markBreakfasts records a breakfast on each of the first days of November 2025
func (e *testEnv) markBreakfasts(t *testing.T, student models.Identity, days int) {
	t.Helper()
	for d := 1; d <= days; d++ {
		date := fmt.Sprintf("2025-11-%02d", d)
		_, err := e.svc.MarkMeals(context.Background(), student, MealInput{Date: date, Breakfast: true})
		require.NoError(t, err)
	}
}
