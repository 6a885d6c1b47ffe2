package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/hallbridge/internal/config"
	"github.com/Dan9191/hallbridge/internal/models"
)

const (
	// SessionCookie carries the signed session token
	SessionCookie = "hb_session"
	// CronSecretHeader authenticates the external job scheduler
	CronSecretHeader = "X-Cron-Secret"
)

type contextKey struct{}

// SessionParser turns a session token into the caller it was issued to
type SessionParser interface {
	ParseSession(token string) (models.Identity, error)
}

// AuthMiddleware resolves the caller from the scheduler secret header, the session cookie or a
// bearer token, in that order, and rejects anonymous requests with 401.
func AuthMiddleware(cfg *config.Config, sessions SessionParser) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret := r.Header.Get(CronSecretHeader); secret != "" {
				if cfg.CronSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(cfg.CronSecret)) != 1 {
					writeMessage(w, http.StatusUnauthorized, "invalid scheduler secret")
					return
				}
				next.ServeHTTP(w, withIdentity(r, models.Identity{UserID: models.RoleScheduler, Role: models.RoleScheduler}))
				return
			}

			token := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				token = c.Value
			} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, "authentication required")
				return
			}
			id, err := sessions.ParseSession(token)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			next.ServeHTTP(w, withIdentity(r, id))
		})
	}
}

// RequireRoles rejects callers holding none of roles with 403
func RequireRoles(roles ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !id.Is(roles...) {
				writeMessage(w, http.StatusForbidden, "permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFrom returns the caller stored by AuthMiddleware
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(models.Identity)
	return id, ok
}

// WithIdentity stores id in ctx
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func withIdentity(r *http.Request, id models.Identity) *http.Request {
	return r.WithContext(WithIdentity(r.Context(), id))
}

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request
func RequestLogger(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Debug("request")
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
