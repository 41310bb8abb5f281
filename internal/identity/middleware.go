package identity

import (
	"context"
	"errors"
	"net/http"

	"newsroom/internal/core"
	"newsroom/internal/features/news/models"
)

// Context key for user
type contextKey string

const userContextKey = contextKey("user")

// Resolver turns a caller-supplied identifier into a known user.
type Resolver interface {
	ResolveUser(ctx context.Context, id string) (*models.User, error)
}

// Middleware attaches the calling user to the request context.
type Middleware struct {
	resolver Resolver
	logger   *core.Logger
}

// NewMiddleware creates new identity middleware.
func NewMiddleware(resolver Resolver, logger *core.Logger) *Middleware {
	return &Middleware{
		resolver: resolver,
		logger:   logger,
	}
}

// Identify resolves the X-User-ID header and stores the user in the
// request context. Requests without the header pass through without a
// user; handlers that need one reject those with RequireUser.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-ID")
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.resolver.ResolveUser(r.Context(), id)
		if err != nil {
			var appErr *core.AppError
			if errors.As(err, &appErr) && appErr.Code == core.ErrCodeNotFound {
				core.WriteErrorResponse(w, http.StatusUnauthorized, core.NewAppError(
					core.ErrCodeUnauthorized, "Unknown user", nil))
				return
			}
			m.logger.Error("Failed to resolve user", "user_id", id, "error", err)
			core.WriteErrorResponse(w, http.StatusInternalServerError, core.NewInternalError(
				"Internal server error", nil))
			return
		}

		r = contextSetUser(r, user)
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests that did not carry a resolvable user.
func (m *Middleware) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserFromRequest(r) == nil {
			core.WriteErrorResponse(w, http.StatusUnauthorized, core.NewAppError(
				core.ErrCodeUnauthorized, "X-User-ID header required", nil))
			return
		}
		next.ServeHTTP(w, r)
	}
}

// Context management
func contextSetUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// UserFromRequest returns the resolved user, or nil when the request was
// anonymous.
func UserFromRequest(r *http.Request) *models.User {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
