package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	apierrors "github.com/supersonicwisd1/result-processing-system/internal/errors"
	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(userContextKey).(*domain.User); ok {
		return u
	}
	return nil
}

// WithUser attaches a user to the context. Exported for handler tests.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// Middleware authenticates requests by bearer token and stores the user in
// the request context. Requests without a valid token are rejected.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrUnauthorized))
			return
		}

		user, err := s.Authenticate(r.Context(), token)
		if err != nil {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrUnauthorized))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireRoles allows only the named roles through. It must run after
// Middleware.
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrUnauthorized))
				return
			}
			if !allowed[user.Role] {
				render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
