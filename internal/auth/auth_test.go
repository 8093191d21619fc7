package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supersonicwisd1/result-processing-system/internal/config"
	"github.com/supersonicwisd1/result-processing-system/internal/store"
	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	// MinCost keeps the hashing fast in tests.
	return NewService(st, config.AuthConfig{TokenTTL: time.Hour, BcryptCost: 4}, nil)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "examoff", "eo@uni.edu", "s3cret", domain.RoleExamOfficer, "Computer Science")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	sess, err := svc.Login(ctx, "examoff", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "examoff", sess.User.Username)

	got, err := svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegister_UnknownRoleRejected(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Register(context.Background(), "x", "", "pw", domain.Role("dean"), "")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestLogin_WrongPasswordAndUnknownUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "lect", "", "right", domain.RoleLecturer, "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "lect", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenExpiry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "lect", "", "pw", domain.RoleLecturer, "")
	require.NoError(t, err)
	sess, err := svc.Login(ctx, "lect", "pw")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout_InvalidatesToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "lect", "", "pw", domain.RoleLecturer, "")
	require.NoError(t, err)
	sess, err := svc.Login(ctx, "lect", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	_, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMiddleware_RejectsMissingAndBadTokens(t *testing.T) {
	svc := newTestService(t)

	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_PassesUserThrough(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "hod", "", "pw", domain.RoleHOD, "Computer Science")
	require.NoError(t, err)
	sess, err := svc.Login(ctx, "hod", "pw")
	require.NoError(t, err)

	var seen *domain.User
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, "hod", seen.Username)
}

func TestRequireRoles(t *testing.T) {
	mw := RequireRoles(domain.RoleAdmin, domain.RoleHOD)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(u *domain.User) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if u != nil {
			req = req.WithContext(WithUser(req.Context(), u))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusForbidden, serve(&domain.User{Role: domain.RoleLecturer}))
	assert.Equal(t, http.StatusOK, serve(&domain.User{Role: domain.RoleHOD}))
}
