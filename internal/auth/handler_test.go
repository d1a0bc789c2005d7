package auth_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-bms/meridian-bms/internal/auth"
	"github.com/meridian-bms/meridian-bms/internal/shared"
	_ "github.com/meridian-bms/meridian-bms/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func newTestRouter(t *testing.T, repo auth.Repository) (http.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	handler := auth.NewHandler(slog.New(slog.DiscardHandler), auth.NewService(repo), sessionManager)

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)
	return router, sessionManager
}

func testUser(t *testing.T) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.User{ID: 1, Email: "admin@meridian.test", Name: "Admin", PasswordHash: string(hash), IsActive: true}
}

func doLogin(t *testing.T, router http.Handler, sm *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, sess
}

func TestLoginSuccess(t *testing.T) {
	router, sm := newTestRouter(t, &stubRepo{user: testUser(t)})

	rec, sess := doLogin(t, router, sm, `{"email":"admin@meridian.test","password":"correct horse"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"admin@meridian.test"`)
	assert.Equal(t, "1", sess.User())
}

func TestLoginWrongPassword(t *testing.T) {
	router, sm := newTestRouter(t, &stubRepo{user: testUser(t)})

	rec, sess := doLogin(t, router, sm, `{"email":"admin@meridian.test","password":"wrong password"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, sess.User())
}

func TestLoginInactiveUser(t *testing.T) {
	user := testUser(t)
	user.IsActive = false
	router, sm := newTestRouter(t, &stubRepo{user: user})

	rec, _ := doLogin(t, router, sm, `{"email":"admin@meridian.test","password":"correct horse"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	router, sm := newTestRouter(t, &stubRepo{})

	rec, _ := doLogin(t, router, sm, `{"email":"not-an-email","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresAuthentication(t *testing.T) {
	router, sm := newTestRouter(t, &stubRepo{user: testUser(t)})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	router, sm := newTestRouter(t, &stubRepo{user: testUser(t)})

	rec, sess := doLogin(t, router, sm, `{"email":"admin@meridian.test","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}
