package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scandeck/scandeck/pkg/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return &Service{Store: st}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "analyst", "hunter2")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "analyst", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	uid, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Positive(t, uid)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "analyst", "hunter2")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "analyst", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPasswordSaltSensitive(t *testing.T) {
	assert.NotEqual(t, HashPassword("p", "s1"), HashPassword("p", "s2"))
	assert.Equal(t, HashPassword("p", "s1"), HashPassword("p", "s1"))
}

func TestMiddleware(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "analyst", "hunter2")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "analyst", "hunter2")
	require.NoError(t, err)

	var sawUser int64
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserID(r.Context())
		require.True(t, ok)
		sawUser = uid
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/scans", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Positive(t, sawUser)

	// No token.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	req = httptest.NewRequest(http.MethodGet, "/api/scans", nil)
	req.Header.Set("Authorization", "Bearer not-a-session")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer tok-1")
	assert.Equal(t, "tok-1", BearerToken(req))
}
