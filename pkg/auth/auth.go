// Package auth implements account and session handling for the dashboard
// API. Passwords are stored as salted SHA-256 digests; sessions are opaque
// UUID tokens carried in the Authorization header as a bearer token.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scandeck/scandeck/pkg/duration"
	"github.com/scandeck/scandeck/pkg/store"
)

// ErrInvalidCredentials is returned when a login has a bad username or
// password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("auth: invalid username or password")

// Service issues and validates sessions against the store.
type Service struct {
	Store *store.Store
}

// HashPassword digests password with the given salt.
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}

func newSalt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Register creates an account and returns its id.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, errors.New("auth: username and password are required")
	}
	salt, err := newSalt()
	if err != nil {
		return 0, err
	}
	return s.Store.CreateUser(ctx, username, HashPassword(password, salt), salt)
}

// Login verifies credentials and mints a session token valid for the
// session TTL.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.Store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	want := []byte(u.PasswordHash)
	got := []byte(HashPassword(password, u.Salt))
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return "", ErrInvalidCredentials
	}
	token := uuid.NewString()
	if err := s.Store.CreateSession(ctx, token, u.ID, time.Now().Add(duration.SessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves a bearer token to a user id.
func (s *Service) Authenticate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, store.ErrNotFound
	}
	return s.Store.SessionUser(ctx, token)
}

type contextKey struct{}

// UserID extracts the authenticated user id placed by Middleware.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextKey{}).(int64)
	return id, ok
}

// BearerToken pulls the token out of an Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// Middleware rejects requests without a valid session and stows the user id
// in the request context for handlers downstream.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.Authenticate(r.Context(), BearerToken(r))
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), contextKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
