package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestScanRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	findings := map[string]any{
		"vulnerabilities": []any{map[string]any{"type": "Reflected XSS", "location": "q"}},
		"securityScore":   "F",
	}
	id, err := s.CreateScan(ctx, 1, "https://example.com/?q=1", "xss", "completed", findings)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := s.GetScan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/?q=1", got.Target)
	assert.Equal(t, "xss", got.ScanType)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, int64(1), got.OwnerID)

	decoded, ok := got.Findings.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "F", decoded["securityScore"])
}

func TestGetScanNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetScan(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListScansNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.CreateScan(ctx, 7, "https://a.example", "xss", "completed", map[string]any{})
	require.NoError(t, err)
	second, err := s.CreateScan(ctx, 7, "https://b.example", "sql-injection", "completed", map[string]any{})
	require.NoError(t, err)

	// A different owner's scan must not leak into the listing.
	_, err = s.CreateScan(ctx, 8, "https://c.example", "xss", "completed", map[string]any{})
	require.NoError(t, err)

	scans, err := s.ListScans(ctx, 7)
	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.Equal(t, second, scans[0].ID)
	assert.Equal(t, first, scans[1].ID)
}

func TestActivityLog(t *testing.T) {
	s := openTestStore(t)

	id, err := s.CreateActivity(context.Background(), 3, "scan", "xss scan of https://example.com")
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	uid, err := s.CreateUser(ctx, "analyst", "hash", "salt")
	require.NoError(t, err)

	require.NoError(t, s.CreateSession(ctx, "tok-live", uid, time.Now().Add(time.Hour)))
	require.NoError(t, s.CreateSession(ctx, "tok-dead", uid, time.Now().Add(-time.Hour)))

	got, err := s.SessionUser(ctx, "tok-live")
	require.NoError(t, err)
	assert.Equal(t, uid, got)

	_, err = s.SessionUser(ctx, "tok-dead")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.SessionUser(ctx, "tok-unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateUsernameRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "analyst", "h1", "s1")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "analyst", "h2", "s2")
	assert.Error(t, err)
}
