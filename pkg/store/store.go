// Package store is the persistence boundary of the service: scans, activity
// log entries, and the user/session records backing authentication. Records
// are keyed by numeric id; every write is a single atomic statement with no
// cross-record transactions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/scandeck/scandeck/pkg/jsonutil"
)

// ErrNotFound is returned for lookups of ids that do not exist.
var ErrNotFound = errors.New("store: record not found")

// Scan is one persisted scan record. Findings holds the scan's result
// payload as produced by the pipeline, serialized as JSON.
type Scan struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Target    string    `json:"target"`
	ScanType  string    `json:"scanType"`
	Status    string    `json:"status"`
	Findings  any       `json:"findings"`
	CreatedAt time.Time `json:"createdAt"`
}

// Activity is one activity-log entry.
type Activity struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is a dashboard account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Salt         string
	CreatedAt    time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists. Use ":memory:" for tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	s := &Store{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		salt TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		expires_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL,
		target TEXT NOT NULL,
		scan_type TEXT NOT NULL,
		status TEXT NOT NULL,
		findings TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS activity_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		details TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scans_owner ON scans(owner_id);
	CREATE INDEX IF NOT EXISTS idx_activity_owner ON activity_logs(owner_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: init schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateScan persists a completed scan and returns its numeric id. Findings
// is serialized to JSON as-is.
func (s *Store) CreateScan(ctx context.Context, ownerID int64, targetURL, scanType, status string, findings any) (int64, error) {
	payload, err := jsonutil.Marshal(findings)
	if err != nil {
		return 0, fmt.Errorf("store: encode findings: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (owner_id, target, scan_type, status, findings) VALUES (?, ?, ?, ?, ?)`,
		ownerID, targetURL, scanType, status, string(payload))
	if err != nil {
		return 0, fmt.Errorf("store: insert scan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	s.logger.Debug("scan persisted", slog.Int64("id", id), slog.String("target", targetURL), slog.String("type", scanType))
	return id, nil
}

// GetScan loads one scan by id. Findings is decoded into a generic value.
func (s *Store) GetScan(ctx context.Context, id int64) (*Scan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, target, scan_type, status, findings, created_at FROM scans WHERE id = ?`, id)
	return scanFromRow(row)
}

// ListScans returns the owner's scans, newest first.
func (s *Store) ListScans(ctx context.Context, ownerID int64) ([]*Scan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, target, scan_type, status, findings, created_at
		 FROM scans WHERE owner_id = ? ORDER BY id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: list scans: %w", err)
	}
	defer rows.Close()

	var scans []*Scan
	for rows.Next() {
		sc, err := scanFromRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, sc)
	}
	return scans, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFromRow(row rowScanner) (*Scan, error) {
	var sc Scan
	var findings string
	err := row.Scan(&sc.ID, &sc.OwnerID, &sc.Target, &sc.ScanType, &sc.Status, &findings, &sc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read scan: %w", err)
	}
	if err := jsonutil.Unmarshal([]byte(findings), &sc.Findings); err != nil {
		return nil, fmt.Errorf("store: decode findings: %w", err)
	}
	return &sc, nil
}

// CreateActivity appends an activity-log entry and returns its id.
func (s *Store) CreateActivity(ctx context.Context, ownerID int64, action, details string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_logs (owner_id, action, details) VALUES (?, ?, ?)`,
		ownerID, action, details)
	if err != nil {
		return 0, fmt.Errorf("store: insert activity: %w", err)
	}
	return res.LastInsertId()
}

// CreateUser inserts an account with a pre-hashed password.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash, salt string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, salt) VALUES (?, ?, ?)`,
		username, passwordHash, salt)
	if err != nil {
		return 0, fmt.Errorf("store: insert user: %w", err)
	}
	return res.LastInsertId()
}

// GetUserByUsername loads an account by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, salt, created_at FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Salt, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read user: %w", err)
	}
	return &u, nil
}

// CreateSession stores a session token for a user.
func (s *Store) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("store: insert session: %w", err)
	}
	return nil
}

// SessionUser resolves a session token to its user id; expired or unknown
// tokens return ErrNotFound.
func (s *Store) SessionUser(ctx context.Context, token string) (int64, error) {
	var userID int64
	var expires time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token = ?`, token).
		Scan(&userID, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("store: read session: %w", err)
	}
	if time.Now().After(expires) {
		return 0, ErrNotFound
	}
	return userID, nil
}
