package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

// ErrDuplicateUser is returned when registration reuses a username.
var ErrDuplicateUser = errors.New("store: username already taken")

// CreateUser inserts a new user and fills in its id.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	id, err := s.lastInsertID(ctx,
		`INSERT INTO users (username, email, password_hash, role, department) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, string(u.Role), u.Department)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrDuplicateUser
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.Department, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

// UserByUsername fetches one user by username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role, department, created_at FROM users WHERE username = ?`,
		username))
}

// UserByID fetches one user by id.
func (s *Store) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role, department, created_at FROM users WHERE id = ?`,
		id))
}

// CreateToken stores an opaque bearer token for a user.
func (s *Store) CreateToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

// UserByToken resolves a bearer token to its user. Expired tokens are
// deleted on sight and reported as not found.
func (s *Store) UserByToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	var userID int64
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM tokens WHERE token = ?`, token).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if now.After(expiresAt) {
		s.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = ?`, token)
		return nil, ErrNotFound
	}
	return s.UserByID(ctx, userID)
}

// DeleteToken invalidates one bearer token (logout).
func (s *Store) DeleteToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = ?`, token)
	return err
}

// RecordAction appends an audit log entry.
func (s *Store) RecordAction(ctx context.Context, entry domain.ActionLog) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO action_logs (user_id, action, resource, resource_id, details, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.UserID, entry.Action, entry.Resource, entry.ResourceID, entry.Details, ts)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

// RecentActions returns the newest audit entries, newest first.
func (s *Store) RecentActions(ctx context.Context, limit int) ([]domain.ActionLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, action, resource, resource_id, details, timestamp
		 FROM action_logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []domain.ActionLog
	for rows.Next() {
		var a domain.ActionLog
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Resource, &a.ResourceID, &a.Details, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
