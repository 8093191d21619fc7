// Package store persists students, courses, semesters, score rows, users
// and audit entries in SQLite. All identity rows are get-or-create by
// natural key; score rows are unique per (student, course, semester) and
// re-uploads overwrite in place.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	department    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tokens (
	token      TEXT PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS students (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	registration_number TEXT NOT NULL UNIQUE,
	name                TEXT NOT NULL,
	department          TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS courses (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	code       TEXT NOT NULL UNIQUE,
	title      TEXT NOT NULL DEFAULT '',
	unit       INTEGER NOT NULL DEFAULT 0,
	department TEXT NOT NULL DEFAULT '',
	faculty    TEXT NOT NULL DEFAULT '',
	level      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS semesters (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS scores (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id            INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	course_id             INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	semester_id           INTEGER NOT NULL REFERENCES semesters(id) ON DELETE CASCADE,
	continuous_assessment REAL NOT NULL DEFAULT 0,
	exam_score            REAL NOT NULL DEFAULT 0,
	total_score           REAL NOT NULL DEFAULT 0,
	grade                 TEXT NOT NULL,
	level                 TEXT NOT NULL DEFAULT '',
	uploaded_by           INTEGER NOT NULL DEFAULT 0,
	created_at            TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(student_id, course_id, semester_id)
);

CREATE TABLE IF NOT EXISTS action_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     INTEGER NOT NULL,
	action      TEXT NOT NULL,
	resource    TEXT NOT NULL,
	resource_id INTEGER NOT NULL DEFAULT 0,
	details     TEXT NOT NULL DEFAULT '',
	timestamp   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scores_student ON scores(student_id);
CREATE INDEX IF NOT EXISTS idx_scores_course ON scores(course_id, semester_id);
CREATE INDEX IF NOT EXISTS idx_action_logs_user ON action_logs(user_id);
`

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the database at path and ensures the
// schema exists. A path of ":memory:" yields an in-process database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The sqlite driver serializes writes; a single connection avoids
	// table-lock errors under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.Info("database ready", slog.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) lastInsertID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
