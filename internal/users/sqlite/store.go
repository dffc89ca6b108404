// Package sqlite provides SQLite-backed user persistence.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"snowman/internal/platform/storage/sqlitemigrate"
	"snowman/internal/users"
	"snowman/internal/users/sqlite/migrations"
)

const userColumns = "id, name, phone, client, score, time_taken, created_at, updated_at"

// Store implements users.Store on a SQLite file.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite store at the provided path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// FindOrCreate returns the user registered under phone or inserts a new one.
func (s *Store) FindOrCreate(ctx context.Context, name, phone, client string) (users.User, error) {
	if err := ctx.Err(); err != nil {
		return users.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return users.User{}, fmt.Errorf("storage is not configured")
	}
	name, phone, err := users.NormalizeLogin(name, phone)
	if err != nil {
		return users.User{}, err
	}
	client = strings.TrimSpace(client)
	if client == "" {
		client = users.DefaultClient
	}

	existing, err := s.byPhone(ctx, phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return users.User{}, err
	}

	now := s.now().UnixMilli()
	res, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO users (name, phone, client, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		name, phone, client, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent login for the same phone.
			return s.byPhone(ctx, phone)
		}
		return users.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return users.User{}, fmt.Errorf("insert user id: %w", err)
	}
	return s.Get(ctx, id)
}

// Get returns a user by id.
func (s *Store) Get(ctx context.Context, id int64) (users.User, error) {
	if err := ctx.Err(); err != nil {
		return users.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return users.User{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// UpdateScore records the latest result for a user.
func (s *Store) UpdateScore(ctx context.Context, id int64, score, timeTaken int) (users.User, error) {
	if err := ctx.Err(); err != nil {
		return users.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return users.User{}, fmt.Errorf("storage is not configured")
	}
	if err := users.ValidateResult(score, timeTaken); err != nil {
		return users.User{}, err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		"UPDATE users SET score = ?, time_taken = ?, updated_at = ? WHERE id = ?",
		score, timeTaken, s.now().UnixMilli(), id,
	)
	if err != nil {
		return users.User{}, fmt.Errorf("update user score: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return users.User{}, fmt.Errorf("update user score: %w", err)
	}
	if affected == 0 {
		return users.User{}, users.ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Store) byPhone(ctx context.Context, phone string) (users.User, error) {
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE phone = ?", phone)
	return scanUser(row)
}

func scanUser(row *sql.Row) (users.User, error) {
	var (
		u                    users.User
		createdAt, updatedAt int64
	)
	err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.Client, &u.Score, &u.TimeTaken, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	u.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return u, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ users.Store = (*Store)(nil)
