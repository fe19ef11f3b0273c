// Package store holds the gorm-backed identity and appointment stores.
package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced user or appointment does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique username or email is already taken.
	ErrConflict = errors.New("record already exists")
)

// Store groups the identity and appointment stores over one connection.
type Store struct {
	db           *gorm.DB
	Users        *UserStore
	Appointments *AppointmentStore
}

// New creates a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        &UserStore{db: db},
		Appointments: &AppointmentStore{db: db},
	}
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrConflict
	}
	return err
}

// isUniqueViolation catches drivers whose errors gorm does not translate
// without TranslateError.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
