package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-appointments-server/internal/models"

	"gorm.io/gorm"
)

// UserStore is the identity store.
type UserStore struct {
	db *gorm.DB
}

// Create inserts u. A username or email that is already taken yields ErrConflict.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	var existing models.User
	q := s.db.WithContext(ctx).Where("username = ?", u.Username)
	if u.Email != nil && *u.Email != "" {
		q = q.Or("email = ?", *u.Email)
	}
	err := q.First(&existing).Error
	if err == nil {
		if existing.Username == u.Username {
			return fmt.Errorf("username %q: %w", u.Username, ErrConflict)
		}
		return fmt.Errorf("email %q: %w", *u.Email, ErrConflict)
	}
	if !errors.Is(translate(err), ErrNotFound) {
		return fmt.Errorf("check existing user: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

// FindByID returns the user with the given id.
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("user %s: %w", id, translate(err))
	}
	return &u, nil
}

// FindByRole returns the user with the given id only if it carries role.
func (s *UserStore) FindByRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("id = ? AND role = ?", id, role).First(&u).Error; err != nil {
		return nil, fmt.Errorf("%s %s: %w", role, id, translate(err))
	}
	return &u, nil
}

// FindByUsername looks a user up for login. An empty role matches any role.
func (s *UserStore) FindByUsername(ctx context.Context, username string, role models.Role) (*models.User, error) {
	q := s.db.WithContext(ctx).Where("username = ?", username)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var u models.User
	if err := q.First(&u).Error; err != nil {
		return nil, fmt.Errorf("user %q: %w", username, translate(err))
	}
	return &u, nil
}

// List returns users ordered by creation. An empty role lists everyone.
func (s *UserStore) List(ctx context.Context, role models.Role) ([]models.User, error) {
	q := s.db.WithContext(ctx).Order("created_at asc")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CountByRole counts users carrying role.
func (s *UserStore) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s users: %w", role, err)
	}
	return n, nil
}

// Specializations returns the specialization of every doctor, nil where unset.
func (s *UserStore) Specializations(ctx context.Context) ([]*string, error) {
	var rows []struct {
		Specialization *string
	}
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("specialization").
		Where("role = ?", models.RoleDoctor).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list doctor specializations: %w", err)
	}
	out := make([]*string, len(rows))
	for i, r := range rows {
		out[i] = r.Specialization
	}
	return out, nil
}

// CreatedSince returns the creation instants of users with role created at or
// after since. Values the driver cannot interpret come back invalid.
func (s *UserStore) CreatedSince(ctx context.Context, role models.Role, since time.Time) ([]models.Timestamp, error) {
	var rows []struct {
		CreatedAt models.Timestamp
	}
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("created_at").
		Where("role = ? AND created_at >= ?", role, since.UTC()).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s creation times: %w", role, err)
	}
	out := make([]models.Timestamp, len(rows))
	for i, r := range rows {
		out[i] = r.CreatedAt
	}
	return out, nil
}

// Delete removes the user with id.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}
