package stats

import (
	"context"
	"time"

	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/store"
)

// UserReader is the read side of the identity store used for aggregation.
type UserReader interface {
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	Specializations(ctx context.Context) ([]*string, error)
	CreatedSince(ctx context.Context, role models.Role, since time.Time) ([]models.Timestamp, error)
	FindByRole(ctx context.Context, id string, role models.Role) (*models.User, error)
	List(ctx context.Context, role models.Role) ([]models.User, error)
}

// AppointmentReader is the read side of the appointment store used for
// aggregation.
type AppointmentReader interface {
	Count(ctx context.Context, f store.AppointmentFilter) (int64, error)
	CountDistinctPatients(ctx context.Context, f store.AppointmentFilter) (int64, error)
	DatesSince(ctx context.Context, since time.Time) ([]models.Timestamp, error)
}

var (
	_ UserReader        = (*store.UserStore)(nil)
	_ AppointmentReader = (*store.AppointmentStore)(nil)
)
