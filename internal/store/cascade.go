package store

import (
	"context"

	"clinic-appointments-server/internal/models"
)

// DeleteOwnerCascade deletes every appointment owned by the user and then the
// user itself, in one transaction. The user must exist with role. It returns
// the number of appointments removed.
func (s *Store) DeleteOwnerCascade(ctx context.Context, ownerID string, role models.Role) (int64, error) {
	var removed int64
	err := s.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.Users.FindByRole(ctx, ownerID, role); err != nil {
			return err
		}
		n, err := tx.Appointments.DeleteByOwner(ctx, ownerID, role)
		if err != nil {
			return err
		}
		if err := tx.Users.Delete(ctx, ownerID); err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
