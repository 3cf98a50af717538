package accounts

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// Delete hard-deletes a non-admin account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	audit := s.auditor(ctx, "account.delete", id)

	a, err := s.load(ctx, id)
	if err != nil {
		audit("error", err)
		return err
	}

	if a.Role.IsAdmin() {
		err := domain.ErrCannotDeleteAdmin()
		audit("error", err)
		return err
	}

	if err := s.accounts.Delete(ctx, id); err != nil {
		err = domain.Internalize(err)
		audit("error", err)
		return err
	}

	s.publish(ctx, domain.EventAccountDeleted, a)
	audit("success", nil)
	return nil
}
