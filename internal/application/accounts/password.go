package accounts

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// ChangePassword requires the current password. Existing tokens stay valid.
func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	audit := s.auditor(ctx, "account.change_password", id)

	a, err := s.load(ctx, id)
	if err != nil {
		audit("error", err)
		return err
	}

	if !s.hasher.Verify(current, a.PasswordHash) {
		err := domain.ErrCurrentPasswordInvalid()
		audit("error", err)
		return err
	}

	hash, err := s.hashNew(next)
	if err != nil {
		audit("error", err)
		return err
	}

	updated, err := s.update(ctx, id, domain.AccountChanges{PasswordHash: &hash})
	if err != nil {
		audit("error", err)
		return err
	}

	s.publish(ctx, domain.EventAccountPasswordChanged, updated)
	audit("success", nil)
	return nil
}
