package accounts

import (
	"context"
	"strconv"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// ToggleBlock sets the active flag. Admins can never be blocked.
func (s *Service) ToggleBlock(ctx context.Context, id int64, isActive bool) (domain.AccountView, error) {
	audit := s.auditor(ctx, "account.toggle_block", id)

	a, err := s.load(ctx, id)
	if err != nil {
		audit("error", err)
		return domain.AccountView{}, err
	}

	if a.Role.IsAdmin() && !isActive {
		err := domain.ErrCannotBlockAdmin()
		audit("error", err)
		return domain.AccountView{}, err
	}

	if a.IsActive == isActive {
		audit("noop", nil)
		return a.View(), nil
	}

	updated, err := s.update(ctx, id, domain.AccountChanges{IsActive: &isActive})
	if err != nil {
		audit("error", err)
		return domain.AccountView{}, err
	}

	evt := domain.EventAccountUnblocked
	if !isActive {
		evt = domain.EventAccountBlocked
	}
	s.publish(ctx, evt, updated)
	s.audit(ctx, "account.toggle_block", map[string]string{
		"account_id": strconv.FormatInt(id, 10),
		"result":     "success",
		"is_active":  strconv.FormatBool(isActive),
	})
	return updated.View(), nil
}
