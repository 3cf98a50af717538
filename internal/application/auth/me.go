package auth

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

func (s *Service) Me(ctx context.Context, accountID int64) (domain.AccountView, error) {
	a, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return domain.AccountView{}, domain.Internalize(err)
	}
	return a.View(), nil
}
