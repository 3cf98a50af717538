package accounts

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// AccountRepo is the store port for account management.
// Update writes only the non-nil fields of changes and returns the new state.
type AccountRepo interface {
	FindByID(ctx context.Context, id int64) (domain.Account, error)
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
	Update(ctx context.Context, id int64, changes domain.AccountChanges) (domain.Account, error)
	Delete(ctx context.Context, id int64) error
	FindAndCount(ctx context.Context, filter domain.AccountFilter, page domain.Page) ([]domain.Account, int, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type PasswordPolicy interface {
	Violations(password string) []string
}

type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, evt domain.AccountEvent) error
}
