package auth

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

/*
AccountRepo
-----------
Persistence port for accounts.
Only describes WHAT the auth service needs, not HOW it's stored.
Missing accounts are reported as domain.ErrAccountNotFound.
*/
type AccountRepo interface {
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
	FindByID(ctx context.Context, id int64) (domain.Account, error)
	Create(ctx context.Context, a domain.Account) (domain.Account, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

/*
PasswordPolicy
--------------
Returns every violated strength rule; empty means the password is acceptable.
*/
type PasswordPolicy interface {
	Violations(password string) []string
}

/*
TokenService
------------
Issues and verifies identity tokens (JWT).
*/
type TokenService interface {
	Issue(c domain.IdentityClaims) (string, error)
	Verify(token string, opts domain.VerifyOptions) (domain.IdentityClaims, error)
}

/*
EventPublisher
--------------
Publishes account events to RabbitMQ. Best effort: a failure never undoes
the mutation that produced the event.
*/
type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, evt domain.AccountEvent) error
}
