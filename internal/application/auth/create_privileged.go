package auth

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// SystemActor is the identity used by operator tooling (bootstrap admin).
// It never appears in a token.
func SystemActor() domain.IdentityClaims {
	return domain.IdentityClaims{Role: domain.RoleAdmin, IsActive: true}
}

// CreatePrivileged lets an active admin create an account with any role.
// It is the only way an admin account comes into existence.
func (s *Service) CreatePrivileged(ctx context.Context, actor domain.IdentityClaims, in RegisterInput, role domain.Role) (domain.AccountView, error) {
	audit := s.auditor(ctx, "admin.create_account", map[string]string{
		"actor_id":    idString(actor.AccountID),
		"actor_role":  string(actor.Role),
		"target_role": string(role),
		"email":       domain.NormalizeEmail(in.Email),
	})

	if !actor.IsActive {
		err := domain.ErrAccountBlocked()
		audit("error", err, nil)
		return domain.AccountView{}, err
	}
	if !actor.Role.IsAdmin() {
		err := domain.ErrInsufficientRole(domain.RoleAdmin)
		audit("error", err, nil)
		return domain.AccountView{}, err
	}
	if !domain.IsValidRole(string(role)) {
		err := domain.ErrInvalidField("role", "unknown role")
		audit("error", err, nil)
		return domain.AccountView{}, err
	}

	created, err := s.createAccount(ctx, in, role)
	if err != nil {
		audit("error", err, nil)
		return domain.AccountView{}, err
	}

	audit("success", nil, map[string]string{"account_id": idString(created.ID)})
	return created.View(), nil
}
