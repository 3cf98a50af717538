package auth

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// Login authenticates an account and issues a token.
// IMPORTANT: unknown email and wrong password must look the same (no enumeration).
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = domain.NormalizeEmail(email)
	audit := s.auditor(ctx, "auth.login", map[string]string{"email": email})

	if email == "" || password == "" {
		err := domain.ErrInvalidCredentials()
		audit("error", err, nil)
		return AuthResult{}, err
	}

	a, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, domain.CodeNotFound) {
			err = domain.ErrInvalidCredentials()
		} else {
			err = domain.Internalize(err)
		}
		audit("error", err, nil)
		return AuthResult{}, err
	}

	if !a.IsActive {
		err := domain.ErrAccountBlocked()
		audit("error", err, map[string]string{"account_id": idString(a.ID)})
		return AuthResult{}, err
	}

	if !s.hasher.Verify(password, a.PasswordHash) {
		err := domain.ErrInvalidCredentials()
		audit("error", err, map[string]string{"account_id": idString(a.ID)})
		return AuthResult{}, err
	}

	res, err := s.issue(a)
	if err != nil {
		audit("error", err, map[string]string{"account_id": idString(a.ID)})
		return AuthResult{}, err
	}

	audit("success", nil, map[string]string{"account_id": idString(a.ID)})
	return res, nil
}
