package auth

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// Refresh swaps a (possibly expired) token for a fresh one.
// The signature must still verify, expiry may be at most refreshGrace in the
// past, and the account is re-read so role and block state are current.
func (s *Service) Refresh(ctx context.Context, oldToken string) (AuthResult, error) {
	audit := s.auditor(ctx, "auth.refresh", nil)

	claims, err := s.tokens.Verify(oldToken, domain.VerifyOptions{IgnoreExpiration: true})
	if err != nil {
		audit("error", err, nil)
		return AuthResult{}, err
	}

	if !claims.ExpiresAt.IsZero() && s.now().After(claims.ExpiresAt.Add(s.refreshGrace)) {
		err := domain.ErrTokenExpired()
		audit("error", err, map[string]string{"account_id": idString(claims.AccountID)})
		return AuthResult{}, err
	}

	a, err := s.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		if domain.Is(err, domain.CodeNotFound) {
			err = domain.ErrTokenInvalid()
		} else {
			err = domain.Internalize(err)
		}
		audit("error", err, map[string]string{"account_id": idString(claims.AccountID)})
		return AuthResult{}, err
	}

	if !a.IsActive {
		err := domain.ErrAccountBlocked()
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
