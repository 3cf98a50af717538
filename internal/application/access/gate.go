package access

import (
	"strings"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// TokenVerifier is the slice of the token service the gate needs.
type TokenVerifier interface {
	Verify(token string, opts domain.VerifyOptions) (domain.IdentityClaims, error)
}

// Principal is the verified caller of one request.
type Principal struct {
	AccountID int64
	Email     string
	Role      domain.Role
}

func (p Principal) IsAdmin() bool { return p.Role.IsAdmin() }

// Claims converts back to an identity for services that take an actor.
func (p Principal) Claims() domain.IdentityClaims {
	return domain.IdentityClaims{AccountID: p.AccountID, Email: p.Email, Role: p.Role, IsActive: true}
}

type Gate struct {
	verifier TokenVerifier
}

func NewGate(v TokenVerifier) *Gate {
	return &Gate{verifier: v}
}

// Authenticate resolves an Authorization header value into a Principal.
// The store is never consulted; the claims are trusted until expiry.
func (g *Gate) Authenticate(header string) (Principal, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Principal{}, domain.ErrTokenMissing()
	}

	raw, err := BearerToken(header)
	if err != nil {
		return Principal{}, err
	}

	claims, err := g.verifier.Verify(raw, domain.VerifyOptions{})
	if err != nil {
		return Principal{}, err
	}
	if claims.AccountID <= 0 {
		return Principal{}, domain.ErrTokenInvalid()
	}
	if !claims.IsActive {
		return Principal{}, domain.ErrAccountBlocked()
	}

	return Principal{AccountID: claims.AccountID, Email: claims.Email, Role: claims.Role}, nil
}

// BearerToken extracts the token from "Bearer <token>". Anything else is
// malformed; an empty header is missing.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domain.ErrTokenMissing()
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", domain.ErrTokenMalformed()
	}
	raw := strings.TrimSpace(parts[1])
	if raw == "" || strings.ContainsAny(raw, " \t") {
		return "", domain.ErrTokenMalformed()
	}
	return raw, nil
}

// RequireRole passes when p holds any of the allowed roles.
func RequireRole(p Principal, allowed ...domain.Role) error {
	for _, r := range allowed {
		if p.Role == r {
			return nil
		}
	}
	return domain.ErrInsufficientRole(allowed...)
}

// RequireOwnershipOrAdmin passes for admins and for the owner of ownerID.
func RequireOwnershipOrAdmin(p Principal, ownerID int64) error {
	if p.IsAdmin() {
		return nil
	}
	if p.AccountID != 0 && p.AccountID == ownerID {
		return nil
	}
	return domain.ErrForbidden()
}
