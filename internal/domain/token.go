package domain

import "time"

// IdentityClaims is the claim set carried by an identity token.
// It is derived from an Account at issue time and never persisted.
type IdentityClaims struct {
	AccountID int64
	Email     string
	Role      Role
	IsActive  bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ClaimsFor builds the claim set for an account; the token service fills in
// IssuedAt and ExpiresAt.
func ClaimsFor(a Account) IdentityClaims {
	return IdentityClaims{
		AccountID: a.ID,
		Email:     a.Email,
		Role:      a.Role,
		IsActive:  a.IsActive,
	}
}

// VerifyOptions tunes token verification. IgnoreExpiration is for the
// refresh flow only; the signature is still checked.
type VerifyOptions struct {
	IgnoreExpiration bool
}
