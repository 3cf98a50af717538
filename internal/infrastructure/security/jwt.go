package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

const DefaultTokenTTL = 24 * time.Hour

type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTService(secret, issuer string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source; tests only.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

func (s *JWTService) TTL() time.Duration { return s.ttl }

type identityClaims struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
	jwt.RegisteredClaims
}

func (s *JWTService) Issue(c domain.IdentityClaims) (string, error) {
	now := s.now()
	claims := identityClaims{
		ID:       c.AccountID,
		Email:    c.Email,
		Role:     string(c.Role),
		IsActive: c.IsActive,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(c.AccountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTService) Verify(token string, opts domain.VerifyOptions) (domain.IdentityClaims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if opts.IgnoreExpiration {
		parserOpts = append(parserOpts, jwt.WithoutClaimsValidation())
	} else {
		parserOpts = append(parserOpts, jwt.WithExpirationRequired())
		if s.issuer != "" {
			parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
		}
	}

	parsed, err := jwt.ParseWithClaims(token, &identityClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return s.secret, nil
	}, parserOpts...)
	if err != nil {
		return domain.IdentityClaims{}, mapJWTError(err)
	}

	claims, ok := parsed.Claims.(*identityClaims)
	if !ok || !parsed.Valid {
		return domain.IdentityClaims{}, domain.ErrTokenInvalid()
	}
	if opts.IgnoreExpiration && s.issuer != "" && claims.Issuer != s.issuer {
		return domain.IdentityClaims{}, domain.ErrTokenInvalid()
	}
	if claims.ID <= 0 || !domain.IsValidRole(claims.Role) {
		return domain.IdentityClaims{}, domain.ErrTokenInvalid()
	}

	return toIdentity(claims), nil
}

// DecodeUnsafe reads claims without checking the signature.
// Never use the result for authorization.
func (s *JWTService) DecodeUnsafe(token string) (domain.IdentityClaims, bool) {
	claims := &identityClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.IdentityClaims{}, false
	}
	return toIdentity(claims), true
}

func toIdentity(c *identityClaims) domain.IdentityClaims {
	out := domain.IdentityClaims{
		AccountID: c.ID,
		Email:     c.Email,
		Role:      domain.Role(c.Role),
		IsActive:  c.IsActive,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.ErrTokenMalformed()
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired()
	default:
		return domain.ErrTokenInvalid()
	}
}
