package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

const DefaultRefreshGrace = 7 * 24 * time.Hour

type Service struct {
	accounts AccountRepo
	hasher   PasswordHasher
	policy   PasswordPolicy
	tokens   TokenService
	pub      EventPublisher

	refreshGrace time.Duration
	now          func() time.Time
	audit        func(ctx context.Context, action string, fields map[string]string)
}

type Config struct {
	// RefreshGrace bounds how long after expiry a token may still be refreshed.
	RefreshGrace time.Duration
}

func NewService(
	accounts AccountRepo,
	hasher PasswordHasher,
	policy PasswordPolicy,
	tokens TokenService,
	pub EventPublisher,
	cfg Config,
) *Service {
	grace := cfg.RefreshGrace
	if grace <= 0 {
		grace = DefaultRefreshGrace
	}
	return &Service{
		accounts:     accounts,
		hasher:       hasher,
		policy:       policy,
		tokens:       tokens,
		pub:          pub,
		refreshGrace: grace,
		now:          time.Now,
		audit:        func(context.Context, string, map[string]string) {},
	}
}

// AuthResult is what register/login/refresh hand back to transports.
type AuthResult struct {
	Account domain.AccountView
	Token   string
}

func (s *Service) WithAudit(fn func(ctx context.Context, action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) issue(a domain.Account) (AuthResult, error) {
	tok, err := s.tokens.Issue(domain.ClaimsFor(a))
	if err != nil {
		return AuthResult{}, domain.Internalize(err)
	}
	return AuthResult{Account: a.View(), Token: tok}, nil
}

func (s *Service) publish(ctx context.Context, t domain.EventType, a domain.Account) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishAccountEvent(ctx, domain.NewAccountEvent(t, a, s.now())); err != nil {
		s.audit(ctx, "event.publish", map[string]string{
			"event":      string(t),
			"account_id": idString(a.ID),
			"result":     "error",
			"error":      err.Error(),
		})
	}
}

func idString(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
