package accounts

import (
	"context"
	"strconv"
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

type Service struct {
	accounts AccountRepo
	hasher   PasswordHasher
	policy   PasswordPolicy
	pub      EventPublisher

	now   func() time.Time
	audit func(ctx context.Context, action string, fields map[string]string)
}

func NewService(accounts AccountRepo, hasher PasswordHasher, policy PasswordPolicy, pub EventPublisher) *Service {
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		policy:   policy,
		pub:      pub,
		now:      time.Now,
		audit:    func(context.Context, string, map[string]string) {},
	}
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

func (s *Service) Get(ctx context.Context, id int64) (domain.AccountView, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return domain.AccountView{}, err
	}
	return a.View(), nil
}

func (s *Service) load(ctx context.Context, id int64) (domain.Account, error) {
	if id <= 0 {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return domain.Account{}, domain.Internalize(err)
	}
	return a, nil
}

func (s *Service) update(ctx context.Context, id int64, c domain.AccountChanges) (domain.Account, error) {
	a, err := s.accounts.Update(ctx, id, c)
	if err != nil {
		return domain.Account{}, domain.Internalize(err)
	}
	return a, nil
}

// hashNew validates a candidate password against the policy and hashes it.
func (s *Service) hashNew(password string) (string, error) {
	if v := s.policy.Violations(password); len(v) > 0 {
		return "", domain.ErrWeakPassword(v)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", domain.Internalize(err)
	}
	return hash, nil
}

func (s *Service) publish(ctx context.Context, t domain.EventType, a domain.Account) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishAccountEvent(ctx, domain.NewAccountEvent(t, a, s.now())); err != nil {
		s.audit(ctx, "event.publish", map[string]string{
			"event":      string(t),
			"account_id": strconv.FormatInt(a.ID, 10),
			"result":     "error",
			"error":      err.Error(),
		})
	}
}

func (s *Service) auditor(ctx context.Context, action string, id int64) func(result string, err error) {
	return func(result string, err error) {
		fields := map[string]string{
			"account_id": strconv.FormatInt(id, 10),
			"result":     result,
		}
		if err != nil {
			fields["error_code"] = domain.Code(err)
			if fields["error_code"] == "" {
				fields["error_code"] = "non_domain_error"
			}
		}
		s.audit(ctx, action, fields)
	}
}
