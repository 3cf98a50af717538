package accounts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/infrastructure/memory"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/infrastructure/security"
)

/*
fakeRepo wraps the in-memory store with injectable failures and a call log.
*/
type fakeRepo struct {
	*memory.AccountRepo

	mu        sync.Mutex
	updateErr error
	deleteErr error
	listErr   error
	updates   []domain.AccountChanges
}

func (f *fakeRepo) Update(ctx context.Context, id int64, c domain.AccountChanges) (domain.Account, error) {
	f.mu.Lock()
	f.updates = append(f.updates, c)
	err := f.updateErr
	f.mu.Unlock()
	if err != nil {
		return domain.Account{}, err
	}
	return f.AccountRepo.Update(ctx, id, c)
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.AccountRepo.Delete(ctx, id)
}

func (f *fakeRepo) FindAndCount(ctx context.Context, flt domain.AccountFilter, p domain.Page) ([]domain.Account, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.AccountRepo.FindAndCount(ctx, flt, p)
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hash:" + password, nil }
func (fakeHasher) Verify(password, hash string) bool   { return hash == "hash:"+password }

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.AccountEvent
}

func (p *fakePublisher) PublishAccountEvent(ctx context.Context, evt domain.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type auditEntry struct {
	action string
	fields map[string]string
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

var errBoom = errors.New("boom")

type harness struct {
	svc    *Service
	repo   *fakeRepo
	pub    *fakePublisher
	audits *[]auditEntry
}

func newSvcForTest(t *testing.T) harness {
	t.Helper()

	repo := &fakeRepo{AccountRepo: memory.NewAccountRepo()}
	pub := &fakePublisher{}
	audits := &[]auditEntry{}

	svc := NewService(repo, fakeHasher{}, security.DefaultPasswordPolicy(), pub).
		WithClock(func() time.Time { return testNow }).
		WithAudit(func(_ context.Context, action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			*audits = append(*audits, auditEntry{action: action, fields: cp})
		})

	return harness{svc: svc, repo: repo, pub: pub, audits: audits}
}

func seed(t *testing.T, h harness, email string, role domain.Role) domain.Account {
	t.Helper()
	a, err := h.repo.Create(context.Background(), domain.Account{
		FirstName:    "Ann",
		LastName:     "Bee",
		BirthDate:    time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Email:        email,
		PasswordHash: "hash:Aa1111",
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return a
}

func requireDomainCode(t *testing.T, err error, want string) {
	t.Helper()
	if got := domain.Code(err); got != want {
		t.Fatalf("expected domain code %q, got %q (err=%v)", want, got, err)
	}
}

func lastAudit(t *testing.T, audits *[]auditEntry) auditEntry {
	t.Helper()
	if len(*audits) == 0 {
		t.Fatalf("expected audit entry, got none")
	}
	return (*audits)[len(*audits)-1]
}

func strPtr(s string) *string { return &s }
