package auth

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/infrastructure/security"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeAccountRepo struct {
	mu sync.Mutex

	nextID  int64
	byID    map[int64]domain.Account
	byEmail map[string]int64

	// injected errors (if set, method returns error)
	findByIDErr    error
	findByEmailErr error
	createErr      error

	created []domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byID:    map[int64]domain.Account{},
		byEmail: map[string]int64{},
	}
}

func (f *fakeAccountRepo) put(a domain.Account) domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()

	if a.ID == 0 {
		f.nextID++
		a.ID = f.nextID
	} else if a.ID > f.nextID {
		f.nextID = a.ID
	}
	f.byID[a.ID] = a
	f.byEmail[a.Email] = a.ID
	return a
}

func (f *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findByEmailErr != nil {
		return domain.Account{}, f.findByEmailErr
	}
	id, ok := f.byEmail[email]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return f.byID[id], nil
}

func (f *fakeAccountRepo) FindByID(ctx context.Context, id int64) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findByIDErr != nil {
		return domain.Account{}, f.findByIDErr
	}
	a, ok := f.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return a, nil
}

func (f *fakeAccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	if f.createErr != nil {
		return domain.Account{}, f.createErr
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a.CreatedAt, a.UpdatedAt = now, now
	a = f.put(a)

	f.mu.Lock()
	f.created = append(f.created, a)
	f.mu.Unlock()
	return a, nil
}

type fakeHasher struct {
	hashFn func(pw string) (string, error)
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Verify(password, hash string) bool {
	return hash == "hash:"+password
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []domain.AccountEvent
}

func (p *fakePublisher) PublishAccountEvent(ctx context.Context, evt domain.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, string(e.Type))
	}
	return out
}

type fakeTokens struct {
	issueErr error
	verifyFn func(token string, opts domain.VerifyOptions) (domain.IdentityClaims, error)
}

func (f *fakeTokens) Issue(c domain.IdentityClaims) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return "tok", nil
}

func (f *fakeTokens) Verify(token string, opts domain.VerifyOptions) (domain.IdentityClaims, error) {
	if f.verifyFn != nil {
		return f.verifyFn(token, opts)
	}
	return domain.IdentityClaims{}, domain.ErrTokenInvalid()
}

/*
Test harness
*/

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const testSecret = "test-secret"

type harness struct {
	svc    *Service
	repo   *fakeAccountRepo
	hasher *fakeHasher
	pub    *fakePublisher
	jwt    *security.JWTService
	audits *[]auditEntry
}

// newSvcForTest wires the service with fakes and a real JWT service whose
// clock is pinned to testNow.
func newSvcForTest(t *testing.T) harness {
	t.Helper()

	repo := newFakeAccountRepo()
	hasher := &fakeHasher{}
	pub := &fakePublisher{}
	jwtSvc := security.NewJWTService(testSecret, "user-service", time.Hour).
		WithClock(func() time.Time { return testNow })

	audits := &[]auditEntry{}
	svc := NewService(repo, hasher, security.DefaultPasswordPolicy(), jwtSvc, pub, Config{}).
		WithClock(func() time.Time { return testNow }).
		WithAudit(func(_ context.Context, action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			*audits = append(*audits, auditEntry{action: action, fields: cp})
		})

	if svc == nil {
		t.Fatalf("expected service")
	}
	return harness{svc: svc, repo: repo, hasher: hasher, pub: pub, jwt: jwtSvc, audits: audits}
}

func validInput(email string) RegisterInput {
	return RegisterInput{
		Email:     email,
		Password:  "Aa1111",
		FirstName: "Ann",
		LastName:  "Bee",
		BirthDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func seedAccount(h harness, email, password string, role domain.Role, active bool) domain.Account {
	return h.repo.put(domain.Account{
		FirstName:    "Seed",
		LastName:     "Account",
		BirthDate:    time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Email:        email,
		PasswordHash: "hash:" + password,
		Role:         role,
		IsActive:     active,
	})
}

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	got := domainCode(err)
	if got != wantCode {
		t.Fatalf("expected domain code %q, got %q (err=%v)", wantCode, got, err)
	}
}

func lastAudit(audits *[]auditEntry) (auditEntry, bool) {
	if audits == nil || len(*audits) == 0 {
		return auditEntry{}, false
	}
	return (*audits)[len(*audits)-1], true
}

func requireAuditAction(t *testing.T, audits *[]auditEntry, wantAction string) auditEntry {
	t.Helper()
	e, ok := lastAudit(audits)
	if !ok {
		t.Fatalf("expected audit entry, got none")
	}
	if e.action != wantAction {
		t.Fatalf("expected audit action %q, got %q", wantAction, e.action)
	}
	return e
}

func requireAuditField(t *testing.T, e auditEntry, k, want string) {
	t.Helper()
	got := strings.TrimSpace(e.fields[k])
	if got != want {
		keys := make([]string, 0, len(e.fields))
		for key := range e.fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		t.Fatalf("expected audit field %q=%q, got %q (fields=%v)", k, want, got, keys)
	}
}

var errBoom = errors.New("boom")
