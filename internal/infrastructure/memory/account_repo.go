package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// AccountRepo is an in-process account store for tests and tool dry runs.
type AccountRepo struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]domain.Account
	byEmail map[string]int64 // email -> id
	now     func() time.Time
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		byID:    make(map[int64]domain.Account),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return r.byID[id], nil
}

func (r *AccountRepo) FindByID(ctx context.Context, id int64) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return a, nil
}

func (r *AccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.Email = domain.NormalizeEmail(a.Email)
	if _, exists := r.byEmail[a.Email]; exists {
		return domain.Account{}, domain.ErrEmailAlreadyExists()
	}

	r.nextID++
	now := r.now().UTC()
	a.ID = r.nextID
	a.CreatedAt, a.UpdatedAt = now, now

	r.byID[a.ID] = a
	r.byEmail[a.Email] = a.ID
	return a, nil
}

func (r *AccountRepo) Update(ctx context.Context, id int64, c domain.AccountChanges) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}

	next := c.Apply(cur)
	next.Email = domain.NormalizeEmail(next.Email)
	if next.Email != cur.Email {
		if owner, taken := r.byEmail[next.Email]; taken && owner != id {
			return domain.Account{}, domain.ErrEmailAlreadyExists()
		}
		delete(r.byEmail, cur.Email)
		r.byEmail[next.Email] = id
	}
	if !c.Empty() {
		next.UpdatedAt = r.now().UTC()
	}

	r.byID[id] = next
	return next, nil
}

func (r *AccountRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound()
	}
	delete(r.byID, id)
	delete(r.byEmail, a.Email)
	return nil
}

// FindAndCount returns one page of matching accounts, newest first, and the
// total number of matches.
func (r *AccountRepo) FindAndCount(ctx context.Context, f domain.AccountFilter, p domain.Page) ([]domain.Account, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		if f.Role != nil && a.Role != *f.Role {
			continue
		}
		if f.IsActive != nil && a.IsActive != *f.IsActive {
			continue
		}
		matches = append(matches, a)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	if p.Offset < 0 || p.Offset >= total {
		return []domain.Account{}, total, nil
	}
	end := total
	if p.Limit > 0 && p.Offset+p.Limit < total {
		end = p.Offset + p.Limit
	}
	return matches[p.Offset:end], total, nil
}
