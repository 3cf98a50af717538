package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/metrics"
)

// AccountStore is the full store surface the cache decorates.
type AccountStore interface {
	FindByID(ctx context.Context, id int64) (domain.Account, error)
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
	Create(ctx context.Context, a domain.Account) (domain.Account, error)
	Update(ctx context.Context, id int64, c domain.AccountChanges) (domain.Account, error)
	Delete(ctx context.Context, id int64) error
	FindAndCount(ctx context.Context, f domain.AccountFilter, p domain.Page) ([]domain.Account, int, error)
}

// CachedAccountRepo decorates an AccountStore with a Redis read-through cache
// for FindByID.
// - Read path: Redis -> store fallback -> Redis SETNX
// - Write path: store -> Redis SET (update) / tombstone (delete), best effort
// A fill never overwrites a value written by Update or Delete, so a read that
// raced a write cannot park a stale snapshot for the whole TTL.
// Redis failures never fail a call; the store stays the source of truth.
type CachedAccountRepo struct {
	inner   AccountStore
	rdb     *goredis.Client
	ttl     time.Duration
	keyPref string
}

func NewCachedAccountRepo(inner AccountStore, client *Client, ttl time.Duration) *CachedAccountRepo {
	var rdb *goredis.Client
	if client != nil {
		rdb = client.rdb
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedAccountRepo{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		keyPref: "account:",
	}
}

// tombstone marks a deleted account so racing fills are refused.
const tombstone = "deleted"

func (c *CachedAccountRepo) key(id int64) string {
	return c.keyPref + strconv.FormatInt(id, 10)
}

// accountSnapshot is the cached JSON form of an account.
type accountSnapshot struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	MiddleName   *string   `json:"middle_name,omitempty"`
	BirthDate    time.Time `json:"birth_date"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toSnapshot(a domain.Account) accountSnapshot {
	return accountSnapshot{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		MiddleName:   a.MiddleName,
		BirthDate:    a.BirthDate,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role),
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (s accountSnapshot) toDomain() domain.Account {
	return domain.Account{
		ID:           s.ID,
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		MiddleName:   s.MiddleName,
		BirthDate:    s.BirthDate,
		Email:        s.Email,
		PasswordHash: s.PasswordHash,
		Role:         domain.Role(s.Role),
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (c *CachedAccountRepo) FindByID(ctx context.Context, id int64) (domain.Account, error) {
	// 1) Try Redis
	if c.rdb != nil {
		b, err := c.rdb.Get(ctx, c.key(id)).Bytes()
		switch {
		case err == nil && string(b) == tombstone:
			metrics.CacheLookup(metrics.CacheMiss)
		case err == nil:
			var snap accountSnapshot
			if jerr := json.Unmarshal(b, &snap); jerr == nil && snap.ID == id {
				metrics.CacheLookup(metrics.CacheHit)
				return snap.toDomain(), nil
			}
			// corrupt entry -> fall back to store
			metrics.CacheLookup(metrics.CacheError)
		case errors.Is(err, goredis.Nil):
			metrics.CacheLookup(metrics.CacheMiss)
		default:
			metrics.CacheLookup(metrics.CacheError)
			logger.WithCtx(ctx).Warn().Err(err).Int64("account_id", id).Msg("account cache read failed")
		}
	}

	// 2) Store is the source of truth
	a, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	// 3) Best-effort cache fill; loses to any concurrent write
	c.fill(ctx, a)
	return a, nil
}

func (c *CachedAccountRepo) Update(ctx context.Context, id int64, changes domain.AccountChanges) (domain.Account, error) {
	a, err := c.inner.Update(ctx, id, changes)
	if err != nil {
		// state unknown: drop whatever we had
		c.del(ctx, id)
		return domain.Account{}, err
	}
	// SET beats DEL: the next read is already warm
	c.set(ctx, a)
	return a, nil
}

func (c *CachedAccountRepo) Delete(ctx context.Context, id int64) error {
	err := c.inner.Delete(ctx, id)
	if err != nil {
		c.del(ctx, id)
		return err
	}
	c.bury(ctx, id)
	return nil
}

func (c *CachedAccountRepo) set(ctx context.Context, a domain.Account) {
	if c.rdb == nil {
		return
	}
	b, err := json.Marshal(toSnapshot(a))
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(a.ID), b, c.ttl).Err(); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Int64("account_id", a.ID).Msg("account cache write failed")
	}
}

func (c *CachedAccountRepo) fill(ctx context.Context, a domain.Account) {
	if c.rdb == nil {
		return
	}
	b, err := json.Marshal(toSnapshot(a))
	if err != nil {
		return
	}
	if err := c.rdb.SetNX(ctx, c.key(a.ID), b, c.ttl).Err(); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Int64("account_id", a.ID).Msg("account cache fill failed")
	}
}

func (c *CachedAccountRepo) bury(ctx context.Context, id int64) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(id), tombstone, c.ttl).Err(); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Int64("account_id", id).Msg("account cache invalidate failed")
	}
}

func (c *CachedAccountRepo) del(ctx context.Context, id int64) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.key(id)).Err(); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Int64("account_id", id).Msg("account cache invalidate failed")
	}
}

/*
Below: delegate the remaining store methods to inner.
*/

func (c *CachedAccountRepo) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	return c.inner.FindByEmail(ctx, email)
}

func (c *CachedAccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	return c.inner.Create(ctx, a)
}

func (c *CachedAccountRepo) FindAndCount(ctx context.Context, f domain.AccountFilter, p domain.Page) ([]domain.Account, int, error) {
	return c.inner.FindAndCount(ctx, f, p)
}
