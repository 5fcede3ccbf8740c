package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/ports"
)

// CachingAccountRepository decorates an AccountRepository with cache-aside
// reads. Writes go through to the inner repository and invalidate both the
// id and email keys, so a just-verified flag is never served stale.
type CachingAccountRepository struct {
	inner ports.AccountRepository
	cache ports.Cache
	ttl   time.Duration
}

func NewCachingAccountRepository(inner ports.AccountRepository, cache ports.Cache, ttl time.Duration) ports.AccountRepository {
	return &CachingAccountRepository{inner: inner, cache: cache, ttl: ttl}
}

func accountIDKey(id uuid.UUID) string { return "account:id:" + id.String() }
func accountEmailKey(e string) string  { return "account:email:" + e }

func (c *CachingAccountRepository) cacheSet(ctx context.Context, a *account.Account) {
	if c.cache == nil {
		return
	}
	b, err := json.Marshal(a)
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, accountIDKey(a.ID), b, c.ttl)
	_ = c.cache.Set(ctx, accountEmailKey(a.Email), b, c.ttl)
}

func (c *CachingAccountRepository) cacheGet(ctx context.Context, key string) (*account.Account, bool) {
	if c.cache == nil {
		return nil, false
	}
	b, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var a account.Account
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, false
	}
	return &a, true
}

func (c *CachingAccountRepository) invalidate(ctx context.Context, a *account.Account) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Delete(ctx, accountIDKey(a.ID))
	_ = c.cache.Delete(ctx, accountEmailKey(a.Email))
}

func (c *CachingAccountRepository) Create(ctx context.Context, a *account.Account) error {
	if err := c.inner.Create(ctx, a); err != nil {
		return err
	}
	c.cacheSet(ctx, a)
	return nil
}

func (c *CachingAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if a, ok := c.cacheGet(ctx, accountIDKey(id)); ok {
		return a, nil
	}
	a, err := c.inner.GetByID(ctx, id)
	if err == nil {
		c.cacheSet(ctx, a)
	}
	return a, err
}

func (c *CachingAccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	if a, ok := c.cacheGet(ctx, accountEmailKey(email)); ok {
		return a, nil
	}
	a, err := c.inner.GetByEmail(ctx, email)
	if err == nil {
		c.cacheSet(ctx, a)
	}
	return a, err
}

func (c *CachingAccountRepository) Update(ctx context.Context, a *account.Account) error {
	if err := c.inner.Update(ctx, a); err != nil {
		return err
	}
	c.invalidate(ctx, a)
	c.cacheSet(ctx, a)
	return nil
}

func (c *CachingAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// fetch first so the email key can be invalidated too
	if a, err := c.inner.GetByID(ctx, id); err == nil {
		defer c.invalidate(ctx, a)
	}
	return c.inner.Delete(ctx, id)
}
