package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Today() time.Time { return c.Now().Truncate(24 * time.Hour) }

func (c *fakeClock) AddDays(n int) time.Time { return c.Now().AddDate(0, 0, n) }

func (c *fakeClock) AddHours(n int) time.Time { return c.Now().Add(time.Duration(n) * time.Hour) }

func (c *fakeClock) IsExpired(at time.Time, buffer time.Duration) bool {
	return !c.Now().Add(buffer).Before(at)
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memAccounts struct {
	mu    sync.Mutex
	saves int
}

func (r *memAccounts) Save(_ context.Context, _ *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	return nil
}

func (r *memAccounts) GetByID(_ context.Context, _ string) (*domain.Account, error) {
	return nil, e.ErrAccountNotFound
}

func (r *memAccounts) GetSupplierAccount(_ context.Context, _, _ string) (*domain.Account, error) {
	return nil, e.ErrAccountNotFound
}

func (r *memAccounts) GetMarketAccount(_ context.Context, _, _ string) (*domain.Account, error) {
	return nil, e.ErrAccountNotFound
}

func newStore() (*TokenStore, *fakeClock, *memAccounts) {
	clock := &fakeClock{now: testNow}
	accounts := &memAccounts{}
	return NewTokenStore(accounts, clock, logger.Nop(), DefaultRefreshPolicy()), clock, accounts
}

func tokenExpiringIn(d time.Duration) *domain.TokenInfo {
	at := testNow.Add(d)
	return domain.NewTokenInfo("token-"+d.String(), &at)
}

func TestTokenStore_Get(t *testing.T) {
	t.Run("returns account token when not expired", func(t *testing.T) {
		store, _, _ := newStore()
		acc := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)
		acc.TokenInfo = tokenExpiringIn(time.Hour)

		assert.Same(t, acc.TokenInfo, store.Get(context.Background(), acc))
	})

	t.Run("returns nil for expired token", func(t *testing.T) {
		store, _, _ := newStore()
		acc := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)
		acc.TokenInfo = tokenExpiringIn(time.Minute)

		assert.Nil(t, store.Get(context.Background(), acc))
	})

	t.Run("returns nil without token", func(t *testing.T) {
		store, _, _ := newStore()
		acc := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)

		assert.Nil(t, store.Get(context.Background(), acc))
	})
}

func TestTokenStore_RefreshIfNeeded(t *testing.T) {
	t.Run("keeps token far from expiry", func(t *testing.T) {
		store, _, accounts := newStore()
		acc := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)
		acc.TokenInfo = tokenExpiringIn(10 * time.Hour)

		got, err := store.RefreshIfNeeded(context.Background(), acc, func(context.Context) (*domain.TokenInfo, error) {
			t.Fatal("refresher must not be called")
			return nil, nil
		})

		require.NoError(t, err)
		assert.Same(t, acc.TokenInfo, got)
		assert.Zero(t, accounts.saves)
	})

	t.Run("refreshes token inside buffer window", func(t *testing.T) {
		store, _, accounts := newStore()
		acc := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)
		acc.TokenInfo = tokenExpiringIn(time.Hour)
		fresh := tokenExpiringIn(24 * time.Hour)

		got, err := store.RefreshIfNeeded(context.Background(), acc, func(context.Context) (*domain.TokenInfo, error) {
			return fresh, nil
		})

		require.NoError(t, err)
		assert.Same(t, fresh, got)
		assert.Same(t, fresh, acc.TokenInfo)
		assert.Equal(t, 1, accounts.saves)
		assert.Same(t, fresh, store.Get(context.Background(), acc))
	})

	t.Run("retries with exponential backoff", func(t *testing.T) {
		store, clock, _ := newStore()
		acc := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)
		fresh := tokenExpiringIn(24 * time.Hour)

		calls := 0
		got, err := store.RefreshIfNeeded(context.Background(), acc, func(context.Context) (*domain.TokenInfo, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("auth server unavailable")
			}
			return fresh, nil
		})

		require.NoError(t, err)
		assert.Same(t, fresh, got)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clock.sleeps)
	})

	t.Run("returns stale token after exhausting attempts", func(t *testing.T) {
		store, clock, accounts := newStore()
		acc := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)
		stale := tokenExpiringIn(time.Hour)
		acc.TokenInfo = stale

		calls := 0
		got, err := store.RefreshIfNeeded(context.Background(), acc, func(context.Context) (*domain.TokenInfo, error) {
			calls++
			return nil, errors.New("invalid credentials")
		})

		require.NoError(t, err)
		assert.Same(t, stale, got)
		assert.Equal(t, 3, calls)
		assert.Len(t, clock.sleeps, 2)
		assert.Zero(t, accounts.saves)
	})

	t.Run("fails when nothing is known", func(t *testing.T) {
		store, _, _ := newStore()
		acc := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)

		got, err := store.RefreshIfNeeded(context.Background(), acc, func(context.Context) (*domain.TokenInfo, error) {
			return nil, nil
		})

		require.ErrorIs(t, err, e.ErrNoToken)
		assert.Nil(t, got)
	})

	t.Run("concurrent callers share one refresh", func(t *testing.T) {
		store, _, accounts := newStore()
		fresh := tokenExpiringIn(24 * time.Hour)

		var calls atomic.Int32
		refresher := func(context.Context) (*domain.TokenInfo, error) {
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			return fresh, nil
		}

		var wg sync.WaitGroup
		results := make([]*domain.TokenInfo, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				acc := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)
				tok, err := store.RefreshIfNeeded(context.Background(), acc, refresher)
				assert.NoError(t, err)
				results[i] = tok
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 1, accounts.saves)
		for _, tok := range results {
			assert.Same(t, fresh, tok)
		}
	})
}

func TestTokenStore_RefreshSurvivesCallerCancel(t *testing.T) {
	store, _, accounts := newStore()
	fresh := tokenExpiringIn(24 * time.Hour)

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	refresher := func(ctx context.Context) (*domain.TokenInfo, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fresh, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		acc := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)
		_, err := store.RefreshIfNeeded(ctx, acc, refresher)
		firstDone <- err
	}()

	<-started
	cancel()
	require.ErrorIs(t, <-firstDone, e.ErrNoToken)

	secondDone := make(chan *domain.TokenInfo, 1)
	second := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)
	go func() {
		tok, err := store.RefreshIfNeeded(context.Background(), second, refresher)
		assert.NoError(t, err)
		secondDone <- tok
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	assert.Same(t, fresh, <-secondDone)
	assert.Same(t, fresh, second.TokenInfo)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, accounts.saves)
}

func TestTokenStore_StopsRetryingOnContextError(t *testing.T) {
	store, clock, _ := newStore()
	acc := domain.NewAccount("acc-1", domain.AccountTypeSupplier, "main", testNow)

	calls := 0
	got, err := store.RefreshIfNeeded(context.Background(), acc, func(context.Context) (*domain.TokenInfo, error) {
		calls++
		return nil, context.DeadlineExceeded
	})

	require.ErrorIs(t, err, e.ErrNoToken)
	assert.Nil(t, got)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.sleeps)
}

func TestTokenStore_Invalidate(t *testing.T) {
	store, _, accounts := newStore()
	acc := domain.NewAccount("acc-1", domain.AccountTypeMarket, "coupang", testNow)
	acc.TokenInfo = tokenExpiringIn(24 * time.Hour)
	require.NotNil(t, store.Get(context.Background(), acc))

	require.NoError(t, store.Invalidate(context.Background(), acc))

	assert.Equal(t, 1, accounts.saves)
	require.NotNil(t, acc.TokenInfo)
	assert.Empty(t, acc.TokenInfo.AccessToken)
	assert.True(t, acc.TokenInfo.IsExpired(testNow, 0))
	assert.Nil(t, store.Get(context.Background(), acc))
}

func TestTokenStore_CleanupExpired(t *testing.T) {
	store, clock, _ := newStore()
	ctx := context.Background()

	short := domain.NewAccount("short", domain.AccountTypeSupplier, "a", testNow)
	short.TokenInfo = tokenExpiringIn(time.Hour)
	long := domain.NewAccount("long", domain.AccountTypeSupplier, "b", testNow)
	long.TokenInfo = tokenExpiringIn(48 * time.Hour)

	require.NotNil(t, store.Get(ctx, short))
	require.NotNil(t, store.Get(ctx, long))

	assert.Zero(t, store.CleanupExpired())

	clock.advance(2 * time.Hour)
	assert.Equal(t, 1, store.CleanupExpired())
	assert.Zero(t, store.CleanupExpired())
}
