package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/jitter"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// RefreshPolicy — параметры обновления токенов.
type RefreshPolicy struct {
	Buffer          time.Duration // за сколько до истечения токен обновляется
	MaxAttempts     int
	Backoff         jitter.Backoff
	Timeout         time.Duration // предел на одно обновление вместе со всеми попытками
	JanitorInterval time.Duration
}

func DefaultRefreshPolicy() RefreshPolicy {
	return RefreshPolicy{
		Buffer:          3 * time.Hour,
		MaxAttempts:     3,
		Backoff:         jitter.Backoff{Base: time.Second},
		Timeout:         time.Minute,
		JanitorInterval: 10 * time.Minute,
	}
}

// TokenStore кэширует токены учётных записей в памяти процесса.
// Конкурентные обновления одной учётной записи схлопываются в один вызов refresher.
type TokenStore struct {
	accounts usecase.AccountRepository
	clock    usecase.Clock
	logger   logger.Logger
	policy   RefreshPolicy

	mu    sync.RWMutex
	cache map[string]*domain.TokenInfo

	group singleflight.Group
}

func NewTokenStore(accounts usecase.AccountRepository, clock usecase.Clock, logger logger.Logger, policy RefreshPolicy) *TokenStore {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	return &TokenStore{
		accounts: accounts,
		clock:    clock,
		logger:   logger,
		policy:   policy,
		cache:    make(map[string]*domain.TokenInfo),
	}
}

// Get возвращает действующий токен: сначала из кэша, затем сохранённый в учётной записи.
func (s *TokenStore) Get(_ context.Context, account *domain.Account) *domain.TokenInfo {
	key := account.CacheKey()
	now := s.clock.Now()

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()

	if ok && !cached.IsExpired(now, domain.DefaultExpiryBuffer) {
		return cached
	}

	if account.TokenInfo != nil && !account.TokenInfo.IsExpired(now, domain.DefaultExpiryBuffer) {
		s.put(key, account.TokenInfo)
		return account.TokenInfo
	}

	return nil
}

// RefreshIfNeeded обновляет токен, если его нет или он истекает в пределах Buffer.
// Если все попытки исчерпаны, возвращается последний известный токен.
func (s *TokenStore) RefreshIfNeeded(ctx context.Context, account *domain.Account, refresher usecase.TokenRefresher) (*domain.TokenInfo, error) {
	const op = "TokenStore.RefreshIfNeeded"

	current := s.Get(ctx, account)
	if s.fresh(current) {
		return current, nil
	}

	key := account.CacheKey()
	// вызывающий может уйти раньше, поэтому общее обновление работает с копией учётной записи
	shared := *account
	ch := s.group.DoChan(key, func() (any, error) {
		// пока ждали, токен мог обновить другой вызов
		if cached := s.cached(key); s.fresh(cached) {
			return cached, nil
		}

		// обновление общее для всех ожидающих: отмена одного вызывающего его не прерывает
		refreshCtx, cancel := s.refreshContext(ctx)
		defer cancel()

		s.logger.Infof("Refreshing token for %s", key)
		token, err := s.refreshWithRetry(refreshCtx, key, refresher)
		if err != nil {
			return nil, err
		}

		s.save(refreshCtx, &shared, token)
		return token, nil
	})

	var err error
	select {
	case res := <-ch:
		if res.Err == nil {
			if res.Shared {
				s.logger.Debugf("Token refresh for %s was shared between callers", key)
			}
			token := res.Val.(*domain.TokenInfo)
			if account.TokenInfo != token {
				account.UpdateToken(token, s.clock.Now())
			}
			return token, nil
		}
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	s.logger.Errorf(err, "Failed to refresh token for %s", key)

	lastKnown := current
	if lastKnown == nil {
		lastKnown = account.TokenInfo
	}
	if lastKnown == nil {
		return nil, e.Wrap(op, e.ErrNoToken)
	}

	return lastKnown, nil
}

// Invalidate удаляет токен из кэша и сохраняет в учётную запись уже истёкший токен.
func (s *TokenStore) Invalidate(ctx context.Context, account *domain.Account) error {
	const op = "TokenStore.Invalidate"

	key := account.CacheKey()

	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	now := s.clock.Now()
	expiredAt := now.Add(-time.Hour)
	account.UpdateToken(domain.NewTokenInfo("", &expiredAt), now)

	if err := s.accounts.Save(ctx, account); err != nil {
		return e.Wrap(op, err)
	}

	s.logger.Infof("Token invalidated for %s", key)
	return nil
}

// CleanupExpired удаляет из кэша истёкшие токены и возвращает их количество.
func (s *TokenStore) CleanupExpired() int {
	now := s.clock.Now()

	s.mu.Lock()
	removed := 0
	for key, token := range s.cache {
		if token.IsExpired(now, domain.DefaultExpiryBuffer) {
			delete(s.cache, key)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Infof("Removed %d expired tokens from cache", removed)
	}

	return removed
}

// Run периодически чистит кэш до отмены контекста.
func (s *TokenStore) Run(ctx context.Context) {
	if s.policy.JanitorInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.policy.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CleanupExpired()
		}
	}
}

func (s *TokenStore) refreshWithRetry(ctx context.Context, key string, refresher usecase.TokenRefresher) (*domain.TokenInfo, error) {
	var lastErr error

	for attempt := 0; attempt < s.policy.MaxAttempts; attempt++ {
		token, err := refresher(ctx)
		if err == nil && token != nil {
			return token, nil
		}
		if err == nil {
			err = e.ErrNoToken
		}
		lastErr = err

		if attempt == s.policy.MaxAttempts-1 || ctx.Err() != nil ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}

		delay := s.policy.Backoff.Delay(attempt)
		s.logger.Warnf("Token refresh attempt %d for %s failed, retry in %s: %v", attempt+1, key, delay, err)

		if err := s.clock.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (s *TokenStore) refreshContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if s.policy.Timeout <= 0 {
		return context.WithCancel(base)
	}

	return context.WithTimeout(base, s.policy.Timeout)
}

// save сохраняет токен в учётную запись и кэш. Ошибка записи в БД не отменяет кэширование.
func (s *TokenStore) save(ctx context.Context, account *domain.Account, token *domain.TokenInfo) {
	account.UpdateToken(token, s.clock.Now())

	if err := s.accounts.Save(ctx, account); err != nil {
		s.logger.Warnf("Failed to persist token for %s: %v", account.CacheKey(), err)
	}

	s.put(account.CacheKey(), token)
}

func (s *TokenStore) put(key string, token *domain.TokenInfo) {
	s.mu.Lock()
	s.cache[key] = token
	s.mu.Unlock()
}

func (s *TokenStore) cached(key string) *domain.TokenInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cache[key]
}

// fresh истинно, если токен есть и не требует обновления.
func (s *TokenStore) fresh(token *domain.TokenInfo) bool {
	return token != nil && !token.NeedsRefresh(s.clock.Now(), s.policy.Buffer)
}
