package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ============================================================================
// Redis distributed lock
// ============================================================================
//
// Acquire: SET key token NX PX ttl
//   - NX makes the lock exclusive
//   - the TTL frees the lock if the holder dies
//   - token identifies the holder so only it can release
//
// Release: a Lua script deletes the key only while it still holds our token,
// otherwise an expired holder could remove a lock now owned by someone else.
//
// The lock narrows contention before the database transaction starts. Row
// locks inside the transaction remain the correctness guarantee.
// ============================================================================

var ErrLockFailed = errors.New("failed to acquire distributed lock")

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

func (l *DistributedLock) Key() string { return l.key }

// TryLock makes a single non-blocking attempt.
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
}

// Lock retries TryLock every retryInterval, at most maxRetries times.
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

func (l *DistributedLock) Unlock(ctx context.Context) error {
	return unlockScript.Run(ctx, l.client, []string{l.key}, l.value).Err()
}

// AccountLockKey is the lock key guarding postings on one account.
func AccountLockKey(accountNumber string) string {
	return fmt.Sprintf("bank-santri:lock:account:%s", accountNumber)
}

// AccountLocks holds the locks of every account touched by one posting.
type AccountLocks struct {
	locks []*DistributedLock
}

// LockAccounts acquires one lock per distinct account number in ascending
// order, so two transfers between the same pair of accounts cannot deadlock.
// On failure every lock already taken is released.
func LockAccounts(ctx context.Context, client *redis.Client, token string, ttl time.Duration, accountNumbers ...string) (*AccountLocks, error) {
	seen := make(map[string]struct{}, len(accountNumbers))
	keys := make([]string, 0, len(accountNumbers))
	for _, n := range accountNumbers {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		keys = append(keys, n)
	}
	sort.Strings(keys)

	held := &AccountLocks{}
	for _, n := range keys {
		l := NewDistributedLock(client, AccountLockKey(n), token, ttl)
		if err := l.Lock(ctx, 50*time.Millisecond, 60); err != nil {
			if uerr := held.Unlock(context.Background()); uerr != nil {
				zap.L().Warn("release partial account locks", zap.String("component", "lock"), zap.Error(uerr))
			}
			return nil, fmt.Errorf("lock account %s: %w", n, err)
		}
		held.locks = append(held.locks, l)
	}
	return held, nil
}

// Unlock releases in reverse acquisition order and returns the first error.
func (a *AccountLocks) Unlock(ctx context.Context) error {
	var first error
	for i := len(a.locks) - 1; i >= 0; i-- {
		if err := a.locks[i].Unlock(ctx); err != nil && first == nil {
			first = err
		}
	}
	a.locks = nil
	return first
}
