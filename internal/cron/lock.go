package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/voltpath/labstock-backend/pkg/redis"
)

const defaultLockTTL = 30 * time.Minute

// Lock guards one job against concurrent runs across worker instances.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// JobLock implements Lock with Redis SETNX + TTL, keyed per job name so the
// four sweeps never block each other.
type JobLock struct {
	store redis.Locker
	key   string
	ttl   time.Duration
	owner string
}

func NewJobLock(store redis.Locker, job string, ttl time.Duration) (*JobLock, error) {
	if store == nil {
		return nil, errors.New("redis store required for job lock")
	}
	if job == "" {
		return nil, errors.New("job name is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &JobLock{store: store, key: store.LockKey(job), ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL.
func (l *JobLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lock only if the owner token still matches, so a run
// that outlived its TTL cannot clobber another instance's lock.
func (l *JobLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	value, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		return nil
	}
	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.owner = ""
	return nil
}
