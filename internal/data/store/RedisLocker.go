package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/data/redisStore"
	"github.com/akolanti/intelliagent/internal/domain/pipelineError"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"github.com/google/uuid"
)

// RedisLocker is a single instance redis lock: SET NX with a random token and a TTL so
// a crashed holder cannot block forever, released only by the token owner.
type RedisLocker struct {
	store      *redisStore.Store
	ttl        time.Duration
	retryEvery time.Duration
	logger     *logger_i.Logger
}

func NewRedisLocker(store *redisStore.Store, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		store:      store,
		ttl:        ttl,
		retryEvery: config.LockRetryEvery,
		logger:     logger_i.NewLogger("Locker"),
	}
}

// Acquire polls until the lock is free or ctx is done.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	log := l.logger.WithContext(ctx).With("key", key)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryEvery)
	defer ticker.Stop()
	for {
		ok, err := l.store.SetNX(ctx, key, token, l.ttl)
		if err != nil && ctx.Err() == nil {
			return nil, pipelineError.New(pipelineError.KindBusy, "acquire lock", err)
		}
		if ok {
			log.Debug("lock acquired")
			return l.releaser(ctx, key, token), nil
		}

		select {
		case <-ctx.Done():
			log.Warn("gave up waiting for lock")
			return nil, pipelineError.New(pipelineError.KindBusy, "acquire lock",
				fmt.Errorf("%w: %s", pipelineError.ErrLockTimeout, key))
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(ctx context.Context, key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.RedisDialTimeout)
			defer cancel()
			released, err := l.store.CompareAndDelete(releaseCtx, key, token)
			if err != nil {
				l.logger.WithContext(ctx).Error("could not release lock", "key", key, "error", err)
				return
			}
			if !released {
				l.logger.WithContext(ctx).Warn("lock expired before release", "key", key)
			}
		})
	}
}
