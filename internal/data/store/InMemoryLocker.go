package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/akolanti/intelliagent/internal/domain/pipelineError"
)

// InMemoryLocker serializes holders within this process only.
type InMemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *InMemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *InMemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, pipelineError.New(pipelineError.KindBusy, "acquire lock",
			fmt.Errorf("%w: %s", pipelineError.ErrLockTimeout, key))
	}
}
