// Package lock serializes writers. All mutations of the task and order stores
// run under one key so that a single logical writer touches the store at a time.
package lock

import (
	"context"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
)

// StoreKey is the key every store mutation takes.
const StoreKey = "lock:fulfillment:store"

type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned func
	// releases it and is safe to call once.
	Lock(ctx context.Context, key string) (release func(), err error)
}

// LocalLocker is an in-process single-writer lock. Keys are ignored.
type LocalLocker struct {
	sem chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{sem: make(chan struct{}, 1)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, apperror.Busy(key)
	}
}

// WithLock runs fn while holding key.
func WithLock(ctx context.Context, l Locker, key string, fn func(ctx context.Context) error) error {
	release, err := l.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}
