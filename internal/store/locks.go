package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yigit/collegeerp/internal/pkg/apperrors"
)

type keyLock struct {
	sem  *semaphore.Weighted
	refs int
}

// lockManager hands out one exclusive lock per entity key. Entries are
// dropped once no caller holds or waits on them.
type lockManager struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func newLockManager() *lockManager {
	return &lockManager{locks: make(map[string]*keyLock)}
}

func (m *lockManager) ref(key string) *keyLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{sem: semaphore.NewWeighted(1)}
		m.locks[key] = l
	}
	l.refs++
	return l
}

func (m *lockManager) unref(key string, l *keyLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}

// acquire takes every key in sorted order so overlapping callers cannot
// deadlock. Each key waits at most timeout.
func (m *lockManager) acquire(ctx context.Context, timeout time.Duration, keys []string) (func(), error) {
	keys = uniqueSorted(keys)

	type held struct {
		key  string
		lock *keyLock
	}
	acquired := make([]held, 0, len(keys))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].lock.sem.Release(1)
			m.unref(acquired[i].key, acquired[i].lock)
		}
	}

	for _, key := range keys {
		l := m.ref(key)
		lctx, cancel := context.WithTimeout(ctx, timeout)
		err := l.sem.Acquire(lctx, 1)
		cancel()
		if err != nil {
			m.unref(key, l)
			release()
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil, err
			}
			return nil, apperrors.NewBusyError(fmt.Sprintf("%s is busy, please retry", key))
		}
		acquired = append(acquired, held{key: key, lock: l})
	}

	return release, nil
}

func uniqueSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LockKey builds the lock name for an entity, e.g. LockKey("student", "STD-1").
func LockKey(kind, id string) string {
	if id == "" {
		return ""
	}
	return kind + ":" + id
}
