package registry

import "sync"

// lazy holds a value built on first use. A failed build leaves the holder
// empty so the next call retries.
type lazy[T any] struct {
	mu    sync.RWMutex
	value T
	built bool
}

func (l *lazy[T]) get(build func() (T, error)) (T, error) {
	l.mu.RLock()
	if l.built {
		v := l.value
		l.mu.RUnlock()
		return v, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if l.built {
		return l.value, nil
	}

	v, err := build()
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = v
	l.built = true
	return v, nil
}

// peek returns the value without building it.
func (l *lazy[T]) peek() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.built
}
