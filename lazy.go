package kiln

import (
	"fmt"
	"sync"
)

// Lazy wraps a dependency that is resolved on first access.
// This is useful for deferring resolution of expensive services until
// they're actually needed, without locking the container early.
type Lazy[T any] struct {
	container Container
	mu        sync.Once
	value     T
	err       error
	resolved  bool
}

// NewLazy creates a new lazy dependency wrapper.
func NewLazy[T any](container Container) *Lazy[T] {
	return &Lazy[T]{
		container: container,
	}
}

// Get resolves the dependency and returns it.
// The resolution happens only once; subsequent calls return the cached value.
func (l *Lazy[T]) Get() (T, error) {
	l.mu.Do(func() {
		value, err := Resolve[T](l.container)
		if err != nil {
			l.err = err

			return
		}

		l.value = value
		l.resolved = true
	})

	return l.value, l.err
}

// MustGet resolves the dependency and returns it, panicking on error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy dependency %s failed: %v", TypeOf[T]().String(), err))
	}

	return value
}

// IsResolved returns true if the dependency has been resolved.
func (l *Lazy[T]) IsResolved() bool {
	return l.resolved
}
