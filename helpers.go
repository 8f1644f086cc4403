package kiln

import (
	"fmt"
	"reflect"

	logger "github.com/xraph/go-utils/log"
	"github.com/xraph/go-utils/metrics"
)

// TypeOf returns the reflect.Type for T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Resolve with type safety.
func Resolve[T any](c Container) (T, error) {
	var zero T

	instance, err := c.Resolve(TypeOf[T]())
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, ErrTypeMismatch(TypeOf[T](), instance)
	}

	return typed, nil
}

// Must resolves or panics - use only during startup.
func Must[T any](c Container) T {
	instance, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", TypeOf[T]().String(), err))
	}

	return instance
}

// RegisterInstance registers a pre-built instance as a singleton for T.
// The published singleton is the post-pipeline result: decoration hooks may
// replace the supplied object.
func RegisterInstance[T any](c Container, instance T) error {
	return c.Register(TypeOf[T](), InstanceRecipe(instance, reflect.TypeOf(instance)), Singleton)
}

// RegisterSingleton registers a factory whose result is constructed at most
// once and shared by every caller.
func RegisterSingleton[T any](c Container, factory func() (T, error)) error {
	if factory == nil {
		return ErrNilFactory
	}

	wrapped := func() (any, error) {
		return factory()
	}

	return c.Register(TypeOf[T](), FactoryRecipe(wrapped, TypeOf[T]()), Singleton)
}

// RegisterImplementation registers Impl as the singleton implementation of
// the Service contract. Impl's dependencies are resolved by the container's
// constructor resolver.
func RegisterImplementation[Service any, Impl any](c Container) error {
	return c.Register(TypeOf[Service](), ConstructorRecipe(TypeOf[Impl]()), Singleton)
}

// RegisterAlias exposes the registration for Target under the Alias service
// type as well. Both types share one cache cell.
func RegisterAlias[Alias any, Target any](c Container) error {
	return c.RegisterAlias(TypeOf[Alias](), TypeOf[Target]())
}

// RegisterCollection registers a fixed sequence of implementations for the
// element type T.
func RegisterCollection[T any](c Container, elements ...T) error {
	items := make([]any, len(elements))
	for i, e := range elements {
		items[i] = e
	}

	return c.RegisterCollection(TypeOf[T](), items)
}

// RegisterCollectionFunc registers a lazily computed sequence for the element
// type T.
func RegisterCollectionFunc[T any](c Container, enumerate func() ([]T, error)) error {
	if enumerate == nil {
		return ErrNilFactory
	}

	wrapped := func() ([]any, error) {
		elements, err := enumerate()
		if err != nil {
			return nil, err
		}

		items := make([]any, len(elements))
		for i, e := range elements {
			items[i] = e
		}

		return items, nil
	}

	return c.RegisterCollectionFunc(TypeOf[T](), wrapped)
}

// ResolveAll returns the validated sequence registered for element type T.
func ResolveAll[T any](c Container) ([]T, error) {
	items, err := c.ResolveAll(TypeOf[T]())
	if err != nil {
		return nil, err
	}

	typed := make([]T, len(items))

	for i, item := range items {
		t, ok := item.(T)
		if !ok {
			return nil, ErrTypeMismatch(TypeOf[T](), item)
		}

		typed[i] = t
	}

	return typed, nil
}

// GetLogger resolves the logger from the container.
func GetLogger(c Container) (logger.Logger, error) {
	l, err := c.Resolve(TypeOf[logger.Logger]())
	if err != nil {
		return nil, err
	}

	log, ok := l.(logger.Logger)
	if !ok {
		return nil, fmt.Errorf("resolved instance is not Logger, got %T", l)
	}

	return log, nil
}

// GetMetrics resolves the metrics from the container.
func GetMetrics(c Container) (metrics.Metrics, error) {
	m, err := c.Resolve(TypeOf[metrics.Metrics]())
	if err != nil {
		return nil, err
	}

	met, ok := m.(metrics.Metrics)
	if !ok {
		return nil, fmt.Errorf("resolved instance is not Metrics, got %T", m)
	}

	return met, nil
}
