// Package kiln is the object-construction core of a dependency injection
// container: it maps abstract service types to registrations, assembles each
// registration's recipe into a composable build plan, and guarantees that a
// singleton mapping is constructed at most once even under concurrent first
// use. Verify forces every mapping to build eagerly, surfacing configuration
// errors before first real use and permanently freezing the registration
// surface.
package kiln

import "reflect"

// Container owns the mapping from service types to registrations and drives
// the lock and Verify lifecycle. A container starts unlocked; the first call
// to Resolve, ResolveAll, or Verify locks it irreversibly, after which every
// registration entry point fails with a configuration error.
type Container interface {
	// Register maps a service type to a recipe under a lifestyle.
	Register(serviceType reflect.Type, recipe Recipe, lifestyle Lifestyle) error

	// RegisterAlias exposes an existing registration under a second service
	// type, sharing its cache cell.
	RegisterAlias(aliasType, targetType reflect.Type) error

	// RegisterCollection maps an element type to a fixed sequence of
	// implementations.
	RegisterCollection(elementType reflect.Type, elements []any) error

	// RegisterCollectionFunc maps an element type to a lazily computed
	// sequence.
	RegisterCollectionFunc(elementType reflect.Type, enumerate func() ([]any, error)) error

	// Use appends middleware around resolution.
	Use(mw Middleware) error

	// Resolve returns the instance for a service type.
	Resolve(serviceType reflect.Type) (any, error)

	// ResolveAll returns the validated sequence for an element type.
	ResolveAll(elementType reflect.Type) ([]any, error)

	// GetRegistration returns the registration for a service type.
	GetRegistration(serviceType reflect.Type) (Registration, bool)

	// Verify eagerly builds every mapping and reports invalid ones.
	Verify() error

	// IsLocked reports whether the registration phase has ended.
	IsLocked() bool

	// IsVerified reports whether Verify has completed successfully.
	IsVerified() bool

	// ServiceTypes lists registered service types in registration order.
	ServiceTypes() []reflect.Type

	// Inspect returns diagnostic information for a service type.
	Inspect(serviceType reflect.Type) (ServiceInfo, bool)
}

// New creates a new container.
func New(opts ...Option) Container {
	return newContainerImpl(opts...)
}
