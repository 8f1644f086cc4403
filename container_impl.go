package kiln

import (
	"context"
	"reflect"
	"sync"

	logger "github.com/xraph/go-utils/log"
	"go.uber.org/multierr"
)

// containerImpl implements Container.
type containerImpl struct {
	registrations   map[reflect.Type]Registration
	order           []reflect.Type
	aliases         map[reflect.Type]bool
	collections     map[reflect.Type]*collectionRegistration
	collectionOrder []reflect.Type
	middleware      *middlewareChain
	hooks           pipelineHooks
	resolver        ConstructorResolver
	log             logger.Logger
	locked          bool
	verified        bool
	mu              sync.RWMutex
}

// collectionRegistration holds a collection-style mapping: one element type
// producing a sequence of implementations. The sequence may be fixed or
// computed lazily by an enumerate function.
type collectionRegistration struct {
	elementType reflect.Type
	elements    []any
	enumerate   func() ([]any, error)
}

// newContainerImpl creates a new container implementation.
func newContainerImpl(opts ...Option) *containerImpl {
	c := &containerImpl{
		registrations: make(map[reflect.Type]Registration),
		aliases:       make(map[reflect.Type]bool),
		collections:   make(map[reflect.Type]*collectionRegistration),
		middleware:    newMiddlewareChain(),
		resolver:      &reflectResolver{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// planWrappers implements registrationHost.
func (c *containerImpl) planWrappers() pipelineHooks {
	return c.hooks
}

// constructorFactory implements registrationHost by delegating to the
// configured constructor resolver.
func (c *containerImpl) constructorFactory(implementationType reflect.Type) (Factory, error) {
	return c.resolver.Resolve(c, implementationType)
}

// Register adds a mapping from a service type to a recipe under the given
// lifestyle. Registration is rejected once the container is locked.
func (c *containerImpl) Register(serviceType reflect.Type, recipe Recipe, lifestyle Lifestyle) error {
	if serviceType == nil {
		return ErrNilServiceType
	}

	if lifestyle == nil {
		lifestyle = Singleton
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		return ErrContainerLocked()
	}

	if _, exists := c.registrations[serviceType]; exists {
		return ErrServiceAlreadyExists(serviceType)
	}

	reg := lifestyle.CreateRegistration(serviceType, recipe, c)
	c.registrations[serviceType] = reg
	c.order = append(c.order, serviceType)

	if c.log != nil {
		c.log.Debug("service registered",
			logger.String("service", typeName(serviceType)),
			logger.String("implementation", typeName(recipe.ImplementationType())),
			logger.String("lifestyle", lifestyle.Name()))
	}

	return nil
}

// RegisterAlias exposes an existing registration under a second service type.
// Both types share the same registration and therefore the same cache cell:
// the exactly-once guarantee holds across every front-end of the mapping.
func (c *containerImpl) RegisterAlias(aliasType, targetType reflect.Type) error {
	if aliasType == nil || targetType == nil {
		return ErrNilServiceType
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		return ErrContainerLocked()
	}

	target, exists := c.registrations[targetType]
	if !exists {
		return ErrServiceNotFound(targetType)
	}

	if _, exists := c.registrations[aliasType]; exists {
		return ErrServiceAlreadyExists(aliasType)
	}

	c.registrations[aliasType] = target
	c.order = append(c.order, aliasType)
	c.aliases[aliasType] = true

	return nil
}

// RegisterCollection registers a fixed sequence of implementations for an
// element type. The sequence is validated eagerly during Verify and on every
// enumeration: a nil element is a configuration error.
func (c *containerImpl) RegisterCollection(elementType reflect.Type, elements []any) error {
	return c.registerCollection(elementType, elements, nil)
}

// RegisterCollectionFunc registers a lazily computed sequence for an element
// type. Errors raised by enumerate surface as configuration errors during
// Verify and resolution.
func (c *containerImpl) RegisterCollectionFunc(elementType reflect.Type, enumerate func() ([]any, error)) error {
	if enumerate == nil {
		return ErrNilFactory
	}

	return c.registerCollection(elementType, nil, enumerate)
}

func (c *containerImpl) registerCollection(elementType reflect.Type, elements []any, enumerate func() ([]any, error)) error {
	if elementType == nil {
		return ErrNilServiceType
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		return ErrContainerLocked()
	}

	if _, exists := c.collections[elementType]; exists {
		return ErrServiceAlreadyExists(elementType)
	}

	c.collections[elementType] = &collectionRegistration{
		elementType: elementType,
		elements:    elements,
		enumerate:   enumerate,
	}
	c.collectionOrder = append(c.collectionOrder, elementType)

	return nil
}

// Use appends middleware intercepting resolution. Middleware is part of the
// registration surface and is rejected once the container is locked.
func (c *containerImpl) Use(mw Middleware) error {
	if mw == nil {
		return ErrNilFactory
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		return ErrContainerLocked()
	}

	c.middleware.add(mw)

	return nil
}

// Resolve returns the instance registered for the service type, locking the
// container on first use. Singleton mappings are constructed at most once.
func (c *containerImpl) Resolve(serviceType reflect.Type) (any, error) {
	ctx := context.Background()

	if err := c.middleware.beforeResolve(ctx, serviceType); err != nil {
		return nil, err
	}

	instance, err := c.resolveInternal(serviceType)

	if mwErr := c.middleware.afterResolve(ctx, serviceType, instance, err); mwErr != nil {
		return nil, mwErr
	}

	return instance, err
}

// resolveInternal performs the actual resolution without middleware.
func (c *containerImpl) resolveInternal(serviceType reflect.Type) (any, error) {
	if serviceType == nil {
		return nil, ErrNilServiceType
	}

	c.lock()

	c.mu.RLock()
	reg, exists := c.registrations[serviceType]
	c.mu.RUnlock()

	if !exists {
		// A slice service type may name a registered collection.
		if serviceType.Kind() == reflect.Slice {
			if items, ok, err := c.resolveCollection(serviceType.Elem()); ok {
				return items, err
			}
		}

		return nil, ErrServiceNotFound(serviceType)
	}

	instance, err := c.build(reg)
	if err != nil {
		return nil, err
	}

	if c.log != nil {
		c.log.Debug("service resolved", logger.String("service", typeName(serviceType)))
	}

	return instance, nil
}

// build runs a registration through the construction data flow: assemble the
// build expression, compile it, invoke the compiled factory.
func (c *containerImpl) build(reg Registration) (any, error) {
	plan, err := reg.BuildExpression()
	if err != nil {
		return nil, err
	}

	factory, err := Compile(plan)
	if err != nil {
		return nil, ErrActivationFailure(reg.ServiceType(), err)
	}

	return factory()
}

// ResolveAll returns the validated sequence registered for an element type.
func (c *containerImpl) ResolveAll(elementType reflect.Type) ([]any, error) {
	if elementType == nil {
		return nil, ErrNilServiceType
	}

	c.lock()

	items, ok, err := c.resolveCollection(elementType)
	if !ok {
		return nil, ErrServiceNotFound(elementType)
	}

	return items, err
}

func (c *containerImpl) resolveCollection(elementType reflect.Type) ([]any, bool, error) {
	c.mu.RLock()
	col, exists := c.collections[elementType]
	c.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	items, err := enumerateCollection(col)

	return items, true, err
}

// enumerateCollection materializes and validates a collection: the whole
// sequence is walked once and every element checked for nil.
func enumerateCollection(col *collectionRegistration) ([]any, error) {
	items := col.elements

	if col.enumerate != nil {
		var err error

		items, err = col.enumerate()
		if err != nil {
			return nil, ErrCollectionEnumeration(col.elementType, err)
		}
	}

	for i, item := range items {
		if isNil(item) {
			return nil, ErrCollectionElementNil(col.elementType, i)
		}
	}

	return items, nil
}

// GetRegistration returns the registration for a service type, if any.
func (c *containerImpl) GetRegistration(serviceType reflect.Type) (Registration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	reg, ok := c.registrations[serviceType]

	return reg, ok
}

// Verify forces every registered mapping to build, locking the container
// first. All failing mappings are collected and reported in one aggregate
// configuration error that preserves each underlying cause. Verify is
// idempotent: singleton cells are terminal, so a second call re-walks the
// table without re-running construction.
func (c *containerImpl) Verify() error {
	c.lock()

	c.mu.RLock()
	order := make([]reflect.Type, len(c.order))
	copy(order, c.order)
	collectionOrder := make([]reflect.Type, len(c.collectionOrder))
	copy(collectionOrder, c.collectionOrder)
	c.mu.RUnlock()

	var (
		failed   []reflect.Type
		combined error
	)

	for _, serviceType := range order {
		c.mu.RLock()
		reg := c.registrations[serviceType]
		c.mu.RUnlock()

		if _, err := c.build(reg); err != nil {
			failed = append(failed, serviceType)
			combined = multierr.Append(combined, err)
		}
	}

	for _, elementType := range collectionOrder {
		c.mu.RLock()
		col := c.collections[elementType]
		c.mu.RUnlock()

		if _, err := enumerateCollection(col); err != nil {
			failed = append(failed, elementType)
			combined = multierr.Append(combined, err)
		}
	}

	if combined != nil {
		err := ErrVerificationFailed(failed, combined)

		if c.log != nil {
			c.log.Error("container verification failed", logger.Any("error", err))
		}

		return err
	}

	c.mu.Lock()
	c.verified = true
	c.mu.Unlock()

	if c.log != nil {
		c.log.Info("container verified",
			logger.Any("services", len(order)),
			logger.Any("collections", len(collectionOrder)))
	}

	return nil
}

// lock performs the one-way Unlocked to Locked transition.
func (c *containerImpl) lock() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		return
	}

	c.locked = true

	if c.log != nil {
		c.log.Debug("container locked")
	}
}

// IsLocked reports whether the registration phase has ended.
func (c *containerImpl) IsLocked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.locked
}

// IsVerified reports whether a Verify call has completed successfully.
func (c *containerImpl) IsVerified() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.verified
}

// ServiceTypes returns the registered service types in registration order.
func (c *containerImpl) ServiceTypes() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()

	types := make([]reflect.Type, len(c.order))
	copy(types, c.order)

	return types
}

// Inspect returns diagnostic information about a registered service type.
func (c *containerImpl) Inspect(serviceType reflect.Type) (ServiceInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	reg, exists := c.registrations[serviceType]
	if !exists {
		return ServiceInfo{}, false
	}

	info := ServiceInfo{
		ServiceType:        serviceType,
		ImplementationType: reg.ImplementationType(),
		Lifestyle:          reg.Lifestyle().Name(),
		Alias:              c.aliases[serviceType],
	}

	if s, ok := reg.(*singletonRegistration); ok {
		info.Created = s.created()
	}

	return info, true
}
