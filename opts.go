package kiln

import (
	logger "github.com/xraph/go-utils/log"
)

// Option configures a container at construction time.
type Option func(*containerImpl)

// WithPropertyInjection sets the hook wrapping every build plan with a
// property injection step. The hook runs first in the decoration pipeline.
func WithPropertyInjection(wrap PlanWrapper) Option {
	return func(c *containerImpl) {
		c.hooks.propertyInjection = wrap
	}
}

// WithInterception sets the hook wrapping every build plan with an
// interception step. Interceptors see the already property-injected instance.
func WithInterception(wrap PlanWrapper) Option {
	return func(c *containerImpl) {
		c.hooks.interception = wrap
	}
}

// WithInitializer sets the hook wrapping every build plan with an
// initialization step. Initializers run last and may replace the instance.
func WithInitializer(wrap PlanWrapper) Option {
	return func(c *containerImpl) {
		c.hooks.initialization = wrap
	}
}

// WithConstructorResolver replaces the resolver used for implementation-type
// recipes. The default uses reflection over exported struct fields.
func WithConstructorResolver(resolver ConstructorResolver) Option {
	return func(c *containerImpl) {
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// WithLogger attaches a logger for registration, resolution, and
// verification events.
func WithLogger(log logger.Logger) Option {
	return func(c *containerImpl) {
		c.log = log
	}
}
