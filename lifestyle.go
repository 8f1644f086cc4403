package kiln

import "reflect"

// Lifestyle is a reuse policy: it decides how many instances exist per
// declared mapping and what caching guarantee each registration provides.
type Lifestyle interface {
	// Name identifies the lifestyle in diagnostics.
	Name() string

	// CreateRegistration produces a registration for the given service type
	// and recipe, bound to the container that owns it.
	CreateRegistration(serviceType reflect.Type, recipe Recipe, host registrationHost) Registration
}

// Singleton is the lifestyle that constructs each mapping at most once and
// serves the same instance to every caller for the container's lifetime.
var Singleton Lifestyle = singletonLifestyle{}

type singletonLifestyle struct{}

func (singletonLifestyle) Name() string {
	return "singleton"
}

func (singletonLifestyle) CreateRegistration(serviceType reflect.Type, recipe Recipe, host registrationHost) Registration {
	return newSingletonRegistration(serviceType, recipe, host)
}
