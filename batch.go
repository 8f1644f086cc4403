package kiln

import "reflect"

// ServiceRegistration holds configuration for a mapping to be registered.
type ServiceRegistration struct {
	ServiceType reflect.Type
	Recipe      Recipe
	Lifestyle   Lifestyle
}

// Service creates a ServiceRegistration for batch registration.
//
// Example:
//
//	kiln.RegisterServices(c,
//	    kiln.Service(kiln.TypeOf[Database](), kiln.ConstructorRecipe(kiln.TypeOf[*Postgres]()), kiln.Singleton),
//	    kiln.Service(kiln.TypeOf[Cache](), kiln.FactoryRecipe(newCache, kiln.TypeOf[Cache]()), kiln.Singleton),
//	)
func Service(serviceType reflect.Type, recipe Recipe, lifestyle Lifestyle) ServiceRegistration {
	return ServiceRegistration{
		ServiceType: serviceType,
		Recipe:      recipe,
		Lifestyle:   lifestyle,
	}
}

// RegisterServices registers multiple mappings in a single call.
// Returns error if any registration fails; earlier registrations stand.
func RegisterServices(c Container, services ...ServiceRegistration) error {
	for _, svc := range services {
		if err := c.Register(svc.ServiceType, svc.Recipe, svc.Lifestyle); err != nil {
			return err
		}
	}
	return nil
}
