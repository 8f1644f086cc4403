package kiln

import (
	"reflect"
)

// recipeKind discriminates the three ways an instance can be produced.
type recipeKind uint8

const (
	recipeInstance recipeKind = iota
	recipeFactory
	recipeConstructor
)

// Recipe is the declared means of producing an instance: a pre-built value,
// a zero-argument factory, or an implementation type to construct. Exactly
// one variant is active per recipe.
type Recipe struct {
	kind           recipeKind
	instance       any
	factory        Factory
	implementation reflect.Type
}

// InstanceRecipe declares a pre-built instance of the given implementation type.
func InstanceRecipe(instance any, implementationType reflect.Type) Recipe {
	return Recipe{kind: recipeInstance, instance: instance, implementation: implementationType}
}

// FactoryRecipe declares a zero-argument factory producing the implementation type.
func FactoryRecipe(factory Factory, implementationType reflect.Type) Recipe {
	return Recipe{kind: recipeFactory, factory: factory, implementation: implementationType}
}

// ConstructorRecipe declares an implementation type to be constructed with its
// dependencies resolved by the container's constructor resolver.
func ConstructorRecipe(implementationType reflect.Type) Recipe {
	return Recipe{kind: recipeConstructor, implementation: implementationType}
}

// ImplementationType returns the concrete type the recipe produces.
func (r Recipe) ImplementationType() reflect.Type {
	return r.implementation
}

// Registration associates a service type with a recipe and a lifestyle, and
// assembles the recipe into a build plan on demand.
type Registration interface {
	// ServiceType is the abstract contract this registration satisfies.
	ServiceType() reflect.Type

	// ImplementationType is the concrete type the recipe ultimately
	// constructs, used for diagnostics and nil-result error messages.
	ImplementationType() reflect.Type

	// Lifestyle is the reuse policy governing this registration.
	Lifestyle() Lifestyle

	// BuildExpression assembles the recipe into a build plan, layering
	// property injection, interception, and initialization (in that fixed
	// order) around the base recipe node. A fresh plan object may be
	// produced on every call; its meaning never varies.
	BuildExpression() (*BuildPlan, error)
}

// registrationHost is the container surface a registration needs: the
// configured plan wrappers and the constructor-resolution collaborator.
type registrationHost interface {
	planWrappers() pipelineHooks
	constructorFactory(implementationType reflect.Type) (Factory, error)
}

// pipelineHooks holds the container-level decoration hooks. Nil hooks are
// skipped; a container with no hooks configured builds undecorated plans.
type pipelineHooks struct {
	propertyInjection PlanWrapper
	interception      PlanWrapper
	initialization    PlanWrapper
}

// baseRegistration carries the recipe and assembles the decorated plan.
// Lifestyle specializations embed it and layer their own caching on top.
type baseRegistration struct {
	serviceType reflect.Type
	recipe      Recipe
	lifestyle   Lifestyle
	host        registrationHost
}

func (r *baseRegistration) ServiceType() reflect.Type {
	return r.serviceType
}

func (r *baseRegistration) ImplementationType() reflect.Type {
	return r.recipe.implementation
}

func (r *baseRegistration) Lifestyle() Lifestyle {
	return r.lifestyle
}

// recipePlan builds the undecorated base node for the recipe.
func (r *baseRegistration) recipePlan() (*BuildPlan, error) {
	switch r.recipe.kind {
	case recipeInstance:
		return Constant(r.recipe.instance, r.recipe.implementation), nil

	case recipeFactory:
		if r.recipe.factory == nil {
			return nil, ErrNilFactory
		}

		return Invoke(r.recipe.factory, r.recipe.implementation), nil

	case recipeConstructor:
		factory, err := r.host.constructorFactory(r.recipe.implementation)
		if err != nil {
			return nil, ErrActivationFailure(r.serviceType, err)
		}

		return Invoke(factory, r.recipe.implementation), nil

	default:
		return nil, ErrActivationFailure(r.serviceType, nil)
	}
}

// assemblePlan decorates the recipe node. Order is significant: interceptors
// see the already property-injected instance, initializers run last.
func (r *baseRegistration) assemblePlan() (*BuildPlan, error) {
	plan, err := r.recipePlan()
	if err != nil {
		return nil, err
	}

	hooks := r.host.planWrappers()
	for _, wrap := range []PlanWrapper{hooks.propertyInjection, hooks.interception, hooks.initialization} {
		if wrap == nil {
			continue
		}

		if wrapped := wrap(r.serviceType, r.recipe.implementation, plan); wrapped != nil {
			plan = wrapped
		}
	}

	return plan, nil
}
