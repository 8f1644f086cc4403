package kiln

import (
	"fmt"
	"reflect"
)

// Factory creates a service instance.
type Factory func() (any, error)

// Transform rewrites an instance mid-pipeline. Property injectors,
// interceptors, and initializers are all transforms: each receives the
// instance produced so far and may mutate it or return a replacement.
type Transform func(instance any) (any, error)

// PlanWrapper decorates a build plan for a service. The container calls the
// configured wrappers for every registration; returning the inner plan
// unchanged is a valid no-op.
type PlanWrapper func(serviceType, implementationType reflect.Type, inner *BuildPlan) *BuildPlan

// PlanKind discriminates the closed set of build plan nodes.
type PlanKind uint8

const (
	// PlanConstant produces a fixed value.
	PlanConstant PlanKind = iota

	// PlanInvoke calls a zero-argument factory.
	PlanInvoke

	// PlanPropertyInject applies property injection to the inner plan's result.
	PlanPropertyInject

	// PlanIntercept wraps the inner plan's result with an interceptor.
	PlanIntercept

	// PlanInitialize runs an initializer on the inner plan's result.
	PlanInitialize
)

// String returns the node kind name for diagnostics.
func (k PlanKind) String() string {
	switch k {
	case PlanConstant:
		return "constant"
	case PlanInvoke:
		return "invoke"
	case PlanPropertyInject:
		return "property-inject"
	case PlanIntercept:
		return "intercept"
	case PlanInitialize:
		return "initialize"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// BuildPlan is an immutable description of how to produce an instance:
// a base node (constant or factory invocation) wrapped by zero or more
// decoration nodes. Plans are cheap to assemble; the work happens when a
// compiled plan is invoked.
type BuildPlan struct {
	kind    PlanKind
	typ     reflect.Type
	value   any
	factory Factory
	inner   *BuildPlan
	apply   Transform
}

// Constant returns a plan producing a fixed value of the given type.
func Constant(value any, typ reflect.Type) *BuildPlan {
	return &BuildPlan{kind: PlanConstant, typ: typ, value: value}
}

// Invoke returns a plan that calls factory to produce a value of the given type.
func Invoke(factory Factory, typ reflect.Type) *BuildPlan {
	return &BuildPlan{kind: PlanInvoke, typ: typ, factory: factory}
}

// PropertyInject wraps inner with a property injection step.
func PropertyInject(inner *BuildPlan, apply Transform) *BuildPlan {
	return &BuildPlan{kind: PlanPropertyInject, typ: inner.typ, inner: inner, apply: apply}
}

// Intercept wraps inner with an interception step. The interceptor sees the
// already property-injected instance and may return a replacement.
func Intercept(inner *BuildPlan, apply Transform) *BuildPlan {
	return &BuildPlan{kind: PlanIntercept, typ: inner.typ, inner: inner, apply: apply}
}

// Initialize wraps inner with an initialization step. Initializers run last
// in the pipeline and may further mutate or replace the instance.
func Initialize(inner *BuildPlan, apply Transform) *BuildPlan {
	return &BuildPlan{kind: PlanInitialize, typ: inner.typ, inner: inner, apply: apply}
}

// Kind returns the node kind of the plan's outermost step.
func (p *BuildPlan) Kind() PlanKind {
	return p.kind
}

// ResultType returns the type the plan produces.
func (p *BuildPlan) ResultType() reflect.Type {
	return p.typ
}

// Inner returns the wrapped plan for decoration nodes, or nil for base nodes.
func (p *BuildPlan) Inner() *BuildPlan {
	return p.inner
}

// Compile turns a build plan into a callable factory. Compilation validates
// the plan tree; invalid plans (nil factories, nil transforms, nil inner
// plans) fail here rather than at invocation time.
func Compile(plan *BuildPlan) (Factory, error) {
	if plan == nil {
		return nil, fmt.Errorf("cannot compile a nil build plan")
	}

	switch plan.kind {
	case PlanConstant:
		value := plan.value

		return func() (any, error) {
			return value, nil
		}, nil

	case PlanInvoke:
		if plan.factory == nil {
			return nil, fmt.Errorf("invoke node for type '%s' has a nil factory", typeName(plan.typ))
		}

		return plan.factory, nil

	case PlanPropertyInject, PlanIntercept, PlanInitialize:
		if plan.inner == nil {
			return nil, fmt.Errorf("%s node for type '%s' has no inner plan", plan.kind, typeName(plan.typ))
		}

		if plan.apply == nil {
			return nil, fmt.Errorf("%s node for type '%s' has a nil transform", plan.kind, typeName(plan.typ))
		}

		inner, err := Compile(plan.inner)
		if err != nil {
			return nil, err
		}

		apply := plan.apply

		return func() (any, error) {
			instance, err := inner()
			if err != nil {
				return nil, err
			}

			return apply(instance)
		}, nil

	default:
		return nil, fmt.Errorf("unknown build plan node kind %d", plan.kind)
	}
}
