package kiln

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// instanceCell enforces the exactly-once guarantee for a singleton mapping.
// The first caller runs the create function; racing callers block inside
// sync.Once until it finishes and then observe the identical outcome. Both
// outcomes are terminal: a completed instance is served forever, and a
// failure is replayed forever without re-attempting construction.
type instanceCell struct {
	once  sync.Once
	done  atomic.Bool
	value any
	err   error
}

// get evaluates create at most once and returns the cached outcome.
func (c *instanceCell) get(create func() (any, error)) (any, error) {
	c.once.Do(func() {
		c.value, c.err = create()
		c.done.Store(true)
	})

	return c.value, c.err
}

// created reports whether the cell has reached a terminal state.
func (c *instanceCell) created() bool {
	return c.done.Load()
}

// singletonRegistration is the caching specialization shared by all three
// singleton recipe variants (pre-built instance, factory, implementation
// type). The variants differ only in the recipe; the exactly-once cell and
// the decoration pipeline are common.
//
// The cell lives on the registration itself, not on any resolving front-end,
// so a registration exposed under several service types (see RegisterAlias)
// still constructs exactly once.
type singletonRegistration struct {
	baseRegistration
	cell instanceCell
}

func newSingletonRegistration(serviceType reflect.Type, recipe Recipe, host registrationHost) *singletonRegistration {
	return &singletonRegistration{
		baseRegistration: baseRegistration{
			serviceType: serviceType,
			recipe:      recipe,
			lifestyle:   Singleton,
			host:        host,
		},
	}
}

// BuildExpression forces the cached value and wraps it in a constant node.
// The published singleton is the post-pipeline result: an interceptor or
// initializer may have replaced the object the recipe originally produced.
func (r *singletonRegistration) BuildExpression() (*BuildPlan, error) {
	instance, err := r.instance()
	if err != nil {
		return nil, err
	}

	return Constant(instance, r.serviceType), nil
}

// instance returns the memoized singleton, constructing it on first access.
func (r *singletonRegistration) instance() (any, error) {
	return r.cell.get(r.createInstance)
}

// createInstance runs the full construction pipeline once: assemble the
// decorated plan, compile it, invoke it, and reject a nil result. Every
// failure is wrapped with the service type for context before it becomes
// the cell's terminal state.
func (r *singletonRegistration) createInstance() (any, error) {
	plan, err := r.assemblePlan()
	if err != nil {
		return nil, err
	}

	factory, err := Compile(plan)
	if err != nil {
		return nil, ErrActivationFailure(r.serviceType, err)
	}

	instance, err := factory()
	if err != nil {
		return nil, ErrActivationFailure(r.serviceType, err)
	}

	if isNil(instance) {
		return nil, ErrNilInstance(r.serviceType)
	}

	return instance, nil
}

// created reports whether the singleton has been constructed (or has failed).
func (r *singletonRegistration) created() bool {
	return r.cell.created()
}

// isNil reports whether an instance is nil, including typed nil pointers,
// maps, slices, funcs, channels, and interfaces.
func isNil(instance any) bool {
	if instance == nil {
		return true
	}

	v := reflect.ValueOf(instance)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
