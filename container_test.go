package kiln

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xraph/go-utils/errs"
)

// Test fixtures.
type Handler interface {
	Handle() string
}

type echoHandler struct {
	name string
}

func (h *echoHandler) Handle() string {
	return h.name
}

func TestRegisterAndResolve(t *testing.T) {
	c := New()

	require.NoError(t, RegisterSingleton[Handler](c, func() (Handler, error) {
		return &echoHandler{name: "echo"}, nil
	}))

	h, err := Resolve[Handler](c)
	require.NoError(t, err)
	assert.Equal(t, "echo", h.Handle())
}

func TestResolveUnregisteredFails(t *testing.T) {
	c := New()

	_, err := Resolve[Handler](c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no registration found")
	assert.Contains(t, err.Error(), "kiln.Handler")
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	c := New()

	factory := func() (Handler, error) {
		return &echoHandler{}, nil
	}

	require.NoError(t, RegisterSingleton[Handler](c, factory))

	err := RegisterSingleton[Handler](c, factory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestResolveLocksContainer(t *testing.T) {
	c := New()

	require.NoError(t, RegisterSingleton[Handler](c, func() (Handler, error) {
		return &echoHandler{}, nil
	}))

	assert.False(t, c.IsLocked())

	_, err := Resolve[Handler](c)
	require.NoError(t, err)
	assert.True(t, c.IsLocked())

	err = RegisterSingleton[Greeter](c, func() (Greeter, error) {
		return &greeter{}, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container is locked")
}

func TestFailedResolveStillLocks(t *testing.T) {
	c := New()

	// Resolving an unregistered type fails but the lock transition stands.
	_, err := Resolve[Handler](c)
	require.Error(t, err)
	assert.True(t, c.IsLocked())

	err = RegisterSingleton[Handler](c, func() (Handler, error) {
		return &echoHandler{}, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container is locked")
}

func TestVerifyLocksContainer(t *testing.T) {
	c := New()

	require.NoError(t, c.Verify())
	assert.True(t, c.IsLocked())
	assert.True(t, c.IsVerified())

	err := RegisterSingleton[Handler](c, func() (Handler, error) {
		return &echoHandler{}, nil
	})
	require.Error(t, err)

	var cfgErr *errs.Error
	require.ErrorAs(t, err, &cfgErr)
}

func TestVerifyForcesSingletonConstruction(t *testing.T) {
	c := New()

	var constructions int32

	require.NoError(t, RegisterSingleton[Handler](c, func() (Handler, error) {
		atomic.AddInt32(&constructions, 1)

		return &echoHandler{}, nil
	}))

	require.NoError(t, c.Verify())
	assert.Equal(t, int32(1), atomic.LoadInt32(&constructions))

	// Resolution after Verify serves the already constructed instance.
	_, err := Resolve[Handler](c)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&constructions))
}

func TestVerifyIsIdempotent(t *testing.T) {
	c := New()

	var constructions int32

	require.NoError(t, RegisterSingleton[Handler](c, func() (Handler, error) {
		atomic.AddInt32(&constructions, 1)

		return &echoHandler{}, nil
	}))

	require.NoError(t, c.Verify())
	require.NoError(t, c.Verify())

	assert.Equal(t, int32(1), atomic.LoadInt32(&constructions))
	assert.True(t, c.IsVerified())
}

func TestVerifyReportsFailingMapping(t *testing.T) {
	c := New()

	boom := errors.New("misconfigured")

	require.NoError(t, RegisterSingleton[Handler](c, func() (Handler, error) {
		return nil, boom
	}))

	err := c.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is invalid")
	assert.Contains(t, err.Error(), "kiln.Handler")
	assert.False(t, c.IsVerified())

	var cfgErr *errs.Error
	require.ErrorAs(t, err, &cfgErr)

	// One failing mapping: the cause chain leads back to the user error.
	var actErr *errs.Error
	require.ErrorAs(t, cfgErr.Cause(), &actErr)
	assert.ErrorIs(t, actErr.Cause(), boom)
}

func TestVerifyAggregatesMultipleFailures(t *testing.T) {
	c := New()

	require.NoError(t, RegisterSingleton[Handler](c, func() (Handler, error) {
		return nil, errors.New("first failure")
	}))
	require.NoError(t, RegisterSingleton[Greeter](c, func() (Greeter, error) {
		return nil, errors.New("second failure")
	}))
	require.NoError(t, RegisterSingleton[*echoHandler](c, func() (*echoHandler, error) {
		return &echoHandler{}, nil
	}))

	err := c.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 mapping(s)")
	assert.Contains(t, err.Error(), "kiln.Handler")
	assert.Contains(t, err.Error(), "kiln.Greeter")
}

func TestVerifyCollectionNilElement(t *testing.T) {
	c := New()

	require.NoError(t, c.RegisterCollection(TypeOf[Handler](), []any{
		&echoHandler{name: "a"},
		nil,
		&echoHandler{name: "c"},
	}))

	err := c.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kiln.Handler")
	assert.Contains(t, err.Error(), "nil element at index 1")
}

func TestVerifyCollectionEnumerationError(t *testing.T) {
	c := New()

	boom := errors.New("lazy sequence failed")

	require.NoError(t, RegisterCollectionFunc(c, func() ([]Handler, error) {
		return nil, boom
	}))

	err := c.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is invalid")

	var cfgErr *errs.Error
	require.ErrorAs(t, err, &cfgErr)

	var enumErr *errs.Error
	require.ErrorAs(t, cfgErr.Cause(), &enumErr)
	assert.ErrorIs(t, enumErr.Cause(), boom)
}

func TestResolveAllValidatesElements(t *testing.T) {
	c := New()

	require.NoError(t, RegisterCollection[Handler](c,
		&echoHandler{name: "a"},
		&echoHandler{name: "b"},
	))

	handlers, err := ResolveAll[Handler](c)
	require.NoError(t, err)
	require.Len(t, handlers, 2)
	assert.Equal(t, "a", handlers[0].Handle())
	assert.Equal(t, "b", handlers[1].Handle())
}

func TestResolveSliceServiceType(t *testing.T) {
	c := New()

	require.NoError(t, RegisterCollection[Handler](c, &echoHandler{name: "a"}))

	resolved, err := c.Resolve(TypeOf[[]Handler]())
	require.NoError(t, err)

	items, ok := resolved.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}

func TestCollectionRegistrationRejectedAfterLock(t *testing.T) {
	c := New()

	require.NoError(t, c.Verify())

	err := RegisterCollection[Handler](c, &echoHandler{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container is locked")
}

func TestMiddlewareRunsAroundResolve(t *testing.T) {
	c := New()

	var before, after int32

	err := c.Use(&FuncMiddleware{
		BeforeResolveFunc: func(ctx context.Context, serviceType reflect.Type) error {
			atomic.AddInt32(&before, 1)

			return nil
		},
		AfterResolveFunc: func(ctx context.Context, serviceType reflect.Type, instance any, err error) error {
			atomic.AddInt32(&after, 1)

			return nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, RegisterSingleton[Handler](c, func() (Handler, error) {
		return &echoHandler{}, nil
	}))

	_, err = Resolve[Handler](c)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&before))
	assert.Equal(t, int32(1), atomic.LoadInt32(&after))
}

func TestMiddlewareCanAbortResolve(t *testing.T) {
	c := New()

	denied := errors.New("access denied")

	require.NoError(t, c.Use(&FuncMiddleware{
		BeforeResolveFunc: func(ctx context.Context, serviceType reflect.Type) error {
			return denied
		},
	}))

	require.NoError(t, RegisterSingleton[Handler](c, func() (Handler, error) {
		return &echoHandler{}, nil
	}))

	_, err := Resolve[Handler](c)
	assert.ErrorIs(t, err, denied)
}

func TestUseRejectedAfterLock(t *testing.T) {
	c := New()

	require.NoError(t, c.Verify())

	err := c.Use(&FuncMiddleware{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container is locked")
}

func TestServiceTypesPreserveRegistrationOrder(t *testing.T) {
	c := New()

	require.NoError(t, RegisterSingleton[Handler](c, func() (Handler, error) {
		return &echoHandler{}, nil
	}))
	require.NoError(t, RegisterSingleton[Greeter](c, func() (Greeter, error) {
		return &greeter{}, nil
	}))

	types := c.ServiceTypes()
	require.Len(t, types, 2)
	assert.Equal(t, TypeOf[Handler](), types[0])
	assert.Equal(t, TypeOf[Greeter](), types[1])
}

func TestInspectReportsLifestyleAndImplementation(t *testing.T) {
	c := New()

	require.NoError(t, RegisterImplementation[Handler, *echoHandler](c))

	info, ok := c.Inspect(TypeOf[Handler]())
	require.True(t, ok)
	assert.Equal(t, TypeOf[Handler](), info.ServiceType)
	assert.Equal(t, TypeOf[*echoHandler](), info.ImplementationType)
	assert.Equal(t, "singleton", info.Lifestyle)
	assert.False(t, info.Created)
	assert.False(t, info.Alias)
}

func TestQueryFiltersByCreated(t *testing.T) {
	c := New()

	require.NoError(t, RegisterSingleton[Handler](c, func() (Handler, error) {
		return &echoHandler{}, nil
	}))
	require.NoError(t, RegisterSingleton[Greeter](c, func() (Greeter, error) {
		return &greeter{}, nil
	}))

	_, err := Resolve[Handler](c)
	require.NoError(t, err)

	created := true
	results := Query(c, ServiceQuery{Created: &created})
	require.Len(t, results, 1)
	assert.Equal(t, TypeOf[Handler](), results[0].ServiceType)
}

func TestGetRegistration(t *testing.T) {
	c := New()

	require.NoError(t, RegisterImplementation[Handler, *echoHandler](c))

	reg, ok := c.GetRegistration(TypeOf[Handler]())
	require.True(t, ok)
	assert.Equal(t, TypeOf[Handler](), reg.ServiceType())
	assert.Equal(t, TypeOf[*echoHandler](), reg.ImplementationType())
	assert.Equal(t, "singleton", reg.Lifestyle().Name())

	_, ok = c.GetRegistration(TypeOf[Greeter]())
	assert.False(t, ok)
}
