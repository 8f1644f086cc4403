package kiln

import (
	"context"
	"reflect"
)

// Middleware provides hooks for intercepting container resolution.
// Middleware can be used for logging, metrics, security, testing, etc.
type Middleware interface {
	// BeforeResolve is called before resolving a service.
	// Return error to abort resolution.
	BeforeResolve(ctx context.Context, serviceType reflect.Type) error

	// AfterResolve is called after resolving a service.
	// Called even if resolution failed (instance and err may both be set).
	AfterResolve(ctx context.Context, serviceType reflect.Type, instance any, err error) error
}

// middlewareChain manages multiple middleware.
type middlewareChain struct {
	middleware []Middleware
}

// newMiddlewareChain creates a new middleware chain.
func newMiddlewareChain() *middlewareChain {
	return &middlewareChain{
		middleware: make([]Middleware, 0),
	}
}

// add appends middleware to the chain.
func (m *middlewareChain) add(middleware Middleware) {
	m.middleware = append(m.middleware, middleware)
}

// beforeResolve calls BeforeResolve on all middleware.
func (m *middlewareChain) beforeResolve(ctx context.Context, serviceType reflect.Type) error {
	for _, mw := range m.middleware {
		if err := mw.BeforeResolve(ctx, serviceType); err != nil {
			return err
		}
	}
	return nil
}

// afterResolve calls AfterResolve on all middleware.
func (m *middlewareChain) afterResolve(ctx context.Context, serviceType reflect.Type, instance any, err error) error {
	for _, mw := range m.middleware {
		if mwErr := mw.AfterResolve(ctx, serviceType, instance, err); mwErr != nil {
			return mwErr
		}
	}
	return nil
}

// FuncMiddleware wraps functions as Middleware.
type FuncMiddleware struct {
	BeforeResolveFunc func(ctx context.Context, serviceType reflect.Type) error
	AfterResolveFunc  func(ctx context.Context, serviceType reflect.Type, instance any, err error) error
}

// BeforeResolve implements Middleware.
func (f *FuncMiddleware) BeforeResolve(ctx context.Context, serviceType reflect.Type) error {
	if f.BeforeResolveFunc != nil {
		return f.BeforeResolveFunc(ctx, serviceType)
	}
	return nil
}

// AfterResolve implements Middleware.
func (f *FuncMiddleware) AfterResolve(ctx context.Context, serviceType reflect.Type, instance any, err error) error {
	if f.AfterResolveFunc != nil {
		return f.AfterResolveFunc(ctx, serviceType, instance, err)
	}
	return nil
}
