package kiln

import (
	"fmt"
	"reflect"

	"github.com/xraph/go-utils/errs"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeActivationFailure indicates an instance could not be constructed
	CodeActivationFailure = "ACTIVATION_FAILURE"

	// CodeContainerLocked indicates a registration was attempted after the
	// container was locked by the first resolution or Verify call
	CodeContainerLocked = "CONTAINER_LOCKED"

	// CodeInvalidConfiguration indicates Verify found one or more invalid mappings
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"

	// CodeCollectionElementNil indicates a nil element in a registered collection
	CodeCollectionElementNil = "COLLECTION_ELEMENT_NIL"

	// CodeServiceNotFound indicates no registration exists for a service type
	CodeServiceNotFound = "SERVICE_NOT_FOUND"

	// CodeServiceAlreadyExists indicates a service type is already registered
	CodeServiceAlreadyExists = "SERVICE_ALREADY_EXISTS"

	// CodeTypeMismatch indicates a type mismatch during service resolution
	CodeTypeMismatch = "TYPE_MISMATCH"

	// CodeInvalidRecipe indicates a nil factory, nil instance, or unusable
	// implementation type was supplied at registration time
	CodeInvalidRecipe = "INVALID_RECIPE"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrNilFactory is returned when a nil factory is supplied to a registration.
var ErrNilFactory = errs.NewError(CodeInvalidRecipe, "factory cannot be nil", nil)

// ErrNilServiceType is returned when a nil service type is supplied.
var ErrNilServiceType = errs.NewError(CodeInvalidRecipe, "service type cannot be nil", nil)

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// ErrActivationFailure creates an error for a failed instance construction.
// The underlying cause (user factory error, compile failure) is preserved.
func ErrActivationFailure(serviceType reflect.Type, cause error) *errs.Error {
	return errs.NewError(
		CodeActivationFailure,
		fmt.Sprintf("activation of service '%s' failed", typeName(serviceType)),
		cause,
	).WithContext("service", typeName(serviceType)).(*errs.Error)
}

// ErrNilInstance creates an error for a construction pipeline that produced nil.
// A nil singleton is a configuration defect, not a transient condition.
func ErrNilInstance(serviceType reflect.Type) *errs.Error {
	return errs.NewError(
		CodeActivationFailure,
		fmt.Sprintf("the registered producer for service '%s' returned nil", typeName(serviceType)),
		nil,
	).WithContext("service", typeName(serviceType)).(*errs.Error)
}

// ErrContainerLocked creates an error for registration after the lock transition.
func ErrContainerLocked() *errs.Error {
	return errs.NewError(
		CodeContainerLocked,
		"the container is locked: registrations are rejected after the first call to Resolve or Verify",
		nil,
	).WithContext("state", "locked").(*errs.Error)
}

// ErrServiceNotFound creates an error for an unregistered service type.
func ErrServiceNotFound(serviceType reflect.Type) *errs.Error {
	return errs.NewError(
		CodeServiceNotFound,
		fmt.Sprintf("no registration found for service '%s'", typeName(serviceType)),
		nil,
	).WithContext("service", typeName(serviceType)).(*errs.Error)
}

// ErrServiceAlreadyExists creates an error for a duplicate registration.
func ErrServiceAlreadyExists(serviceType reflect.Type) *errs.Error {
	return errs.NewError(
		CodeServiceAlreadyExists,
		fmt.Sprintf("service '%s' is already registered", typeName(serviceType)),
		nil,
	).WithContext("service", typeName(serviceType)).(*errs.Error)
}

// ErrTypeMismatch creates an error for a type mismatch during resolution.
func ErrTypeMismatch(serviceType reflect.Type, actual any) *errs.Error {
	return errs.NewError(
		CodeTypeMismatch,
		fmt.Sprintf("service '%s' type mismatch: got %T", typeName(serviceType), actual),
		nil,
	).WithContext("service", typeName(serviceType)).
		WithContext("actual_type", fmt.Sprintf("%T", actual)).(*errs.Error)
}

// NewConfigurationError creates an error for an invalid container configuration.
func NewConfigurationError(message string, cause error) *errs.Error {
	return errs.NewError(CodeInvalidConfiguration, message, cause).
		WithContext("component", "container").(*errs.Error)
}

// ErrVerificationFailed creates the aggregate error Verify reports when one or
// more mappings fail to build. The failing service types are named in the
// message and the per-mapping causes are combined into the cause chain.
func ErrVerificationFailed(failed []reflect.Type, cause error) *errs.Error {
	names := make([]string, len(failed))
	for i, t := range failed {
		names[i] = typeName(t)
	}

	return errs.NewError(
		CodeInvalidConfiguration,
		fmt.Sprintf("the configuration is invalid: %d mapping(s) failed to build: %v", len(failed), names),
		cause,
	).WithContext("services", names).(*errs.Error)
}

// ErrCollectionElementNil creates an error for a nil element discovered while
// eagerly validating a collection registration.
func ErrCollectionElementNil(elementType reflect.Type, index int) *errs.Error {
	return errs.NewError(
		CodeCollectionElementNil,
		fmt.Sprintf("the collection registered for element type '%s' contains a nil element at index %d", typeName(elementType), index),
		nil,
	).WithContext("element_type", typeName(elementType)).
		WithContext("index", index).(*errs.Error)
}

// ErrCollectionEnumeration creates an error for a collection whose enumeration
// itself failed, preserving the original cause.
func ErrCollectionEnumeration(elementType reflect.Type, cause error) *errs.Error {
	return errs.NewError(
		CodeInvalidConfiguration,
		fmt.Sprintf("enumerating the collection registered for element type '%s' failed", typeName(elementType)),
		cause,
	).WithContext("element_type", typeName(elementType)).(*errs.Error)
}

// typeName renders a reflect.Type for error messages, tolerating nil.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
