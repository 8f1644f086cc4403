package kiln

import (
	"fmt"
	"reflect"
)

// ConstructorResolver turns an implementation type into a zero-argument
// factory that constructs it with its dependencies already resolved. The
// container calls it for every implementation-type recipe; the construction
// core treats the resolution strategy as opaque.
type ConstructorResolver interface {
	Resolve(c Container, implementationType reflect.Type) (Factory, error)
}

// fieldDep describes one injectable struct field.
type fieldDep struct {
	index    int
	typ      reflect.Type
	optional bool // From `optional:"true"` tag
}

// reflectResolver is the default ConstructorResolver: it constructs struct
// implementation types and injects their exported fields from the container.
//
// Every exported field is treated as a dependency. A field tagged
// `inject:"-"` is skipped; a field tagged `optional:"true"` is left zero
// when its type is not registered.
type reflectResolver struct{}

// Resolve analyzes the implementation type and returns a factory closing
// over the container and the analyzed field set.
func (r *reflectResolver) Resolve(c Container, implementationType reflect.Type) (Factory, error) {
	if implementationType == nil {
		return nil, ErrNilServiceType
	}

	structType := implementationType
	pointer := false

	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
		pointer = true
	}

	if structType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("implementation type '%s' is not constructible: expected a struct or pointer to struct", typeName(implementationType))
	}

	deps, err := analyzeFields(structType)
	if err != nil {
		return nil, err
	}

	return func() (any, error) {
		value := reflect.New(structType)
		elem := value.Elem()

		for _, dep := range deps {
			instance, err := c.Resolve(dep.typ)
			if err != nil {
				if dep.optional {
					continue
				}

				return nil, fmt.Errorf("constructing '%s': field %s: %w",
					typeName(implementationType), structType.Field(dep.index).Name, err)
			}

			v := reflect.ValueOf(instance)
			if !v.Type().AssignableTo(dep.typ) {
				return nil, ErrTypeMismatch(dep.typ, instance)
			}

			elem.Field(dep.index).Set(v)
		}

		if pointer {
			return value.Interface(), nil
		}

		return elem.Interface(), nil
	}, nil
}

// analyzeFields extracts the injectable fields of a struct type.
func analyzeFields(structType reflect.Type) ([]fieldDep, error) {
	var deps []fieldDep

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if !field.IsExported() || field.Anonymous {
			continue
		}

		if field.Tag.Get("inject") == "-" {
			continue
		}

		deps = append(deps, fieldDep{
			index:    i,
			typ:      field.Type,
			optional: field.Tag.Get("optional") == "true",
		})
	}

	return deps, nil
}
