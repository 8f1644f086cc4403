package kiln

import "reflect"

// ServiceInfo contains diagnostic information about a registered mapping.
type ServiceInfo struct {
	// ServiceType is the abstract contract the mapping satisfies.
	ServiceType reflect.Type

	// ImplementationType is the concrete type the recipe constructs.
	ImplementationType reflect.Type

	// Lifestyle names the reuse policy governing the mapping.
	Lifestyle string

	// Created reports whether the singleton cell has reached a terminal
	// state (constructed or failed).
	Created bool

	// Alias reports whether this service type is an alias front-end for
	// another type's registration.
	Alias bool
}

// ServiceQuery defines criteria for querying registered services.
type ServiceQuery struct {
	// Lifestyle filters by lifestyle name. Empty string matches all.
	Lifestyle string

	// Created filters by whether the singleton has been constructed.
	// nil matches all services.
	Created *bool

	// Aliases controls whether alias front-ends are included.
	Aliases bool
}

// Query returns information about services matching the query criteria.
//
// Example:
//
//	// Find all singletons that have already been constructed
//	created := true
//	results := kiln.Query(c, kiln.ServiceQuery{Lifestyle: "singleton", Created: &created})
func Query(c Container, query ServiceQuery) []ServiceInfo {
	var results []ServiceInfo

	for _, serviceType := range c.ServiceTypes() {
		info, ok := c.Inspect(serviceType)
		if !ok {
			continue
		}

		if info.Alias && !query.Aliases {
			continue
		}

		if query.Lifestyle != "" && info.Lifestyle != query.Lifestyle {
			continue
		}

		if query.Created != nil && info.Created != *query.Created {
			continue
		}

		results = append(results, info)
	}

	return results
}
