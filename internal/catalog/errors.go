package catalog

import "errors"

// Domain errors surfaced by the catalog service.
var (
	// ErrServiceNotFound is returned when no service matches both the id and
	// the caller's organization. A record owned by another organization is
	// indistinguishable from a missing one.
	ErrServiceNotFound = errors.New("service not found")

	// ErrNameExists is returned when a service name is already taken within
	// the organization.
	ErrNameExists = errors.New("service name already exists in organization")

	// ErrInvalidStatus is returned when a status value is outside the
	// defined enumeration.
	ErrInvalidStatus = errors.New("invalid service status")
)
