package incidents

import "errors"

// Domain errors surfaced by the incidents service.
var (
	// ErrIncidentNotFound is returned when no incident matches both the id
	// and the caller's organization.
	ErrIncidentNotFound = errors.New("incident not found")

	// ErrServiceNotFound is returned when the referenced service does not
	// exist within the caller's organization. A service owned by another
	// organization is indistinguishable from a missing one.
	ErrServiceNotFound = errors.New("referenced service not found in organization")

	// ErrInvalidStatus is returned when a status value is outside the
	// defined enumeration.
	ErrInvalidStatus = errors.New("invalid incident status")
)
