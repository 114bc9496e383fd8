package domain

import "time"

// ServiceStatus represents the operational status of a service.
//
// The values are the exact wire strings exposed over the API, so they are
// human-readable rather than snake_case identifiers.
type ServiceStatus string

// Service statuses.
const (
	ServiceStatusOperational   ServiceStatus = "Operational"
	ServiceStatusDegraded      ServiceStatus = "Degraded Performance"
	ServiceStatusPartialOutage ServiceStatus = "Partial Outage"
	ServiceStatusMajorOutage   ServiceStatus = "Major Outage"
)

// IsValid checks if the service status is valid.
func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceStatusOperational, ServiceStatusDegraded,
		ServiceStatusPartialOutage, ServiceStatusMajorOutage:
		return true
	}
	return false
}

// Service represents a monitored service owned by exactly one organization.
type Service struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Status         ServiceStatus `json:"status"`
	OrganizationID string        `json:"organizationId"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}
