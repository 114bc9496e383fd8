package domain

import "time"

// IncidentStatus represents the lifecycle status of an incident.
// The vocabulary is intentionally wider than ServiceStatus: incidents track a
// ticket-style workflow, services track availability.
type IncidentStatus string

// Incident statuses.
const (
	IncidentStatusNew          IncidentStatus = "New"
	IncidentStatusAcknowledged IncidentStatus = "Acknowledged"
	IncidentStatusInProgress   IncidentStatus = "In Progress"
	IncidentStatusOnHold       IncidentStatus = "On Hold"
	IncidentStatusEscalated    IncidentStatus = "Escalated"
	IncidentStatusResolved     IncidentStatus = "Resolved"
	IncidentStatusMonitoring   IncidentStatus = "Monitoring"
	IncidentStatusClosed       IncidentStatus = "Closed"
	IncidentStatusReopened     IncidentStatus = "Reopened"
	IncidentStatusCancelled    IncidentStatus = "Cancelled"
)

// IsValid checks if the incident status is valid.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusNew, IncidentStatusAcknowledged, IncidentStatusInProgress,
		IncidentStatusOnHold, IncidentStatusEscalated, IncidentStatusResolved,
		IncidentStatusMonitoring, IncidentStatusClosed, IncidentStatusReopened,
		IncidentStatusCancelled:
		return true
	}
	return false
}

// Incident represents a reported event affecting one service.
//
// OrganizationID is a denormalized copy of the owning organization, assigned
// once from the authenticated request context at creation time. It is never
// re-derived on update, even when ServiceID changes.
type Incident struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Status         IncidentStatus `json:"status"`
	ServiceID      string         `json:"service"`
	OrganizationID string         `json:"organizationId"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
