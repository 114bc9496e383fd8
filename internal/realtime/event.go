// Package realtime implements the websocket fan-out channel that pushes
// mutation events to connected clients of the same organization.
package realtime

import "github.com/pulsepage/pulsepage/internal/domain"

// Action identifies the kind of mutation an event describes.
type Action string

// Mutation actions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event names.
const (
	EventService  = "service"
	EventIncident = "incident"
)

// Event is a single fan-out event: a name identifying the entity type and a
// payload describing the mutation. Delivery is best-effort: no persistence,
// no replay, no acknowledgement.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// ServicePayload carries a service mutation. Service is set for create and
// update, ServiceID alone for delete.
type ServicePayload struct {
	Action    Action          `json:"action"`
	Service   *domain.Service `json:"service,omitempty"`
	ServiceID string          `json:"serviceId,omitempty"`
}

// IncidentPayload carries an incident mutation. Incident is set for create
// and update, IncidentID alone for delete.
type IncidentPayload struct {
	Action     Action           `json:"action"`
	Incident   *domain.Incident `json:"incident,omitempty"`
	IncidentID string           `json:"incidentId,omitempty"`
}

// ServiceCreated builds a create event for a service.
func ServiceCreated(svc *domain.Service) Event {
	return Event{Name: EventService, Data: ServicePayload{Action: ActionCreate, Service: svc}}
}

// ServiceUpdated builds an update event for a service.
func ServiceUpdated(svc *domain.Service) Event {
	return Event{Name: EventService, Data: ServicePayload{Action: ActionUpdate, Service: svc}}
}

// ServiceDeleted builds a delete event carrying only the service id.
func ServiceDeleted(id string) Event {
	return Event{Name: EventService, Data: ServicePayload{Action: ActionDelete, ServiceID: id}}
}

// IncidentCreated builds a create event for an incident.
func IncidentCreated(inc *domain.Incident) Event {
	return Event{Name: EventIncident, Data: IncidentPayload{Action: ActionCreate, Incident: inc}}
}

// IncidentUpdated builds an update event for an incident.
func IncidentUpdated(inc *domain.Incident) Event {
	return Event{Name: EventIncident, Data: IncidentPayload{Action: ActionUpdate, Incident: inc}}
}

// IncidentDeleted builds a delete event carrying only the incident id.
func IncidentDeleted(id string) Event {
	return Event{Name: EventIncident, Data: IncidentPayload{Action: ActionDelete, IncidentID: id}}
}
