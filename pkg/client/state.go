package client

import (
	"sync"
	"time"
)

// Service is the wire representation of a service as returned by the API.
type Service struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	OrganizationID string    `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Incident is the wire representation of an incident as returned by the API.
type Incident struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	ServiceID      string    `json:"service"`
	OrganizationID string    `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// State is a local, key-addressed mirror of the organization's services and
// incidents. Snapshot replacement and event application are both idempotent,
// so replaying an event already reflected by a poll leaves the state
// unchanged.
type State struct {
	mu        sync.RWMutex
	services  map[string]Service
	incidents map[string]Incident
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		services:  make(map[string]Service),
		incidents: make(map[string]Incident),
	}
}

// ReplaceServices swaps the full service set for a freshly polled snapshot.
func (s *State) ReplaceServices(services []Service) {
	next := make(map[string]Service, len(services))
	for _, svc := range services {
		next[svc.ID] = svc
	}

	s.mu.Lock()
	s.services = next
	s.mu.Unlock()
}

// ReplaceIncidents swaps the full incident set for a freshly polled snapshot.
func (s *State) ReplaceIncidents(incidents []Incident) {
	next := make(map[string]Incident, len(incidents))
	for _, inc := range incidents {
		next[inc.ID] = inc
	}

	s.mu.Lock()
	s.incidents = next
	s.mu.Unlock()
}

// UpsertService applies a service create or update event.
func (s *State) UpsertService(svc Service) {
	s.mu.Lock()
	s.services[svc.ID] = svc
	s.mu.Unlock()
}

// RemoveService applies a service delete event. Removing an unknown id is a
// no-op.
func (s *State) RemoveService(id string) {
	s.mu.Lock()
	delete(s.services, id)
	s.mu.Unlock()
}

// UpsertIncident applies an incident create or update event.
func (s *State) UpsertIncident(inc Incident) {
	s.mu.Lock()
	s.incidents[inc.ID] = inc
	s.mu.Unlock()
}

// RemoveIncident applies an incident delete event. Removing an unknown id is
// a no-op.
func (s *State) RemoveIncident(id string) {
	s.mu.Lock()
	delete(s.incidents, id)
	s.mu.Unlock()
}

// Services returns a copy of the current service set.
func (s *State) Services() []Service {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Service, 0, len(s.services))
	for _, svc := range s.services {
		result = append(result, svc)
	}
	return result
}

// Incidents returns a copy of the current incident set.
func (s *State) Incidents() []Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		result = append(result, inc)
	}
	return result
}

// Service returns the service with the given id, if present.
func (s *State) Service(id string) (Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	return svc, ok
}

// Incident returns the incident with the given id, if present.
func (s *State) Incident(id string) (Incident, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inc, ok := s.incidents[id]
	return inc, ok
}
