package incidents

import (
	"context"
	"errors"
	"fmt"

	"github.com/pulsepage/pulsepage/internal/catalog"
	"github.com/pulsepage/pulsepage/internal/domain"
	"github.com/pulsepage/pulsepage/internal/realtime"
)

// Service implements incident business logic. Like the catalog service it
// coordinates each mutation: persist, then broadcast, fire-and-forget.
type Service struct {
	repo        Repository
	services    ServiceResolver
	broadcaster Broadcaster
}

// NewService creates a new incidents service.
func NewService(repo Repository, services ServiceResolver, broadcaster Broadcaster) *Service {
	return &Service{
		repo:        repo,
		services:    services,
		broadcaster: broadcaster,
	}
}

// CreateIncidentInput holds data for creating an incident. The organization
// id is never part of the input: it is injected from the authenticated
// context and denormalized onto the incident exactly once, at creation.
type CreateIncidentInput struct {
	Title       string
	Description string
	ServiceID   string
	Status      domain.IncidentStatus
}

// UpdateIncidentInput holds the partial update for an incident. Nil fields
// are left unchanged. The organization id is not updatable: it stays as
// assigned at creation even when the service reference changes.
type UpdateIncidentInput struct {
	Title       *string
	Description *string
	Status      *domain.IncidentStatus
	ServiceID   *string
}

// Create creates an incident under the given organization. The referenced
// service must exist and belong to the same organization.
func (s *Service) Create(ctx context.Context, orgID string, input CreateIncidentInput) (*domain.Incident, error) {
	status := input.Status
	if status == "" {
		status = domain.IncidentStatusNew
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	if err := s.resolveService(ctx, input.ServiceID, orgID); err != nil {
		return nil, err
	}

	inc := &domain.Incident{
		Title:          input.Title,
		Description:    input.Description,
		Status:         status,
		ServiceID:      input.ServiceID,
		OrganizationID: orgID,
	}

	if err := s.repo.Create(ctx, inc); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(orgID, realtime.IncidentCreated(inc))
	return inc, nil
}

// GetByID returns the incident scoped to the organization.
func (s *Service) GetByID(ctx context.Context, id, orgID string) (*domain.Incident, error) {
	return s.repo.GetByID(ctx, id, orgID)
}

// List returns all incidents of the organization.
func (s *Service) List(ctx context.Context, orgID string) ([]domain.Incident, error) {
	return s.repo.List(ctx, orgID)
}

// Update applies a partial update to the incident scoped to the
// organization. Reassigning the service reference re-validates the new
// service against the caller's organization but never touches the incident's
// own organization id.
func (s *Service) Update(ctx context.Context, id, orgID string, input UpdateIncidentInput) (*domain.Incident, error) {
	existing, err := s.repo.GetByID(ctx, id, orgID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		existing.Title = *input.Title
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		existing.Status = *input.Status
	}
	if input.ServiceID != nil && *input.ServiceID != existing.ServiceID {
		if err := s.resolveService(ctx, *input.ServiceID, orgID); err != nil {
			return nil, err
		}
		existing.ServiceID = *input.ServiceID
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(orgID, realtime.IncidentUpdated(existing))
	return existing, nil
}

// Delete removes the incident scoped to the organization, returning the
// deleted record.
func (s *Service) Delete(ctx context.Context, id, orgID string) (*domain.Incident, error) {
	inc, err := s.repo.Delete(ctx, id, orgID)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(orgID, realtime.IncidentDeleted(id))
	return inc, nil
}

func (s *Service) resolveService(ctx context.Context, serviceID, orgID string) error {
	if serviceID == "" {
		return ErrServiceNotFound
	}

	if _, err := s.services.GetByID(ctx, serviceID, orgID); err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return ErrServiceNotFound
		}
		return fmt.Errorf("resolve service %s: %w", serviceID, err)
	}
	return nil
}
