package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/pulsepage/pulsepage/internal/domain"
	"github.com/pulsepage/pulsepage/internal/realtime"
)

// Service implements service business logic and coordinates each mutation:
// persist first, then broadcast the corresponding event. Broadcast failure
// never fails the mutation; there is no rollback once persistence succeeded.
type Service struct {
	repo        Repository
	incidents   IncidentPurger
	broadcaster Broadcaster
}

// NewService creates a new catalog service.
func NewService(repo Repository, incidents IncidentPurger, broadcaster Broadcaster) *Service {
	return &Service{
		repo:        repo,
		incidents:   incidents,
		broadcaster: broadcaster,
	}
}

// CreateServiceInput holds data for creating a service. The organization id
// is never part of the input: it is always injected from the authenticated
// context by the caller.
type CreateServiceInput struct {
	Name        string
	Description string
	Status      domain.ServiceStatus
}

// UpdateServiceInput holds the partial update for a service. Nil fields are
// left unchanged.
type UpdateServiceInput struct {
	Name        *string
	Description *string
	Status      *domain.ServiceStatus
}

// Create creates a service under the given organization.
func (s *Service) Create(ctx context.Context, orgID string, input CreateServiceInput) (*domain.Service, error) {
	status := input.Status
	if status == "" {
		status = domain.ServiceStatusOperational
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	svc := &domain.Service{
		Name:           input.Name,
		Description:    input.Description,
		Status:         status,
		OrganizationID: orgID,
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(orgID, realtime.ServiceCreated(svc))
	return svc, nil
}

// GetByID returns the service scoped to the organization.
func (s *Service) GetByID(ctx context.Context, id, orgID string) (*domain.Service, error) {
	return s.repo.GetByID(ctx, id, orgID)
}

// List returns all services of the organization.
func (s *Service) List(ctx context.Context, orgID string) ([]domain.Service, error) {
	return s.repo.List(ctx, orgID)
}

// Update applies a partial update to the service scoped to the organization.
//
// Concurrent updates to the same service apply last-write-wins: there is no
// version counter in the update filter.
func (s *Service) Update(ctx context.Context, id, orgID string, input UpdateServiceInput) (*domain.Service, error) {
	existing, err := s.repo.GetByID(ctx, id, orgID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		existing.Name = *input.Name
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

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(orgID, realtime.ServiceUpdated(existing))
	return existing, nil
}

// Delete removes the service and all incidents referencing it in a single
// transaction, so a scoped incident listing never shows orphans. Returns the
// deleted service.
func (s *Service) Delete(ctx context.Context, id, orgID string) (*domain.Service, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	incidentIDs, err := s.incidents.DeleteByServiceTx(ctx, tx, id, orgID)
	if err != nil {
		return nil, fmt.Errorf("delete dependent incidents: %w", err)
	}

	svc, err := s.repo.DeleteTx(ctx, tx, id, orgID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	// Cascaded incidents get their own delete events so connected views drop
	// them without waiting for the next poll.
	for _, incidentID := range incidentIDs {
		s.broadcaster.Broadcast(orgID, realtime.IncidentDeleted(incidentID))
	}
	s.broadcaster.Broadcast(orgID, realtime.ServiceDeleted(id))

	return svc, nil
}
