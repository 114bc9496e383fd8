// Package incidents provides business logic and HTTP handlers for
// organization-scoped incidents.
package incidents

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pulsepage/pulsepage/internal/domain"
	"github.com/pulsepage/pulsepage/internal/realtime"
)

// Repository defines organization-scoped incident persistence. The same
// scoping contract applies as for services: every lookup, update and delete
// filters on both id and organization id, and a miss is ErrIncidentNotFound.
type Repository interface {
	Create(ctx context.Context, inc *domain.Incident) error
	GetByID(ctx context.Context, id, orgID string) (*domain.Incident, error)
	List(ctx context.Context, orgID string) ([]domain.Incident, error)
	Update(ctx context.Context, inc *domain.Incident) error
	Delete(ctx context.Context, id, orgID string) (*domain.Incident, error)

	// DeleteByServiceTx removes all incidents referencing a service inside
	// an existing transaction and returns their ids. Used by the cascading
	// service delete.
	DeleteByServiceTx(ctx context.Context, tx pgx.Tx, serviceID, orgID string) ([]string, error)
}

// ServiceResolver checks that a referenced service exists within the
// caller's organization. Implemented by the catalog service.
type ServiceResolver interface {
	GetByID(ctx context.Context, id, orgID string) (*domain.Service, error)
}

// Broadcaster publishes mutation events on the realtime fan-out channel.
type Broadcaster interface {
	Broadcast(orgID string, event realtime.Event)
}
