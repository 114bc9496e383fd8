// Package catalog provides business logic and HTTP handlers for
// organization-scoped services.
package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pulsepage/pulsepage/internal/domain"
	"github.com/pulsepage/pulsepage/internal/realtime"
)

// Repository defines organization-scoped service persistence.
//
// Every read, update and delete filters on both the record id and the
// caller's organization id; a miss on either is reported as
// ErrServiceNotFound, which callers map to a not-found response, never to an
// internal error.
type Repository interface {
	Create(ctx context.Context, svc *domain.Service) error
	GetByID(ctx context.Context, id, orgID string) (*domain.Service, error)
	List(ctx context.Context, orgID string) ([]domain.Service, error)
	Update(ctx context.Context, svc *domain.Service) error
	Delete(ctx context.Context, id, orgID string) (*domain.Service, error)

	// Transaction methods for the cascading service delete.
	BeginTx(ctx context.Context) (pgx.Tx, error)
	DeleteTx(ctx context.Context, tx pgx.Tx, id, orgID string) (*domain.Service, error)
}

// IncidentPurger deletes the incidents referencing a service inside the same
// transaction as the service delete. Implemented by the incidents repository.
type IncidentPurger interface {
	DeleteByServiceTx(ctx context.Context, tx pgx.Tx, serviceID, orgID string) ([]string, error)
}

// Broadcaster publishes mutation events on the realtime fan-out channel.
// Publishing is fire-and-forget; implementations must never block on client
// I/O or return delivery errors to the caller.
type Broadcaster interface {
	Broadcast(orgID string, event realtime.Event)
}
