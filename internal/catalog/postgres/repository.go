// Package postgres provides the PostgreSQL implementation of the catalog
// repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulsepage/pulsepage/internal/catalog"
	"github.com/pulsepage/pulsepage/internal/domain"
)

// Postgres error codes mapped to domain errors.
const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// Repository implements catalog.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const serviceColumns = `id, name, description, status, organization_id, created_at, updated_at`

// Create inserts a new service. The id and timestamps are generated by the
// database.
func (r *Repository) Create(ctx context.Context, svc *domain.Service) error {
	query := `
		INSERT INTO services (name, description, status, organization_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		svc.Name,
		svc.Description,
		svc.Status,
		svc.OrganizationID,
	).Scan(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)

	if err != nil {
		return mapError("create service", err)
	}
	return nil
}

// GetByID retrieves a service by id scoped to the organization.
func (r *Repository) GetByID(ctx context.Context, id, orgID string) (*domain.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE id = $1 AND organization_id = $2
	`
	svc, err := scanService(r.db.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service by id: %w", err)
	}
	return svc, nil
}

// List retrieves all services of the organization, newest first.
func (r *Repository) List(ctx context.Context, orgID string) ([]domain.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE organization_id = $1
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, *svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// Update writes the service fields back, scoped to the organization.
func (r *Repository) Update(ctx context.Context, svc *domain.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, status = $3, updated_at = now()
		WHERE id = $4 AND organization_id = $5
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		svc.Name,
		svc.Description,
		svc.Status,
		svc.ID,
		svc.OrganizationID,
	).Scan(&svc.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.ErrServiceNotFound
		}
		return mapError("update service", err)
	}
	return nil
}

// Delete removes the service scoped to the organization, returning the
// deleted record.
func (r *Repository) Delete(ctx context.Context, id, orgID string) (*domain.Service, error) {
	return r.deleteOn(ctx, r.db, id, orgID)
}

// BeginTx starts a transaction for the cascading delete.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// DeleteTx removes the service inside an existing transaction.
func (r *Repository) DeleteTx(ctx context.Context, tx pgx.Tx, id, orgID string) (*domain.Service, error) {
	return r.deleteOn(ctx, tx, id, orgID)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) deleteOn(ctx context.Context, q querier, id, orgID string) (*domain.Service, error) {
	query := `
		DELETE FROM services
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + serviceColumns + `
	`
	svc, err := scanService(q.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("delete service: %w", err)
	}
	return svc, nil
}

func scanService(row pgx.Row) (*domain.Service, error) {
	var svc domain.Service
	err := row.Scan(
		&svc.ID,
		&svc.Name,
		&svc.Description,
		&svc.Status,
		&svc.OrganizationID,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// mapError converts constraint violations into domain errors. The check
// constraint on status is the store-level backstop behind boundary
// validation.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return catalog.ErrNameExists
		case checkViolation:
			return catalog.ErrInvalidStatus
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
