// Package postgres provides the PostgreSQL implementation of the incidents
// repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulsepage/pulsepage/internal/domain"
	"github.com/pulsepage/pulsepage/internal/incidents"
)

// Postgres error codes mapped to domain errors.
const (
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const incidentColumns = `id, title, description, status, service_id, organization_id, created_at, updated_at`

// Create inserts a new incident. The id and timestamps are generated by the
// database.
func (r *Repository) Create(ctx context.Context, inc *domain.Incident) error {
	query := `
		INSERT INTO incidents (title, description, status, service_id, organization_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		inc.Title,
		inc.Description,
		inc.Status,
		inc.ServiceID,
		inc.OrganizationID,
	).Scan(&inc.ID, &inc.CreatedAt, &inc.UpdatedAt)

	if err != nil {
		return mapError("create incident", err)
	}
	return nil
}

// GetByID retrieves an incident by id scoped to the organization.
func (r *Repository) GetByID(ctx context.Context, id, orgID string) (*domain.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE id = $1 AND organization_id = $2
	`
	inc, err := scanIncident(r.db.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident by id: %w", err)
	}
	return inc, nil
}

// List retrieves all incidents of the organization, newest first.
func (r *Repository) List(ctx context.Context, orgID string) ([]domain.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE organization_id = $1
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Incident, 0)
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		result = append(result, *inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return result, nil
}

// Update writes the incident fields back, scoped to the organization. The
// organization id itself is never part of the SET clause.
func (r *Repository) Update(ctx context.Context, inc *domain.Incident) error {
	query := `
		UPDATE incidents
		SET title = $1, description = $2, status = $3, service_id = $4, updated_at = now()
		WHERE id = $5 AND organization_id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		inc.Title,
		inc.Description,
		inc.Status,
		inc.ServiceID,
		inc.ID,
		inc.OrganizationID,
	).Scan(&inc.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return incidents.ErrIncidentNotFound
		}
		return mapError("update incident", err)
	}
	return nil
}

// Delete removes the incident scoped to the organization, returning the
// deleted record.
func (r *Repository) Delete(ctx context.Context, id, orgID string) (*domain.Incident, error) {
	query := `
		DELETE FROM incidents
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + incidentColumns + `
	`
	inc, err := scanIncident(r.db.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("delete incident: %w", err)
	}
	return inc, nil
}

// DeleteByServiceTx removes all incidents referencing the service inside an
// existing transaction and returns their ids.
func (r *Repository) DeleteByServiceTx(ctx context.Context, tx pgx.Tx, serviceID, orgID string) ([]string, error) {
	query := `
		DELETE FROM incidents
		WHERE service_id = $1 AND organization_id = $2
		RETURNING id
	`
	rows, err := tx.Query(ctx, query, serviceID, orgID)
	if err != nil {
		return nil, fmt.Errorf("delete incidents by service: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan incident id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("delete incidents by service: %w", err)
	}
	return ids, nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var inc domain.Incident
	err := row.Scan(
		&inc.ID,
		&inc.Title,
		&inc.Description,
		&inc.Status,
		&inc.ServiceID,
		&inc.OrganizationID,
		&inc.CreatedAt,
		&inc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

// mapError converts constraint violations into domain errors. The foreign
// key on service_id and the check constraint on status are the store-level
// backstops behind service-layer validation.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolation:
			return incidents.ErrServiceNotFound
		case checkViolation:
			return incidents.ErrInvalidStatus
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
