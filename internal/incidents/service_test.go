package incidents

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pulsepage/pulsepage/internal/catalog"
	"github.com/pulsepage/pulsepage/internal/domain"
	"github.com/pulsepage/pulsepage/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository in memory with the same
// id-and-organization scoping as the real store.
type mockRepository struct {
	incidents map[string]*domain.Incident
}

func newMockRepository() *mockRepository {
	return &mockRepository{incidents: make(map[string]*domain.Incident)}
}

func (m *mockRepository) Create(_ context.Context, inc *domain.Incident) error {
	inc.ID = uuid.NewString()
	stored := *inc
	m.incidents[inc.ID] = &stored
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id, orgID string) (*domain.Incident, error) {
	inc, ok := m.incidents[id]
	if !ok || inc.OrganizationID != orgID {
		return nil, ErrIncidentNotFound
	}
	copied := *inc
	return &copied, nil
}

func (m *mockRepository) List(_ context.Context, orgID string) ([]domain.Incident, error) {
	result := make([]domain.Incident, 0)
	for _, inc := range m.incidents {
		if inc.OrganizationID == orgID {
			result = append(result, *inc)
		}
	}
	return result, nil
}

func (m *mockRepository) Update(_ context.Context, inc *domain.Incident) error {
	existing, ok := m.incidents[inc.ID]
	if !ok || existing.OrganizationID != inc.OrganizationID {
		return ErrIncidentNotFound
	}
	stored := *inc
	m.incidents[inc.ID] = &stored
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id, orgID string) (*domain.Incident, error) {
	inc, ok := m.incidents[id]
	if !ok || inc.OrganizationID != orgID {
		return nil, ErrIncidentNotFound
	}
	delete(m.incidents, id)
	return inc, nil
}

func (m *mockRepository) DeleteByServiceTx(_ context.Context, _ pgx.Tx, serviceID, orgID string) ([]string, error) {
	ids := make([]string, 0)
	for id, inc := range m.incidents {
		if inc.ServiceID == serviceID && inc.OrganizationID == orgID {
			ids = append(ids, id)
			delete(m.incidents, id)
		}
	}
	return ids, nil
}

// mockResolver resolves services by id and organization, mirroring the
// catalog service contract.
type mockResolver struct {
	services map[string]*domain.Service
}

func newMockResolver() *mockResolver {
	return &mockResolver{services: make(map[string]*domain.Service)}
}

func (m *mockResolver) add(id, orgID string) {
	m.services[id] = &domain.Service{ID: id, OrganizationID: orgID}
}

func (m *mockResolver) GetByID(_ context.Context, id, orgID string) (*domain.Service, error) {
	svc, ok := m.services[id]
	if !ok || svc.OrganizationID != orgID {
		return nil, catalog.ErrServiceNotFound
	}
	return svc, nil
}

type recordingBroadcaster struct {
	orgs   []string
	events []realtime.Event
}

func (r *recordingBroadcaster) Broadcast(orgID string, event realtime.Event) {
	r.orgs = append(r.orgs, orgID)
	r.events = append(r.events, event)
}

func newTestService() (*Service, *mockRepository, *mockResolver, *recordingBroadcaster) {
	repo := newMockRepository()
	resolver := newMockResolver()
	broadcaster := &recordingBroadcaster{}
	return NewService(repo, resolver, broadcaster), repo, resolver, broadcaster
}

func TestCreateIncident(t *testing.T) {
	t.Run("denormalizes organization from context", func(t *testing.T) {
		svc, _, resolver, _ := newTestService()
		resolver.add("svc-1", "org-1")

		created, err := svc.Create(context.Background(), "org-1", CreateIncidentInput{
			Title:     "API down",
			ServiceID: "svc-1",
		})
		require.NoError(t, err)

		assert.Equal(t, "org-1", created.OrganizationID)
		assert.Equal(t, domain.IncidentStatusNew, created.Status)
	})

	t.Run("rejects service from another organization", func(t *testing.T) {
		svc, _, resolver, broadcaster := newTestService()
		resolver.add("svc-1", "org-2")

		_, err := svc.Create(context.Background(), "org-1", CreateIncidentInput{
			Title:     "API down",
			ServiceID: "svc-1",
		})

		assert.ErrorIs(t, err, ErrServiceNotFound)
		assert.Empty(t, broadcaster.events)
	})

	t.Run("rejects missing service reference", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		_, err := svc.Create(context.Background(), "org-1", CreateIncidentInput{
			Title:     "API down",
			ServiceID: "missing",
		})

		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc, _, resolver, _ := newTestService()
		resolver.add("svc-1", "org-1")

		_, err := svc.Create(context.Background(), "org-1", CreateIncidentInput{
			Title:     "API down",
			ServiceID: "svc-1",
			Status:    "Panicking",
		})

		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("broadcasts create event to own organization", func(t *testing.T) {
		svc, _, resolver, broadcaster := newTestService()
		resolver.add("svc-1", "org-1")

		created, err := svc.Create(context.Background(), "org-1", CreateIncidentInput{
			Title:     "API down",
			ServiceID: "svc-1",
		})
		require.NoError(t, err)

		require.Len(t, broadcaster.events, 1)
		assert.Equal(t, []string{"org-1"}, broadcaster.orgs)

		payload := broadcaster.events[0].Data.(realtime.IncidentPayload)
		assert.Equal(t, realtime.ActionCreate, payload.Action)
		assert.Equal(t, created.ID, payload.Incident.ID)
	})
}

func TestGetIncident(t *testing.T) {
	t.Run("foreign organization looks like not found", func(t *testing.T) {
		svc, _, resolver, _ := newTestService()
		resolver.add("svc-1", "org-1")

		created, err := svc.Create(context.Background(), "org-1", CreateIncidentInput{
			Title:     "API down",
			ServiceID: "svc-1",
		})
		require.NoError(t, err)

		_, err = svc.GetByID(context.Background(), created.ID, "org-2")
		assert.ErrorIs(t, err, ErrIncidentNotFound)
	})
}

func TestUpdateIncident(t *testing.T) {
	t.Run("organization assignment survives updates", func(t *testing.T) {
		svc, _, resolver, _ := newTestService()
		resolver.add("svc-1", "org-1")
		resolver.add("svc-2", "org-1")

		created, err := svc.Create(context.Background(), "org-1", CreateIncidentInput{
			Title:     "API down",
			ServiceID: "svc-1",
		})
		require.NoError(t, err)

		newService := "svc-2"
		status := domain.IncidentStatusResolved
		updated, err := svc.Update(context.Background(), created.ID, "org-1", UpdateIncidentInput{
			Status:    &status,
			ServiceID: &newService,
		})
		require.NoError(t, err)

		assert.Equal(t, "org-1", updated.OrganizationID)
		assert.Equal(t, "svc-2", updated.ServiceID)
		assert.Equal(t, domain.IncidentStatusResolved, updated.Status)
	})

	t.Run("reassignment to foreign service is rejected", func(t *testing.T) {
		svc, _, resolver, _ := newTestService()
		resolver.add("svc-1", "org-1")
		resolver.add("svc-2", "org-2")

		created, err := svc.Create(context.Background(), "org-1", CreateIncidentInput{
			Title:     "API down",
			ServiceID: "svc-1",
		})
		require.NoError(t, err)

		foreign := "svc-2"
		_, err = svc.Update(context.Background(), created.ID, "org-1", UpdateIncidentInput{ServiceID: &foreign})
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("foreign organization cannot update", func(t *testing.T) {
		svc, _, resolver, _ := newTestService()
		resolver.add("svc-1", "org-1")

		created, err := svc.Create(context.Background(), "org-1", CreateIncidentInput{
			Title:     "API down",
			ServiceID: "svc-1",
		})
		require.NoError(t, err)

		title := "Hijacked"
		_, err = svc.Update(context.Background(), created.ID, "org-2", UpdateIncidentInput{Title: &title})
		assert.ErrorIs(t, err, ErrIncidentNotFound)
	})
}

func TestDeleteIncident(t *testing.T) {
	t.Run("broadcasts delete with id only", func(t *testing.T) {
		svc, _, resolver, broadcaster := newTestService()
		resolver.add("svc-1", "org-1")

		created, err := svc.Create(context.Background(), "org-1", CreateIncidentInput{
			Title:     "API down",
			ServiceID: "svc-1",
		})
		require.NoError(t, err)

		deleted, err := svc.Delete(context.Background(), created.ID, "org-1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, deleted.ID)

		require.Len(t, broadcaster.events, 2)
		payload := broadcaster.events[1].Data.(realtime.IncidentPayload)
		assert.Equal(t, realtime.ActionDelete, payload.Action)
		assert.Equal(t, created.ID, payload.IncidentID)
		assert.Nil(t, payload.Incident)
	})

	t.Run("delete is not idempotent", func(t *testing.T) {
		svc, _, resolver, _ := newTestService()
		resolver.add("svc-1", "org-1")

		created, err := svc.Create(context.Background(), "org-1", CreateIncidentInput{
			Title:     "API down",
			ServiceID: "svc-1",
		})
		require.NoError(t, err)

		_, err = svc.Delete(context.Background(), created.ID, "org-1")
		require.NoError(t, err)

		_, err = svc.Delete(context.Background(), created.ID, "org-1")
		assert.ErrorIs(t, err, ErrIncidentNotFound)
	})
}
