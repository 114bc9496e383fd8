package incidents

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pulsepage/pulsepage/internal/domain"
	"github.com/pulsepage/pulsepage/internal/pkg/ctxlog"
	"github.com/pulsepage/pulsepage/internal/pkg/httputil"
)

// Handler handles HTTP requests for incidents.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers the read-only incident routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/incidents", h.ListIncidents)
	r.Get("/incidents/{id}", h.GetIncident)
}

// RegisterAdminRoutes registers the mutating incident routes.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/incidents", h.CreateIncident)
	r.Put("/incidents/{id}", h.UpdateIncident)
	r.Delete("/incidents/{id}", h.DeleteIncident)
}

// CreateIncidentRequest represents the request body for creating an incident.
// The organization id is deliberately absent: it always comes from the
// authenticated context, never from the client.
type CreateIncidentRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"required"`
	Service     string `json:"service" validate:"required"`
	Status      string `json:"status"`
}

// UpdateIncidentRequest represents the request body for updating an incident.
type UpdateIncidentRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Service     *string `json:"service" validate:"omitempty,min=1"`
	Status      *string `json:"status"`
}

// CreateIncident handles POST /incidents.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httputil.RequireOrganization(w, r)
	if !ok {
		return
	}

	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	inc, err := h.service.Create(r.Context(), orgID, CreateIncidentInput{
		Title:       req.Title,
		Description: req.Description,
		ServiceID:   req.Service,
		Status:      domain.IncidentStatus(req.Status),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, "Incident created successfully", inc)
}

// GetIncident handles GET /incidents/{id}.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httputil.RequireOrganization(w, r)
	if !ok {
		return
	}

	inc, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, "Incident retrieved successfully", inc)
}

// ListIncidents handles GET /incidents.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httputil.RequireOrganization(w, r)
	if !ok {
		return
	}

	incidents, err := h.service.List(r.Context(), orgID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, "Incidents retrieved successfully", incidents)
}

// UpdateIncident handles PUT /incidents/{id}.
func (h *Handler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httputil.RequireOrganization(w, r)
	if !ok {
		return
	}

	var req UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	input := UpdateIncidentInput{
		Title:       req.Title,
		Description: req.Description,
		ServiceID:   req.Service,
	}
	if req.Status != nil {
		status := domain.IncidentStatus(*req.Status)
		input.Status = &status
	}

	inc, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), orgID, input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, "Incident updated successfully", inc)
}

// DeleteIncident handles DELETE /incidents/{id}.
func (h *Handler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httputil.RequireOrganization(w, r)
	if !ok {
		return
	}

	inc, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, "Incident deleted successfully", inc)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrIncidentNotFound):
		httputil.Error(w, http.StatusNotFound, "Incident not found")
	case errors.Is(err, ErrServiceNotFound):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidStatus):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	default:
		ctxlog.FromContext(r.Context()).Error("internal error", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
	}
}
