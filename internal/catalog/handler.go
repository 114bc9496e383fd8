package catalog

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

// Handler handles HTTP requests for services.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers the read-only service routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/services", h.ListServices)
	r.Get("/services/{id}", h.GetService)
}

// RegisterAdminRoutes registers the mutating service routes.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/services", h.CreateService)
	r.Put("/services/{id}", h.UpdateService)
	r.Delete("/services/{id}", h.DeleteService)
}

// CreateServiceRequest represents the request body for creating a service.
type CreateServiceRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// UpdateServiceRequest represents the request body for updating a service.
// All fields are optional; omitted fields keep their current value.
type UpdateServiceRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// CreateService handles POST /services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httputil.RequireOrganization(w, r)
	if !ok {
		return
	}

	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	svc, err := h.service.Create(r.Context(), orgID, CreateServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ServiceStatus(req.Status),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, "Service created successfully", svc)
}

// GetService handles GET /services/{id}.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httputil.RequireOrganization(w, r)
	if !ok {
		return
	}

	svc, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, "Service retrieved successfully", svc)
}

// ListServices handles GET /services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httputil.RequireOrganization(w, r)
	if !ok {
		return
	}

	services, err := h.service.List(r.Context(), orgID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, "Services retrieved successfully", services)
}

// UpdateService handles PUT /services/{id}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httputil.RequireOrganization(w, r)
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	input := UpdateServiceInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.ServiceStatus(*req.Status)
		input.Status = &status
	}

	svc, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), orgID, input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, "Service updated successfully", svc)
}

// DeleteService handles DELETE /services/{id}.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	orgID, ok := httputil.RequireOrganization(w, r)
	if !ok {
		return
	}

	svc, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, "Service deleted successfully", svc)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrServiceNotFound):
		httputil.Error(w, http.StatusNotFound, "Service not found")
	case errors.Is(err, ErrInvalidStatus):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNameExists):
		httputil.Error(w, http.StatusConflict, err.Error())
	default:
		ctxlog.FromContext(r.Context()).Error("internal error", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
	}
}
