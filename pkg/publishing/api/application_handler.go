package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-publish/pkg/publishing"
)

// ApplicationHandler handles admin requests for applications
type ApplicationHandler struct {
	service publishing.Service
	logger  *slog.Logger
}

func NewApplicationHandler(service publishing.Service, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{service: service, logger: logger}
}

// Routes returns the routes for applications
func (h *ApplicationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// ApplicationRequest is the request body for creating or updating an application.
// ID is only read on create; blank means generate one.
type ApplicationRequest struct {
	ID         string  `json:"id" validate:"max=36"`
	Name       string  `json:"name" validate:"notblank,max=255"`
	WebsiteURL *string `json:"websiteUrl,omitempty" validate:"omitempty,max=1024"`
}

// List returns every application
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.ListApplications(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if apps == nil {
		apps = []*publishing.Application{}
	}
	render.JSON(w, r, apps)
}

// Get returns one application
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, app)
}

// Create creates an application
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[ApplicationRequest](r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	app, err := h.service.CreateApplication(r.Context(), publishing.CreateApplicationRequest{
		ID:         req.ID,
		Name:       req.Name,
		WebsiteURL: req.WebsiteURL,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, app)
}

// Update renames an application or changes its website
func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[ApplicationRequest](r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	app, err := h.service.UpdateApplication(r.Context(), publishing.UpdateApplicationRequest{
		ID:         chi.URLParam(r, "id"),
		Name:       req.Name,
		WebsiteURL: req.WebsiteURL,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, app)
}

// Delete removes an application
func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteApplication(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
