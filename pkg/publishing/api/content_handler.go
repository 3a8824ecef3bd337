package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-publish/pkg/publishing"
)

// ContentRequest is the request body for creating or replacing a post or article
type ContentRequest struct {
	ApplicationID string                   `json:"applicationId" validate:"notblank,max=36"`
	Title         string                   `json:"title" validate:"notblank,max=255"`
	Slug          string                   `json:"slug" validate:"notblank,max=255"`
	Content       string                   `json:"content" validate:"notblank"`
	BannerURL     *string                  `json:"bannerUrl,omitempty" validate:"omitempty,url"`
	Status        publishing.ContentStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED"`
}

// StatusRequest is the request body for a status change
type StatusRequest struct {
	ApplicationID string                   `json:"applicationId" validate:"notblank,max=36"`
	Status        publishing.ContentStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED"`
}

// PostHandler handles admin requests for posts
type PostHandler struct {
	service publishing.Service
	logger  *slog.Logger
}

func NewPostHandler(service publishing.Service, logger *slog.Logger) *PostHandler {
	return &PostHandler{service: service, logger: logger}
}

// Routes returns the routes for posts
func (h *PostHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/status", h.ChangeStatus)
	return r
}

// Create creates a post
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[ContentRequest](r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), publishing.CreatePostRequest{
		ApplicationID: req.ApplicationID,
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		BannerURL:     req.BannerURL,
		Status:        req.Status,
	}, allowedApplications(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, post)
}

// Update replaces the editable fields of a post
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[ContentRequest](r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	post, err := h.service.UpdatePost(r.Context(), publishing.UpdatePostRequest{
		ID:            chi.URLParam(r, "id"),
		ApplicationID: req.ApplicationID,
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		BannerURL:     req.BannerURL,
		Status:        req.Status,
	}, allowedApplications(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, post)
}

// ChangeStatus publishes or unpublishes a post
func (h *PostHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[StatusRequest](r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	post, err := h.service.ChangePostStatus(r.Context(), publishing.ChangeStatusRequest{
		ID:            chi.URLParam(r, "id"),
		ApplicationID: req.ApplicationID,
		Status:        req.Status,
	}, allowedApplications(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, post)
}

// List lists posts of an application, optionally filtered by status
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	applicationID, status, page, err := listParams(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.service.ListPosts(r.Context(), applicationID, status, page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, result)
}

// ArticleHandler handles admin requests for articles
type ArticleHandler struct {
	service publishing.Service
	logger  *slog.Logger
}

func NewArticleHandler(service publishing.Service, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{service: service, logger: logger}
}

// Routes returns the routes for articles
func (h *ArticleHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/status", h.ChangeStatus)
	return r
}

// Create creates an article
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[ContentRequest](r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	article, err := h.service.CreateArticle(r.Context(), publishing.CreateArticleRequest{
		ApplicationID: req.ApplicationID,
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		BannerURL:     req.BannerURL,
		Status:        req.Status,
	}, allowedApplications(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, article)
}

// Update replaces the editable fields of an article
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[ContentRequest](r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	article, err := h.service.UpdateArticle(r.Context(), publishing.UpdateArticleRequest{
		ID:            chi.URLParam(r, "id"),
		ApplicationID: req.ApplicationID,
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		BannerURL:     req.BannerURL,
		Status:        req.Status,
	}, allowedApplications(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, article)
}

// ChangeStatus publishes or unpublishes an article
func (h *ArticleHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[StatusRequest](r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	article, err := h.service.ChangeArticleStatus(r.Context(), publishing.ChangeStatusRequest{
		ID:            chi.URLParam(r, "id"),
		ApplicationID: req.ApplicationID,
		Status:        req.Status,
	}, allowedApplications(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, article)
}

// List lists articles of an application, optionally filtered by status
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	applicationID, status, page, err := listParams(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.service.ListArticles(r.Context(), applicationID, status, page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, result)
}

// listParams reads applicationId, status and paging for admin listings.
func listParams(r *http.Request) (string, *publishing.ContentStatus, publishing.PageRequest, error) {
	applicationID, err := requiredQuery(r, "applicationId")
	if err != nil {
		return "", nil, publishing.PageRequest{}, err
	}
	status, err := statusFromQuery(r)
	if err != nil {
		return "", nil, publishing.PageRequest{}, err
	}
	page, err := pageFromQuery(r)
	if err != nil {
		return "", nil, publishing.PageRequest{}, err
	}
	return applicationID, status, page, nil
}
