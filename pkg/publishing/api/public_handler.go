package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-publish/pkg/publishing"
)

// PublicHandler serves published content to anonymous readers. Every
// listing is filtered to PUBLISHED and drafts are invisible by slug.
type PublicHandler struct {
	service publishing.Service
	logger  *slog.Logger
}

func NewPublicHandler(service publishing.Service, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{service: service, logger: logger}
}

// Routes returns the public routes
func (h *PublicHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{applicationId}/posts", h.ListPosts)
	r.Get("/{applicationId}/posts/{slug}", h.GetPost)
	r.Get("/{applicationId}/articles", h.ListArticles)
	r.Get("/{applicationId}/articles/{slug}", h.GetArticle)
	r.Get("/{applicationId}/videos", h.ListVideos)
	return r
}

func published() *publishing.ContentStatus {
	return publishing.StatusPtr(publishing.StatusPublished)
}

// ListPosts lists published posts
func (h *PublicHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	result, err := h.service.ListPosts(r.Context(), chi.URLParam(r, "applicationId"), published(), page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, result)
}

// GetPost returns a published post by slug
func (h *PublicHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPostBySlug(r.Context(), chi.URLParam(r, "applicationId"), chi.URLParam(r, "slug"))
	if err == nil && !post.Status.IsPublished() {
		err = publishing.NewNotFound("get public post", "post not found")
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, post)
}

// ListArticles lists published articles
func (h *PublicHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	result, err := h.service.ListArticles(r.Context(), chi.URLParam(r, "applicationId"), published(), page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, result)
}

// GetArticle returns a published article by slug
func (h *PublicHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.GetArticleBySlug(r.Context(), chi.URLParam(r, "applicationId"), chi.URLParam(r, "slug"))
	if err == nil && !article.Status.IsPublished() {
		err = publishing.NewNotFound("get public article", "article not found")
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, article)
}

// ListVideos lists published videos, each with a presigned download URL
func (h *PublicHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	result, err := h.service.ListVideos(r.Context(), chi.URLParam(r, "applicationId"), published(), page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	urls := make([]string, len(result.Items))
	for i, v := range result.Items {
		if urls[i], err = h.service.GetVideoURL(r.Context(), v.ObjectKey); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	render.JSON(w, r, videoPage(result, urls))
}
