package api

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-publish/pkg/publishing"
)

const (
	defaultContentType = "application/octet-stream"
	// multipart parts above this size spill to temporary files
	multipartMemory = 32 << 20
)

// uploadedFile is the "file" part of a multipart upload.
type uploadedFile struct {
	file        multipart.File
	name        string
	contentType string
	size        int64
}

// formFile opens the "file" part. The caller closes it.
func formFile(r *http.Request) (*uploadedFile, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, publishing.NewBadRequest("parse upload", "multipart form expected")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, publishing.NewBadRequest("parse upload", "file is required")
		}
		return nil, publishing.NewBadRequest("parse upload", "invalid file part")
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	return &uploadedFile{file: file, name: header.Filename, contentType: contentType, size: header.Size}, nil
}

// VideoUploadForm holds the non-file fields of a video upload
type VideoUploadForm struct {
	ApplicationID string `form:"applicationId" validate:"notblank,max=36"`
	Title         string `form:"title" validate:"notblank,max=255"`
	Description   string `form:"description"`
	Status        string `form:"status" validate:"required,oneof=DRAFT PUBLISHED"`
}

// VideoHandler handles admin requests for videos
type VideoHandler struct {
	service publishing.Service
	logger  *slog.Logger
}

func NewVideoHandler(service publishing.Service, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{service: service, logger: logger}
}

// Routes returns the routes for videos
func (h *VideoHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/upload", h.Upload)
	r.Get("/", h.List)
	r.Patch("/{id}/status", h.ChangeStatus)
	return r
}

// Upload streams a video to storage and records it
func (h *VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	upload, err := formFile(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer upload.file.Close()

	form := VideoUploadForm{
		ApplicationID: r.FormValue("applicationId"),
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Status:        strings.ToUpper(strings.TrimSpace(r.FormValue("status"))),
	}
	if err := validate.Struct(&form); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var description *string
	if form.Description != "" {
		description = &form.Description
	}

	video, err := h.service.UploadVideo(r.Context(), publishing.UploadVideoRequest{
		ApplicationID:    form.ApplicationID,
		Title:            form.Title,
		Description:      description,
		Status:           publishing.ContentStatus(form.Status),
		OriginalFileName: upload.name,
		ContentType:      upload.contentType,
		SizeBytes:        upload.size,
		Reader:           upload.file,
	}, allowedApplications(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, VideoResponse{Video: video})
}

// ChangeStatus publishes or unpublishes a video
func (h *VideoHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[StatusRequest](r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	video, err := h.service.ChangeVideoStatus(r.Context(), publishing.ChangeStatusRequest{
		ID:            chi.URLParam(r, "id"),
		ApplicationID: req.ApplicationID,
		Status:        req.Status,
	}, allowedApplications(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, VideoResponse{Video: video})
}

// List lists videos of an application without presigned URLs
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	applicationID, status, page, err := listParams(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.service.ListVideos(r.Context(), applicationID, status, page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, videoPage(result, nil))
}

// VideoResponse is a video with an optional time-limited download URL
type VideoResponse struct {
	*publishing.Video
	PresignedURL string `json:"presignedUrl,omitempty"`
}

// videoPage converts a page of videos, attaching urls[i] to item i when present.
func videoPage(page *publishing.Page[*publishing.Video], urls []string) *publishing.Page[VideoResponse] {
	items := make([]VideoResponse, len(page.Items))
	for i, v := range page.Items {
		items[i] = VideoResponse{Video: v}
		if i < len(urls) {
			items[i].PresignedURL = urls[i]
		}
	}
	return &publishing.Page[VideoResponse]{
		Items:         items,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Page:          page.Page,
		Size:          page.Size,
	}
}

// MediaHandler handles generic media uploads
type MediaHandler struct {
	service publishing.Service
	logger  *slog.Logger
}

func NewMediaHandler(service publishing.Service, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{service: service, logger: logger}
}

// Routes returns the routes for media
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/upload", h.Upload)
	return r
}

// MediaUploadForm holds the non-file fields of a media upload
type MediaUploadForm struct {
	ApplicationID string `form:"applicationId" validate:"notblank,max=36"`
	Kind          string `form:"kind"`
}

// Upload stores an image, video or file and returns its public URL
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	upload, err := formFile(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer upload.file.Close()

	form := MediaUploadForm{
		ApplicationID: r.FormValue("applicationId"),
		Kind:          r.FormValue("kind"),
	}
	if err := validate.Struct(&form); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	media, err := h.service.UploadMedia(r.Context(), publishing.UploadMediaRequest{
		ApplicationID:    form.ApplicationID,
		Kind:             form.Kind,
		OriginalFileName: upload.name,
		ContentType:      upload.contentType,
		SizeBytes:        upload.size,
		Reader:           upload.file,
	}, allowedApplications(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, media)
}
