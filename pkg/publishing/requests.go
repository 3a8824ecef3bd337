package publishing

import "io"

// Request DTOs

// CreatePostRequest contains parameters for creating a post.
// An empty Status creates a draft.
type CreatePostRequest struct {
	ApplicationID string
	Title         string
	Slug          string
	Content       string
	BannerURL     *string
	Status        ContentStatus
}

// UpdatePostRequest replaces the editable fields of an existing post.
// ApplicationID is the tenant the caller acts for; it must match the stored
// post and is never changed by the update.
type UpdatePostRequest struct {
	ID            string
	ApplicationID string
	Title         string
	Slug          string
	Content       string
	BannerURL     *string
	Status        ContentStatus
}

// CreateArticleRequest contains parameters for creating an article.
type CreateArticleRequest struct {
	ApplicationID string
	Title         string
	Slug          string
	Content       string
	BannerURL     *string
	Status        ContentStatus
}

// UpdateArticleRequest replaces the editable fields of an existing article.
type UpdateArticleRequest struct {
	ID            string
	ApplicationID string
	Title         string
	Slug          string
	Content       string
	BannerURL     *string
	Status        ContentStatus
}

// ChangeStatusRequest moves a post, article or video to Status.
type ChangeStatusRequest struct {
	ID            string
	ApplicationID string
	Status        ContentStatus
}

// UploadVideoRequest streams a video file and records its metadata.
// SizeBytes and ContentType are the client's declaration; the stored record
// uses what the storage backend reports.
type UploadVideoRequest struct {
	ApplicationID    string
	Title            string
	Description      *string
	Status           ContentStatus
	OriginalFileName string
	ContentType      string
	SizeBytes        int64
	Reader           io.Reader
}

// UploadMediaRequest streams a generic media file. Kind is one of image,
// video or file; anything else is stored as file.
type UploadMediaRequest struct {
	ApplicationID    string
	Kind             string
	OriginalFileName string
	ContentType      string
	SizeBytes        int64
	Reader           io.Reader
}

// CreateApplicationRequest registers a tenant. A blank ID is generated.
type CreateApplicationRequest struct {
	ID         string
	Name       string
	WebsiteURL *string
}

// UpdateApplicationRequest renames a tenant or changes its website.
type UpdateApplicationRequest struct {
	ID         string
	Name       string
	WebsiteURL *string
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Email    string
	Password string
}
