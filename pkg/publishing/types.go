package publishing

import "time"

// ContentStatus is the lifecycle state of a post, article or video.
//
// Only StatusPublished carries special meaning. Any other value supplied by a
// caller is stored as given and treated as "not published".
type ContentStatus string

const (
	StatusDraft     ContentStatus = "DRAFT"
	StatusPublished ContentStatus = "PUBLISHED"
)

// IsPublished reports whether s is StatusPublished.
func (s ContentStatus) IsPublished() bool {
	return s == StatusPublished
}

// IsValid reports whether s is one of the known statuses.
func (s ContentStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished:
		return true
	default:
		return false
	}
}

// StatusPtr returns a pointer to s, for use as a listing filter.
func StatusPtr(s ContentStatus) *ContentStatus {
	return &s
}

// Application is a tenant owning its own content.
type Application struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	WebsiteURL *string `json:"websiteUrl,omitempty"`
}

// AdminUser is an authenticated principal allowed to mutate the content of
// the applications listed in AllowedApplicationIDs.
type AdminUser struct {
	ID                    string   `json:"id"`
	Email                 string   `json:"email"`
	PasswordHash          string   `json:"-"`
	AllowedApplicationIDs []string `json:"allowedApplicationIds"`
}

// Post is a short slug-addressed text item.
type Post struct {
	ID            string        `json:"id"`
	ApplicationID string        `json:"applicationId"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Content       string        `json:"content"`
	BannerURL     *string       `json:"bannerUrl,omitempty"`
	Status        ContentStatus `json:"status"`
	PublishedAt   *time.Time    `json:"publishedAt"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Article has the same shape as Post but is stored independently.
type Article struct {
	ID            string        `json:"id"`
	ApplicationID string        `json:"applicationId"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Content       string        `json:"content"`
	BannerURL     *string       `json:"bannerUrl,omitempty"`
	Status        ContentStatus `json:"status"`
	PublishedAt   *time.Time    `json:"publishedAt"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Video is the metadata record of an uploaded video file.
type Video struct {
	ID            string        `json:"id"`
	ApplicationID string        `json:"applicationId"`
	Title         string        `json:"title"`
	Description   *string       `json:"description,omitempty"`
	Status        ContentStatus `json:"status"`
	PublishedAt   *time.Time    `json:"publishedAt"`
	ObjectKey     string        `json:"objectKey"`
	ContentType   string        `json:"contentType"`
	SizeBytes     int64         `json:"sizeBytes"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// MediaUpload describes a generic media file stored for an application.
type MediaUpload struct {
	ObjectKey   string `json:"objectKey"`
	SizeBytes   int64  `json:"sizeBytes"`
	ContentType string `json:"contentType"`
	URL         string `json:"url"`
}

// AuthToken is the result of a successful login.
type AuthToken struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// TokenClaims is the payload carried by an access token.
type TokenClaims struct {
	Subject               string   `json:"sub"`
	Email                 string   `json:"email"`
	AllowedApplicationIDs []string `json:"applicationIds"`
}
