package publishing

import (
	"context"
	"io"
	"time"
)

// PageQuery selects one page of an application's items.
// A nil Status returns items of every status.
type PageQuery struct {
	ApplicationID string
	Status        *ContentStatus
	Page          int
	Size          int
}

// PageSlice is what a repository returns for a PageQuery.
type PageSlice[E any] struct {
	Items         []E
	TotalElements int64
	Page          int
	Size          int
}

// PostRepository persists posts. Implementations order FindPage results by
// published_at descending (nulls last) then created_at descending, and reject
// a save that would give two posts of the same application the same slug.
type PostRepository interface {
	Save(ctx context.Context, post *Post) (*Post, error)
	FindByID(ctx context.Context, id string) (*Post, error)
	FindBySlug(ctx context.Context, applicationID, slug string) (*Post, error)
	FindPage(ctx context.Context, q PageQuery) (*PageSlice[*Post], error)
}

// ArticleRepository persists articles with the same rules as PostRepository.
type ArticleRepository interface {
	Save(ctx context.Context, article *Article) (*Article, error)
	FindByID(ctx context.Context, id string) (*Article, error)
	FindBySlug(ctx context.Context, applicationID, slug string) (*Article, error)
	FindPage(ctx context.Context, q PageQuery) (*PageSlice[*Article], error)
}

// VideoRepository persists video metadata.
type VideoRepository interface {
	Save(ctx context.Context, video *Video) (*Video, error)
	FindByID(ctx context.Context, id string) (*Video, error)
	FindPage(ctx context.Context, q PageQuery) (*PageSlice[*Video], error)
}

// ApplicationRepository persists tenants.
type ApplicationRepository interface {
	FindByID(ctx context.Context, id string) (*Application, error)
	// FindFirst returns the application with the lowest id, or ErrNotFound.
	FindFirst(ctx context.Context) (*Application, error)
	FindAll(ctx context.Context) ([]*Application, error)
	Save(ctx context.Context, app *Application) (*Application, error)
	// DeleteByID removes the application if it exists.
	DeleteByID(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// AdminUserRepository persists admin users.
type AdminUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*AdminUser, error)
	Save(ctx context.Context, user *AdminUser) (*AdminUser, error)
}

// UploadParams describes bytes to hand to a MediaStore.
type UploadParams struct {
	ObjectKey   string
	Reader      io.Reader
	SizeHint    int64
	ContentType string
}

// UploadResult is what the store actually recorded. SizeBytes and
// ContentType may differ from the values the caller declared.
type UploadResult struct {
	ObjectKey   string
	SizeBytes   int64
	ContentType string
}

// MediaStore defines the interface for blob storage backends
type MediaStore interface {
	// Upload streams the reader to objectKey
	Upload(ctx context.Context, params UploadParams) (*UploadResult, error)

	// PresignedURL returns a time-limited GET URL for objectKey
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// TokenIssuer creates and verifies access tokens.
type TokenIssuer interface {
	Generate(user *AdminUser) (string, error)
	// Parse fails on malformed, tampered or expired tokens.
	Parse(token string) (*TokenClaims, error)
}

// PasswordMatcher compares a raw password with a stored hash.
type PasswordMatcher interface {
	Matches(rawPassword, storedHash string) bool
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}
