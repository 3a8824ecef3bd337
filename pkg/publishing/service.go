package publishing

import "context"

// Service defines the publishing use cases.
//
// Mutating operations take the acting admin's allowed application ids and
// reject the call with ErrForbidden before touching any repository when the
// target application is not in that set.
type Service interface {
	// Post operations
	CreatePost(ctx context.Context, req CreatePostRequest, allowed []string) (*Post, error)
	UpdatePost(ctx context.Context, req UpdatePostRequest, allowed []string) (*Post, error)
	ChangePostStatus(ctx context.Context, req ChangeStatusRequest, allowed []string) (*Post, error)
	GetPostBySlug(ctx context.Context, applicationID, slug string) (*Post, error)
	ListPosts(ctx context.Context, applicationID string, status *ContentStatus, page PageRequest) (*Page[*Post], error)

	// Article operations
	CreateArticle(ctx context.Context, req CreateArticleRequest, allowed []string) (*Article, error)
	UpdateArticle(ctx context.Context, req UpdateArticleRequest, allowed []string) (*Article, error)
	ChangeArticleStatus(ctx context.Context, req ChangeStatusRequest, allowed []string) (*Article, error)
	GetArticleBySlug(ctx context.Context, applicationID, slug string) (*Article, error)
	ListArticles(ctx context.Context, applicationID string, status *ContentStatus, page PageRequest) (*Page[*Article], error)

	// Video operations
	UploadVideo(ctx context.Context, req UploadVideoRequest, allowed []string) (*Video, error)
	ChangeVideoStatus(ctx context.Context, req ChangeStatusRequest, allowed []string) (*Video, error)
	ListVideos(ctx context.Context, applicationID string, status *ContentStatus, page PageRequest) (*Page[*Video], error)
	GetVideoURL(ctx context.Context, objectKey string) (string, error)

	// Media operations
	UploadMedia(ctx context.Context, req UploadMediaRequest, allowed []string) (*MediaUpload, error)

	// Application operations
	ListApplications(ctx context.Context) ([]*Application, error)
	GetApplication(ctx context.Context, id string) (*Application, error)
	CreateApplication(ctx context.Context, req CreateApplicationRequest) (*Application, error)
	UpdateApplication(ctx context.Context, req UpdateApplicationRequest) (*Application, error)
	DeleteApplication(ctx context.Context, id string) error

	// Auth operations
	Login(ctx context.Context, req LoginRequest) (*AuthToken, error)
	ParseToken(ctx context.Context, token string) (*TokenClaims, error)
}
