package publishing

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-publish/pkg/publishing/objectkey"
)

// DefaultPresignExpiry is how long a presigned video URL stays valid.
const DefaultPresignExpiry = time.Hour

// IDGenerator returns a fresh unique identifier.
type IDGenerator func() string

// service implements the Service interface
type service struct {
	posts        PostRepository
	articles     ArticleRepository
	videos       VideoRepository
	applications ApplicationRepository
	admins       AdminUserRepository

	store     MediaStore
	tokens    TokenIssuer
	passwords PasswordMatcher

	clock         Clock
	newID         IDGenerator
	keys          *objectkey.Builder
	presignExpiry time.Duration
	publicURL     string
	bucket        string
	logger        *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithPostRepository sets the post repository
func WithPostRepository(repo PostRepository) Option {
	return func(s *service) {
		s.posts = repo
	}
}

// WithArticleRepository sets the article repository
func WithArticleRepository(repo ArticleRepository) Option {
	return func(s *service) {
		s.articles = repo
	}
}

// WithVideoRepository sets the video repository
func WithVideoRepository(repo VideoRepository) Option {
	return func(s *service) {
		s.videos = repo
	}
}

// WithApplicationRepository sets the application repository
func WithApplicationRepository(repo ApplicationRepository) Option {
	return func(s *service) {
		s.applications = repo
	}
}

// WithAdminUserRepository sets the admin user repository
func WithAdminUserRepository(repo AdminUserRepository) Option {
	return func(s *service) {
		s.admins = repo
	}
}

// WithMediaStore sets the storage backend used for videos and media
func WithMediaStore(store MediaStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithTokenIssuer sets the access token port
func WithTokenIssuer(tokens TokenIssuer) Option {
	return func(s *service) {
		s.tokens = tokens
	}
}

// WithPasswordMatcher sets the password comparison port
func WithPasswordMatcher(m PasswordMatcher) Option {
	return func(s *service) {
		s.passwords = m
	}
}

// WithClock overrides the time source. Defaults to SystemClock.
func WithClock(c Clock) Option {
	return func(s *service) {
		s.clock = c
	}
}

// WithIDGenerator overrides id and object key randomness. Defaults to uuid.NewString.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *service) {
		s.newID = gen
	}
}

// WithPresignExpiry sets the lifetime of presigned video URLs
func WithPresignExpiry(d time.Duration) Option {
	return func(s *service) {
		s.presignExpiry = d
	}
}

// WithPublicStorage sets the base URL and bucket used to build public media URLs
func WithPublicStorage(publicURL, bucket string) Option {
	return func(s *service) {
		s.publicURL = strings.TrimRight(strings.TrimSpace(publicURL), "/")
		s.bucket = bucket
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		clock:         SystemClock{},
		newID:         uuid.NewString,
		presignExpiry: DefaultPresignExpiry,
	}

	for _, option := range options {
		option(s)
	}

	switch {
	case s.posts == nil:
		return nil, fmt.Errorf("post repository is required")
	case s.articles == nil:
		return nil, fmt.Errorf("article repository is required")
	case s.videos == nil:
		return nil, fmt.Errorf("video repository is required")
	case s.applications == nil:
		return nil, fmt.Errorf("application repository is required")
	case s.admins == nil:
		return nil, fmt.Errorf("admin user repository is required")
	case s.store == nil:
		return nil, fmt.Errorf("media store is required")
	case s.tokens == nil:
		return nil, fmt.Errorf("token issuer is required")
	case s.passwords == nil:
		return nil, fmt.Errorf("password matcher is required")
	}
	if s.presignExpiry <= 0 {
		return nil, fmt.Errorf("presign expiry must be positive")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.keys = &objectkey.Builder{Now: s.now, NewID: s.newID}

	return s, nil
}

func (s *service) now() time.Time {
	return s.clock.Now().UTC()
}

// defaultStatus turns an omitted status into a draft.
func defaultStatus(status ContentStatus) ContentStatus {
	if status == "" {
		return StatusDraft
	}
	return status
}

// trimToNil trims v and collapses blank values to nil.
func trimToNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
