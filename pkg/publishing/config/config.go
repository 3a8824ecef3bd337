package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tendant/simple-publish/pkg/publishing"
	"github.com/tendant/simple-publish/pkg/publishing/repo/memory"
	repopg "github.com/tendant/simple-publish/pkg/publishing/repo/postgres"
	"github.com/tendant/simple-publish/pkg/publishing/security"
	fsstorage "github.com/tendant/simple-publish/pkg/publishing/storage/fs"
	memorystorage "github.com/tendant/simple-publish/pkg/publishing/storage/memory"
	s3storage "github.com/tendant/simple-publish/pkg/publishing/storage/s3"
)

// DevJWTSecret is the signing secret used when none is configured. It is
// rejected in production.
const DevJWTSecret = "dev-only-secret-change-me-0123456789abcdef"

// DevAdminPassword is the default seed password. Production refuses to seed with it.
const DevAdminPassword = "Admin123!"

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		LogLevel:           "info",
		DatabaseURL:        "memory",
		CORSAllowedOrigins: []string{"*"},
		Storage: StorageConfig{
			Type:                 "memory",
			Endpoint:             "http://localhost:9000",
			Region:               "us-east-1",
			Bucket:               "media",
			UsePathStyle:         true,
			CreateBucket:         true,
			PresignExpirySeconds: 3600,
			FSDir:                "./data/media",
			FSURLPrefix:          "http://localhost:8080/files",
			FSPublicRead:         true,
			SSEAlgorithm:         "AES256",
		},
		JWT: JWTConfig{
			Secret:            DevJWTSecret,
			ExpirationMinutes: 120,
		},
		Seed: SeedConfig{
			Enabled:       true,
			AdminEmail:    "admin@example.com",
			AdminPassword: DevAdminPassword,
		},
	}
}

// ServerConfig represents server configuration for the publishing service.
// Field tags drive environment loading through cleanenv.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	// "memory" or a postgres:// URL
	DatabaseURL string `env:"DATABASE_URL" env-default:"memory"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	Storage StorageConfig
	JWT     JWTConfig
	Seed    SeedConfig
}

// StorageConfig selects and configures the media store
type StorageConfig struct {
	Type                 string `env:"STORAGE_TYPE" env-default:"memory"` // memory, s3, fs
	Endpoint             string `env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	Region               string `env:"S3_REGION" env-default:"us-east-1"`
	Bucket               string `env:"S3_BUCKET" env-default:"media"`
	AccessKeyID          string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey      string `env:"S3_SECRET_ACCESS_KEY"`
	UsePathStyle         bool   `env:"S3_USE_PATH_STYLE" env-default:"true"`
	CreateBucket         bool   `env:"S3_CREATE_BUCKET" env-default:"true"`
	PresignExpirySeconds int    `env:"PRESIGN_EXPIRY_SECONDS" env-default:"3600"`
	// Base of public media URLs. Empty falls back to Endpoint, or to
	// FSURLPrefix for fs storage.
	PublicURL string `env:"STORAGE_PUBLIC_URL"`

	FSDir        string `env:"STORAGE_FS_DIR" env-default:"./data/media"`
	FSURLPrefix  string `env:"STORAGE_FS_URL_PREFIX" env-default:"http://localhost:8080/files"`
	FSPublicRead bool   `env:"STORAGE_FS_PUBLIC_READ" env-default:"true"`

	// Server-side encryption of uploaded objects (s3 only)
	SSEEnabled   bool   `env:"S3_SSE_ENABLED" env-default:"false"`
	SSEAlgorithm string `env:"S3_SSE_ALGORITHM" env-default:"AES256"` // AES256 or aws:kms
	SSEKMSKeyID  string `env:"S3_SSE_KMS_KEY_ID"`
}

// JWTConfig configures access tokens
type JWTConfig struct {
	Secret            string `env:"JWT_SECRET" env-default:"dev-only-secret-change-me-0123456789abcdef"`
	ExpirationMinutes int    `env:"JWT_EXPIRATION_MINUTES" env-default:"120"`
}

// SeedConfig controls the demo application and first admin created at startup
type SeedConfig struct {
	Enabled       bool   `env:"SEED_ENABLED" env-default:"true"`
	AdminEmail    string `env:"ADMIN_EMAIL" env-default:"admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:"Admin123!"`
}

// IsProduction reports whether the server runs in production mode.
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// UsesPostgres reports whether DatabaseURL points at PostgreSQL.
func (c *ServerConfig) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// PublicStorageURL is the base of public media URLs.
func (c *ServerConfig) PublicStorageURL() string {
	if c.Storage.PublicURL != "" {
		return c.Storage.PublicURL
	}
	if c.Storage.Type == "fs" {
		return c.Storage.FSURLPrefix
	}
	return c.Storage.Endpoint
}

// publicBucket is the bucket segment of public media URLs. The fs store
// serves from its own root so it has none.
func (c *ServerConfig) publicBucket() string {
	if c.Storage.Type == "fs" {
		return ""
	}
	return c.Storage.Bucket
}

// FilesPath is the request path the fs store is served under.
func (c *ServerConfig) FilesPath() (string, error) {
	u, err := url.Parse(c.Storage.FSURLPrefix)
	if err != nil {
		return "", fmt.Errorf("invalid STORAGE_FS_URL_PREFIX: %w", err)
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return "", errors.New("STORAGE_FS_URL_PREFIX must include a path, e.g. /files")
	}
	return p, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseURL != "" && c.DatabaseURL != "memory" && !c.UsesPostgres() {
		return fmt.Errorf("unsupported DATABASE_URL format: use 'memory' or 'postgres://...'")
	}

	switch c.Storage.Type {
	case "memory":
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("S3_BUCKET is required when using s3 storage")
		}
		if c.Storage.SSEEnabled && c.Storage.SSEAlgorithm != "AES256" && c.Storage.SSEAlgorithm != "aws:kms" {
			return fmt.Errorf("S3_SSE_ALGORITHM must be 'AES256' or 'aws:kms', got: %s", c.Storage.SSEAlgorithm)
		}
		if c.Storage.SSEKMSKeyID != "" && c.Storage.SSEAlgorithm != "aws:kms" {
			return errors.New("S3_SSE_KMS_KEY_ID requires S3_SSE_ALGORITHM=aws:kms")
		}
	case "fs":
		if c.Storage.FSDir == "" {
			return errors.New("STORAGE_FS_DIR is required when using fs storage")
		}
		if _, err := c.FilesPath(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("storage type must be 'memory', 's3' or 'fs', got: %s", c.Storage.Type)
	}
	if c.Storage.PresignExpirySeconds <= 0 {
		return errors.New("presign expiry must be positive")
	}

	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && (c.JWT.Secret == DevJWTSecret || len(c.JWT.Secret) < 32) {
		return errors.New("JWT_SECRET must be set to at least 32 characters in production")
	}
	if c.JWT.ExpirationMinutes <= 0 {
		return errors.New("JWT expiration must be positive")
	}

	if c.Seed.Enabled && (c.Seed.AdminEmail == "" || c.Seed.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required when seeding is enabled")
	}
	if c.IsProduction() && c.Seed.Enabled && c.Seed.AdminPassword == DevAdminPassword {
		return errors.New("ADMIN_PASSWORD must be changed from the default when seeding in production")
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// Logger builds the process logger: JSON in production, text otherwise.
func (c *ServerConfig) Logger() *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Runtime is a built service together with the pieces startup code needs.
type Runtime struct {
	Service      publishing.Service
	Applications publishing.ApplicationRepository
	AdminUsers   publishing.AdminUserRepository
	Store        publishing.MediaStore
	Passwords    *security.BcryptHasher
	// Serves fs storage; nil for other stores.
	Files http.Handler

	closers []func()
}

// Close releases the database pool, if any.
func (r *Runtime) Close() {
	for _, c := range r.closers {
		c()
	}
}

// BuildService creates a Service instance from the server configuration.
// With a postgres DatabaseURL, pending migrations are applied first.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{Passwords: security.NewBcryptHasher()}

	var options []publishing.Option
	if c.UsesPostgres() {
		if err := repopg.Migrate(ctx, c.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := repopg.Connect(ctx, c.DatabaseURL)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)
		repos := repopg.New(pool)
		rt.Applications, rt.AdminUsers = repos.Applications, repos.AdminUsers
		options = append(options, repos.Options()...)
	} else {
		repos := memory.New()
		rt.Applications, rt.AdminUsers = repos.Applications, repos.AdminUsers
		options = append(options, repos.Options()...)
	}

	store, err := c.buildMediaStore(ctx)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to build media store: %w", err)
	}
	rt.Store = store
	if files, ok := store.(*fsstorage.Backend); ok {
		rt.Files = files.Handler()
	}

	tokens, err := security.NewJWTIssuer(c.JWT.Secret, time.Duration(c.JWT.ExpirationMinutes)*time.Minute)
	if err != nil {
		rt.Close()
		return nil, err
	}

	options = append(options,
		publishing.WithMediaStore(store),
		publishing.WithTokenIssuer(tokens),
		publishing.WithPasswordMatcher(rt.Passwords),
		publishing.WithPresignExpiry(time.Duration(c.Storage.PresignExpirySeconds)*time.Second),
		publishing.WithPublicStorage(c.PublicStorageURL(), c.publicBucket()),
	)
	if logger != nil {
		options = append(options, publishing.WithLogger(logger))
	}

	svc, err := publishing.New(options...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Service = svc
	return rt, nil
}

func (c *ServerConfig) s3Config() s3storage.Config {
	return s3storage.Config{
		Region:                 c.Storage.Region,
		Bucket:                 c.Storage.Bucket,
		AccessKeyID:            c.Storage.AccessKeyID,
		SecretAccessKey:        c.Storage.SecretAccessKey,
		Endpoint:               c.Storage.Endpoint,
		UsePathStyle:           c.Storage.UsePathStyle,
		EnableSSE:              c.Storage.SSEEnabled,
		SSEAlgorithm:           c.Storage.SSEAlgorithm,
		SSEKMSKeyID:            c.Storage.SSEKMSKeyID,
		CreateBucketIfNotExist: c.Storage.CreateBucket,
	}
}

// buildMediaStore creates the MediaStore selected by Storage.Type
func (c *ServerConfig) buildMediaStore(ctx context.Context) (publishing.MediaStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(c.PublicStorageURL() + "/" + c.Storage.Bucket), nil
	case "s3":
		return s3storage.New(ctx, c.s3Config())
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:    c.Storage.FSDir,
			URLPrefix:  c.Storage.FSURLPrefix,
			Secret:     c.JWT.Secret,
			PublicRead: c.Storage.FSPublicRead,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}
