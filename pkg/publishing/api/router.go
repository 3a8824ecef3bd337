package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/unrolled/secure"

	"github.com/tendant/simple-publish/pkg/publishing"
)

// Config configures the HTTP surface
type Config struct {
	AllowedOrigins []string
	IsDevelopment  bool
	// Upper bound for a request body, uploads included. Zero means 512 MiB.
	MaxBodyBytes int64
	Logger       *slog.Logger
	Metrics      *Metrics
	// Files serves locally stored media under FilesPath when set.
	Files     http.Handler
	FilesPath string
}

const defaultMaxBodyBytes = 512 << 20

// NewRouter wires every handler behind the standard middleware stack.
func NewRouter(svc publishing.Service, cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	sec := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      cfg.IsDevelopment,
	})

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(logger),
		middleware.Recoverer,
		metrics.Middleware,
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}),
		middleware.RequestSize(maxBody),
		sec.Handler,
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if cfg.Files != nil && cfg.FilesPath != "" {
		r.Mount(cfg.FilesPath, http.StripPrefix(cfg.FilesPath, cfg.Files))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, r, http.StatusNotFound, "no route for "+r.URL.Path, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(5 * time.Minute))

		r.Mount("/auth", NewAuthHandler(svc, logger).Routes())
		r.Mount("/public", NewPublicHandler(svc, logger).Routes())

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAuth(svc, logger))
			r.Mount("/applications", NewApplicationHandler(svc, logger).Routes())
			r.Mount("/posts", NewPostHandler(svc, logger).Routes())
			r.Mount("/articles", NewArticleHandler(svc, logger).Routes())
			r.Mount("/videos", NewVideoHandler(svc, logger).Routes())
			r.Mount("/media", NewMediaHandler(svc, logger).Routes())
		})
	})

	return r
}
