package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-publish/pkg/publishing"
)

type contextKey string

const claimsKey contextKey = "claims"

// ClaimsFromContext returns the token claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*publishing.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*publishing.TokenClaims)
	return claims, ok
}

// allowedApplications is the acting admin's tenant set, empty when the
// request carries no claims.
func allowedApplications(r *http.Request) []string {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		return claims.AllowedApplicationIDs
	}
	return nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// parsed claims in the request context.
func RequireAuth(svc publishing.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, publishing.TokenTypeBearer+" ")
			if !ok || strings.TrimSpace(token) == "" {
				writeError(w, r, logger, publishing.NewUnauthorized("authenticate", "authentication required"))
				return
			}

			claims, err := svc.ParseToken(r.Context(), strings.TrimSpace(token))
			if err != nil {
				writeError(w, r, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthHandler serves the login endpoint
type AuthHandler struct {
	service publishing.Service
	logger  *slog.Logger
}

func NewAuthHandler(service publishing.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// Routes returns the routes for authentication
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	return r
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"notblank"`
}

// Login exchanges credentials for an access token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[LoginRequest](r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	token, err := h.service.Login(r.Context(), publishing.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, token)
}
