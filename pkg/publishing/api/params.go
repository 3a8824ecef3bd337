package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tendant/simple-publish/pkg/publishing"
)

// pageFromQuery reads page and size, defaulting to 0 and 10.
func pageFromQuery(r *http.Request) (publishing.PageRequest, error) {
	page, err := intParam(r, "page", publishing.DefaultPage)
	if err != nil {
		return publishing.PageRequest{}, err
	}
	size, err := intParam(r, "size", publishing.DefaultPageSize)
	if err != nil {
		return publishing.PageRequest{}, err
	}
	return publishing.NewPageRequest(page, size), nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, publishing.NewBadRequest("parse query", "invalid "+name+" parameter")
	}
	return v, nil
}

// statusFromQuery returns nil when no status filter was given.
func statusFromQuery(r *http.Request) (*publishing.ContentStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, nil
	}
	return parseStatus(raw)
}

func parseStatus(raw string) (*publishing.ContentStatus, error) {
	status := publishing.ContentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return nil, publishing.NewBadRequest("parse status", "invalid status "+raw)
	}
	return &status, nil
}

// requiredQuery reads a mandatory query parameter.
func requiredQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", publishing.NewBadRequest("parse query", name+" parameter is required")
	}
	return v, nil
}
