// Package seed creates the demo application and first admin account on an
// empty installation.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tendant/simple-publish/pkg/publishing"
)

const DemoApplicationName = "Demo Application"

// PasswordHasher hashes the seeded admin password.
type PasswordHasher interface {
	Hash(raw string) (string, error)
}

// Seeder holds the repositories the seed data is written to.
type Seeder struct {
	Applications publishing.ApplicationRepository
	AdminUsers   publishing.AdminUserRepository
	Passwords    PasswordHasher
	Logger       *slog.Logger
	NewID        func() string
}

// Result reports what Run found or created.
type Result struct {
	ApplicationID      string
	ApplicationCreated bool
	AdminCreated       bool
}

// Run is idempotent. The demo application is created only when no
// application exists; the admin is created only when adminEmail is unknown,
// and is allowed for the first application.
func (s *Seeder) Run(ctx context.Context, adminEmail, adminPassword string) (*Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	res := &Result{}
	count, err := s.Applications.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}

	if count > 0 {
		first, err := s.Applications.FindFirst(ctx)
		if err != nil {
			return nil, fmt.Errorf("find first application: %w", err)
		}
		res.ApplicationID = first.ID
		logger.InfoContext(ctx, "existing application", "application_id", first.ID)
	} else {
		app, err := s.Applications.Save(ctx, &publishing.Application{ID: newID(), Name: DemoApplicationName})
		if err != nil {
			return nil, fmt.Errorf("seed application: %w", err)
		}
		res.ApplicationID = app.ID
		res.ApplicationCreated = true
		logger.InfoContext(ctx, "seeded application", "application_id", app.ID)
	}

	_, err = s.AdminUsers.FindByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "admin user already exists", "email", adminEmail)
		return res, nil
	case !errors.Is(err, publishing.ErrNotFound):
		return nil, fmt.Errorf("find admin user: %w", err)
	}

	hash, err := s.Passwords.Hash(adminPassword)
	if err != nil {
		return nil, err
	}
	if _, err := s.AdminUsers.Save(ctx, &publishing.AdminUser{
		ID:                    newID(),
		Email:                 adminEmail,
		PasswordHash:          hash,
		AllowedApplicationIDs: []string{res.ApplicationID},
	}); err != nil {
		return nil, fmt.Errorf("seed admin user: %w", err)
	}
	res.AdminCreated = true
	logger.InfoContext(ctx, "seeded admin user", "email", adminEmail, "application_id", res.ApplicationID)
	return res, nil
}
