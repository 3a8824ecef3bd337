package publishing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Application operations

func (s *service) ListApplications(ctx context.Context) ([]*Application, error) {
	apps, err := s.applications.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

func (s *service) GetApplication(ctx context.Context, id string) (*Application, error) {
	app, err := s.applications.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("get application", "application not found")
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (s *service) CreateApplication(ctx context.Context, req CreateApplicationRequest) (*Application, error) {
	const op = "create application"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, badRequest(op, "name is required")
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = s.newID()
	} else {
		exists, err := s.applications.ExistsByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if exists {
			return nil, badRequest(op, "application id already exists")
		}
	}

	saved, err := s.applications.Save(ctx, &Application{
		ID:         id,
		Name:       name,
		WebsiteURL: trimToNil(req.WebsiteURL),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.InfoContext(ctx, "application created", "application_id", saved.ID)
	return saved, nil
}

func (s *service) UpdateApplication(ctx context.Context, req UpdateApplicationRequest) (*Application, error) {
	const op = "update application"

	existing, err := s.applications.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound(op, "application not found")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, badRequest(op, "name is required")
	}

	saved, err := s.applications.Save(ctx, &Application{
		ID:         existing.ID,
		Name:       name,
		WebsiteURL: trimToNil(req.WebsiteURL),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return saved, nil
}

func (s *service) DeleteApplication(ctx context.Context, id string) error {
	const op = "delete application"

	exists, err := s.applications.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return notFound(op, "application not found")
	}
	if err := s.applications.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.InfoContext(ctx, "application deleted", "application_id", id)
	return nil
}
