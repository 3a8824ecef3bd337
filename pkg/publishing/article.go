package publishing

import (
	"context"
	"errors"
	"fmt"
)

// Article operations

func (s *service) CreateArticle(ctx context.Context, req CreateArticleRequest, allowed []string) (*Article, error) {
	if err := Authorize(req.ApplicationID, allowed); err != nil {
		return nil, err
	}

	now := s.now()
	status := defaultStatus(req.Status)
	article := &Article{
		ID:            s.newID(),
		ApplicationID: req.ApplicationID,
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		BannerURL:     trimToNil(req.BannerURL),
		Status:        status,
		PublishedAt:   PublishedAtOnCreate(status, now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	saved, err := s.articles.Save(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	s.logger.InfoContext(ctx, "article created", "application_id", saved.ApplicationID, "id", saved.ID, "status", saved.Status)
	return saved, nil
}

func (s *service) UpdateArticle(ctx context.Context, req UpdateArticleRequest, allowed []string) (*Article, error) {
	if err := Authorize(req.ApplicationID, allowed); err != nil {
		return nil, err
	}

	existing, err := s.loadArticle(ctx, "update article", req.ID, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := defaultStatus(req.Status)
	updated := &Article{
		ID:            existing.ID,
		ApplicationID: existing.ApplicationID,
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		BannerURL:     trimToNil(req.BannerURL),
		Status:        status,
		PublishedAt:   PublishedAtOnTransition(existing.Status, status, existing.PublishedAt, now),
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     now,
	}

	saved, err := s.articles.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	s.logger.DebugContext(ctx, "article updated", "application_id", saved.ApplicationID, "id", saved.ID, "status", saved.Status)
	return saved, nil
}

func (s *service) ChangeArticleStatus(ctx context.Context, req ChangeStatusRequest, allowed []string) (*Article, error) {
	if err := Authorize(req.ApplicationID, allowed); err != nil {
		return nil, err
	}

	existing, err := s.loadArticle(ctx, "change article status", req.ID, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updated := *existing
	updated.Status = req.Status
	updated.PublishedAt = PublishedAtOnTransition(existing.Status, req.Status, existing.PublishedAt, now)
	updated.UpdatedAt = now

	saved, err := s.articles.Save(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("change article status: %w", err)
	}
	s.logger.InfoContext(ctx, "article status changed", "application_id", saved.ApplicationID, "id", saved.ID, "from", existing.Status, "to", saved.Status)
	return saved, nil
}

func (s *service) GetArticleBySlug(ctx context.Context, applicationID, slug string) (*Article, error) {
	article, err := s.articles.FindBySlug(ctx, applicationID, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("get article", "article not found")
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

func (s *service) ListArticles(ctx context.Context, applicationID string, status *ContentStatus, page PageRequest) (*Page[*Article], error) {
	slice, err := s.articles.FindPage(ctx, page.query(applicationID, status))
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return NewPage(slice, identity[*Article]), nil
}

func (s *service) loadArticle(ctx context.Context, op, id, applicationID string) (*Article, error) {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound(op, "article not found")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if article.ApplicationID != applicationID {
		return nil, notFound(op, "article not found")
	}
	return article, nil
}
