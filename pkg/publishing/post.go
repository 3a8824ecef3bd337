package publishing

import (
	"context"
	"errors"
	"fmt"
)

// Post operations

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest, allowed []string) (*Post, error) {
	if err := Authorize(req.ApplicationID, allowed); err != nil {
		return nil, err
	}

	now := s.now()
	status := defaultStatus(req.Status)
	post := &Post{
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

	saved, err := s.posts.Save(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.logger.InfoContext(ctx, "post created", "application_id", saved.ApplicationID, "id", saved.ID, "status", saved.Status)
	return saved, nil
}

func (s *service) UpdatePost(ctx context.Context, req UpdatePostRequest, allowed []string) (*Post, error) {
	if err := Authorize(req.ApplicationID, allowed); err != nil {
		return nil, err
	}

	existing, err := s.loadPost(ctx, "update post", req.ID, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := defaultStatus(req.Status)
	updated := &Post{
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

	saved, err := s.posts.Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	s.logger.DebugContext(ctx, "post updated", "application_id", saved.ApplicationID, "id", saved.ID, "status", saved.Status)
	return saved, nil
}

func (s *service) ChangePostStatus(ctx context.Context, req ChangeStatusRequest, allowed []string) (*Post, error) {
	if err := Authorize(req.ApplicationID, allowed); err != nil {
		return nil, err
	}

	existing, err := s.loadPost(ctx, "change post status", req.ID, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updated := *existing
	updated.Status = req.Status
	updated.PublishedAt = PublishedAtOnTransition(existing.Status, req.Status, existing.PublishedAt, now)
	updated.UpdatedAt = now

	saved, err := s.posts.Save(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("change post status: %w", err)
	}
	s.logger.InfoContext(ctx, "post status changed", "application_id", saved.ApplicationID, "id", saved.ID, "from", existing.Status, "to", saved.Status)
	return saved, nil
}

func (s *service) GetPostBySlug(ctx context.Context, applicationID, slug string) (*Post, error) {
	post, err := s.posts.FindBySlug(ctx, applicationID, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("get post", "post not found")
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

func (s *service) ListPosts(ctx context.Context, applicationID string, status *ContentStatus, page PageRequest) (*Page[*Post], error) {
	slice, err := s.posts.FindPage(ctx, page.query(applicationID, status))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return NewPage(slice, identity[*Post]), nil
}

// loadPost fetches a post the caller may act on. A post owned by another
// application is reported as missing.
func (s *service) loadPost(ctx context.Context, op, id, applicationID string) (*Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound(op, "post not found")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if post.ApplicationID != applicationID {
		return nil, notFound(op, "post not found")
	}
	return post, nil
}
