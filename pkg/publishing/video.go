package publishing

import (
	"context"
	"errors"
	"fmt"
)

// Video operations

func (s *service) UploadVideo(ctx context.Context, req UploadVideoRequest, allowed []string) (*Video, error) {
	if err := Authorize(req.ApplicationID, allowed); err != nil {
		return nil, err
	}
	if req.Reader == nil {
		return nil, badRequest("upload video", "file is required")
	}

	now := s.now()
	objectKey := s.keys.Video(req.ApplicationID, req.OriginalFileName)
	result, err := s.store.Upload(ctx, UploadParams{
		ObjectKey:   objectKey,
		Reader:      req.Reader,
		SizeHint:    req.SizeBytes,
		ContentType: req.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload video %s: %w", objectKey, err)
	}

	status := defaultStatus(req.Status)
	video := &Video{
		ID:            s.newID(),
		ApplicationID: req.ApplicationID,
		Title:         req.Title,
		Description:   trimToNil(req.Description),
		Status:        status,
		PublishedAt:   PublishedAtOnCreate(status, now),
		ObjectKey:     result.ObjectKey,
		ContentType:   result.ContentType,
		SizeBytes:     result.SizeBytes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	saved, err := s.videos.Save(ctx, video)
	if err != nil {
		return nil, fmt.Errorf("save video: %w", err)
	}
	s.logger.InfoContext(ctx, "video uploaded", "application_id", saved.ApplicationID, "id", saved.ID, "object_key", saved.ObjectKey, "size", saved.SizeBytes)
	return saved, nil
}

func (s *service) ChangeVideoStatus(ctx context.Context, req ChangeStatusRequest, allowed []string) (*Video, error) {
	if err := Authorize(req.ApplicationID, allowed); err != nil {
		return nil, err
	}

	const op = "change video status"
	existing, err := s.videos.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound(op, "video not found")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing.ApplicationID != req.ApplicationID {
		return nil, notFound(op, "video not found")
	}

	now := s.now()
	updated := *existing
	updated.Status = req.Status
	updated.PublishedAt = PublishedAtOnTransition(existing.Status, req.Status, existing.PublishedAt, now)
	updated.UpdatedAt = now

	saved, err := s.videos.Save(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.InfoContext(ctx, "video status changed", "application_id", saved.ApplicationID, "id", saved.ID, "from", existing.Status, "to", saved.Status)
	return saved, nil
}

func (s *service) ListVideos(ctx context.Context, applicationID string, status *ContentStatus, page PageRequest) (*Page[*Video], error) {
	slice, err := s.videos.FindPage(ctx, page.query(applicationID, status))
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return NewPage(slice, identity[*Video]), nil
}

func (s *service) GetVideoURL(ctx context.Context, objectKey string) (string, error) {
	url, err := s.store.PresignedURL(ctx, objectKey, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectKey, err)
	}
	return url, nil
}
