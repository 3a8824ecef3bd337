package publishing

import (
	"context"
	"fmt"
)

func (s *service) UploadMedia(ctx context.Context, req UploadMediaRequest, allowed []string) (*MediaUpload, error) {
	if err := Authorize(req.ApplicationID, allowed); err != nil {
		return nil, err
	}
	if req.Reader == nil {
		return nil, badRequest("upload media", "file is required")
	}

	objectKey := s.keys.Media(req.ApplicationID, req.Kind, req.OriginalFileName)
	result, err := s.store.Upload(ctx, UploadParams{
		ObjectKey:   objectKey,
		Reader:      req.Reader,
		SizeHint:    req.SizeBytes,
		ContentType: req.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload media %s: %w", objectKey, err)
	}

	s.logger.InfoContext(ctx, "media uploaded", "application_id", req.ApplicationID, "object_key", result.ObjectKey, "size", result.SizeBytes)
	return &MediaUpload{
		ObjectKey:   result.ObjectKey,
		SizeBytes:   result.SizeBytes,
		ContentType: result.ContentType,
		URL:         s.publicMediaURL(objectKey),
	}, nil
}

// publicMediaURL joins the public storage base, bucket and key. An empty
// bucket means the base already addresses the object root.
func (s *service) publicMediaURL(objectKey string) string {
	if s.bucket == "" {
		return fmt.Sprintf("%s/%s", s.publicURL, objectKey)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectKey)
}
