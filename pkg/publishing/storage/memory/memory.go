package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-publish/pkg/publishing"
)

// DefaultContentType is recorded when the uploader declares none.
const DefaultContentType = "application/octet-stream"

type object struct {
	data        []byte
	contentType string
}

// Backend is an in-memory implementation of the publishing.MediaStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
	now     func() time.Time
}

// New creates a new in-memory storage backend. Presigned URLs are rooted at
// baseURL; an empty baseURL yields memory://objects URLs.
func New(baseURL string) *Backend {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &Backend{
		objects: make(map[string]object),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Upload reads the whole stream and records the bytes actually received.
func (b *Backend) Upload(ctx context.Context, params publishing.UploadParams) (*publishing.UploadResult, error) {
	data, err := io.ReadAll(params.Reader)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", params.ObjectKey, err)
	}

	contentType := params.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[params.ObjectKey] = object{data: data, contentType: contentType}
	return &publishing.UploadResult{
		ObjectKey:   params.ObjectKey,
		SizeBytes:   int64(len(data)),
		ContentType: contentType,
	}, nil
}

// PresignedURL returns a fake signed URL carrying the expiry instant.
// Like S3, it does not check that the object exists.
func (b *Backend) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		return "", fmt.Errorf("presign %s: expiry must be positive", objectKey)
	}
	expires := b.now().Add(expiry).Unix()
	return fmt.Sprintf("%s/%s?expires=%d", b.baseURL, objectKey, expires), nil
}

// Get returns the stored bytes and content type of objectKey.
func (b *Backend) Get(objectKey string) ([]byte, string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, ok := b.objects[objectKey]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.data...), obj.contentType, true
}

// Len returns the number of stored objects.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
