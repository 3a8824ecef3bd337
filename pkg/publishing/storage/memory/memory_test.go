package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-publish/pkg/publishing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestUpload(t *testing.T) {
	ctx := context.Background()
	b := New("")

	t.Run("records actual size", func(t *testing.T) {
		res, err := b.Upload(ctx, publishing.UploadParams{
			ObjectKey:   "app/2024/03/x-a.txt",
			Reader:      strings.NewReader("hello"),
			SizeHint:    999,
			ContentType: "text/plain",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.SizeBytes)
		assert.Equal(t, "text/plain", res.ContentType)
		assert.Equal(t, "app/2024/03/x-a.txt", res.ObjectKey)

		data, ct, ok := b.Get("app/2024/03/x-a.txt")
		require.True(t, ok)
		assert.Equal(t, "hello", string(data))
		assert.Equal(t, "text/plain", ct)
	})

	t.Run("defaults content type", func(t *testing.T) {
		res, err := b.Upload(ctx, publishing.UploadParams{ObjectKey: "k", Reader: strings.NewReader("")})
		require.NoError(t, err)
		assert.Equal(t, DefaultContentType, res.ContentType)
		assert.Equal(t, int64(0), res.SizeBytes)
	})

	t.Run("read failure", func(t *testing.T) {
		_, err := b.Upload(ctx, publishing.UploadParams{ObjectKey: "bad", Reader: failingReader{}})
		assert.Error(t, err)
		_, _, ok := b.Get("bad")
		assert.False(t, ok)
	})
}

func TestPresignedURL(t *testing.T) {
	b := New("http://localhost:9000/media/")
	b.now = func() time.Time { return time.Unix(1000, 0) }

	url, err := b.PresignedURL(context.Background(), "app/v.mp4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/media/app/v.mp4?expires=1060", url)

	_, err = b.PresignedURL(context.Background(), "app/v.mp4", 0)
	assert.Error(t, err)
}
