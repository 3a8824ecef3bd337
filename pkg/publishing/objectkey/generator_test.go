package objectkey

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"image", KindImage},
		{"  IMAGE ", KindImage},
		{"Video", KindVideo},
		{"file", KindFile},
		{"pdf", KindFile},
		{"", KindFile},
		{"   ", KindFile},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKind(tt.in))
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "photo.png", "photo.png"},
		{"single spaces", "my file.png", "my-file.png"},
		{"whitespace run", "my \t  file.png", "my-file.png"},
		{"leading and trailing", " a b ", "-a-b-"},
		{"other characters kept", "a/b:c?.txt", "a/b:c?.txt"},
		{"empty", "", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("media key layout", func(t *testing.T) {
		key := Build("app-1", "Image", "my file.png", now, "R")
		assert.Equal(t, "app-1/image/2024/03/R-my-file.png", key)
	})

	t.Run("unknown kind falls back to file", func(t *testing.T) {
		key := Build("app-1", "archive", "a.zip", now, "R")
		assert.Equal(t, "app-1/file/2024/03/R-a.zip", key)
	})

	t.Run("missing name", func(t *testing.T) {
		key := Build("app-1", "video", "", now, "R")
		assert.Equal(t, "app-1/video/2024/03/R-file", key)
	})

	t.Run("uses UTC month", func(t *testing.T) {
		local := time.Date(2024, 4, 1, 1, 0, 0, 0, time.FixedZone("plus3", 3*3600))
		key := Build("app-1", "image", "x.png", local, "R")
		assert.Equal(t, "app-1/image/2024/03/R-x.png", key)
	})

	t.Run("is deterministic", func(t *testing.T) {
		a := Build("app-1", "image", "x y.png", now, "R")
		b := Build("app-1", "image", "x y.png", now, "R")
		assert.Equal(t, a, b)
	})
}

func TestBuildVideo(t *testing.T) {
	now := time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "app-1/2023/11/R-clip-one.mp4", BuildVideo("app-1", "clip one.mp4", now, "R"))
	assert.Equal(t, "app-1/2023/11/R-file", BuildVideo("app-1", "", now, "R"))
}

func TestBuilder(t *testing.T) {
	t.Run("uses injected sources", func(t *testing.T) {
		b := &Builder{
			Now:   func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) },
			NewID: func() string { return "fixed" },
		}
		assert.Equal(t, "app/image/2024/03/fixed-a.png", b.Media("app", "image", "a.png"))
		assert.Equal(t, "app/2024/03/fixed-a.mp4", b.Video("app", "a.mp4"))
	})

	t.Run("defaults to random ids", func(t *testing.T) {
		b := NewBuilder()
		first := b.Media("app", "file", "a.txt")
		second := b.Media("app", "file", "a.txt")
		assert.NotEqual(t, first, second)

		parts := strings.Split(first, "/")
		require.Len(t, parts, 5)
		id := strings.TrimSuffix(parts[4], "-a.txt")
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})
}
