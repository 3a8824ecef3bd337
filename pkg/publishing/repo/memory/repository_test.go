package memory_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-publish/pkg/publishing"
	"github.com/tendant/simple-publish/pkg/publishing/repo/memory"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(minutes int) *time.Time {
	t := base.Add(time.Duration(minutes) * time.Minute)
	return &t
}

func post(id, app, slug string, status publishing.ContentStatus, publishedAt *time.Time, createdMinute int) *publishing.Post {
	return &publishing.Post{
		ID:            id,
		ApplicationID: app,
		Title:         "t-" + id,
		Slug:          slug,
		Status:        status,
		PublishedAt:   publishedAt,
		CreatedAt:     *at(createdMinute),
		UpdatedAt:     *at(createdMinute),
	}
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save and find", func(t *testing.T) {
		repo := memory.NewPostRepository()
		_, err := repo.Save(ctx, post("p1", "app", "hello", publishing.StatusDraft, nil, 0))
		require.NoError(t, err)

		got, err := repo.FindByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Slug)

		got, err = repo.FindBySlug(ctx, "app", "hello")
		require.NoError(t, err)
		assert.Equal(t, "p1", got.ID)

		_, err = repo.FindBySlug(ctx, "other", "hello")
		assert.True(t, errors.Is(err, publishing.ErrNotFound))

		_, err = repo.FindByID(ctx, "missing")
		assert.True(t, errors.Is(err, publishing.ErrNotFound))
	})

	t.Run("returns copies", func(t *testing.T) {
		repo := memory.NewPostRepository()
		p := post("p1", "app", "hello", publishing.StatusDraft, nil, 0)
		_, err := repo.Save(ctx, p)
		require.NoError(t, err)

		p.Title = "changed"
		got, err := repo.FindByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "t-p1", got.Title)
	})

	t.Run("slug unique per application", func(t *testing.T) {
		repo := memory.NewPostRepository()
		_, err := repo.Save(ctx, post("p1", "app", "hello", publishing.StatusDraft, nil, 0))
		require.NoError(t, err)

		_, err = repo.Save(ctx, post("p2", "app", "hello", publishing.StatusDraft, nil, 1))
		assert.True(t, errors.Is(err, publishing.ErrBadRequest))

		_, err = repo.Save(ctx, post("p3", "other", "hello", publishing.StatusDraft, nil, 1))
		assert.NoError(t, err)

		// re-saving the same item keeps its slug
		_, err = repo.Save(ctx, post("p1", "app", "hello", publishing.StatusPublished, at(5), 0))
		assert.NoError(t, err)
	})

	t.Run("ordering and paging", func(t *testing.T) {
		repo := memory.NewPostRepository()
		items := []*publishing.Post{
			post("draft-new", "app", "a", publishing.StatusDraft, nil, 50),
			post("pub-old", "app", "b", publishing.StatusPublished, at(10), 1),
			post("pub-new", "app", "c", publishing.StatusPublished, at(30), 2),
			post("draft-old", "app", "d", publishing.StatusDraft, nil, 3),
			post("foreign", "other", "e", publishing.StatusPublished, at(40), 4),
		}
		for _, p := range items {
			_, err := repo.Save(ctx, p)
			require.NoError(t, err)
		}

		all, err := repo.FindPage(ctx, publishing.PageQuery{ApplicationID: "app", Page: 0, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(4), all.TotalElements)
		ids := make([]string, 0, len(all.Items))
		for _, p := range all.Items {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []string{"pub-new", "pub-old", "draft-new", "draft-old"}, ids)

		published, err := repo.FindPage(ctx, publishing.PageQuery{
			ApplicationID: "app",
			Status:        publishing.StatusPtr(publishing.StatusPublished),
			Page:          0,
			Size:          1,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), published.TotalElements)
		require.Len(t, published.Items, 1)
		assert.Equal(t, "pub-new", published.Items[0].ID)

		second, err := repo.FindPage(ctx, publishing.PageQuery{ApplicationID: "app", Page: 1, Size: 3})
		require.NoError(t, err)
		require.Len(t, second.Items, 1)
		assert.Equal(t, "draft-old", second.Items[0].ID)

		beyond, err := repo.FindPage(ctx, publishing.PageQuery{ApplicationID: "app", Page: 9, Size: 3})
		require.NoError(t, err)
		assert.Empty(t, beyond.Items)
		assert.Equal(t, int64(4), beyond.TotalElements)
	})
}

func TestPostRepositoryHugePages(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPostRepository()
	for _, p := range []*publishing.Post{
		post("p1", "app-1", "a", publishing.StatusPublished, at(1), 1),
		post("p2", "app-1", "b", publishing.StatusPublished, at(2), 2),
	} {
		_, err := repo.Save(ctx, p)
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		page int
		size int
	}{
		{"offset wraps negative", 3074457345618258603, 3},
		{"offset wraps to zero", 4611686018427387904, 4},
		{"max page", math.MaxInt, 1},
		{"past the end", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slice, err := repo.FindPage(ctx, publishing.PageQuery{ApplicationID: "app-1", Page: tt.page, Size: tt.size})
			require.NoError(t, err)
			assert.Empty(t, slice.Items)
			assert.Equal(t, int64(2), slice.TotalElements)
			assert.Equal(t, tt.page, slice.Page)
		})
	}

	t.Run("huge size is capped", func(t *testing.T) {
		slice, err := repo.FindPage(ctx, publishing.PageQuery{ApplicationID: "app-1", Size: math.MaxInt})
		require.NoError(t, err)
		assert.Len(t, slice.Items, 2)
		assert.Equal(t, publishing.MaxPageSize, slice.Size)
	})
}

func TestVideoRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewVideoRepository()

	_, err := repo.Save(ctx, &publishing.Video{ID: "v1", ApplicationID: "app", Status: publishing.StatusDraft, CreatedAt: base})
	require.NoError(t, err)
	_, err = repo.Save(ctx, &publishing.Video{ID: "v2", ApplicationID: "app", Status: publishing.StatusPublished, PublishedAt: at(1), CreatedAt: base})
	require.NoError(t, err)

	page, err := repo.FindPage(ctx, publishing.PageQuery{ApplicationID: "app", Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "v2", page.Items[0].ID)

	_, err = repo.FindByID(ctx, "nope")
	assert.True(t, errors.Is(err, publishing.ErrNotFound))
}

func TestApplicationRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewApplicationRepository()

	_, err := repo.FindFirst(ctx)
	assert.True(t, errors.Is(err, publishing.ErrNotFound))

	for _, id := range []string{"b", "a", "c"} {
		_, err := repo.Save(ctx, &publishing.Application{ID: id, Name: "App " + id})
		require.NoError(t, err)
	}

	first, err := repo.FindFirst(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", first.ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	exists, err := repo.ExistsByID(ctx, "b")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.DeleteByID(ctx, "b"))
	exists, err = repo.ExistsByID(ctx, "b")
	require.NoError(t, err)
	assert.False(t, exists)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[1].ID)
}

func TestAdminUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAdminUserRepository()

	user := &publishing.AdminUser{ID: "u1", Email: "admin@example.com", PasswordHash: "h", AllowedApplicationIDs: []string{"app"}}
	_, err := repo.Save(ctx, user)
	require.NoError(t, err)

	user.AllowedApplicationIDs[0] = "mutated"
	got, err := repo.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, got.AllowedApplicationIDs)

	_, err = repo.Save(ctx, &publishing.AdminUser{ID: "u2", Email: "admin@example.com"})
	assert.True(t, errors.Is(err, publishing.ErrBadRequest))

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, publishing.ErrNotFound))
}
