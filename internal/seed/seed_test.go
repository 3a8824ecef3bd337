package seed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-publish/pkg/publishing"
	"github.com/tendant/simple-publish/pkg/publishing/repo/memory"
)

type prefixHasher struct{}

func (prefixHasher) Hash(raw string) (string, error) { return "hash:" + raw, nil }

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("boom") }

func newSeeder(repos *memory.Repositories) *Seeder {
	seq := 0
	return &Seeder{
		Applications: repos.Applications,
		AdminUsers:   repos.AdminUsers,
		Passwords:    prefixHasher{},
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("empty installation", func(t *testing.T) {
		repos := memory.New()
		res, err := newSeeder(repos).Run(ctx, "admin@example.com", "Admin123!")
		require.NoError(t, err)
		assert.Equal(t, &Result{ApplicationID: "id-1", ApplicationCreated: true, AdminCreated: true}, res)

		app, err := repos.Applications.FindByID(ctx, "id-1")
		require.NoError(t, err)
		assert.Equal(t, DemoApplicationName, app.Name)
		assert.Nil(t, app.WebsiteURL)

		admin, err := repos.AdminUsers.FindByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hash:Admin123!", admin.PasswordHash)
		assert.Equal(t, []string{"id-1"}, admin.AllowedApplicationIDs)
	})

	t.Run("second run changes nothing", func(t *testing.T) {
		repos := memory.New()
		s := newSeeder(repos)
		_, err := s.Run(ctx, "admin@example.com", "Admin123!")
		require.NoError(t, err)

		res, err := s.Run(ctx, "admin@example.com", "other")
		require.NoError(t, err)
		assert.Equal(t, &Result{ApplicationID: "id-1"}, res)

		n, err := repos.Applications.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		admin, err := repos.AdminUsers.FindByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hash:Admin123!", admin.PasswordHash)
	})

	t.Run("existing application is reused", func(t *testing.T) {
		repos := memory.New()
		_, err := repos.Applications.Save(ctx, &publishing.Application{ID: "blog", Name: "Blog"})
		require.NoError(t, err)

		res, err := newSeeder(repos).Run(ctx, "admin@example.com", "Admin123!")
		require.NoError(t, err)
		assert.Equal(t, "blog", res.ApplicationID)
		assert.False(t, res.ApplicationCreated)
		assert.True(t, res.AdminCreated)
	})

	t.Run("hash failure", func(t *testing.T) {
		repos := memory.New()
		s := newSeeder(repos)
		s.Passwords = failingHasher{}
		_, err := s.Run(ctx, "admin@example.com", "Admin123!")
		assert.Error(t, err)
	})
}
