package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/tendant/simple-publish/pkg/publishing"
)

// Repositories bundles one in-memory implementation of every repository port.
type Repositories struct {
	Posts        *PostRepository
	Articles     *ArticleRepository
	Videos       *VideoRepository
	Applications *ApplicationRepository
	AdminUsers   *AdminUserRepository
}

// New creates empty in-memory repositories
func New() *Repositories {
	return &Repositories{
		Posts:        NewPostRepository(),
		Articles:     NewArticleRepository(),
		Videos:       NewVideoRepository(),
		Applications: NewApplicationRepository(),
		AdminUsers:   NewAdminUserRepository(),
	}
}

// Options wires every repository into a publishing service.
func (r *Repositories) Options() []publishing.Option {
	return []publishing.Option{
		publishing.WithPostRepository(r.Posts),
		publishing.WithArticleRepository(r.Articles),
		publishing.WithVideoRepository(r.Videos),
		publishing.WithApplicationRepository(r.Applications),
		publishing.WithAdminUserRepository(r.AdminUsers),
	}
}

// Post operations

// PostRepository implements publishing.PostRepository using in-memory storage
type PostRepository struct {
	t *table[*publishing.Post]
}

func NewPostRepository() *PostRepository {
	return &PostRepository{t: newTable(func(p *publishing.Post) row {
		return row{id: p.ID, applicationID: p.ApplicationID, slug: p.Slug, status: p.Status, publishedAt: p.PublishedAt, createdAt: p.CreatedAt}
	}, func(p *publishing.Post) *publishing.Post {
		c := *p
		return &c
	}, true)}
}

func (r *PostRepository) Save(ctx context.Context, post *publishing.Post) (*publishing.Post, error) {
	return r.t.save("save post", post)
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*publishing.Post, error) {
	if p, ok := r.t.get(id); ok {
		return p, nil
	}
	return nil, publishing.NewNotFound("find post", "post not found")
}

func (r *PostRepository) FindBySlug(ctx context.Context, applicationID, slug string) (*publishing.Post, error) {
	if p, ok := r.t.bySlug(applicationID, slug); ok {
		return p, nil
	}
	return nil, publishing.NewNotFound("find post", "post not found")
}

func (r *PostRepository) FindPage(ctx context.Context, q publishing.PageQuery) (*publishing.PageSlice[*publishing.Post], error) {
	return r.t.page(q), nil
}

// Article operations

// ArticleRepository implements publishing.ArticleRepository using in-memory storage
type ArticleRepository struct {
	t *table[*publishing.Article]
}

func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{t: newTable(func(a *publishing.Article) row {
		return row{id: a.ID, applicationID: a.ApplicationID, slug: a.Slug, status: a.Status, publishedAt: a.PublishedAt, createdAt: a.CreatedAt}
	}, func(a *publishing.Article) *publishing.Article {
		c := *a
		return &c
	}, true)}
}

func (r *ArticleRepository) Save(ctx context.Context, article *publishing.Article) (*publishing.Article, error) {
	return r.t.save("save article", article)
}

func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*publishing.Article, error) {
	if a, ok := r.t.get(id); ok {
		return a, nil
	}
	return nil, publishing.NewNotFound("find article", "article not found")
}

func (r *ArticleRepository) FindBySlug(ctx context.Context, applicationID, slug string) (*publishing.Article, error) {
	if a, ok := r.t.bySlug(applicationID, slug); ok {
		return a, nil
	}
	return nil, publishing.NewNotFound("find article", "article not found")
}

func (r *ArticleRepository) FindPage(ctx context.Context, q publishing.PageQuery) (*publishing.PageSlice[*publishing.Article], error) {
	return r.t.page(q), nil
}

// Video operations

// VideoRepository implements publishing.VideoRepository using in-memory storage
type VideoRepository struct {
	t *table[*publishing.Video]
}

func NewVideoRepository() *VideoRepository {
	return &VideoRepository{t: newTable(func(v *publishing.Video) row {
		return row{id: v.ID, applicationID: v.ApplicationID, status: v.Status, publishedAt: v.PublishedAt, createdAt: v.CreatedAt}
	}, func(v *publishing.Video) *publishing.Video {
		c := *v
		return &c
	}, false)}
}

func (r *VideoRepository) Save(ctx context.Context, video *publishing.Video) (*publishing.Video, error) {
	return r.t.save("save video", video)
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*publishing.Video, error) {
	if v, ok := r.t.get(id); ok {
		return v, nil
	}
	return nil, publishing.NewNotFound("find video", "video not found")
}

func (r *VideoRepository) FindPage(ctx context.Context, q publishing.PageQuery) (*publishing.PageSlice[*publishing.Video], error) {
	return r.t.page(q), nil
}

// Application operations

// ApplicationRepository implements publishing.ApplicationRepository using in-memory storage
type ApplicationRepository struct {
	mu   sync.RWMutex
	apps map[string]*publishing.Application
}

func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{apps: make(map[string]*publishing.Application)}
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*publishing.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, publishing.NewNotFound("find application", "application not found")
	}
	appCopy := *app
	return &appCopy, nil
}

func (r *ApplicationRepository) FindFirst(ctx context.Context) (*publishing.Application, error) {
	apps, _ := r.FindAll(ctx)
	if len(apps) == 0 {
		return nil, publishing.NewNotFound("find first application", "no application")
	}
	return apps[0], nil
}

// FindAll returns every application ordered by id.
func (r *ApplicationRepository) FindAll(ctx context.Context) ([]*publishing.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	apps := make([]*publishing.Application, 0, len(r.apps))
	for _, app := range r.apps {
		appCopy := *app
		apps = append(apps, &appCopy)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps, nil
}

func (r *ApplicationRepository) Save(ctx context.Context, app *publishing.Application) (*publishing.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appCopy := *app
	r.apps[app.ID] = &appCopy
	out := appCopy
	return &out, nil
}

func (r *ApplicationRepository) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.apps, id)
	return nil
}

func (r *ApplicationRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.apps[id]
	return ok, nil
}

func (r *ApplicationRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.apps)), nil
}

// Admin user operations

// AdminUserRepository implements publishing.AdminUserRepository using in-memory storage
type AdminUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*publishing.AdminUser
}

func NewAdminUserRepository() *AdminUserRepository {
	return &AdminUserRepository{byEmail: make(map[string]*publishing.AdminUser)}
}

func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*publishing.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, publishing.NewNotFound("find admin user", "admin user not found")
	}
	return cloneUser(user), nil
}

// Save stores user keyed by email. A different id under an existing email is rejected.
func (r *AdminUserRepository) Save(ctx context.Context, user *publishing.AdminUser) (*publishing.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byEmail[user.Email]; ok && existing.ID != user.ID {
		return nil, publishing.NewBadRequest("save admin user", "email already exists")
	}
	r.byEmail[user.Email] = cloneUser(user)
	return cloneUser(user), nil
}

func cloneUser(u *publishing.AdminUser) *publishing.AdminUser {
	c := *u
	c.AllowedApplicationIDs = slices.Clone(u.AllowedApplicationIDs)
	return &c
}
