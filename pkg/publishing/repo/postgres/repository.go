package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tendant/simple-publish/pkg/publishing"
)

// DBTX is an interface that allows us to use either a connection pool or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// Repositories bundles the PostgreSQL implementation of every repository port.
type Repositories struct {
	Posts        *PostRepository
	Articles     *ArticleRepository
	Videos       *VideoRepository
	Applications *ApplicationRepository
	AdminUsers   *AdminUserRepository
}

// New creates PostgreSQL repositories sharing db
func New(db DBTX) *Repositories {
	return &Repositories{
		Posts:        &PostRepository{t: textTable{db: db, table: "posts", kind: "post"}},
		Articles:     &ArticleRepository{t: textTable{db: db, table: "articles", kind: "article"}},
		Videos:       &VideoRepository{db: db},
		Applications: &ApplicationRepository{db: db},
		AdminUsers:   &AdminUserRepository{db: db},
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

// orderBy lists published items newest first, then drafts, newest first.
const orderBy = "ORDER BY published_at DESC NULLS LAST, created_at DESC, id"

// Error handling helper
func handlePostgresError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return publishing.NewNotFound(op, "record not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch {
			case strings.Contains(pgErr.ConstraintName, "slug"):
				return publishing.NewBadRequest(op, "slug already exists")
			case strings.Contains(pgErr.ConstraintName, "email"):
				return publishing.NewBadRequest(op, "email already exists")
			default:
				return publishing.NewBadRequest(op, "duplicate entry")
			}
		case "22001": // string_data_right_truncation
			if pgErr.ColumnName != "" {
				return publishing.NewBadRequest(op, fmt.Sprintf("value too long for field %s", pgErr.ColumnName))
			}
			return publishing.NewBadRequest(op, "value too long")
		case "23502": // not_null_violation
			return publishing.NewBadRequest(op, fmt.Sprintf("required field %s is missing", pgErr.ColumnName))
		case "42P01": // undefined_table
			return fmt.Errorf("%s: table does not exist - database migration required: %w", op, err)
		}
	}

	return fmt.Errorf("database error in %s: %w", op, err)
}

func statusArg(status *publishing.ContentStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

// Post operations

// PostRepository implements publishing.PostRepository using PostgreSQL
type PostRepository struct {
	t textTable
}

func (r *PostRepository) Save(ctx context.Context, post *publishing.Post) (*publishing.Post, error) {
	return r.t.save(ctx, post)
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*publishing.Post, error) {
	return r.t.findByID(ctx, id)
}

func (r *PostRepository) FindBySlug(ctx context.Context, applicationID, slug string) (*publishing.Post, error) {
	return r.t.findBySlug(ctx, applicationID, slug)
}

func (r *PostRepository) FindPage(ctx context.Context, q publishing.PageQuery) (*publishing.PageSlice[*publishing.Post], error) {
	return r.t.findPage(ctx, q)
}

// Article operations

// ArticleRepository implements publishing.ArticleRepository using PostgreSQL.
// Articles share the post row shape, so the table helper works on Post values
// and converts at the boundary.
type ArticleRepository struct {
	t textTable
}

func (r *ArticleRepository) Save(ctx context.Context, article *publishing.Article) (*publishing.Article, error) {
	saved, err := r.t.save(ctx, (*publishing.Post)(article))
	if err != nil {
		return nil, err
	}
	return (*publishing.Article)(saved), nil
}

func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*publishing.Article, error) {
	p, err := r.t.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return (*publishing.Article)(p), nil
}

func (r *ArticleRepository) FindBySlug(ctx context.Context, applicationID, slug string) (*publishing.Article, error) {
	p, err := r.t.findBySlug(ctx, applicationID, slug)
	if err != nil {
		return nil, err
	}
	return (*publishing.Article)(p), nil
}

func (r *ArticleRepository) FindPage(ctx context.Context, q publishing.PageQuery) (*publishing.PageSlice[*publishing.Article], error) {
	slice, err := r.t.findPage(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]*publishing.Article, 0, len(slice.Items))
	for _, p := range slice.Items {
		items = append(items, (*publishing.Article)(p))
	}
	return &publishing.PageSlice[*publishing.Article]{
		Items:         items,
		TotalElements: slice.TotalElements,
		Page:          slice.Page,
		Size:          slice.Size,
	}, nil
}

// textTable holds the queries shared by posts and articles.
type textTable struct {
	db    DBTX
	table string
	kind  string
}

const textColumns = "id, application_id, title, slug, content, banner_url, status, published_at, created_at, updated_at"

func scanText(row pgx.Row) (*publishing.Post, error) {
	var p publishing.Post
	var status string
	err := row.Scan(&p.ID, &p.ApplicationID, &p.Title, &p.Slug, &p.Content, &p.BannerURL,
		&status, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = publishing.ContentStatus(status)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if p.PublishedAt != nil {
		t := p.PublishedAt.UTC()
		p.PublishedAt = &t
	}
	return &p, nil
}

func (t textTable) save(ctx context.Context, p *publishing.Post) (*publishing.Post, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, slug = EXCLUDED.slug, content = EXCLUDED.content,
			banner_url = EXCLUDED.banner_url, status = EXCLUDED.status,
			published_at = EXCLUDED.published_at, updated_at = EXCLUDED.updated_at
		RETURNING %s`, t.table, textColumns, textColumns)

	saved, err := scanText(t.db.QueryRow(ctx, query,
		p.ID, p.ApplicationID, p.Title, p.Slug, p.Content, p.BannerURL,
		string(p.Status), p.PublishedAt, p.CreatedAt, p.UpdatedAt))
	if err != nil {
		return nil, handlePostgresError("save "+t.kind, err)
	}
	return saved, nil
}

func (t textTable) findByID(ctx context.Context, id string) (*publishing.Post, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", textColumns, t.table)
	p, err := scanText(t.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, handlePostgresError("find "+t.kind, err)
	}
	return p, nil
}

func (t textTable) findBySlug(ctx context.Context, applicationID, slug string) (*publishing.Post, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE application_id = $1 AND slug = $2", textColumns, t.table)
	p, err := scanText(t.db.QueryRow(ctx, query, applicationID, slug))
	if err != nil {
		return nil, handlePostgresError("find "+t.kind+" by slug", err)
	}
	return p, nil
}

func (t textTable) findPage(ctx context.Context, q publishing.PageQuery) (*publishing.PageSlice[*publishing.Post], error) {
	q = q.Clamp()
	where := "application_id = $1 AND ($2::text IS NULL OR status = $2::text)"
	status := statusArg(q.Status)

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", t.table, where)
	if err := t.db.QueryRow(ctx, countQuery, q.ApplicationID, status).Scan(&total); err != nil {
		return nil, handlePostgresError("count "+t.kind, err)
	}
	offset, ok := q.Offset()
	if !ok {
		return &publishing.PageSlice[*publishing.Post]{Items: []*publishing.Post{}, TotalElements: total, Page: q.Page, Size: q.Size}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s %s LIMIT $3 OFFSET $4", textColumns, t.table, where, orderBy)
	rows, err := t.db.Query(ctx, query, q.ApplicationID, status, q.Size, offset)
	if err != nil {
		return nil, handlePostgresError("list "+t.kind, err)
	}
	defer rows.Close()

	items := make([]*publishing.Post, 0, q.Size)
	for rows.Next() {
		p, err := scanText(rows)
		if err != nil {
			return nil, handlePostgresError("scan "+t.kind, err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list "+t.kind, err)
	}

	return &publishing.PageSlice[*publishing.Post]{
		Items:         items,
		TotalElements: total,
		Page:          q.Page,
		Size:          q.Size,
	}, nil
}

// Video operations

// VideoRepository implements publishing.VideoRepository using PostgreSQL
type VideoRepository struct {
	db DBTX
}

const videoColumns = "id, application_id, title, description, status, published_at, object_key, content_type, size_bytes, created_at, updated_at"

func scanVideo(row pgx.Row) (*publishing.Video, error) {
	var v publishing.Video
	var status string
	err := row.Scan(&v.ID, &v.ApplicationID, &v.Title, &v.Description, &status, &v.PublishedAt,
		&v.ObjectKey, &v.ContentType, &v.SizeBytes, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Status = publishing.ContentStatus(status)
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	if v.PublishedAt != nil {
		t := v.PublishedAt.UTC()
		v.PublishedAt = &t
	}
	return &v, nil
}

func (r *VideoRepository) Save(ctx context.Context, v *publishing.Video) (*publishing.Video, error) {
	query := `
		INSERT INTO videos (` + videoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, description = EXCLUDED.description, status = EXCLUDED.status,
			published_at = EXCLUDED.published_at, updated_at = EXCLUDED.updated_at
		RETURNING ` + videoColumns

	saved, err := scanVideo(r.db.QueryRow(ctx, query,
		v.ID, v.ApplicationID, v.Title, v.Description, string(v.Status), v.PublishedAt,
		v.ObjectKey, v.ContentType, v.SizeBytes, v.CreatedAt, v.UpdatedAt))
	if err != nil {
		return nil, handlePostgresError("save video", err)
	}
	return saved, nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*publishing.Video, error) {
	v, err := scanVideo(r.db.QueryRow(ctx, "SELECT "+videoColumns+" FROM videos WHERE id = $1", id))
	if err != nil {
		return nil, handlePostgresError("find video", err)
	}
	return v, nil
}

func (r *VideoRepository) FindPage(ctx context.Context, q publishing.PageQuery) (*publishing.PageSlice[*publishing.Video], error) {
	q = q.Clamp()
	where := "application_id = $1 AND ($2::text IS NULL OR status = $2::text)"
	status := statusArg(q.Status)

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM videos WHERE "+where, q.ApplicationID, status).Scan(&total); err != nil {
		return nil, handlePostgresError("count videos", err)
	}
	offset, ok := q.Offset()
	if !ok {
		return &publishing.PageSlice[*publishing.Video]{Items: []*publishing.Video{}, TotalElements: total, Page: q.Page, Size: q.Size}, nil
	}

	rows, err := r.db.Query(ctx, "SELECT "+videoColumns+" FROM videos WHERE "+where+" "+orderBy+" LIMIT $3 OFFSET $4",
		q.ApplicationID, status, q.Size, offset)
	if err != nil {
		return nil, handlePostgresError("list videos", err)
	}
	defer rows.Close()

	items := make([]*publishing.Video, 0, q.Size)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, handlePostgresError("scan video", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list videos", err)
	}

	return &publishing.PageSlice[*publishing.Video]{
		Items:         items,
		TotalElements: total,
		Page:          q.Page,
		Size:          q.Size,
	}, nil
}

// Application operations

// ApplicationRepository implements publishing.ApplicationRepository using PostgreSQL
type ApplicationRepository struct {
	db DBTX
}

func scanApplication(row pgx.Row) (*publishing.Application, error) {
	var a publishing.Application
	if err := row.Scan(&a.ID, &a.Name, &a.WebsiteURL); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*publishing.Application, error) {
	a, err := scanApplication(r.db.QueryRow(ctx, "SELECT id, name, website_url FROM applications WHERE id = $1", id))
	if err != nil {
		return nil, handlePostgresError("find application", err)
	}
	return a, nil
}

func (r *ApplicationRepository) FindFirst(ctx context.Context) (*publishing.Application, error) {
	a, err := scanApplication(r.db.QueryRow(ctx, "SELECT id, name, website_url FROM applications ORDER BY id LIMIT 1"))
	if err != nil {
		return nil, handlePostgresError("find first application", err)
	}
	return a, nil
}

func (r *ApplicationRepository) FindAll(ctx context.Context) ([]*publishing.Application, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name, website_url FROM applications ORDER BY id")
	if err != nil {
		return nil, handlePostgresError("list applications", err)
	}
	defer rows.Close()

	apps := make([]*publishing.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, handlePostgresError("scan application", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list applications", err)
	}
	return apps, nil
}

func (r *ApplicationRepository) Save(ctx context.Context, app *publishing.Application) (*publishing.Application, error) {
	query := `
		INSERT INTO applications (id, name, website_url) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, website_url = EXCLUDED.website_url
		RETURNING id, name, website_url`
	a, err := scanApplication(r.db.QueryRow(ctx, query, app.ID, app.Name, app.WebsiteURL))
	if err != nil {
		return nil, handlePostgresError("save application", err)
	}
	return a, nil
}

func (r *ApplicationRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM applications WHERE id = $1", id); err != nil {
		return handlePostgresError("delete application", err)
	}
	return nil
}

func (r *ApplicationRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, handlePostgresError("check application", err)
	}
	return exists, nil
}

func (r *ApplicationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM applications").Scan(&n); err != nil {
		return 0, handlePostgresError("count applications", err)
	}
	return n, nil
}

// Admin user operations

// AdminUserRepository implements publishing.AdminUserRepository using PostgreSQL
type AdminUserRepository struct {
	db DBTX
}

func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*publishing.AdminUser, error) {
	query := `
		SELECT u.id, u.email, u.password_hash,
		       COALESCE(array_agg(a.application_id ORDER BY a.application_id)
		                FILTER (WHERE a.application_id IS NOT NULL), '{}')
		FROM admin_users u
		LEFT JOIN admin_user_applications a ON a.admin_user_id = u.id
		WHERE u.email = $1
		GROUP BY u.id, u.email, u.password_hash`

	var u publishing.AdminUser
	err := r.db.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.AllowedApplicationIDs)
	if err != nil {
		return nil, handlePostgresError("find admin user", err)
	}
	return &u, nil
}

// Save upserts the user and replaces its application links in one transaction.
func (r *AdminUserRepository) Save(ctx context.Context, user *publishing.AdminUser) (*publishing.AdminUser, error) {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO admin_users (id, email, password_hash) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, password_hash = EXCLUDED.password_hash`,
			user.ID, user.Email, user.PasswordHash)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM admin_user_applications WHERE admin_user_id = $1", user.ID); err != nil {
			return err
		}
		for _, appID := range user.AllowedApplicationIDs {
			_, err := tx.Exec(ctx, `
				INSERT INTO admin_user_applications (admin_user_id, application_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, user.ID, appID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, handlePostgresError("save admin user", err)
	}

	saved := *user
	saved.AllowedApplicationIDs = append([]string(nil), user.AllowedApplicationIDs...)
	return &saved, nil
}
