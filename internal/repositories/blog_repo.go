package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/ghostofweb/portfolio-api/internal/database"
	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const blogColumns = `b.id, b.title, b.slug, b.content, b.cover_image, b.tags, b.is_published, b.views, b.author_id,
		u.id, u.username, u.name, u.position, b.created_at, b.updated_at`

const blogFrom = ` FROM blogs b JOIN users u ON u.id = b.author_id `

type BlogRepository struct {
	pool *pgxpool.Pool
}

func NewBlogRepository(db *database.DB) *BlogRepository {
	return &BlogRepository{pool: db.Pool}
}

// scanBlogRow populates a Blog model, including the joined author summary.
func scanBlogRow(scanner rowScanner) (*models.Blog, error) {
	var blog models.Blog
	var author models.BlogAuthor

	err := scanner.Scan(
		&blog.ID, &blog.Title, &blog.Slug, &blog.Content,
		&blog.CoverImage, &blog.Tags, &blog.IsPublished, &blog.Views,
		&blog.AuthorID,
		&author.ID, &author.Username, &author.Name, &author.Position,
		&blog.CreatedAt, &blog.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	blog.Author = &author
	return &blog, nil
}

func scanBlogRows(rows pgx.Rows) ([]*models.Blog, error) {
	defer rows.Close()

	blogs := make([]*models.Blog, 0)

	for rows.Next() {
		blog, err := scanBlogRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog: %w", err)
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blog rows: %w", err)
	}

	return blogs, nil
}

func (r *BlogRepository) Create(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	blog.ID = uuid.New().String()

	now := time.Now()
	blog.CreatedAt = now
	blog.UpdatedAt = now

	query := `
		WITH inserted AS (
			INSERT INTO blogs (id, title, slug, content, cover_image, tags, is_published, author_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING *
		)
		SELECT ` + blogColumns + ` FROM inserted b JOIN users u ON u.id = b.author_id
	`

	return scanBlogRow(r.pool.QueryRow(ctx, query,
		blog.ID, blog.Title, blog.Slug, blog.Content, blog.CoverImage,
		blog.Tags, blog.IsPublished, blog.AuthorID, blog.CreatedAt, blog.UpdatedAt,
	))
}

func (r *BlogRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	query := `SELECT ` + blogColumns + blogFrom + `WHERE b.id = $1`
	return scanBlogRow(r.pool.QueryRow(ctx, query, id))
}

// GetBySlug fetches a blog regardless of publication state, for owner edits.
func (r *BlogRepository) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	query := `SELECT ` + blogColumns + blogFrom + `WHERE b.slug = $1`
	return scanBlogRow(r.pool.QueryRow(ctx, query, slug))
}

// GetPublishedBySlug fetches a published blog and bumps its view counter in
// the same statement.
func (r *BlogRepository) GetPublishedBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	query := `
		WITH bumped AS (
			UPDATE blogs SET views = views + 1
			WHERE slug = $1 AND is_published = TRUE
			RETURNING *
		)
		SELECT ` + blogColumns + ` FROM bumped b JOIN users u ON u.id = b.author_id
	`

	return scanBlogRow(r.pool.QueryRow(ctx, query, slug))
}

func (r *BlogRepository) ListPublished(ctx context.Context) ([]*models.Blog, error) {
	query := `SELECT ` + blogColumns + blogFrom + `WHERE b.is_published = TRUE ORDER BY b.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query blogs: %w", err)
	}

	return scanBlogRows(rows)
}

// ListAll includes drafts, for the admin dashboard.
func (r *BlogRepository) ListAll(ctx context.Context) ([]*models.Blog, error) {
	query := `SELECT ` + blogColumns + blogFrom + `ORDER BY b.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query blogs: %w", err)
	}

	return scanBlogRows(rows)
}

func (r *BlogRepository) Update(ctx context.Context, id string, blog *models.Blog) (*models.Blog, error) {
	blog.UpdatedAt = time.Now()

	query := `
		WITH updated AS (
			UPDATE blogs SET title = $1, content = $2, tags = $3, is_published = $4, cover_image = $5, updated_at = $6
			WHERE id = $7
			RETURNING *
		)
		SELECT ` + blogColumns + ` FROM updated b JOIN users u ON u.id = b.author_id
	`

	return scanBlogRow(r.pool.QueryRow(ctx, query,
		blog.Title, blog.Content, blog.Tags, blog.IsPublished, blog.CoverImage, blog.UpdatedAt, id,
	))
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM blogs WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
