package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ghostofweb/portfolio-api/internal/models"
)

// BlogRepository defines the interface for blog data access
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) (*models.Blog, error)
	Update(ctx context.Context, id string, blog *models.Blog) (*models.Blog, error)
	GetByID(ctx context.Context, id string) (*models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Blog, error)
	ListPublished(ctx context.Context) ([]*models.Blog, error)
	ListAll(ctx context.Context) ([]*models.Blog, error)
	Delete(ctx context.Context, id string) error
}

// CreateBlogInput carries a new post plus its optional cover image stream.
type CreateBlogInput struct {
	Title       string
	Content     string
	Tags        []string
	IsPublished *bool
	Cover       io.Reader
	CoverName   string
	CoverType   string
}

// UpdateBlogInput carries an edit to an existing post. Nil/empty fields are
// left unchanged, mirroring CreateBlogInput for the cover image.
type UpdateBlogInput struct {
	Title       string
	Content     string
	Tags        []string
	IsPublished *bool
	Cover       io.Reader
	CoverName   string
	CoverType   string
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]+`)

// Slugify lowercases a title, collapses whitespace to single dashes and
// strips everything outside [a-z0-9-].
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Join(strings.Fields(slug), "-")
	slug = slugStrip.ReplaceAllString(slug, "")
	return strings.Trim(slug, "-")
}

// BlogService handles blog post business logic. Mutations are owner-gated:
// only the author of a post may edit or delete it.
type BlogService struct {
	repo     BlogRepository
	uploader Uploader
	logger   *slog.Logger
}

// NewBlogService creates a new BlogService
func NewBlogService(repo BlogRepository, uploader Uploader, logger *slog.Logger) *BlogService {
	return &BlogService{
		repo:     repo,
		uploader: uploader,
		logger:   logger,
	}
}

// Create stores a new post authored by the given user. A cover image that
// fails to upload is logged and the post proceeds without one.
func (s *BlogService) Create(ctx context.Context, author *models.User, input CreateBlogInput) (*models.Blog, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	if input.Title == "" || input.Content == "" {
		return nil, models.ErrBadRequest
	}

	slug := Slugify(input.Title)
	if slug == "" {
		return nil, models.ErrBadRequest
	}

	published := true
	if input.IsPublished != nil {
		published = *input.IsPublished
	}

	blog := &models.Blog{
		Title:       input.Title,
		Slug:        slug,
		Content:     input.Content,
		Tags:        normalizeTags(input.Tags),
		IsPublished: published,
		AuthorID:    author.ID,
	}

	if input.Cover != nil {
		url, err := s.uploader.Upload(ctx, input.CoverName, input.CoverType, input.Cover)
		if err != nil {
			s.logger.Error("cover image upload failed, continuing without cover",
				slog.String("filename", input.CoverName), slog.Any("error", err))
		} else {
			blog.CoverImage = url
		}
	}

	created, err := s.repo.Create(ctx, blog)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create blog", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("blog created",
		slog.String("blog_id", created.ID),
		slog.String("slug", created.Slug),
		slog.String("author_id", author.ID))
	return created, nil
}

// Update edits an existing post. A changed title re-derives the slug.
func (s *BlogService) Update(ctx context.Context, actor *models.User, id string, input UpdateBlogInput) (*models.Blog, error) {
	blog, err := s.ownedBlog(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(input.Title); title != "" && title != blog.Title {
		slug := Slugify(title)
		if slug == "" {
			return nil, models.ErrBadRequest
		}
		blog.Title = title
		blog.Slug = slug
	}
	if content := strings.TrimSpace(input.Content); content != "" {
		blog.Content = content
	}
	if input.Tags != nil {
		blog.Tags = normalizeTags(input.Tags)
	}
	if input.IsPublished != nil {
		blog.IsPublished = *input.IsPublished
	}

	if input.Cover != nil {
		url, err := s.uploader.Upload(ctx, input.CoverName, input.CoverType, input.Cover)
		if err != nil {
			s.logger.Error("cover image upload failed, keeping existing cover",
				slog.String("filename", input.CoverName), slog.Any("error", err))
		} else {
			blog.CoverImage = url
		}
	}

	updated, err := s.repo.Update(ctx, id, blog)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update blog", slog.String("blog_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("blog updated", slog.String("blog_id", id))
	return updated, nil
}

// Delete removes a post the actor owns.
func (s *BlogService) Delete(ctx context.Context, actor *models.User, id string) error {
	if _, err := s.ownedBlog(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete blog", slog.String("blog_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("blog deleted", slog.String("blog_id", id))
	return nil
}

// GetForEdit returns a post, any publish state, for its owner.
func (s *BlogService) GetForEdit(ctx context.Context, actor *models.User, slug string) (*models.Blog, error) {
	blog, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get blog", slog.String("slug", slug), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if blog.AuthorID != actor.ID {
		return nil, models.ErrForbidden
	}

	return blog, nil
}

// GetPublished returns a published post by slug, counting the read.
func (s *BlogService) GetPublished(ctx context.Context, slug string) (*models.Blog, error) {
	blog, err := s.repo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get blog", slog.String("slug", slug), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return blog, nil
}

// ListPublished returns all published posts, newest first.
func (s *BlogService) ListPublished(ctx context.Context) ([]*models.Blog, error) {
	blogs, err := s.repo.ListPublished(ctx)
	if err != nil {
		s.logger.Error("failed to list blogs", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return blogs, nil
}

// ListAll returns every post regardless of publish state.
func (s *BlogService) ListAll(ctx context.Context) ([]*models.Blog, error) {
	blogs, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list blogs", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return blogs, nil
}

// UploadImage stores a standalone image (inline editor uploads) and returns
// its public URL. Unlike cover images, failures here surface to the caller.
func (s *BlogService) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	url, err := s.uploader.Upload(ctx, filename, contentType, body)
	if err != nil {
		s.logger.Error("image upload failed", slog.String("filename", filename), slog.Any("error", err))
		return "", models.ErrInternalServer
	}
	return url, nil
}

// ownedBlog fetches a post and enforces that the actor authored it. A post
// that exists but belongs to someone else is Forbidden, not NotFound.
func (s *BlogService) ownedBlog(ctx context.Context, actor *models.User, id string) (*models.Blog, error) {
	blog, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get blog", slog.String("blog_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if blog.AuthorID != actor.ID {
		return nil, models.ErrForbidden
	}

	return blog, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
