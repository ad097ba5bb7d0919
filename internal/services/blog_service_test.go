package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":              "hello-world",
		"  Spaces   Everywhere  ":  "spaces-everywhere",
		"Go 1.24: What's New?":     "go-124-whats-new",
		"already-a-slug":           "already-a-slug",
		"UPPER CASE":               "upper-case",
		"!!!":                      "",
	}

	for title, want := range cases {
		assert.Equal(t, want, Slugify(title), "title %q", title)
	}
}

func TestBlogService_Create_Success(t *testing.T) {
	author := NewTestUser("user123", "saahil", "saahil@example.com")

	var stored *models.Blog
	mockRepo := &MockBlogRepository{
		CreateFunc: func(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
			stored = blog
			out := *blog
			out.ID = "blog1"
			return &out, nil
		},
	}

	svc := NewBlogService(mockRepo, &MockUploader{}, slog.Default())

	result, err := svc.Create(context.Background(), author, CreateBlogInput{
		Title:   "My First Post",
		Content: "Hello!",
		Tags:    []string{"go", " web ", ""},
	})

	require.NoError(t, err)
	assert.Equal(t, "blog1", result.ID)
	assert.Equal(t, "my-first-post", stored.Slug)
	assert.Equal(t, []string{"go", "web"}, stored.Tags)
	assert.True(t, stored.IsPublished)
	assert.Equal(t, "user123", stored.AuthorID)
}

func TestBlogService_Create_MissingTitle(t *testing.T) {
	svc := NewBlogService(&MockBlogRepository{}, &MockUploader{}, slog.Default())

	_, err := svc.Create(context.Background(), NewTestUser("u", "u", "u@example.com"), CreateBlogInput{
		Content: "body",
	})

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestBlogService_Create_CoverUploadFailureContinues(t *testing.T) {
	var stored *models.Blog
	mockRepo := &MockBlogRepository{
		CreateFunc: func(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
			stored = blog
			return blog, nil
		},
	}
	uploader := &MockUploader{
		UploadFunc: func(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
			return "", assert.AnError
		},
	}

	svc := NewBlogService(mockRepo, uploader, slog.Default())

	_, err := svc.Create(context.Background(), NewTestUser("u", "u", "u@example.com"), CreateBlogInput{
		Title:     "Post",
		Content:   "body",
		Cover:     strings.NewReader("png-bytes"),
		CoverName: "cover.png",
		CoverType: "image/png",
	})

	require.NoError(t, err)
	assert.Empty(t, stored.CoverImage)
}

func TestBlogService_Create_CoverUploadSuccess(t *testing.T) {
	var stored *models.Blog
	mockRepo := &MockBlogRepository{
		CreateFunc: func(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
			stored = blog
			return blog, nil
		},
	}

	svc := NewBlogService(mockRepo, &MockUploader{}, slog.Default())

	_, err := svc.Create(context.Background(), NewTestUser("u", "u", "u@example.com"), CreateBlogInput{
		Title:     "Post",
		Content:   "body",
		Cover:     strings.NewReader("png-bytes"),
		CoverName: "cover.png",
		CoverType: "image/png",
	})

	require.NoError(t, err)
	assert.Contains(t, stored.CoverImage, "cover.png")
}

func TestBlogService_Create_Unpublished(t *testing.T) {
	var stored *models.Blog
	mockRepo := &MockBlogRepository{
		CreateFunc: func(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
			stored = blog
			return blog, nil
		},
	}

	svc := NewBlogService(mockRepo, &MockUploader{}, slog.Default())

	published := false
	_, err := svc.Create(context.Background(), NewTestUser("u", "u", "u@example.com"), CreateBlogInput{
		Title:       "Draft",
		Content:     "body",
		IsPublished: &published,
	})

	require.NoError(t, err)
	assert.False(t, stored.IsPublished)
}

func TestBlogService_Update_OwnerOnly(t *testing.T) {
	owner := NewTestUser("owner1", "owner", "owner@example.com")
	stranger := NewTestUser("other1", "other", "other@example.com")

	mockRepo := &MockBlogRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Blog, error) {
			return NewTestBlog(id, "post", owner.ID), nil
		},
	}

	svc := NewBlogService(mockRepo, &MockUploader{}, slog.Default())

	_, err := svc.Update(context.Background(), stranger, "blog1", UpdateBlogInput{Content: "hijacked"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.Update(context.Background(), owner, "blog1", UpdateBlogInput{Content: "edited"})
	assert.NoError(t, err)
}

func TestBlogService_Update_TitleChangeRederivesSlug(t *testing.T) {
	owner := NewTestUser("owner1", "owner", "owner@example.com")

	var saved *models.Blog
	mockRepo := &MockBlogRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Blog, error) {
			return NewTestBlog(id, "old-title", owner.ID), nil
		},
		UpdateFunc: func(ctx context.Context, id string, blog *models.Blog) (*models.Blog, error) {
			saved = blog
			return blog, nil
		},
	}

	svc := NewBlogService(mockRepo, &MockUploader{}, slog.Default())

	_, err := svc.Update(context.Background(), owner, "blog1", UpdateBlogInput{Title: "Brand New Title"})

	require.NoError(t, err)
	assert.Equal(t, "brand-new-title", saved.Slug)
}

func TestBlogService_Update_NotFound(t *testing.T) {
	svc := NewBlogService(&MockBlogRepository{}, &MockUploader{}, slog.Default())

	_, err := svc.Update(context.Background(), NewTestUser("u", "u", "u@example.com"), "ghost", UpdateBlogInput{})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBlogService_Delete_OwnerOnly(t *testing.T) {
	owner := NewTestUser("owner1", "owner", "owner@example.com")
	stranger := NewTestUser("other1", "other", "other@example.com")

	deleted := false
	mockRepo := &MockBlogRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Blog, error) {
			return NewTestBlog(id, "post", owner.ID), nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}

	svc := NewBlogService(mockRepo, &MockUploader{}, slog.Default())

	err := svc.Delete(context.Background(), stranger, "blog1")
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.False(t, deleted)

	err = svc.Delete(context.Background(), owner, "blog1")
	assert.NoError(t, err)
	assert.True(t, deleted)
}

func TestBlogService_GetForEdit_ForbiddenForNonOwner(t *testing.T) {
	owner := NewTestUser("owner1", "owner", "owner@example.com")
	stranger := NewTestUser("other1", "other", "other@example.com")

	mockRepo := &MockBlogRepository{
		GetBySlugFunc: func(ctx context.Context, slug string) (*models.Blog, error) {
			blog := NewTestBlog("blog1", slug, owner.ID)
			blog.IsPublished = false
			return blog, nil
		},
	}

	svc := NewBlogService(mockRepo, &MockUploader{}, slog.Default())

	_, err := svc.GetForEdit(context.Background(), stranger, "draft-post")
	assert.ErrorIs(t, err, models.ErrForbidden)

	blog, err := svc.GetForEdit(context.Background(), owner, "draft-post")
	require.NoError(t, err)
	assert.False(t, blog.IsPublished)
}

func TestBlogService_GetPublished_NotFound(t *testing.T) {
	svc := NewBlogService(&MockBlogRepository{}, &MockUploader{}, slog.Default())

	_, err := svc.GetPublished(context.Background(), "missing")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBlogService_UploadImage_SurfacesFailure(t *testing.T) {
	uploader := &MockUploader{
		UploadFunc: func(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
			return "", assert.AnError
		},
	}

	svc := NewBlogService(&MockBlogRepository{}, uploader, slog.Default())

	_, err := svc.UploadImage(context.Background(), "inline.png", "image/png", strings.NewReader("x"))

	assert.ErrorIs(t, err, models.ErrInternalServer)
}
