package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghostofweb/portfolio-api/internal/handlers"
	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/ghostofweb/portfolio-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlog(id, slug, authorID string) *models.Blog {
	now := time.Now()
	return &models.Blog{
		ID:          id,
		Title:       "Test Post",
		Slug:        slug,
		Content:     "Body",
		Tags:        []string{"go"},
		IsPublished: true,
		AuthorID:    authorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// newMultipartRequest builds a multipart form request with the given fields
// and an optional file part.
func newMultipartRequest(t *testing.T, method, url string, fields map[string]string, fileField, fileName string, fileBody []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		part, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(fileBody)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreateBlog_Success(t *testing.T) {
	var gotInput services.CreateBlogInput
	mockService := &handlers.MockBlogManager{
		CreateFunc: func(ctx context.Context, author *models.User, input services.CreateBlogInput) (*models.Blog, error) {
			gotInput = input
			return testBlog("blog1", "my-post", author.ID), nil
		},
	}

	handler := handlers.NewBlogHandler(mockService)
	req := newMultipartRequest(t, "POST", "/api/blog/create", map[string]string{
		"title":   "My Post",
		"content": "Body",
		"tags":    "go, web",
	}, "coverImage", "cover.png", []byte("png-bytes"))
	req = handlers.WithAuthContext(req, testUser("user123", "alice"))

	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, 201, w.Code)
	env := handlers.DecodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "Blog created successfully", env.Message)
	assert.Equal(t, "My Post", gotInput.Title)
	assert.Equal(t, []string{"go", " web"}, gotInput.Tags)
	assert.Equal(t, "cover.png", gotInput.CoverName)
	require.NotNil(t, gotInput.Cover)
	body, err := io.ReadAll(gotInput.Cover)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))
}

func TestCreateBlog_TagsAsJSONArray(t *testing.T) {
	var gotInput services.CreateBlogInput
	mockService := &handlers.MockBlogManager{
		CreateFunc: func(ctx context.Context, author *models.User, input services.CreateBlogInput) (*models.Blog, error) {
			gotInput = input
			return testBlog("blog1", "my-post", author.ID), nil
		},
	}

	handler := handlers.NewBlogHandler(mockService)
	req := newMultipartRequest(t, "POST", "/api/blog/create", map[string]string{
		"title":   "My Post",
		"content": "Body",
		"tags":    `["go","web"]`,
	}, "", "", nil)
	req = handlers.WithAuthContext(req, testUser("user123", "alice"))

	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, []string{"go", "web"}, gotInput.Tags)
}

func TestCreateBlog_MissingTitle(t *testing.T) {
	mockService := &handlers.MockBlogManager{
		CreateFunc: func(ctx context.Context, author *models.User, input services.CreateBlogInput) (*models.Blog, error) {
			return nil, models.ErrBadRequest
		},
	}

	handler := handlers.NewBlogHandler(mockService)
	req := newMultipartRequest(t, "POST", "/api/blog/create", map[string]string{
		"content": "Body",
	}, "", "", nil)
	req = handlers.WithAuthContext(req, testUser("user123", "alice"))

	w := httptest.NewRecorder()
	handler.Create(w, req)

	handlers.AssertErrorEnvelope(t, w, 400, "Title and content are required")
}

func TestUpdateBlog_ForbiddenForNonOwner(t *testing.T) {
	mockService := &handlers.MockBlogManager{
		UpdateFunc: func(ctx context.Context, actor *models.User, id string, input services.UpdateBlogInput) (*models.Blog, error) {
			return nil, models.ErrForbidden
		},
	}

	handler := handlers.NewBlogHandler(mockService)
	req := newMultipartRequest(t, "PUT", "/api/blog/edit/blog1", map[string]string{
		"content": "hijacked",
	}, "", "", nil)
	req = handlers.WithAuthContext(req, testUser("other1", "mallory"))
	req = handlers.WithURLParam(req, "id", "blog1")

	w := httptest.NewRecorder()
	handler.Update(w, req)

	handlers.AssertErrorEnvelope(t, w, 403, "You can only edit your own blogs")
}

func TestUpdateBlog_NotFound(t *testing.T) {
	mockService := &handlers.MockBlogManager{
		UpdateFunc: func(ctx context.Context, actor *models.User, id string, input services.UpdateBlogInput) (*models.Blog, error) {
			return nil, models.ErrNotFound
		},
	}

	handler := handlers.NewBlogHandler(mockService)
	req := newMultipartRequest(t, "PUT", "/api/blog/edit/ghost", map[string]string{
		"content": "Body",
	}, "", "", nil)
	req = handlers.WithAuthContext(req, testUser("user123", "alice"))
	req = handlers.WithURLParam(req, "id", "ghost")

	w := httptest.NewRecorder()
	handler.Update(w, req)

	handlers.AssertErrorEnvelope(t, w, 404, "Blog not found")
}

func TestDeleteBlog_ForbiddenForNonOwner(t *testing.T) {
	mockService := &handlers.MockBlogManager{
		DeleteFunc: func(ctx context.Context, actor *models.User, id string) error {
			return models.ErrForbidden
		},
	}

	handler := handlers.NewBlogHandler(mockService)
	req := handlers.NewTestRequest(t, "DELETE", "/api/blog/delete/blog1", nil)
	req = handlers.WithAuthContext(req, testUser("other1", "mallory"))
	req = handlers.WithURLParam(req, "id", "blog1")

	w := httptest.NewRecorder()
	handler.Delete(w, req)

	handlers.AssertErrorEnvelope(t, w, 403, "You can only delete your own blogs")
}

func TestGetBySlug_Success(t *testing.T) {
	mockService := &handlers.MockBlogManager{
		GetPublishedFunc: func(ctx context.Context, slug string) (*models.Blog, error) {
			blog := testBlog("blog1", slug, "user123")
			blog.Views = 42
			return blog, nil
		},
	}

	handler := handlers.NewBlogHandler(mockService)
	req := handlers.NewTestRequest(t, "GET", "/api/blog/my-post", nil)
	req = handlers.WithURLParam(req, "slug", "my-post")

	w := httptest.NewRecorder()
	handler.GetBySlug(w, req)

	assert.Equal(t, 200, w.Code)
	env := handlers.DecodeEnvelope(t, w)
	raw, _ := json.Marshal(env.Data)
	var blog handlers.BlogResponse
	require.NoError(t, json.Unmarshal(raw, &blog))
	assert.Equal(t, "my-post", blog.Slug)
	assert.Equal(t, int64(42), blog.Views)
}

func TestGetBySlug_NotFound(t *testing.T) {
	handler := handlers.NewBlogHandler(&handlers.MockBlogManager{})
	req := handlers.NewTestRequest(t, "GET", "/api/blog/missing", nil)
	req = handlers.WithURLParam(req, "slug", "missing")

	w := httptest.NewRecorder()
	handler.GetBySlug(w, req)

	handlers.AssertErrorEnvelope(t, w, 404, "Blog not found")
}

func TestListPublished_EmptyList(t *testing.T) {
	handler := handlers.NewBlogHandler(&handlers.MockBlogManager{})
	req := handlers.NewTestRequest(t, "GET", "/api/blog/blogs", nil)

	w := httptest.NewRecorder()
	handler.ListPublished(w, req)

	assert.Equal(t, 200, w.Code)
	env := handlers.DecodeEnvelope(t, w)
	assert.True(t, env.Success)
	raw, _ := json.Marshal(env.Data)
	assert.Equal(t, "[]", string(raw))
}

func TestGetForEdit_ForbiddenForNonOwner(t *testing.T) {
	mockService := &handlers.MockBlogManager{
		GetForEditFunc: func(ctx context.Context, actor *models.User, slug string) (*models.Blog, error) {
			return nil, models.ErrForbidden
		},
	}

	handler := handlers.NewBlogHandler(mockService)
	req := handlers.NewTestRequest(t, "GET", "/api/blog/edit/my-post", nil)
	req = handlers.WithAuthContext(req, testUser("other1", "mallory"))
	req = handlers.WithURLParam(req, "slug", "my-post")

	w := httptest.NewRecorder()
	handler.GetForEdit(w, req)

	handlers.AssertErrorEnvelope(t, w, 403, "You can only edit your own blogs")
}

func TestUploadImage_Success(t *testing.T) {
	handler := handlers.NewBlogHandler(&handlers.MockBlogManager{})
	req := newMultipartRequest(t, "POST", "/api/blog/upload-image", nil,
		"image", "inline.png", []byte("png-bytes"))
	req = handlers.WithAuthContext(req, testUser("user123", "alice"))

	w := httptest.NewRecorder()
	handler.UploadImage(w, req)

	assert.Equal(t, 200, w.Code)
	env := handlers.DecodeEnvelope(t, w)
	raw, _ := json.Marshal(env.Data)
	assert.Contains(t, string(raw), "inline.png")
}

func TestUploadImage_MissingFile(t *testing.T) {
	handler := handlers.NewBlogHandler(&handlers.MockBlogManager{})
	req := newMultipartRequest(t, "POST", "/api/blog/upload-image", map[string]string{
		"note": "no file here",
	}, "", "", nil)

	w := httptest.NewRecorder()
	handler.UploadImage(w, req)

	handlers.AssertErrorEnvelope(t, w, 400, "Image file is required")
}
