package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ghostofweb/portfolio-api/internal/auth"
	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/ghostofweb/portfolio-api/internal/services"
	pkghttp "github.com/ghostofweb/portfolio-api/pkg/http"
	"github.com/go-chi/chi/v5"
)

// maxBlogFormMemory bounds the in-memory portion of multipart parsing;
// larger files spill to disk.
const maxBlogFormMemory = 10 << 20

// BlogManager defines the interface for blog business logic
type BlogManager interface {
	Create(ctx context.Context, author *models.User, input services.CreateBlogInput) (*models.Blog, error)
	Update(ctx context.Context, actor *models.User, id string, input services.UpdateBlogInput) (*models.Blog, error)
	Delete(ctx context.Context, actor *models.User, id string) error
	GetForEdit(ctx context.Context, actor *models.User, slug string) (*models.Blog, error)
	GetPublished(ctx context.Context, slug string) (*models.Blog, error)
	ListPublished(ctx context.Context) ([]*models.Blog, error)
	ListAll(ctx context.Context) ([]*models.Blog, error)
	UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// BlogHandler handles blog HTTP requests
type BlogHandler struct {
	service BlogManager
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(service BlogManager) *BlogHandler {
	return &BlogHandler{
		service: service,
	}
}

// BlogResponse represents a blog post in the HTTP response
type BlogResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	Content     string             `json:"content"`
	CoverImage  string             `json:"coverImage,omitempty"`
	Tags        []string           `json:"tags"`
	IsPublished bool               `json:"isPublished"`
	Views       int64              `json:"views"`
	Author      *models.BlogAuthor `json:"author,omitempty"`
	CreatedAt   string             `json:"createdAt"`
	UpdatedAt   string             `json:"updatedAt"`
}

func blogModelToResponse(blog *models.Blog) *BlogResponse {
	tags := blog.Tags
	if tags == nil {
		tags = []string{}
	}
	return &BlogResponse{
		ID:          blog.ID,
		Title:       blog.Title,
		Slug:        blog.Slug,
		Content:     blog.Content,
		CoverImage:  blog.CoverImage,
		Tags:        tags,
		IsPublished: blog.IsPublished,
		Views:       blog.Views,
		Author:      blog.Author,
		CreatedAt:   blog.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   blog.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// blogFormFields reads the non-file fields shared by create and edit forms.
// Tags arrive either as a JSON array or a comma-separated string.
func blogFormFields(r *http.Request) (title, content string, tags []string, isPublished *bool) {
	title = r.FormValue("title")
	content = r.FormValue("content")

	if raw := r.FormValue("tags"); raw != "" {
		var parsed []string
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			tags = parsed
		} else {
			tags = strings.Split(raw, ",")
		}
	}

	if raw := r.FormValue("isPublished"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			isPublished = &v
		}
	}
	return
}

// ListPublished returns all published posts, newest first
func (h *BlogHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.service.ListPublished(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch blogs")
		return
	}

	out := make([]*BlogResponse, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, blogModelToResponse(b))
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Blogs fetched successfully", out)
}

// GetBySlug returns a published post and counts the read
func (h *BlogHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		pkghttp.WriteBadRequest(w, "Blog slug is required")
		return
	}

	blog, err := h.service.GetPublished(r.Context(), slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Blog not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to fetch blog")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Blog fetched successfully", blogModelToResponse(blog))
}

// ListAll returns every post including drafts; bearer-gated
func (h *BlogHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.service.ListAll(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch blogs")
		return
	}

	out := make([]*BlogResponse, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, blogModelToResponse(b))
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Blogs fetched successfully", out)
}

// GetForEdit returns a post in any publish state for its owner, no view bump
func (h *BlogHandler) GetForEdit(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		pkghttp.WriteBadRequest(w, "Blog slug is required")
		return
	}

	blog, err := h.service.GetForEdit(r.Context(), user, slug)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Blog not found")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "You can only edit your own blogs")
		default:
			pkghttp.WriteInternalError(w, "Failed to fetch blog")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Blog fetched successfully", blogModelToResponse(blog))
}

// Create stores a new post from a multipart form with an optional cover image
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(maxBlogFormMemory); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid form data")
		return
	}

	title, content, tags, isPublished := blogFormFields(r)
	input := services.CreateBlogInput{
		Title:       title,
		Content:     content,
		Tags:        tags,
		IsPublished: isPublished,
	}

	if file, header, err := r.FormFile("coverImage"); err == nil {
		defer file.Close()
		input.Cover = file
		input.CoverName = header.Filename
		input.CoverType = header.Header.Get("Content-Type")
	}

	blog, err := h.service.Create(r.Context(), user, input)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Title and content are required")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "A blog with this title already exists")
		default:
			pkghttp.WriteInternalError(w, "Failed to create blog")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Blog created successfully", blogModelToResponse(blog))
}

// Update edits a post the caller owns
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		pkghttp.WriteBadRequest(w, "Blog ID is required")
		return
	}

	if err := r.ParseMultipartForm(maxBlogFormMemory); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid form data")
		return
	}

	title, content, tags, isPublished := blogFormFields(r)
	input := services.UpdateBlogInput{
		Title:       title,
		Content:     content,
		Tags:        tags,
		IsPublished: isPublished,
	}

	if file, header, err := r.FormFile("coverImage"); err == nil {
		defer file.Close()
		input.Cover = file
		input.CoverName = header.Filename
		input.CoverType = header.Header.Get("Content-Type")
	}

	blog, err := h.service.Update(r.Context(), user, id, input)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Blog not found")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "You can only edit your own blogs")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "A blog with this title already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid blog fields")
		default:
			pkghttp.WriteInternalError(w, "Failed to update blog")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Blog updated successfully", blogModelToResponse(blog))
}

// Delete removes a post the caller owns
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		pkghttp.WriteBadRequest(w, "Blog ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), user, id); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Blog not found")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "You can only delete your own blogs")
		default:
			pkghttp.WriteInternalError(w, "Failed to delete blog")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Blog deleted successfully", nil)
}

// UploadImage stores an inline editor image and returns its URL
func (h *BlogHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBlogFormMemory); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		pkghttp.WriteBadRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	url, err := h.service.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to upload image")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Image uploaded successfully", map[string]string{"url": url})
}
