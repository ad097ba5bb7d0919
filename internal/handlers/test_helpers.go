package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghostofweb/portfolio-api/internal/auth"
	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/ghostofweb/portfolio-api/internal/services"
	pkghttp "github.com/ghostofweb/portfolio-api/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext injects a resolved user into the request context the way
// the bearer middleware does for authenticated endpoints
func WithAuthContext(req *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserContextKey, user)
	return req.WithContext(ctx)
}

// WithURLParam attaches a chi route parameter to the request context
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// DecodeEnvelope decodes the uniform response body
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) pkghttp.Envelope {
	var env pkghttp.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return env
}

// AssertErrorEnvelope checks status, success=false and the message
func AssertErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	env := DecodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, expectedMessage, env.Message)
}

// MockUserManager implements UserManager for testing
type MockUserManager struct {
	RegisterFunc                 func(ctx context.Context, input services.RegisterInput) (*models.User, error)
	AuthenticateFunc             func(ctx context.Context, username, password string) (*models.User, error)
	ListFunc                     func(ctx context.Context) ([]*models.User, error)
	UpdateProfileFunc            func(ctx context.Context, userID string, input services.UpdateProfileInput) (*models.User, error)
	RemoveFunc                   func(ctx context.Context, targetID string) error
	RequestRegistrationCodeFunc  func(ctx context.Context, email string) error
	RequestProfileCodeFunc       func(ctx context.Context, userID string) error
	RequestPasswordResetCodeFunc func(ctx context.Context, username string) error
	ResetPasswordWithCodeFunc    func(ctx context.Context, username, code, newPassword string) error
	RequestPasswordResetLinkFunc func(ctx context.Context, username string) error
	ResetPasswordWithTokenFunc   func(ctx context.Context, token, newPassword string) error
}

func (m *MockUserManager) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserManager) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, username, password)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockUserManager) List(ctx context.Context) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserManager) UpdateProfile(ctx context.Context, userID string, input services.UpdateProfileInput) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserManager) Remove(ctx context.Context, targetID string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, targetID)
	}
	return nil
}

func (m *MockUserManager) RequestRegistrationCode(ctx context.Context, email string) error {
	if m.RequestRegistrationCodeFunc != nil {
		return m.RequestRegistrationCodeFunc(ctx, email)
	}
	return nil
}

func (m *MockUserManager) RequestProfileCode(ctx context.Context, userID string) error {
	if m.RequestProfileCodeFunc != nil {
		return m.RequestProfileCodeFunc(ctx, userID)
	}
	return nil
}

func (m *MockUserManager) RequestPasswordResetCode(ctx context.Context, username string) error {
	if m.RequestPasswordResetCodeFunc != nil {
		return m.RequestPasswordResetCodeFunc(ctx, username)
	}
	return nil
}

func (m *MockUserManager) ResetPasswordWithCode(ctx context.Context, username, code, newPassword string) error {
	if m.ResetPasswordWithCodeFunc != nil {
		return m.ResetPasswordWithCodeFunc(ctx, username, code, newPassword)
	}
	return nil
}

func (m *MockUserManager) RequestPasswordResetLink(ctx context.Context, username string) error {
	if m.RequestPasswordResetLinkFunc != nil {
		return m.RequestPasswordResetLinkFunc(ctx, username)
	}
	return nil
}

func (m *MockUserManager) ResetPasswordWithToken(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordWithTokenFunc != nil {
		return m.ResetPasswordWithTokenFunc(ctx, token, newPassword)
	}
	return nil
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	GenerateFunc func(user *models.User) (string, error)
}

func (m *MockTokenIssuer) Generate(user *models.User) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(user)
	}
	return "token_" + user.ID, nil
}

// MockBlogManager implements BlogManager for testing
type MockBlogManager struct {
	CreateFunc        func(ctx context.Context, author *models.User, input services.CreateBlogInput) (*models.Blog, error)
	UpdateFunc        func(ctx context.Context, actor *models.User, id string, input services.UpdateBlogInput) (*models.Blog, error)
	DeleteFunc        func(ctx context.Context, actor *models.User, id string) error
	GetForEditFunc    func(ctx context.Context, actor *models.User, slug string) (*models.Blog, error)
	GetPublishedFunc  func(ctx context.Context, slug string) (*models.Blog, error)
	ListPublishedFunc func(ctx context.Context) ([]*models.Blog, error)
	ListAllFunc       func(ctx context.Context) ([]*models.Blog, error)
	UploadImageFunc   func(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

func (m *MockBlogManager) Create(ctx context.Context, author *models.User, input services.CreateBlogInput) (*models.Blog, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, author, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBlogManager) Update(ctx context.Context, actor *models.User, id string, input services.UpdateBlogInput) (*models.Blog, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, id, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBlogManager) Delete(ctx context.Context, actor *models.User, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actor, id)
	}
	return nil
}

func (m *MockBlogManager) GetForEdit(ctx context.Context, actor *models.User, slug string) (*models.Blog, error) {
	if m.GetForEditFunc != nil {
		return m.GetForEditFunc(ctx, actor, slug)
	}
	return nil, models.ErrNotFound
}

func (m *MockBlogManager) GetPublished(ctx context.Context, slug string) (*models.Blog, error) {
	if m.GetPublishedFunc != nil {
		return m.GetPublishedFunc(ctx, slug)
	}
	return nil, models.ErrNotFound
}

func (m *MockBlogManager) ListPublished(ctx context.Context) ([]*models.Blog, error) {
	if m.ListPublishedFunc != nil {
		return m.ListPublishedFunc(ctx)
	}
	return []*models.Blog{}, nil
}

func (m *MockBlogManager) ListAll(ctx context.Context) ([]*models.Blog, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []*models.Blog{}, nil
}

func (m *MockBlogManager) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if m.UploadImageFunc != nil {
		return m.UploadImageFunc(ctx, filename, contentType, body)
	}
	return "https://example-bucket.s3.us-east-1.amazonaws.com/" + filename, nil
}
