package services

import (
	"context"
	"io"
	"time"

	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/google/uuid"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc             func(ctx context.Context, id string) (*models.User, error)
	GetByUsernameFunc       func(ctx context.Context, username string) (*models.User, error)
	GetByEmailFunc          func(ctx context.Context, email string) (*models.User, error)
	ListFunc                func(ctx context.Context) ([]*models.User, error)
	CreateFunc              func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc              func(ctx context.Context, id string, user *models.User) (*models.User, error)
	SetResetTokenFunc       func(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	ClearResetTokenFunc     func(ctx context.Context, id string) error
	GetByResetTokenHashFunc func(ctx context.Context, tokenHash string) (*models.User, error)
	UpdatePasswordFunc      func(ctx context.Context, id, passwordHash string) error
	DeleteFunc              func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	out := *user
	out.ID = uuid.NewString()
	now := time.Now()
	out.CreatedAt = now
	out.UpdatedAt = now
	return &out, nil
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	out := *user
	out.ID = id
	out.UpdatedAt = time.Now()
	return &out, nil
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, id, tokenHash, expiresAt)
	}
	return nil
}

func (m *MockUserRepository) ClearResetToken(ctx context.Context, id string) error {
	if m.ClearResetTokenFunc != nil {
		return m.ClearResetTokenFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	if m.GetByResetTokenHashFunc != nil {
		return m.GetByResetTokenHashFunc(ctx, tokenHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockOneTimeCodeRepository implements OneTimeCodeRepository for testing
type MockOneTimeCodeRepository struct {
	CreateFunc           func(ctx context.Context, email, code string) (*models.OneTimeCode, error)
	GetLatestByEmailFunc func(ctx context.Context, email string) (*models.OneTimeCode, error)
	DeleteExpiredFunc    func(ctx context.Context, before time.Time) (int64, error)
}

func (m *MockOneTimeCodeRepository) Create(ctx context.Context, email, code string) (*models.OneTimeCode, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, email, code)
	}
	return &models.OneTimeCode{ID: uuid.NewString(), Email: email, Code: code, CreatedAt: time.Now()}, nil
}

func (m *MockOneTimeCodeRepository) GetLatestByEmail(ctx context.Context, email string) (*models.OneTimeCode, error) {
	if m.GetLatestByEmailFunc != nil {
		return m.GetLatestByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockOneTimeCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx, before)
	}
	return 0, nil
}

// MockBlogRepository implements BlogRepository for testing
type MockBlogRepository struct {
	CreateFunc             func(ctx context.Context, blog *models.Blog) (*models.Blog, error)
	UpdateFunc             func(ctx context.Context, id string, blog *models.Blog) (*models.Blog, error)
	GetByIDFunc            func(ctx context.Context, id string) (*models.Blog, error)
	GetBySlugFunc          func(ctx context.Context, slug string) (*models.Blog, error)
	GetPublishedBySlugFunc func(ctx context.Context, slug string) (*models.Blog, error)
	ListPublishedFunc      func(ctx context.Context) ([]*models.Blog, error)
	ListAllFunc            func(ctx context.Context) ([]*models.Blog, error)
	DeleteFunc             func(ctx context.Context, id string) error
}

func (m *MockBlogRepository) Create(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, blog)
	}
	out := *blog
	out.ID = uuid.NewString()
	now := time.Now()
	out.CreatedAt = now
	out.UpdatedAt = now
	return &out, nil
}

func (m *MockBlogRepository) Update(ctx context.Context, id string, blog *models.Blog) (*models.Blog, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, blog)
	}
	out := *blog
	out.ID = id
	out.UpdatedAt = time.Now()
	return &out, nil
}

func (m *MockBlogRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockBlogRepository) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, models.ErrNotFound
}

func (m *MockBlogRepository) GetPublishedBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	if m.GetPublishedBySlugFunc != nil {
		return m.GetPublishedBySlugFunc(ctx, slug)
	}
	return nil, models.ErrNotFound
}

func (m *MockBlogRepository) ListPublished(ctx context.Context) ([]*models.Blog, error) {
	if m.ListPublishedFunc != nil {
		return m.ListPublishedFunc(ctx)
	}
	return []*models.Blog{}, nil
}

func (m *MockBlogRepository) ListAll(ctx context.Context) ([]*models.Blog, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []*models.Blog{}, nil
}

func (m *MockBlogRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	SendFunc func(ctx context.Context, to, subject, body string) error
	Sent     []SentMail
}

type SentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *MockEmailSender) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

// MockUploader implements Uploader for testing
type MockUploader struct {
	UploadFunc func(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

func (m *MockUploader) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, filename, contentType, body)
	}
	return "https://example-bucket.s3.us-east-1.amazonaws.com/" + filename, nil
}

// MockCodeVerifier implements CodeVerifier for testing
type MockCodeVerifier struct {
	IssueFunc    func(ctx context.Context, email string) error
	ValidateFunc func(ctx context.Context, email, candidate string) error
}

func (m *MockCodeVerifier) Issue(ctx context.Context, email string) error {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, email)
	}
	return nil
}

func (m *MockCodeVerifier) Validate(ctx context.Context, email, candidate string) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, email, candidate)
	}
	return nil
}

// NewTestUser creates a user for tests
func NewTestUser(id, username, email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        id,
		Username:  username,
		Name:      "Test User",
		Position:  "Developer",
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestUserWithPassword creates a user with a password hash
func NewTestUserWithPassword(id, username, email, passwordHash string) *models.User {
	user := NewTestUser(id, username, email)
	user.PasswordHash = passwordHash
	return user
}

// NewTestMaster creates the protected master admin
func NewTestMaster(id, username, email string) *models.User {
	user := NewTestUser(id, username, email)
	user.IsMaster = true
	return user
}

// NewTestCode creates a one-time code issued at the given time
func NewTestCode(email, code string, createdAt time.Time) *models.OneTimeCode {
	return &models.OneTimeCode{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		CreatedAt: createdAt,
	}
}

// NewTestBlog creates a published blog post for tests
func NewTestBlog(id, slug, authorID string) *models.Blog {
	now := time.Now()
	return &models.Blog{
		ID:          id,
		Title:       "Test Post",
		Slug:        slug,
		Content:     "Test content",
		Tags:        []string{"go"},
		IsPublished: true,
		AuthorID:    authorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
