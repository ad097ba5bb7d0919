package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ghostofweb/portfolio-api/internal/auth"
	"github.com/ghostofweb/portfolio-api/internal/config"
	"github.com/ghostofweb/portfolio-api/internal/database"
	"github.com/ghostofweb/portfolio-api/internal/handlers"
	middlewareCustom "github.com/ghostofweb/portfolio-api/internal/middleware"
	"github.com/ghostofweb/portfolio-api/internal/routes"
	"github.com/ghostofweb/portfolio-api/internal/services"
	pkghttp "github.com/ghostofweb/portfolio-api/pkg/http"
)

// SentEmail represents a captured email message
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// CaptureMailer records outbound mail for test assertions
type CaptureMailer struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

func (m *CaptureMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// GetLastEmail returns the most recent email sent
func (m *CaptureMailer) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// NullUploader pretends to store images and returns a deterministic URL
type NullUploader struct{}

func (NullUploader) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	io.Copy(io.Discard, body)
	return "https://test-bucket.local/" + filename, nil
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
	Mailer *CaptureMailer
	Config *config.Config

	logger *slog.Logger
}

// NewTestServer initializes a complete HTTP server with a real database and
// captured mail/storage collaborators
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret-32-characters-long-for-testing",
			TokenExpiry:      7 * 24 * time.Hour,
			OTPTTL:           300 * time.Second,
			ResetTokenTTL:    10 * time.Minute,
			OTPSweepInterval: 1 * time.Hour,
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{},
			FrontendURL:    "http://localhost:5173",
		},
	}

	userRepo, codeRepo, blogRepo := InitializeRepositories(db)

	mailer := &CaptureMailer{}

	codeService := services.NewOneTimeCodeService(codeRepo, mailer, logger, cfg.Auth.OTPTTL)
	userService := services.NewUserService(userRepo, codeService, mailer, logger, cfg.Server.FrontendURL, cfg.Auth.ResetTokenTTL)
	blogService := services.NewBlogService(blogRepo, NullUploader{}, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	userHandler := handlers.NewUserHandler(userService, tokenManager)
	blogHandler := handlers.NewBlogHandler(blogService)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, userHandler, blogHandler, tokenManager, userRepo)

	server := httptest.NewServer(r)

	return &TestServer{
		Server: server,
		DB:     db,
		Mailer: mailer,
		Config: cfg,
		logger: logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with a bearer token
func (ts *TestServer) RequestWithAuth(method, path, token string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + token,
	}
	return ts.Request(method, path, body, headers)
}

// ParseEnvelope parses the uniform response body
func ParseEnvelope(resp *http.Response) (pkghttp.Envelope, error) {
	defer resp.Body.Close()

	var env pkghttp.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return env, fmt.Errorf("failed to parse response: %w", err)
	}
	return env, nil
}

// ExtractToken pulls the session token out of a login/register envelope
func ExtractToken(env pkghttp.Envelope) string {
	data, ok := env.Data.(map[string]interface{})
	if !ok {
		return ""
	}
	token, _ := data["token"].(string)
	return token
}
