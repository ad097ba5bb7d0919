package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ghostofweb/portfolio-api/internal/auth"
	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/ghostofweb/portfolio-api/internal/services"
	pkghttp "github.com/ghostofweb/portfolio-api/pkg/http"
	"github.com/go-chi/chi/v5"
)

// UserManager defines the interface for user business logic
type UserManager interface {
	Register(ctx context.Context, input services.RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, userID string, input services.UpdateProfileInput) (*models.User, error)
	Remove(ctx context.Context, targetID string) error
	RequestRegistrationCode(ctx context.Context, email string) error
	RequestProfileCode(ctx context.Context, userID string) error
	RequestPasswordResetCode(ctx context.Context, username string) error
	ResetPasswordWithCode(ctx context.Context, username, code, newPassword string) error
	RequestPasswordResetLink(ctx context.Context, username string) error
	ResetPasswordWithToken(ctx context.Context, token, newPassword string) error
}

// TokenIssuer mints session tokens for a user
type TokenIssuer interface {
	Generate(user *models.User) (string, error)
}

// UserHandler handles identity HTTP requests
type UserHandler struct {
	service UserManager
	tokens  TokenIssuer
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserManager, tokens TokenIssuer) *UserHandler {
	return &UserHandler{
		service: service,
		tokens:  tokens,
	}
}

// Request/Response DTOs

// SendOTPRequest asks for a registration code
type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Name     string `json:"name" validate:"required,min=1"`
	Position string `json:"position" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents the request body for a profile update
type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,min=1"`
	Position string `json:"position" validate:"omitempty,min=1"`
	Username string `json:"username" validate:"omitempty,min=1"`
	Password string `json:"password" validate:"omitempty,min=6"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
}

// ForgotPasswordRequest starts either reset flow by username
type ForgotPasswordRequest struct {
	Username string `json:"username" validate:"required"`
}

// ResetPasswordOTPRequest consumes a reset code
type ResetPasswordOTPRequest struct {
	Username    string `json:"username" validate:"required"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// ResetPasswordTokenRequest consumes a reset link token
type ResetPasswordTokenRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// UserResponse represents a user in the HTTP response, hash excluded
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Position  string `json:"position"`
	Email     string `json:"email"`
	IsMaster  bool   `json:"isMaster"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// SessionResponse pairs a minted token with its user
type SessionResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Position:  user.Position,
		Email:     user.Email,
		IsMaster:  user.IsMaster,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: user.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// SendOTP issues a registration code to a not-yet-registered email
func (h *UserHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.RequestRegistrationCode(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Email is already registered")
		case errors.Is(err, models.ErrMailDelivery):
			pkghttp.WriteInternalError(w, "Failed to send OTP email")
		default:
			pkghttp.WriteInternalError(w, "Failed to send OTP")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "OTP sent successfully", nil)
}

// Register creates an identity gated by a valid OTP and returns a session
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Name:     req.Name,
		Position: req.Position,
		Password: req.Password,
		Email:    req.Email,
		Code:     req.OTP,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCode):
			pkghttp.WriteUnauthorized(w, "Invalid or expired OTP")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Username or Email is already taken")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "All fields are required")
		default:
			pkghttp.WriteInternalError(w, "Failed to register user")
		}
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to issue session token")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "User registered successfully", &SessionResponse{
		Token: token,
		User:  userModelToResponse(user),
	})
}

// Login authenticates a username/password pair and returns a session.
// An unknown username answers 404, a wrong password 401.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Invalid password")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Username and password are required")
		default:
			pkghttp.WriteInternalError(w, "Failed to log in")
		}
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to issue session token")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Login successful", &SessionResponse{
		Token: token,
		User:  userModelToResponse(user),
	})
}

// Profile returns the authenticated caller's own identity
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Profile fetched successfully", userModelToResponse(user))
}

// SendCurrentUserOTP issues a self-verification code ahead of a profile update
func (h *UserHandler) SendCurrentUserOTP(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	if err := h.service.RequestProfileCode(r.Context(), user.ID); err != nil {
		switch {
		case errors.Is(err, models.ErrMailDelivery):
			pkghttp.WriteInternalError(w, "Failed to send OTP email")
		default:
			pkghttp.WriteInternalError(w, "Failed to send OTP")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "OTP sent successfully", nil)
}

// UpdateProfile mutates the caller's record and re-mints the session token,
// since the embedded username or position may have changed
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.ID, services.UpdateProfileInput{
		Name:     req.Name,
		Position: req.Position,
		Username: req.Username,
		Password: req.Password,
		Code:     req.OTP,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCode):
			pkghttp.WriteUnauthorized(w, "Invalid or expired OTP")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Username is already taken")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Failed to update profile")
		}
		return
	}

	token, err := h.tokens.Generate(updated)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to issue session token")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Profile updated successfully", &SessionResponse{
		Token: token,
		User:  userModelToResponse(updated),
	})
}

// DeleteAccount self-deletes the caller. The master admin is refused.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	if err := h.service.Remove(r.Context(), user.ID); err != nil {
		switch {
		case errors.Is(err, models.ErrProtectedUser):
			pkghttp.WriteForbidden(w, "The master admin account cannot be deleted")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Failed to delete account")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Account deleted successfully", nil)
}

// AllUsers lists every identity, hashes excluded
func (h *UserHandler) AllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch users")
		return
	}

	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userModelToResponse(u))
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Users fetched successfully", out)
}

// RemoveMember removes another identity; routed behind the master guard
func (h *UserHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "id")
	if targetID == "" {
		pkghttp.WriteBadRequest(w, "Member ID is required")
		return
	}

	if err := h.service.Remove(r.Context(), targetID); err != nil {
		switch {
		case errors.Is(err, models.ErrProtectedUser):
			pkghttp.WriteForbidden(w, "The master admin cannot be removed")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Failed to remove member")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Member removed successfully", nil)
}

// ForgotPasswordOTP issues a reset code to the email on file for a username
func (h *UserHandler) ForgotPasswordOTP(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.RequestPasswordResetCode(r.Context(), req.Username); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrMailDelivery):
			pkghttp.WriteInternalError(w, "Failed to send OTP email")
		default:
			pkghttp.WriteInternalError(w, "Failed to send OTP")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "OTP sent successfully", nil)
}

// ResetPasswordOTP consumes a reset code and commits the new password
func (h *UserHandler) ResetPasswordOTP(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ResetPasswordWithCode(r.Context(), req.Username, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCode):
			pkghttp.WriteUnauthorized(w, "Invalid or expired OTP")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Failed to reset password")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Password reset successfully", nil)
}

// ForgotPassword mails a one-shot reset link
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.RequestPasswordResetLink(r.Context(), req.Username); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrMailDelivery):
			pkghttp.WriteInternalError(w, "The email could not be sent")
		default:
			pkghttp.WriteInternalError(w, "Failed to request password reset")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Password reset email sent", nil)
}

// ResetPassword matches a reset-link token and commits the new password
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		pkghttp.WriteBadRequest(w, "Reset token is required")
		return
	}

	var req ResetPasswordTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ResetPasswordWithToken(r.Context(), token, req.Password); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCode):
			pkghttp.WriteUnauthorized(w, "Invalid or expired reset token")
		default:
			pkghttp.WriteInternalError(w, "Failed to reset password")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Password reset successfully", nil)
}
