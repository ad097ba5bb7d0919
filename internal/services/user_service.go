package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/ghostofweb/portfolio-api/pkg/auth"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// CodeVerifier is the slice of the one-time code service the user flows need.
type CodeVerifier interface {
	Issue(ctx context.Context, email string) error
	Validate(ctx context.Context, email, candidate string) error
}

// RegisterInput carries the OTP-gated registration fields.
type RegisterInput struct {
	Username string
	Name     string
	Position string
	Password string
	Email    string
	Code     string
}

// UpdateProfileInput carries the self-service profile patch. Empty fields are
// left unchanged; a non-empty Password is re-hashed.
type UpdateProfileInput struct {
	Name     string
	Position string
	Username string
	Password string
	Code     string
}

// UserService handles identity business logic: registration, login, profile
// maintenance, member removal and both password-reset flows.
type UserService struct {
	repo          UserRepository
	codes         CodeVerifier
	mailer        EmailSender
	logger        *slog.Logger
	frontendURL   string
	resetTokenTTL time.Duration
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, codes CodeVerifier, mailer EmailSender, logger *slog.Logger, frontendURL string, resetTokenTTL time.Duration) *UserService {
	return &UserService{
		repo:          repo,
		codes:         codes,
		mailer:        mailer,
		logger:        logger,
		frontendURL:   frontendURL,
		resetTokenTTL: resetTokenTTL,
	}
}

// Register creates an identity once the presented code matches the newest one
// issued to the email. The unique indexes on username and email are the last
// line of defense against the benign race of two concurrent registrations
// passing code validation together.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Name = strings.TrimSpace(input.Name)
	input.Position = strings.TrimSpace(input.Position)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Code = strings.TrimSpace(input.Code)

	if input.Username == "" || input.Name == "" || input.Position == "" ||
		input.Password == "" || input.Email == "" || input.Code == "" {
		return nil, models.ErrBadRequest
	}

	if err := s.codes.Validate(ctx, input.Email, input.Code); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Username:     input.Username,
		Name:         input.Name,
		Position:     input.Position,
		Email:        input.Email,
		PasswordHash: passwordHash,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered",
		slog.String("user_id", created.ID),
		slog.String("username", created.Username))
	return created, nil
}

// Authenticate validates a username/password pair and returns the full record
// for the caller to mint a session token. An unknown username is NotFound, a
// failed hash comparison is Unauthorized; the two are deliberately distinct.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, models.ErrBadRequest
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to look up user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, models.ErrUnauthorized
	}

	return user, nil
}

// List returns every registered identity, newest first. Password hashes stay
// on the model; the handler layer decides what leaves the process.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return users, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// UpdateProfile mutates the caller's own record after re-verifying control of
// the account email with a fresh code. The caller must mint a new session
// token afterwards because the embedded username or position may change.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.codes.Validate(ctx, current.Email, strings.TrimSpace(input.Code)); err != nil {
		return nil, err
	}

	input.Username = strings.TrimSpace(input.Username)
	if input.Username != "" && input.Username != current.Username {
		if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
			return nil, models.ErrConflict
		} else if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		current.Username = input.Username
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		current.Name = name
	}
	if position := strings.TrimSpace(input.Position); position != "" {
		current.Position = position
	}

	// Blank password is a no-op; anything else is re-hashed
	if input.Password != "" {
		passwordHash, err := auth.HashPassword(input.Password)
		if err != nil {
			s.logger.Error("failed to hash password", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		current.PasswordHash = passwordHash
	}

	updated, err := s.repo.Update(ctx, userID, current)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to update user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("profile updated", slog.String("user_id", userID))
	return updated, nil
}

// Remove deletes an identity. The master admin is exempt whether the request
// is a self-delete or another member's removal.
func (s *UserService) Remove(ctx context.Context, targetID string) error {
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", targetID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if target.IsMaster {
		return models.ErrProtectedUser
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("user_id", targetID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user removed", slog.String("user_id", targetID))
	return nil
}

// RequestRegistrationCode issues a code for a not-yet-registered email.
func (s *UserService) RequestRegistrationCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.ErrBadRequest
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email", slog.Any("error", err))
		return models.ErrInternalServer
	}

	return s.codes.Issue(ctx, email)
}

// RequestProfileCode issues a self-verification code ahead of a profile
// update.
func (s *UserService) RequestProfileCode(ctx context.Context, userID string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return models.ErrInternalServer
	}

	return s.codes.Issue(ctx, user.Email)
}

// RequestPasswordResetCode looks an account up by username and issues a code
// to its stored email.
func (s *UserService) RequestPasswordResetCode(ctx context.Context, username string) error {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up user", slog.Any("error", err))
		return models.ErrInternalServer
	}

	return s.codes.Issue(ctx, user.Email)
}

// ResetPasswordWithCode consumes the newest code for the account's email and
// commits a new password hash, clearing any outstanding reset-link fields.
func (s *UserService) ResetPasswordWithCode(ctx context.Context, username, code, newPassword string) error {
	if newPassword == "" {
		return models.ErrBadRequest
	}

	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up user", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.codes.Validate(ctx, user.Email, strings.TrimSpace(code)); err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset via code", slog.String("user_id", user.ID))
	return nil
}

// RequestPasswordResetLink issues a one-shot reset link. Only the token hash
// is stored; a failed mail send clears the fields again so the user can
// retry.
func (s *UserService) RequestPasswordResetLink(ctx context.Context, username string) error {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up user", slog.Any("error", err))
		return models.ErrInternalServer
	}

	plain, tokenHash, err := auth.GenerateResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	expiresAt := time.Now().Add(s.resetTokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		s.logger.Error("failed to store reset token", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, plain)
	body := fmt.Sprintf(
		"You have requested a password reset.\n\n%s\n\nThis link allows you to reset your password within %d minutes.",
		resetURL, int(s.resetTokenTTL.Minutes()))

	if err := s.mailer.Send(ctx, user.Email, "Password Reset Request", body); err != nil {
		if clearErr := s.repo.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.logger.Error("failed to clear reset token after mail failure",
				slog.String("user_id", user.ID), slog.Any("error", clearErr))
		}
		return fmt.Errorf("%w: %v", models.ErrMailDelivery, err)
	}

	s.logger.Info("password reset link sent", slog.String("user_id", user.ID))
	return nil
}

// ResetPasswordWithToken matches a plain token from a reset link against the
// stored hash and, inside the expiry window, commits the new password.
func (s *UserService) ResetPasswordWithToken(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return models.ErrBadRequest
	}

	user, err := s.repo.GetByResetTokenHash(ctx, auth.HashResetToken(token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrInvalidCode
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset via link", slog.String("user_id", user.ID))
	return nil
}
