package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ghostofweb/portfolio-api/internal/models"
	pkglogger "github.com/ghostofweb/portfolio-api/pkg/logger"
)

// OneTimeCodeRepository defines the interface for one-time code data access
type OneTimeCodeRepository interface {
	Create(ctx context.Context, email, code string) (*models.OneTimeCode, error)
	GetLatestByEmail(ctx context.Context, email string) (*models.OneTimeCode, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// OneTimeCodeService issues and validates the 6-digit email codes that gate
// registration, profile updates and password resets.
type OneTimeCodeService struct {
	repo   OneTimeCodeRepository
	mailer EmailSender
	logger *slog.Logger
	ttl    time.Duration
}

// NewOneTimeCodeService creates a new OneTimeCodeService
func NewOneTimeCodeService(repo OneTimeCodeRepository, mailer EmailSender, logger *slog.Logger, ttl time.Duration) *OneTimeCodeService {
	return &OneTimeCodeService{
		repo:   repo,
		mailer: mailer,
		logger: logger,
		ttl:    ttl,
	}
}

// generateCode draws a uniform 6-digit code from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Issue generates a fresh code, persists it and mails it out. Earlier codes
// for the same email stay in the table but stop validating, since only the
// newest one is consulted. A delivery failure surfaces as ErrMailDelivery,
// distinct from a persistence failure.
func (s *OneTimeCodeService) Issue(ctx context.Context, email string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	if _, err := s.repo.Create(ctx, email, code); err != nil {
		s.logger.Error("failed to persist one-time code",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to persist one-time code: %w", err)
	}

	body := fmt.Sprintf("Your verification code is: %s. It expires in 5 minutes.", code)
	if err := s.mailer.Send(ctx, email, "Verification Code - GhostOfWeb", body); err != nil {
		s.logger.Error("failed to deliver one-time code",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return fmt.Errorf("%w: %v", models.ErrMailDelivery, err)
	}

	s.logger.Info("one-time code issued", slog.String("email", pkglogger.SanitizedEmail(email)))
	return nil
}

// Validate checks a candidate against the most recent code for the email.
// Older outstanding codes never validate, even inside their TTL window. The
// matched record is not deleted; re-issue or the sweeper retires it.
func (s *OneTimeCodeService) Validate(ctx context.Context, email, candidate string) error {
	latest, err := s.repo.GetLatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrInvalidCode
		}
		return fmt.Errorf("failed to look up one-time code: %w", err)
	}

	if latest.IsExpired(s.ttl, time.Now()) {
		return models.ErrInvalidCode
	}

	if latest.Code != candidate {
		return models.ErrInvalidCode
	}

	return nil
}

// Sweep deletes codes past their TTL. Correctness never depends on this; it
// only keeps the table small.
func (s *OneTimeCodeService) Sweep(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now().Add(-s.ttl))
}
