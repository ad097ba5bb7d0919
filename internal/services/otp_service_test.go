package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestOneTimeCodeService_Issue_PersistsAndMails(t *testing.T) {
	var persistedEmail, persistedCode string
	mockRepo := &MockOneTimeCodeRepository{
		CreateFunc: func(ctx context.Context, email, code string) (*models.OneTimeCode, error) {
			persistedEmail = email
			persistedCode = code
			return NewTestCode(email, code, time.Now()), nil
		},
	}
	mailer := &MockEmailSender{}

	svc := NewOneTimeCodeService(mockRepo, mailer, slog.Default(), 5*time.Minute)

	err := svc.Issue(context.Background(), "dev@example.com")

	assert.NoError(t, err)
	assert.Equal(t, "dev@example.com", persistedEmail)
	assert.Len(t, persistedCode, 6)
	assert.Len(t, mailer.Sent, 1)
	assert.Equal(t, "dev@example.com", mailer.Sent[0].To)
	assert.Contains(t, mailer.Sent[0].Body, persistedCode)
}

func TestOneTimeCodeService_Issue_MailFailure(t *testing.T) {
	mockRepo := &MockOneTimeCodeRepository{}
	mailer := &MockEmailSender{
		SendFunc: func(ctx context.Context, to, subject, body string) error {
			return errors.New("ses unavailable")
		},
	}

	svc := NewOneTimeCodeService(mockRepo, mailer, slog.Default(), 5*time.Minute)

	err := svc.Issue(context.Background(), "dev@example.com")

	assert.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMailDelivery)
}

func TestOneTimeCodeService_Issue_PersistFailure(t *testing.T) {
	mockRepo := &MockOneTimeCodeRepository{
		CreateFunc: func(ctx context.Context, email, code string) (*models.OneTimeCode, error) {
			return nil, models.ErrInternalServer
		},
	}
	mailer := &MockEmailSender{}

	svc := NewOneTimeCodeService(mockRepo, mailer, slog.Default(), 5*time.Minute)

	err := svc.Issue(context.Background(), "dev@example.com")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrMailDelivery)
	assert.Empty(t, mailer.Sent)
}

func TestOneTimeCodeService_Validate_Success(t *testing.T) {
	mockRepo := &MockOneTimeCodeRepository{
		GetLatestByEmailFunc: func(ctx context.Context, email string) (*models.OneTimeCode, error) {
			return NewTestCode(email, "123456", time.Now().Add(-1*time.Minute)), nil
		},
	}

	svc := NewOneTimeCodeService(mockRepo, &MockEmailSender{}, slog.Default(), 5*time.Minute)

	err := svc.Validate(context.Background(), "dev@example.com", "123456")

	assert.NoError(t, err)
}

func TestOneTimeCodeService_Validate_Expired(t *testing.T) {
	mockRepo := &MockOneTimeCodeRepository{
		GetLatestByEmailFunc: func(ctx context.Context, email string) (*models.OneTimeCode, error) {
			return NewTestCode(email, "123456", time.Now().Add(-6*time.Minute)), nil
		},
	}

	svc := NewOneTimeCodeService(mockRepo, &MockEmailSender{}, slog.Default(), 5*time.Minute)

	err := svc.Validate(context.Background(), "dev@example.com", "123456")

	assert.ErrorIs(t, err, models.ErrInvalidCode)
}

func TestOneTimeCodeService_Validate_Mismatch(t *testing.T) {
	mockRepo := &MockOneTimeCodeRepository{
		GetLatestByEmailFunc: func(ctx context.Context, email string) (*models.OneTimeCode, error) {
			return NewTestCode(email, "123456", time.Now()), nil
		},
	}

	svc := NewOneTimeCodeService(mockRepo, &MockEmailSender{}, slog.Default(), 5*time.Minute)

	err := svc.Validate(context.Background(), "dev@example.com", "654321")

	assert.ErrorIs(t, err, models.ErrInvalidCode)
}

func TestOneTimeCodeService_Validate_NoCodeIssued(t *testing.T) {
	mockRepo := &MockOneTimeCodeRepository{}

	svc := NewOneTimeCodeService(mockRepo, &MockEmailSender{}, slog.Default(), 5*time.Minute)

	err := svc.Validate(context.Background(), "dev@example.com", "123456")

	assert.ErrorIs(t, err, models.ErrInvalidCode)
}

// An older code stays in the table after a re-issue but only the newest one
// is consulted, so the stale one must not validate.
func TestOneTimeCodeService_Validate_LatestCodeWins(t *testing.T) {
	mockRepo := &MockOneTimeCodeRepository{
		GetLatestByEmailFunc: func(ctx context.Context, email string) (*models.OneTimeCode, error) {
			return NewTestCode(email, "222222", time.Now()), nil
		},
	}

	svc := NewOneTimeCodeService(mockRepo, &MockEmailSender{}, slog.Default(), 5*time.Minute)

	assert.ErrorIs(t, svc.Validate(context.Background(), "dev@example.com", "111111"), models.ErrInvalidCode)
	assert.NoError(t, svc.Validate(context.Background(), "dev@example.com", "222222"))
}

func TestOneTimeCodeService_Sweep(t *testing.T) {
	var cutoff time.Time
	mockRepo := &MockOneTimeCodeRepository{
		DeleteExpiredFunc: func(ctx context.Context, before time.Time) (int64, error) {
			cutoff = before
			return 3, nil
		},
	}

	svc := NewOneTimeCodeService(mockRepo, &MockEmailSender{}, slog.Default(), 5*time.Minute)

	deleted, err := svc.Sweep(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.WithinDuration(t, time.Now().Add(-5*time.Minute), cutoff, 2*time.Second)
}

func TestGenerateCode_SixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateCode()
		assert.NoError(t, err)
		assert.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}
