package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/ghostofweb/portfolio-api/internal/database"
	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OneTimeCodeRepository handles one-time code data access. Postgres has no
// native TTL, so expiry is checked at validation time and stale rows are only
// removed by the background sweeper.
type OneTimeCodeRepository struct {
	pool *pgxpool.Pool
}

func NewOneTimeCodeRepository(db *database.DB) *OneTimeCodeRepository {
	return &OneTimeCodeRepository{pool: db.Pool}
}

func scanCodeRow(scanner rowScanner) (*models.OneTimeCode, error) {
	var code models.OneTimeCode

	err := scanner.Scan(&code.ID, &code.Email, &code.Code, &code.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &code, nil
}

// Create inserts a new code. Existing codes for the same email are left in
// place; GetLatestByEmail makes them unusable for validation.
func (r *OneTimeCodeRepository) Create(ctx context.Context, email, code string) (*models.OneTimeCode, error) {
	query := `
		INSERT INTO one_time_codes (id, email, code, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, code, created_at
	`

	created, err := scanCodeRow(r.pool.QueryRow(ctx, query, uuid.New().String(), email, code, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to create one-time code: %w", err)
	}

	return created, nil
}

// GetLatestByEmail returns the most recently created code for an email.
func (r *OneTimeCodeRepository) GetLatestByEmail(ctx context.Context, email string) (*models.OneTimeCode, error) {
	query := `
		SELECT id, email, code, created_at
		FROM one_time_codes
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	return scanCodeRow(r.pool.QueryRow(ctx, query, email))
}

// DeleteExpired removes codes created before the cutoff. Storage hygiene
// only; validation never trusts a stale row.
func (r *OneTimeCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM one_time_codes WHERE created_at < $1`

	result, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
