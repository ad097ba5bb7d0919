package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/ghostofweb/portfolio-api/internal/database"
	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, name, position, email, password_hash, is_master, reset_token_hash, reset_token_expires_at, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var resetTokenHash *string
	var resetTokenExpiresAt *time.Time

	err := scanner.Scan(
		&user.ID, &user.Username, &user.Name, &user.Position,
		&user.Email, &user.PasswordHash, &user.IsMaster,
		&resetTokenHash, &resetTokenExpiresAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	user.ResetTokenHash = resetTokenHash
	user.ResetTokenExpiresAt = resetTokenExpiresAt

	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

// GetByUsername compares usernames verbatim, matching the unique index.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, name, position, email, password_hash, is_master, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Name, user.Position,
		user.Email, user.PasswordHash, user.IsMaster,
		user.CreatedAt, user.UpdatedAt,
	))
}

func (r *UserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET username = $1, name = $2, position = $3, password_hash = $4, updated_at = $5
		WHERE id = $6
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.Username, user.Name, user.Position, user.PasswordHash, user.UpdatedAt, id,
	))
}

// SetResetToken stores the hash and expiry of a freshly issued reset token.
func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users SET reset_token_hash = $1, reset_token_expires_at = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, tokenHash, expiresAt, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ClearResetToken removes any outstanding reset token, e.g. after a failed
// mail delivery so the user can retry.
func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	query := `
		UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetByResetTokenHash finds the user holding an unexpired reset token.
func (r *UserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = $1 AND reset_token_expires_at > NOW()`
	return scanUserRow(r.pool.QueryRow(ctx, query, tokenHash))
}

// UpdatePassword commits a new hash and clears the reset-token fields in the
// same statement.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
