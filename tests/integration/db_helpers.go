package integration

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ghostofweb/portfolio-api/internal/database"
	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/ghostofweb/portfolio-api/internal/repositories"
	"github.com/ghostofweb/portfolio-api/migrations"
	"github.com/ghostofweb/portfolio-api/pkg/auth"
)

// TestDB manages a PostgreSQL testcontainer and database access
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase creates a PostgreSQL testcontainer, runs migrations, returns TestDB
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("portfolio"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	dbWrapper := &database.DB{
		Pool: pool,
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         dbWrapper,
	}, nil
}

// runMigrations applies the embedded goose migrations
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrations.Embed)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"blogs",
		"one_time_codes",
		"users",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// InitializeRepositories creates all repository instances from the database wrapper
func InitializeRepositories(db *database.DB) (
	*repositories.UserRepository,
	*repositories.OneTimeCodeRepository,
	*repositories.BlogRepository,
) {
	return repositories.NewUserRepository(db),
		repositories.NewOneTimeCodeRepository(db),
		repositories.NewBlogRepository(db)
}

// SeedUser inserts a test user with a hashed password
func SeedUser(ctx context.Context, pool *pgxpool.Pool, username, email, password string, isMaster bool) (*models.User, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (id, username, name, position, email, password_hash, is_master, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, username, name, position, email, password_hash, is_master, created_at, updated_at
	`

	var user models.User
	err = pool.QueryRow(ctx, query, username, "Test "+username, "Developer", email, passwordHash, isMaster).Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.Position,
		&user.Email,
		&user.PasswordHash,
		&user.IsMaster,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

// SeedOneTimeCode inserts a code with the given age
func SeedOneTimeCode(ctx context.Context, pool *pgxpool.Pool, email, code string, ageSeconds int) error {
	query := `
		INSERT INTO one_time_codes (id, email, code, created_at)
		VALUES (gen_random_uuid(), $1, $2, NOW() - make_interval(secs => $3))
	`
	if _, err := pool.Exec(ctx, query, email, code, ageSeconds); err != nil {
		return fmt.Errorf("failed to insert one-time code: %w", err)
	}
	return nil
}

// SeedBlog inserts a blog post for the given author
func SeedBlog(ctx context.Context, pool *pgxpool.Pool, title, slug, authorID string, published bool) (string, error) {
	query := `
		INSERT INTO blogs (id, title, slug, content, tags, is_published, views, author_id, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, 'Seeded content', '{}', $3, 0, $4, NOW(), NOW())
		RETURNING id
	`

	var id string
	if err := pool.QueryRow(ctx, query, title, slug, published, authorID).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to insert blog: %w", err)
	}
	return id, nil
}
