package persistence

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a receipt or related row does not exist.
// Callers distinguish it from store failures with errors.Is.
var ErrNotFound = errors.New("not found")

// Client wraps a pgx connection pool. All receipt state lives behind it; the
// settlement engine never touches the store directly.
type Client struct {
	db          *pgxpool.Pool
	databaseURL string
}

// NewClient opens a connection pool and verifies connectivity.
func NewClient(ctx context.Context, databaseURL string) (*Client, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	return &Client{db: pool, databaseURL: databaseURL}, nil
}

// Close releases the connection pool.
func (c *Client) Close(ctx context.Context) {
	c.db.Close()
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.Ping(ctx)
}

// RunMigrations applies the embedded goose migrations. Goose drives a
// database/sql handle, so it gets its own short-lived connection through the
// pgx stdlib driver.
func (c *Client) RunMigrations(ctx context.Context) error {
	db, err := sql.Open("pgx", c.databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
