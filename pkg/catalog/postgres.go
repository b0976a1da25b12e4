package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborml/longshore/internal/logger"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// PostgresCatalog stores entries in PostgreSQL so multiple instances can
// share one catalog.
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalog connects to PostgreSQL, runs schema migrations and
// returns a ready catalog.
func NewPostgresCatalog(ctx context.Context, cfg *PostgresConfig) (*PostgresCatalog, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	logger.Debug("connecting to postgres catalog",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
		"max_conns", cfg.MaxConns,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := runMigrations(ctx, cfg); err != nil {
		pool.Close()
		return nil, fmt.Errorf("catalog migrations failed: %w", err)
	}

	return &PostgresCatalog{pool: pool}, nil
}

// Register adds a new entry.
func (c *PostgresCatalog) Register(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RegisteredAt.IsZero() {
		entry.RegisteredAt = time.Now().UTC()
	}

	_, err := c.pool.Exec(ctx, `
		INSERT INTO catalog_entries
			(id, upload_id, name, path, file_type, format, size_bytes, checksum, record_count, enhanced, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, entry.UploadID, entry.Name, entry.Path, entry.FileType,
		entry.Format, entry.SizeBytes, entry.Checksum, entry.RecordCount, entry.Enhanced, entry.RegisteredAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to register catalog entry: %w", err)
	}

	return nil
}

// Get returns the entry with the given id.
func (c *PostgresCatalog) Get(ctx context.Context, id string) (*Entry, error) {
	row := c.pool.QueryRow(ctx, `
		SELECT id, upload_id, name, path, file_type, format, size_bytes, checksum, record_count, enhanced, registered_at
		FROM catalog_entries
		WHERE id = $1`, id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}

	return entry, nil
}

// List returns all entries, newest first.
func (c *PostgresCatalog) List(ctx context.Context) ([]*Entry, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, upload_id, name, path, file_type, format, size_bytes, checksum, record_count, enhanced, registered_at
		FROM catalog_entries
		ORDER BY registered_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog entries: %w", err)
	}

	return entries, nil
}

// HealthCheck verifies the database is reachable.
func (c *PostgresCatalog) HealthCheck(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return fmt.Errorf("catalog database unavailable: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (c *PostgresCatalog) Close() error {
	c.pool.Close()
	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	err := row.Scan(
		&entry.ID, &entry.UploadID, &entry.Name, &entry.Path, &entry.FileType,
		&entry.Format, &entry.SizeBytes, &entry.Checksum, &entry.RecordCount, &entry.Enhanced, &entry.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
