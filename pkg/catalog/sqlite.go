package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteCatalog stores entries in a local SQLite database via GORM.
type SQLiteCatalog struct {
	db *gorm.DB
}

// NewSQLiteCatalog opens (or creates) the SQLite database at path and
// migrates the schema.
func NewSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite catalog path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// SQLite pragmas for better concurrent access:
	// - journal_mode(WAL): Write-Ahead Logging for concurrent readers/single writer
	// - busy_timeout(5000): Wait up to 5 seconds when database is locked
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog schema: %w", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

// DB returns the underlying GORM database connection. Useful for tests.
func (c *SQLiteCatalog) DB() *gorm.DB {
	return c.db
}

// Register adds a new entry.
func (c *SQLiteCatalog) Register(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RegisteredAt.IsZero() {
		entry.RegisteredAt = time.Now().UTC()
	}

	if err := c.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to register catalog entry: %w", err)
	}

	return nil
}

// Get returns the entry with the given id.
func (c *SQLiteCatalog) Get(ctx context.Context, id string) (*Entry, error) {
	var entry Entry
	if err := c.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &entry, nil
}

// List returns all entries, newest first.
func (c *SQLiteCatalog) List(ctx context.Context) ([]*Entry, error) {
	var entries []*Entry
	if err := c.db.WithContext(ctx).Order("registered_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	return entries, nil
}

// HealthCheck verifies the database answers queries.
func (c *SQLiteCatalog) HealthCheck(ctx context.Context) error {
	var one int
	if err := c.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return fmt.Errorf("catalog database unavailable: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (c *SQLiteCatalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueConstraintError checks if the error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite or PostgreSQL unique constraint errors
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "duplicate key value violates unique constraint")
}

// convertNotFoundError converts gorm.ErrRecordNotFound to ErrNotFound.
func convertNotFoundError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
