// Package catalog stores records of completed uploads so other systems can
// discover them.
//
// Three backends are supported: a human-readable JSON file (single node,
// default), SQLite (single node, queryable) and PostgreSQL (shared between
// instances). All backends implement the same Catalog interface; the
// backend is chosen by configuration.
package catalog

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Common catalog errors.
var (
	// ErrNotFound is returned when no entry exists for the requested id.
	ErrNotFound = errors.New("catalog entry not found")

	// ErrDuplicate is returned when an entry for the same upload already
	// exists.
	ErrDuplicate = errors.New("catalog entry already exists")
)

// Entry is a single catalog record describing a completed upload.
type Entry struct {
	// ID is the catalog identifier (UUID), assigned at registration.
	ID string `gorm:"primaryKey;size:64" json:"id"`

	// UploadID is the upload session that produced the file. Unique:
	// a session completes at most once.
	UploadID string `gorm:"uniqueIndex;size:64;column:upload_id" json:"uploadId"`

	// Name is the original filename.
	Name string `gorm:"size:512" json:"name"`

	// Path is the absolute path of the reassembled file.
	Path string `gorm:"size:1024" json:"path"`

	// FileType is the detected category (dataset, model_artifact, archive,
	// unknown).
	FileType string `gorm:"size:32;column:file_type" json:"fileType"`

	// Format is the file extension without the dot (jsonl, csv, onnx, ...).
	Format string `gorm:"size:32" json:"format"`

	// SizeBytes is the reassembled file size.
	SizeBytes int64 `gorm:"column:size_bytes" json:"sizeBytes"`

	// Checksum is the hex SHA-256 of the file, empty when not computed.
	Checksum string `gorm:"size:64" json:"checksum,omitempty"`

	// RecordCount is the estimated number of records for datasets,
	// zero when unknown.
	RecordCount int64 `gorm:"column:record_count" json:"recordCount,omitempty"`

	// Enhanced is the full enriched metadata record produced by the
	// post-completion pipeline (lineage, dataset_info, model_info).
	// Stored as a JSON column by the database backends.
	Enhanced EnhancedRecord `gorm:"type:text" json:"enhanced,omitempty"`

	// RegisteredAt is when the entry was added to the catalog.
	RegisteredAt time.Time `gorm:"column:registered_at" json:"registeredAt"`
}

// TableName overrides the GORM table name.
func (Entry) TableName() string {
	return "catalog_entries"
}

// EnhancedRecord is the enriched metadata document attached to an entry.
// It implements driver.Valuer and sql.Scanner so the SQL backends can
// persist it as a serialized JSON column.
type EnhancedRecord map[string]any

// Value implements driver.Valuer. An empty record stores as NULL.
func (r EnhancedRecord) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner.
func (r *EnhancedRecord) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		if len(v) == 0 {
			*r = nil
			return nil
		}
		return json.Unmarshal(v, r)
	case string:
		if v == "" {
			*r = nil
			return nil
		}
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("cannot scan %T into catalog enhanced record", src)
	}
}

// Catalog is the storage interface for upload records.
//
// Implementations must be safe for concurrent use.
type Catalog interface {
	// Register adds a new entry. An empty ID is assigned a fresh UUID and
	// a zero RegisteredAt is set to the current time. Returns ErrDuplicate
	// when an entry for the same upload id already exists.
	Register(ctx context.Context, entry *Entry) error

	// Get returns the entry with the given catalog id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Entry, error)

	// List returns all entries, newest first.
	List(ctx context.Context) ([]*Entry, error)

	// HealthCheck verifies the backend is reachable and writable.
	HealthCheck(ctx context.Context) error

	// Close releases backend resources. The catalog must not be used
	// afterwards.
	Close() error
}

// BackendType identifies a catalog backend.
type BackendType string

const (
	// BackendJSONFile stores entries in a single JSON document on disk.
	BackendJSONFile BackendType = "jsonfile"

	// BackendSQLite stores entries in a local SQLite database.
	BackendSQLite BackendType = "sqlite"

	// BackendPostgres stores entries in PostgreSQL.
	BackendPostgres BackendType = "postgres"
)

// JSONFileConfig contains JSON file backend configuration.
type JSONFileConfig struct {
	// Path is the catalog document location.
	// Default: ./catalog.json
	Path string `mapstructure:"path" yaml:"path"`
}

// SQLiteConfig contains SQLite backend configuration.
type SQLiteConfig struct {
	// Path is the SQLite database file location.
	// Default: ./catalog.db
	Path string `mapstructure:"path" yaml:"path"`
}

// PostgresConfig contains PostgreSQL backend configuration.
type PostgresConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`

	// SSLMode is one of disable, require, verify-ca, verify-full.
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// Connection pool settings.
	MaxConns        int32         `mapstructure:"max_conns" yaml:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns" yaml:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime" yaml:"max_conn_lifetime"`
}

// ConnectionString returns the database connection string in keyword/value
// format.
func (c *PostgresConfig) ConnectionString() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)

	if c.SSLMode != "" {
		dsn += fmt.Sprintf(" sslmode=%s", c.SSLMode)
	}

	return dsn
}

// Config selects and configures the catalog backend.
type Config struct {
	// Type is the backend type: jsonfile, sqlite or postgres.
	// Default: jsonfile
	Type BackendType `mapstructure:"type" validate:"omitempty,oneof=jsonfile sqlite postgres" yaml:"type"`

	JSONFile JSONFileConfig `mapstructure:"jsonfile" yaml:"jsonfile"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = BackendJSONFile
	}

	if c.Type == BackendJSONFile && c.JSONFile.Path == "" {
		c.JSONFile.Path = "catalog.json"
	}

	if c.Type == BackendSQLite && c.SQLite.Path == "" {
		c.SQLite.Path = "catalog.db"
	}

	if c.Type == BackendPostgres {
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
		if c.Postgres.MaxConns == 0 {
			c.Postgres.MaxConns = 10
		}
		if c.Postgres.MinConns == 0 {
			c.Postgres.MinConns = 2
		}
		if c.Postgres.MaxConnLifetime == 0 {
			c.Postgres.MaxConnLifetime = time.Hour
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Type {
	case BackendJSONFile:
		if c.JSONFile.Path == "" {
			return fmt.Errorf("jsonfile path is required")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case BackendPostgres:
		if c.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("postgres database is required")
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("postgres user is required")
		}
	default:
		return fmt.Errorf("unsupported catalog backend: %s", c.Type)
	}
	return nil
}
