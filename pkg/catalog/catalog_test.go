package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// backends lists the catalog implementations exercised by the contract
// tests. The postgres backend is covered by the integration suite.
func backends(t *testing.T) map[string]func(t *testing.T) Catalog {
	t.Helper()
	return map[string]func(t *testing.T) Catalog{
		"jsonfile": func(t *testing.T) Catalog {
			t.Helper()
			c, err := NewJSONFileCatalog(filepath.Join(t.TempDir(), "catalog.json"))
			if err != nil {
				t.Fatalf("failed to create jsonfile catalog: %v", err)
			}
			return c
		},
		"sqlite": func(t *testing.T) Catalog {
			t.Helper()
			c, err := NewSQLiteCatalog(filepath.Join(t.TempDir(), "catalog.db"))
			if err != nil {
				t.Fatalf("failed to create sqlite catalog: %v", err)
			}
			return c
		},
	}
}

func testEntry(uploadID string) *Entry {
	return &Entry{
		UploadID:  uploadID,
		Name:      "train.jsonl",
		Path:      "/data/completed/train.jsonl",
		FileType:  "dataset",
		Format:    "jsonl",
		SizeBytes: 4096,
		Checksum:  "abc123",
		Enhanced: EnhancedRecord{
			"lineage": map[string]any{
				"source":          "user_upload",
				"downstream_jobs": []any{},
			},
			"dataset_info": map[string]any{
				"format":            ".jsonl",
				"preview_available": true,
			},
		},
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	t.Run("default backend is jsonfile", func(t *testing.T) {
		cfg := &Config{}
		cfg.ApplyDefaults()

		if cfg.Type != BackendJSONFile {
			t.Errorf("expected jsonfile, got %s", cfg.Type)
		}
		if cfg.JSONFile.Path == "" {
			t.Error("expected default jsonfile path")
		}
	})

	t.Run("postgres pool defaults", func(t *testing.T) {
		cfg := &Config{Type: BackendPostgres}
		cfg.ApplyDefaults()

		if cfg.Postgres.Port != 5432 {
			t.Errorf("expected port 5432, got %d", cfg.Postgres.Port)
		}
		if cfg.Postgres.SSLMode != "disable" {
			t.Errorf("expected ssl_mode disable, got %s", cfg.Postgres.SSLMode)
		}
		if cfg.Postgres.MaxConns == 0 || cfg.Postgres.MinConns == 0 {
			t.Error("expected pool size defaults")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		cfg := &Config{Type: "etcd"}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unknown backend")
		}
	})

	t.Run("postgres requires host, database and user", func(t *testing.T) {
		cfg := &Config{Type: BackendPostgres}
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for missing postgres settings")
		}

		cfg.Postgres.Host = "localhost"
		cfg.Postgres.Database = "longshore"
		cfg.Postgres.User = "longshore"
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})
}

func TestRegisterAndGet(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cat := open(t)
			defer cat.Close()
			ctx := context.Background()

			entry := testEntry("upload-1")
			if err := cat.Register(ctx, entry); err != nil {
				t.Fatalf("failed to register entry: %v", err)
			}
			if entry.ID == "" {
				t.Error("expected assigned catalog id")
			}
			if entry.RegisteredAt.IsZero() {
				t.Error("expected registered_at to be set")
			}

			got, err := cat.Get(ctx, entry.ID)
			if err != nil {
				t.Fatalf("failed to get entry: %v", err)
			}
			if got.UploadID != "upload-1" || got.Name != "train.jsonl" {
				t.Errorf("unexpected entry: %+v", got)
			}
			if got.FileType != "dataset" || got.Format != "jsonl" {
				t.Errorf("unexpected classification: %+v", got)
			}

			// The enriched record round-trips through the backend.
			lineage, ok := got.Enhanced["lineage"].(map[string]any)
			if !ok {
				t.Fatalf("expected lineage in enhanced record, got %#v", got.Enhanced)
			}
			if lineage["source"] != "user_upload" {
				t.Errorf("unexpected lineage source: %v", lineage["source"])
			}
			info, ok := got.Enhanced["dataset_info"].(map[string]any)
			if !ok {
				t.Fatalf("expected dataset_info in enhanced record, got %#v", got.Enhanced)
			}
			if info["preview_available"] != true {
				t.Errorf("expected preview_available true, got %v", info["preview_available"])
			}
		})
	}
}

func TestRegisterDuplicateUpload(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cat := open(t)
			defer cat.Close()
			ctx := context.Background()

			if err := cat.Register(ctx, testEntry("upload-1")); err != nil {
				t.Fatalf("failed to register entry: %v", err)
			}

			err := cat.Register(ctx, testEntry("upload-1"))
			if !errors.Is(err, ErrDuplicate) {
				t.Errorf("expected ErrDuplicate, got %v", err)
			}
		})
	}
}

func TestGetNotFound(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cat := open(t)
			defer cat.Close()

			_, err := cat.Get(context.Background(), "missing")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestListNewestFirst(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cat := open(t)
			defer cat.Close()
			ctx := context.Background()

			older := testEntry("upload-old")
			older.RegisteredAt = time.Now().UTC().Add(-time.Hour)
			newer := testEntry("upload-new")
			newer.RegisteredAt = time.Now().UTC()

			if err := cat.Register(ctx, older); err != nil {
				t.Fatalf("failed to register older entry: %v", err)
			}
			if err := cat.Register(ctx, newer); err != nil {
				t.Fatalf("failed to register newer entry: %v", err)
			}

			entries, err := cat.List(ctx)
			if err != nil {
				t.Fatalf("failed to list entries: %v", err)
			}
			if len(entries) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(entries))
			}
			if entries[0].UploadID != "upload-new" {
				t.Errorf("expected newest entry first, got %s", entries[0].UploadID)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cat := open(t)
			defer cat.Close()

			if err := cat.HealthCheck(context.Background()); err != nil {
				t.Errorf("expected healthy catalog, got %v", err)
			}
		})
	}
}

func TestJSONFilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	ctx := context.Background()

	first, err := NewJSONFileCatalog(path)
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}
	entry := testEntry("upload-1")
	if err := first.Register(ctx, entry); err != nil {
		t.Fatalf("failed to register entry: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("failed to close catalog: %v", err)
	}

	// Document shape is stable: a top-level "uploads" array.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read catalog file: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("catalog file is not valid JSON: %v", err)
	}
	if _, ok := doc["uploads"]; !ok {
		t.Error("expected top-level uploads array")
	}

	reopened, err := NewJSONFileCatalog(path)
	if err != nil {
		t.Fatalf("failed to reopen catalog: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("failed to get entry after reopen: %v", err)
	}
	if got.UploadID != "upload-1" {
		t.Errorf("unexpected entry after reopen: %+v", got)
	}
	if _, ok := got.Enhanced["lineage"]; !ok {
		t.Errorf("expected enhanced record to survive reopen, got %#v", got.Enhanced)
	}
}
