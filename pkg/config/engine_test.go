package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/pkg/sinks"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter(io.Discard, "ERROR", "text", false)
	os.Exit(m.Run())
}

// engineConfig returns a config pointing every data directory at temp
// space, with tiny chunks and the sweeper off.
func engineConfig(t *testing.T) *Config {
	t.Helper()

	tmp := t.TempDir()
	cfg := GetDefaultConfig()
	cfg.Storage.UploadsDir = filepath.Join(tmp, "uploads")
	cfg.Storage.CompletedDir = filepath.Join(tmp, "completed")
	cfg.Upload.ChunkSize = 4
	cfg.Catalog.JSONFile.Path = filepath.Join(tmp, "catalog.json")
	disabled := false
	cfg.Sweeper.Enabled = &disabled
	return cfg
}

func TestInitializeEngine_UploadRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := engineConfig(t)

	eng, err := InitializeEngine(ctx, cfg)
	if err != nil {
		t.Fatalf("InitializeEngine failed: %v", err)
	}
	defer func() { _ = eng.Close() }()

	if eng.Sweeper != nil {
		t.Fatal("Expected no sweeper when disabled")
	}

	// Upload a small JSONL dataset in 4-byte chunks.
	content := []byte("{\"a\":1}\n{\"b\":2}\n")
	sess, err := eng.Service.Init(ctx, "data.jsonl", int64(len(content)), "")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for i := 0; i*4 < len(content); i++ {
		end := (i + 1) * 4
		if end > len(content) {
			end = len(content)
		}
		if _, err := eng.Service.UploadChunk(ctx, sess.ID, i, content[i*4:end], sess.TotalChunks); err != nil {
			t.Fatalf("UploadChunk %d failed: %v", i, err)
		}
	}

	completed, err := eng.Service.Complete(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if _, err := os.Stat(completed.Path); err != nil {
		t.Fatalf("Completed file missing: %v", err)
	}

	// The pipeline accepts the file and registers it in the catalog.
	if err := eng.Pipeline.Run(ctx, sinks.NewArtifact(completed.Metadata)); err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	entries, err := eng.Catalog.List(ctx)
	if err != nil {
		t.Fatalf("Catalog list failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 catalog entry, got %d", len(entries))
	}
	if entries[0].UploadID != sess.ID {
		t.Errorf("Expected catalog entry for %s, got %s", sess.ID, entries[0].UploadID)
	}
}

func TestInitializeEngine_RecoversPersistedSessions(t *testing.T) {
	ctx := context.Background()
	cfg := engineConfig(t)
	cfg.Sessions.Persist = true
	cfg.Sessions.Path = filepath.Join(t.TempDir(), "sessions")

	eng1, err := InitializeEngine(ctx, cfg)
	if err != nil {
		t.Fatalf("InitializeEngine failed: %v", err)
	}

	sess, err := eng1.Service.Init(ctx, "weights.safetensors", 16, "")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := eng1.Service.UploadChunk(ctx, sess.ID, 0, []byte("abcd"), sess.TotalChunks); err != nil {
		t.Fatalf("UploadChunk failed: %v", err)
	}
	if err := eng1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A fresh engine over the same directories resumes the session.
	eng2, err := InitializeEngine(ctx, cfg)
	if err != nil {
		t.Fatalf("Second InitializeEngine failed: %v", err)
	}
	defer func() { _ = eng2.Close() }()

	if eng2.Recovered != 1 {
		t.Fatalf("Expected 1 recovered session, got %d", eng2.Recovered)
	}

	status, err := eng2.Service.Status(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Status after recovery failed: %v", err)
	}
	if status.Partial {
		t.Error("Expected a full session after recovery, got a partial status")
	}
	if status.TotalChunks != sess.TotalChunks {
		t.Errorf("Expected %d total chunks, got %d", sess.TotalChunks, status.TotalChunks)
	}
	if len(status.ReceivedChunks) != 1 || status.ReceivedChunks[0] != 0 {
		t.Errorf("Expected chunk 0 to survive the restart, got %v", status.ReceivedChunks)
	}
}

func TestInitializeEngine_SweeperEnabledByDefault(t *testing.T) {
	cfg := engineConfig(t)
	cfg.Sweeper.Enabled = nil

	eng, err := InitializeEngine(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitializeEngine failed: %v", err)
	}
	defer func() { _ = eng.Close() }()

	if eng.Sweeper == nil {
		t.Fatal("Expected a sweeper with the default configuration")
	}
}

func TestCreateSessionStore_DisabledReturnsNil(t *testing.T) {
	store, err := CreateSessionStore(SessionsConfig{})
	if err != nil {
		t.Fatalf("CreateSessionStore failed: %v", err)
	}
	if store != nil {
		t.Fatal("Expected nil store when persistence is disabled")
	}
}

func TestCreateSessionStore_RequiresPath(t *testing.T) {
	_, err := CreateSessionStore(SessionsConfig{Persist: true})
	if err == nil {
		t.Fatal("Expected error for persistence without path")
	}
}

func TestCreateCatalog_UnknownBackend(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Catalog.Type = "etcd"

	_, err := CreateCatalog(context.Background(), cfg.Catalog)
	if err == nil {
		t.Fatal("Expected error for unknown catalog backend")
	}
}
