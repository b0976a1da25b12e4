package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/harborml/longshore/internal/logger"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter(io.Discard, "ERROR", "text", false)
	os.Exit(m.Run())
}

// newTestStore creates a store rooted in temp directories.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	base := t.TempDir()
	store, err := New(Config{
		UploadsRoot:   filepath.Join(base, "uploads"),
		CompletedRoot: filepath.Join(base, "completed"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func mustStore(t *testing.T, s *Store, uploadID string, index int, data []byte) {
	t.Helper()
	if err := s.StoreChunk(context.Background(), uploadID, index, data); err != nil {
		t.Fatalf("StoreChunk(%s, %d): %v", uploadID, index, err)
	}
}

func TestNew(t *testing.T) {
	t.Run("creates roots", func(t *testing.T) {
		base := t.TempDir()
		uploads := filepath.Join(base, "a", "uploads")
		completed := filepath.Join(base, "a", "completed")

		_, err := New(Config{UploadsRoot: uploads, CompletedRoot: completed})
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		for _, dir := range []string{uploads, completed} {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				t.Errorf("root %s not created: %v", dir, err)
			}
		}
	})

	t.Run("requires roots", func(t *testing.T) {
		if _, err := New(Config{CompletedRoot: t.TempDir()}); err == nil {
			t.Error("expected error for missing uploads root")
		}
		if _, err := New(Config{UploadsRoot: t.TempDir()}); err == nil {
			t.Error("expected error for missing completed root")
		}
	})
}

func TestStoreChunk(t *testing.T) {
	ctx := context.Background()

	t.Run("commits chunk file", func(t *testing.T) {
		s := newTestStore(t)
		mustStore(t, s, "up-1", 0, []byte("hello"))

		path := filepath.Join(s.UploadsRoot(), "up-1", "0.chunk")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("committed chunk missing: %v", err)
		}
		if !bytes.Equal(data, []byte("hello")) {
			t.Errorf("chunk content = %q, want %q", data, "hello")
		}

		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Errorf("temp file left behind after commit")
		}
	})

	t.Run("idempotent overwrite", func(t *testing.T) {
		s := newTestStore(t)
		for i := 0; i < 3; i++ {
			mustStore(t, s, "up-1", 0, []byte("same bytes"))
		}

		entries, err := os.ReadDir(filepath.Join(s.UploadsRoot(), "up-1"))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected exactly one file, got %d", len(entries))
		}

		data, ok := s.GetChunk("up-1", 0)
		if !ok || !bytes.Equal(data, []byte("same bytes")) {
			t.Errorf("GetChunk = %q, %v", data, ok)
		}
	})

	t.Run("last write wins", func(t *testing.T) {
		s := newTestStore(t)
		mustStore(t, s, "up-1", 0, []byte("aaaa"))
		mustStore(t, s, "up-1", 0, []byte("bbbb"))

		data, _ := s.GetChunk("up-1", 0)
		if !bytes.Equal(data, []byte("bbbb")) {
			t.Errorf("chunk content = %q, want %q", data, "bbbb")
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		s := newTestStore(t)
		mustStore(t, s, "up-1", 0, nil)

		size, ok := s.ChunkSize("up-1", 0)
		if !ok || size != 0 {
			t.Errorf("ChunkSize = %d, %v; want 0, true", size, ok)
		}
	})

	t.Run("negative index rejected", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.StoreChunk(ctx, "up-1", -1, []byte("x")); err == nil {
			t.Error("expected error for negative index")
		}
	})

	t.Run("invalid upload id rejected", func(t *testing.T) {
		s := newTestStore(t)
		for _, id := range []string{"", "..", "a/b", `a\b`} {
			if err := s.StoreChunk(ctx, id, 0, []byte("x")); err == nil {
				t.Errorf("expected error for upload id %q", id)
			}
		}
	})
}

func TestChunkQueries(t *testing.T) {
	s := newTestStore(t)
	mustStore(t, s, "up-1", 2, []byte("abc"))

	if !s.ChunkExists("up-1", 2) {
		t.Error("ChunkExists = false for committed chunk")
	}
	if s.ChunkExists("up-1", 0) {
		t.Error("ChunkExists = true for missing chunk")
	}
	if s.ChunkExists("nope", 2) {
		t.Error("ChunkExists = true for unknown session")
	}

	size, ok := s.ChunkSize("up-1", 2)
	if !ok || size != 3 {
		t.Errorf("ChunkSize = %d, %v; want 3, true", size, ok)
	}
	if _, ok := s.ChunkSize("up-1", 0); ok {
		t.Error("ChunkSize ok for missing chunk")
	}

	if _, ok := s.GetChunk("up-1", 9); ok {
		t.Error("GetChunk ok for missing chunk")
	}
}

func TestListChunks(t *testing.T) {
	t.Run("sorted and filtered", func(t *testing.T) {
		s := newTestStore(t)
		for _, i := range []int{3, 0, 11, 7} {
			mustStore(t, s, "up-1", i, []byte{byte(i)})
		}

		// Noise that enumeration must ignore.
		dir := filepath.Join(s.UploadsRoot(), "up-1")
		for _, name := range []string{"2.chunk.tmp", "notanumber.chunk", "readme.txt"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
				t.Fatal(err)
			}
		}
		if err := os.Mkdir(filepath.Join(dir, "5.chunk"), 0755); err != nil {
			t.Fatal(err)
		}

		got := s.ListChunks("up-1")
		want := []int{0, 3, 7, 11}
		if len(got) != len(want) {
			t.Fatalf("ListChunks = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("ListChunks = %v, want %v", got, want)
			}
		}
	})

	t.Run("unknown session is empty", func(t *testing.T) {
		s := newTestStore(t)
		if got := s.ListChunks("ghost"); len(got) != 0 {
			t.Errorf("ListChunks = %v, want empty", got)
		}
	})
}

func TestReassembleFile(t *testing.T) {
	ctx := context.Background()

	t.Run("concatenates in index order", func(t *testing.T) {
		s := newTestStore(t)

		// Stored out of order on purpose.
		chunks := [][]byte{[]byte("alpha-"), []byte("beta-"), []byte("gamma")}
		for _, i := range []int{2, 0, 1} {
			mustStore(t, s, "up-1", i, chunks[i])
		}

		var total int64
		for _, c := range chunks {
			total += int64(len(c))
		}

		path, err := s.ReassembleFile(ctx, "up-1", 3, "out.bin", total)
		if err != nil {
			t.Fatalf("ReassembleFile: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if want := "alpha-beta-gamma"; string(data) != want {
			t.Errorf("output = %q, want %q", data, want)
		}

		// Staging chunks survive reassembly.
		if got := s.ListChunks("up-1"); len(got) != 3 {
			t.Errorf("staging chunks gone after reassembly: %v", got)
		}
	})

	t.Run("missing chunks", func(t *testing.T) {
		s := newTestStore(t)
		mustStore(t, s, "up-1", 0, []byte("x"))

		_, err := s.ReassembleFile(ctx, "up-1", 3, "out.bin", -1)
		var missingErr *MissingChunksError
		if !errors.As(err, &missingErr) {
			t.Fatalf("expected MissingChunksError, got %v", err)
		}
		if len(missingErr.Missing) != 2 || missingErr.Missing[0] != 1 || missingErr.Missing[1] != 2 {
			t.Errorf("Missing = %v, want [1 2]", missingErr.Missing)
		}

		if _, statErr := os.Stat(filepath.Join(s.CompletedRoot(), "out.bin")); !os.IsNotExist(statErr) {
			t.Error("output created despite missing chunks")
		}
	})

	t.Run("size mismatch deletes output", func(t *testing.T) {
		s := newTestStore(t)
		mustStore(t, s, "up-1", 0, []byte("four"))

		_, err := s.ReassembleFile(ctx, "up-1", 1, "out.bin", 99)
		if !errors.Is(err, ErrSizeMismatch) {
			t.Fatalf("expected ErrSizeMismatch, got %v", err)
		}

		if _, statErr := os.Stat(filepath.Join(s.CompletedRoot(), "out.bin")); !os.IsNotExist(statErr) {
			t.Error("mismatched output not deleted")
		}
	})

	t.Run("unchecked size", func(t *testing.T) {
		s := newTestStore(t)
		mustStore(t, s, "up-1", 0, []byte("whatever"))

		if _, err := s.ReassembleFile(ctx, "up-1", 1, "out.bin", -1); err != nil {
			t.Fatalf("ReassembleFile with size check disabled: %v", err)
		}
	})

	t.Run("rejects unusable output names", func(t *testing.T) {
		s := newTestStore(t)
		mustStore(t, s, "up-1", 0, []byte("x"))

		for _, name := range []string{"", ".", "..", "../escape", "a/b", `a\b`} {
			if _, err := s.ReassembleFile(ctx, "up-1", 1, name, -1); !errors.Is(err, ErrUnsafeFilename) {
				t.Errorf("ReassembleFile(%q) error = %v, want ErrUnsafeFilename", name, err)
			}
		}

		// Nothing escaped the completed root.
		if _, statErr := os.Stat(filepath.Join(filepath.Dir(s.CompletedRoot()), "escape")); !os.IsNotExist(statErr) {
			t.Error("output written outside the completed root")
		}
	})
}

func TestCleanupChunks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustStore(t, s, "up-1", 0, []byte("x"))

	if err := s.CleanupChunks(ctx, "up-1"); err != nil {
		t.Fatalf("CleanupChunks: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.UploadsRoot(), "up-1")); !os.IsNotExist(err) {
		t.Error("session directory still present after cleanup")
	}

	// Cleaning an unknown session is fine.
	if err := s.CleanupChunks(ctx, "up-1"); err != nil {
		t.Errorf("repeat cleanup: %v", err)
	}
}

func TestFileChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatal(err)
	}

	sum, err := FileChecksum(context.Background(), path)
	if err != nil {
		t.Fatalf("FileChecksum: %v", err)
	}

	const want = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if sum != want {
		t.Errorf("checksum = %s, want %s", sum, want)
	}

	if _, err := FileChecksum(context.Background(), filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConcurrentStores(t *testing.T) {
	ctx := context.Background()

	t.Run("same chunk from many writers", func(t *testing.T) {
		s := newTestStore(t)

		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				payload := bytes.Repeat([]byte{byte('a' + w)}, 128)
				for i := 0; i < 10; i++ {
					if err := s.StoreChunk(ctx, "up-1", 0, payload); err != nil {
						t.Errorf("StoreChunk: %v", err)
						return
					}
				}
			}(w)
		}
		wg.Wait()

		// Exactly one committed winner, fully intact.
		data, ok := s.GetChunk("up-1", 0)
		if !ok || len(data) != 128 {
			t.Fatalf("GetChunk = %d bytes, %v", len(data), ok)
		}
		for _, b := range data {
			if b != data[0] {
				t.Fatal("committed chunk interleaves two writers")
			}
		}
	})

	t.Run("distinct chunks reassemble", func(t *testing.T) {
		s := newTestStore(t)
		const n = 32

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				payload := []byte(fmt.Sprintf("%04d", i))
				if err := s.StoreChunk(ctx, "up-1", i, payload); err != nil {
					t.Errorf("StoreChunk(%d): %v", i, err)
				}
			}(i)
		}
		wg.Wait()

		path, err := s.ReassembleFile(ctx, "up-1", n, "out.bin", int64(n*4))
		if err != nil {
			t.Fatalf("ReassembleFile: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < n; i++ {
			if got, want := string(data[i*4:i*4+4]), fmt.Sprintf("%04d", i); got != want {
				t.Fatalf("segment %d = %q, want %q", i, got, want)
			}
		}
	})
}
