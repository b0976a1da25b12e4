package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// jsonDocument is the on-disk shape of the JSON file backend.
type jsonDocument struct {
	Uploads []*Entry `json:"uploads"`
}

// JSONFileCatalog stores entries in a single JSON document.
//
// Every mutation rewrites the whole document through a temp file and
// rename, so a crash mid-write never leaves a truncated catalog. Suitable
// for a single node with a modest number of entries.
type JSONFileCatalog struct {
	mu      sync.RWMutex
	path    string
	entries []*Entry
}

// NewJSONFileCatalog opens (or creates) the catalog document at path.
func NewJSONFileCatalog(path string) (*JSONFileCatalog, error) {
	if path == "" {
		return nil, fmt.Errorf("jsonfile catalog path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	c := &JSONFileCatalog{path: path}
	if err := c.load(); err != nil {
		return nil, err
	}

	return c, nil
}

// load reads the document from disk. A missing file yields an empty catalog.
func (c *JSONFileCatalog) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			c.entries = nil
			return nil
		}
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse catalog file %s: %w", c.path, err)
	}

	c.entries = doc.Uploads
	return nil
}

// flush rewrites the document atomically. Caller must hold the write lock.
func (c *JSONFileCatalog) flush() error {
	doc := jsonDocument{Uploads: c.entries}
	if doc.Uploads == nil {
		doc.Uploads = []*Entry{}
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}

	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}

	return nil
}

// Register adds a new entry and persists the document.
func (c *JSONFileCatalog) Register(ctx context.Context, entry *Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.entries {
		if existing.UploadID == entry.UploadID {
			return ErrDuplicate
		}
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RegisteredAt.IsZero() {
		entry.RegisteredAt = time.Now().UTC()
	}

	c.entries = append(c.entries, entry)

	if err := c.flush(); err != nil {
		// Keep memory and disk consistent on failure.
		c.entries = c.entries[:len(c.entries)-1]
		return err
	}

	return nil
}

// Get returns the entry with the given id.
func (c *JSONFileCatalog) Get(ctx context.Context, id string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, entry := range c.entries {
		if entry.ID == id {
			cp := *entry
			return &cp, nil
		}
	}

	return nil, ErrNotFound
}

// List returns all entries, newest first.
func (c *JSONFileCatalog) List(ctx context.Context) ([]*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		cp := *entry
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RegisteredAt.After(out[j].RegisteredAt)
	})

	return out, nil
}

// HealthCheck verifies the catalog directory is writable.
func (c *JSONFileCatalog) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	marker := filepath.Join(filepath.Dir(c.path), ".catalog-health")
	if err := os.WriteFile(marker, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("catalog directory not writable: %w", err)
	}
	return os.Remove(marker)
}

// Close is a no-op for the JSON file backend.
func (c *JSONFileCatalog) Close() error {
	return nil
}
