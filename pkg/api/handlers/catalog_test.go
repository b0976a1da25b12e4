package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/harborml/longshore/pkg/catalog"
)

func newTestCatalog(t *testing.T) catalog.Catalog {
	t.Helper()
	cat, err := catalog.NewJSONFileCatalog(filepath.Join(t.TempDir(), "catalog.json"))
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}
	t.Cleanup(func() { _ = cat.Close() })
	return cat
}

func TestCatalogHandler_List(t *testing.T) {
	cat := newTestCatalog(t)
	handler := NewCatalogHandler(cat)
	ctx := context.Background()

	for _, id := range []string{"upload-1", "upload-2"} {
		entry := &catalog.Entry{UploadID: id, Name: id + ".jsonl", FileType: "dataset"}
		if err := cat.Register(ctx, entry); err != nil {
			t.Fatalf("Failed to register entry: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("List() status = %d, want %d", w.Code, http.StatusOK)
	}

	var entries []catalog.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("List() returned %d entries, want 2", len(entries))
	}
}

func TestCatalogHandler_Get(t *testing.T) {
	cat := newTestCatalog(t)
	handler := NewCatalogHandler(cat)
	ctx := context.Background()

	entry := &catalog.Entry{UploadID: "upload-1", Name: "data.jsonl", FileType: "dataset"}
	if err := cat.Register(ctx, entry); err != nil {
		t.Fatalf("Failed to register entry: %v", err)
	}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/catalog/"+entry.ID, nil), "id", entry.ID)
	w := httptest.NewRecorder()
	handler.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Get() status = %d, want %d, body = %s", w.Code, http.StatusOK, w.Body.String())
	}

	var got catalog.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if got.UploadID != "upload-1" {
		t.Errorf("Get() uploadId = %s, want upload-1", got.UploadID)
	}
}

func TestCatalogHandler_Get_NotFound(t *testing.T) {
	handler := NewCatalogHandler(newTestCatalog(t))

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/catalog/nope", nil), "id", "nope")
	w := httptest.NewRecorder()
	handler.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Get() status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
