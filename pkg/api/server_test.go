package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/pkg/catalog"
	"github.com/harborml/longshore/pkg/sinks"
	"github.com/harborml/longshore/pkg/storage"
	"github.com/harborml/longshore/pkg/upload"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter(io.Discard, "ERROR", "text", false)
	os.Exit(m.Run())
}

// testDeps builds a full engine over temp directories with an 8-byte chunk
// size.
func testDeps(t *testing.T) Deps {
	t.Helper()

	store, err := storage.New(storage.DefaultConfig(
		filepath.Join(t.TempDir(), "uploads"),
		filepath.Join(t.TempDir(), "completed"),
	))
	if err != nil {
		t.Fatalf("Failed to create chunk store: %v", err)
	}

	service := upload.NewService(store, upload.NewRegistry(), upload.Options{ChunkSize: 8})

	cat, err := catalog.NewJSONFileCatalog(filepath.Join(t.TempDir(), "catalog.json"))
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}
	t.Cleanup(func() { _ = cat.Close() })

	vetoing, final := sinks.DefaultSinks(sinks.NewRegisterSink(cat))
	pipeline := sinks.NewPipeline(vetoing, final, sinks.Options{})

	return Deps{
		Service:  service,
		Pipeline: pipeline,
		Catalog:  cat,
		Chunks:   store,
	}
}

// startServer runs the server until the test ends.
func startServer(t *testing.T, port int) *Server {
	t.Helper()

	server := NewServer(Config{
		Port:         port,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
	}, testDeps(t))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() {
		_ = server.Start(ctx)
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)
	return server
}

func TestServer_Lifecycle(t *testing.T) {
	server := NewServer(Config{Port: 18090}, testDeps(t))

	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get("http://localhost:18090/healthz")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}

	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Expected nil on graceful shutdown, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shutdown in time")
	}
}

func TestServer_Port(t *testing.T) {
	server := NewServer(Config{Port: 9999}, testDeps(t))

	if server.Port() != 9999 {
		t.Errorf("Expected port 9999, got %d", server.Port())
	}
}

func TestServer_DefaultConfig(t *testing.T) {
	server := NewServer(Config{}, testDeps(t))

	// After applyDefaults, port should be 8080
	if server.Port() != 8080 {
		t.Errorf("Expected default port 8080, got %d", server.Port())
	}
}

func TestServer_RootRedirectsToHealth(t *testing.T) {
	startServer(t, 18091)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get("http://localhost:18091/")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("Expected status %d, got %d", http.StatusTemporaryRedirect, resp.StatusCode)
	}
	if location := resp.Header.Get("Location"); location != "/healthz" {
		t.Errorf("Expected redirect to '/healthz', got '%s'", location)
	}
}

func TestServer_ReadyEndpoint(t *testing.T) {
	startServer(t, 18092)

	resp, err := http.Get("http://localhost:18092/readyz")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestServer_UploadRoundTrip(t *testing.T) {
	startServer(t, 18093)
	base := "http://localhost:18093"

	// Init
	initBody, _ := json.Marshal(map[string]any{
		"filename":  "data.jsonl",
		"totalSize": 16,
	})
	resp, err := http.Post(base+"/api/upload/init", "application/json", bytes.NewReader(initBody))
	if err != nil {
		t.Fatalf("Failed to init upload: %v", err)
	}
	var initResp struct {
		UploadID  string `json:"uploadId"`
		ChunkSize int64  `json:"chunkSize"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		t.Fatalf("Failed to decode init response: %v", err)
	}
	_ = resp.Body.Close()
	if initResp.ChunkSize != 8 {
		t.Fatalf("chunkSize = %d, want 8", initResp.ChunkSize)
	}

	// Chunks, out of order
	content := "{\"a\":1}\n{\"b\":2}\n"
	for _, index := range []int{1, 0} {
		start := index * 8
		sendChunk(t, base, initResp.UploadID, index, 2, []byte(content[start:start+8]))
	}

	// Status
	resp, err = http.Get(base + "/api/upload/status/" + initResp.UploadID)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	var status struct {
		TotalChunks    int   `json:"totalChunks"`
		ReceivedChunks []int `json:"receivedChunks"`
		IsComplete     bool  `json:"isComplete"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	_ = resp.Body.Close()
	if !status.IsComplete {
		t.Fatalf("Status = %+v, want complete", status)
	}

	// Complete
	resp, err = http.Post(base+"/api/upload/complete/"+initResp.UploadID, "application/json", nil)
	if err != nil {
		t.Fatalf("Failed to complete upload: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		t.Fatalf("Complete status = %d, body = %s", resp.StatusCode, body)
	}
	var completeResp struct {
		Success  bool   `json:"success"`
		Filepath string `json:"filepath"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completeResp); err != nil {
		t.Fatalf("Failed to decode complete response: %v", err)
	}
	_ = resp.Body.Close()
	if !completeResp.Success {
		t.Error("Complete success = false, want true")
	}
	if completeResp.Message != "Upload completed successfully" {
		t.Errorf("Complete message = %q", completeResp.Message)
	}

	got, err := os.ReadFile(completeResp.Filepath)
	if err != nil {
		t.Fatalf("Failed to read reassembled file: %v", err)
	}
	if string(got) != content {
		t.Errorf("Reassembled content = %q, want %q", got, content)
	}

	// Catalog has the dataset
	resp, err = http.Get(base + "/api/catalog")
	if err != nil {
		t.Fatalf("Failed to list catalog: %v", err)
	}
	var entries []catalog.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("Failed to decode catalog: %v", err)
	}
	_ = resp.Body.Close()
	if len(entries) != 1 {
		t.Fatalf("Catalog has %d entries, want 1", len(entries))
	}
	if entries[0].UploadID != initResp.UploadID {
		t.Errorf("Catalog entry uploadId = %s, want %s", entries[0].UploadID, initResp.UploadID)
	}
}

// sendChunk posts one multipart chunk and fails the test on a non-200.
func sendChunk(t *testing.T, base, uploadID string, index, total int, data []byte) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("uploadId", uploadID)
	_ = mw.WriteField("chunkIndex", strconv.Itoa(index))
	_ = mw.WriteField("totalChunks", strconv.Itoa(total))
	part, err := mw.CreateFormFile("chunk", "blob")
	if err != nil {
		t.Fatalf("Failed to create chunk part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("Failed to write chunk data: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to finalize multipart form: %v", err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/api/upload/chunk", base), mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("Failed to upload chunk %d: %v", index, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Chunk %d status = %d, body = %s", index, resp.StatusCode, body)
	}
}
