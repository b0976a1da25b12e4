package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/harborml/longshore/pkg/bufpool"
	"github.com/harborml/longshore/pkg/sinks"
	"github.com/harborml/longshore/pkg/storage"
	"github.com/harborml/longshore/pkg/upload"
)

// DefaultMaxMultipartMemory bounds in-memory buffering of multipart forms
// when no limit is configured.
const DefaultMaxMultipartMemory int64 = 32 << 20

// UploadHandler handles the chunked upload endpoints.
//
// The handler is a thin adapter: validation of the wire format happens
// here, upload semantics live in the service, and post-completion
// processing is delegated to the sink pipeline.
type UploadHandler struct {
	service            *upload.Service
	pipeline           *sinks.Pipeline
	maxMultipartMemory int64
	buffers            *bufpool.Pool
}

// NewUploadHandler creates a new UploadHandler.
//
// The pipeline may be nil, in which case completions skip post-processing
// and return the reassembled artifact directly.
func NewUploadHandler(service *upload.Service, pipeline *sinks.Pipeline, maxMultipartMemory int64) *UploadHandler {
	if maxMultipartMemory <= 0 {
		maxMultipartMemory = DefaultMaxMultipartMemory
	}
	return &UploadHandler{
		service:            service,
		pipeline:           pipeline,
		maxMultipartMemory: maxMultipartMemory,
		// The large tier holds one chunk plus the byte that detects
		// oversized chunks, so intake reads never allocate per request.
		buffers: bufpool.NewPool(&bufpool.Config{
			LargeSize: int(service.ChunkSize()) + 1,
		}),
	}
}

// InitUploadRequest is the request body for POST /api/upload/init.
type InitUploadRequest struct {
	Filename  string `json:"filename"`
	TotalSize int64  `json:"totalSize"`
	Checksum  string `json:"checksum,omitempty"`
}

// InitUploadResponse is the response body for POST /api/upload/init.
type InitUploadResponse struct {
	UploadID  string `json:"uploadId"`
	ChunkSize int64  `json:"chunkSize"`
}

// ChunkUploadResponse is the response body for POST /api/upload/chunk.
type ChunkUploadResponse struct {
	Success        bool   `json:"success"`
	ReceivedChunks int    `json:"receivedChunks"`
	Message        string `json:"message"`
}

// CompleteUploadResponse is the response body for POST /api/upload/complete.
type CompleteUploadResponse struct {
	Success         bool                 `json:"success"`
	Filepath        string               `json:"filepath"`
	Metadata        *upload.FileMetadata `json:"metadata"`
	DownstreamJobID string               `json:"downstreamJobId,omitempty"`
	Message         string               `json:"message"`
}

// Init handles POST /api/upload/init.
//
// Starts a new upload session and returns the id and the chunk size the
// client must slice the file into.
func (h *UploadHandler) Init(w http.ResponseWriter, r *http.Request) {
	var req InitUploadRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	// Filenames are accepted verbatim, empty included; a name that cannot
	// be written as a completed file fails at completion instead.
	if req.TotalSize <= 0 {
		UnprocessableEntity(w, "Total size must be positive")
		return
	}

	session, err := h.service.Init(r.Context(), req.Filename, req.TotalSize, req.Checksum)
	if err != nil {
		if errors.Is(err, upload.ErrInvalidTotalSize) {
			UnprocessableEntity(w, err.Error())
			return
		}
		InternalServerError(w, "Failed to initialize upload")
		return
	}

	WriteJSONOK(w, InitUploadResponse{
		UploadID:  session.ID,
		ChunkSize: session.ChunkSize,
	})
}

// Chunk handles POST /api/upload/chunk.
//
// Accepts one chunk as a multipart form with fields uploadId, chunkIndex,
// totalChunks and the chunk file itself. Chunks may arrive in any order
// and re-sends are acknowledged idempotently.
func (h *UploadHandler) Chunk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxMultipartMemory); err != nil {
		UnprocessableEntity(w, "Invalid multipart form")
		return
	}

	uploadID := r.FormValue("uploadId")
	if uploadID == "" {
		UnprocessableEntity(w, "Form field uploadId is required")
		return
	}

	chunkIndex, ok := formInt(w, r, "chunkIndex")
	if !ok {
		return
	}
	totalChunks, ok := formInt(w, r, "totalChunks")
	if !ok {
		return
	}

	file, _, err := r.FormFile("chunk")
	if err != nil {
		UnprocessableEntity(w, "Form field chunk is required")
		return
	}
	defer file.Close()

	// Bound the read by the session's own chunk size so a misbehaving
	// client cannot balloon memory, and so recovered sessions keep
	// accepting chunks at the size they were created with. One extra byte
	// detects oversized chunks. The chunk is written to disk before
	// UploadChunk returns, so the pooled buffer can go straight back.
	limit := h.service.SessionChunkSize(uploadID)
	buf := h.buffers.Get(int(limit) + 1)
	defer h.buffers.Put(buf)

	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		InternalServerError(w, "Failed to read chunk data")
		return
	}
	if int64(n) > limit {
		BadRequest(w, fmt.Sprintf("Chunk exceeds the session chunk size of %d bytes", limit))
		return
	}
	data := buf[:n]

	ack, err := h.service.UploadChunk(r.Context(), uploadID, chunkIndex, data, totalChunks)
	if err != nil {
		if isChunkClientError(err) {
			BadRequest(w, err.Error())
			return
		}
		InternalServerError(w, "Failed to upload chunk")
		return
	}

	WriteJSONOK(w, ChunkUploadResponse{
		Success:        true,
		ReceivedChunks: ack.ReceivedChunks,
		Message:        ack.Message,
	})
}

// Status handles GET /api/upload/status/{uploadId}.
//
// Reports which chunks have been received, enabling clients to resume an
// interrupted upload. When the session is gone but chunks remain on disk,
// the total is inferred from the highest received index.
func (h *UploadHandler) Status(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadId")
	if uploadID == "" {
		BadRequest(w, "Upload id is required")
		return
	}

	status, err := h.service.Status(r.Context(), uploadID)
	if err != nil {
		if errors.Is(err, upload.ErrSessionNotFound) {
			NotFound(w, fmt.Sprintf("Upload session %s not found", uploadID))
			return
		}
		InternalServerError(w, "Failed to get upload status")
		return
	}

	if status.Partial {
		inferred := maxIndex(status.ReceivedChunks) + 1
		status.TotalChunks = inferred
		status.IsComplete = len(status.ReceivedChunks) == inferred
	}

	WriteJSONOK(w, status)
}

// Complete handles POST /api/upload/complete/{uploadId}.
//
// Reassembles the file from its chunks and runs the post-completion
// pipeline. A sink veto deletes the reassembled file and surfaces the
// reason as a client error.
func (h *UploadHandler) Complete(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadId")
	if uploadID == "" {
		BadRequest(w, "Upload id is required")
		return
	}

	completed, err := h.service.Complete(r.Context(), uploadID)
	if err != nil {
		var incomplete *upload.IncompleteError
		switch {
		case errors.As(err, &incomplete):
			BadRequest(w, incomplete.Error())
		case errors.Is(err, upload.ErrSessionNotFound):
			BadRequest(w, fmt.Sprintf("Upload session %s not found", uploadID))
		case errors.Is(err, storage.ErrUnsafeFilename):
			BadRequest(w, "Filename cannot be written as a completed file")
		default:
			InternalServerError(w, "Failed to complete upload")
		}
		return
	}

	artifact := sinks.NewArtifact(completed.Metadata)
	if h.pipeline != nil {
		if err := h.pipeline.Run(r.Context(), artifact); err != nil {
			var veto *sinks.VetoError
			if errors.As(err, &veto) {
				BadRequest(w, veto.Error())
				return
			}
			InternalServerError(w, "Failed to run post-completion pipeline")
			return
		}
	}

	resp := CompleteUploadResponse{
		Success:  true,
		Filepath: completed.Path,
		Metadata: completed.Metadata,
		Message:  "Upload completed successfully",
	}
	if len(artifact.DownstreamJobs) > 0 {
		resp.DownstreamJobID = artifact.DownstreamJobs[0]
	}

	WriteJSONOK(w, resp)
}

// formInt parses a required integer form field, writing a 422 problem on
// absence or malformed input.
func formInt(w http.ResponseWriter, r *http.Request, field string) (int, bool) {
	raw := r.FormValue(field)
	if raw == "" {
		UnprocessableEntity(w, fmt.Sprintf("Form field %s is required", field))
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		UnprocessableEntity(w, fmt.Sprintf("Form field %s must be an integer", field))
		return 0, false
	}
	return n, true
}

// isChunkClientError reports whether an upload service error is the
// client's fault and should map to 400 rather than 500.
func isChunkClientError(err error) bool {
	return errors.Is(err, upload.ErrSessionNotFound) ||
		errors.Is(err, upload.ErrInvalidChunkIndex) ||
		errors.Is(err, upload.ErrTotalChunksMismatch) ||
		errors.Is(err, upload.ErrChunkStore)
}

// maxIndex returns the largest value in indices, or -1 when empty.
func maxIndex(indices []int) int {
	max := -1
	for _, i := range indices {
		if i > max {
			max = i
		}
	}
	return max
}
