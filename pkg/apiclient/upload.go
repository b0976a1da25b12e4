package apiclient

import (
	"strconv"
	"time"
)

// InitUploadRequest starts an upload session.
type InitUploadRequest struct {
	Filename  string `json:"filename"`
	TotalSize int64  `json:"totalSize"`
	Checksum  string `json:"checksum,omitempty"`
}

// InitUploadResponse carries the session id and the server-assigned chunk
// size. Every chunk except the last must be exactly ChunkSize bytes.
type InitUploadResponse struct {
	UploadID  string `json:"uploadId"`
	ChunkSize int64  `json:"chunkSize"`
}

// ChunkUploadResponse acknowledges a stored chunk.
type ChunkUploadResponse struct {
	Success        bool   `json:"success"`
	ReceivedChunks int    `json:"receivedChunks"`
	Message        string `json:"message"`
}

// UploadStatus reports upload progress. ReceivedChunks is sorted ascending.
type UploadStatus struct {
	UploadID       string `json:"uploadId"`
	TotalChunks    int    `json:"totalChunks"`
	ReceivedChunks []int  `json:"receivedChunks"`
	IsComplete     bool   `json:"isComplete"`
}

// FileMetadata describes a reassembled file.
type FileMetadata struct {
	UploadID  string    `json:"uploadId"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	FileType  string    `json:"fileType"`
	Filepath  string    `json:"filepath"`
}

// CompleteUploadResponse is the outcome of a successful completion.
type CompleteUploadResponse struct {
	Success         bool          `json:"success"`
	Filepath        string        `json:"filepath"`
	Metadata        *FileMetadata `json:"metadata,omitempty"`
	DownstreamJobID string        `json:"downstreamJobId,omitempty"`
	Message         string        `json:"message"`
}

// InitUpload starts a new upload session.
func (c *Client) InitUpload(req InitUploadRequest) (*InitUploadResponse, error) {
	return createResource[InitUploadResponse](c, "/api/upload/init", req)
}

// UploadChunk sends one chunk. Chunks may be sent in any order and
// concurrently; resending a stored chunk is a no-op.
func (c *Client) UploadChunk(uploadID string, index, totalChunks int, data []byte) (*ChunkUploadResponse, error) {
	fields := map[string]string{
		"uploadId":    uploadID,
		"chunkIndex":  strconv.Itoa(index),
		"totalChunks": strconv.Itoa(totalChunks),
	}
	var ack ChunkUploadResponse
	if err := c.postMultipart("/api/upload/chunk", fields, "chunk", data, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// UploadStatus returns progress for a session.
func (c *Client) UploadStatus(uploadID string) (*UploadStatus, error) {
	return getResource[UploadStatus](c, resourcePath("/api/upload/status/%s", uploadID))
}

// CompleteUpload reassembles the file and runs post-completion processing.
func (c *Client) CompleteUpload(uploadID string) (*CompleteUploadResponse, error) {
	return createResource[CompleteUploadResponse](c, resourcePath("/api/upload/complete/%s", uploadID), nil)
}
