package apiclient

import "time"

// Session summarizes a live upload session.
type Session struct {
	UploadID       string    `json:"uploadId"`
	Filename       string    `json:"filename"`
	TotalSize      int64     `json:"totalSize"`
	TotalChunks    int       `json:"totalChunks"`
	ReceivedChunks int       `json:"receivedChunks"`
	IsComplete     bool      `json:"isComplete"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivity   time.Time `json:"lastActivity"`
}

// ListSessions returns all live upload sessions, oldest first.
func (c *Client) ListSessions() ([]Session, error) {
	return listResources[Session](c, "/api/upload/sessions")
}

// AbortSession discards a session and its stored chunks.
func (c *Client) AbortSession(uploadID string) error {
	return deleteResource(c, resourcePath("/api/upload/sessions/%s", uploadID))
}
