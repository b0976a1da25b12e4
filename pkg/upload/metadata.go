package upload

import "time"

// FileMetadata describes a reassembled artifact. It is returned to the
// client on completion and handed to the post-completion sinks. JSON field
// names follow the wire contract.
type FileMetadata struct {
	UploadID  string    `json:"uploadId"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	FileType  FileType  `json:"fileType"`
	Filepath  string    `json:"filepath"`
}
