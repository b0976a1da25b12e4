package upload

import (
	"path/filepath"
	"strings"
)

// FileType classifies an uploaded artifact by its filename extension.
type FileType string

const (
	FileTypeDataset       FileType = "dataset"
	FileTypeModelArtifact FileType = "model_artifact"
	FileTypeArchive       FileType = "archive"
	FileTypeUnknown       FileType = "unknown"
)

var fileTypeByExt = map[string]FileType{
	"jsonl":   FileTypeDataset,
	"json":    FileTypeDataset,
	"csv":     FileTypeDataset,
	"parquet": FileTypeDataset,
	"tsv":     FileTypeDataset,
	"txt":     FileTypeDataset,

	"pt":          FileTypeModelArtifact,
	"pth":         FileTypeModelArtifact,
	"ckpt":        FileTypeModelArtifact,
	"safetensors": FileTypeModelArtifact,
	"onnx":        FileTypeModelArtifact,
	"pb":          FileTypeModelArtifact,
	"h5":          FileTypeModelArtifact,

	"zip": FileTypeArchive,
	"tar": FileTypeArchive,
	"gz":  FileTypeArchive,
	"bz2": FileTypeArchive,
}

// DetectFileType maps a filename to its FileType using the extension after
// the last dot, lowercased. Files without an extension are "unknown".
func DetectFileType(filename string) FileType {
	ext := Ext(filename)
	if ext == "" {
		return FileTypeUnknown
	}
	if t, ok := fileTypeByExt[ext]; ok {
		return t
	}
	return FileTypeUnknown
}

// Ext returns the lowercased filename extension without the leading dot,
// or "" when the filename has none.
func Ext(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
