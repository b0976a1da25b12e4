package sinks

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/pkg/upload"
)

// frameworkByExtension maps model artifact extensions to the training
// framework they most likely came from.
var frameworkByExtension = map[string]string{
	"pt":          "pytorch",
	"pth":         "pytorch",
	"ckpt":        "pytorch",
	"safetensors": "safetensors",
	"onnx":        "onnx",
	"pb":          "tensorflow",
	"h5":          "keras",
}

// EnrichSink builds the enhanced metadata record that downstream sinks and
// the completion response consume. It never rejects an upload.
type EnrichSink struct{}

// NewEnrichSink creates the metadata enrichment sink.
func NewEnrichSink() *EnrichSink {
	return &EnrichSink{}
}

// Name implements Sink.
func (s *EnrichSink) Name() string {
	return "enrich"
}

// Process implements Sink.
func (s *EnrichSink) Process(ctx context.Context, artifact *Artifact) (*Verdict, error) {
	meta := artifact.Metadata
	timestamp := meta.Timestamp.UTC().Format(time.RFC3339)

	artifact.Enhanced["uploadId"] = meta.UploadID
	artifact.Enhanced["filename"] = meta.Filename
	artifact.Enhanced["size"] = meta.Size
	artifact.Enhanced["checksum"] = meta.Checksum
	artifact.Enhanced["timestamp"] = timestamp
	artifact.Enhanced["fileType"] = string(meta.FileType)
	artifact.Enhanced["filepath"] = artifact.Path

	artifact.Enhanced["lineage"] = map[string]any{
		"source":           "user_upload",
		"upload_timestamp": timestamp,
		"downstream_jobs":  []string{},
	}

	switch meta.FileType {
	case upload.FileTypeDataset:
		info, err := datasetInfo(artifact.Path, meta.Filename)
		if err != nil {
			return nil, fmt.Errorf("inspecting dataset %s: %w", meta.Filename, err)
		}
		artifact.Enhanced["dataset_info"] = info

	case upload.FileTypeModelArtifact:
		ext := upload.Ext(meta.Filename)
		framework, ok := frameworkByExtension[ext]
		if !ok {
			framework = "unknown"
		}
		artifact.Enhanced["model_info"] = map[string]any{
			"format":    "." + ext,
			"framework": framework,
		}

	default:
		logger.DebugCtx(ctx, "no enrichment for file type",
			logger.UploadID(meta.UploadID),
			"file_type", string(meta.FileType),
		)
	}

	return nil, nil
}

// datasetInfo summarizes a dataset file. Record counts are estimated from
// line counts, with the CSV header row excluded.
func datasetInfo(path, filename string) (map[string]any, error) {
	ext := upload.Ext(filename)
	info := map[string]any{
		"format":            "." + ext,
		"preview_available": true,
	}

	switch ext {
	case "jsonl":
		lines, err := countLines(path)
		if err != nil {
			return nil, err
		}
		info["estimated_records"] = lines
	case "csv":
		lines, err := countLines(path)
		if err != nil {
			return nil, err
		}
		if lines > 0 {
			lines--
		}
		info["estimated_records"] = lines
	}

	return info, nil
}

func countLines(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	count := 0
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return count, nil
}
