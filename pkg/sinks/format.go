package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/harborml/longshore/pkg/upload"
)

// jsonlCheckLines is how many non-empty lines of a .jsonl file are parsed
// before the file is accepted.
const jsonlCheckLines = 10

// maxLineBytes caps how long a single dataset line may be when scanning.
const maxLineBytes = 4 * 1024 * 1024

// datasetExtensions is the recognized dataset extension set.
var datasetExtensions = []string{".jsonl", ".json", ".csv", ".parquet", ".tsv", ".txt"}

// FormatSink validates dataset file formats. Non-dataset files pass
// through untouched.
//
// For .jsonl files the first lines are parsed as independent JSON values;
// a malformed line in that prefix vetoes the upload with its line number.
// Other dataset formats are accepted on extension alone.
type FormatSink struct{}

// NewFormatSink creates the dataset format validation sink.
func NewFormatSink() *FormatSink {
	return &FormatSink{}
}

// Name implements Sink.
func (s *FormatSink) Name() string {
	return "format"
}

// Process implements Sink.
func (s *FormatSink) Process(ctx context.Context, artifact *Artifact) (*Verdict, error) {
	if artifact.Metadata.FileType != upload.FileTypeDataset {
		return nil, nil
	}

	ext := "." + upload.Ext(artifact.Metadata.Filename)
	if !isDatasetExtension(ext) {
		return rejectf("Validation failed: Invalid dataset format: %s. Expected one of %s",
			ext, strings.Join(datasetExtensions, ", ")), nil
	}

	if ext == ".jsonl" {
		return s.checkJSONL(ctx, artifact.Path)
	}

	return nil, nil
}

// checkJSONL parses the first non-empty lines of the file as independent
// JSON values.
func (s *FormatSink) checkJSONL(ctx context.Context, path string) (*Verdict, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for validation: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// Dataset lines routinely exceed the default 64 KiB token limit.
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	checked := 0
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !json.Valid([]byte(line)) {
			return rejectf("Validation failed: Invalid JSONL format at line %d", lineNo), nil
		}

		checked++
		if checked >= jsonlCheckLines {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file for validation: %w", err)
	}

	return nil, nil
}

func isDatasetExtension(ext string) bool {
	for _, known := range datasetExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// rejectf builds a rejecting verdict with a formatted reason.
func rejectf(format string, args ...any) *Verdict {
	return &Verdict{Rejected: true, Reason: fmt.Sprintf(format, args...)}
}
