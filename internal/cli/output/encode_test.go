package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	UploadID string `json:"uploadId" yaml:"uploadId"`
	Size     int64  `json:"size" yaml:"size"`
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, entry{UploadID: "u-42", Size: 1048576}))

	got := buf.String()
	assert.Contains(t, got, `"uploadId": "u-42"`)
	assert.Contains(t, got, `"size": 1048576`)
	assert.True(t, strings.HasSuffix(got, "\n"))
}

func TestPrintJSONCompact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSONCompact(&buf, entry{UploadID: "u-42", Size: 7}))
	assert.Equal(t, `{"uploadId":"u-42","size":7}`+"\n", buf.String())
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, []entry{
		{UploadID: "u-1", Size: 1},
		{UploadID: "u-2", Size: 2},
	}))

	got := buf.String()
	assert.Contains(t, got, "uploadId: u-1")
	assert.Contains(t, got, "uploadId: u-2")
	assert.Contains(t, got, "size: 2")
}
