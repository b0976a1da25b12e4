package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableData(t *testing.T) {
	table := NewTableData("Upload ID", "Filename", "Progress")

	assert.Equal(t, []string{"Upload ID", "Filename", "Progress"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("a1b2", "train.jsonl", "3/5")
	table.AddRow("c3d4", "weights.pt", "5/5")

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a1b2", "train.jsonl", "3/5"}, rows[0])
	assert.Equal(t, []string{"c3d4", "weights.pt", "5/5"}, rows[1])
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Filename", "Type")
	table.AddRow("corpus.jsonl", "dataset")
	table.AddRow("model.onnx", "model_artifact")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	rendered := buf.String()
	assert.Contains(t, rendered, "FILENAME")
	assert.Contains(t, rendered, "TYPE")
	assert.Contains(t, rendered, "corpus.jsonl")
	assert.Contains(t, rendered, "model.onnx")
	assert.Contains(t, rendered, "dataset")
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, [][2]string{
		{"Upload ID", "a1b2c3"},
		{"Size", "2097152"},
	}))

	rendered := buf.String()
	// Detail headers keep their case, unlike list headers.
	assert.Contains(t, rendered, "Upload ID")
	assert.Contains(t, rendered, "a1b2c3")
	assert.Contains(t, rendered, "2097152")
}
