package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "table", want: FormatTable},
		{input: "", want: FormatTable},
		{input: "json", want: FormatJSON},
		{input: "JSON", want: FormatJSON},
		{input: "yaml", want: FormatYAML},
		{input: "yml", want: FormatYAML},
		{input: " table ", want: FormatTable},
		{input: "xml", wantErr: true},
		{input: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("input="+tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrinterPrintByFormat(t *testing.T) {
	data := NewTableData("ID", "State")
	data.AddRow("u-1", "complete")

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(data))
		assert.Contains(t, buf.String(), "u-1")
		assert.Contains(t, buf.String(), "ID")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		payload := map[string]string{"uploadId": "u-1"}
		require.NoError(t, NewPrinter(&buf, FormatJSON, false).Print(payload))
		assert.Contains(t, buf.String(), `"uploadId": "u-1"`)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		payload := map[string]string{"uploadId": "u-1"}
		require.NoError(t, NewPrinter(&buf, FormatYAML, false).Print(payload))
		assert.Contains(t, buf.String(), "uploadId: u-1")
	})

	t.Run("table falls back to JSON for plain values", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(map[string]int{"n": 3}))
		assert.Contains(t, buf.String(), `"n": 3`)
	})
}

func TestPrinterStatusLines(t *testing.T) {
	t.Run("colored", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatTable, true)

		p.Success("stored")
		p.Warning("slow backend")
		p.Error("rejected")

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, ansiGreen+"stored"+ansiReset, lines[0])
		assert.Equal(t, ansiYellow+"slow backend"+ansiReset, lines[1])
		assert.Equal(t, ansiRed+"rejected"+ansiReset, lines[2])
	})

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatTable, false)

		p.Success("stored")
		p.Error("rejected")

		assert.Equal(t, "stored\nrejected\n", buf.String())
		assert.NotContains(t, buf.String(), "\033[")
	})
}

func TestDefaultPrinter(t *testing.T) {
	p := DefaultPrinter()
	require.NotNil(t, p)
	assert.Equal(t, FormatTable, p.Format())
	assert.True(t, p.ColorEnabled())
	assert.NotNil(t, p.Writer())
}
