package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by result types that know their own tabular
// shape. Commands that list sessions or catalog entries implement it once
// and reuse it across the table, JSON and YAML paths.
type TableRenderer interface {
	// Headers returns the column headers.
	Headers() []string
	// Rows returns one slice of cells per data row.
	Rows() [][]string
}

// borderlessTable configures a kubectl-style table: no borders, no
// separators, two spaces between columns.
func borderlessTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// PrintTable renders data as a borderless table with uppercased headers.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := borderlessTable(w)
	table.SetAutoFormatHeaders(true)
	table.SetHeader(data.Headers())
	table.AppendBulk(data.Rows())
	table.Render()
	return nil
}

// SimpleTable renders key-value pairs as a two-column table, for detail
// views of a single resource.
func SimpleTable(w io.Writer, pairs [][2]string) error {
	table := borderlessTable(w)
	table.SetAutoFormatHeaders(false)
	table.SetColumnSeparator(":")
	for _, pair := range pairs {
		table.Append([]string{pair[0], pair[1]})
	}
	table.Render()
	return nil
}

// TableData is an ad-hoc TableRenderer for commands whose rows are built
// imperatively.
type TableData struct {
	headers []string
	rows    [][]string
}

// NewTableData creates a TableData with the given column headers.
func NewTableData(headers ...string) *TableData {
	return &TableData{headers: headers}
}

// AddRow appends one row of cells.
func (t *TableData) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Headers implements TableRenderer.
func (t *TableData) Headers() []string {
	return t.headers
}

// Rows implements TableRenderer.
func (t *TableData) Rows() [][]string {
	return t.rows
}
