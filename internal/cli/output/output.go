// Package output renders longshorectl command results in the format the
// user asked for: an aligned table for humans, JSON or YAML for scripts.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format selects how command results are rendered.
type Format string

const (
	// FormatTable renders results as an aligned, borderless table.
	FormatTable Format = "table"
	// FormatJSON renders results as indented JSON.
	FormatJSON Format = "json"
	// FormatYAML renders results as YAML.
	FormatYAML Format = "yaml"
)

// ANSI escape sequences for status output. Applied only when the printer
// has color enabled.
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

// ParseFormat maps a --output flag value to a Format. The empty string
// means the table default; "yml" is accepted for "yaml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
}

func (f Format) String() string {
	return string(f)
}

// Printer writes command results and status lines to one destination in
// one format.
type Printer struct {
	w       io.Writer
	format  Format
	colored bool
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, format Format, colored bool) *Printer {
	return &Printer{w: w, format: format, colored: colored}
}

// DefaultPrinter writes colored tables to stdout.
func DefaultPrinter() *Printer {
	return NewPrinter(os.Stdout, FormatTable, true)
}

// Format returns the configured output format.
func (p *Printer) Format() Format {
	return p.format
}

// Writer returns the destination writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// ColorEnabled reports whether status lines are colored.
func (p *Printer) ColorEnabled() bool {
	return p.colored
}

// Print renders data in the configured format. Table format requires the
// data to implement TableRenderer; data that does not is rendered as JSON
// so that ad-hoc values still come out usable.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatTable:
		if renderer, ok := data.(TableRenderer); ok {
			return PrintTable(p.w, renderer)
		}
		return PrintJSON(p.w, data)
	case FormatJSON:
		return PrintJSON(p.w, data)
	case FormatYAML:
		return PrintYAML(p.w, data)
	}
	return fmt.Errorf("unknown format: %s", p.format)
}

// Println writes a plain line.
func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.w, args...)
}

// Printf writes a formatted message.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// Success writes a green status line.
func (p *Printer) Success(msg string) {
	p.status(ansiGreen, msg)
}

// Warning writes a yellow status line.
func (p *Printer) Warning(msg string) {
	p.status(ansiYellow, msg)
}

// Error writes a red status line.
func (p *Printer) Error(msg string) {
	p.status(ansiRed, msg)
}

func (p *Printer) status(color, msg string) {
	if p.colored {
		_, _ = fmt.Fprintln(p.w, color+msg+ansiReset)
		return
	}
	_, _ = fmt.Fprintln(p.w, msg)
}
