// Package cmdutil provides shared utilities for longshorectl commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harborml/longshore/internal/cli/output"
	"github.com/harborml/longshore/internal/cli/prompt"
	"github.com/harborml/longshore/pkg/apiclient"
)

// DefaultServerURL is used when neither the --server flag nor the
// LONGSHORE_SERVER environment variable is set.
const DefaultServerURL = "http://localhost:8080"

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ServerURL string
	Output    string
	NoColor   bool
	Verbose   bool
}

// GetClient returns an API client for the target server. The server URL is
// taken from the --server flag, then the LONGSHORE_SERVER environment
// variable, then the default localhost address.
func GetClient() *apiclient.Client {
	return apiclient.New(GetServerURL())
}

// GetServerURL resolves the target server URL.
func GetServerURL() string {
	url := Flags.ServerURL
	if url == "" {
		url = os.Getenv("LONGSHORE_SERVER")
	}
	if url == "" {
		url = DefaultServerURL
	}
	return strings.TrimSuffix(url, "/")
}

// GetOutputFormat returns the output format string.
func GetOutputFormat() string {
	return Flags.Output
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// IsVerbose returns whether verbose output is enabled.
func IsVerbose() bool {
	return Flags.Verbose
}

// PrintResource prints one resource in the selected format. Table format
// renders through the given TableRenderer; JSON and YAML encode the data
// directly.
func PrintResource(w io.Writer, data any, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	if format == output.FormatTable {
		return output.PrintTable(w, tableRenderer)
	}
	return encode(w, format, data)
}

// PrintOutput is PrintResource for collections: in table format an empty
// collection prints emptyMsg instead of a headers-only table.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	if format == output.FormatTable {
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
	return encode(w, format, data)
}

func encode(w io.Writer, format output.Format, data any) error {
	if format == output.FormatYAML {
		return output.PrintYAML(w, data)
	}
	return output.PrintJSON(w, data)
}

// PrintSuccess prints a success message in table format. JSON and YAML
// output stays machine-readable, so the message is dropped there.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	output.NewPrinter(os.Stdout, format, !IsColorDisabled()).Success(msg)
}

// BoolToYesNo renders a boolean for table cells.
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// EmptyOr substitutes fallback for empty table cells, typically "-".
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// HandleAbort turns a Ctrl+C abort into a clean exit with a short notice;
// any other error passes through.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
