package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/harborml/longshore/cmd/longshorectl/cmdutil"
	"github.com/harborml/longshore/internal/cli/health"
	"github.com/harborml/longshore/internal/cli/output"
	"github.com/harborml/longshore/internal/cli/timeutil"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show server health",
	Long: `Display the health of the target Longshore server.

This command checks the server health endpoint and displays
status and uptime information.

Examples:
  # Check health of the default server
  longshorectl health

  # Check a specific server as JSON
  longshorectl health --server http://uploads.internal:8080 -o json`,
	RunE: runHealth,
}

// ServerHealth represents the server health for display.
type ServerHealth struct {
	Server    string `json:"server" yaml:"server"`
	Status    string `json:"status" yaml:"status"`
	Healthy   bool   `json:"healthy" yaml:"healthy"`
	Service   string `json:"service,omitempty" yaml:"service,omitempty"`
	StartedAt string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime    string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runHealth(cmd *cobra.Command, args []string) error {
	serverURL := cmdutil.GetServerURL()

	status := ServerHealth{
		Server:  serverURL,
		Status:  "unreachable",
		Healthy: false,
	}

	// Check health endpoint
	healthURL := serverURL + "/healthz"
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(healthURL)
	if err != nil {
		status.Error = err.Error()
	} else {
		defer func() { _ = resp.Body.Close() }()

		var healthResp health.Response
		if err := json.NewDecoder(resp.Body).Decode(&healthResp); err == nil {
			status.Status = healthResp.Status
			status.Healthy = healthResp.Status == "healthy"
			status.Service = healthResp.Data.Service
			status.StartedAt = healthResp.Data.StartedAt
			status.Uptime = healthResp.Data.Uptime
			if healthResp.Error != "" {
				status.Error = healthResp.Error
			}
		} else {
			status.Status = "unknown"
			status.Error = "Failed to parse health response"
		}
	}

	// Output based on format
	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printHealthTable(status)
	}

	return nil
}

func printHealthTable(status ServerHealth) {
	fmt.Println()
	fmt.Println("Longshore Server Health")
	fmt.Println("=======================")
	fmt.Println()
	fmt.Printf("  Server:     %s\n", status.Server)

	if status.Healthy {
		fmt.Printf("  Status:     \033[32m● %s\033[0m\n", status.Status)
	} else if status.Status == "unreachable" {
		fmt.Printf("  Status:     \033[31m○ %s\033[0m\n", status.Status)
	} else {
		fmt.Printf("  Status:     \033[33m● %s\033[0m\n", status.Status)
	}

	if status.Service != "" {
		fmt.Printf("  Service:    %s\n", status.Service)
	}
	if status.StartedAt != "" {
		fmt.Printf("  Started:    %s\n", timeutil.FormatTime(status.StartedAt))
	}
	if status.Uptime != "" {
		fmt.Printf("  Uptime:     %s\n", timeutil.FormatUptime(status.Uptime))
	}
	if status.Error != "" {
		fmt.Printf("  Error:      %s\n", status.Error)
	}
	fmt.Println()
}
