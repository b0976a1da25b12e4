// Package config implements configuration management subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd groups the configuration subcommands: edit, validate, show and
// schema. Creating a config file in the first place is 'longshore init'.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Inspect, edit and validate Longshore configuration files.`,
}

func init() {
	Cmd.AddCommand(editCmd, validateCmd, showCmd, schemaCmd)
}
