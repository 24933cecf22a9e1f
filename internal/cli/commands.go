package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tansive/datasource-store/internal/common/logtrace"
)

const Version = "v0.1.0"

var (
	// Global flags
	jsonOutput bool
	configFile string
)

// NewRootCmd builds the dsctl command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dsctl",
		Short: "dsctl manages datasource configurations",
		Long: `dsctl is a command line interface for datasource configurations.
It adds, lists, updates and deletes datasources and their batch configs on the
configured store: a local gx.yml, a database or the cloud API.`,
		PersistentPreRunE: preRunHandlePersistents,
		SilenceErrors:     true, // Prevent Cobra from printing the error
		SilenceUsage:      true, // Prevent Cobra from printing usage on error
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	cmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDatasourceCmd())
	cmd.AddCommand(newBatchConfigCmd())
	cmd.AddCommand(newExpectationCmd())
	return cmd
}

// Execute runs the command tree. This is called by main.main().
func Execute() {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil {
		if jsonOutput {
			kv := map[string]any{
				"result": 0,
				"error":  err.Error(),
			}
			printJSON(os.Stdout, kv)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	// if no config file is provided, use the default location
	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	if !needsConfig(cmd) {
		logtrace.InitLogger("warn")
		return nil
	}

	if err := LoadConfig(configFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("dsctl config file not found. Configure dsctl with \"dsctl config create\" first")
		}
		return fmt.Errorf("unable to load config file: %w", err)
	}
	level := GetConfig().LogLevel
	if level == "" {
		level = "warn"
	}
	logtrace.InitLogger(level)
	return nil
}

// needsConfig reports whether cmd runs against a store.
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "config", "version", "expectation":
			return false
		}
	}
	return true
}

// commandContext returns the context for a command with the global logger
// attached.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return log.Logger.WithContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dsctl",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				kv := map[string]string{
					"version": Version,
				}
				printJSON(cmd.OutOrStdout(), kv)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "dsctl %s\n", Version)
			}
		},
	}
}

// printJSON writes the given value as indented JSON
func printJSON(w io.Writer, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// printResult writes a successful JSON result in the shape every command
// uses.
func printResult(w io.Writer, value any) error {
	return printJSON(w, map[string]any{
		"result": 1,
		"value":  value,
	})
}
