package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or show the dsctl configuration",
	}
	cmd.AddCommand(newConfigCreateCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create --backend BACKEND",
		Short: "Write a configuration file",
		Long: `Write a configuration file for the chosen backend.

Examples:
  dsctl config create --backend inline --context-root ./gx
  dsctl config create --backend database --db-driver sqlite --db-dsn ./datasources.db
  dsctl config create --backend cloud --cloud-base-url https://api.example.com --cloud-organization-id ORG --cloud-access-token TOKEN`,
		Args: cobra.NoArgs,
		RunE: createConfig,
	}
	cmd.Flags().String("backend", BackendInline, "Store backend: memory, inline, database or cloud")
	cmd.Flags().String("log-level", "", "Log level")
	cmd.Flags().String("context-root", "", "Directory holding gx.yml")
	cmd.Flags().String("db-driver", "sqlite", "Database driver: sqlite, pgx or postgres")
	cmd.Flags().String("db-dsn", "", "Database connection string")
	cmd.Flags().String("db-table", "", "Database table")
	cmd.Flags().String("cloud-base-url", "", "Cloud API base URL")
	cmd.Flags().String("cloud-organization-id", "", "Cloud organization id")
	cmd.Flags().String("cloud-access-token", "", "Cloud access token")
	return cmd
}

func createConfig(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	get := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}
	cfg := &Config{
		Version:  "1",
		Backend:  get("backend"),
		LogLevel: get("log-level"),
	}
	switch cfg.Backend {
	case BackendInline:
		cfg.Inline.ContextRoot = get("context-root")
	case BackendDatabase:
		cfg.Database = DatabaseConfig{Driver: get("db-driver"), DSN: get("db-dsn"), Table: get("db-table")}
	case BackendCloud:
		cfg.Cloud = CloudConfig{
			BaseURL:        MorphServer(get("cloud-base-url")),
			OrganizationID: get("cloud-organization-id"),
			AccessToken:    get("cloud-access-token"),
		}
	}
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	if err := cfg.WriteConfig(configFile); err != nil {
		return err
	}
	if jsonOutput {
		return printResult(cmd.OutOrStdout(), map[string]any{"config_file": configFile, "backend": cfg.Backend})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", configFile)
	return nil
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := LoadConfig(configFile); err != nil {
				return err
			}
			cfg := GetConfig()
			if jsonOutput {
				return printResult(cmd.OutOrStdout(), map[string]any{
					"config_file": configFile,
					"backend":     cfg.Backend,
					"version":     cfg.Version,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", configFile)
			cfg.Print(cmd.OutOrStdout())
			return nil
		},
	}
}
