package cli

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/tansive/datasource-store/internal/datasource"
	"github.com/tansive/datasource-store/internal/serializer"
)

func newDatasourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasource",
		Aliases: []string{"ds"},
		Short:   "Manage datasources",
		Long: `Manage the datasources of the configured store.

Examples:
  dsctl datasource list
  dsctl datasource get my_datasource
  dsctl datasource add -f datasource.yaml --name my_datasource
  dsctl datasource update -f datasource.yaml --name my_datasource
  dsctl datasource delete my_datasource`,
	}
	cmd.AddCommand(newDatasourceListCmd())
	cmd.AddCommand(newDatasourceGetCmd())
	cmd.AddCommand(newDatasourceAddCmd())
	cmd.AddCommand(newDatasourceUpdateCmd())
	cmd.AddCommand(newDatasourceDeleteCmd())
	return cmd
}

func newDatasourceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List datasources",
		Args:  cobra.NoArgs,
		RunE:  listDatasources,
	}
}

func listDatasources(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	s, closeStore, err := openStore(ctx, GetConfig())
	if err != nil {
		return err
	}
	defer closeStore()

	ks, aerr := s.ListKeys(ctx)
	if aerr != nil {
		return aerr
	}
	configs := make([]*datasource.Config, 0, len(ks))
	for _, k := range ks {
		cfg, aerr := s.RetrieveByName(ctx, k.ResourceName)
		if aerr != nil {
			return aerr
		}
		configs = append(configs, cfg)
	}

	if jsonOutput {
		names := make([]string, 0, len(configs))
		for _, cfg := range configs {
			names = append(names, cfg.Name)
		}
		return printResult(cmd.OutOrStdout(), names)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("NAME", "TYPE", "ENGINE", "ASSETS")
	for _, cfg := range configs {
		if err := table.Append([]string{cfg.Name, cfg.Kind(), cfg.EngineClassName(), strconv.Itoa(len(cfg.Assets))}); err != nil {
			return err
		}
	}
	return table.Render()
}

func newDatasourceGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Print a datasource configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  getDatasource,
	}
}

func getDatasource(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	s, closeStore, err := openStore(ctx, GetConfig())
	if err != nil {
		return err
	}
	defer closeStore()

	cfg, aerr := s.RetrieveByName(ctx, args[0])
	if aerr != nil {
		return aerr
	}
	m, err := serializer.Dict.Serialize(cfg)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printResult(cmd.OutOrStdout(), m)
	}
	out, err := toYAML(m)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func newDatasourceAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add -f FILENAME [--name NAME]",
		Short: "Add a datasource from a file",
		Long: `Add a datasource from a YAML file. The name is taken from --name or,
when not given, from the name field of the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveDatasource(cmd, false)
		},
	}
	cmd.Flags().StringP("filename", "f", "", "Filename of the datasource configuration")
	cmd.Flags().StringP("name", "n", "", "Datasource name")
	cmd.MarkFlagRequired("filename")
	return cmd
}

func newDatasourceUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update -f FILENAME --name NAME",
		Short: "Replace an existing datasource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveDatasource(cmd, true)
		},
	}
	cmd.Flags().StringP("filename", "f", "", "Filename of the datasource configuration")
	cmd.Flags().StringP("name", "n", "", "Datasource name")
	cmd.MarkFlagRequired("filename")
	cmd.MarkFlagRequired("name")
	return cmd
}

func saveDatasource(cmd *cobra.Command, update bool) error {
	filename, err := cmd.Flags().GetString("filename")
	if err != nil {
		return err
	}
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return err
	}
	cfg, err := LoadDatasourceFromFile(filename)
	if err != nil {
		return err
	}
	if name == "" {
		name = cfg.Name
	}
	if name == "" {
		return fmt.Errorf("datasource name is required: set --name or the name field")
	}

	ctx := commandContext(cmd)
	s, closeStore, err := openStore(ctx, GetConfig())
	if err != nil {
		return err
	}
	defer closeStore()

	var saved *datasource.Config
	verb := "added"
	if update {
		saved, err = updateByName(ctx, s, name, cfg)
		verb = "updated"
	} else {
		saved, err = addByName(ctx, s, name, cfg)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		kv := map[string]any{
			"name": saved.Name,
			verb:   true,
		}
		if saved.ID != "" {
			kv["id"] = saved.ID
		}
		return printResult(cmd.OutOrStdout(), kv)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully %s datasource %s\n", verb, saved.Name)
	return nil
}

func newDatasourceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a datasource",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteDatasource,
	}
}

func deleteDatasource(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	s, closeStore, err := openStore(ctx, GetConfig())
	if err != nil {
		return err
	}
	defer closeStore()

	cfg, aerr := s.RetrieveByName(ctx, args[0])
	if aerr != nil {
		return aerr
	}
	if aerr := s.Delete(ctx, cfg); aerr != nil {
		return aerr
	}
	if jsonOutput {
		return printResult(cmd.OutOrStdout(), map[string]any{"name": args[0], "deleted": true})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully deleted datasource %s\n", args[0])
	return nil
}
