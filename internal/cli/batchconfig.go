package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tansive/datasource-store/internal/datasource"
)

func newBatchConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch-config",
		Short: "Manage the batch configs of a data asset",
		Long: `Add or delete named batch configs on a datasource's asset.

Examples:
  dsctl batch-config add --datasource my_pandas --asset taxi monthly --partitioner method=partition_on_year_and_month --partitioner column=pickup_datetime
  dsctl batch-config delete --datasource my_pandas --asset taxi monthly`,
	}
	cmd.AddCommand(newBatchConfigAddCmd())
	cmd.AddCommand(newBatchConfigDeleteCmd())
	return cmd
}

func addBatchConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("datasource", "d", "", "Datasource name")
	cmd.Flags().StringP("asset", "a", "", "Asset name")
	cmd.MarkFlagRequired("datasource")
	cmd.MarkFlagRequired("asset")
}

func batchConfigFromFlags(cmd *cobra.Command, name string) (*datasource.BatchConfig, error) {
	dsName, err := cmd.Flags().GetString("datasource")
	if err != nil {
		return nil, err
	}
	asset, err := cmd.Flags().GetString("asset")
	if err != nil {
		return nil, err
	}
	return datasource.NewBatchConfig(dsName, asset, name), nil
}

func newBatchConfigAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a batch config to an asset",
		Args:  cobra.ExactArgs(1),
		RunE:  addBatchConfig,
	}
	addBatchConfigFlags(cmd)
	cmd.Flags().StringToString("partitioner", nil, "Partitioner settings as key=value")
	return cmd
}

func addBatchConfig(cmd *cobra.Command, args []string) error {
	bc, err := batchConfigFromFlags(cmd, args[0])
	if err != nil {
		return err
	}
	partitioner, err := cmd.Flags().GetStringToString("partitioner")
	if err != nil {
		return err
	}
	if len(partitioner) > 0 {
		bc.Partitioner = make(map[string]any, len(partitioner))
		for k, v := range partitioner {
			bc.Partitioner[k] = v
		}
	}

	ctx := commandContext(cmd)
	s, closeStore, err := openStore(ctx, GetConfig())
	if err != nil {
		return err
	}
	defer closeStore()

	saved, aerr := s.AddBatchConfig(ctx, bc)
	if aerr != nil {
		return aerr
	}
	ref, aerr := saved.DataAsset()
	if aerr != nil {
		return aerr
	}
	if jsonOutput {
		return printResult(cmd.OutOrStdout(), map[string]any{
			"name":       saved.Name,
			"datasource": ref.Datasource,
			"asset":      ref.Asset,
			"added":      true,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully added batch config %s to %s/%s\n", saved.Name, ref.Datasource, ref.Asset)
	return nil
}

func newBatchConfigDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a batch config from an asset",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteBatchConfig,
	}
	addBatchConfigFlags(cmd)
	return cmd
}

func deleteBatchConfig(cmd *cobra.Command, args []string) error {
	bc, err := batchConfigFromFlags(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	s, closeStore, err := openStore(ctx, GetConfig())
	if err != nil {
		return err
	}
	defer closeStore()

	if aerr := s.DeleteBatchConfig(ctx, bc); aerr != nil {
		return aerr
	}
	if jsonOutput {
		return printResult(cmd.OutOrStdout(), map[string]any{"name": bc.Name, "deleted": true})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully deleted batch config %s\n", bc.Name)
	return nil
}
