package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tansive/datasource-store/internal/expectation"
)

func newExpectationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expectation",
		Short: "Work with expectations",
	}
	check := &cobra.Command{
		Use:   "check -f FILENAME --metric NAME=VALUE",
		Short: "Check an expectation against metric values",
		Long: `Check an expectation configuration against metric values computed elsewhere.

Example:
  dsctl expectation check -f max_fare.yaml --metric column.max=42.5`,
		Args: cobra.NoArgs,
		RunE: checkExpectation,
	}
	check.Flags().StringP("filename", "f", "", "Filename of the expectation configuration")
	check.Flags().StringToString("metric", nil, "Metric value as name=value")
	check.MarkFlagRequired("filename")
	cmd.AddCommand(check)
	return cmd
}

func checkExpectation(cmd *cobra.Command, args []string) error {
	filename, err := cmd.Flags().GetString("filename")
	if err != nil {
		return err
	}
	rawMetrics, err := cmd.Flags().GetStringToString("metric")
	if err != nil {
		return err
	}
	cfg, err := LoadExpectationFromFile(filename)
	if err != nil {
		return err
	}
	e, aerr := expectation.New(cfg)
	if aerr != nil {
		return aerr
	}
	res, aerr := e.Validate(parseMetrics(rawMetrics))
	if aerr != nil {
		return aerr
	}

	if jsonOutput {
		return printResult(cmd.OutOrStdout(), res)
	}
	status := "FAILED"
	if res.Success {
		status = "PASSED"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", status, e.Describe())
	fmt.Fprintf(cmd.OutOrStdout(), "Observed value: %v\n", res.ObservedValue)
	return nil
}

// parseMetrics reads numbers as numbers and "null" as a missing value.
func parseMetrics(raw map[string]string) map[string]any {
	metrics := make(map[string]any, len(raw))
	for k, v := range raw {
		switch {
		case v == "null":
			metrics[k] = nil
		default:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				metrics[k] = f
			} else {
				metrics[k] = v
			}
		}
	}
	return metrics
}
