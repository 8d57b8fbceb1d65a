package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/cephrbdx/internal/output"
	"github.com/jbweber/cephrbdx/internal/rbdx"
)

var (
	clusterName  string
	outputFormat string
	noHeaders    bool
	rawSizes     bool
	strict       bool
)

var imagesCmd = &cobra.Command{
	Use:   "images [pool...]",
	Short: "Report RBD image usage per pool",
	Long: `Report the provisioned size and used capacity of every image in the given pools.

Pools may be given by numeric id or, with the v2 generation, by name. Without
arguments the pools listed in the config file are queried.

Pools that cannot be listed are reported as unavailable; the other pools are
still listed. With --strict the command fails when the cluster itself could
not be reached.

Output formats:
  -o table  Human-readable table (default)
  -o yaml   YAML map of pool to image usage
  -o json   JSON map of pool to image usage`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		if clusterName != "" {
			cfg.Cluster = clusterName
		}
		format := cfg.Output
		if cmd.Flags().Changed("output") {
			format = outputFormat
		}

		if err := output.ValidateFormat(format); err != nil {
			return err
		}

		pools := rbdx.ParsePoolIDs(args)
		if len(pools) == 0 {
			pools = cfg.PoolIDs()
		}
		if len(pools) == 0 {
			return rbdx.ErrNoPools
		}

		ctx := logger.WithContext(context.Background())
		agg := rbdx.Default(rbdx.WithSettings(cfg.Settings()), rbdx.WithLogger(logger))
		result, err := agg.Query(ctx, cfg.Cluster, pools)
		if err != nil && strict {
			return err
		}

		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(format),
			NoHeaders: noHeaders,
			Raw:       rawSizes,
		})
		if err != nil {
			return err
		}

		out, err := formatter.FormatImages(result)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Print(out)

		if format == string(output.FormatTable) && !noHeaders {
			size, capacity := result.Totals()
			fmt.Printf("\nTotal: %s provisioned, %s used\n", output.Size(size, rawSizes), output.Size(capacity, rawSizes))
		}
		return nil
	},
}

func init() {
	imagesCmd.Flags().StringVar(&clusterName, "cluster", "", "Cluster name (overrides config)")
	imagesCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, yaml, json)")
	imagesCmd.Flags().BoolVar(&noHeaders, "no-headers", false, "Don't print headers or totals (table output only)")
	imagesCmd.Flags().BoolVar(&rawSizes, "raw", false, "Print sizes in bytes (table output only)")
	imagesCmd.Flags().BoolVar(&strict, "strict", false, "Fail when the cluster could not be reached")
}
