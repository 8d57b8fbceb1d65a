package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jbweber/cephrbdx/internal/ceph"
	"github.com/jbweber/cephrbdx/internal/config"
	"github.com/jbweber/cephrbdx/internal/logging"
	"github.com/jbweber/cephrbdx/internal/rbdx"
)

var (
	version = "dev"
	commit  = "unknown"
)

// Global flags
var (
	configPath string
	logLevel   string
	logFormat  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cephrbdx",
	Short: "cephrbdx - RBD image usage reporting",
	Long: `cephrbdx reports the provisioned size and used capacity of every RBD image
in one or more Ceph pools.

Used capacity is counted per allocated backing object, as "rbd du" does. The
introspection generation (v2 on librbd 1.12+, or v1 on older librbd) is picked
once per process from what the linked librbd supports.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to cephrbdx YAML config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, json)")

	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(generationCmd)
	rootCmd.AddCommand(testConnCmd)
}

// setup loads the configuration and builds the logger, applying the global
// flags on top of the config file and environment.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log.Logger = logger
	return cfg, logger, nil
}

var generationCmd = &cobra.Command{
	Use:   "generation",
	Short: "Show the selected introspection generation",
	Long: `Show which introspection generation this process selected and why the
other generations were rejected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := setup(); err != nil {
			return err
		}

		sel := rbdx.Selected()
		fmt.Printf("Generation: %s\n", sel.Generation)

		gens := make([]rbdx.Generation, 0, len(sel.Probes))
		for gen := range sel.Probes {
			gens = append(gens, gen)
		}
		sort.Slice(gens, func(i, j int) bool { return gens[i] > gens[j] })

		for _, gen := range gens {
			fmt.Printf("  rejected %v\n", sel.Probes[gen])
		}
		return nil
	},
}

var testConnCmd = &cobra.Command{
	Use:   "test-conn",
	Short: "Test the Ceph cluster connection",
	Long:  `Test connectivity to the Ceph cluster and display library and cluster information.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		if clusterName != "" {
			cfg.Cluster = clusterName
		}

		radosVersion, rbdVersion := ceph.LibraryVersions()
		fmt.Printf("✓ librados version: %s\n", radosVersion)
		fmt.Printf("✓ librbd version: %s\n", rbdVersion)

		fmt.Printf("Testing connection to cluster %s as %s...\n", cfg.Cluster, cfg.ClientName)

		gen := rbdx.Selected().Generation
		client, err := ceph.Connect(rbdx.ConnOptionsFor(gen, cfg.Cluster, cfg.Settings()))
		if err != nil {
			return fmt.Errorf("failed to connect to cluster: %w", err)
		}
		defer client.Shutdown()

		fmt.Println("✓ Connected to cluster")

		fsid, err := client.FSID()
		if err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}
		fmt.Printf("✓ Cluster fsid: %s\n", fsid)

		fmt.Println("\nConnection test successful!")
		return nil
	},
}

func init() {
	testConnCmd.Flags().StringVar(&clusterName, "cluster", "", "Cluster name (overrides config)")
}
