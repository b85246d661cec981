// Package app provides the commands of the crate-sync CLI.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/crate-sync/internal/config"
	"github.com/stacklok/crate-sync/internal/versions"
)

// NewRootCmd creates the root command with every subcommand attached.
// Flags are bound to a viper instance of their own, so CRATE_SYNC_* environment
// variables can stand in for them.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	rootCmd := &cobra.Command{
		Use:               "crate-sync",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Keep the crate lists and GitHub mirrors up to date",
		Long: `crate-sync discovers the crates to test from three lists (curated GitHub
repositories, the crates.io index and a local directory), stores them, and
prepares working copies of GitHub repositories from local mirrors.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				slog.Error("Error displaying help", "error", err)
			}
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format)")
	if err := v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		slog.Error("Error binding config flag", "error", err)
	}

	rootCmd.AddCommand(newUpdateListsCmd(v))
	rootCmd.AddCommand(newPrepareRepoCmd(v))
	rootCmd.AddCommand(newListCratesCmd(v))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("error retrieving format flag: %w", err)
			}

			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("error formatting version info as JSON: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return err
			}

			slog.Info("crate-sync version",
				"version", info.Version,
				"commit", info.Commit,
				"built", info.BuildDate,
				"go", info.GoVersion,
				"platform", info.Platform)
			return nil
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}

// loadConfig reads the file named by --config (or CRATE_SYNC_CONFIG), falling
// back to the defaults when none is given
func loadConfig(v *viper.Viper) (*config.Config, error) {
	path := v.GetString("config")
	if path == "" {
		slog.Debug("No configuration file given, using defaults")
		return config.Default(), nil
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Debug("Loaded configuration", "path", path, "workDir", cfg.WorkDir)
	return cfg, nil
}
