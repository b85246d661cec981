package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/crate-sync/internal/config"
	"github.com/stacklok/crate-sync/internal/git"
	"github.com/stacklok/crate-sync/internal/httpclient"
	"github.com/stacklok/crate-sync/internal/lists"
	"github.com/stacklok/crate-sync/internal/status"
	"github.com/stacklok/crate-sync/internal/storage"
	"github.com/stacklok/crate-sync/internal/sync"
	"github.com/stacklok/crate-sync/internal/telemetry"
)

func newUpdateListsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-lists",
		Short: "Fetch the crate lists and store their crates",
		Long: `Fetch the enabled crate lists and upsert their crates into storage.

Lists are updated in a fixed order: GitHub, registry, then local. The command
stops at the first list that fails and exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdateLists(cmd, v)
		},
	}

	cmd.Flags().Bool("github", true, "Update the curated GitHub repositories list")
	cmd.Flags().Bool("registry", true, "Update the crates.io registry list")
	cmd.Flags().Bool("local", true, "Update the local crates list")

	return cmd
}

// selectLists combines the configuration with the flags. A flag given on the
// command line wins over the configuration.
func selectLists(cmd *cobra.Command, cfg *config.Config) (sync.UpdateLists, error) {
	selection := sync.UpdateLists{
		GitHub:   cfg.GitHubEnabled(),
		Registry: cfg.RegistryEnabled(),
		Local:    cfg.LocalEnabled(),
	}

	for name, field := range map[string]*bool{
		"github":   &selection.GitHub,
		"registry": &selection.Registry,
		"local":    &selection.Local,
	} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		value, err := cmd.Flags().GetBool(name)
		if err != nil {
			return sync.UpdateLists{}, fmt.Errorf("error retrieving %s flag: %w", name, err)
		}
		*field = value
	}

	return selection, nil
}

func runUpdateLists(cmd *cobra.Command, v *viper.Viper) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	selection, err := selectLists(cmd, cfg)
	if err != nil {
		return err
	}

	tel, err := telemetry.New()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer writeMetrics(tel, cfg)

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}()

	httpClient := httpclient.NewDefaultClient(cfg.HTTPTimeout(), httpclient.WithRetries(cfg.HTTPRetries()))
	factory := lists.NewFactory(cfg, httpClient, git.NewDefaultGitClient(git.WithDepth(cfg.GitDepth())), slog.Default())

	slog.Info("Updating crate lists",
		"github", selection.GitHub,
		"registry", selection.Registry,
		"local", selection.Local)

	return selection.Apply(ctx, sync.Deps{
		Lists:   factory,
		Writer:  store,
		Status:  status.NewFileStatusPersistence(cfg.Storage.StatusDir),
		Logger:  slog.Default(),
		Metrics: tel.Sync,
	})
}

func writeMetrics(tel *telemetry.Telemetry, cfg *config.Config) {
	if err := tel.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		slog.Error("Failed to write metrics", "path", cfg.Metrics.Textfile, "error", err)
	}
}

// commandContext is the context commands run in, cancelled on SIGINT or SIGTERM
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
