package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/crate-sync/internal/crates"
	"github.com/stacklok/crate-sync/internal/git"
	"github.com/stacklok/crate-sync/internal/mirror"
	"github.com/stacklok/crate-sync/internal/telemetry"
)

func newPrepareRepoCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare-repo <org/name> <dest> [<org/name> <dest>...]",
		Short: "Prepare working copies of GitHub repositories from their mirrors",
		Long: `Bring the local mirror of each GitHub repository up to date, cloning it
on first use, then copy the mirror to the destination directory.

Several repository and destination pairs may be given. They are prepared
concurrently, up to --parallel at once (mirrors.parallel by default).`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected <org/name> <dest> pairs, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepareRepo(cmd, v, args)
		},
	}

	cmd.Flags().Int("parallel", 0, "Maximum number of repositories prepared at once")

	return cmd
}

// parseTargets turns the argument pairs into mirror targets
func parseTargets(args []string) ([]mirror.Target, error) {
	targets := make([]mirror.Target, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		repo, err := crates.ParseGitHubRepo(args[i])
		if err != nil {
			return nil, err
		}
		targets = append(targets, mirror.Target{Repo: repo, Dest: args[i+1]})
	}
	return targets, nil
}

func runPrepareRepo(cmd *cobra.Command, v *viper.Viper, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	targets, err := parseTargets(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	parallel, err := cmd.Flags().GetInt("parallel")
	if err != nil {
		return fmt.Errorf("error retrieving parallel flag: %w", err)
	}
	if parallel <= 0 {
		parallel = cfg.Mirrors.Parallel
	}

	tel, err := telemetry.New()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer writeMetrics(tel, cfg)

	manager := mirror.NewManager(cfg.Mirrors.Dir, git.NewDefaultGitClient(git.WithDepth(cfg.GitDepth())),
		mirror.WithLogger(slog.Default()),
		mirror.WithMetrics(tel.Mirror),
		mirror.WithGitTimeout(cfg.GitTimeout()),
	)

	if len(targets) == 1 {
		return manager.Prepare(ctx, targets[0].Repo, targets[0].Dest)
	}
	return manager.PrepareAll(ctx, targets, parallel)
}
