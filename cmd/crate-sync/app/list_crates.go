package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/crate-sync/internal/storage"
)

func newListCratesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-crates",
		Short: "Print the stored crates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListCrates(cmd, v)
		},
	}

	cmd.Flags().String("list", "", "Only print crates of this list (github-oss, crates-io or local)")
	cmd.Flags().String("format", "", "Output format (json)")

	return cmd
}

func runListCrates(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	list, err := cmd.Flags().GetString("list")
	if err != nil {
		return fmt.Errorf("error retrieving list flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("error retrieving format flag: %w", err)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}()

	records, err := store.ListCrates(cmd.Context(), list)
	if err != nil {
		return fmt.Errorf("failed to list crates: %w", err)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if records == nil {
			records = []storage.StoredCrate{}
		}
		output, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting crates as JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(output))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tLIST\tUPDATED")
	for _, record := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", record.Key, record.List, record.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
