package helpers

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/onsi/gomega"

	"github.com/stacklok/crate-sync/cmd/crate-sync/app"
	"github.com/stacklok/crate-sync/internal/storage"
)

// RunCLI runs crate-sync with args and returns its output
func RunCLI(ctx context.Context, args ...string) (string, error) {
	cmd := app.NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

// ListCrates returns the stored crates of a list through the CLI
func ListCrates(ctx context.Context, configPath, list string) []storage.StoredCrate {
	out, err := RunCLI(ctx, "list-crates", "--config", configPath, "--list", list, "--format", "json")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	var records []storage.StoredCrate
	gomega.Expect(json.Unmarshal([]byte(out), &records)).To(gomega.Succeed())
	return records
}

// Keys returns the keys of records
func Keys(records []storage.StoredCrate) []string {
	keys := make([]string, 0, len(records))
	for _, record := range records {
		keys = append(keys, record.Key)
	}
	return keys
}
