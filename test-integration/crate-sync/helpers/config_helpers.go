package helpers

import (
	"os"
	"path/filepath"

	"github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/crate-sync/internal/config"
)

// WriteConfigYAML writes cfg to a config.yaml in dir and returns its path
func WriteConfigYAML(dir string, cfg *config.Config) string {
	data, err := yaml.Marshal(cfg)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	path := filepath.Join(dir, "config.yaml")
	gomega.Expect(os.WriteFile(path, data, 0600)).To(gomega.Succeed())
	return path
}

// NewTestConfig returns a configuration rooted at workDir that reads the
// GitHub list from csvURL and the index from indexPath. Checkouts fetch full
// history since the local file transport can't serve shallow fetches.
func NewTestConfig(workDir, csvURL, indexPath, storageType string) *config.Config {
	retries := 1
	return &config.Config{
		WorkDir: workDir,
		Lists: config.ListsConfig{
			GitHub:   config.GitHubListConfig{Source: csvURL},
			Registry: config.RegistryListConfig{Index: indexPath},
		},
		Storage: config.StorageConfig{Type: storageType},
		HTTP:    config.HTTPConfig{Timeout: "5s", Retries: &retries},
		Git:     config.GitConfig{Timeout: "1m", Depth: -1},
		Metrics: config.MetricsConfig{Textfile: filepath.Join(workDir, "crate-sync.prom")},
	}
}
