package integration

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/crate-sync/internal/config"
	"github.com/stacklok/crate-sync/internal/lists"
	"github.com/stacklok/crate-sync/internal/status"
	"github.com/stacklok/crate-sync/internal/sync"
	"github.com/stacklok/crate-sync/test-integration/crate-sync/helpers"
)

var _ = Describe("Update Lists", Label("update-lists"), func() {
	var (
		tempDir    string
		gitHelper  *helpers.GitTestHelper
		indexRepo  *helpers.GitTestRepository
		csvServer  *helpers.CSVServer
		cfg        *config.Config
		configFile string
	)

	BeforeEach(func() {
		tempDir = createTempDir("update-lists-test-")

		gitHelper = helpers.NewGitTestHelper()
		indexRepo = gitHelper.CreateIndexRepository("crates.io-index")
		gitHelper.CommitIndexEntries(indexRepo, map[string][]helpers.IndexEntry{
			"serde": {
				{Name: "serde", Version: "1.0.199"},
				{Name: "serde", Version: "1.0.200"},
				{Name: "serde", Version: "1.0.201", Yanked: true},
			},
			"rand": {{Name: "rand", Version: "0.8.5"}},
			"gone": {{Name: "gone", Version: "0.1.0", Yanked: true}},
		}, "Publish crates")

		csvServer = helpers.NewCSVServer([]helpers.GitHubRow{
			{Name: "rust-lang/cargo", HasCargoToml: true, HasCargoLock: true},
			{Name: "acme/no-lock", HasCargoToml: true, HasCargoLock: false},
			{Name: "not-a-repo", HasCargoToml: true, HasCargoLock: true},
			{Name: "tokio-rs/tokio", HasCargoToml: true, HasCargoLock: true},
		})

		Expect(os.MkdirAll(filepath.Join(tempDir, "local-crates", "fixture"), 0750)).To(Succeed())
	})

	AfterEach(func() {
		csvServer.Close()
		if gitHelper != nil {
			_ = gitHelper.CleanupRepositories()
		}
		cleanupTempDir(tempDir)
	})

	for _, storageType := range []string{config.StorageTypeBolt, config.StorageTypeSQLite} {
		Context("with "+storageType+" storage", func() {
			BeforeEach(func() {
				cfg = helpers.NewTestConfig(tempDir, csvServer.URL(), indexRepo.Path, storageType)
				configFile = helpers.WriteConfigYAML(tempDir, cfg)
			})

			It("should store the crates of every list", func() {
				_, err := helpers.RunCLI(ctx, "update-lists", "--config", configFile)
				Expect(err).NotTo(HaveOccurred())

				Expect(helpers.Keys(helpers.ListCrates(ctx, configFile, lists.NameGitHub))).To(Equal([]string{
					"github/rust-lang/cargo",
					"github/tokio-rs/tokio",
				}))
				Expect(helpers.Keys(helpers.ListCrates(ctx, configFile, lists.NameRegistry))).To(Equal([]string{
					"registry/rand/0.8.5",
					"registry/serde/1.0.200",
				}))
				Expect(helpers.Keys(helpers.ListCrates(ctx, configFile, lists.NameLocal))).To(Equal([]string{
					"local/fixture",
				}))

				statuses, err := status.NewFileStatusPersistence(filepath.Join(tempDir, "status")).LoadAllStatus(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(statuses).To(HaveLen(3))
				for name, s := range statuses {
					Expect(s.Phase).To(Equal(status.SyncPhaseComplete), "list %s", name)
				}

				metrics, err := os.ReadFile(filepath.Join(tempDir, "crate-sync.prom"))
				Expect(err).NotTo(HaveOccurred())
				Expect(string(metrics)).To(ContainSubstring(`crate_sync_list_crates{list="crates-io"} 2`))
			})

			It("should pick up a new version published upstream", func() {
				_, err := helpers.RunCLI(ctx, "update-lists", "--config", configFile, "--github=false", "--local=false")
				Expect(err).NotTo(HaveOccurred())

				gitHelper.CommitIndexEntries(indexRepo, map[string][]helpers.IndexEntry{
					"rand": {{Name: "rand", Version: "0.8.5"}, {Name: "rand", Version: "0.9.0"}},
				}, "Publish rand 0.9.0")

				_, err = helpers.RunCLI(ctx, "update-lists", "--config", configFile, "--github=false", "--local=false")
				Expect(err).NotTo(HaveOccurred())

				// Upserts never delete, so the older version stays stored
				Expect(helpers.Keys(helpers.ListCrates(ctx, configFile, lists.NameRegistry))).To(ContainElements(
					"registry/rand/0.8.5",
					"registry/rand/0.9.0",
				))
				Expect(csvServer.Requests()).To(BeZero())
			})
		})
	}

	Context("when the GitHub list is unavailable", func() {
		BeforeEach(func() {
			cfg = helpers.NewTestConfig(tempDir, csvServer.URL(), indexRepo.Path, config.StorageTypeBolt)
			configFile = helpers.WriteConfigYAML(tempDir, cfg)
			csvServer.FailWith(http.StatusNotFound)
		})

		It("should stop before the registry and local lists", func() {
			_, err := helpers.RunCLI(ctx, "update-lists", "--config", configFile)
			Expect(err).To(HaveOccurred())

			var syncErr *sync.Error
			Expect(errors.As(err, &syncErr)).To(BeTrue())
			Expect(syncErr.List).To(Equal(lists.NameGitHub))
			Expect(syncErr.Stage).To(Equal(sync.StageFetch))

			// A 404 is not retried
			Expect(csvServer.Requests()).To(Equal(1))

			// The registry index was never cloned
			_, statErr := os.Stat(filepath.Join(tempDir, "crates.io-index"))
			Expect(os.IsNotExist(statErr)).To(BeTrue())

			statuses, err := status.NewFileStatusPersistence(filepath.Join(tempDir, "status")).LoadAllStatus(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(statuses).To(HaveLen(1))
			Expect(statuses[lists.NameGitHub].Phase).To(Equal(status.SyncPhaseFailed))
			Expect(statuses[lists.NameGitHub].AttemptCount).To(Equal(1))
		})
	})

	Context("with name filters", func() {
		BeforeEach(func() {
			cfg = helpers.NewTestConfig(tempDir, csvServer.URL(), indexRepo.Path, config.StorageTypeSQLite)
			cfg.Lists.GitHub.Filter = &config.FilterConfig{
				Names: &config.NameFilterConfig{Include: []string{"rust-lang/*"}},
			}
			cfg.Lists.Registry.Filter = &config.FilterConfig{
				Names: &config.NameFilterConfig{Exclude: []string{"ser*"}},
			}
			configFile = helpers.WriteConfigYAML(tempDir, cfg)
		})

		It("should only store matching crates", func() {
			_, err := helpers.RunCLI(ctx, "update-lists", "--config", configFile, "--local=false")
			Expect(err).NotTo(HaveOccurred())

			Expect(helpers.Keys(helpers.ListCrates(ctx, configFile, lists.NameGitHub))).To(Equal([]string{
				"github/rust-lang/cargo",
			}))
			Expect(helpers.Keys(helpers.ListCrates(ctx, configFile, lists.NameRegistry))).To(Equal([]string{
				"registry/rand/0.8.5",
			}))
		})
	})
})
