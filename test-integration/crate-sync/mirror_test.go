package integration

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/crate-sync/internal/crates"
	"github.com/stacklok/crate-sync/internal/mirror"
	"github.com/stacklok/crate-sync/test-integration/crate-sync/helpers"
)

var _ = Describe("Mirror Preparation", Label("mirror"), func() {
	var (
		tempDir   string
		gitHelper *helpers.GitTestHelper
		client    *helpers.LocalRemoteClient
		manager   *mirror.Manager
		widget    crates.GitHubRepo
		upstream  *helpers.GitTestRepository
	)

	BeforeEach(func() {
		tempDir = createTempDir("mirror-test-")
		gitHelper = helpers.NewGitTestHelper()

		widget = crates.GitHubRepo{Org: "acme", Name: "widget.rs"}
		upstream = gitHelper.CreateRepository("widget")
		gitHelper.CommitFiles(upstream, map[string]string{
			"Cargo.toml": "[package]\nname = \"widget\"\nversion = \"0.1.0\"\n",
			"src/lib.rs": "pub fn widget() {}\n",
		}, "Add crate")

		client = helpers.NewLocalRemoteClient()
		client.Serve(widget, upstream.Path)

		manager = mirror.NewManager(filepath.Join(tempDir, "gh-mirrors"), client)
	})

	AfterEach(func() {
		_ = gitHelper.CleanupRepositories()
		cleanupTempDir(tempDir)
	})

	It("should clone once and pull afterwards", func() {
		first := filepath.Join(tempDir, "work-1")
		Expect(manager.Prepare(ctx, widget, first)).To(Succeed())
		Expect(filepath.Join(first, "src", "lib.rs")).To(BeARegularFile())
		Expect(manager.MirrorPath(widget)).To(Equal(filepath.Join(tempDir, "gh-mirrors", "acme.widget%2Ers")))

		gitHelper.CommitFiles(upstream, map[string]string{"src/extra.rs": "pub fn extra() {}\n"}, "Add extra")

		second := filepath.Join(tempDir, "work-2")
		Expect(manager.Prepare(ctx, widget, second)).To(Succeed())
		Expect(filepath.Join(second, "src", "extra.rs")).To(BeARegularFile())

		Expect(client.Calls(widget.URL())).To(Equal(2))
	})

	It("should produce the same copy when nothing changed upstream", func() {
		first := filepath.Join(tempDir, "work-1")
		second := filepath.Join(tempDir, "work-2")
		Expect(manager.Prepare(ctx, widget, first)).To(Succeed())
		Expect(manager.Prepare(ctx, widget, second)).To(Succeed())

		for _, name := range []string{"Cargo.toml", filepath.Join("src", "lib.rs")} {
			want, err := os.ReadFile(filepath.Join(first, name))
			Expect(err).NotTo(HaveOccurred())
			got, err := os.ReadFile(filepath.Join(second, name))
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		}

		firstHead, err := client.Head(first)
		Expect(err).NotTo(HaveOccurred())
		secondHead, err := client.Head(second)
		Expect(err).NotTo(HaveOccurred())
		Expect(secondHead).To(Equal(firstHead))
	})

	It("should leave the mirror untouched by changes to a working copy", func() {
		dest := filepath.Join(tempDir, "work")
		Expect(manager.Prepare(ctx, widget, dest)).To(Succeed())

		Expect(os.WriteFile(filepath.Join(dest, "src", "lib.rs"), []byte("broken"), 0600)).To(Succeed())

		content, err := os.ReadFile(filepath.Join(manager.MirrorPath(widget), "src", "lib.rs"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(Equal("pub fn widget() {}\n"))
	})

	It("should prepare several repositories at once", func() {
		gadget := crates.GitHubRepo{Org: "acme", Name: "gadget"}
		client.Serve(gadget, upstream.Path)

		targets := []mirror.Target{
			{Repo: widget, Dest: filepath.Join(tempDir, "a")},
			{Repo: gadget, Dest: filepath.Join(tempDir, "b")},
			{Repo: widget, Dest: filepath.Join(tempDir, "c")},
		}
		Expect(manager.PrepareAll(ctx, targets, 2)).To(Succeed())

		for _, target := range targets {
			Expect(filepath.Join(target.Dest, "Cargo.toml")).To(BeARegularFile())
		}
	})

	It("should report repositories that do not exist", func() {
		missing := crates.GitHubRepo{Org: "acme", Name: "missing"}

		err := manager.Prepare(ctx, missing, filepath.Join(tempDir, "missing"))
		Expect(err).To(HaveOccurred())
		Expect(mirror.IsNotFound(err)).To(BeTrue())
	})
})
