package authcmder_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	authcmder "github.com/papercomputeco/innerai/cmd/innerai/auth"
	"github.com/papercomputeco/innerai/pkg/credentials"
)

var _ = Describe("Auth Command", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	execute := func(stdin string, args ...string) (string, error) {
		cmd := authcmder.NewAuthCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .innerai/ config directory")
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		err := cmd.Execute()
		return out.String(), err
	}

	Describe("NewAuthCmd", func() {
		It("creates a command with expected properties", func() {
			cmd := authcmder.NewAuthCmd()
			Expect(cmd.Use).To(Equal("auth [provider]"))
			Expect(cmd.Short).NotTo(BeEmpty())
			Expect(cmd.Flags().Lookup("list")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("remove")).NotTo(BeNil())
		})
	})

	Describe("storing a key", func() {
		It("reads a piped key and stores it", func() {
			out, err := execute("gm-piped-key\n", "gemini")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Stored"))
			Expect(out).To(ContainSubstring("GEMINI_API_KEY"))

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.GetKey("gemini")).To(Equal("gm-piped-key"))
		})

		It("normalizes the provider name", func() {
			_, err := execute("gm-upper\n", "  GEMINI ")
			Expect(err).NotTo(HaveOccurred())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.GetKey("gemini")).To(Equal("gm-upper"))
		})

		It("rejects an empty key", func() {
			_, err := execute("   \n", "gemini")
			Expect(err).To(MatchError("API key cannot be empty"))
		})

		It("errors when nothing is piped", func() {
			_, err := execute("", "gemini")
			Expect(err).To(MatchError("no input received on stdin"))
		})

		It("rejects unsupported providers", func() {
			_, err := execute("key\n", "openai")
			Expect(err).To(MatchError(ContainSubstring("unsupported provider")))
		})

		It("requires a provider argument", func() {
			_, err := execute("")
			Expect(err).To(MatchError(ContainSubstring("provider argument required")))
		})
	})

	Describe("--list flag", func() {
		It("shows no credentials when none stored", func() {
			out, err := execute("", "--list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("No stored credentials."))
		})

		It("lists stored credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey("gemini", "gm-test")).To(Succeed())

			out, err := execute("", "--list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("gemini"))
			Expect(out).To(ContainSubstring("GEMINI_API_KEY"))
			Expect(out).NotTo(ContainSubstring("gm-test"))
		})
	})

	Describe("--remove flag", func() {
		It("removes stored credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey("gemini", "gm-test")).To(Succeed())

			out, err := execute("", "--remove", "gemini")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Removed"))
			Expect(mgr.GetKey("gemini")).To(BeEmpty())
		})
	})
})
