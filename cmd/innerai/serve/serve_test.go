package servecmder_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	servecmder "github.com/papercomputeco/innerai/cmd/innerai/serve"
	"github.com/papercomputeco/innerai/cmd/innerai/serve/services"
)

// newRoot mounts serve under a root carrying the global flags.
func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "innerai"}
	root.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	root.PersistentFlags().String("config-dir", "", "Override path to .innerai/ config directory")
	root.AddCommand(servecmder.NewServeCmd())
	return root
}

// runFor executes args, cancels after d and returns the command's error.
func runFor(args []string, d time.Duration) error {
	root := newRoot()
	root.SetArgs(args)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	select {
	case err := <-done:
		return err
	case <-time.After(d):
	}

	cancel()
	var err error
	Eventually(done).WithTimeout(5 * time.Second).Should(Receive(&err))
	return err
}

var _ = Describe("NewServeCmd", func() {
	It("has gateway and api subcommands", func() {
		cmd := servecmder.NewServeCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ConsistOf("gateway", "api"))
	})

	It("registers the shared flags", func() {
		cmd := servecmder.NewServeCmd()
		for _, name := range []string{
			"gateway-listen", "api-listen", "upstream", "model", "timeout",
			"rate-limit", "sqlite", "postgres", "kafka-brokers", "log-file", "no-mcp",
		} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})

	It("defaults listen flags from config defaults", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Flags().Lookup("gateway-listen").DefValue).To(Equal(":3000"))
		Expect(cmd.Flags().Lookup("api-listen").DefValue).To(Equal(":3001"))
	})
})

var _ = Describe("Serve command execution", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		GinkgoT().Setenv("PORT", "")
		GinkgoT().Setenv("INNERAI_GATEWAY_API_KEY", "")
		GinkgoT().Setenv("GEMINI_API_KEY", "")
	})

	It("fails without an API key", func() {
		err := runFor([]string{
			"serve", "--config-dir", dir,
			"--gateway-listen", "127.0.0.1:0",
			"--api-listen", "127.0.0.1:0",
		}, 2*time.Second)
		Expect(err).To(MatchError(services.ErrMissingAPIKey))
	})

	It("rejects an invalid timeout before starting", func() {
		GinkgoT().Setenv("GEMINI_API_KEY", "test-key")
		err := runFor([]string{
			"serve", "--config-dir", dir, "--timeout", "later",
		}, 2*time.Second)
		Expect(err).To(MatchError(ContainSubstring("gateway.timeout")))
	})

	It("runs both servers until cancelled", func() {
		GinkgoT().Setenv("GEMINI_API_KEY", "test-key")
		err := runFor([]string{
			"serve", "--config-dir", dir,
			"--gateway-listen", "127.0.0.1:0",
			"--api-listen", "127.0.0.1:0",
		}, 300*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs the gateway alone until cancelled", func() {
		GinkgoT().Setenv("GEMINI_API_KEY", "test-key")
		err := runFor([]string{
			"serve", "gateway", "--config-dir", dir, "--listen", "127.0.0.1:0", "--no-mcp",
		}, 300*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs the journal API alone until cancelled", func() {
		err := runFor([]string{
			"serve", "api", "--config-dir", dir, "--listen", "127.0.0.1:0",
		}, 300*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
	})
})
