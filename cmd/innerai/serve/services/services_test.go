package services_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/innerai/cmd/innerai/serve/services"
	"github.com/papercomputeco/innerai/pkg/coach"
	"github.com/papercomputeco/innerai/pkg/config"
	"github.com/papercomputeco/innerai/pkg/credentials"
	"github.com/papercomputeco/innerai/pkg/eventstream/kafka"
	"github.com/papercomputeco/innerai/pkg/eventstream/nop"
	"github.com/papercomputeco/innerai/pkg/logger"
	"github.com/papercomputeco/innerai/pkg/storage/inmemory"
	"github.com/papercomputeco/innerai/pkg/storage/sqlite"
	testutils "github.com/papercomputeco/innerai/pkg/utils/test"
)

var _ = Describe("NewStorageDriver", func() {
	It("uses memory when nothing is configured", func() {
		driver, err := services.NewStorageDriver(context.Background(), config.StorageConfig{}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(driver.Close)
		Expect(driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))
	})

	It("opens SQLite when a path is set", func() {
		path := filepath.Join(GinkgoT().TempDir(), "journal.sqlite")
		driver, err := services.NewStorageDriver(context.Background(), config.StorageConfig{SQLitePath: path}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(driver.Close)
		Expect(driver).To(BeAssignableToTypeOf(&sqlite.Driver{}))
		Expect(path).To(BeAnExistingFile())
	})

	It("fails on an unreachable Postgres", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		_, err := services.NewStorageDriver(ctx, config.StorageConfig{
			PostgresDSN: "postgres://nobody@127.0.0.1:1/innerai?sslmode=disable&connect_timeout=1",
		}, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("PostgreSQL")))
	})
})

var _ = Describe("NewPublisher", func() {
	It("returns a no-op publisher without brokers", func() {
		pub, err := services.NewPublisher(config.EventStreamConfig{}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(pub).To(BeAssignableToTypeOf(&nop.Publisher{}))
	})

	It("returns a kafka publisher with brokers", func() {
		pub, err := services.NewPublisher(config.EventStreamConfig{
			KafkaBrokers: "127.0.0.1:9092",
			KafkaTopic:   "innerai.test",
		}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(pub.Close)
		Expect(pub).To(BeAssignableToTypeOf(&kafka.Publisher{}))
	})
})

var _ = Describe("ResolveAPIKey", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("prefers the environment value", func() {
		key, err := services.ResolveAPIKey(dir, "gemini", "env-key")
		Expect(err).NotTo(HaveOccurred())
		Expect(key).To(Equal("env-key"))
	})

	It("falls back to credentials.toml", func() {
		mgr, err := credentials.NewManager(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.SetKey("gemini", "stored-key")).To(Succeed())

		key, err := services.ResolveAPIKey(dir, "gemini", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(key).To(Equal("stored-key"))
	})

	It("reports a missing key", func() {
		_, err := services.ResolveAPIKey(dir, "gemini", "")
		Expect(err).To(MatchError(services.ErrMissingAPIKey))
	})
})

var _ = Describe("NewCoach", func() {
	It("builds a coach from config", func() {
		cfg := config.NewDefaultConfig()
		cfg.Persona.Name = "Mira"

		co, err := services.NewCoach(cfg, "key", logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(co.Model()).To(Equal(cfg.Gateway.Model))
		Expect(co.Persona().Name).To(Equal("Mira"))
	})

	It("rejects an unknown provider", func() {
		cfg := config.NewDefaultConfig()
		cfg.Gateway.Provider = "ollama"

		_, err := services.NewCoach(cfg, "key", logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("unknown provider type")))
	})

	It("rejects an invalid timeout", func() {
		cfg := config.NewDefaultConfig()
		cfg.Gateway.Timeout = "whenever"

		_, err := services.NewCoach(cfg, "key", logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("invalid gateway timeout")))
	})
})

var _ = Describe("WatchPersona", func() {
	It("applies persona edits without a restart", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "config.toml")
		Expect(os.WriteFile(path, []byte("[persona]\nname = \"InnerAI\"\n"), 0o600)).To(Succeed())

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		co, err := coach.New(coach.Config{Provider: testutils.NewMockProvider("ok")})
		Expect(err).NotTo(HaveOccurred())

		services.WatchPersona(v, co, logger.Nop())

		Expect(os.WriteFile(path, []byte("[persona]\nname = \"Mira\"\nlanguage = \"ko\"\n"), 0o600)).To(Succeed())

		Eventually(func() string { return co.Persona().Name }).
			WithTimeout(5 * time.Second).
			Should(Equal("Mira"))
		Expect(co.Persona().Language).To(Equal("ko"))
	})
})
