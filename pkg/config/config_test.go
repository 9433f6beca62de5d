package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/innerai/pkg/config"
)

var _ = Describe("Configer config", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	writeConfig := func(data string) {
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())
	}

	load := func() *config.Config {
		c, err := config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		cfg, err := c.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		return cfg
	}

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			cfg := load()
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("loads a valid config file", func() {
			writeConfig(`version = 0

[gateway]
model = "gemini-1.5-pro"
rate_limit = 30

[persona]
language = "ko"
`)
			cfg := load()
			Expect(cfg.Version).To(Equal(0))
			Expect(cfg.Gateway.Model).To(Equal("gemini-1.5-pro"))
			Expect(cfg.Gateway.RateLimit).To(Equal(uint(30)))
			Expect(cfg.Persona.Language).To(Equal("ko"))
		})

		It("loads all config fields", func() {
			writeConfig(`version = 0

[gateway]
listen = ":4000"
provider = "gemini"
upstream = "http://localhost:9999"
model = "gemini-test"
timeout = "5s"
rate_limit = 10
cors_origins = "https://innerai.app"

[persona]
name = "Mira"
language = "ko"

[api]
listen = ":4001"

[client]
gateway_target = "http://remote:4000"

[storage]
sqlite_path = "/tmp/innerai.sqlite"
postgres_dsn = "postgres://localhost/innerai"

[eventstream]
kafka_brokers = "k1:9092,k2:9092"
kafka_topic = "coach.exchanges"
`)
			cfg := load()
			Expect(cfg.Gateway).To(Equal(config.GatewayConfig{
				Listen:      ":4000",
				Provider:    "gemini",
				Upstream:    "http://localhost:9999",
				Model:       "gemini-test",
				Timeout:     "5s",
				RateLimit:   10,
				CORSOrigins: "https://innerai.app",
			}))
			Expect(cfg.Persona).To(Equal(config.PersonaConfig{Name: "Mira", Language: "ko"}))
			Expect(cfg.API.Listen).To(Equal(":4001"))
			Expect(cfg.Client.GatewayTarget).To(Equal("http://remote:4000"))
			Expect(cfg.Storage.SQLitePath).To(Equal("/tmp/innerai.sqlite"))
			Expect(cfg.Storage.PostgresDSN).To(Equal("postgres://localhost/innerai"))
			Expect(cfg.EventStream.Brokers()).To(Equal([]string{"k1:9092", "k2:9092"}))
			Expect(cfg.EventStream.KafkaTopic).To(Equal("coach.exchanges"))
		})

		It("fills in defaults for unset fields in a partial config", func() {
			writeConfig(`[persona]
name = "Mira"
`)
			cfg := load()
			defaults := config.NewDefaultConfig()
			Expect(cfg.Persona.Name).To(Equal("Mira"))
			Expect(cfg.Persona.Language).To(Equal(defaults.Persona.Language))
			Expect(cfg.Gateway.Listen).To(Equal(defaults.Gateway.Listen))
			Expect(cfg.Gateway.Upstream).To(Equal(defaults.Gateway.Upstream))
			Expect(cfg.Gateway.Model).To(Equal(defaults.Gateway.Model))
			Expect(cfg.Gateway.Timeout).To(Equal(defaults.Gateway.Timeout))
			Expect(cfg.API.Listen).To(Equal(defaults.API.Listen))
			Expect(cfg.Client.GatewayTarget).To(Equal(defaults.Client.GatewayTarget))
			Expect(cfg.EventStream.KafkaTopic).To(Equal(defaults.EventStream.KafkaTopic))
		})

		It("returns error for malformed TOML", func() {
			writeConfig("this is not valid toml [[[")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			_, err = c.LoadConfig()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("parsing config TOML"))
		})

		It("returns error for unsupported config version", func() {
			writeConfig("version = 7\n")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			_, err = c.LoadConfig()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unsupported config version 7"))
		})
	})

	Describe("SaveConfig", func() {
		It("persists config to disk", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Persona.Name = "Mira"
			Expect(c.SaveConfig(cfg)).To(Succeed())

			data, err := os.ReadFile(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`name = "Mira"`))
			Expect(string(data)).To(ContainSubstring("[gateway]"))
		})

		It("returns error for nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(nil)).To(MatchError(ContainSubstring("nil config")))
		})

		It("round-trips every field", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Gateway.RateLimit = 12
			cfg.Gateway.Timeout = "15s"
			cfg.Storage.SQLitePath = "/data/journal.sqlite"
			cfg.EventStream.KafkaBrokers = "broker:9092"
			Expect(c.SaveConfig(cfg)).To(Succeed())

			Expect(load()).To(Equal(cfg))
		})
	})

	Describe("SetConfigValue", func() {
		var c *config.Configer

		BeforeEach(func() {
			var err error
			c, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("sets a string config key", func() {
			Expect(c.SetConfigValue("persona.language", "ko")).To(Succeed())
			Expect(load().Persona.Language).To(Equal("ko"))
		})

		It("sets a uint config key", func() {
			Expect(c.SetConfigValue("gateway.rate_limit", "60")).To(Succeed())
			Expect(load().Gateway.RateLimit).To(Equal(uint(60)))
		})

		It("normalizes bare ports for listen keys", func() {
			Expect(c.SetConfigValue("gateway.listen", "8080")).To(Succeed())
			Expect(load().Gateway.Listen).To(Equal(":8080"))
		})

		It("returns error for unknown key", func() {
			err := c.SetConfigValue("proxy.listen", ":8080")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("returns error for invalid uint value", func() {
			err := c.SetConfigValue("gateway.rate_limit", "lots")
			Expect(err).To(MatchError(ContainSubstring("invalid value for gateway.rate_limit")))
		})

		It("returns error for invalid timeout", func() {
			err := c.SetConfigValue("gateway.timeout", "-5s")
			Expect(err).To(MatchError(ContainSubstring("invalid value for gateway.timeout")))
		})

		It("preserves existing values when setting a new key", func() {
			Expect(c.SetConfigValue("persona.name", "Mira")).To(Succeed())
			Expect(c.SetConfigValue("gateway.model", "gemini-test")).To(Succeed())

			cfg := load()
			Expect(cfg.Persona.Name).To(Equal("Mira"))
			Expect(cfg.Gateway.Model).To(Equal("gemini-test"))
		})
	})

	Describe("GetConfigValue", func() {
		var c *config.Configer

		BeforeEach(func() {
			var err error
			c, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("gets a set config value", func() {
			Expect(c.SetConfigValue("storage.sqlite_path", "/tmp/j.sqlite")).To(Succeed())
			val, err := c.GetConfigValue("storage.sqlite_path")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("/tmp/j.sqlite"))
		})

		It("returns default value when no config file exists", func() {
			val, err := c.GetConfigValue("gateway.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal(config.NewDefaultConfig().Gateway.Model))
		})

		It("returns empty string for key with no default", func() {
			val, err := c.GetConfigValue("storage.postgres_dsn")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(BeEmpty())
		})

		It("returns empty string for a disabled rate limit", func() {
			val, err := c.GetConfigValue("gateway.rate_limit")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(BeEmpty())
		})

		It("returns error for unknown key", func() {
			_, err := c.GetConfigValue("vector_store.provider")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})
	})
})

var _ = Describe("ValidConfigKeys", func() {
	It("returns every key in TOML section order", func() {
		keys := config.ValidConfigKeys()
		Expect(keys).To(HaveLen(15))
		Expect(keys[0]).To(Equal("gateway.listen"))
		Expect(keys[len(keys)-1]).To(Equal("eventstream.kafka_topic"))
		for _, k := range keys {
			Expect(config.IsValidConfigKey(k)).To(BeTrue(), k)
		}
	})

	It("returns keys in stable order", func() {
		Expect(config.ValidConfigKeys()).To(Equal(config.ValidConfigKeys()))
	})

	It("rejects keys that are not in the registry", func() {
		Expect(config.IsValidConfigKey("gateway")).To(BeFalse())
		Expect(config.IsValidConfigKey("listen")).To(BeFalse())
		Expect(config.IsValidConfigKey("gateway.api_key")).To(BeFalse())
	})
})

var _ = Describe("PresetConfig", func() {
	It("returns the korean preset with a korean persona", func() {
		cfg, err := config.PresetConfig("korean")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Persona.Language).To(Equal("ko"))
		Expect(cfg.Gateway.Model).To(Equal(config.NewDefaultConfig().Gateway.Model))
	})

	It("is case-insensitive", func() {
		cfg, err := config.PresetConfig("English")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Persona.Language).To(Equal("en"))
	})

	It("returns error for unknown preset", func() {
		_, err := config.PresetConfig("klingon")
		Expect(err).To(MatchError(ContainSubstring("unknown preset")))
	})

	It("lists every preset it accepts", func() {
		for _, name := range config.ValidPresetNames() {
			_, err := config.PresetConfig(name)
			Expect(err).NotTo(HaveOccurred())
		}
	})
})

var _ = Describe("ParseConfigTOML", func() {
	It("returns empty config for empty input", func() {
		cfg, err := config.ParseConfigTOML([]byte(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Gateway.Listen).To(BeEmpty())
	})

	It("rejects unsupported config version", func() {
		_, err := config.ParseConfigTOML([]byte("version = 99\n"))
		Expect(err).To(MatchError(ContainSubstring("unsupported config version")))
	})
})

var _ = Describe("NormalizeListen", func() {
	DescribeTable("listen addresses",
		func(in, want string) {
			Expect(config.NormalizeListen(in)).To(Equal(want))
		},
		Entry("bare port", "3000", ":3000"),
		Entry("colon port", ":3000", ":3000"),
		Entry("host and port", "127.0.0.1:3000", "127.0.0.1:3000"),
		Entry("surrounding space", " 8080 ", ":8080"),
		Entry("empty", "", ""),
	)
})

var _ = Describe("ParseTimeout", func() {
	It("defaults to sixty seconds", func() {
		d, err := config.ParseTimeout("")
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Seconds()).To(Equal(60.0))
	})

	It("rejects non-positive durations", func() {
		_, err := config.ParseTimeout("0s")
		Expect(err).To(HaveOccurred())
	})

	It("rejects garbage", func() {
		_, err := config.ParseTimeout("soon")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("EventStreamConfig.Brokers", func() {
	It("drops blanks and whitespace", func() {
		e := config.EventStreamConfig{KafkaBrokers: " a:9092, ,b:9092,"}
		Expect(e.Brokers()).To(Equal([]string{"a:9092", "b:9092"}))
	})

	It("returns nil when unset", func() {
		Expect(config.EventStreamConfig{}.Brokers()).To(BeNil())
	})
})
