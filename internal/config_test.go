package internal_test

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/identity-api/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"
)

func validConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{
			AllowedOrigins:    "*",
			ReadHeaderTimeout: time.Second,
			ReadTimeout:       5 * time.Second,
		},
		Database: internal.DatabaseConfig{MaxOpenConns: 10, MaxIdleConns: 5},
		Security: internal.SecurityConfig{
			JWTSecret:       "0123456789abcdef0123456789abcdef",
			SoftTokenExpiry: 24 * time.Hour,
			HardTokenExpiry: 25 * time.Hour,
			BCryptCost:      10,
		},
		Bootstrap: internal.BootstrapConfig{
			Enabled:            true,
			SystemUserEmail:    "system@example.com",
			SystemUserPassword: "long-enough",
		},
		RateLimit: internal.RateLimitConfig{Enabled: true, Burst: 10, PerSecond: 5},
	}
}

var _ = Describe("Config", func() {
	It("accepts a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	DescribeTable("rejects",
		func(mutate func(*internal.Config), fragment string) {
			cfg := validConfig()
			mutate(cfg)
			err := cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(fragment))
		},
		Entry("a short jwt secret", func(c *internal.Config) { c.Security.JWTSecret = "short" }, "jwt_secret"),
		Entry("a hard expiry inside the soft one", func(c *internal.Config) { c.Security.HardTokenExpiry = time.Hour }, "hard_token_expiry"),
		Entry("a bcrypt cost out of range", func(c *internal.Config) { c.Security.BCryptCost = 20 }, "bcrypt_cost"),
		Entry("more idle than open connections", func(c *internal.Config) { c.Database.MaxIdleConns = 50 }, "max_idle_conns"),
		Entry("a missing system password", func(c *internal.Config) { c.Bootstrap.SystemUserPassword = "" }, "system_user_password"),
		Entry("a zero rate", func(c *internal.Config) { c.RateLimit.PerSecond = 0 }, "per_second"),
		Entry("a bad mandrill url", func(c *internal.Config) {
			c.Notification.MandrillAPIKey = "key"
			c.Notification.MandrillAPIURL = "not a url"
		}, "mandrill_api_url"),
	)

	It("skips bootstrap checks when bootstrap is off", func() {
		cfg := validConfig()
		cfg.Bootstrap = internal.BootstrapConfig{Enabled: false}
		Expect(cfg.Validate()).To(Succeed())
	})

	It("fills defaults and reads config.yml with env overrides", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`
security:
  jwt_secret: "from-file-from-file-from-file-from-file"
bootstrap:
  system_user_password: "from-file"
`), 0o600)).To(Succeed())
		GinkgoT().Setenv("ENV_SECURITY_BCRYPT_COST", "12")

		v := viper.New()
		internal.SetDefaults(v)
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(dir)
		v.SetEnvPrefix("ENV")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		Expect(v.ReadInConfig()).To(Succeed())

		var cfg internal.Config
		Expect(v.Unmarshal(&cfg)).To(Succeed())
		Expect(cfg.Security.JWTSecret).To(HavePrefix("from-file"))
		Expect(cfg.Security.BCryptCost).To(Equal(12))
		Expect(cfg.Security.SoftTokenExpiry).To(Equal(24 * time.Hour))
		Expect(cfg.Security.HardTokenExpiry).To(Equal(25 * time.Hour))
		Expect(cfg.Notification.VerificationTemplate).To(Equal("verify-your-email-1"))
		Expect(cfg.Validate()).To(Succeed())
	})

	It("builds a production configuration from the environment", func() {
		GinkgoT().Setenv("JWT_SECRET", "env-secret-env-secret-env-secret-env")
		GinkgoT().Setenv("SOFT_TOKEN_EXPIRY", "2h")
		GinkgoT().Setenv("HARD_TOKEN_EXPIRY", "3h")
		GinkgoT().Setenv("RATE_LIMIT_BURST", "not-a-number")

		cfg := internal.LoadConfigFromEnv()
		Expect(cfg.Security.JWTSecret).To(Equal("env-secret-env-secret-env-secret-env"))
		Expect(cfg.Security.SoftTokenExpiry).To(Equal(2 * time.Hour))
		Expect(cfg.Security.HardTokenExpiry).To(Equal(3 * time.Hour))
		Expect(cfg.RateLimit.Burst).To(Equal(10))
	})
})
