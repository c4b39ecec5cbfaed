package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
		// TrustedProxies lists proxy IPs/CIDRs whose X-Forwarded-For is believed.
		TrustedProxies []string
	}
	Database struct {
		Driver   string
		DSN      string
		LogLevel string
	}
	Redis struct {
		URL string
	}
	Auth struct {
		JWTSecret   string
		TokenTTL    time.Duration
		LoginRate   int
		LoginWindow time.Duration
	}
	Storage struct {
		Bucket     string
		KeyPrefix  string
		Region     string
		Endpoint   string
		PresignTTL time.Duration
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level  string
		Format string
	}
	Telemetry struct {
		Endpoint string
		Insecure bool
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// .env never overrides variables that are already set
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HOMELIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.trustedproxies", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/homelist.db")
	v.SetDefault("database.loglevel", "warn")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", "30m")
	v.SetDefault("auth.loginrate", 5)
	v.SetDefault("auth.loginwindow", "1m")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "listings")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.presignttl", "15m")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports the first setting the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth jwt secret is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth token ttl must be positive")
	}
	if c.Auth.LoginRate <= 0 || c.Auth.LoginWindow <= 0 {
		return errors.New("auth login rate and window must be positive")
	}
	for _, proxy := range c.Server.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid trusted proxy %q", proxy)
			}
		}
	}
	if c.Storage.PresignTTL <= 0 {
		return errors.New("storage presign ttl must be positive")
	}
	return nil
}
