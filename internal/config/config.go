// Package config loads runtime configuration from the environment.
//
// All settings come from SAFARI_-prefixed environment variables, read once
// at startup into an explicit Config struct that main passes down the
// dependency graph. Nothing in the application reads the environment after
// Load returns.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "SAFARI"

	defaultHTTPAddress = "0.0.0.0:8080"
	defaultDBPath      = "data/safari.db"
	defaultUploadsDir  = "static/uploads"
	defaultLogLevel    = "info"
	defaultJWTAlg      = "HS256"
	defaultTokenTTL    = time.Hour
)

// Config captures every process-wide setting. It is built once in main and
// injected; there are no ambient config singletons.
type Config struct {
	HTTPAddress string
	DBPath      string
	UploadsDir  string
	LogLevel    string

	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// New returns a viper instance with defaults and env bindings applied.
func New() *viper.Viper {
	v := viper.New()
	applyDefaults(v)
	return v
}

func applyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.address", defaultHTTPAddress)
	v.SetDefault("database.path", defaultDBPath)
	v.SetDefault("uploads.dir", defaultUploadsDir)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("jwt.algorithm", defaultJWTAlg)
	v.SetDefault("jwt.ttl", defaultTokenTTL)
}

// Load parses and validates runtime configuration from viper.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPAddress: v.GetString("http.address"),
		DBPath:      v.GetString("database.path"),
		UploadsDir:  v.GetString("uploads.dir"),
		LogLevel:    v.GetString("log.level"),

		JWTSecret:    v.GetString("jwt.secret"),
		JWTAlgorithm: v.GetString("jwt.algorithm"),
		TokenTTL:     v.GetDuration("jwt.ttl"),

		GoogleClientID:     v.GetString("google.client_id"),
		GoogleClientSecret: v.GetString("google.client_secret"),
		GoogleRedirectURL:  v.GetString("google.redirect_url"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: SAFARI_JWT_SECRET must be set")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("config: SAFARI_JWT_SECRET must be at least 16 characters")
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("config: unsupported JWT algorithm %q", c.JWTAlgorithm)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: SAFARI_JWT_TTL must be positive")
	}
	return nil
}
