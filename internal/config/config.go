// Package config loads application configuration from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr    string
		BaseURL string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Redis struct {
		Addr string
		DB   int
		TTL  time.Duration
	}
	AdminEmail      string
	SessionLifetime time.Duration
	MagicLinkTTL    time.Duration
	InsecureCookies bool
}

// Load reads config from environment (SCRIBE_ prefix) and optional scribe.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("scribe")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.base_url", "http://localhost:8080")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("magic_link.ttl", "15m")
	v.SetDefault("redis.ttl", "5m")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.BaseURL = v.GetString("http.base_url")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.AdminEmail = strings.ToLower(v.GetString("admin_email"))
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	lifetime, err := time.ParseDuration(v.GetString("session.lifetime"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRIBE_SESSION_LIFETIME: %w", err)
	}
	cfg.SessionLifetime = lifetime

	linkTTL, err := time.ParseDuration(v.GetString("magic_link.ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRIBE_MAGIC_LINK_TTL: %w", err)
	}
	cfg.MagicLinkTTL = linkTTL

	redisTTL, err := time.ParseDuration(v.GetString("redis.ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRIBE_REDIS_TTL: %w", err)
	}
	cfg.Redis.TTL = redisTTL

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("SCRIBE_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("SCRIBE_DB_DSN is required")
	}

	return cfg, nil
}
