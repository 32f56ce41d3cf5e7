// Package config loads server settings from an optional YAML file with
// environment-variable overrides.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full configuration surface of the chat server.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Moderation ModerationConfig `yaml:"moderation"`
}

// ServerConfig holds the listen and observability settings.
type ServerConfig struct {
	Host        string `yaml:"host" env:"PARLEY_HOST" env-default:"127.0.0.1"`
	Port        int    `yaml:"port" env:"PARLEY_PORT" env-default:"8000"`
	MetricsAddr string `yaml:"metrics_addr" env:"PARLEY_METRICS_ADDR" env-default:":9100"`
}

// ModerationConfig holds the quota, throttle, ban, and expiry policy.
type ModerationConfig struct {
	MessageLifetime  time.Duration `yaml:"message_lifetime" env:"PARLEY_MESSAGE_LIFETIME" env-default:"1h"`
	MessageQuota     int           `yaml:"message_quota" env:"PARLEY_MESSAGE_QUOTA" env-default:"20"`
	ThrottleDuration time.Duration `yaml:"throttle_duration" env:"PARLEY_THROTTLE_DURATION" env-default:"10m"`
	ReportThreshold  int           `yaml:"report_threshold" env:"PARLEY_REPORT_THRESHOLD" env-default:"3"`
	BanDuration      time.Duration `yaml:"ban_duration" env:"PARLEY_BAN_DURATION" env-default:"4h"`
	CatchUpCount     int           `yaml:"catchup_count" env:"PARLEY_CATCHUP_COUNT" env-default:"20"`
	SweepInterval    time.Duration `yaml:"sweep_interval" env:"PARLEY_SWEEP_INTERVAL" env-default:"1s"`
}

// Addr returns the host:port the TCP listener binds to.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "", "path to the YAML config file")
}

// Load reads the configuration. The config file path comes from the -config
// flag or the CONFIG_PATH env var; when neither is set, defaults and env
// overrides apply.
func Load() (*Config, error) {
	if !flag.Parsed() {
		flag.Parse()
	}
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from the given YAML file, or from
// defaults and environment only when path is empty.
func LoadFromPath(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return &cfg, nil
}
