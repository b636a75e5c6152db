package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	MasterURL        string            `env:"MASTER_URL"`
	SlaveURL         string            `env:"SLAVE_URL"`
	WarnThreshold    int               `env:"WARN_THRESHOLD" envDefault:"0"`
	CritThreshold    int               `env:"CRIT_THRESHOLD" envDefault:"10"`
	RequestTimeout   time.Duration     `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	Concurrency      int               `env:"CONCURRENCY" envDefault:"4"`
	MaxBodySize      int               `env:"MAX_BODY_SIZE" envDefault:"0"`
	UserAgent        string            `env:"USER_AGENT" envDefault:"gitweb-sync-check"`
	Headers          map[string]string `env:"HEADERS"`
	LastChangeSource string            `env:"LAST_CHANGE_SOURCE" envDefault:"html"`
	PushGatewayUrl   string            `env:"PUSHGATEWAY_URL"`
	SlackWebhook     string            `env:"SLACK_WEBHOOK"`
	ReportS3Bucket   string            `env:"REPORT_S3_BUCKET"`
	ReportS3Prefix   string            `env:"REPORT_S3_PREFIX" envDefault:"gitweb-sync"`
}

func NewConfig() (*Config, error) {
	cfg := Config{}

	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg Config) Validate() error {
	if err := validateEndpoint("master", cfg.MasterURL); err != nil {
		return err
	}

	if err := validateEndpoint("slave", cfg.SlaveURL); err != nil {
		return err
	}

	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}

	if cfg.MaxBodySize < 0 {
		return fmt.Errorf("max body size must not be negative, got %d", cfg.MaxBodySize)
	}

	if cfg.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}

	if cfg.LastChangeSource != "html" && cfg.LastChangeSource != "atom" {
		return fmt.Errorf("unknown last change source %q, expected html or atom", cfg.LastChangeSource)
	}

	if cfg.HasSlackSettings() {
		if _, err := url.ParseRequestURI(cfg.SlackWebhook); err != nil {
			return fmt.Errorf("slack webhook is not a valid URL: %w", err)
		}
	}

	return nil
}

func (cfg Config) HasSlackSettings() bool {
	return cfg.SlackWebhook != ""
}

func (cfg Config) HasPushGateway() bool {
	return cfg.PushGatewayUrl != ""
}

func (cfg Config) HasReportBucket() bool {
	return cfg.ReportS3Bucket != ""
}

func validateEndpoint(name string, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%s gitweb URL is required", name)
	}

	u, err := url.ParseRequestURI(endpoint)
	if err != nil {
		return fmt.Errorf("%s gitweb URL is not valid: %w", name, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s gitweb URL must be an absolute http(s) URL, got %s", name, endpoint)
	}

	return nil
}
