package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const DefaultEnvFile = ".env"

// ServiceConfig holds the base URL of each backend the tools forward to.
type ServiceConfig struct {
	AudioIDURL    string `envconfig:"AUDIO_ID_URL" default:"http://audio-id:8000"`
	ImageOptURL   string `envconfig:"IMAGE_OPT_URL" default:"http://image-opt:8000"`
	OverlayURL    string `envconfig:"OVERLAY_URL" default:"http://overlay:8000"`
	DispatcherURL string `envconfig:"DISPATCHER_URL" default:"http://dispatcher:8000"`
	MonitorURL    string `envconfig:"MONITOR_URL" default:"http://monitor:8000"`
}

// RabbitMQConfig is not used by the adapter; the dispatcher backend reads it.
type RabbitMQConfig struct {
	Host     string `envconfig:"RABBITMQ_HOST" default:"rabbitmq"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"guest"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"guest"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.User, c.Password, c.Host, c.Port)
}

// SambaConfig is reserved for the media share collaborator.
type SambaConfig struct {
	Host     string `envconfig:"SAMBA_HOST" default:"samba"`
	Share    string `envconfig:"SAMBA_SHARE" default:"media"`
	User     string `envconfig:"SAMBA_USER" default:"guest"`
	Password string `envconfig:"SAMBA_PASSWORD" default:""`
}

type Config struct {
	Services    ServiceConfig
	RabbitMQ    RabbitMQConfig
	Samba       SambaConfig
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFormat   string   `envconfig:"LOG_FORMAT" default:"text"`
	MetricsAddr string   `envconfig:"METRICS_ADDR"`
	Tools       []string `envconfig:"MCP_TOOLS" default:"*"`
}

// Load reads envFile (or ./.env when empty) if it exists, then the process
// environment. Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg.Services.trim()
	cfg.Tools = trimPatterns(cfg.Tools)

	return &cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// trimPatterns drops the blanks envconfig leaves around list items, so
// "audio_*, monitor_*" selects both groups.
func trimPatterns(patterns []string) []string {
	out := patterns[:0]
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *ServiceConfig) trim() {
	for _, u := range []*string{&s.AudioIDURL, &s.ImageOptURL, &s.OverlayURL, &s.DispatcherURL, &s.MonitorURL} {
		*u = strings.TrimRight(*u, "/")
	}
}
