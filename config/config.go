/*
Package config loads server settings from the environment.

SOURCES (later wins):
  1. envDefault tags below
  2. .env, .env.local in the working directory (when present)
  3. process environment
  4. command-line flags, applied by cmd/server

SEE ALSO:
  - cmd/server/main.go: flag overrides and dependency wiring
*/
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultEnvFiles are read by Load when present.
var DefaultEnvFiles = []string{".env", ".env.local"}

type BlobOptions struct {
	Driver            string `env:"BLOB_DRIVER" envDefault:"fs"`
	Dir               string `env:"BLOB_DIR" envDefault:"./data/blobs"`
	S3Bucket          string `env:"BLOB_S3_BUCKET"`
	S3Region          string `env:"BLOB_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"BLOB_S3_ENDPOINT"`
	S3PathStyle       bool   `env:"BLOB_S3_PATH_STYLE" envDefault:"false"`
	S3AccessKeyID     string `env:"BLOB_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"BLOB_S3_SECRET_ACCESS_KEY"`
}

func (b *BlobOptions) Validate() error {
	switch b.Driver {
	case "fs":
		if b.Dir == "" {
			return errors.New("BLOB_DIR is required when BLOB_DRIVER is 'fs'")
		}
	case "s3":
		if b.S3Bucket == "" {
			return errors.New("BLOB_S3_BUCKET is required when BLOB_DRIVER is 's3'")
		}
	default:
		return fmt.Errorf("BLOB_DRIVER must be 'fs' or 's3', got '%s'", b.Driver)
	}
	return nil
}

type GeneratorOptions struct {
	Driver        string `env:"GENERATOR_DRIVER" envDefault:"template"` // functions, openai or template
	FunctionsURL  string `env:"FUNCTIONS_URL"`
	FunctionsKey  string `env:"FUNCTIONS_KEY"`
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	// Fallback answers with template output when the driver fails.
	Fallback bool `env:"GENERATOR_FALLBACK" envDefault:"true"`
}

func (g *GeneratorOptions) Validate() error {
	switch g.Driver {
	case "template":
	case "functions":
		if g.FunctionsURL == "" {
			return errors.New("FUNCTIONS_URL is required when GENERATOR_DRIVER is 'functions'")
		}
	case "openai":
		if g.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY is required when GENERATOR_DRIVER is 'openai'")
		}
	default:
		return fmt.Errorf("GENERATOR_DRIVER must be 'functions', 'openai' or 'template', got '%s'", g.Driver)
	}
	return nil
}

type SchedulerOptions struct {
	Enabled  bool          `env:"REVIEW_SCHEDULER_ENABLED" envDefault:"true"`
	Interval time.Duration `env:"REVIEW_CHECK_INTERVAL" envDefault:"1h"`
}

type Config struct {
	Blob      BlobOptions
	Generator GeneratorOptions
	Scheduler SchedulerOptions

	Port          int      `env:"PORT" envDefault:"8080"`
	DBPath        string   `env:"DB_PATH" envDefault:"business.db"`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string   `env:"LOG_FORMAT" envDefault:"text"`
	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`
	RateLimitRPS  int64    `env:"RATE_LIMIT_RPS" envDefault:"50"`
	MaxUploadSize int64    `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
}

// LoadEnv reads the env files that exist and reports how many were found.
func LoadEnv(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads env files, then parses and validates the environment.
func Load(files []string) (*Config, error) {
	if _, err := LoadEnv(files); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	return Parse(env.Options{})
}

// Parse builds a Config from opts. Tests pass opts.Environment to avoid
// touching the process environment.
func Parse(opts env.Options) (*Config, error) {
	c := &Config{}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be non-negative, got %d", c.RateLimitRPS)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be 'text' or 'json', got '%s'", c.LogFormat)
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return errors.New("REVIEW_CHECK_INTERVAL must be positive")
	}
	if err := c.Blob.Validate(); err != nil {
		return fmt.Errorf("blob configuration error: %w", err)
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator configuration error: %w", err)
	}
	return nil
}

// LogrusLevel maps LOG_LEVEL onto logrus. Unknown values mean info.
func (c *Config) LogrusLevel() logrus.Level {
	switch strings.ToLower(c.LogLevel) {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogger builds the process logger writing to out.
func (c *Config) NewLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(c.LogrusLevel())
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
