// Package config loads the service configuration from an optional YAML file
// and SHORTENER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// EnvPrefix prefixes every environment override, e.g. SHORTENER_HTTP_SERVER_PORT.
const EnvPrefix = "SHORTENER"

var ErrMissingTLSFiles = errors.New("cert_file and key_file are required in prod")

type Config struct {
	Env        string     `yaml:"env" envconfig:"ENV" validate:"oneof=dev stage prod"`
	BaseURL    string     `yaml:"base_url" envconfig:"BASE_URL"`
	HTTPServer HTTPServer `yaml:"http_server" envconfig:"HTTP_SERVER"`
	ShortCode  ShortCode  `yaml:"short_code" envconfig:"SHORT_CODE"`
	Cleanup    Cleanup    `yaml:"cleanup" envconfig:"CLEANUP"`
	Log        Log        `yaml:"log" envconfig:"LOG"`
	CORS       CORS       `yaml:"cors" envconfig:"CORS"`
}

type HTTPServer struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	CertFile        string        `yaml:"cert_file" envconfig:"CERT_FILE"`
	KeyFile         string        `yaml:"key_file" envconfig:"KEY_FILE"`
}

var defaultHTTPServer = HTTPServer{
	Port:            8080,
	ReadTimeout:     5 * time.Second,
	WriteTimeout:    10 * time.Second,
	IdleTimeout:     time.Minute,
	MaxHeaderBytes:  1 << 20,
	ShutdownTimeout: 10 * time.Second,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// ShortCode tunes short code generation and the default lifetime of a URL.
type ShortCode struct {
	Length                 int `yaml:"length" envconfig:"LENGTH" validate:"min=3,max=20"`
	MaxAttempts            int `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS" validate:"min=1"`
	GrowEvery              int `yaml:"grow_every" envconfig:"GROW_EVERY" validate:"min=1"`
	DefaultValidityMinutes int `yaml:"default_validity_minutes" envconfig:"DEFAULT_VALIDITY_MINUTES" validate:"min=1"`
}

var defaultShortCode = ShortCode{
	Length:                 6,
	MaxAttempts:            1000,
	GrowEvery:              100,
	DefaultValidityMinutes: 30,
}

type Cleanup struct {
	Interval time.Duration `yaml:"interval" envconfig:"INTERVAL" validate:"gt=0"`
}

var defaultCleanup = Cleanup{
	Interval: 5 * time.Minute,
}

type Log struct {
	Level   string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	JSON    bool   `yaml:"json" envconfig:"JSON"`
	Concise bool   `yaml:"concise" envconfig:"CONCISE"`
}

var defaultLog = Log{
	Level:   "info",
	Concise: true,
}

// SlogLevel converts Level to a slog.Level.
func (l *Log) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
}

var defaultCORS = CORS{
	AllowedOrigins: []string{"*"},
}

// Load reads the config file at path, when given, over the defaults and then
// applies environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to process env: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	return nil
}

// Validate reports the first group of invalid settings.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Env == EnvProd && (c.HTTPServer.CertFile == "" || c.HTTPServer.KeyFile == "") {
		return fmt.Errorf("invalid config: %w", ErrMissingTLSFiles)
	}

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.HTTPServer = defaultHTTPServer
	cfg.ShortCode = defaultShortCode
	cfg.Cleanup = defaultCleanup
	cfg.Log = defaultLog
	cfg.CORS = CORS{AllowedOrigins: append([]string(nil), defaultCORS.AllowedOrigins...)}
}
