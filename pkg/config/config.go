package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mcuadros/go-defaults"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "config.yaml"

	// ChunkAlignment is the granularity Mux direct uploads accept for
	// every chunk except the last one.
	ChunkAlignment = 256 * 1024
)

var defaultFormats = []string{"mp4", "mov", "avi", "wmv", "flv", "mkv", "webm"}

type Config struct {
	MuxTokenID     string `yaml:"-"`
	MuxTokenSecret string `yaml:"-"`

	API     APIConfig     `yaml:"api"`
	Upload  UploadConfig  `yaml:"upload"`
	Asset   AssetConfig   `yaml:"asset"`
	Logging LoggingConfig `yaml:"logging"`
}

type APIConfig struct {
	Endpoint       string `yaml:"endpoint" default:"https://api.mux.com" validate:"required,url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" default:"300" validate:"gt=0"`
}

type UploadConfig struct {
	ChunkSize                     int64    `yaml:"chunk_size" default:"33554432" validate:"gt=0"`
	MaxRetries                    int      `yaml:"max_retries" default:"3" validate:"gt=0,lte=10"`
	BackoffBaseMs                 int64    `yaml:"backoff_base_ms" default:"1000" validate:"gt=0"`
	PollIntervalSeconds           int      `yaml:"poll_interval_seconds" default:"2" validate:"gt=0"`
	MaxWaitSeconds                int      `yaml:"max_wait_seconds" default:"300" validate:"gtefield=PollIntervalSeconds"`
	ChannelCapacity               int      `yaml:"channel_capacity" default:"32" validate:"gt=0,lte=1024"`
	ProgressUpdateIntervalSeconds int      `yaml:"progress_update_interval_seconds" default:"10" validate:"gt=0"`
	ConsumerTimeoutBufferSeconds  int      `yaml:"consumer_timeout_buffer_seconds" default:"30" validate:"gte=0"`
	MaxFileSize                   int64    `yaml:"max_file_size" default:"10737418240" validate:"gt=0"`
	SupportedFormats              []string `yaml:"supported_formats" validate:"min=1,dive,required"`
}

type AssetConfig struct {
	PlaybackPolicy  string `yaml:"playback_policy" default:"public" validate:"oneof=public signed"`
	VideoQuality    string `yaml:"video_quality" default:"basic" validate:"oneof=basic plus premium"`
	StaticRendition string `yaml:"static_rendition" default:"highest" validate:"oneof=highest audio-only none"`
	Title           string `yaml:"title"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
}

// Error reports a configuration file that exists but cannot be used.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Load reads the YAML config at path, falling back to $VIDYEET_CONFIG and
// then ./config.yaml. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	if path == "" {
		path = getEnvOrDefault("VIDYEET_CONFIG", defaultConfigPath)
	}

	cfg := &Config{}
	if err := loadYAMLConfig(path, cfg); err != nil {
		return nil, err
	}

	cfg.MuxTokenID = os.Getenv("MUX_TOKEN_ID")
	cfg.MuxTokenSecret = os.Getenv("MUX_TOKEN_SECRET")
	if endpoint := os.Getenv("MUX_API_URL"); endpoint != "" {
		cfg.API.Endpoint = endpoint
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func loadYAMLConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No config file found, using defaults", "path", path)
		return nil
	}
	if err != nil {
		return &Error{Path: path, Err: err}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &Error{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	defaults.SetDefaults(cfg)
	if len(cfg.Upload.SupportedFormats) == 0 {
		cfg.Upload.SupportedFormats = append([]string(nil), defaultFormats...)
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Upload.ChunkSize%ChunkAlignment != 0 {
		return fmt.Errorf("upload.chunk_size %d is not a multiple of %d", c.Upload.ChunkSize, ChunkAlignment)
	}
	return nil
}

func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (u UploadConfig) BackoffBase() time.Duration {
	return time.Duration(u.BackoffBaseMs) * time.Millisecond
}

func (u UploadConfig) PollInterval() time.Duration {
	return time.Duration(u.PollIntervalSeconds) * time.Second
}

func (u UploadConfig) MaxWait() time.Duration {
	return time.Duration(u.MaxWaitSeconds) * time.Second
}

func (u UploadConfig) ProgressInterval() time.Duration {
	return time.Duration(u.ProgressUpdateIntervalSeconds) * time.Second
}

// ConsumerTimeout is how long the progress consumer waits for the next
// event before it stops listening.
func (u UploadConfig) ConsumerTimeout() time.Duration {
	return u.MaxWait() + time.Duration(u.ConsumerTimeoutBufferSeconds)*time.Second
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
