// Package config provides configuration loading and validation for the
// synthlog generator. It uses koanf to merge environment variables with
// optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the generator. The defaults
// reproduce the reference dataset exactly; a run with no config file and no
// environment overrides needs nothing else.
type Config struct {
	// Runtime
	Env       string `koanf:"env"`
	OutputDir string `koanf:"output_dir"`

	// Generation parameters
	Seed         int64  `koanf:"seed"`
	AssetCount   int    `koanf:"asset_count"`
	EventCount   int    `koanf:"event_count"`
	UserCount    int    `koanf:"user_count"`
	AnomalyCount int    `koanf:"anomaly_count"`
	WindowStart  string `koanf:"window_start"`
	WindowDays   int    `koanf:"window_days"`

	// Metrics; empty address disables the scrape endpoint.
	MetricsAddr string `koanf:"metrics_addr"`

	// S3-compatible upload target (optional; validated as a group)
	S3Bucket          string `koanf:"s3_bucket"`
	S3AccessKeyID     string `koanf:"s3_access_key_id"`
	S3SecretAccessKey string `koanf:"s3_secret_access_key"`
	S3Endpoint        string `koanf:"s3_endpoint"`
	S3KeyPrefix       string `koanf:"s3_key_prefix"`

	// Tracing
	TracingEnabled  bool   `koanf:"tracing_enabled"`
	TracingExporter string `koanf:"tracing_exporter"`
	TracingEndpoint string `koanf:"tracing_endpoint"`
	TracingInsecure bool   `koanf:"tracing_insecure"`
}

// Configuration validation errors.
var (
	ErrMissingOutputDir     = errors.New("output_dir must not be empty")
	ErrInvalidAssetCount    = errors.New("asset_count must be a positive integer")
	ErrInvalidEventCount    = errors.New("event_count must be a positive integer")
	ErrInvalidUserCount     = errors.New("user_count must be a positive integer")
	ErrInvalidAnomalyCount  = errors.New("anomaly_count must be between 0 and event_count")
	ErrInvalidWindowStart   = errors.New("window_start must be a YYYY-MM-DD date")
	ErrInvalidWindowDays    = errors.New("window_days must be a positive integer")
	ErrMissingS3Bucket      = errors.New("s3_bucket is required when any S3 value is set")
	ErrMissingS3AccessKeyID = errors.New("s3_access_key_id is required when any S3 value is set")
	ErrMissingS3SecretKey   = errors.New("s3_secret_access_key is required when any S3 value is set")
	ErrMissingS3Endpoint    = errors.New("s3_endpoint is required when any S3 value is set")
	ErrInvalidIntegerValue  = errors.New("value must be a valid integer")
)

// WindowStartLayout is the accepted date format for window_start.
const WindowStartLayout = "2006-01-02"

// Default values, matching the reference generator's constants.
const (
	DefaultEnv          = "development"
	DefaultOutputDir    = "data"
	DefaultSeed         = 42
	DefaultAssetCount   = 500
	DefaultEventCount   = 100000
	DefaultUserCount    = 100
	DefaultAnomalyCount = 2500
	DefaultWindowStart  = "2024-01-01"
	DefaultWindowDays   = 180
)

// Load reads configuration from environment variables and an optional YAML
// config file. Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if
// valid). If a config file path is provided and the file cannot be loaded,
// an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	seed, err := getEnvInt64OrDefault("SYNTHLOG_SEED", k.Int64("seed"), DefaultSeed)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	assetCount, err := getEnvIntOrDefault("SYNTHLOG_ASSET_COUNT", k.Int("asset_count"), DefaultAssetCount)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	eventCount, err := getEnvIntOrDefault("SYNTHLOG_EVENT_COUNT", k.Int("event_count"), DefaultEventCount)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	userCount, err := getEnvIntOrDefault("SYNTHLOG_USER_COUNT", k.Int("user_count"), DefaultUserCount)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	anomalyCount, err := getEnvIntOrDefault("SYNTHLOG_ANOMALY_COUNT", k.Int("anomaly_count"), DefaultAnomalyCount)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	windowDays, err := getEnvIntOrDefault("SYNTHLOG_WINDOW_DAYS", k.Int("window_days"), DefaultWindowDays)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	cfg := &Config{
		Env:          getEnvOrDefault("SYNTHLOG_ENV", k.String("env"), DefaultEnv),
		OutputDir:    getEnvOrDefault("SYNTHLOG_OUTPUT_DIR", k.String("output_dir"), DefaultOutputDir),
		Seed:         seed,
		AssetCount:   assetCount,
		EventCount:   eventCount,
		UserCount:    userCount,
		AnomalyCount: anomalyCount,
		WindowStart:  getEnvOrDefault("SYNTHLOG_WINDOW_START", k.String("window_start"), DefaultWindowStart),
		WindowDays:   windowDays,

		MetricsAddr: getEnvOrKoanf("SYNTHLOG_METRICS_ADDR", k, "metrics_addr"),

		S3Bucket:          getEnvOrKoanf("SYNTHLOG_S3_BUCKET", k, "s3_bucket"),
		S3AccessKeyID:     getEnvOrKoanf("SYNTHLOG_S3_ACCESS_KEY_ID", k, "s3_access_key_id"),
		S3SecretAccessKey: getEnvOrKoanf("SYNTHLOG_S3_SECRET_ACCESS_KEY", k, "s3_secret_access_key"),
		S3Endpoint:        getEnvOrKoanf("SYNTHLOG_S3_ENDPOINT", k, "s3_endpoint"),
		S3KeyPrefix:       getEnvOrKoanf("SYNTHLOG_S3_KEY_PREFIX", k, "s3_key_prefix"),

		TracingEnabled:  getEnvBoolOrDefault("SYNTHLOG_TRACING_ENABLED", k, "tracing_enabled", false),
		TracingExporter: getEnvOrKoanf("SYNTHLOG_TRACING_EXPORTER", k, "tracing_exporter"),
		TracingEndpoint: getEnvOrKoanf("SYNTHLOG_TRACING_ENDPOINT", k, "tracing_endpoint"),
		TracingInsecure: getEnvBoolOrDefault("SYNTHLOG_TRACING_INSECURE", k, "tracing_insecure", false),
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
// Note: a zero value in a YAML file falls back to the default.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", envKey, ErrInvalidIntegerValue)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvInt64OrDefault is getEnvIntOrDefault for 64-bit values (the seed).
func getEnvInt64OrDefault(envKey string, koanfVal int64, defaultVal int64) (int64, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", envKey, ErrInvalidIntegerValue)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvBoolOrDefault returns the environment variable as bool if set,
// otherwise the koanf value if present, or default.
func getEnvBoolOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal bool) bool {
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	if k.Exists(koanfKey) {
		return k.Bool(koanfKey)
	}
	return defaultVal
}

// Validate checks that all configuration values are usable.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.OutputDir == "" {
		errs = append(errs, ErrMissingOutputDir)
	}
	if c.AssetCount <= 0 {
		errs = append(errs, ErrInvalidAssetCount)
	}
	if c.EventCount <= 0 {
		errs = append(errs, ErrInvalidEventCount)
	}
	if c.UserCount <= 0 {
		errs = append(errs, ErrInvalidUserCount)
	}
	if c.AnomalyCount < 0 || c.AnomalyCount > c.EventCount {
		errs = append(errs, ErrInvalidAnomalyCount)
	}
	if _, err := c.Window(); err != nil {
		errs = append(errs, ErrInvalidWindowStart)
	}
	if c.WindowDays <= 0 {
		errs = append(errs, ErrInvalidWindowDays)
	}

	// S3 configuration is optional. Only validate fields if any S3 value is set.
	if c.S3Bucket != "" || c.S3AccessKeyID != "" || c.S3SecretAccessKey != "" || c.S3Endpoint != "" {
		if c.S3Bucket == "" {
			errs = append(errs, ErrMissingS3Bucket)
		}
		if c.S3AccessKeyID == "" {
			errs = append(errs, ErrMissingS3AccessKeyID)
		}
		if c.S3SecretAccessKey == "" {
			errs = append(errs, ErrMissingS3SecretKey)
		}
		if c.S3Endpoint == "" {
			errs = append(errs, ErrMissingS3Endpoint)
		}
	}

	return errs
}

// Window parses the configured window start date.
func (c *Config) Window() (time.Time, error) {
	return time.Parse(WindowStartLayout, c.WindowStart)
}

// UploadEnabled reports whether an upload target is configured.
func (c *Config) UploadEnabled() bool {
	return c.S3Bucket != ""
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"env":                  c.Env,
		"output_dir":           c.OutputDir,
		"seed":                 strconv.FormatInt(c.Seed, 10),
		"asset_count":          strconv.Itoa(c.AssetCount),
		"event_count":          strconv.Itoa(c.EventCount),
		"user_count":           strconv.Itoa(c.UserCount),
		"anomaly_count":        strconv.Itoa(c.AnomalyCount),
		"window_start":         c.WindowStart,
		"window_days":          strconv.Itoa(c.WindowDays),
		"metrics_addr":         c.MetricsAddr,
		"s3_bucket":            c.S3Bucket,
		"s3_access_key_id":     maskSecret(c.S3AccessKeyID),
		"s3_secret_access_key": maskSecret(c.S3SecretAccessKey),
		"s3_endpoint":          c.S3Endpoint,
		"s3_key_prefix":        c.S3KeyPrefix,
		"tracing_enabled":      strconv.FormatBool(c.TracingEnabled),
		"tracing_exporter":     c.TracingExporter,
		"tracing_endpoint":     c.TracingEndpoint,
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}
