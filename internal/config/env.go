package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DWEB"

// EnvConfig holds all environment-based configuration.
// Field names map to environment variables with the DWEB_ prefix.
// Nested structs use underscore delimiter (e.g., STORAGE_S3_BUCKET).
type EnvConfig struct {
	// DataDir is the data directory path.
	// Env: DWEB_DATA_DIR
	// Default: ~/.dweb
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DWEB_DB_URL
	// Default: sqlite:///{data_dir}/dweb.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: DWEB_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: DWEB_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// MediaRoot is the root directory for uploaded files.
	// Env: DWEB_MEDIA_ROOT
	// Default: {data_dir}/media
	MediaRoot string `envconfig:"MEDIA_ROOT"`

	// Storage configures the attachment storage backend.
	Storage StorageEnv `envconfig:"STORAGE"`
}

// StorageEnv holds environment configuration for file storage.
type StorageEnv struct {
	// Backend is filesystem or s3.
	// Env: DWEB_STORAGE_BACKEND (default: filesystem)
	Backend string `envconfig:"BACKEND" default:"filesystem"`

	// S3 configures the S3 backend.
	S3 S3Env `envconfig:"S3"`
}

// S3Env holds environment configuration for S3-compatible storage.
type S3Env struct {
	Bucket       string `envconfig:"BUCKET"`
	Endpoint     string `envconfig:"ENDPOINT"`
	Region       string `envconfig:"REGION" default:"us-east-1"`
	AccessKey    string `envconfig:"ACCESS_KEY"`
	SecretKey    string `envconfig:"SECRET_KEY"`
	UsePathStyle bool   `envconfig:"USE_PATH_STYLE" default:"false"`
}

// LoadFromEnv loads configuration from DWEB_ prefixed environment variables.
func LoadFromEnv() (EnvConfig, error) {
	return LoadFromEnvWithPrefix(EnvPrefix)
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	var opts []AppConfigOption

	if e.DataDir != "" {
		opts = append(opts, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		opts = append(opts, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		opts = append(opts, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		opts = append(opts, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.MediaRoot != "" {
		opts = append(opts, WithMediaRoot(e.MediaRoot))
	}
	if e.Storage.Backend != "" {
		opts = append(opts, WithStorageBackend(StorageBackend(strings.ToLower(e.Storage.Backend))))
	}
	if e.Storage.S3.Bucket != "" {
		opts = append(opts, WithS3Config(e.Storage.S3.ToS3Config()))
	}

	return NewAppConfigWithOptions(opts...)
}

// ToS3Config converts S3Env to S3Config.
func (s S3Env) ToS3Config() S3Config {
	opts := []S3Option{
		WithBucket(s.Bucket),
		WithPathStyle(s.UsePathStyle),
		WithCredentials(s.AccessKey, s.SecretKey),
	}
	if s.Endpoint != "" {
		opts = append(opts, WithEndpoint(s.Endpoint))
	}
	if s.Region != "" {
		opts = append(opts, WithRegion(s.Region))
	}
	return NewS3ConfigWithOptions(opts...)
}

func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
