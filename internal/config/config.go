// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default configuration values.
const (
	DefaultLogLevel       = "INFO"
	DefaultMediaSubdir    = "media"
	DefaultDatabaseFile   = "dweb.db"
	DefaultS3Region       = "us-east-1"
	DefaultStorageBackend = StorageFilesystem
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// StorageBackend selects where attachment files are kept.
type StorageBackend string

// StorageBackend values.
const (
	StorageFilesystem StorageBackend = "filesystem"
	StorageS3         StorageBackend = "s3"
)

// S3Config configures an S3-compatible object store.
type S3Config struct {
	bucket       string
	endpoint     string
	region       string
	accessKey    string
	secretKey    string
	usePathStyle bool
}

// NewS3Config creates a new S3Config with defaults.
func NewS3Config() S3Config {
	return S3Config{region: DefaultS3Region}
}

// Bucket returns the bucket name.
func (s S3Config) Bucket() string { return s.bucket }

// Endpoint returns the custom endpoint URL, empty for AWS.
func (s S3Config) Endpoint() string { return s.endpoint }

// Region returns the region.
func (s S3Config) Region() string { return s.region }

// AccessKey returns the access key ID.
func (s S3Config) AccessKey() string { return s.accessKey }

// SecretKey returns the secret access key.
func (s S3Config) SecretKey() string { return s.secretKey }

// UsePathStyle reports whether path-style addressing is used.
func (s S3Config) UsePathStyle() bool { return s.usePathStyle }

// IsConfigured returns true when a bucket is set.
func (s S3Config) IsConfigured() bool { return s.bucket != "" }

// S3Option configures an S3Config.
type S3Option func(*S3Config)

// WithBucket sets the bucket.
func WithBucket(bucket string) S3Option {
	return func(s *S3Config) { s.bucket = bucket }
}

// WithEndpoint sets the endpoint URL.
func WithEndpoint(endpoint string) S3Option {
	return func(s *S3Config) { s.endpoint = endpoint }
}

// WithRegion sets the region.
func WithRegion(region string) S3Option {
	return func(s *S3Config) { s.region = region }
}

// WithCredentials sets static credentials.
func WithCredentials(accessKey, secretKey string) S3Option {
	return func(s *S3Config) {
		s.accessKey = accessKey
		s.secretKey = secretKey
	}
}

// WithPathStyle toggles path-style addressing.
func WithPathStyle(enabled bool) S3Option {
	return func(s *S3Config) { s.usePathStyle = enabled }
}

// NewS3ConfigWithOptions creates an S3Config with options applied over defaults.
func NewS3ConfigWithOptions(opts ...S3Option) S3Config {
	cfg := NewS3Config()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	dataDir        string
	dbURL          string
	logLevel       string
	logFormat      LogFormat
	mediaRoot      string
	storageBackend StorageBackend
	s3             S3Config
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dweb"
	}
	return filepath.Join(home, ".dweb")
}

// DefaultMediaRoot returns the media directory for a given data directory.
func DefaultMediaRoot(dataDir string) string {
	return filepath.Join(dataDir, DefaultMediaSubdir)
}

// DefaultDBURL returns the SQLite URL for a given data directory.
func DefaultDBURL(dataDir string) string {
	return "sqlite:///" + filepath.Join(dataDir, DefaultDatabaseFile)
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		dataDir:        dataDir,
		dbURL:          DefaultDBURL(dataDir),
		logLevel:       DefaultLogLevel,
		logFormat:      LogFormatPretty,
		mediaRoot:      DefaultMediaRoot(dataDir),
		storageBackend: DefaultStorageBackend,
		s3:             NewS3Config(),
	}
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// MediaRoot returns the root directory for filesystem storage.
func (c AppConfig) MediaRoot() string { return c.mediaRoot }

// StorageBackend returns the configured storage backend.
func (c AppConfig) StorageBackend() StorageBackend { return c.storageBackend }

// S3 returns the S3 storage configuration.
func (c AppConfig) S3() S3Config { return c.s3 }

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithDataDir sets the data directory. The database URL and media root
// follow it unless set explicitly afterwards.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
		c.dbURL = DefaultDBURL(dir)
		c.mediaRoot = DefaultMediaRoot(dir)
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = strings.ToUpper(level) }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithMediaRoot sets the filesystem storage root.
func WithMediaRoot(root string) AppConfigOption {
	return func(c *AppConfig) { c.mediaRoot = root }
}

// WithStorageBackend sets the storage backend.
func WithStorageBackend(backend StorageBackend) AppConfigOption {
	return func(c *AppConfig) { c.storageBackend = backend }
}

// WithS3Config sets the S3 configuration.
func WithS3Config(s3 S3Config) AppConfigOption {
	return func(c *AppConfig) { c.s3 = s3 }
}

// NewAppConfigWithOptions creates an AppConfig with options applied over defaults.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	cfg := NewAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c AppConfig) Validate() error {
	switch c.storageBackend {
	case StorageFilesystem:
		if c.mediaRoot == "" {
			return fmt.Errorf("filesystem storage requires a media root")
		}
	case StorageS3:
		if !c.s3.IsConfigured() {
			return fmt.Errorf("s3 storage requires a bucket")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.storageBackend)
	}
	return nil
}
