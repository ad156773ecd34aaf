package dweb

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dweb/dweb/infrastructure/storage"
	"github.com/dweb/dweb/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL          string
	dataDir        string
	mediaRoot      string
	storageBackend config.StorageBackend
	s3             config.S3Config
	storage        storage.Storage
	logger         *slog.Logger
	clock          func() time.Time
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:        config.DefaultDataDir(),
		storageBackend: config.DefaultStorageBackend,
		s3:             config.NewS3Config(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig applies an AppConfig loaded from the environment.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.dataDir = cfg.DataDir()
		c.dbURL = cfg.DBURL()
		c.mediaRoot = cfg.MediaRoot()
		c.storageBackend = cfg.StorageBackend()
		c.s3 = cfg.S3()
	}
}

// WithDatabaseURL sets the database URL (sqlite:///path or postgres://...).
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) { c.dbURL = url }
}

// WithSQLite uses a SQLite database file.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		if path != ":memory:" {
			path = filepath.Clean(path)
		}
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres uses a PostgreSQL database.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) { c.dbURL = dsn }
}

// WithDataDir sets the data directory holding the default database and media root.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) { c.dataDir = dir }
}

// WithMediaRoot sets the directory of the filesystem storage backend.
func WithMediaRoot(dir string) Option {
	return func(c *clientConfig) {
		c.mediaRoot = dir
		c.storageBackend = config.StorageFilesystem
	}
}

// WithS3 stores attachments in an S3-compatible bucket.
func WithS3(cfg config.S3Config) Option {
	return func(c *clientConfig) {
		c.s3 = cfg
		c.storageBackend = config.StorageS3
	}
}

// WithStorage uses an existing storage backend.
func WithStorage(s storage.Storage) Option {
	return func(c *clientConfig) { c.storage = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithClock sets the time source of time-framed accessors.
func WithClock(now func() time.Time) Option {
	return func(c *clientConfig) { c.clock = now }
}
