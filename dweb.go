// Package dweb provides reusable model building blocks on top of GORM.
//
// Concrete models embed the abstract mixins and are registered once at
// startup. Registration installs one query accessor per declared status
// and category and fails when a choice collides with a field name.
//
// Basic usage:
//
//	type Post struct {
//	    persistence.BaseModel
//	    persistence.StatusModel
//	    Title string
//	}
//
//	func (Post) StatusChoices() choice.Choices { return choice.MustNew("draft", "published") }
//
//	client, err := dweb.New(dweb.WithSQLite("blog.db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	posts := dweb.MustRegister[Post](client)
//	if err := client.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	drafts, err := posts.MustManager("draft").Find(ctx)
package dweb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dweb/dweb/application/service"
	"github.com/dweb/dweb/infrastructure/persistence"
	"github.com/dweb/dweb/infrastructure/storage"
	"github.com/dweb/dweb/internal/config"
	"github.com/dweb/dweb/internal/database"
)

// ErrClientClosed indicates the client has been closed.
var ErrClientClosed = errors.New("dweb: client is closed")

// Client owns the database, the model registry and the file storage.
type Client struct {
	db       database.Database
	registry *persistence.Registry
	storage  storage.Storage
	logger   *slog.Logger
	closed   atomic.Bool
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()

	dbURL := cfg.dbURL
	defaultMedia := cfg.storage == nil && cfg.storageBackend == config.StorageFilesystem && cfg.mediaRoot == ""
	if dbURL == "" || defaultMedia {
		if _, err := config.PrepareDataDir(cfg.dataDir); err != nil {
			return nil, err
		}
	}
	if dbURL == "" {
		dbURL = config.DefaultDBURL(cfg.dataDir)
	}

	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	registryOpts := []persistence.RegistryOption{persistence.WithLogger(logger)}
	if cfg.clock != nil {
		registryOpts = append(registryOpts, persistence.WithClock(cfg.clock))
	}
	registry, err := persistence.NewRegistry(db, registryOpts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create registry: %w", err), db.Close())
	}

	store, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create storage: %w", err), db.Close())
	}

	logger.Info("dweb client ready",
		slog.String("dialect", db.GORM().Name()),
		slog.String("storage", fmt.Sprintf("%T", store)),
	)

	return &Client{
		db:       db,
		registry: registry,
		storage:  store,
		logger:   logger,
	}, nil
}

func buildStorage(ctx context.Context, cfg *clientConfig, logger *slog.Logger) (storage.Storage, error) {
	if cfg.storage != nil {
		return cfg.storage, nil
	}
	switch cfg.storageBackend {
	case config.StorageS3:
		return storage.NewS3(ctx, cfg.s3, storage.WithS3Logger(logger))
	case config.StorageFilesystem, "":
		root := cfg.mediaRoot
		if root == "" {
			root = config.DefaultMediaRoot(cfg.dataDir)
		}
		return storage.NewFileSystem(root, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.storageBackend)
	}
}

// Registry returns the model registry.
func (c *Client) Registry() *persistence.Registry { return c.registry }

// Storage returns the attachment storage.
func (c *Client) Storage() storage.Storage { return c.storage }

// Database returns the underlying database.
func (c *Client) Database() database.Database { return c.db }

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Migrate creates or updates the tables of all registered models.
func (c *Client) Migrate(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.registry.AutoMigrate(ctx)
}

// Close releases the database connection.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	c.logger.Info("dweb client closed")
	return nil
}

// Register registers T with the client's registry.
func Register[T any](c *Client, opts ...persistence.ModelOption) (*persistence.Model[T], error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	return persistence.Register[T](c.registry, opts...)
}

// MustRegister is like Register but panics on error.
func MustRegister[T any](c *Client, opts ...persistence.ModelOption) *persistence.Model[T] {
	m, err := Register[T](c, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Attachments returns an attachment service for model backed by the
// client's storage.
func Attachments[T any, PT interface {
	*T
	persistence.Attachable
}](c *Client, model *persistence.Model[T]) *service.Attachments[T, PT] {
	return service.NewAttachments[T, PT](model, c.db, c.storage, c.logger)
}
