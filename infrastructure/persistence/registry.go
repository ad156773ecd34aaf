package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/dweb/dweb/internal/database"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Registry holds the concrete models of an application and the managers
// installed on them.
type Registry struct {
	db       database.Database
	logger   *slog.Logger
	clock    func() time.Time
	validate *validator.Validate

	mu     sync.RWMutex
	metas  map[reflect.Type]*Meta
	order  []*Meta
	models []any
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock sets the time source used by the timeframed accessor.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.clock = now
		}
	}
}

// NewRegistry creates a Registry and installs its GORM callbacks on db.
func NewRegistry(db database.Database, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		db:       db,
		logger:   slog.Default(),
		clock:    time.Now,
		validate: newValidator(),
		metas:    make(map[reflect.Type]*Meta),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.registerCallbacks(db.GORM()); err != nil {
		return nil, err
	}
	return r, nil
}

// Database returns the database the registry operates on.
func (r *Registry) Database() database.Database { return r.db }

// Models returns metadata of all registered models in registration order.
func (r *Registry) Models() []*Meta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Meta, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup returns the metadata of the model named name.
func (r *Registry) Lookup(name string) (*Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.order {
		if m.name == name {
			return m, true
		}
	}
	return nil, false
}

func (r *Registry) metaFor(t reflect.Type) (*Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metas[t]
	return m, ok
}

// Validate checks v against its declared choices and field constraints.
func (r *Registry) Validate(ctx context.Context, v any) error {
	return validateRecord(ctx, r.validate, v)
}

// AutoMigrate creates or updates the tables of all registered models.
// Abstract building blocks never get a table.
func (r *Registry) AutoMigrate(ctx context.Context) error {
	r.mu.RLock()
	models := make([]any, len(r.models))
	copy(models, r.models)
	r.mu.RUnlock()

	if len(models) == 0 {
		return nil
	}
	if err := r.db.Session(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	r.logger.InfoContext(ctx, "migrated models", slog.Int("count", len(models)))
	return nil
}

// ModelOption configures the registration of one model.
type ModelOption func(*modelConfig)

type modelConfig struct {
	name           string
	defaultManager string
}

// WithName overrides the model name, which defaults to the Go type name.
func WithName(name string) ModelOption {
	return func(c *modelConfig) { c.name = name }
}

// WithDefaultManager selects which accessor is the model default.
func WithDefaultManager(name string) ModelOption {
	return func(c *modelConfig) { c.defaultManager = name }
}

// Model is a registered concrete model with its managers.
type Model[T any] struct {
	meta     *Meta
	managers map[string]*Manager[T]
}

// Meta returns the model metadata.
func (m *Model[T]) Meta() *Meta { return m.meta }

// Manager returns the accessor named name.
func (m *Model[T]) Manager(name string) (*Manager[T], error) {
	mgr, ok := m.managers[name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", m.meta.name, name, ErrUnknownManager)
	}
	return mgr, nil
}

// MustManager is like Manager but panics on an unknown name.
func (m *Model[T]) MustManager(name string) *Manager[T] {
	mgr, err := m.Manager(name)
	if err != nil {
		panic(err)
	}
	return mgr
}

// Default returns the default accessor.
func (m *Model[T]) Default() *Manager[T] {
	return m.managers[m.meta.defaultManager]
}

// Objects returns the objects accessor.
func (m *Model[T]) Objects() *Manager[T] {
	return m.managers[ObjectsManager]
}

// Managers returns all accessors in installation order.
func (m *Model[T]) Managers() []*Manager[T] {
	out := make([]*Manager[T], 0, len(m.meta.managers))
	for _, name := range m.meta.managers {
		out = append(out, m.managers[name])
	}
	return out
}

func (m *Model[T]) install(repo database.Repository[T, T], acc accessor) {
	m.managers[acc.name] = newManager(acc.name, repo, acc.unscoped, acc.scope)
	m.meta.addManager(acc.name)
}

// Register validates T, installs its managers and adds it to the registry.
// Nothing is recorded when an error is returned.
func Register[T any](r *Registry, opts ...ModelOption) (*Model[T], error) {
	typ := reflect.TypeFor[T]()
	cfg := modelConfig{name: typ.Name()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if typ.Kind() != reflect.Struct {
		return nil, &ConfigurationError{Model: typ.String(), Reason: "model must be a struct type"}
	}
	if IsAbstract(typ) {
		return nil, &ConfigurationError{Model: cfg.name, Reason: "abstract model cannot be registered"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.metas[typ]; ok {
		return nil, &ConfigurationError{Model: cfg.name, Reason: "model already registered"}
	}

	stmt := &gorm.Statement{DB: r.db.GORM()}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", cfg.name, err)
	}
	meta := newMeta(cfg.name, typ, stmt.Schema)

	base := r.baseAccessors(meta)
	choices, err := planChoiceAccessors(meta, base)
	if err != nil {
		return nil, err
	}
	if cfg.defaultManager != "" && !plannedName(cfg.defaultManager, base, choices) {
		return nil, &ConfigurationError{
			Model:  cfg.name,
			Field:  cfg.defaultManager,
			Reason: "default manager is not installed on the model",
		}
	}

	model := &Model[T]{meta: meta, managers: make(map[string]*Manager[T])}
	repo := database.NewRepository[T, T](r.db, database.IdentityMapper[T]{}, meta.table)
	for _, acc := range base {
		model.install(repo, acc)
	}
	installChoiceAccessors(model, repo, choices)
	if cfg.defaultManager != "" {
		meta.setDefaultManager(cfg.defaultManager)
	}

	r.metas[typ] = meta
	r.order = append(r.order, meta)
	r.models = append(r.models, new(T))

	for _, name := range meta.managers {
		r.logger.Debug("installed accessor", slog.String("model", meta.name), slog.String("accessor", name))
	}
	r.logger.Info("registered model",
		slog.String("model", meta.name),
		slog.String("table", meta.table),
		slog.Int("accessors", len(meta.managers)),
		slog.String("default", meta.defaultManager),
	)
	return model, nil
}

// MustRegister is like Register but panics on error. Configuration errors
// are meant to stop the program at startup.
func MustRegister[T any](r *Registry, opts ...ModelOption) *Model[T] {
	m, err := Register[T](r, opts...)
	if err != nil {
		panic(err)
	}
	return m
}
