package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/dweb/dweb/domain/query"
	"gorm.io/gorm"
)

// ErrNotFound indicates the requested entity was not found.
var ErrNotFound = errors.New("entity not found")

// EntityMapper defines the interface for mapping between domain and database model types.
type EntityMapper[D any, E any] interface {
	ToDomain(entity E) D
	ToModel(domain D) E
}

// IdentityMapper maps a model type onto itself, for models that are used
// directly as domain values.
type IdentityMapper[T any] struct{}

// ToDomain returns entity unchanged.
func (IdentityMapper[T]) ToDomain(entity T) T { return entity }

// ToModel returns domain unchanged.
func (IdentityMapper[T]) ToModel(domain T) T { return domain }

// Repository provides generic persistence operations for database entities
// using query.Option-based queries.
type Repository[D any, E any] struct {
	db       Database
	mapper   EntityMapper[D, E]
	label    string
	unscoped bool
}

// NewRepository creates a new Repository.
func NewRepository[D any, E any](db Database, mapper EntityMapper[D, E], label string) Repository[D, E] {
	return Repository[D, E]{
		db:     db,
		mapper: mapper,
		label:  label,
	}
}

// Unscoped returns a copy of the repository whose queries include
// soft-deleted rows.
func (r Repository[D, E]) Unscoped() Repository[D, E] {
	r.unscoped = true
	return r
}

// IsUnscoped reports whether soft-deleted rows are included.
func (r Repository[D, E]) IsUnscoped() bool {
	return r.unscoped
}

// Label returns the entity label used in error messages.
func (r Repository[D, E]) Label() string {
	return r.label
}

func (r Repository[D, E]) sessionDB(ctx context.Context) *gorm.DB {
	db := r.db.Session(ctx)
	if r.unscoped {
		db = db.Unscoped()
	}
	return db
}

func (r Repository[D, E]) modelDB(ctx context.Context) *gorm.DB {
	return r.sessionDB(ctx).Model(new(E))
}

// Find retrieves entities matching the given options.
func (r Repository[D, E]) Find(ctx context.Context, options ...query.Option) ([]D, error) {
	var entities []E
	db := ApplyOptions(r.modelDB(ctx), options...)
	result := db.Find(&entities)
	if result.Error != nil {
		return nil, fmt.Errorf("find %s: %w", r.label, result.Error)
	}

	domains := make([]D, len(entities))
	for i, entity := range entities {
		domains[i] = r.mapper.ToDomain(entity)
	}
	return domains, nil
}

// FindOne retrieves a single entity matching the given options.
func (r Repository[D, E]) FindOne(ctx context.Context, options ...query.Option) (D, error) {
	var entity E
	db := ApplyOptions(r.sessionDB(ctx), options...)
	result := db.First(&entity)
	if result.Error != nil {
		var zero D
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return zero, fmt.Errorf("%w: %s", ErrNotFound, r.label)
		}
		return zero, fmt.Errorf("find one %s: %w", r.label, result.Error)
	}
	return r.mapper.ToDomain(entity), nil
}

// Exists checks if any entity matches the given options.
func (r Repository[D, E]) Exists(ctx context.Context, options ...query.Option) (bool, error) {
	count, err := r.Count(ctx, options...)
	if err != nil {
		return false, fmt.Errorf("check %s exists: %w", r.label, err)
	}
	return count > 0, nil
}

// Count returns the number of entities matching the given options.
func (r Repository[D, E]) Count(ctx context.Context, options ...query.Option) (int64, error) {
	var count int64
	db := ApplyConditions(r.modelDB(ctx), options...)
	if result := db.Count(&count); result.Error != nil {
		return 0, fmt.Errorf("count %s: %w", r.label, result.Error)
	}
	return count, nil
}

// Create inserts a new entity and returns it with generated values populated.
func (r Repository[D, E]) Create(ctx context.Context, domain D) (D, error) {
	entity := r.mapper.ToModel(domain)
	if result := r.db.Session(ctx).Create(&entity); result.Error != nil {
		var zero D
		return zero, fmt.Errorf("create %s: %w", r.label, result.Error)
	}
	return r.mapper.ToDomain(entity), nil
}

// Save inserts or updates an entity.
func (r Repository[D, E]) Save(ctx context.Context, domain D) (D, error) {
	entity := r.mapper.ToModel(domain)
	if result := r.sessionDB(ctx).Save(&entity); result.Error != nil {
		var zero D
		return zero, fmt.Errorf("save %s: %w", r.label, result.Error)
	}
	return r.mapper.ToDomain(entity), nil
}

// Delete removes a single entity by primary key. Models carrying a
// gorm.DeletedAt field are soft deleted unless the repository is unscoped.
func (r Repository[D, E]) Delete(ctx context.Context, domain D) error {
	entity := r.mapper.ToModel(domain)
	if result := r.sessionDB(ctx).Delete(&entity); result.Error != nil {
		return fmt.Errorf("delete %s: %w", r.label, result.Error)
	}
	return nil
}

// DeleteBy removes entities matching the given options.
func (r Repository[D, E]) DeleteBy(ctx context.Context, options ...query.Option) error {
	db := ApplyConditions(r.sessionDB(ctx), options...)
	result := db.Delete(new(E))
	if result.Error != nil {
		return fmt.Errorf("delete %s: %w", r.label, result.Error)
	}
	return nil
}

// UpdateColumn sets a single column on entities matching the given options.
func (r Repository[D, E]) UpdateColumn(ctx context.Context, column string, value any, options ...query.Option) (int64, error) {
	db := ApplyConditions(r.modelDB(ctx), options...)
	result := db.UpdateColumn(column, value)
	if result.Error != nil {
		return 0, fmt.Errorf("update %s.%s: %w", r.label, column, result.Error)
	}
	return result.RowsAffected, nil
}

// DB returns a GORM session scoped to the entity model.
func (r Repository[D, E]) DB(ctx context.Context) *gorm.DB {
	return r.modelDB(ctx)
}

// Mapper returns the entity mapper for external use.
func (r Repository[D, E]) Mapper() EntityMapper[D, E] {
	return r.mapper
}
