package persistence

import (
	"context"
	"fmt"

	"github.com/dweb/dweb/domain/query"
	"github.com/dweb/dweb/internal/database"
	"gorm.io/gorm"
)

// Manager is a named, pre-filtered query accessor of a model.
// Reads go through the manager's scope; writes address a single record by
// primary key and ignore the scope.
type Manager[T any] struct {
	name  string
	read  database.Repository[T, T]
	write database.Repository[T, T]
	scope func() []query.Option
}

func newManager[T any](name string, repo database.Repository[T, T], unscoped bool, scope func() []query.Option) *Manager[T] {
	read := repo
	if unscoped {
		read = repo.Unscoped()
	}
	return &Manager[T]{name: name, read: read, write: repo, scope: scope}
}

// Name returns the accessor name.
func (m *Manager[T]) Name() string { return m.name }

// Scope returns the conditions the manager applies to every read.
func (m *Manager[T]) Scope() []query.Option {
	if m.scope == nil {
		return nil
	}
	return m.scope()
}

func (m *Manager[T]) options(extra []query.Option) []query.Option {
	scope := m.Scope()
	opts := make([]query.Option, 0, len(scope)+len(extra))
	opts = append(opts, scope...)
	return append(opts, extra...)
}

// Find returns the records in scope narrowed by options.
func (m *Manager[T]) Find(ctx context.Context, options ...query.Option) ([]T, error) {
	return m.read.Find(ctx, m.options(options)...)
}

// First returns the first record in scope or database.ErrNotFound.
func (m *Manager[T]) First(ctx context.Context, options ...query.Option) (T, error) {
	return m.read.FindOne(ctx, m.options(options)...)
}

// Count returns the number of records in scope.
func (m *Manager[T]) Count(ctx context.Context, options ...query.Option) (int64, error) {
	return m.read.Count(ctx, m.options(options)...)
}

// Exists reports whether any record in scope matches options.
func (m *Manager[T]) Exists(ctx context.Context, options ...query.Option) (bool, error) {
	return m.read.Exists(ctx, m.options(options)...)
}

// Create inserts record and writes generated values back into it.
func (m *Manager[T]) Create(ctx context.Context, record *T) error {
	created, err := m.write.Create(ctx, *record)
	if err != nil {
		return err
	}
	*record = created
	return nil
}

// Save inserts or updates record.
func (m *Manager[T]) Save(ctx context.Context, record *T) error {
	saved, err := m.write.Save(ctx, *record)
	if err != nil {
		return err
	}
	*record = saved
	return nil
}

// Delete removes record, softly when the model supports it.
func (m *Manager[T]) Delete(ctx context.Context, record *T) error {
	return m.write.Delete(ctx, *record)
}

// HardDelete removes record from the table even when soft delete is supported.
func (m *Manager[T]) HardDelete(ctx context.Context, record *T) error {
	return m.write.Unscoped().Delete(ctx, *record)
}

// Undelete clears deleted_at on a soft-deleted record.
func (m *Manager[T]) Undelete(ctx context.Context, record *T) error {
	r, ok := any(record).(restorable)
	if !ok {
		return fmt.Errorf("undelete %s: %w", m.write.Label(), ErrNotSoftDeletable)
	}
	result := m.write.Unscoped().DB(ctx).Model(record).UpdateColumn("deleted_at", nil)
	if result.Error != nil {
		return fmt.Errorf("undelete %s: %w", m.write.Label(), result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("undelete %s: %w", m.write.Label(), database.ErrNotFound)
	}
	r.clearDeletedAt()
	return nil
}

// Query returns a GORM session on the model with the manager scope applied.
func (m *Manager[T]) Query(ctx context.Context) *gorm.DB {
	return database.ApplyConditions(m.read.DB(ctx), m.Scope()...)
}

// Bind returns a copy of the manager that runs against db, typically a
// transaction.
func (m *Manager[T]) Bind(db database.Database) *Manager[T] {
	repo := database.NewRepository[T, T](db, database.IdentityMapper[T]{}, m.write.Label())
	return newManager(m.name, repo, m.read.IsUnscoped(), m.scope)
}
