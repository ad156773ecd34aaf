package persistence

import (
	"github.com/dweb/dweb/domain/query"
	"github.com/dweb/dweb/internal/database"
)

// Names of the accessors every model may receive.
const (
	ObjectsManager        = "objects"
	AllObjectsManager     = "all_objects"
	DeletedObjectsManager = "deleted_objects"
	TimeFramedManager     = "timeframed"
)

// accessor is a planned manager.
type accessor struct {
	name     string
	unscoped bool
	scope    func() []query.Option
}

func fixedScope(opts ...query.Option) func() []query.Option {
	return func() []query.Option { return opts }
}

// baseAccessors plans the managers that depend only on the traits a model
// embeds. objects comes first and becomes the default.
func (r *Registry) baseAccessors(meta *Meta) []accessor {
	out := []accessor{{name: ObjectsManager}}
	if meta.softDeletes {
		out = append(out,
			accessor{name: AllObjectsManager, unscoped: true},
			accessor{
				name:     DeletedObjectsManager,
				unscoped: true,
				scope:    fixedScope(query.WithNotNull("deleted_at")),
			},
		)
	}
	if meta.timeFramed {
		clock := r.clock
		out = append(out, accessor{
			name: TimeFramedManager,
			scope: func() []query.Option {
				now := clock()
				return []query.Option{
					query.WithWhere("(start_at IS NULL OR start_at <= ?) AND (end_at IS NULL OR end_at >= ?)", now, now),
				}
			},
		})
	}
	return out
}

// planChoiceAccessors plans one accessor per declared category and then per
// declared status, in declaration order. Every name is checked against the
// model fields, the base accessors and the names planned before it, so a
// collision is reported before anything is installed.
func planChoiceAccessors(meta *Meta, base []accessor) ([]accessor, error) {
	var planned []accessor
	taken := func(name string) bool {
		return meta.HasField(name) || plannedName(name, base, planned)
	}

	if meta.hasCategory {
		for _, c := range meta.categories.All() {
			if taken(c.Value) {
				return nil, &ConfigurationError{Mixin: MixinCategory, Model: meta.name, Field: c.Value}
			}
			planned = append(planned, accessor{
				name:  c.Value,
				scope: fixedScope(query.WithCategory(c.Value)),
			})
		}
	}
	if meta.hasStatus {
		for _, c := range meta.statuses.All() {
			if taken(c.Value) {
				return nil, &ConfigurationError{Mixin: MixinStatus, Model: meta.name, Field: c.Value}
			}
			planned = append(planned, accessor{
				name:  c.Value,
				scope: fixedScope(query.WithStatus(c.Value)),
			})
		}
	}
	return planned, nil
}

// installChoiceAccessors adds the planned choice accessors and restores the
// default manager recorded before the first one was added.
func installChoiceAccessors[T any](model *Model[T], repo database.Repository[T, T], planned []accessor) {
	if len(planned) == 0 {
		return
	}
	defaultManager := model.meta.defaultManager
	for _, acc := range planned {
		model.install(repo, acc)
	}
	model.meta.setDefaultManager(defaultManager)
}

func plannedName(name string, groups ...[]accessor) bool {
	for _, group := range groups {
		for _, acc := range group {
			if acc.name == name {
				return true
			}
		}
	}
	return false
}
