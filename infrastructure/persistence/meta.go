package persistence

import (
	"reflect"
	"slices"

	"github.com/dweb/dweb/domain/choice"
	"gorm.io/gorm/schema"
)

// Field is a persisted field of a model.
type Field struct {
	Name   string `json:"name" yaml:"name"`
	Column string `json:"column" yaml:"column"`
}

// Meta describes a registered model. It is read-only to callers.
type Meta struct {
	name           string
	table          string
	goType         reflect.Type
	fields         []Field
	managers       []string
	defaultManager string
	categories     choice.Choices
	statuses       choice.Choices
	hasCategory    bool
	hasStatus      bool
	softDeletes    bool
	timeFramed     bool
}

func newMeta(name string, typ reflect.Type, s *schema.Schema) *Meta {
	m := &Meta{
		name:   name,
		table:  s.Table,
		goType: typ,
	}
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		m.fields = append(m.fields, Field{Name: f.Name, Column: f.DBName})
	}

	sample := reflect.New(typ).Interface()
	if _, ok := sample.(categoryCarrier); ok {
		m.hasCategory = true
		m.categories, _ = choicesOf(sample, "category")
	}
	if _, ok := sample.(statusCarrier); ok {
		m.hasStatus = true
		m.statuses, _ = choicesOf(sample, "status")
	}
	_, m.softDeletes = sample.(softDeleter)
	_, m.timeFramed = sample.(timeFramer)
	return m
}

// Name returns the model name.
func (m *Meta) Name() string { return m.name }

// Table returns the database table name.
func (m *Meta) Table() string { return m.table }

// Type returns the Go type of the model.
func (m *Meta) Type() reflect.Type { return m.goType }

// Fields returns the persisted fields in schema order.
func (m *Meta) Fields() []Field { return slices.Clone(m.fields) }

// HasField reports whether name matches a field's Go name or column.
func (m *Meta) HasField(name string) bool {
	for _, f := range m.fields {
		if f.Name == name || f.Column == name {
			return true
		}
	}
	return false
}

// Managers returns accessor names in installation order.
func (m *Meta) Managers() []string { return slices.Clone(m.managers) }

// HasManager reports whether an accessor with name is installed.
func (m *Meta) HasManager(name string) bool { return slices.Contains(m.managers, name) }

// DefaultManager returns the name of the default accessor.
func (m *Meta) DefaultManager() string { return m.defaultManager }

// CategoryChoices returns the declared categories.
func (m *Meta) CategoryChoices() choice.Choices { return m.categories }

// StatusChoices returns the declared statuses.
func (m *Meta) StatusChoices() choice.Choices { return m.statuses }

// HasCategory reports whether the model embeds CategoryModel.
func (m *Meta) HasCategory() bool { return m.hasCategory }

// HasStatus reports whether the model embeds StatusModel.
func (m *Meta) HasStatus() bool { return m.hasStatus }

// SoftDeletes reports whether the model embeds SoftDelete.
func (m *Meta) SoftDeletes() bool { return m.softDeletes }

// TimeFramed reports whether the model embeds TimeFramed.
func (m *Meta) TimeFramed() bool { return m.timeFramed }

// addManager records an accessor. The first accessor added to a model
// without a default becomes the default.
func (m *Meta) addManager(name string) {
	m.managers = append(m.managers, name)
	if m.defaultManager == "" {
		m.defaultManager = name
	}
}

func (m *Meta) setDefaultManager(name string) {
	m.defaultManager = name
}

// Description is a serialisable snapshot of Meta.
type Description struct {
	Name           string          `json:"name" yaml:"name"`
	Table          string          `json:"table" yaml:"table"`
	Fields         []Field         `json:"fields" yaml:"fields"`
	Managers       []string        `json:"managers" yaml:"managers"`
	DefaultManager string          `json:"default_manager" yaml:"default_manager"`
	Statuses       []choice.Choice `json:"statuses,omitempty" yaml:"statuses,omitempty"`
	Categories     []choice.Choice `json:"categories,omitempty" yaml:"categories,omitempty"`
	Traits         map[string]bool `json:"traits" yaml:"traits"`
}

// Describe returns a snapshot suitable for printing.
func (m *Meta) Describe() Description {
	return Description{
		Name:           m.name,
		Table:          m.table,
		Fields:         m.Fields(),
		Managers:       m.Managers(),
		DefaultManager: m.defaultManager,
		Statuses:       m.statuses.All(),
		Categories:     m.categories.All(),
		Traits: map[string]bool{
			"category":    m.hasCategory,
			"status":      m.hasStatus,
			"soft_delete": m.softDeletes,
			"time_framed": m.timeFramed,
		},
	}
}
