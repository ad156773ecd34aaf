// Package persistence provides abstract model building blocks for GORM
// models and the registry that turns concrete models into query managers.
package persistence

import (
	"reflect"

	"github.com/dweb/dweb/domain/choice"
)

// CategoryModel adds a category column whose allowed values are declared by
// the embedding model through CategoryChooser.
type CategoryModel struct {
	Category string `gorm:"column:category;size:100;not null;index" validate:"choice=category" json:"category"`
}

func (CategoryModel) categoryModel() {}

// CategoryValue returns the current category.
func (m CategoryModel) CategoryValue() string { return m.Category }

// StatusModel adds a status column whose allowed values are declared by the
// embedding model through StatusChooser.
type StatusModel struct {
	Status string `gorm:"column:status;size:100;not null;index" validate:"choice=status" json:"status"`
}

func (StatusModel) statusModel() {}

// StatusValue returns the current status.
func (m StatusModel) StatusValue() string { return m.Status }

// CategoryChooser is implemented by models embedding CategoryModel.
type CategoryChooser interface {
	CategoryChoices() choice.Choices
}

// StatusChooser is implemented by models embedding StatusModel.
type StatusChooser interface {
	StatusChoices() choice.Choices
}

type categoryCarrier interface{ categoryModel() }

type statusCarrier interface{ statusModel() }

// abstractTypes lists the building blocks that may be embedded but never
// registered or migrated on their own.
var abstractTypes = map[reflect.Type]struct{}{
	reflect.TypeFor[CategoryModel]():   {},
	reflect.TypeFor[StatusModel]():     {},
	reflect.TypeFor[Identity]():        {},
	reflect.TypeFor[TimeStamped]():     {},
	reflect.TypeFor[SoftDelete]():      {},
	reflect.TypeFor[TimeFramed]():      {},
	reflect.TypeFor[BaseModel]():       {},
	reflect.TypeFor[NoteModel]():       {},
	reflect.TypeFor[AttachmentModel](): {},
}

// IsAbstract reports whether t is one of the abstract building blocks.
func IsAbstract(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	_, ok := abstractTypes[t]
	return ok
}

// declaredChoices resolves the choices a record declares for kind
// ("status" or "category"). The record may be a struct or a pointer to one.
func declaredChoices(record reflect.Value, kind string) (choice.Choices, bool) {
	for record.Kind() == reflect.Pointer || record.Kind() == reflect.Interface {
		if record.IsNil() {
			return choice.Choices{}, false
		}
		record = record.Elem()
	}
	if record.Kind() != reflect.Struct {
		return choice.Choices{}, false
	}
	ptr := reflect.New(record.Type())
	ptr.Elem().Set(record)
	return choicesOf(ptr.Interface(), kind)
}

func choicesOf(v any, kind string) (choice.Choices, bool) {
	switch kind {
	case "status":
		if d, ok := v.(StatusChooser); ok {
			return d.StatusChoices(), true
		}
	case "category":
		if d, ok := v.(CategoryChooser); ok {
			return d.CategoryChoices(), true
		}
	}
	return choice.Choices{}, false
}
