package persistence

import (
	"fmt"
	"reflect"

	"gorm.io/gorm"
)

const (
	createCallback = "dweb:before_create"
	updateCallback = "dweb:before_update"
)

// registerCallbacks hooks choice defaults and validation into GORM's
// create and update chains. Registering on a db that already carries the
// callbacks replaces them.
func (r *Registry) registerCallbacks(db *gorm.DB) error {
	create := db.Callback().Create()
	if create.Get(createCallback) != nil {
		if err := create.Replace(createCallback, r.beforeCreate); err != nil {
			return fmt.Errorf("replace %s callback: %w", createCallback, err)
		}
	} else if err := create.Before("gorm:create").After("gorm:before_create").Register(createCallback, r.beforeCreate); err != nil {
		return fmt.Errorf("register %s callback: %w", createCallback, err)
	}

	update := db.Callback().Update()
	if update.Get(updateCallback) != nil {
		if err := update.Replace(updateCallback, r.beforeUpdate); err != nil {
			return fmt.Errorf("replace %s callback: %w", updateCallback, err)
		}
	} else if err := update.Before("gorm:update").After("gorm:before_update").Register(updateCallback, r.beforeUpdate); err != nil {
		return fmt.Errorf("register %s callback: %w", updateCallback, err)
	}
	return nil
}

// beforeCreate fills empty status and category fields with their first
// declared choice, then validates the records.
func (r *Registry) beforeCreate(db *gorm.DB) {
	meta, ok := r.statementMeta(db)
	if !ok {
		return
	}
	ctx := db.Statement.Context
	eachRecord(db.Statement.ReflectValue, func(rv reflect.Value) {
		if db.Error != nil {
			return
		}
		if err := fillChoiceDefaults(db, meta, rv); err != nil {
			_ = db.AddError(err)
			return
		}
		if err := validateRecord(ctx, r.validate, recordInterface(rv)); err != nil {
			_ = db.AddError(err)
		}
	})
}

// beforeUpdate validates whole-record saves. Column updates such as
// Update("status", v) carry a map and are left to the caller.
func (r *Registry) beforeUpdate(db *gorm.DB) {
	if _, ok := r.statementMeta(db); !ok {
		return
	}
	if !destIsModel(db) {
		return
	}
	ctx := db.Statement.Context
	eachRecord(db.Statement.ReflectValue, func(rv reflect.Value) {
		if db.Error != nil {
			return
		}
		if err := validateRecord(ctx, r.validate, recordInterface(rv)); err != nil {
			_ = db.AddError(err)
		}
	})
}

func (r *Registry) statementMeta(db *gorm.DB) (*Meta, bool) {
	if db.Error != nil || db.Statement.Schema == nil {
		return nil, false
	}
	return r.metaFor(db.Statement.Schema.ModelType)
}

func fillChoiceDefaults(db *gorm.DB, meta *Meta, rv reflect.Value) error {
	if meta.hasCategory {
		if err := fillDefault(db, rv, "category", meta.categories.Default()); err != nil {
			return err
		}
	}
	if meta.hasStatus {
		if err := fillDefault(db, rv, "status", meta.statuses.Default()); err != nil {
			return err
		}
	}
	return nil
}

func fillDefault(db *gorm.DB, rv reflect.Value, column, value string) error {
	if value == "" {
		return nil
	}
	field := db.Statement.Schema.LookUpField(column)
	if field == nil {
		return nil
	}
	ctx := db.Statement.Context
	if _, zero := field.ValueOf(ctx, rv); !zero {
		return nil
	}
	if err := field.Set(ctx, rv, value); err != nil {
		return fmt.Errorf("set default %s: %w", column, err)
	}
	return nil
}

func destIsModel(db *gorm.DB) bool {
	if db.Statement.Dest == nil {
		return false
	}
	t := reflect.TypeOf(db.Statement.Dest)
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	return t == db.Statement.Schema.ModelType
}

func eachRecord(rv reflect.Value, fn func(reflect.Value)) {
	rv = reflect.Indirect(rv)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			elem := reflect.Indirect(rv.Index(i))
			if elem.Kind() == reflect.Struct {
				fn(elem)
			}
		}
	case reflect.Struct:
		fn(rv)
	}
}

func recordInterface(rv reflect.Value) any {
	if rv.CanAddr() {
		return rv.Addr().Interface()
	}
	return rv.Interface()
}
