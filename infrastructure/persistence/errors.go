package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrImproperlyConfigured is matched by every ConfigurationError.
	ErrImproperlyConfigured = errors.New("improperly configured")
	// ErrInvalidChoice indicates a status or category outside the declared choices.
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrNotSoftDeletable is returned by Undelete on models without a deleted_at column.
	ErrNotSoftDeletable = errors.New("model does not support soft delete")
	// ErrUnknownManager is returned when looking up an accessor that was never installed.
	ErrUnknownManager = errors.New("unknown manager")
)

// Mixin names used as configuration error prefixes.
const (
	MixinCategory = "CategoryModel"
	MixinStatus   = "StatusModel"
)

// ConfigurationError reports a model that cannot be registered.
type ConfigurationError struct {
	Mixin  string
	Model  string
	Field  string
	Reason string
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	if e.Mixin != "" && e.Field != "" {
		kind := strings.ToLower(strings.TrimSuffix(e.Mixin, "Model"))
		return fmt.Sprintf("%s: Model '%s' has a field named '%s' which conflicts with a %s of the same name.",
			e.Mixin, e.Model, e.Field, kind)
	}
	if e.Field != "" {
		return fmt.Sprintf("model '%s': %s: %s", e.Model, e.Field, e.Reason)
	}
	return fmt.Sprintf("model '%s': %s", e.Model, e.Reason)
}

// Unwrap lets errors.Is match ErrImproperlyConfigured.
func (e *ConfigurationError) Unwrap() error {
	return ErrImproperlyConfigured
}

// FieldError describes a single rejected field value.
type FieldError struct {
	Field string
	Tag   string
	Param string
	Value any
}

func (e FieldError) String() string {
	switch e.Tag {
	case "choice":
		return fmt.Sprintf("%s: %v is not a valid %s", e.Field, e.Value, e.Param)
	case "max":
		return fmt.Sprintf("%s: longer than %s characters", e.Field, e.Param)
	default:
		return fmt.Sprintf("%s: failed %s validation", e.Field, e.Tag)
	}
}

// ValidationErrors collects the field errors of one record.
type ValidationErrors []FieldError

// Error implements error.
func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is matches ErrInvalidChoice when any field failed its choice check.
func (v ValidationErrors) Is(target error) bool {
	if target != ErrInvalidChoice {
		return false
	}
	for _, fe := range v {
		if fe.Tag == "choice" {
			return true
		}
	}
	return false
}

func fromValidator(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, fe := range errs {
		out = append(out, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return out
}
