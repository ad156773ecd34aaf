package persistence

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// choice=status|category checks the value against the choices declared
	// by the record being validated.
	_ = v.RegisterValidation("choice", validateChoice)

	return v
}

func validateChoice(fl validator.FieldLevel) bool {
	choices, ok := declaredChoices(fl.Top(), fl.Param())
	if !ok || choices.IsEmpty() {
		return true
	}
	return choices.Contains(fl.Field().String())
}

func validateRecord(ctx context.Context, v *validator.Validate, record any) error {
	err := v.StructCtx(ctx, record)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fromValidator(verrs)
	}
	return err
}
