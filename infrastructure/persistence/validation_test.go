package persistence

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dweb/dweb/domain/choice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticket struct {
	StatusModel
	CategoryModel
}

func (ticket) StatusChoices() choice.Choices { return choice.MustNew("open", "closed") }

func (ticket) CategoryChoices() choice.Choices {
	return choice.MustNewLabeled(choice.Choice{Value: "bug", Label: "Bug"}, choice.Choice{Value: "task", Label: "Task"})
}

func TestValidateRecord_Choices(t *testing.T) {
	v := newValidator()
	ctx := context.Background()

	ok := ticket{StatusModel{Status: "open"}, CategoryModel{Category: "bug"}}
	assert.NoError(t, validateRecord(ctx, v, &ok))
	assert.NoError(t, validateRecord(ctx, v, ok), "value records resolve choices too")

	bad := ticket{StatusModel{Status: "pending"}, CategoryModel{Category: "epic"}}
	err := validateRecord(ctx, v, &bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidChoice))

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	assert.Equal(t, "status", verrs[0].Field)
	assert.Equal(t, "category", verrs[1].Field)
	assert.Contains(t, err.Error(), "pending is not a valid status")
}

func TestDeclaredChoices(t *testing.T) {
	c, ok := declaredChoices(reflect.ValueOf(&ticket{}), "category")
	require.True(t, ok)
	label, _ := c.Label("bug")
	assert.Equal(t, "Bug", label)

	_, ok = declaredChoices(reflect.ValueOf(StatusModel{}), "status")
	assert.False(t, ok)

	_, ok = declaredChoices(reflect.ValueOf((*ticket)(nil)), "status")
	assert.False(t, ok)
}

func TestConfigurationError_Messages(t *testing.T) {
	err := &ConfigurationError{Mixin: MixinCategory, Model: "Post", Field: "news"}
	assert.Equal(t, "CategoryModel: Model 'Post' has a field named 'news' which conflicts with a category of the same name.", err.Error())
	assert.ErrorIs(t, err, ErrImproperlyConfigured)

	err = &ConfigurationError{Model: "Post", Reason: "model already registered"}
	assert.Equal(t, "model 'Post': model already registered", err.Error())

	err = &ConfigurationError{Model: "Post", Field: "archived", Reason: "default manager is not installed on the model"}
	assert.Equal(t, "model 'Post': archived: default manager is not installed on the model", err.Error())
}

func TestValidationErrors_IsOnlyForChoice(t *testing.T) {
	errs := ValidationErrors{{Field: "text", Tag: "max", Param: "512"}}
	assert.False(t, errors.Is(errs, ErrInvalidChoice))
	assert.Equal(t, "validation failed: text: longer than 512 characters", errs.Error())
}
