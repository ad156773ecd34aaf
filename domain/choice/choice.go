// Package choice provides ordered enumerations of stored values and their
// display labels, used to restrict category and status fields.
package choice

import (
	"errors"
	"fmt"
)

// Errors returned when building Choices.
var (
	ErrEmptyValue     = errors.New("choice value is empty")
	ErrDuplicateValue = errors.New("duplicate choice value")
)

// Choice pairs a stored value with its human-readable label.
type Choice struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Choices is an ordered, immutable list of choices.
type Choices struct {
	items []Choice
	index map[string]int
}

// New creates Choices whose labels equal their values.
func New(values ...string) (Choices, error) {
	pairs := make([]Choice, len(values))
	for i, v := range values {
		pairs[i] = Choice{Value: v, Label: v}
	}
	return NewLabeled(pairs...)
}

// NewLabeled creates Choices from explicit value/label pairs.
// An empty label falls back to the value.
func NewLabeled(pairs ...Choice) (Choices, error) {
	c := Choices{
		items: make([]Choice, 0, len(pairs)),
		index: make(map[string]int, len(pairs)),
	}
	for _, p := range pairs {
		if p.Value == "" {
			return Choices{}, ErrEmptyValue
		}
		if _, ok := c.index[p.Value]; ok {
			return Choices{}, fmt.Errorf("%w: %q", ErrDuplicateValue, p.Value)
		}
		if p.Label == "" {
			p.Label = p.Value
		}
		c.index[p.Value] = len(c.items)
		c.items = append(c.items, p)
	}
	return c, nil
}

// MustNew is like New but panics on invalid input. Intended for
// package-level declarations.
func MustNew(values ...string) Choices {
	c, err := New(values...)
	if err != nil {
		panic(err)
	}
	return c
}

// MustNewLabeled is like NewLabeled but panics on invalid input.
func MustNewLabeled(pairs ...Choice) Choices {
	c, err := NewLabeled(pairs...)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the choices in declaration order.
func (c Choices) All() []Choice {
	result := make([]Choice, len(c.items))
	copy(result, c.items)
	return result
}

// Values returns the stored values in declaration order.
func (c Choices) Values() []string {
	result := make([]string, len(c.items))
	for i, item := range c.items {
		result[i] = item.Value
	}
	return result
}

// Len returns the number of choices.
func (c Choices) Len() int { return len(c.items) }

// IsEmpty reports whether no choices are declared.
func (c Choices) IsEmpty() bool { return len(c.items) == 0 }

// Contains reports whether value is one of the choices.
func (c Choices) Contains(value string) bool {
	_, ok := c.index[value]
	return ok
}

// Label returns the display label for value.
func (c Choices) Label(value string) (string, bool) {
	i, ok := c.index[value]
	if !ok {
		return "", false
	}
	return c.items[i].Label, true
}

// Default returns the first declared value, or "" when there are none.
func (c Choices) Default() string {
	if len(c.items) == 0 {
		return ""
	}
	return c.items[0].Value
}
