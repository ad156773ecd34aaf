// Package query describes record lookups as composable options that the
// persistence layer translates into SQL.
package query

import "fmt"

// Option applies a modification to a Query.
type Option func(Query) Query

// Query holds conditions, ordering, and pagination for record lookups.
type Query struct {
	conditions []Condition
	orders     []Order
	limit      int
	offset     int
}

// Build creates a Query from a set of options.
func Build(options ...Option) Query {
	q := Query{}
	for _, opt := range options {
		q = opt(q)
	}
	return q
}

// Conditions returns the query conditions.
func (q Query) Conditions() []Condition {
	result := make([]Condition, len(q.conditions))
	copy(result, q.conditions)
	return result
}

// Orders returns the query ordering specifications.
func (q Query) Orders() []Order {
	result := make([]Order, len(q.orders))
	copy(result, q.orders)
	return result
}

// LimitValue returns the limit (0 means no limit).
func (q Query) LimitValue() int {
	return q.limit
}

// OffsetValue returns the offset.
func (q Query) OffsetValue() int {
	return q.offset
}

// Operator identifies how a Condition compares its field.
type Operator int

// Operator values.
const (
	OpEqual Operator = iota
	OpIn
	OpIsNull
	OpIsNotNull
	OpRaw
)

// Condition represents a single query condition.
type Condition struct {
	field    string
	operator Operator
	value    any
	args     []any
}

// Field returns the condition field name, or the SQL fragment for raw conditions.
func (c Condition) Field() string { return c.field }

// Operator returns the comparison operator.
func (c Condition) Operator() Operator { return c.operator }

// Value returns the condition value.
func (c Condition) Value() any { return c.value }

// Args returns the bind arguments of a raw condition.
func (c Condition) Args() []any {
	result := make([]any, len(c.args))
	copy(result, c.args)
	return result
}

// String returns a readable representation.
func (c Condition) String() string {
	switch c.operator {
	case OpIn:
		return fmt.Sprintf("%s IN %v", c.field, c.value)
	case OpIsNull:
		return fmt.Sprintf("%s IS NULL", c.field)
	case OpIsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", c.field)
	case OpRaw:
		return fmt.Sprintf("%s %v", c.field, c.args)
	default:
		return fmt.Sprintf("%s = %v", c.field, c.value)
	}
}

// Order represents a sort specification.
type Order struct {
	field     string
	ascending bool
}

// Field returns the order field name.
func (o Order) Field() string { return o.field }

// Ascending returns true for ASC, false for DESC.
func (o Order) Ascending() bool { return o.ascending }

func withCond(c Condition) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, c)
		return q
	}
}

// WithCondition adds a field = value equality condition.
func WithCondition(field string, value any) Option {
	return withCond(Condition{field: field, value: value})
}

// WithConditionIn adds a field IN (values) condition.
func WithConditionIn(field string, values any) Option {
	return withCond(Condition{field: field, operator: OpIn, value: values})
}

// WithNull adds a field IS NULL condition.
func WithNull(field string) Option {
	return withCond(Condition{field: field, operator: OpIsNull})
}

// WithNotNull adds a field IS NOT NULL condition.
func WithNotNull(field string) Option {
	return withCond(Condition{field: field, operator: OpIsNotNull})
}

// WithWhere adds a raw SQL fragment with bind arguments.
func WithWhere(expr string, args ...any) Option {
	return withCond(Condition{field: expr, operator: OpRaw, args: args})
}

// WithID filters by the "id" column.
func WithID(id any) Option {
	return WithCondition("id", id)
}

// WithStatus filters by the "status" column.
func WithStatus(status string) Option {
	return WithCondition("status", status)
}

// WithCategory filters by the "category" column.
func WithCategory(category string) Option {
	return WithCondition("category", category)
}

// WithLimit sets the maximum number of results.
func WithLimit(n int) Option {
	return func(q Query) Query {
		q.limit = n
		return q
	}
}

// WithOffset sets the result offset.
func WithOffset(n int) Option {
	return func(q Query) Query {
		q.offset = n
		return q
	}
}

// WithOrderAsc adds ascending ordering on a field.
func WithOrderAsc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: true})
		return q
	}
}

// WithOrderDesc adds descending ordering on a field.
func WithOrderDesc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: false})
		return q
	}
}

// WithPagination returns limit and offset options for a page.
func WithPagination(limit, offset int) []Option {
	return []Option{WithLimit(limit), WithOffset(offset)}
}
