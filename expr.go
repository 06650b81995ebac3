package sqlt

import "github.com/qjebbs/go-sqlt/internal/util"

// Expr is a predicate over the columns of the root table.
//
// Build one with the comparison functions and combine with And, Or and Not.
type Expr interface {
	isExpr()
}

type comparison struct {
	field accessor
	op    string
	value any
}

type inList struct {
	field  accessor
	not    bool
	values []any
}

type nullCheck struct {
	field accessor
	not   bool
}

type logical struct {
	op    string
	exprs []Expr
}

type negation struct {
	expr Expr
}

func (comparison) isExpr() {}
func (inList) isExpr()     {}
func (nullCheck) isExpr()  {}
func (logical) isExpr()    {}
func (negation) isExpr()   {}

// Eq matches rows whose field equals value.
func Eq[T, V any](f Field[T, V], value V) Expr {
	return comparison{field: f, op: "=", value: value}
}

// Ne matches rows whose field differs from value.
func Ne[T, V any](f Field[T, V], value V) Expr {
	return comparison{field: f, op: "<>", value: value}
}

// Lt matches rows whose field is less than value.
func Lt[T, V any](f Field[T, V], value V) Expr {
	return comparison{field: f, op: "<", value: value}
}

// Lte matches rows whose field is less than or equal to value.
func Lte[T, V any](f Field[T, V], value V) Expr {
	return comparison{field: f, op: "<=", value: value}
}

// Gt matches rows whose field is greater than value.
func Gt[T, V any](f Field[T, V], value V) Expr {
	return comparison{field: f, op: ">", value: value}
}

// Gte matches rows whose field is greater than or equal to value.
func Gte[T, V any](f Field[T, V], value V) Expr {
	return comparison{field: f, op: ">=", value: value}
}

// Like matches rows whose field matches the LIKE pattern.
func Like[T any](f Field[T, string], pattern string) Expr {
	return comparison{field: f, op: "LIKE", value: pattern}
}

// In matches rows whose field equals one of values. An empty list
// matches nothing.
func In[T, V any](f Field[T, V], values ...V) Expr {
	return inList{field: f, values: toAny(values)}
}

// NotIn matches rows whose field equals none of values. An empty list
// matches everything.
func NotIn[T, V any](f Field[T, V], values ...V) Expr {
	return inList{field: f, not: true, values: toAny(values)}
}

// IsNull matches rows whose field is NULL.
func IsNull[T, V any](f Field[T, V]) Expr {
	return nullCheck{field: f}
}

// IsNotNull matches rows whose field is not NULL.
func IsNotNull[T, V any](f Field[T, V]) Expr {
	return nullCheck{field: f, not: true}
}

// And matches rows matching all exprs.
func And(exprs ...Expr) Expr {
	return logical{op: "AND", exprs: exprs}
}

// Or matches rows matching any of exprs.
func Or(exprs ...Expr) Expr {
	return logical{op: "OR", exprs: exprs}
}

// Not negates expr.
func Not(expr Expr) Expr {
	return negation{expr: expr}
}

func toAny[V any](values []V) []any {
	return util.Map(values, func(v V) any { return v })
}
