package dsl

import "github.com/aretw0/lattice/pkg/domain"

// Default matches every answer.
func Default() domain.Predicate { return domain.Predicate{Kind: domain.PredicateDefault} }

// Equals matches answers equal to v.
func Equals(v any) domain.Predicate { return domain.Predicate{Kind: domain.PredicateEquals, Value: v} }

// NotEquals matches answers different from v.
func NotEquals(v any) domain.Predicate {
	return domain.Predicate{Kind: domain.PredicateNotEquals, Value: v}
}

// OneOf matches answers equal to any of vs.
func OneOf(vs ...any) domain.Predicate {
	return domain.Predicate{Kind: domain.PredicateOneOf, Values: vs}
}

// Contains matches text answers containing v.
func Contains(v string) domain.Predicate {
	return domain.Predicate{Kind: domain.PredicateContains, Value: v}
}

// LessThan matches numeric answers below v.
func LessThan(v any) domain.Predicate { return domain.Predicate{Kind: domain.PredicateLT, Value: v} }

// AtMost matches numeric answers up to and including v.
func AtMost(v any) domain.Predicate { return domain.Predicate{Kind: domain.PredicateLTE, Value: v} }

// GreaterThan matches numeric answers above v.
func GreaterThan(v any) domain.Predicate { return domain.Predicate{Kind: domain.PredicateGT, Value: v} }

// AtLeast matches numeric answers from v upwards.
func AtLeast(v any) domain.Predicate { return domain.Predicate{Kind: domain.PredicateGTE, Value: v} }

// Expr matches when the expression evaluates to true.
func Expr(src string) domain.Predicate { return domain.Predicate{Kind: domain.PredicateExpr, Expr: src} }
