package query

import "strings"

// Kind tags a node in a query expression tree.
type Kind int

const (
	// KindAll matches every document; the empty constraint.
	KindAll Kind = iota
	// KindAnd matches when all children match.
	KindAnd
	// KindOr matches when at least one child matches.
	KindOr
	// KindFieldEq matches when the field equals the value exactly.
	KindFieldEq
	// KindFieldMatch matches when the field contains the value as a
	// case-insensitive substring.
	KindFieldMatch
	// KindFieldIsNull matches when the field is null or absent.
	KindFieldIsNull
	// KindFieldIn matches when the field equals any of the listed values.
	KindFieldIn
)

// Expr is a store-agnostic filter predicate over a collection. The zero
// value is KindAll, which constrains nothing. Repositories translate the
// tree into their own query language; the in-memory store evaluates it
// directly via Matches.
type Expr struct {
	Kind     Kind
	Field    string
	Value    string
	Values   []string
	Children []Expr
}

// All returns the empty constraint.
func All() Expr { return Expr{Kind: KindAll} }

// And conjoins the given expressions, flattening trivial cases.
func And(children ...Expr) Expr {
	kept := make([]Expr, 0, len(children))
	for _, c := range children {
		if c.Kind == KindAll {
			continue
		}
		kept = append(kept, c)
	}
	switch len(kept) {
	case 0:
		return All()
	case 1:
		return kept[0]
	}
	return Expr{Kind: KindAnd, Children: kept}
}

// Or disjoins the given expressions.
func Or(children ...Expr) Expr {
	if len(children) == 1 {
		return children[0]
	}
	return Expr{Kind: KindOr, Children: children}
}

// Eq matches documents whose field equals value.
func Eq(field, value string) Expr {
	return Expr{Kind: KindFieldEq, Field: field, Value: value}
}

// Match matches documents whose field contains value, case-insensitively.
func Match(field, value string) Expr {
	return Expr{Kind: KindFieldMatch, Field: field, Value: value}
}

// IsNull matches documents whose field is null or missing.
func IsNull(field string) Expr {
	return Expr{Kind: KindFieldIsNull, Field: field}
}

// In matches documents whose field equals any of the given values. An
// empty list matches nothing.
func In(field string, values []string) Expr {
	return Expr{Kind: KindFieldIn, Field: field, Values: values}
}

// Matches evaluates the expression against a document represented as a
// field map. Absent fields are treated as null.
func (e Expr) Matches(doc map[string]any) bool {
	switch e.Kind {
	case KindAll:
		return true
	case KindAnd:
		for _, c := range e.Children {
			if !c.Matches(doc) {
				return false
			}
		}
		return true
	case KindOr:
		for _, c := range e.Children {
			if c.Matches(doc) {
				return true
			}
		}
		return false
	case KindFieldEq:
		val, ok := stringField(doc, e.Field)
		return ok && val == e.Value
	case KindFieldMatch:
		val, ok := stringField(doc, e.Field)
		return ok && strings.Contains(strings.ToLower(val), strings.ToLower(e.Value))
	case KindFieldIsNull:
		val, present := doc[e.Field]
		if !present || val == nil {
			return true
		}
		if p, ok := val.(*string); ok {
			return p == nil
		}
		return false
	case KindFieldIn:
		val, ok := stringField(doc, e.Field)
		if !ok {
			return false
		}
		for _, candidate := range e.Values {
			if val == candidate {
				return true
			}
		}
		return false
	}
	return false
}

func stringField(doc map[string]any, field string) (string, bool) {
	raw, present := doc[field]
	if !present || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}
