// Package filter describes catalog predicates independently of the store.
package filter

import (
	"regexp"
	"strings"

	"parts-catalog/internal/model"
)

// Kind tags the variant held by an Expr.
type Kind int

const (
	// KindAll matches every product.
	KindAll Kind = iota
	// KindText is a case-insensitive substring match over TextFields.
	KindText
	// KindCategoryIn is set membership on the product type.
	KindCategoryIn
	// KindAnd is a conjunction of child expressions.
	KindAnd
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindText:
		return "text"
	case KindCategoryIn:
		return "category_in"
	case KindAnd:
		return "and"
	default:
		return "unknown"
	}
}

// Fields searched by Text, in store field names.
const (
	FieldName  = "name"
	FieldCode  = "code"
	FieldBrand = "brand"
	FieldType  = "type"
)

// TextFields are OR-ed together by a Text expression.
var TextFields = []string{FieldName, FieldCode, FieldBrand}

// Expr is an immutable predicate over products.
type Expr struct {
	kind     Kind
	text     string
	labels   []string
	children []Expr
}

// All matches the whole catalog.
func All() Expr { return Expr{kind: KindAll} }

// Text matches products whose name, code or brand contains query, ignoring case.
// An empty query matches everything.
func Text(query string) Expr {
	if query == "" {
		return All()
	}
	return Expr{kind: KindText, text: query}
}

// CategoryIn matches products whose type is one of labels.
// model.Uncategorized matches products without a type. No labels means no restriction.
func CategoryIn(labels ...string) Expr {
	if len(labels) == 0 {
		return All()
	}
	cp := make([]string, len(labels))
	copy(cp, labels)
	return Expr{kind: KindCategoryIn, labels: cp}
}

// And combines expressions; All operands are dropped and nested conjunctions flattened.
func And(exprs ...Expr) Expr {
	children := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		switch e.kind {
		case KindAll:
			continue
		case KindAnd:
			children = append(children, e.children...)
		default:
			children = append(children, e)
		}
	}
	switch len(children) {
	case 0:
		return All()
	case 1:
		return children[0]
	}
	return Expr{kind: KindAnd, children: children}
}

func (e Expr) Kind() Kind { return e.kind }

// Query returns the text of a Text expression.
func (e Expr) Query() string { return e.text }

// Labels returns the categories of a CategoryIn expression.
func (e Expr) Labels() []string { return e.labels }

// Children returns the operands of an And expression.
func (e Expr) Children() []Expr { return e.children }

// IsAll reports whether the expression places no restriction.
func (e Expr) IsAll() bool { return e.kind == KindAll }

// Pattern is the escaped regular expression used for a Text match.
func (e Expr) Pattern() string { return regexp.QuoteMeta(e.text) }

// Without returns the expression with every operand of the given kind removed.
func (e Expr) Without(kind Kind) Expr {
	switch e.kind {
	case kind:
		return All()
	case KindAnd:
		kept := make([]Expr, 0, len(e.children))
		for _, c := range e.children {
			kept = append(kept, c.Without(kind))
		}
		return And(kept...)
	default:
		return e
	}
}

// Matches evaluates the expression against a product held in memory.
func (e Expr) Matches(p model.Product) bool {
	switch e.kind {
	case KindAll:
		return true
	case KindText:
		needle := strings.ToLower(e.text)
		for _, v := range []string{p.Name, p.Code, p.Brand} {
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	case KindCategoryIn:
		category := p.Category()
		for _, l := range e.labels {
			if l == category {
				return true
			}
		}
		return false
	case KindAnd:
		for _, c := range e.children {
			if !c.Matches(p) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (e Expr) String() string {
	switch e.kind {
	case KindText:
		return "text(" + e.text + ")"
	case KindCategoryIn:
		return "category_in(" + strings.Join(e.labels, ",") + ")"
	case KindAnd:
		parts := make([]string, 0, len(e.children))
		for _, c := range e.children {
			parts = append(parts, c.String())
		}
		return "and(" + strings.Join(parts, ",") + ")"
	default:
		return e.kind.String()
	}
}
