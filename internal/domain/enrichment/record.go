package enrichment

import (
	"github.com/shopspring/decimal"
)

// Record is one raw row returned by the remote object-relational API.
// The XML-RPC transport decodes rows into generic maps; an unset optional
// field arrives either missing or as boolean false, which is the platform's
// null marker. The accessors below normalize both cases to zero values so
// the rest of the pipeline only sees plain scalars.
type Record map[string]any

// Relation is the wire representation of a relational field: an [id, label]
// pair, or false when the relation is unset.
type Relation struct {
	ID    int64
	Label string
}

// IsZero reports whether the relation is unset.
func (r Relation) IsZero() bool { return r.ID == 0 && r.Label == "" }

// RelationOf decodes the raw [id, label] pair of a relational field.
// Anything that is not a pair with a numeric first element (notably the
// false null marker) decodes to the zero Relation.
func RelationOf(v any) Relation {
	pair, ok := v.([]any)
	if !ok || len(pair) < 2 {
		return Relation{}
	}
	id, ok := asInt64(pair[0])
	if !ok {
		return Relation{}
	}
	label, _ := pair[1].(string)
	return Relation{ID: id, Label: label}
}

// Str returns the field as a string, or "" when it is absent, null or not
// text.
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the field as an integer, or 0 when it is absent, null or not
// numeric.
func (r Record) Int(key string) int64 {
	n, _ := asInt64(r[key])
	return n
}

// Float returns the field as a float, or 0 when it is absent, null or not
// numeric.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Decimal returns a numeric field as a decimal, defaulting to zero.
func (r Record) Decimal(key string) decimal.Decimal {
	if n, ok := asInt64(r[key]); ok {
		return decimal.NewFromInt(n)
	}
	return decimal.NewFromFloat(r.Float(key))
}

// Rel returns the field decoded as a relation pair.
func (r Record) Rel(key string) Relation {
	return RelationOf(r[key])
}

// asInt64 coerces the integer types the XML-RPC decoder may produce.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
