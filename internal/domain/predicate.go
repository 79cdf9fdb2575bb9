package domain

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidDateFilter marks an end-year selection that cannot be read as a date.
	ErrInvalidDateFilter = errors.New("invalid date filter")
	// ErrMultiValueUnsupported marks a multi-select selection reduced to scalar equality.
	ErrMultiValueUnsupported = errors.New("multi-value filter unsupported")
)

// MatcherKind selects how a predicate clause compares a record field.
type MatcherKind int

const (
	MatchText MatcherKind = iota
	MatchYear
	MatchAny
	MatchInvalid
)

// Matcher is one equality clause of a predicate.
type Matcher struct {
	Kind   MatcherKind
	Text   string
	Year   int
	Values []string
	Err    error
}

// TextMatcher matches records whose field equals v.
func TextMatcher(v string) Matcher {
	return Matcher{Kind: MatchText, Text: v}
}

// YearMatcher matches records whose end year equals y.
func YearMatcher(y int) Matcher {
	return Matcher{Kind: MatchYear, Year: y}
}

// AnyMatcher matches records whose field equals one of values.
func AnyMatcher(values ...string) Matcher {
	cp := make([]string, len(values))
	copy(cp, values)
	return Matcher{Kind: MatchAny, Values: cp}
}

// InvalidMatcher never matches; err records why the clause is unusable.
func InvalidMatcher(err error) Matcher {
	return Matcher{Kind: MatchInvalid, Err: err}
}

// Valid reports whether the clause can match anything.
func (m Matcher) Valid() bool {
	return m.Kind != MatchInvalid
}

// Matches evaluates the clause against a field value in string form.
func (m Matcher) Matches(value string) bool {
	switch m.Kind {
	case MatchText:
		return value == m.Text
	case MatchYear:
		return value != "" && value == strconv.Itoa(m.Year)
	case MatchAny:
		for _, v := range m.Values {
			if v == value {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// String renders the clause value as sent over the wire.
func (m Matcher) String() string {
	switch m.Kind {
	case MatchText:
		return m.Text
	case MatchYear:
		return strconv.Itoa(m.Year)
	case MatchAny:
		return "any(" + strings.Join(m.Values, ",") + ")"
	default:
		return "invalid"
	}
}

// Predicate maps backend fields to equality clauses; absent fields are unconstrained.
type Predicate map[Field]Matcher

// Fields returns the constrained fields sorted by name.
func (p Predicate) Fields() []Field {
	fields := make([]Field, 0, len(p))
	for f := range p {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Matches reports whether r satisfies every clause.
func (p Predicate) Matches(r Record) bool {
	for field, m := range p {
		if !m.Matches(r.Value(field)) {
			return false
		}
	}
	return true
}

// Satisfiable is false when any clause is invalid.
func (p Predicate) Satisfiable() bool {
	for _, m := range p {
		if !m.Valid() {
			return false
		}
	}
	return true
}
