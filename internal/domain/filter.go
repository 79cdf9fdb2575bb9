package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ValueKind tags the shape of a filter selection.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindScalar
	KindSet
	KindDate
	KindPair
)

func (k ValueKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSet:
		return "set"
	case KindDate:
		return "date"
	case KindPair:
		return "pair"
	default:
		return "empty"
	}
}

// FilterValue is a single widget selection. The zero value is the empty sentinel.
type FilterValue struct {
	kind  ValueKind
	text  string
	label string
	set   []string
	date  time.Time
}

// Empty returns the sentinel used for untouched fields.
func Empty() FilterValue {
	return FilterValue{}
}

// Scalar wraps a plain string selection.
func Scalar(v string) FilterValue {
	return FilterValue{kind: KindScalar, text: v}
}

// Set wraps a multi-select selection.
func Set(values ...string) FilterValue {
	cp := make([]string, len(values))
	copy(cp, values)
	return FilterValue{kind: KindSet, set: cp}
}

// Date wraps a date picker selection.
func Date(t time.Time) FilterValue {
	return FilterValue{kind: KindDate, date: t}
}

// Pair wraps a {label, value} option as emitted by select widgets.
func Pair(label, value string) FilterValue {
	return FilterValue{kind: KindPair, label: label, text: value}
}

func (v FilterValue) Kind() ValueKind { return v.kind }

// Text returns the scalar or pair value component.
func (v FilterValue) Text() string { return v.text }

func (v FilterValue) Label() string { return v.label }

func (v FilterValue) Time() time.Time { return v.date }

// Values returns a copy of the set members.
func (v FilterValue) Values() []string {
	cp := make([]string, len(v.set))
	copy(cp, v.set)
	return cp
}

// IsEmpty reports whether the selection constrains nothing.
func (v FilterValue) IsEmpty() bool {
	switch v.kind {
	case KindEmpty:
		return true
	case KindSet:
		return len(v.set) == 0
	case KindDate:
		return v.date.IsZero()
	default:
		return v.text == ""
	}
}

// Equal compares two selections structurally.
func (v FilterValue) Equal(o FilterValue) bool {
	if v.kind != o.kind || v.text != o.text || v.label != o.label || !v.date.Equal(o.date) {
		return false
	}
	if len(v.set) != len(o.set) {
		return false
	}
	for i := range v.set {
		if v.set[i] != o.set[i] {
			return false
		}
	}
	return true
}

func (v FilterValue) String() string {
	switch v.kind {
	case KindScalar:
		return v.text
	case KindSet:
		return "[" + strings.Join(v.set, ", ") + "]"
	case KindDate:
		return v.date.Format(time.RFC3339)
	case KindPair:
		return fmt.Sprintf("{%s: %s}", v.label, v.text)
	default:
		return "<empty>"
	}
}

// MarshalJSON renders the selection the way the dashboard front end holds it.
func (v FilterValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		return json.Marshal(v.text)
	case KindSet:
		return json.Marshal(v.Values())
	case KindDate:
		return json.Marshal(v.date.UTC().Format(time.RFC3339))
	case KindPair:
		return json.Marshal(map[string]string{"label": v.label, "value": v.text})
	default:
		return []byte("null"), nil
	}
}

// FilterState is an immutable snapshot of all widget selections keyed by UI key.
// Every declared key is present; untouched keys hold the empty sentinel.
type FilterState struct {
	values   map[string]FilterValue
	revision uint64
}

// NewFilterState builds a snapshot from a map copy.
func NewFilterState(values map[string]FilterValue, revision uint64) FilterState {
	cp := make(map[string]FilterValue, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return FilterState{values: cp, revision: revision}
}

// Revision identifies the snapshot; every new snapshot carries a larger number.
func (s FilterState) Revision() uint64 { return s.revision }

// Lookup returns the value for key and whether the key is present at all.
func (s FilterState) Lookup(key string) (FilterValue, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Get returns the value for key or the empty sentinel.
func (s FilterState) Get(key string) FilterValue {
	return s.values[key]
}

// Keys returns the present keys in sorted order.
func (s FilterState) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a new snapshot with key set to v and the given revision.
func (s FilterState) With(key string, v FilterValue, revision uint64) FilterState {
	next := NewFilterState(s.values, revision)
	next.values[key] = v
	return next
}

// Active returns the keys holding a non-empty selection, sorted.
func (s FilterState) Active() []string {
	var keys []string
	for _, k := range s.Keys() {
		if !s.values[k].IsEmpty() {
			keys = append(keys, k)
		}
	}
	return keys
}

func (s FilterState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.values)
}
