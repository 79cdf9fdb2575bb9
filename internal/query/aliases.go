package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"InsightsDashboard/internal/domain"
)

// Ignore is the alias target for UI keys that carry no filter meaning (e.g. option labels).
const Ignore = "-"

// ErrInvalidAlias is returned when an alias table entry cannot be honored.
var ErrInvalidAlias = errors.New("invalid filter alias")

type aliasTarget struct {
	field  domain.Field
	ignore bool
}

// AliasTable maps UI filter keys to backend field names. It is validated once at construction.
type AliasTable struct {
	entries map[string]aliasTarget
}

// DefaultAliases declares the keys emitted by the dashboard widgets.
// Each filterable field answers to its own name, its "[value]" form and its "[]" array form;
// "[label]" forms are ignored.
func DefaultAliases() map[string]string {
	aliases := map[string]string{
		"endYear": string(domain.FieldEndYear),
		"topics":  string(domain.FieldTopic),
	}
	for _, f := range domain.FilterableFields {
		name := string(f)
		aliases[name] = name
		aliases[name+"[value]"] = name
		aliases[name+"[]"] = name
		aliases[name+"[label]"] = Ignore
	}
	aliases["topics[]"] = string(domain.FieldTopic)
	aliases["topics[value]"] = string(domain.FieldTopic)
	aliases["topics[label]"] = Ignore
	return aliases
}

// NewAliasTable validates the default aliases merged with extra.
// Extra entries may add keys but may not retarget a default key.
func NewAliasTable(extra map[string]string) (*AliasTable, error) {
	table := &AliasTable{entries: map[string]aliasTarget{}}

	if err := table.add(DefaultAliases(), false); err != nil {
		return nil, err
	}
	if err := table.add(extra, true); err != nil {
		return nil, err
	}
	return table, nil
}

// MustAliasTable is NewAliasTable for the built-in table only.
func MustAliasTable() *AliasTable {
	table, err := NewAliasTable(nil)
	if err != nil {
		panic(err)
	}
	return table
}

func (t *AliasTable) add(aliases map[string]string, guard bool) error {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		target := strings.TrimSpace(aliases[key])
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: empty key for target %q", ErrInvalidAlias, target)
		}

		next := aliasTarget{ignore: target == Ignore}
		if !next.ignore {
			next.field = domain.Field(target)
			if !next.field.IsFilterable() {
				return fmt.Errorf("%w: %s -> %q is not a filterable field", ErrInvalidAlias, key, target)
			}
		}

		if prev, ok := t.entries[key]; ok && guard && prev != next {
			return fmt.Errorf("%w: %s is already mapped", ErrInvalidAlias, key)
		}
		t.entries[key] = next
	}
	return nil
}

// Resolve returns the backend field for key. ok is false for unknown or ignored keys.
func (t *AliasTable) Resolve(key string) (domain.Field, bool) {
	target, found := t.entries[key]
	if !found || target.ignore {
		return "", false
	}
	return target.field, true
}

// Known reports whether key is declared, including ignored keys.
func (t *AliasTable) Known(key string) bool {
	_, ok := t.entries[key]
	return ok
}

// Canonical reports whether key is the plain field name itself.
func (t *AliasTable) Canonical(key string) bool {
	f, ok := t.Resolve(key)
	return ok && string(f) == key
}
