package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightsDashboard/internal/domain"
)

func TestNewModelDeclaresEveryKeyAsEmpty(t *testing.T) {
	t.Parallel()

	m := NewModel(nil)
	state := m.Get()

	for _, key := range DefaultKeys {
		v, ok := state.Lookup(key)
		require.True(t, ok, "key %s must be present", key)
		assert.True(t, v.IsEmpty(), "key %s must hold the empty sentinel", key)
	}
	assert.Empty(t, state.Active())
}

func TestSetChangesOnlyOneKey(t *testing.T) {
	t.Parallel()

	m := NewModel(nil)
	before := m.Get()
	m.Set("region", domain.Scalar("Asia"))
	after := m.Set("sector", domain.Pair("Energy", "Energy"))

	assert.Equal(t, "Asia", after.Get("region").Text())
	assert.Equal(t, domain.KindPair, after.Get("sector").Kind())
	assert.Equal(t, []string{"region", "sector"}, after.Active())
	assert.True(t, before.Get("region").IsEmpty(), "earlier snapshot must not change")
	assert.Greater(t, after.Revision(), before.Revision())
}

func TestSetSameValueStillProducesNewSnapshot(t *testing.T) {
	t.Parallel()

	m := NewModel(nil)
	first := m.Set("topic", domain.Scalar("oil"))
	second := m.Set("topic", domain.Scalar("oil"))

	assert.NotEqual(t, first.Revision(), second.Revision())
	assert.True(t, first.Get("topic").Equal(second.Get("topic")))
}

func TestSetAcceptsUndeclaredKeys(t *testing.T) {
	t.Parallel()

	m := NewModel([]string{"sector"})
	state := m.Set("swot", domain.Scalar("strength"))

	v, ok := state.Lookup("swot")
	require.True(t, ok)
	assert.Equal(t, "strength", v.Text())
}

func TestResetReturnsCanonicalEmptyState(t *testing.T) {
	t.Parallel()

	m := NewModel(nil)
	m.Set("country", domain.Scalar("India"))
	m.Set("swot", domain.Scalar("threat"))
	dirty := m.Get()

	state := m.Reset()

	assert.Empty(t, state.Active())
	assert.ElementsMatch(t, DefaultKeys, state.Keys())
	assert.Greater(t, state.Revision(), dirty.Revision())
	_, ok := state.Lookup("swot")
	assert.False(t, ok, "reset drops undeclared keys")
}
