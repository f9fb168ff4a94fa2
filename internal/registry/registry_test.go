package registry_test

import (
	"testing"

	"github.com/evalengine/core/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{ name string }

func TestRegisterCreateGet(t *testing.T) {
	r := registry.New[*widget]("widgets")
	r.Register("a", func(cfg registry.Config) (*widget, error) {
		return &widget{name: registry.GetString(cfg, "name", "default")}, nil
	})

	w, err := r.Create("a", registry.Config{"name": "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", w.name)

	_, ok := r.Get("a")
	assert.True(t, ok)
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("missing"))
}

func TestCreateUnknownReturnsErrNotFound(t *testing.T) {
	r := registry.New[*widget]("widgets")
	_, err := r.Create("missing", registry.Config{})
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestListSorted(t *testing.T) {
	r := registry.New[*widget]("widgets")
	factory := func(registry.Config) (*widget, error) { return &widget{}, nil }
	r.Register("zeta", factory)
	r.Register("alpha", factory)

	assert.Equal(t, []string{"alpha", "zeta"}, r.List())
	assert.Equal(t, 2, r.Count())
}

func TestFromMap(t *testing.T) {
	type cfg struct{ Name string }
	typed := func(c cfg) (*widget, error) { return &widget{name: c.Name}, nil }
	parser := func(m registry.Config) (cfg, error) { return cfg{Name: registry.GetString(m, "name", "")}, nil }

	legacy := registry.FromMap(typed, parser)
	w, err := legacy(registry.Config{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", w.name)
}
