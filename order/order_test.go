package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_FlatOrder(t *testing.T) {
	o, err := Build([]Decl{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	require.NoError(t, err)
	assert.Equal(t, 3, o.Len())

	a, ok := o.Lookup("a")
	require.True(t, ok)
	b, ok := o.Lookup("b")
	require.True(t, ok)
	c, ok := o.Lookup("c")
	require.True(t, ok)

	assert.Same(t, a, o.Root())
	assert.Same(t, b, a.Next())
	assert.Same(t, c, b.Next())
	assert.Nil(t, c.Next())

	assert.Greater(t, a.Position(), b.Position())
	assert.Greater(t, b.Position(), c.Position())
}

func TestBuild_Hierarchical(t *testing.T) {
	o, err := Build([]Decl{
		{ID: "top", Nested: []Decl{{ID: "inner1"}, {ID: "inner2"}}},
		{ID: "sibling"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, o.Len())

	top, ok := o.Lookup("top")
	require.True(t, ok)
	inner1, ok := o.Lookup("inner1")
	require.True(t, ok)
	inner2, ok := o.Lookup("inner2")
	require.True(t, ok)
	sibling, ok := o.Lookup("sibling")
	require.True(t, ok)

	assert.True(t, top.Hierarchical())
	assert.Same(t, inner1, top.Nested())
	assert.Same(t, inner2, inner1.Next())
	assert.Same(t, sibling, top.Next())

	assert.Greater(t, top.Position(), inner1.Position())
	assert.Greater(t, inner1.Position(), inner2.Position())
	assert.Greater(t, top.Position(), sibling.Position())
}

func TestBuild_Artificial(t *testing.T) {
	o, err := Build([]Decl{
		{Nested: []Decl{{ID: "x"}}},
	})
	require.NoError(t, err)

	root := o.Root()
	assert.True(t, root.Artificial())
	assert.Regexp(t, `^\$artificial#\d+$`, root.ID())
}

func TestBuild_DuplicateIdentifier(t *testing.T) {
	_, err := Build([]Decl{{ID: "a"}, {ID: "a"}})
	assert.Error(t, err)
}

func TestOrder_Path(t *testing.T) {
	o, err := Build([]Decl{
		{ID: "top", Nested: []Decl{{ID: "inner"}}},
	})
	require.NoError(t, err)

	top, _ := o.Lookup("top")
	inner, _ := o.Lookup("inner")

	assert.Equal(t, []int{top.Position()}, o.Path(top))
	assert.Equal(t, []int{top.Position(), inner.Position()}, o.Path(inner))

	path, err := o.PathToID("inner")
	require.NoError(t, err)
	assert.Equal(t, []int{top.Position(), inner.Position()}, path)
}

func TestOrder_PathToID_Unknown(t *testing.T) {
	o, err := Build([]Decl{{ID: "a"}})
	require.NoError(t, err)

	_, err = o.PathToID("nonexistent")
	assert.Error(t, err)
}

func TestOrder_Empty(t *testing.T) {
	o, err := Build(nil)
	require.NoError(t, err)
	assert.True(t, o.Empty())
	assert.Nil(t, o.Root())
}

func TestOrder_MustLookup_Panics(t *testing.T) {
	o, err := Build([]Decl{{ID: "a"}})
	require.NoError(t, err)

	assert.Panics(t, func() {
		o.MustLookup("missing")
	})
}
