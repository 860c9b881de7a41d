package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContent(t *testing.T, id string, modifies ...string) *Content {
	c, err := NewContent(ContentParams{ID: id, Label: "label-" + id, Name: "name-" + id, Type: "yum", ModifiedProductIDs: modifies})
	require.NoError(t, err)
	return c
}

func TestNewProduct_Validation(t *testing.T) {
	_, err := NewProduct(Params{Name: "x"})
	assert.ErrorIs(t, err, ErrProductIDRequired)

	_, err = NewProduct(Params{ID: "p"})
	assert.ErrorIs(t, err, ErrProductNameRequired)

	p, err := NewProduct(Params{ID: "p", Name: "P"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Multiplier())
	assert.NotNil(t, p.Attributes())
}

func TestProduct_DefensiveCopies(t *testing.T) {
	attrs := map[string]string{AttrSupportLevel: "standard"}
	provided := []string{"37060"}
	p, err := NewProduct(Params{ID: "p", Name: "P", Attributes: attrs, ProvidedProductIDs: provided})
	require.NoError(t, err)

	attrs[AttrSupportLevel] = "premium"
	provided[0] = "other"
	v, _ := p.Attribute(AttrSupportLevel)
	assert.Equal(t, "standard", v)
	assert.Equal(t, []string{"37060"}, p.ProvidedProductIDs())

	got := p.Attributes()
	got["new"] = "x"
	_, ok := p.Attribute("new")
	assert.False(t, ok)
}

func TestProduct_Modifies(t *testing.T) {
	p1, err := NewProduct(Params{
		ID:      "P1",
		Name:    "Modifier",
		Content: []ProductContent{{Content: newContent(t, "C1", "P2"), Enabled: true}},
	})
	require.NoError(t, err)

	assert.True(t, p1.Modifies("P2"))
	assert.False(t, p1.Modifies("P3"))
	assert.True(t, p1.ModifiesAny([]string{"P3", "P2"}))
	assert.False(t, p1.ModifiesAny(nil))
}

func TestProduct_EntityVersion(t *testing.T) {
	build := func(attrs map[string]string, provided []string, content ...ProductContent) *Product {
		p, err := NewProduct(Params{ID: "P", Name: "Prod", Attributes: attrs, ProvidedProductIDs: provided, Content: content})
		require.NoError(t, err)
		return p
	}

	c1 := newContent(t, "C1")
	c2 := newContent(t, "C2", "P9")

	base := build(map[string]string{"a": "1", "b": "2"}, []string{"x", "y"},
		ProductContent{Content: c1, Enabled: true}, ProductContent{Content: c2})

	t.Run("independent of ordering and identity", func(t *testing.T) {
		other := build(map[string]string{"b": "2", "a": "1"}, []string{"y", "x"},
			ProductContent{Content: c2}, ProductContent{Content: c1, Enabled: true})
		require.NoError(t, other.SetUUID("uuid-2"))
		assert.Equal(t, base.EntityVersion(), other.EntityVersion())
	})

	t.Run("changes with semantic fields", func(t *testing.T) {
		changedAttr := build(map[string]string{"a": "1", "b": "3"}, []string{"x", "y"},
			ProductContent{Content: c1, Enabled: true}, ProductContent{Content: c2})
		assert.NotEqual(t, base.EntityVersion(), changedAttr.EntityVersion())

		changedEnabled := build(map[string]string{"a": "1", "b": "2"}, []string{"x", "y"},
			ProductContent{Content: c1}, ProductContent{Content: c2})
		assert.NotEqual(t, base.EntityVersion(), changedEnabled.EntityVersion())
	})

	t.Run("field boundaries are unambiguous", func(t *testing.T) {
		a := build(map[string]string{"ab": "c"}, nil)
		b := build(map[string]string{"a": "bc"}, nil)
		assert.NotEqual(t, a.EntityVersion(), b.EntityVersion())
	})
}

func TestContent_EntityVersion(t *testing.T) {
	a := newContent(t, "C1", "P1", "P2")
	b := newContent(t, "C1", "P2", "P1", "P1")
	require.NoError(t, b.SetUUID("other"))
	assert.Equal(t, a.EntityVersion(), b.EntityVersion())
	assert.Equal(t, []string{"P2", "P1"}, b.ModifiedProductIDs())

	params := a.Params()
	params.Arches = "x86_64"
	c, err := NewContent(params)
	require.NoError(t, err)
	assert.NotEqual(t, a.EntityVersion(), c.EntityVersion())
}

func TestNewContent_Validation(t *testing.T) {
	_, err := NewContent(ContentParams{Label: "l"})
	assert.ErrorIs(t, err, ErrContentIDRequired)
	_, err = NewContent(ContentParams{ID: "c"})
	assert.ErrorIs(t, err, ErrContentLabelRequired)
}
