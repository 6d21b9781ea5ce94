package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	_, err := New([]Product{
		{ID: 1, Name: "a", Price: 10},
		{ID: 1, Name: "b", Price: 20},
	})
	assert.ErrorIs(t, err, ErrDuplicateProduct)
}

func TestNew_RejectsNonPositivePrice(t *testing.T) {
	_, err := New([]Product{{ID: 1, Name: "a", Price: 0}})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestCatalog_Find(t *testing.T) {
	c, err := New(sampleProducts())
	require.NoError(t, err)

	p, err := c.Find(3)
	require.NoError(t, err)
	assert.Equal(t, "Noor e Gulab", p.Name)

	_, err = c.Find(42)
	assert.ErrorIs(t, err, ErrProductNotFound)

	p, err = c.FindString("2")
	require.NoError(t, err)
	assert.Equal(t, 2, p.ID)

	_, err = c.FindString("two")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	c, err := New(sampleProducts())
	require.NoError(t, err)

	all := c.All()
	all[0].Name = "changed"

	p, err := c.Find(1)
	require.NoError(t, err)
	assert.Equal(t, "Ishq Mini", p.Name)
}

func TestDefault(t *testing.T) {
	fsys := fstest.MapFS{
		"products/IshqMini/2.png":    {Data: []byte("x")},
		"products/IshqMini/1.jpg":    {Data: []byte("x")},
		"products/IshqMini/notes.md": {Data: []byte("x")},
	}

	c, err := Default(NewImageResolver(fsys, "/assets/"))
	require.NoError(t, err)
	assert.Equal(t, 6, c.Len())
	assert.Equal(t, []string{"All", "Necklaces"}, c.Categories())

	ishq, err := c.Find(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"/assets/products/IshqMini/1.jpg", "/assets/products/IshqMini/2.png"}, ishq.Images)
	assert.True(t, ishq.Bestseller)

	envelope, err := c.Find(4)
	require.NoError(t, err)
	assert.Equal(t, int64(499), envelope.Price)
	assert.Empty(t, envelope.Images)
	assert.False(t, envelope.Bestseller)
}

func TestDefault_NilResolver(t *testing.T) {
	c, err := Default(nil)
	require.NoError(t, err)
	for _, p := range c.All() {
		assert.Empty(t, p.Images)
		assert.Greater(t, p.Price, int64(0))
	}
}
