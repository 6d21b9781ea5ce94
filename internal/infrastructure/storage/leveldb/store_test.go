package leveldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)

	_, found, err := store.Get("wishlist:s1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put("wishlist:s1", []byte(`["1","3"]`)))
	require.NoError(t, store.Put("wishlist:s1", []byte(`["3"]`)))
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	value, found, err := reopened.Get("wishlist:s1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["3"]`, string(value))

	require.NoError(t, reopened.Delete("wishlist:s1"))
	_, found, err = reopened.Get("wishlist:s1")
	require.NoError(t, err)
	assert.False(t, found)
}
