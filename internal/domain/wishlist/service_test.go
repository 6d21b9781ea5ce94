package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/catalog"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/identity"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryLocal struct {
	mu     sync.Mutex
	data   map[string][]byte
	putErr error
	puts   int
}

func newMemoryLocal() *memoryLocal {
	return &memoryLocal{data: make(map[string][]byte)}
}

func (m *memoryLocal) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryLocal) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = value
	return nil
}

type memoryProfiles struct {
	mu       sync.Mutex
	lists    map[string][]string
	readErr  error
	writeErr error
}

func (m *memoryProfiles) Wishlist(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	ids, ok := m.lists[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return append([]string{}, ids...), nil
}

func (m *memoryProfiles) SaveWishlist(_ context.Context, userID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.lists[userID] = append([]string{}, ids...)
	return nil
}

func setup(t *testing.T) (*Service, *memoryLocal, *memoryProfiles) {
	cat, err := catalog.New([]catalog.Product{
		{ID: 1, Name: "Ishq Mini", Price: 1},
		{ID: 2, Name: "Dill Blink", Price: 279},
		{ID: 3, Name: "Noor e Gulab", Price: 199},
	})
	require.NoError(t, err)

	local := newMemoryLocal()
	profiles := &memoryProfiles{lists: map[string][]string{}}
	logger, _ := logtest.NewNullLogger()
	return NewService(local, profiles, cat, logger), local, profiles
}

func TestSet_ToggleIsItsOwnInverse(t *testing.T) {
	for _, start := range []Set{{}, {"1"}, {"2", "1", "3"}} {
		for _, id := range []string{"1", "4"} {
			got := start.Toggle(id).Toggle(id)
			assert.Equal(t, start.Contains(id), got.Contains(id))
		}
	}
}

func TestSet_UnionAndNormalize(t *testing.T) {
	assert.Equal(t, Set{"1", "2", "3"}, Set{"1", "2"}.Union(Set{"2", "3"}))
	assert.Equal(t, Set{"1", "2"}, Normalize([]string{"1", "", "2", "1"}))
}

func TestToggle_WritesFullSetLocally(t *testing.T) {
	svc, local, _ := setup(t)
	ctx := context.Background()

	res, err := svc.Toggle(ctx, "s1", "", "2")
	require.NoError(t, err)
	assert.True(t, res.Wishlisted)

	res, err = svc.Toggle(ctx, "s1", "", "1")
	require.NoError(t, err)
	assert.Equal(t, Set{"2", "1"}, res.Items)

	var stored []string
	require.NoError(t, json.Unmarshal(local.data["wishlist:s1"], &stored))
	assert.Equal(t, []string{"2", "1"}, stored)

	res, err = svc.Toggle(ctx, "s1", "", "2")
	require.NoError(t, err)
	assert.False(t, res.Wishlisted)

	got, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Set{"1"}, got)
}

func TestToggle_RejectsUnknownProduct(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.Toggle(context.Background(), "s1", "", "99")
	assert.ErrorIs(t, err, ErrUnknownProduct)
	_, err = svc.Toggle(context.Background(), "s1", "", "abc")
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestToggle_LocalWriteFailureIsFireAndForget(t *testing.T) {
	svc, local, _ := setup(t)
	local.putErr = errors.New("disk full")

	res, err := svc.Toggle(context.Background(), "s1", "", "1")
	require.NoError(t, err)
	assert.True(t, res.Wishlisted)
	assert.Equal(t, 1, local.puts, "no retry")
}

func TestToggle_SyncsRemoteProfile(t *testing.T) {
	svc, _, profiles := setup(t)
	ctx := context.Background()
	profiles.lists["u1"] = []string{"3"}

	_, err := svc.Toggle(ctx, "s1", "u1", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, profiles.lists["u1"])

	_, err = svc.Toggle(ctx, "s1", "u1", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, profiles.lists["u1"])
}

func TestToggle_RemoteFailureDoesNotAffectLocal(t *testing.T) {
	svc, _, profiles := setup(t)
	ctx := context.Background()
	profiles.lists["u1"] = []string{}
	profiles.writeErr = errors.New("mongo down")

	res, err := svc.Toggle(ctx, "s1", "u1", "1")
	require.NoError(t, err)
	assert.True(t, res.Wishlisted)

	got, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Set{"1"}, got)
}

func TestToggle_MissingProfileIsSkipped(t *testing.T) {
	svc, _, profiles := setup(t)

	_, err := svc.Toggle(context.Background(), "s1", "ghost", "1")
	require.NoError(t, err)
	_, exists := profiles.lists["ghost"]
	assert.False(t, exists)
}

func TestProducts_InCatalogOrder(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	for _, id := range []string{"3", "1"} {
		_, err := svc.Toggle(ctx, "s1", "", id)
		require.NoError(t, err)
	}

	products, err := svc.Products(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 1, products[0].ID)
	assert.Equal(t, 3, products[1].ID)
}

func TestOnIdentityChanged_MergesRemote(t *testing.T) {
	svc, _, profiles := setup(t)
	ctx := context.Background()
	profiles.lists["u1"] = []string{"2", "3"}

	_, err := svc.Toggle(ctx, "s1", "", "3")
	require.NoError(t, err)

	svc.OnIdentityChanged(identity.Event{SessionID: "s1", Identity: &identity.Identity{UID: "u1"}})

	got, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Set{"3", "2"}, got)

	svc.OnIdentityChanged(identity.Event{SessionID: "s1"})
	got, err = svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Set{"3", "2"}, got, "sign-out leaves the local set alone")
}

func TestGet_CorruptLocalValueReadsEmpty(t *testing.T) {
	svc, local, _ := setup(t)
	local.data["wishlist:s1"] = []byte("{not json")

	got, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
