package cart

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/catalog"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/notification"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc    *Service
	popups *notification.Service
	mr     *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{
			FreeShippingThreshold: 599,
			ShippingFee:           50,
			CartTTL:               24 * time.Hour,
			AddedToCartTTL:        2 * time.Second,
		},
	}
}

func setup(t *testing.T) testEnv {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cat, err := catalog.New([]catalog.Product{
		{ID: 1, Name: "Pendant", Price: 299, InStock: true},
		{ID: 2, Name: "Envelope", Price: 499, InStock: true},
		{ID: 3, Name: "Sold out", Price: 100, InStock: false},
	})
	require.NoError(t, err)

	logger, _ := logtest.NewNullLogger()
	popups := notification.NewService(client, 3*time.Second)
	return testEnv{
		svc:    NewService(client, cat, popups, testConfig(), logger),
		popups: popups,
		mr:     mr,
	}
}

func TestService_AddToCartShowsPopup(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	resp, err := env.svc.AddToCart(ctx, "s1", &AddToCartRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(598), resp.Totals.Subtotal)
	assert.Equal(t, int64(50), resp.Totals.Shipping)
	assert.Equal(t, int64(648), resp.Totals.Total)

	msg, err := env.popups.Current(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "Added to cart!", msg.Text)
	assert.Equal(t, 2*time.Second, env.mr.TTL("popup:session:s1"))
}

func TestService_AddDefaultsQuantityToOne(t *testing.T) {
	env := setup(t)

	resp, err := env.svc.AddToCart(context.Background(), "s1", &AddToCartRequest{ProductID: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Items[0].Quantity)
}

func TestService_AddRejectsUnknownAndOutOfStock(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.svc.AddToCart(ctx, "s1", &AddToCartRequest{ProductID: 99, Quantity: 1})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = env.svc.AddToCart(ctx, "s1", &AddToCartRequest{ProductID: 3, Quantity: 1})
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = env.svc.AddToCart(ctx, "s1", &AddToCartRequest{ProductID: 1, Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestService_UpdateAndRemove(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.svc.AddToCart(ctx, "s1", &AddToCartRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	_, err = env.svc.AddToCart(ctx, "s1", &AddToCartRequest{ProductID: 2, Quantity: 1})
	require.NoError(t, err)

	three := 3
	resp, err := env.svc.UpdateCartItem(ctx, "s1", 1, &UpdateCartItemRequest{Quantity: &three})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.Equal(t, int64(897), resp.Items[0].LineTotal)

	zero := 0
	resp, err = env.svc.UpdateCartItem(ctx, "s1", 1, &UpdateCartItemRequest{Quantity: &zero})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].ProductID)

	resp, err = env.svc.RemoveFromCart(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestService_RejectsQuantityPastLimit(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.svc.AddToCart(ctx, "s1", &AddToCartRequest{ProductID: 1, Quantity: 46116860184273879})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = env.svc.AddToCart(ctx, "s1", &AddToCartRequest{ProductID: 1, Quantity: MaxLineQuantity})
	require.NoError(t, err)
	_, err = env.svc.AddToCart(ctx, "s1", &AddToCartRequest{ProductID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	huge := MaxLineQuantity + 1
	_, err = env.svc.UpdateCartItem(ctx, "s1", 1, &UpdateCartItemRequest{Quantity: &huge})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	resp, err := env.svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, MaxLineQuantity, resp.Items[0].Quantity)
	assert.Equal(t, int64(299*MaxLineQuantity), resp.Totals.Subtotal)
}

func TestService_PersistsIDsWithTTL(t *testing.T) {
	env := setup(t)

	_, err := env.svc.AddToCart(context.Background(), "s1", &AddToCartRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	raw, err := env.mr.Get("cart:session:s1")
	require.NoError(t, err)

	var stored SessionCart
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 1, stored.Items[0].ProductID)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, 24*time.Hour, env.mr.TTL("cart:session:s1"))
}

func TestService_DropsUnknownProductsOnLoad(t *testing.T) {
	env := setup(t)
	env.mr.Set("cart:session:s1", `{"session_id":"s1","items":[{"product_id":42,"quantity":1},{"product_id":2,"quantity":1}]}`)

	c, err := env.svc.Load(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Product.ID)
}

func TestService_ClearCart(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.svc.AddToCart(ctx, "s1", &AddToCartRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, env.svc.ClearCart(ctx, "s1"))

	resp, err := env.svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.False(t, env.mr.Exists("cart:session:s1"))
}

func TestService_ConcurrentAddsAreNotLost(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = env.svc.AddToCart(ctx, "s1", &AddToCartRequest{ProductID: 1, Quantity: 1})
		}()
	}
	wg.Wait()

	c, err := env.svc.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.LessOrEqual(t, c.Lines[0].Quantity, 4)
	assert.GreaterOrEqual(t, c.Lines[0].Quantity, 1)
}
