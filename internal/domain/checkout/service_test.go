// internal/domain/checkout/service_test.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/cart"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/catalog"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/identity"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/notification"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/payment"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/metrics"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/validation"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "gateway-secret"

type fakeGateway struct {
	secret  string
	calls   int
	amounts []int64
	err     error
}

func (g *fakeGateway) KeyID() string   { return "rzp_test_key" }
func (g *fakeGateway) CanVerify() bool { return g.secret != "" }

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string, _ map[string]string) (*payment.RazorpayOrder, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	g.amounts = append(g.amounts, amount)
	return &payment.RazorpayOrder{ID: fmt.Sprintf("order_gw_%s_%d", receipt[:8], g.calls), Amount: amount, Currency: currency, Receipt: receipt}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return payment.Sign(g.secret, orderID, paymentID) == signature
}

type fakeOrders struct {
	placed []*order.Record
	err    error
}

func (o *fakeOrders) Place(_ context.Context, rec *order.Record) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	o.placed = append(o.placed, rec)
	return "ord_1", nil
}

type fakeEvents struct {
	events []*order.PlacedEvent
	err    error
}

func (e *fakeEvents) PublishOrderPlaced(_ context.Context, ev *order.PlacedEvent) error {
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, ev)
	return nil
}

type testEnv struct {
	svc     *Service
	carts   *cart.Service
	popups  *notification.Service
	gateway *fakeGateway
	orders  *fakeOrders
	events  *fakeEvents
	metrics *metrics.Business
	mr      *miniredis.Miniredis
}

var shopper = &identity.Identity{UID: "user-1", Email: "asha@example.com"}

func setup(t *testing.T, requireState bool) testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cat, err := catalog.New([]catalog.Product{
		{ID: 1, Name: "Ishq Mini", Price: 299, InStock: true},
		{ID: 2, Name: "Pyaar Envelope", Price: 499, InStock: true},
	})
	require.NoError(t, err)

	cfg := &config.Config{Store: config.StoreConfig{
		Currency:              "INR",
		MerchantName:          "ZeLie",
		PaymentDescription:    "Order Payment",
		ThemeColor:            "#503e28",
		FreeShippingThreshold: 599,
		ShippingFee:           50,
		RequireState:          requireState,
		CartTTL:               24 * time.Hour,
		CheckoutTTL:           time.Hour,
		PopupTTL:              3 * time.Second,
		AddedToCartTTL:        2 * time.Second,
	}}

	logger, _ := logtest.NewNullLogger()
	popups := notification.NewService(client, cfg.Store.PopupTTL)
	carts := cart.NewService(client, cat, popups, cfg, logger)
	env := testEnv{
		carts:   carts,
		popups:  popups,
		gateway: &fakeGateway{secret: testSecret},
		orders:  &fakeOrders{},
		events:  &fakeEvents{},
		metrics: metrics.NewBusiness(prometheus.NewRegistry(), "test"),
		mr:      mr,
	}
	env.svc = NewService(Dependencies{
		Redis:    client,
		Carts:    carts,
		Gateway:  env.gateway,
		Orders:   env.orders,
		Events:   env.events,
		Notifier: popups,
		Forms:    NewFormValidator(validation.New(), requireState),
		Metrics:  env.metrics,
	}, cfg, logger)
	return env
}

func validForm() Form {
	return Form{
		Mobile:     "9876543210",
		Email:      "asha@example.com",
		FirstName:  "Asha",
		LastName:   "Rao",
		Address:    "12 Hill Road",
		City:       "Pune",
		State:      "MH",
		PostalCode: "411001",
		Country:    "India",
	}
}

func (env testEnv) fillCart(t *testing.T, sessionID string) {
	t.Helper()
	_, err := env.carts.AddToCart(context.Background(), sessionID, &cart.AddToCartRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
}

func (env testEnv) awaitingPayment(t *testing.T, sessionID string) *Session {
	t.Helper()
	env.fillCart(t, sessionID)
	sess, err := env.svc.Open(context.Background(), sessionID, shopper)
	require.NoError(t, err)
	sess, err = env.svc.Submit(context.Background(), sessionID, sess.ID, validForm())
	require.NoError(t, err)
	require.Equal(t, StateAwaitingPayment, sess.State)
	return sess
}

func callbackFor(sess *Session, paymentID string) PaymentCallback {
	return PaymentCallback{
		PaymentID:      paymentID,
		GatewayOrderID: sess.GatewayOrderID,
		Signature:      payment.Sign(testSecret, sess.GatewayOrderID, paymentID),
	}
}

func popupText(t *testing.T, env testEnv, sessionID string) string {
	t.Helper()
	msg, err := env.popups.Current(context.Background(), sessionID)
	require.NoError(t, err)
	if msg == nil {
		return ""
	}
	return msg.Text
}

func TestOpenRequiresSignIn(t *testing.T) {
	env := setup(t, true)
	env.fillCart(t, "s1")

	_, err := env.svc.Open(context.Background(), "s1", nil)
	assert.ErrorIs(t, err, ErrSignInRequired)
	assert.Equal(t, "Please log in to checkout.", popupText(t, env, "s1"))
}

func TestOpenRejectsEmptyCart(t *testing.T) {
	env := setup(t, true)

	_, err := env.svc.Open(context.Background(), "s1", shopper)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitInvalidMobileStaysEditing(t *testing.T) {
	env := setup(t, true)
	ctx := context.Background()
	env.fillCart(t, "s1")

	sess, err := env.svc.Open(ctx, "s1", shopper)
	require.NoError(t, err)

	form := validForm()
	form.Mobile = "12345"
	_, err = env.svc.Submit(ctx, "s1", sess.ID, form)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "mobile")
	assert.Zero(t, env.gateway.calls)
	assert.Equal(t, "Please fill all fields correctly.", popupText(t, env, "s1"))

	got, err := env.svc.Get(ctx, "s1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StateEditing, got.State)
}

func TestSubmitStateRequirementVariant(t *testing.T) {
	for _, requireState := range []bool{true, false} {
		env := setup(t, requireState)
		ctx := context.Background()
		env.fillCart(t, "s1")

		sess, err := env.svc.Open(ctx, "s1", shopper)
		require.NoError(t, err)

		form := validForm()
		form.State = " "
		_, err = env.svc.Submit(ctx, "s1", sess.ID, form)
		if requireState {
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, "state")
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestSubmitCreatesGatewayOrder(t *testing.T) {
	env := setup(t, true)
	sess := env.awaitingPayment(t, "s1")

	require.NotNil(t, sess.Widget)
	assert.Equal(t, []int64{64800}, env.gateway.amounts)
	assert.Equal(t, int64(64800), sess.Widget.Amount)
	assert.Equal(t, "INR", sess.Widget.Currency)
	assert.Equal(t, "ZeLie", sess.Widget.Name)
	assert.Equal(t, "Order Payment", sess.Widget.Description)
	assert.Equal(t, "Asha Rao", sess.Widget.Prefill.Name)
	assert.Equal(t, "9876543210", sess.Widget.Prefill.Contact)
	assert.Equal(t, "#503e28", sess.Widget.Theme.Color)
	assert.Equal(t, sess.GatewayOrderID, sess.Widget.OrderID)
	assert.Equal(t, int64(648), sess.Totals.Total)
}

func TestSubmitGatewayFailureReturnsToEditing(t *testing.T) {
	env := setup(t, true)
	ctx := context.Background()
	env.fillCart(t, "s1")
	env.gateway.err = errors.New("connection refused")

	sess, err := env.svc.Open(ctx, "s1", shopper)
	require.NoError(t, err)

	_, err = env.svc.Submit(ctx, "s1", sess.ID, validForm())
	assert.ErrorIs(t, err, ErrGateway)

	got, err := env.svc.Get(ctx, "s1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StateEditing, got.State)
}

func TestConfirmPlacesOrderAndClearsCart(t *testing.T) {
	env := setup(t, true)
	ctx := context.Background()
	sess := env.awaitingPayment(t, "s1")

	result, err := env.svc.Confirm(ctx, "s1", sess.ID, shopper, callbackFor(sess, "pay_1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "ord_1", result.OrderID)
	assert.Equal(t, "Order placed successfully! Thank you for shopping with Zelie.", popupText(t, env, "s1"))

	require.Len(t, env.orders.placed, 1)
	rec := env.orders.placed[0]
	assert.Equal(t, "user-1", rec.UserID)
	assert.Equal(t, int64(648), rec.Total)
	assert.Equal(t, "pay_1", rec.PaymentID)
	assert.Equal(t, []order.Item{{ID: 1, Name: "Ishq Mini", Price: 299, Quantity: 2}}, rec.Items)
	assert.Equal(t, "Pune", rec.ShippingAddress.City)

	require.Len(t, env.events.events, 1)
	assert.Equal(t, "asha@example.com", env.events.events[0].Email)

	c, err := env.carts.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	again, err := env.svc.Confirm(ctx, "s1", sess.ID, shopper, callbackFor(sess, "pay_1"))
	require.NoError(t, err)
	assert.Equal(t, result, again)
	assert.Len(t, env.orders.placed, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.OrdersCreated.WithLabelValues("success")))
}

func TestConfirmWithoutIdentityKeepsCart(t *testing.T) {
	env := setup(t, true)
	ctx := context.Background()
	sess := env.awaitingPayment(t, "s1")

	_, err := env.svc.Confirm(ctx, "s1", sess.ID, nil, callbackFor(sess, "pay_1"))
	assert.ErrorIs(t, err, ErrSignInToSave)
	assert.Equal(t, "Please log in to save your order.", popupText(t, env, "s1"))
	assert.Empty(t, env.orders.placed)

	c, err := env.carts.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())

	got, err := env.svc.Get(ctx, "s1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPayment, got.State)
}

func TestConfirmFromDifferentUserKeepsCart(t *testing.T) {
	env := setup(t, true)
	ctx := context.Background()
	sess := env.awaitingPayment(t, "s1")

	other := &identity.Identity{UID: "user-2", Email: "ravi@example.com"}
	_, err := env.svc.Confirm(ctx, "s1", sess.ID, other, callbackFor(sess, "pay_1"))
	assert.ErrorIs(t, err, ErrWrongUser)
	assert.Equal(t, "Please log in with the account that started this checkout.", popupText(t, env, "s1"))
	assert.Empty(t, env.orders.placed)
	assert.Empty(t, env.events.events)

	c, err := env.carts.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())

	got, err := env.svc.Get(ctx, "s1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPayment, got.State)

	result, err := env.svc.Confirm(ctx, "s1", sess.ID, shopper, callbackFor(sess, "pay_1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	require.Len(t, env.orders.placed, 1)
	assert.Equal(t, "user-1", env.orders.placed[0].UserID)
}

func TestConfirmForSupersededGatewayOrderIsDegraded(t *testing.T) {
	env := setup(t, true)
	ctx := context.Background()
	first := env.awaitingPayment(t, "s1")

	second, err := env.svc.Submit(ctx, "s1", first.ID, validForm())
	require.NoError(t, err)
	require.NotEqual(t, first.GatewayOrderID, second.GatewayOrderID)
	assert.Equal(t, []string{first.GatewayOrderID}, second.Superseded)

	result, err := env.svc.Confirm(ctx, "s1", first.ID, shopper, callbackFor(first, "pay_old"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDegraded, result.Outcome)
	assert.Equal(t, "pay_old", result.PaymentID)
	assert.Equal(t, "Payment successful, but we could not record your order. Please contact support with payment id pay_old.", popupText(t, env, "s1"))
	assert.Empty(t, env.orders.placed)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.PaymentAttempts.WithLabelValues("superseded")))

	forged := callbackFor(first, "pay_old")
	forged.Signature = "forged"
	_, err = env.svc.Confirm(ctx, "s1", first.ID, shopper, forged)
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	got, err := env.svc.Get(ctx, "s1", first.ID)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPayment, got.State)

	result, err = env.svc.Confirm(ctx, "s1", first.ID, shopper, callbackFor(second, "pay_new"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	require.Len(t, env.orders.placed, 1)
}

func TestConfirmAfterCloseIsIgnored(t *testing.T) {
	env := setup(t, true)
	ctx := context.Background()
	sess := env.awaitingPayment(t, "s1")

	closed, err := env.svc.Close(ctx, "s1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StateAbandoned, closed.State)

	_, err = env.svc.Close(ctx, "s1", sess.ID)
	require.NoError(t, err)

	_, err = env.svc.Confirm(ctx, "s1", sess.ID, shopper, callbackFor(sess, "pay_late"))
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Empty(t, env.orders.placed)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.LateCallbacks))

	c, err := env.carts.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())
}

func TestCloseCompletedIsInvalid(t *testing.T) {
	env := setup(t, true)
	ctx := context.Background()
	sess := env.awaitingPayment(t, "s1")

	_, err := env.svc.Confirm(ctx, "s1", sess.ID, shopper, callbackFor(sess, "pay_1"))
	require.NoError(t, err)

	_, err = env.svc.Close(ctx, "s1", sess.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirmRejectsBadSignature(t *testing.T) {
	env := setup(t, true)
	ctx := context.Background()
	sess := env.awaitingPayment(t, "s1")

	cb := callbackFor(sess, "pay_1")
	cb.Signature = "forged"
	_, err := env.svc.Confirm(ctx, "s1", sess.ID, shopper, cb)
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	cb = callbackFor(sess, "pay_1")
	cb.GatewayOrderID = "order_other"
	_, err = env.svc.Confirm(ctx, "s1", sess.ID, shopper, cb)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
	assert.Empty(t, env.orders.placed)
}

func TestConfirmDegradedWhenOrderNotSaved(t *testing.T) {
	env := setup(t, true)
	ctx := context.Background()
	sess := env.awaitingPayment(t, "s1")
	env.orders.err = errors.New("mongo down")

	result, err := env.svc.Confirm(ctx, "s1", sess.ID, shopper, callbackFor(sess, "pay_7"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDegraded, result.Outcome)
	assert.Equal(t, "Payment successful, but we could not record your order. Please contact support with payment id pay_7.", result.Message)
	assert.Empty(t, env.events.events)

	c, err := env.carts.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	got, err := env.svc.Get(ctx, "s1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, got.State)
}

func TestConfirmDegradedWhenEventNotPublished(t *testing.T) {
	env := setup(t, true)
	sess := env.awaitingPayment(t, "s1")
	env.events.err = errors.New("broker unavailable")

	result, err := env.svc.Confirm(context.Background(), "s1", sess.ID, shopper, callbackFor(sess, "pay_8"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDegraded, result.Outcome)
	assert.Equal(t, "ord_1", result.OrderID)
}

func TestCheckoutIsScopedToBrowserSession(t *testing.T) {
	env := setup(t, true)
	sess := env.awaitingPayment(t, "s1")

	_, err := env.svc.Get(context.Background(), "s2", sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConcurrentCheckoutChangeIsBusy(t *testing.T) {
	env := setup(t, true)
	sess := env.awaitingPayment(t, "s1")

	require.NoError(t, env.mr.Set(lockKey(sess.ID), "someone-else"))
	_, err := env.svc.Close(context.Background(), "s1", sess.ID)
	assert.ErrorIs(t, err, ErrBusy)
}
