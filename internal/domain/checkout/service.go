// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/cart"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/identity"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/notification"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/payment"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	completedMessage    = "Order placed successfully! Thank you for shopping with Zelie."
	degradedMessage     = "Payment successful, but we could not record your order. Please contact support with payment id %s."
	gatewayErrorMessage = "Unable to start payment. Please try again."
	lockTTL             = 30 * time.Second
)

// releaseLock deletes the lock only if we still own it
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// CartSource is the part of the cart service checkout needs
type CartSource interface {
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Quote(c *cart.Cart) cart.Totals
	ClearCart(ctx context.Context, sessionID string) error
}

// Gateway creates payable orders and verifies callbacks
type Gateway interface {
	KeyID() string
	CanVerify() bool
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*payment.RazorpayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// OrderPlacer persists paid orders
type OrderPlacer interface {
	Place(ctx context.Context, rec *order.Record) (string, error)
}

// EventPublisher announces placed orders to downstream consumers
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *order.PlacedEvent) error
}

// Notifier shows transient popups to a browser session
type Notifier interface {
	Show(ctx context.Context, sessionID string, kind notification.Kind, text string, ttl time.Duration) error
}

// Dependencies are the collaborators of the checkout service. Events may be
// nil when no broker is configured.
type Dependencies struct {
	Redis    *redis.Client
	Carts    CartSource
	Gateway  Gateway
	Orders   OrderPlacer
	Events   EventPublisher
	Notifier Notifier
	Forms    *FormValidator
	Metrics  *metrics.Business
}

// Service drives checkout sessions through their states
type Service struct {
	redisClient *redis.Client
	carts       CartSource
	gateway     Gateway
	orders      OrderPlacer
	events      EventPublisher
	notifier    Notifier
	forms       *FormValidator
	metrics     *metrics.Business
	store       config.StoreConfig
	logger      logrus.FieldLogger
	now         func() time.Time
}

// NewService creates a new checkout service
func NewService(deps Dependencies, cfg *config.Config, logger logrus.FieldLogger) *Service {
	return &Service{
		redisClient: deps.Redis,
		carts:       deps.Carts,
		gateway:     deps.Gateway,
		orders:      deps.Orders,
		events:      deps.Events,
		notifier:    deps.Notifier,
		forms:       deps.Forms,
		metrics:     deps.Metrics,
		store:       cfg.Store,
		logger:      logger.WithField("component", "checkout"),
		now:         time.Now,
	}
}

// Open starts a checkout for the session's current cart
func (s *Service) Open(ctx context.Context, sessionID string, ident *identity.Identity) (*Session, error) {
	if ident == nil {
		s.popup(ctx, sessionID, notification.KindError, ErrSignInRequired.Error())
		return nil, ErrSignInRequired
	}

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	now := s.now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    ident.UID,
		State:     StateEditing,
		Items:     snapshotItems(c),
		Totals:    s.carts.Quote(c),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	s.metrics.CheckoutStarted.Inc()
	s.logger.WithFields(logrus.Fields{
		"checkout_id": sess.ID,
		"session_id":  sessionID,
		"user_id":     ident.UID,
		"total":       sess.Totals.Total,
	}).Info("checkout opened")
	return sess, nil
}

// Get returns a checkout owned by the browser session
func (s *Service) Get(ctx context.Context, sessionID, checkoutID string) (*Session, error) {
	return s.load(ctx, sessionID, checkoutID)
}

// Submit validates the form and, when it passes, creates the gateway order
// and returns the session awaiting payment. A rejected form leaves the
// session in editing with no gateway call made.
func (s *Service) Submit(ctx context.Context, sessionID, checkoutID string, form Form) (*Session, error) {
	var out *Session
	err := s.withLock(ctx, checkoutID, func() error {
		sess, err := s.load(ctx, sessionID, checkoutID)
		if err != nil {
			return err
		}
		if sess.State == StateAbandoned {
			return ErrSessionClosed
		}

		now := s.now().UTC()
		if err := sess.transition(StateValidating, now); err != nil {
			return err
		}

		form.Normalize()
		sess.Form = &form
		if sess.GatewayOrderID != "" {
			sess.Superseded = append(sess.Superseded, sess.GatewayOrderID)
		}
		sess.GatewayOrderID = ""
		sess.Widget = nil

		if err := s.forms.Validate(&form); err != nil {
			s.metrics.CheckoutRejected.WithLabelValues("validation").Inc()
			s.popup(ctx, sessionID, notification.KindError, ValidationMessage)
			return s.backToEditing(ctx, sess, err)
		}

		c, err := s.carts.Load(ctx, sessionID)
		if err != nil {
			return s.backToEditing(ctx, sess, err)
		}
		if c.IsEmpty() {
			s.metrics.CheckoutRejected.WithLabelValues("empty_cart").Inc()
			return s.backToEditing(ctx, sess, ErrEmptyCart)
		}
		sess.Items = snapshotItems(c)
		sess.Totals = s.carts.Quote(c)

		amount := sess.Totals.Total * 100
		gwOrder, err := s.gateway.CreateOrder(ctx, amount, s.store.Currency, sess.ID, map[string]string{
			"checkout_id": sess.ID,
			"user_id":     sess.UserID,
		})
		if err != nil {
			s.metrics.PaymentAttempts.WithLabelValues("failed").Inc()
			s.logger.WithError(err).WithField("checkout_id", sess.ID).Error("failed to create gateway order")
			s.popup(ctx, sessionID, notification.KindError, gatewayErrorMessage)
			return s.backToEditing(ctx, sess, fmt.Errorf("%w: %v", ErrGateway, err))
		}
		s.metrics.PaymentAttempts.WithLabelValues("created").Inc()

		sess.GatewayOrderID = gwOrder.ID
		sess.Widget = &WidgetOptions{
			Key:         s.gateway.KeyID(),
			Amount:      amount,
			Currency:    s.store.Currency,
			Name:        s.store.MerchantName,
			Description: s.store.PaymentDescription,
			OrderID:     gwOrder.ID,
			Prefill: Prefill{
				Name:    form.FullName(),
				Contact: form.Mobile,
				Email:   form.Email,
			},
			Theme: Theme{Color: s.store.ThemeColor},
		}
		if err := sess.transition(StateAwaitingPayment, s.now().UTC()); err != nil {
			return err
		}
		if err := s.save(ctx, sess); err != nil {
			return err
		}

		s.logger.WithFields(logrus.Fields{
			"checkout_id":       sess.ID,
			"razorpay_order_id": gwOrder.ID,
			"amount":            amount,
		}).Info("checkout awaiting payment")
		out = sess
		return nil
	})
	return out, err
}

// Close abandons the checkout. Closing twice is harmless; closing a
// completed checkout is not allowed. Payment callbacks that arrive after
// Close are ignored.
func (s *Service) Close(ctx context.Context, sessionID, checkoutID string) (*Session, error) {
	var out *Session
	err := s.withLock(ctx, checkoutID, func() error {
		sess, err := s.load(ctx, sessionID, checkoutID)
		if err != nil {
			return err
		}
		if sess.State == StateAbandoned {
			out = sess
			return nil
		}
		if err := sess.transition(StateAbandoned, s.now().UTC()); err != nil {
			return err
		}
		if err := s.save(ctx, sess); err != nil {
			return err
		}

		s.metrics.CheckoutAbandoned.Inc()
		s.logger.WithFields(logrus.Fields{
			"checkout_id":       sess.ID,
			"razorpay_order_id": sess.GatewayOrderID,
		}).Info("checkout abandoned")
		out = sess
		return nil
	})
	return out, err
}

// Confirm handles the gateway's success callback. Once the signature checks
// out, the payment is treated as collected: the cart is cleared and the
// result is either success or degraded, never a reversal.
func (s *Service) Confirm(ctx context.Context, sessionID, checkoutID string, ident *identity.Identity, cb PaymentCallback) (*Result, error) {
	var out *Result
	err := s.withLock(ctx, checkoutID, func() error {
		sess, err := s.load(ctx, sessionID, checkoutID)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				s.logger.WithFields(logrus.Fields{
					"checkout_id": checkoutID,
					"payment_id":  cb.PaymentID,
				}).Warn("payment callback for unknown or expired checkout")
			}
			return err
		}

		log := s.logger.WithFields(logrus.Fields{
			"checkout_id": sess.ID,
			"payment_id":  cb.PaymentID,
		})

		switch sess.State {
		case StateAbandoned:
			s.metrics.LateCallbacks.Inc()
			log.Warn("ignoring payment callback for closed checkout")
			return ErrSessionClosed
		case StateCompleted:
			out = sess.Result
			return nil
		}

		if cb.GatewayOrderID != "" && sess.supersedes(cb.GatewayOrderID) {
			if s.gateway.CanVerify() && !s.gateway.VerifySignature(cb.GatewayOrderID, cb.PaymentID, cb.Signature) {
				log.Warn("payment signature verification failed")
				return ErrSignatureMismatch
			}
			out = s.supersededPayment(ctx, sess, cb, log)
			return nil
		}

		if sess.State != StateAwaitingPayment {
			return fmt.Errorf("%w: payment callback in state %s", ErrInvalidTransition, sess.State)
		}
		if cb.GatewayOrderID != sess.GatewayOrderID {
			log.WithField("razorpay_order_id", cb.GatewayOrderID).Warn("payment callback for a different gateway order")
			return ErrSignatureMismatch
		}
		if s.gateway.CanVerify() && !s.gateway.VerifySignature(sess.GatewayOrderID, cb.PaymentID, cb.Signature) {
			log.Warn("payment signature verification failed")
			return ErrSignatureMismatch
		}

		if ident == nil {
			log.Error("payment succeeded without a signed-in user, order not saved")
			s.popup(ctx, sessionID, notification.KindError, ErrSignInToSave.Error())
			return ErrSignInToSave
		}
		if ident.UID != sess.UserID {
			log.WithFields(logrus.Fields{
				"user_id":          ident.UID,
				"checkout_user_id": sess.UserID,
			}).Error("payment callback from a different user than the one who opened checkout, order not saved")
			s.popup(ctx, sessionID, notification.KindError, ErrWrongUser.Error())
			return ErrWrongUser
		}

		// The payment is collected from here on; a client disconnect must
		// not cut the bookkeeping short.
		bctx := context.WithoutCancel(ctx)
		out = s.complete(bctx, sess, ident, cb, log)
		return nil
	})
	return out, err
}

func (s *Service) complete(ctx context.Context, sess *Session, ident *identity.Identity, cb PaymentCallback, log logrus.FieldLogger) *Result {
	now := s.now().UTC()
	rec := &order.Record{
		UserID:          ident.UID,
		CheckoutID:      sess.ID,
		Items:           sess.Items,
		Total:           sess.Totals.Total,
		CreatedAt:       now,
		ShippingAddress: sess.Form.ShippingAddress(),
		PaymentID:       cb.PaymentID,
	}

	orderID, bookkeepingErr := s.orders.Place(ctx, rec)
	if bookkeepingErr != nil {
		log.WithError(bookkeepingErr).Error("failed to record paid order")
	}

	if err := s.carts.ClearCart(ctx, sess.SessionID); err != nil {
		log.WithError(err).Error("failed to clear cart after payment")
	}

	if bookkeepingErr == nil && s.events != nil {
		email := sess.Form.Email
		if email == "" {
			email = ident.Email
		}
		event := &order.PlacedEvent{
			OrderID:      orderID,
			CheckoutID:   sess.ID,
			UserID:       ident.UID,
			Email:        email,
			CustomerName: sess.Form.FullName(),
			Items:        rec.Items,
			Subtotal:     sess.Totals.Subtotal,
			Shipping:     sess.Totals.Shipping,
			Total:        rec.Total,
			Currency:     s.store.Currency,
			PaymentID:    cb.PaymentID,
			Address:      rec.ShippingAddress,
			PlacedAt:     now,
		}
		if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
			log.WithError(err).WithField("order_id", orderID).Error("failed to publish order placed event")
			bookkeepingErr = err
		}
	}

	result := &Result{
		Outcome:   OutcomeSuccess,
		OrderID:   orderID,
		PaymentID: cb.PaymentID,
		Message:   completedMessage,
	}
	kind := notification.KindSuccess
	if bookkeepingErr != nil {
		result.Outcome = OutcomeDegraded
		result.Message = fmt.Sprintf(degradedMessage, cb.PaymentID)
		kind = notification.KindWarning
	}

	sess.Result = result
	if err := sess.transition(StateCompleted, now); err != nil {
		log.WithError(err).Error("unexpected checkout state after payment")
	}
	if err := s.save(ctx, sess); err != nil {
		log.WithError(err).Error("failed to save completed checkout")
	}

	s.popup(ctx, sess.SessionID, kind, result.Message)
	s.metrics.OrdersCreated.WithLabelValues(string(result.Outcome)).Inc()
	s.metrics.OrderValue.Observe(float64(rec.Total))
	log.WithFields(logrus.Fields{
		"order_id": orderID,
		"outcome":  result.Outcome,
		"total":    rec.Total,
	}).Info("checkout completed")
	return result
}

// supersededPayment handles a collected payment for a gateway order that a
// later submit replaced. The cart may have changed since, so no order is
// recorded and the customer is sent to support with the payment id.
func (s *Service) supersededPayment(ctx context.Context, sess *Session, cb PaymentCallback, log logrus.FieldLogger) *Result {
	log.WithFields(logrus.Fields{
		"razorpay_order_id": cb.GatewayOrderID,
		"current_order_id":  sess.GatewayOrderID,
	}).Error("payment collected for a superseded gateway order, order not saved")

	result := &Result{
		Outcome:   OutcomeDegraded,
		PaymentID: cb.PaymentID,
		Message:   fmt.Sprintf(degradedMessage, cb.PaymentID),
	}
	s.popup(ctx, sess.SessionID, notification.KindWarning, result.Message)
	s.metrics.PaymentAttempts.WithLabelValues("superseded").Inc()
	s.metrics.OrdersCreated.WithLabelValues(string(result.Outcome)).Inc()
	return result
}

func (s *Service) backToEditing(ctx context.Context, sess *Session, cause error) error {
	if err := sess.transition(StateEditing, s.now().UTC()); err != nil {
		return err
	}
	if err := s.save(ctx, sess); err != nil {
		return err
	}
	return cause
}

func (s *Service) popup(ctx context.Context, sessionID string, kind notification.Kind, text string) {
	if err := s.notifier.Show(ctx, sessionID, kind, text, s.store.PopupTTL); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("failed to show popup")
	}
}

func sessionKey(checkoutID string) string {
	return fmt.Sprintf("checkout:%s", checkoutID)
}

func lockKey(checkoutID string) string {
	return fmt.Sprintf("checkout:lock:%s", checkoutID)
}

func (s *Service) load(ctx context.Context, sessionID, checkoutID string) (*Session, error) {
	data, err := s.redisClient.Get(ctx, sessionKey(checkoutID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load checkout: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout: %w", err)
	}
	if sess.SessionID != sessionID {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *Service) save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout: %w", err)
	}
	if err := s.redisClient.Set(ctx, sessionKey(sess.ID), data, s.store.CheckoutTTL).Err(); err != nil {
		return fmt.Errorf("failed to save checkout: %w", err)
	}
	return nil
}

// withLock serialises state changes of one checkout across requests
func (s *Service) withLock(ctx context.Context, checkoutID string, fn func() error) error {
	key := lockKey(checkoutID)
	token := strconv.FormatInt(s.now().UnixNano(), 10) + "-" + uuid.NewString()

	ok, err := s.redisClient.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to lock checkout: %w", err)
	}
	if !ok {
		return ErrBusy
	}
	defer func() {
		if err := releaseLock.Run(context.WithoutCancel(ctx), s.redisClient, []string{key}, token).Err(); err != nil {
			s.logger.WithError(err).WithField("checkout_id", checkoutID).Warn("failed to release checkout lock")
		}
	}()

	return fn()
}
