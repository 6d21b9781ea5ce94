// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/catalog"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/notification"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	addedToCartMessage = "Added to cart!"
	maxWatchRetries    = 5
)

// Notifier shows transient popups to a browser session
type Notifier interface {
	Show(ctx context.Context, sessionID string, kind notification.Kind, text string, ttl time.Duration) error
}

// Service handles cart business logic for browser sessions
type Service struct {
	redisClient *redis.Client
	catalog     *catalog.Catalog
	notifier    Notifier
	policy      ShippingPolicy
	cartTTL     time.Duration
	addedTTL    time.Duration
	logger      logrus.FieldLogger
}

// NewService creates a new cart service
func NewService(redisClient *redis.Client, cat *catalog.Catalog, notifier Notifier, cfg *config.Config, logger logrus.FieldLogger) *Service {
	return &Service{
		redisClient: redisClient,
		catalog:     cat,
		notifier:    notifier,
		policy: ShippingPolicy{
			FreeThreshold: cfg.Store.FreeShippingThreshold,
			FlatFee:       cfg.Store.ShippingFee,
		},
		cartTTL:  cfg.Store.CartTTL,
		addedTTL: cfg.Store.AddedToCartTTL,
		logger:   logger.WithField("component", "cart"),
	}
}

// CartItemResponse represents a cart line with product details
type CartItemResponse struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	LineTotal int64           `json:"line_total"`
	Product   catalog.Product `json:"product"`
}

// CartResponse represents a shopping cart with items and totals
type CartResponse struct {
	SessionID string             `json:"session_id"`
	Items     []CartItemResponse `json:"items"`
	Totals    Totals             `json:"totals"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity"`
}

// UpdateCartItemRequest represents update cart item request. A quantity of
// zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// Policy returns the shipping policy used for quotes
func (s *Service) Policy() ShippingPolicy {
	return s.policy
}

// Load returns the session's cart with products resolved from the catalog
func (s *Service) Load(ctx context.Context, sessionID string) (*Cart, error) {
	stored, err := s.readSessionCart(ctx, s.redisClient, sessionID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(stored), nil
}

// GetCart retrieves the session's cart
func (s *Service) GetCart(ctx context.Context, sessionID string) (*CartResponse, error) {
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(sessionID, c), nil
}

// AddToCart adds an item to the cart and shows the added-to-cart popup
func (s *Service) AddToCart(ctx context.Context, sessionID string, req *AddToCartRequest) (*CartResponse, error) {
	p, err := s.catalog.Find(req.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.InStock {
		return nil, fmt.Errorf("%w: %s", ErrOutOfStock, p.Name)
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	c, err := s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.Add(p, quantity)
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Show(ctx, sessionID, notification.KindSuccess, addedToCartMessage, s.addedTTL); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("failed to show added-to-cart popup")
	}

	return s.buildResponse(sessionID, c), nil
}

// UpdateCartItem overwrites a line's quantity
func (s *Service) UpdateCartItem(ctx context.Context, sessionID string, productID int, req *UpdateCartItemRequest) (*CartResponse, error) {
	c, err := s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.SetQuantity(productID, *req.Quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.buildResponse(sessionID, c), nil
}

// RemoveFromCart removes a line from the cart
func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, productID int) (*CartResponse, error) {
	c, err := s.mutate(ctx, sessionID, func(c *Cart) error {
		c.Remove(productID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.buildResponse(sessionID, c), nil
}

// ClearCart removes every line from the cart
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.redisClient.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Quote derives totals for a cart with the configured shipping policy
func (s *Service) Quote(c *Cart) Totals {
	return s.policy.Quote(c)
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// mutate applies fn to the stored cart under WATCH so that concurrent
// requests for one session never drop each other's changes.
func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error) {
	key := cartKey(sessionID)
	var result *Cart

	txf := func(tx *redis.Tx) error {
		stored, err := s.readSessionCart(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		c := s.hydrate(stored)
		if err := fn(c); err != nil {
			return err
		}

		data, err := json.Marshal(s.dehydrate(stored, c))
		if err != nil {
			return fmt.Errorf("failed to marshal cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cartTTL)
			return nil
		})
		if err != nil {
			return err
		}
		result = c
		return nil
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.redisClient.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrConcurrentUpdate
}

func (s *Service) readSessionCart(ctx context.Context, r getter, sessionID string) (*SessionCart, error) {
	data, err := r.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			now := time.Now().UTC()
			return &SessionCart{
				SessionID: sessionID,
				Items:     []SessionCartItem{},
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var stored SessionCart
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &stored, nil
}

// hydrate resolves stored product ids against the catalog. Products that
// are no longer sold are dropped.
func (s *Service) hydrate(stored *SessionCart) *Cart {
	c := &Cart{Lines: make([]Line, 0, len(stored.Items))}
	for _, item := range stored.Items {
		if item.Quantity < 1 {
			continue
		}
		if item.Quantity > MaxLineQuantity {
			item.Quantity = MaxLineQuantity
		}
		p, err := s.catalog.Find(item.ProductID)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"session_id": stored.SessionID,
				"product_id": item.ProductID,
			}).Warn("dropping cart line for unknown product")
			continue
		}
		c.Lines = append(c.Lines, Line{Product: p, Quantity: item.Quantity})
	}
	return c
}

func (s *Service) dehydrate(previous *SessionCart, c *Cart) *SessionCart {
	addedAt := make(map[int]time.Time, len(previous.Items))
	for _, item := range previous.Items {
		addedAt[item.ProductID] = item.AddedAt
	}

	now := time.Now().UTC()
	out := &SessionCart{
		SessionID: previous.SessionID,
		Items:     make([]SessionCartItem, 0, len(c.Lines)),
		CreatedAt: previous.CreatedAt,
		UpdatedAt: now,
	}
	for _, l := range c.Lines {
		added, ok := addedAt[l.Product.ID]
		if !ok {
			added = now
		}
		out.Items = append(out.Items, SessionCartItem{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			AddedAt:   added,
		})
	}
	return out
}

func (s *Service) buildResponse(sessionID string, c *Cart) *CartResponse {
	items := make([]CartItemResponse, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, CartItemResponse{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			LineTotal: l.Product.Price * int64(l.Quantity),
			Product:   l.Product,
		})
	}
	return &CartResponse{
		SessionID: sessionID,
		Items:     items,
		Totals:    s.policy.Quote(c),
	}
}
