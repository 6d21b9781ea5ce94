// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/identity"
	"github.com/sirupsen/logrus"
)

// Store is the append-only order collection, one document per order
type Store interface {
	Append(ctx context.Context, rec *Record) (string, error)
	// List returns the user's decodable orders in insertion order along with
	// one error per document that could not be decoded.
	List(ctx context.Context, userID string) ([]Record, []error, error)
	Get(ctx context.Context, userID, orderID string) (*Record, error)
}

// ReceiptRenderer turns an order into a printable document
type ReceiptRenderer interface {
	RenderReceipt(rec *Record) ([]byte, error)
}

// Service handles order placement and history reads
type Service struct {
	store    Store
	receipts ReceiptRenderer
	logger   logrus.FieldLogger
}

// NewService creates a new order service. receipts may be nil.
func NewService(store Store, receipts ReceiptRenderer, logger logrus.FieldLogger) *Service {
	return &Service{
		store:    store,
		receipts: receipts,
		logger:   logger.WithField("component", "order"),
	}
}

// Place validates and appends a record, returning its id
func (s *Service) Place(ctx context.Context, rec *Record) (string, error) {
	if rec.UserID == "" {
		return "", errors.New("order has no owner")
	}
	if err := rec.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.Append(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("failed to save order: %w", err)
	}
	rec.ID = id
	return id, nil
}

// History reads the signed-in user's orders. Nothing is read for guests.
// Malformed documents are skipped and counted.
func (s *Service) History(ctx context.Context, ident *identity.Identity) (*History, error) {
	if ident == nil {
		return nil, ErrSignInRequired
	}

	records, decodeErrs, err := s.store.List(ctx, ident.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	history := &History{Orders: make([]Record, 0, len(records))}
	for _, e := range decodeErrs {
		s.logger.WithError(e).WithField("user_id", ident.UID).Warn("skipping undecodable order")
		history.Skipped++
	}
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			s.logger.WithError(err).WithField("user_id", ident.UID).Warn("skipping malformed order")
			history.Skipped++
			continue
		}
		history.Orders = append(history.Orders, rec)
	}
	return history, nil
}

// Get returns one of the signed-in user's orders
func (s *Service) Get(ctx context.Context, ident *identity.Identity, orderID string) (*Record, error) {
	if ident == nil {
		return nil, ErrSignInRequired
	}

	rec, err := s.store.Get(ctx, ident.UID, orderID)
	if err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Receipt renders a PDF receipt for one of the user's orders
func (s *Service) Receipt(ctx context.Context, ident *identity.Identity, orderID string) ([]byte, error) {
	if s.receipts == nil {
		return nil, errors.New("receipts are not available")
	}

	rec, err := s.Get(ctx, ident, orderID)
	if err != nil {
		return nil, err
	}
	return s.receipts.RenderReceipt(rec)
}
