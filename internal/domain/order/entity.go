// internal/domain/order/entity.go
package order

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound       = errors.New("order not found")
	ErrSignInRequired = errors.New("Please log in to view your orders.")
)

// Item is a line captured at the moment of payment
type Item struct {
	ID       int    `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Price    int64  `bson:"price" json:"price"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// ShippingAddress is a copy of the checkout form's address and contact
type ShippingAddress struct {
	FirstName  string `bson:"firstName" json:"firstName"`
	LastName   string `bson:"lastName" json:"lastName"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
	Mobile     string `bson:"mobile" json:"mobile"`
	Email      string `bson:"email,omitempty" json:"email,omitempty"`
}

// FullName joins first and last name
func (a ShippingAddress) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Record is a persisted order. Records are written once and never updated.
type Record struct {
	ID              string          `bson:"_id,omitempty" json:"id"`
	UserID          string          `bson:"user_id" json:"-"`
	CheckoutID      string          `bson:"checkoutId,omitempty" json:"checkoutId,omitempty"`
	Items           []Item          `bson:"items" json:"items"`
	Total           int64           `bson:"total" json:"total"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt"`
	ShippingAddress ShippingAddress `bson:"shippingAddress" json:"shippingAddress"`
	PaymentID       string          `bson:"paymentId" json:"paymentId"`
}

// ItemCount is the sum of item quantities
func (r *Record) ItemCount() int {
	n := 0
	for _, it := range r.Items {
		n += it.Quantity
	}
	return n
}

// DecodeError reports a stored order that is missing fields or malformed.
// The order is skipped rather than failing the whole read.
type DecodeError struct {
	OrderID string
	Reason  string
}

func (e *DecodeError) Error() string {
	if e.OrderID == "" {
		return "malformed order: " + e.Reason
	}
	return fmt.Sprintf("malformed order %s: %s", e.OrderID, e.Reason)
}

// Validate checks the record against the order schema
func (r *Record) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return &DecodeError{OrderID: r.ID, Reason: fmt.Sprintf(format, args...)}
	}

	if len(r.Items) == 0 {
		return fail("no items")
	}
	for i, it := range r.Items {
		switch {
		case it.ID <= 0:
			return fail("item %d has no product id", i)
		case strings.TrimSpace(it.Name) == "":
			return fail("item %d has no name", i)
		case it.Price <= 0:
			return fail("item %d has non-positive price", i)
		case it.Quantity < 1:
			return fail("item %d has quantity %d", i, it.Quantity)
		}
	}
	if r.Total <= 0 {
		return fail("non-positive total")
	}
	if r.CreatedAt.IsZero() {
		return fail("missing createdAt")
	}
	if strings.TrimSpace(r.PaymentID) == "" {
		return fail("missing paymentId")
	}
	return nil
}

// History is a user's orders in the order they were placed
type History struct {
	Orders  []Record `json:"orders"`
	Skipped int      `json:"skipped"`
}

// PlacedEvent is published after an order is recorded
type PlacedEvent struct {
	OrderID      string          `json:"order_id"`
	CheckoutID   string          `json:"checkout_id"`
	UserID       string          `json:"user_id"`
	Email        string          `json:"email"`
	CustomerName string          `json:"customer_name"`
	Items        []Item          `json:"items"`
	Subtotal     int64           `json:"subtotal"`
	Shipping     int64           `json:"shipping"`
	Total        int64           `json:"total"`
	Currency     string          `json:"currency"`
	PaymentID    string          `json:"payment_id"`
	Address      ShippingAddress `json:"shipping_address"`
	PlacedAt     time.Time       `json:"placed_at"`
}
