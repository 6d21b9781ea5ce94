// internal/domain/checkout/entity.go
package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/cart"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
)

var (
	ErrSessionNotFound   = errors.New("checkout session not found")
	ErrSignInRequired    = errors.New("Please log in to checkout.")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid checkout state transition")
	ErrSessionClosed     = errors.New("checkout session was closed")
	ErrSignatureMismatch = errors.New("payment signature does not match")
	ErrGateway           = errors.New("payment gateway unavailable")
	ErrSignInToSave      = errors.New("Please log in to save your order.")
	ErrWrongUser         = errors.New("Please log in with the account that started this checkout.")
	ErrBusy              = errors.New("checkout is being processed, please retry")
)

// State is a step of the checkout flow
type State string

const (
	StateEditing         State = "editing"
	StateValidating      State = "validating"
	StateAwaitingPayment State = "awaiting_payment"
	StateCompleted       State = "completed"
	StateAbandoned       State = "abandoned"
)

// transitions lists the legal next states. A session awaiting payment may be
// resubmitted when the widget is dismissed and the form edited.
var transitions = map[State][]State{
	StateEditing:         {StateValidating, StateAbandoned},
	StateValidating:      {StateEditing, StateAwaitingPayment, StateAbandoned},
	StateAwaitingPayment: {StateValidating, StateCompleted, StateAbandoned},
}

// Terminal reports whether no further transitions are possible
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAbandoned
}

// Form is the contact and shipping form. State is only required when the
// store is configured for it.
type Form struct {
	Mobile     string `json:"mobile" validate:"mobile"`
	Email      string `json:"email" validate:"storeemail"`
	FirstName  string `json:"firstName" validate:"notblank"`
	LastName   string `json:"lastName" validate:"notblank"`
	Address    string `json:"address" validate:"notblank"`
	City       string `json:"city" validate:"notblank"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" validate:"notblank"`
	Country    string `json:"country" validate:"notblank"`
}

// Normalize trims surrounding whitespace from every field
func (f *Form) Normalize() {
	for _, p := range []*string{
		&f.Mobile, &f.Email, &f.FirstName, &f.LastName, &f.Address,
		&f.City, &f.State, &f.PostalCode, &f.Country,
	} {
		*p = strings.TrimSpace(*p)
	}
}

// FullName is the name prefilled into the payment widget
func (f *Form) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// ShippingAddress copies the form into an order's shipping address
func (f *Form) ShippingAddress() order.ShippingAddress {
	return order.ShippingAddress{
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Address:    f.Address,
		City:       f.City,
		State:      f.State,
		PostalCode: f.PostalCode,
		Country:    f.Country,
		Mobile:     f.Mobile,
		Email:      f.Email,
	}
}

// ValidationError carries a message per invalid form field
type ValidationError struct {
	Fields map[string]string
}

// ValidationMessage is shown whenever the form is rejected
const ValidationMessage = "Please fill all fields correctly."

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid checkout form: %s", strings.Join(names, ", "))
}

// Outcome describes how a paid checkout ended
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeDegraded Outcome = "degraded"
)

// Result is returned once payment succeeds
type Result struct {
	Outcome   Outcome `json:"outcome"`
	OrderID   string  `json:"order_id,omitempty"`
	PaymentID string  `json:"payment_id"`
	Message   string  `json:"message"`
}

// PaymentCallback is what the widget reports on success
type PaymentCallback struct {
	PaymentID      string `json:"razorpay_payment_id" binding:"required"`
	GatewayOrderID string `json:"razorpay_order_id"`
	Signature      string `json:"razorpay_signature"`
}

// Prefill holds the widget's prefilled customer details
type Prefill struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Email   string `json:"email,omitempty"`
}

// Theme styles the widget
type Theme struct {
	Color string `json:"color"`
}

// WidgetOptions is everything the browser needs to open the payment widget
type WidgetOptions struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id,omitempty"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// Session is one pass through the checkout flow for a browser session
type Session struct {
	ID             string         `json:"id"`
	SessionID      string         `json:"session_id"`
	UserID         string         `json:"user_id,omitempty"`
	State          State          `json:"state"`
	Form           *Form          `json:"form,omitempty"`
	Items          []order.Item   `json:"items,omitempty"`
	Totals         cart.Totals    `json:"totals"`
	GatewayOrderID string         `json:"gateway_order_id,omitempty"`
	Superseded     []string       `json:"superseded_order_ids,omitempty"` // Gateway orders replaced by a resubmit
	Widget         *WidgetOptions `json:"widget,omitempty"`
	Result         *Result        `json:"result,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// supersedes reports whether gatewayOrderID was issued for this session
// and then replaced by a later submit
func (s *Session) supersedes(gatewayOrderID string) bool {
	for _, id := range s.Superseded {
		if id == gatewayOrderID {
			return true
		}
	}
	return false
}

func (s *Session) transition(to State, now time.Time) error {
	for _, allowed := range transitions[s.State] {
		if allowed == to {
			s.State = to
			s.UpdatedAt = now
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, to)
}

// snapshotItems captures the cart lines as order items
func snapshotItems(c *cart.Cart) []order.Item {
	items := make([]order.Item, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, order.Item{
			ID:       l.Product.ID,
			Name:     l.Product.Name,
			Price:    l.Product.Price,
			Quantity: l.Quantity,
		})
	}
	return items
}
