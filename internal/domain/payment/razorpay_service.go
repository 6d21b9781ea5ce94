// internal/domain/payment/razorpay_service.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotConfigured = errors.New("payment gateway credentials not configured")
	ErrInvalidAmount = errors.New("payment amount must be positive")
)

// RazorpayOrder is the gateway's view of an order awaiting payment
type RazorpayOrder struct {
	ID        string            `json:"id"`
	Entity    string            `json:"entity"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt"`
	Status    string            `json:"status"`
	Notes     map[string]string `json:"notes"`
	CreatedAt int64             `json:"created_at"`
}

// CreateOrderRequest is the body of POST /orders. Amount is in paise.
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// APIError is a non-2xx response from the gateway
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("razorpay API call failed with status %d: %s", e.StatusCode, e.Body)
}

// RazorpayService talks to the Razorpay orders API and checks callback
// signatures
type RazorpayService struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// NewRazorpayService creates a new Razorpay service
func NewRazorpayService(cfg *config.Config, logger logrus.FieldLogger) *RazorpayService {
	return &RazorpayService{
		keyID:     cfg.Razorpay.KeyID,
		keySecret: cfg.Razorpay.KeySecret,
		baseURL:   strings.TrimRight(cfg.Razorpay.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Razorpay.Timeout,
		},
		logger: logger.WithField("component", "razorpay"),
	}
}

// KeyID is the public key handed to the payment widget
func (r *RazorpayService) KeyID() string {
	return r.keyID
}

// CreateOrder registers an amount with the gateway so the widget can collect it
func (r *RazorpayService) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*RazorpayOrder, error) {
	if amountPaise <= 0 {
		return nil, ErrInvalidAmount
	}

	body, err := r.makeAPICall(ctx, http.MethodPost, "/orders", CreateOrderRequest{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Razorpay order: %w", err)
	}

	var order RazorpayOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse Razorpay order response: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("razorpay order response has no id")
	}

	r.logger.WithFields(logrus.Fields{
		"razorpay_order_id": order.ID,
		"receipt":           receipt,
		"amount":            amountPaise,
	}).Info("razorpay order created")
	return &order, nil
}

// CanVerify reports whether callback signatures can be checked
func (r *RazorpayService) CanVerify() bool {
	return r.keySecret != ""
}

// VerifySignature checks hex(HMAC-SHA256(orderID|paymentID, keySecret))
// against the signature the widget returned
func (r *RazorpayService) VerifySignature(orderID, paymentID, signature string) bool {
	if r.keySecret == "" {
		return false
	}
	expected := Sign(r.keySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the callback signature for an order and payment pair
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (r *RazorpayService) makeAPICall(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	if r.keyID == "" || r.keySecret == "" {
		return nil, ErrNotConfigured
	}

	var reqBody io.Reader
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
