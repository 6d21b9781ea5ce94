// internal/pkg/email/service_test.go
package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedEvent() *order.PlacedEvent {
	return &order.PlacedEvent{
		OrderID:      "ord_1",
		Email:        "asha@example.com",
		CustomerName: "Asha Rao",
		Items:        []order.Item{{ID: 1, Name: "Ishq Mini", Price: 299, Quantity: 2}},
		Subtotal:     598,
		Shipping:     50,
		Total:        648,
		PaymentID:    "pay_1",
		Address:      order.ShippingAddress{FirstName: "Asha", City: "Pune", Country: "India"},
		PlacedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newService(provider string) *EmailService {
	logger, _ := logtest.NewNullLogger()
	cfg := &config.Config{}
	cfg.App.BaseURL = "https://zelie.in"
	cfg.Email = config.EmailConfig{Provider: provider, APIKey: "key", FromEmail: "orders@zelie.in", FromName: "Zelie"}
	return NewEmailService(cfg, logger)
}

func TestSendOrderConfirmationViaResend(t *testing.T) {
	var got ResendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := newService("resend")
	svc.resendURL = srv.URL

	require.NoError(t, svc.SendOrderConfirmationEmail(context.Background(), placedEvent()))
	assert.Equal(t, []string{"asha@example.com"}, got.To)
	assert.Equal(t, "Zelie <orders@zelie.in>", got.From)
	assert.Contains(t, got.HTML, "Ishq Mini")
	assert.Contains(t, got.HTML, "&#8377;648")
	assert.Contains(t, got.HTML, "pay_1")
}

func TestSendGridErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := newService("sendgrid")
	svc.sendgridURL = srv.URL

	err := svc.SendOrderConfirmationEmail(context.Background(), placedEvent())
	assert.ErrorContains(t, err, "status 401")
}

func TestSendEmailRequiresRecipient(t *testing.T) {
	ev := placedEvent()
	ev.Email = ""
	err := newService("log").SendOrderConfirmationEmail(context.Background(), ev)
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestFreeShippingRendered(t *testing.T) {
	ev := placedEvent()
	ev.Shipping = 0
	html, err := newService("log").renderTemplate(EmailTypeOrderConfirmation, NewOrderConfirmationData("Zelie", "https://zelie.in", ev))
	require.NoError(t, err)
	assert.Contains(t, html, "FREE")
}
