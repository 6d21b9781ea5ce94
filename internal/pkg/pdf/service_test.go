// internal/pkg/pdf/service_test.go
package pdf

import (
	"testing"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(total int64) *order.Record {
	return &order.Record{
		ID:        "65f0c0ffee",
		Items:     []order.Item{{ID: 1, Name: "Ishq Mini", Price: 299, Quantity: 2}},
		Total:     total,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ShippingAddress: order.ShippingAddress{
			FirstName: "Asha", LastName: "Rao", City: "Pune", Country: "India",
		},
		PaymentID: "pay_1",
	}
}

func TestNewReceiptDataDerivesShipping(t *testing.T) {
	data := NewReceiptData("ZeLie", "INR", record(648))
	assert.Equal(t, int64(598), data.Subtotal)
	assert.Equal(t, int64(50), data.Shipping)
	assert.Equal(t, "March 1, 2026", data.ReceiptDate)
}

func TestGenerateHTML(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.MerchantName = "ZeLie"
	cfg.Store.Currency = "INR"

	html, err := NewService(cfg).GenerateHTML(record(598))
	require.NoError(t, err)
	assert.Contains(t, html, "Ishq Mini")
	assert.Contains(t, html, "INR 598")
	assert.Contains(t, html, "FREE")
	assert.Contains(t, html, "pay_1")
}
