// internal/pkg/email/types.go
package email

import (
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
)

// Email represents an email message
type Email struct {
	To          []string               `json:"to"`
	Subject     string                 `json:"subject"`
	HTMLContent string                 `json:"html_content"`
	Type        EmailType              `json:"type"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName  string
	SiteURL   string
	UserName  string
	UserEmail string
	Year      int
}

// OrderItem is one line of the confirmation email
type OrderItem struct {
	Name     string
	Quantity int
	Price    int64
	Total    int64
}

// OrderConfirmationData contains data for order confirmation email
type OrderConfirmationData struct {
	EmailTemplateData
	OrderID      string
	OrderDate    string
	OrderURL     string
	PaymentID    string
	Items        []OrderItem
	Subtotal     int64
	Shipping     int64
	Total        int64
	FreeShipping bool
	Address      order.ShippingAddress
}

// NewOrderConfirmationData builds the template data of a placed order
func NewOrderConfirmationData(siteName, siteURL string, ev *order.PlacedEvent) OrderConfirmationData {
	items := make([]OrderItem, 0, len(ev.Items))
	for _, it := range ev.Items {
		items = append(items, OrderItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			Total:    it.Price * int64(it.Quantity),
		})
	}

	return OrderConfirmationData{
		EmailTemplateData: EmailTemplateData{
			SiteName:  siteName,
			SiteURL:   siteURL,
			UserName:  ev.CustomerName,
			UserEmail: ev.Email,
			Year:      time.Now().Year(),
		},
		OrderID:      ev.OrderID,
		OrderDate:    ev.PlacedAt.Format("02 Jan 2006"),
		OrderURL:     siteURL + "/orders",
		PaymentID:    ev.PaymentID,
		Items:        items,
		Subtotal:     ev.Subtotal,
		Shipping:     ev.Shipping,
		Total:        ev.Total,
		FreeShipping: ev.Shipping == 0,
		Address:      ev.Address,
	}
}
