// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	"github.com/sirupsen/logrus"
)

var ErrNoRecipient = errors.New("email has no recipient")

const orderConfirmationTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.SiteName}}</title></head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f7f3ee;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
    <h1 style="color: #503e28;">{{.SiteName}}</h1>
    <p>Hello {{.UserName}},</p>
    <p>Thank you for shopping with {{.SiteName}}! Your order was placed on {{.OrderDate}}.</p>
    <table style="width: 100%; border-collapse: collapse;">
      <tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Amount</th></tr>
      {{range .Items}}<tr><td>{{.Name}}</td><td align="right">{{.Quantity}}</td><td align="right">&#8377;{{.Total}}</td></tr>
      {{end}}
    </table>
    <p>Subtotal: &#8377;{{.Subtotal}}<br>
    Shipping: {{if .FreeShipping}}FREE{{else}}&#8377;{{.Shipping}}{{end}}<br>
    <strong>Total: &#8377;{{.Total}}</strong></p>
    <p>Shipping to: {{.Address.FirstName}} {{.Address.LastName}}, {{.Address.Address}}, {{.Address.City}}{{if .Address.State}}, {{.Address.State}}{{end}} {{.Address.PostalCode}}, {{.Address.Country}}</p>
    <p>Payment reference: {{.PaymentID}}</p>
    <p><a href="{{.OrderURL}}">View your orders</a></p>
    <hr>
    <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}. All rights reserved.</p>
  </div>
</body>
</html>`

// EmailService handles all email operations
type EmailService struct {
	config      config.EmailConfig
	siteName    string
	siteURL     string
	templates   map[EmailType]*template.Template
	client      *http.Client
	resendURL   string
	sendgridURL string
	logger      logrus.FieldLogger
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, logger logrus.FieldLogger) *EmailService {
	return &EmailService{
		config:   cfg.Email,
		siteName: cfg.Email.FromName,
		siteURL:  cfg.App.BaseURL,
		templates: map[EmailType]*template.Template{
			EmailTypeOrderConfirmation: template.Must(template.New("order_confirmation").Parse(orderConfirmationTemplate)),
		},
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		resendURL:   "https://api.resend.com/emails",
		sendgridURL: "https://api.sendgrid.com/v3/mail/send",
		logger:      logger.WithField("component", "email"),
	}
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if len(email.To) == 0 || email.To[0] == "" {
		return ErrNoRecipient
	}

	switch s.config.Provider {
	case "smtp":
		return s.sendSMTPEmail(email)
	case "resend":
		return s.sendResendEmail(ctx, email)
	case "sendgrid":
		return s.sendSendGridEmail(ctx, email)
	case "log":
		s.logger.WithFields(logrus.Fields{
			"to":      email.To,
			"subject": email.Subject,
			"type":    email.Type,
		}).Info("email not sent, log provider configured")
		return nil
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Provider)
	}
}

// SendOrderConfirmationEmail sends the confirmation for a placed order
func (s *EmailService) SendOrderConfirmationEmail(ctx context.Context, ev *order.PlacedEvent) error {
	data := NewOrderConfirmationData(s.siteName, s.siteURL, ev)

	htmlContent, err := s.renderTemplate(EmailTypeOrderConfirmation, data)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation template: %w", err)
	}

	email := &Email{
		To:          []string{ev.Email},
		Subject:     fmt.Sprintf("Your %s order is confirmed", s.siteName),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderConfirmation,
		Data: map[string]interface{}{
			"order_id":    ev.OrderID,
			"order_total": ev.Total,
		},
	}

	return s.SendEmail(ctx, email)
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(name EmailType, data interface{}) (string, error) {
	tmpl, exists := s.templates[name]
	if !exists {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *EmailService) fromAddress() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}
