// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"lineTotal": func(it order.Item) int64 { return it.Price * int64(it.Quantity) },
}).Parse(receiptTemplate))

// Service renders order receipts as PDF
type Service struct {
	merchant string
	currency string
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		merchant: cfg.Store.MerchantName,
		currency: cfg.Store.Currency,
	}
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	Merchant    string
	Currency    string
	ReceiptDate string
	Order       *order.Record
	Subtotal    int64
	Shipping    int64
}

// NewReceiptData derives the receipt's subtotal and shipping from the
// stored lines and total
func NewReceiptData(merchant, currency string, rec *order.Record) ReceiptData {
	var subtotal int64
	for _, it := range rec.Items {
		subtotal += it.Price * int64(it.Quantity)
	}
	shipping := rec.Total - subtotal
	if shipping < 0 {
		shipping = 0
	}
	return ReceiptData{
		Merchant:    merchant,
		Currency:    currency,
		ReceiptDate: rec.CreatedAt.Format("January 2, 2006"),
		Order:       rec,
		Subtotal:    subtotal,
		Shipping:    shipping,
	}
}

// RenderReceipt converts an order into a PDF receipt through wkhtmltopdf
func (s *Service) RenderReceipt(rec *order.Record) ([]byte, error) {
	htmlContent, err := s.GenerateHTML(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}

// GenerateHTML renders the receipt markup that is fed to wkhtmltopdf
func (s *Service) GenerateHTML(rec *order.Record) (string, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, NewReceiptData(s.merchant, s.currency, rec)); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Merchant}} receipt {{.Order.ID}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        h1 { color: #503e28; margin-bottom: 4px; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { padding: 8px; border-bottom: 1px solid #e5ded5; text-align: left; }
        .num { text-align: right; }
        .totals td { border: none; }
    </style>
</head>
<body>
    <h1>{{.Merchant}}</h1>
    <p>Receipt for order {{.Order.ID}}<br>Date: {{.ReceiptDate}}<br>Payment reference: {{.Order.PaymentID}}</p>
    <p>
        {{.Order.ShippingAddress.FirstName}} {{.Order.ShippingAddress.LastName}}<br>
        {{.Order.ShippingAddress.Address}}<br>
        {{.Order.ShippingAddress.City}}{{if .Order.ShippingAddress.State}}, {{.Order.ShippingAddress.State}}{{end}} {{.Order.ShippingAddress.PostalCode}}<br>
        {{.Order.ShippingAddress.Country}}<br>
        {{.Order.ShippingAddress.Mobile}}
    </p>
    <table>
        <tr><th>Item</th><th class="num">Price</th><th class="num">Qty</th><th class="num">Amount</th></tr>
        {{range .Order.Items}}
        <tr><td>{{.Name}}</td><td class="num">{{.Price}}</td><td class="num">{{.Quantity}}</td><td class="num">{{lineTotal .}}</td></tr>
        {{end}}
    </table>
    <table class="totals">
        <tr><td class="num">Subtotal</td><td class="num">{{.Currency}} {{.Subtotal}}</td></tr>
        <tr><td class="num">Shipping</td><td class="num">{{if eq .Shipping 0}}FREE{{else}}{{.Currency}} {{.Shipping}}{{end}}</td></tr>
        <tr><td class="num"><strong>Total</strong></td><td class="num"><strong>{{.Currency}} {{.Order.Total}}</strong></td></tr>
    </table>
</body>
</html>
`
