// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateBill generates a printable PDF bill for an order
func (s *Service) GenerateBill(ord *order.Order) (*bytes.Buffer, error) {
	data := BillData{
		BillNumber: fmt.Sprintf("HD-%s", ord.OrderNumber),
		BillDate:   time.Now().Format("02/01/2006"),
		Order:      ord,
		Company: CompanyInfo{
			Name:    s.config.Company.Name,
			Address: s.config.Company.Address,
			Phone:   s.config.Company.Phone,
			Email:   s.config.Company.Email,
			TaxCode: s.config.Company.TaxCode,
		},
	}

	htmlContent, err := s.generateHTML(data)
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

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data BillData) (string, error) {
	var buf bytes.Buffer
	if err := billTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// BillData represents the data passed to the bill template
type BillData struct {
	BillNumber string       `json:"bill_number"`
	BillDate   string       `json:"bill_date"`
	Order      *order.Order `json:"order"`
	Company    CompanyInfo  `json:"company"`
}

// CompanyInfo represents the seller details printed on the bill header
type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	TaxCode string `json:"tax_code"`
}

// vnd renders an int64 VND amount with dot thousands separators
func vnd(amount int64) string {
	digits := fmt.Sprintf("%d", amount)
	if len(digits) <= 3 {
		return digits
	}
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	return strings.Join(parts, ".")
}

var billTmpl = template.Must(template.New("bill").Funcs(template.FuncMap{
	"vnd": vnd,
	"sub": func(a, b int64) int64 { return a - b },
}).Parse(billTemplate))

// Bill HTML template
const billTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Bill {{.BillNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .company-info {
            flex: 1;
        }
        .bill-info {
            text-align: right;
            flex: 1;
        }
        .bill-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .shipping-info {
            margin-bottom: 30px;
        }
        .section-title {
            font-size: 16px;
            font-weight: bold;
            margin-bottom: 10px;
            color: #374151;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col,
        .items-table .price-col,
        .items-table .total-col {
            text-align: right;
            width: 100px;
        }
        .totals {
            float: right;
            width: 320px;
        }
        .totals table {
            width: 100%;
            border-collapse: collapse;
        }
        .totals td {
            padding: 8px;
            border-bottom: 1px solid #eee;
        }
        .totals .label {
            text-align: right;
            font-weight: bold;
        }
        .totals .amount {
            text-align: right;
            width: 120px;
        }
        .total-row {
            font-size: 18px;
            font-weight: bold;
            border-top: 2px solid #333 !important;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            <p>{{.Company.Address}}</p>
            <p>Tel: {{.Company.Phone}}</p>
            <p>Email: {{.Company.Email}}</p>
            {{if .Company.TaxCode}}<p>Tax code: {{.Company.TaxCode}}</p>{{end}}
        </div>
        <div class="bill-info">
            <div class="bill-title">BILL</div>
            <p><strong>Bill #:</strong> {{.BillNumber}}</p>
            <p><strong>Date:</strong> {{.BillDate}}</p>
            <p><strong>Order #:</strong> {{.Order.OrderNumber}}</p>
            <p><strong>Order date:</strong> {{.Order.CreatedAt.Format "02/01/2006 15:04"}}</p>
            <p><strong>Payment:</strong> {{.Order.PaymentMethod}}</p>
        </div>
    </div>

    <div class="shipping-info">
        <div class="section-title">Ship To:</div>
        <p><strong>{{.Order.ShippingName}}</strong></p>
        <p>{{.Order.ShippingAddress}}</p>
        <p>{{.Order.ShippingWard}}{{if .Order.ShippingWard}}, {{end}}{{.Order.ShippingDistrict}}{{if .Order.ShippingDistrict}}, {{end}}{{.Order.ShippingCity}}</p>
        <p>Tel: {{.Order.ShippingPhone}}</p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th class="qty-col">Qty</th>
                <th class="price-col">Unit Price</th>
                <th class="total-col">Subtotal</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Details}}
            <tr>
                <td>
                    <strong>{{.ProductName}}</strong>
                    {{if gt .Discount 0}}<br><small>Discount {{vnd .Discount}} VND each</small>{{end}}
                </td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">{{vnd .UnitPrice}} VND</td>
                <td class="total-col">{{vnd .Subtotal}} VND</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td class="label">Subtotal:</td>
                <td class="amount">{{vnd (sub .Order.TotalAmount .Order.TaxAmount)}} VND</td>
            </tr>
            <tr>
                <td class="label">VAT:</td>
                <td class="amount">{{vnd .Order.TaxAmount}} VND</td>
            </tr>
            <tr class="total-row">
                <td class="label">Total:</td>
                <td class="amount">{{vnd .Order.TotalAmount}} VND</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for your purchase!</p>
        <p>Questions about this bill? Contact us at {{.Company.Email}} or {{.Company.Phone}}</p>
    </div>
</body>
</html>
`
