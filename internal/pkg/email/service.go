// internal/pkg/email/service.go
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// Service sends transactional mail over SMTP. When mail is disabled in
// the configuration every send becomes a logged no-op, which keeps
// development environments from needing an SMTP server.
type Service struct {
	config *config.Config
	log    *logrus.Logger
}

// NewService creates a new email service
func NewService(cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		config: cfg,
		log:    log,
	}
}

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(`
<html>
<body>
	<h2>Cam on ban da dat hang!</h2>
	<p>Don hang <strong>{{.OrderNumber}}</strong> da duoc thanh toan thanh cong.</p>
	<p>Tong tien: <strong>{{.Total}} VND</strong></p>
	<p>{{.CompanyName}}</p>
</body>
</html>
`))

type orderConfirmationData struct {
	OrderNumber string
	Total       string
	CompanyName string
}

// SendOrderConfirmation sends a payment confirmation for an order
func (s *Service) SendOrderConfirmation(to, orderNumber string, total int64) error {
	if !s.config.Email.Enabled {
		s.log.WithFields(logrus.Fields{
			"to":           to,
			"order_number": orderNumber,
		}).Debug("email disabled, skipping order confirmation")
		return nil
	}

	data := orderConfirmationData{
		OrderNumber: orderNumber,
		Total:       formatVND(total),
		CompanyName: s.config.Company.Name,
	}

	var body bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render order confirmation: %w", err)
	}

	subject := fmt.Sprintf("Xac nhan thanh toan don hang %s", orderNumber)
	return s.send(to, subject, body.String())
}

// send delivers a single HTML message over SMTP
func (s *Service) send(to, subject, htmlBody string) error {
	cfg := s.config.Email
	if cfg.SMTPHost == "" {
		return fmt.Errorf("smtp configuration incomplete: missing host")
	}

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, cfg.FromEmail, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	s.log.WithField("to", to).Info("sent order confirmation email")
	return nil
}

// formatVND renders an amount with thousands separators, Vietnamese style
func formatVND(amount int64) string {
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
