package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/rental-service/internal/config"
	"github.com/Dan9191/rental-service/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	s := &Sender{
		cfg:    cfg,
		logger: logger,
	}
	s.send = s.sendSMTP
	return s
}

func (s *Sender) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	return e.Send(addr, auth)
}

// SendUnpaidDigest emails the landlord a list of tenants whose rent is still unpaid
func (s *Sender) SendUnpaidDigest(tenants []models.Tenant, asOf time.Time) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.LandlordEmail}
	e.Subject = fmt.Sprintf("Unpaid Rent Reminder: %d tenant(s) as of %s", len(tenants), asOf.Format("2006-01-02"))
	e.Text = []byte(digestBody(tenants, asOf))

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send unpaid rent digest to %s: %v", s.cfg.LandlordEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", s.cfg.LandlordEmail, e.Subject)
	return nil
}

func digestBody(tenants []models.Tenant, asOf time.Time) string {
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	fmt.Fprintf(&b, "The following tenants have not paid rent as of %s:\n\n", asOf.Format("2006-01-02"))

	var outstanding int64
	for _, t := range tenants {
		fmt.Fprintf(&b, "- %s (House %s), contact %s: rent %d, last payment %s\n",
			t.Name, t.HouseNumber, t.Contact, t.MonthlyRent, t.LastPaymentDate)
		outstanding += t.MonthlyRent
	}
	fmt.Fprintf(&b, "\nTotal outstanding rent: %d\n", outstanding)
	b.WriteString("\nBest regards,\nRental Service")
	return b.String()
}
