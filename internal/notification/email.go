package notification

import (
	"errors"
	"fmt"
	"log"
	"regexp"

	"gopkg.in/gomail.v2"

	"mediremind-backend/config"
)

// DeliveryReason classifies why an email delivery failed.
type DeliveryReason string

const (
	ReasonAuth      DeliveryReason = "authentication failed"
	ReasonRecipient DeliveryReason = "recipient refused"
	ReasonTransport DeliveryReason = "transport error"
)

// DeliveryError reports a failed email delivery with its classified reason.
// It is never fatal to the caller; the reminder stays actionable and the
// next poll tick retries naturally.
type DeliveryError struct {
	To     string
	Reason DeliveryReason
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("email to %s failed: %s: %v", e.To, e.Reason, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// EmailSender delivers one rendered message to one mailbox.
type EmailSender interface {
	Send(to, subject, body string) error
}

// NewEmailSender returns an SMTP-backed sender when credentials are
// configured, otherwise a mock sender that logs the message and reports
// success so the rest of the pipeline runs without live credentials.
func NewEmailSender(cfg config.SMTPConfig) EmailSender {
	if !cfg.Configured() {
		log.Println("SMTP credentials not configured; email delivery runs in mock mode")
		return &MockEmailSender{}
	}
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// MockEmailSender logs the rendered message instead of delivering it.
type MockEmailSender struct{}

func (s *MockEmailSender) Send(to, subject, body string) error {
	preview := body
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	log.Printf("[MOCK EMAIL] To: %s", to)
	log.Printf("[MOCK EMAIL] Subject: %s", subject)
	log.Printf("[MOCK EMAIL] Body: %s", preview)
	return nil
}

// SMTPSender delivers mail through a configured SMTP relay.
type SMTPSender struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return &DeliveryError{To: to, Reason: classifySMTPError(err), Err: err}
	}
	log.Printf("Email sent successfully to %s", to)
	return nil
}

var smtpCodeRe = regexp.MustCompile(`\b(\d{3})\b`)

// classifySMTPError maps the SMTP reply code buried in the transport error
// to a delivery reason. 53x replies are credential problems, 55x replies
// name a rejected recipient, everything else is a generic transport fault.
func classifySMTPError(err error) DeliveryReason {
	for e := err; e != nil; e = errors.Unwrap(e) {
		m := smtpCodeRe.FindStringSubmatch(e.Error())
		if m == nil {
			continue
		}
		switch m[1] {
		case "530", "534", "535":
			return ReasonAuth
		case "550", "551", "553":
			return ReasonRecipient
		}
	}
	return ReasonTransport
}
