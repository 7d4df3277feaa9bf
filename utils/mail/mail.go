package mail

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/joy095/venue/config"
	"github.com/joy095/venue/logger"
	"github.com/joy095/venue/models/booking_models"
	"github.com/joy095/venue/models/shared_models"
	gomail "gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const bookingStatusTemplate = "booking_status.html"

// Mailer emails clubs when an admin or the expiry job changes their booking.
// Without SMTP_HOST it only logs, so development setups need no mail server.
type Mailer struct {
	from      string
	templates *template.Template
	send      func(*gomail.Message) error
}

// NewMailer builds a Mailer from the SMTP settings in cfg.
func NewMailer(cfg *config.AppConfig) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	m := &Mailer{from: cfg.FromEmail, templates: tmpl}

	if cfg.SMTPHost == "" {
		logger.WarnLogger.Warn("SMTP_HOST not set, booking emails will only be logged")
		return m, nil
	}

	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	dialer := gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUsername, cfg.SMTPPassword)
	dialer.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost}
	m.send = func(msg *gomail.Message) error {
		logger.InfoLogger.Infof("Attempting to connect to SMTP server: %s:%d", cfg.SMTPHost, port)
		return dialer.DialAndSend(msg)
	}
	return m, nil
}

type bookingStatusData struct {
	BookingID      string
	EventName      string
	VenueName      string
	Status         string
	PreviousStatus string
	FromDate       string
	FromTime       string
	ToDate         string
	ToTime         string
	Year           int
}

// BookingStatusChanged tells the requesting club about a status change.
func (m *Mailer) BookingStatusChanged(b *booking_models.Booking, venueName string, previous shared_models.BookingStatus) error {
	if b.RequesterEmail == "" {
		logger.WarnLogger.Warnf("Booking %s has no requester email, skipping notification", b.ID)
		return nil
	}

	var body bytes.Buffer
	err := m.templates.ExecuteTemplate(&body, bookingStatusTemplate, bookingStatusData{
		BookingID:      b.ID.String(),
		EventName:      b.EventName,
		VenueName:      venueName,
		Status:         b.Status.String(),
		PreviousStatus: previous.String(),
		FromDate:       b.FromDate,
		FromTime:       b.FromTime,
		ToDate:         b.ToDate,
		ToTime:         b.ToTime,
		Year:           time.Now().Year(),
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to execute email template %s: %v", bookingStatusTemplate, err)
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", b.RequesterEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Booking %s: %s", b.Status, b.EventName))
	msg.SetBody("text/html", body.String())

	if m.send == nil {
		logger.InfoLogger.Infof("Email to %s (not sent, SMTP disabled): booking %s is %s", b.RequesterEmail, b.ID, b.Status)
		return nil
	}
	if err := m.send(msg); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", b.RequesterEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	logger.InfoLogger.Infof("Sent booking %s status email to %s", b.ID, b.RequesterEmail)
	return nil
}
