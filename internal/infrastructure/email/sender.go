// Package email sends HTML notifications over SMTP.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	jemail "github.com/jordan-wright/email"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrNoRecipients is returned when a message has no valid recipient
var ErrNoRecipients = errors.New("email has no recipients")

// Attachment is a file attached to a message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an outgoing email
type Message struct {
	To          []string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP sender when a host is configured, otherwise a
// sender that only logs.
func NewSender(cfg config.SMTPConfig, logger *zap.Logger) Sender {
	if !cfg.Enabled() {
		logger.Info("SMTP host not configured, emails will be logged only")
		return &LogSender{logger: logger}
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// SMTPSender sends mail through the configured SMTP server
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// Send builds and delivers msg, giving up when ctx is done or the timeout elapses
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	e, err := s.build(msg)
	if err != nil {
		return err
	}

	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		// 465 is implicit TLS; other ports upgrade with STARTTLS when offered
		if s.cfg.Port == 465 {
			done <- e.SendWithTLS(addr, auth, &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12})
			return
		}
		done <- e.Send(addr, auth)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", strings.Join(msg.To, ","), err)
		}
		s.logger.Info("email sent",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Int("attachments", len(msg.Attachments)),
		)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email to %s: %w", strings.Join(msg.To, ","), ctx.Err())
	}
}

func (s *SMTPSender) build(msg Message) (*jemail.Email, error) {
	return buildEmail(s.cfg, msg)
}

func buildEmail(cfg config.SMTPConfig, msg Message) (*jemail.Email, error) {
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return nil, fmt.Errorf("invalid recipient %q: %w", addr, err)
		}
		to = append(to, addr)
	}
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}

	e := jemail.NewEmail()
	from := mail.Address{Name: cfg.FromName, Address: cfg.From}
	e.From = from.String()
	e.To = to
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTML)
	if msg.Text != "" {
		e.Text = []byte(msg.Text)
	}
	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if _, err := e.Attach(bytes.NewReader(a.Data), a.Filename, contentType); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Filename, err)
		}
	}
	return e, nil
}

// LogSender records messages in the log instead of sending them
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message envelope
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	names := make([]string, len(msg.Attachments))
	for i, a := range msg.Attachments {
		names[i] = a.Filename
	}
	s.logger.Info("email not sent, SMTP disabled",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Strings("attachments", names),
	)
	return nil
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = (*LogSender)(nil)
)
