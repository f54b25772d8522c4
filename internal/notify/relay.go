package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/carhire/apiserver/config"
	"github.com/carhire/apiserver/internal/mq"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// Subscriber is the slice of mq.MQ the relay needs.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler mq.Handler) error
}

// Relay drains queued emails and hands them to a Sender.
type Relay struct {
	queue   Subscriber
	channel string
	sender  Sender
	logger  *slog.Logger
}

// NewRelay constructs a Relay that consumes channel and delivers through sender.
func NewRelay(queue Subscriber, channel string, sender Sender, logger *slog.Logger) *Relay {
	return &Relay{queue: queue, channel: channel, sender: sender, logger: logger}
}

// Run blocks until ctx is cancelled or the subscription fails.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("relay started", "channel", r.channel)
	err := r.queue.Subscribe(ctx, r.channel, r.handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *Relay) handle(ctx context.Context, msg mq.Message) error {
	var email Email
	if err := json.Unmarshal(msg.Data, &email); err != nil || email.To == "" {
		// Undecodable messages are acknowledged so they are not redelivered forever.
		r.logger.Error("dropping malformed email message", "message_id", msg.ID, "err", err)
		return nil
	}

	if err := r.sender.Send(ctx, email); err != nil {
		r.logger.Warn("email delivery failed", "message_id", msg.ID, "kind", email.Kind, "err", err)
		return err
	}
	r.logger.Info("email delivered", "message_id", msg.ID, "kind", email.Kind)
	return nil
}

// SMTPSender delivers email over SMTP with PLAIN auth.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now  func() time.Time
}

// NewSMTPSender fails when the credentials or the host are missing.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Username) == "" || strings.TrimSpace(cfg.Password) == "" {
		return nil, errors.New("email credentials are required")
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPSender{
		addr: cfg.Host + ":" + strconv.Itoa(cfg.Port),
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
		from: from,
		send: smtp.SendMail,
		now:  time.Now,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(s.from, email, s.now())
	if err := s.send(s.addr, s.auth, s.from, []string{email.To}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from string, email Email, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + email.To + "\r\n")
	b.WriteString("Subject: " + email.Subject + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(email.HTML)
	return []byte(b.String())
}
