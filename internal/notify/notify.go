// Package notify renders account emails and hands them to a delivery path:
// a message queue drained by the relay, or the log when no queue is set up.
package notify

import (
	"context"
	"fmt"
	"log/slog"
)

type Kind string

const (
	KindVerification Kind = "verification"
	KindWelcome      Kind = "welcome"
)

// Email is a rendered message ready for delivery.
type Email struct {
	Kind    Kind   `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Dispatcher sends the emails of the account lifecycle.
type Dispatcher interface {
	SendVerification(ctx context.Context, to, name, code string) error
	SendWelcome(ctx context.Context, to, name string) error
}

// Publisher is the slice of mq.MQ the queue dispatcher needs.
type Publisher interface {
	PublishJSON(ctx context.Context, channel string, v any, attrs map[string]string) (string, error)
}

// QueueDispatcher publishes rendered emails to a message queue channel.
type QueueDispatcher struct {
	queue   Publisher
	channel string
	logger  *slog.Logger
}

// NewQueueDispatcher publishes each rendered email as JSON on channel.
func NewQueueDispatcher(queue Publisher, channel string, logger *slog.Logger) *QueueDispatcher {
	return &QueueDispatcher{queue: queue, channel: channel, logger: logger}
}

func (d *QueueDispatcher) SendVerification(ctx context.Context, to, name, code string) error {
	email, err := RenderVerification(to, name, code)
	if err != nil {
		return err
	}
	return d.publish(ctx, email)
}

func (d *QueueDispatcher) SendWelcome(ctx context.Context, to, name string) error {
	email, err := RenderWelcome(to, name)
	if err != nil {
		return err
	}
	return d.publish(ctx, email)
}

func (d *QueueDispatcher) publish(ctx context.Context, email Email) error {
	id, err := d.queue.PublishJSON(ctx, d.channel, email, map[string]string{"kind": string(email.Kind)})
	if err != nil {
		return fmt.Errorf("publish %s email: %w", email.Kind, err)
	}
	d.logger.DebugContext(ctx, "email queued", "kind", email.Kind, "message_id", id)
	return nil
}

// LogDispatcher records emails in the log instead of sending them.
// The verification code is only logged at debug level.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher constructs a LogDispatcher writing to logger.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) SendVerification(ctx context.Context, to, name, code string) error {
	d.logger.InfoContext(ctx, "email delivery disabled", "kind", KindVerification, "to", to)
	d.logger.DebugContext(ctx, "verification code", "to", to, "code", code)
	return nil
}

func (d *LogDispatcher) SendWelcome(ctx context.Context, to, name string) error {
	d.logger.InfoContext(ctx, "email delivery disabled", "kind", KindWelcome, "to", to)
	return nil
}
