package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/carhire/apiserver/config"
)

func TestOpenDisabled(t *testing.T) {
	_, err := Open(context.Background(), config.MQConfig{Backend: "none"})
	require.ErrorIs(t, err, ErrDisabled)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.MQConfig{Backend: "kafka"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDisabled)
}

func TestOpenRabbitMQRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), config.MQConfig{Backend: "rabbitmq"})
	require.ErrorContains(t, err, "rabbitmq url is required")
}

func TestMessageIDsAreULIDs(t *testing.T) {
	a, b := newMessageID(), newMessageID()
	require.NotEqual(t, a, b)
	_, err := ulid.ParseStrict(a)
	require.NoError(t, err)
}

func TestMemoryPublishSubscribe(t *testing.T) {
	broker := New(NewMemory(4))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	id, err := broker.PublishJSON(ctx, "notifications", map[string]string{"to": "ada@example.com"}, nil)
	require.NoError(t, err)

	got := make(chan Message, 1)
	go func() {
		_ = broker.Subscribe(ctx, "notifications", func(_ context.Context, msg Message) error {
			got <- msg
			cancel()
			return nil
		})
	}()

	select {
	case msg := <-got:
		require.Equal(t, id, msg.ID)
		require.JSONEq(t, `{"to":"ada@example.com"}`, string(msg.Data))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestMemoryRedeliversOnce(t *testing.T) {
	backend := NewMemory(1)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := backend.Publish(ctx, "q", []byte("x"), nil)
	require.NoError(t, err)

	attempts := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- backend.Subscribe(ctx, "q", func(context.Context, Message) error {
			attempts <- struct{}{}
			if len(attempts) == 2 {
				cancel()
			}
			return errors.New("smtp down")
		})
	}()

	require.ErrorIs(t, <-done, context.Canceled)
	require.Len(t, attempts, 2)
}

func TestMemoryClosed(t *testing.T) {
	backend := NewMemory(1)
	require.NoError(t, backend.Close())
	_, err := backend.Publish(context.Background(), "q", []byte("x"), nil)
	require.Error(t, err)
}
