// Package notify delivers password-reset messages produced by the identity
// service.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"carrete-admin/internal/identity"
)

// resetEnvelope is the message body consumed by the mail worker.
type resetEnvelope struct {
	Type      string    `json:"type"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func encodeResetMessage(msg identity.ResetMessage) ([]byte, error) {
	return json.Marshal(resetEnvelope{
		Type:      "password_reset",
		Email:     msg.Email,
		Token:     msg.Token,
		ExpiresAt: msg.ExpiresAt.UTC(),
	})
}

// AMQPMailer publishes reset messages to a durable queue on the default
// exchange.
type AMQPMailer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   *zap.Logger
	mu    sync.Mutex
}

var _ identity.Mailer = (*AMQPMailer)(nil)

func DialAMQP(url, queue string, log *zap.Logger) (*AMQPMailer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	log.Info("reset mail queue ready", zap.String("queue", queue))
	return &AMQPMailer{conn: conn, ch: ch, queue: queue, log: log}, nil
}

func (m *AMQPMailer) SendReset(ctx context.Context, msg identity.ResetMessage) error {
	body, err := encodeResetMessage(msg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn.IsClosed() {
		return fmt.Errorf("rabbitmq: connection closed")
	}
	err = m.ch.PublishWithContext(ctx, "", m.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish reset message: %w", err)
	}
	m.log.Debug("reset message published", zap.String("queue", m.queue))
	return nil
}

func (m *AMQPMailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ch != nil && !m.ch.IsClosed() {
		if err := m.ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %w", err)
		}
	}
	if m.conn != nil && !m.conn.IsClosed() {
		if err := m.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	return nil
}
