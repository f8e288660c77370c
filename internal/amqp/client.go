// Package amqp forwards expense change events to a RabbitMQ exchange so
// processes outside this one can react to mutations.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/SscSPs/expense_tracker_app/internal/core/events"
	"github.com/SscSPs/expense_tracker_app/internal/middleware"
	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	routingKey   string
}

// NewClient dials the broker and declares a durable topic exchange.
func NewClient(url, exchangeName, routingKey string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		routingKey:   routingKey,
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return client, nil
}

// PublishExpenseChanged publishes one change event as a persistent JSON message.
func (c *Client) PublishExpenseChanged(ctx context.Context, ev domain.ExpenseChanged) error {
	body, err := NewExpenseChangedMessage(ev).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.routingKey+"."+string(ev.Kind),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    ev.OccurredAt,
			MessageId:    ev.ExpenseID,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).DebugContext(ctx, "Published expense change",
		slog.String("kind", string(ev.Kind)),
		slog.String("expense_id", ev.ExpenseID),
		slog.String("exchange", c.exchangeName))
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Publisher is the part of Client the forwarder needs.
type Publisher interface {
	PublishExpenseChanged(ctx context.Context, ev domain.ExpenseChanged) error
}

// NewForwarder returns a hub handler that relays every event to pub.
// Broker failures are logged and never reach the mutation that caused them.
func NewForwarder(pub Publisher) events.Handler {
	return func(ctx context.Context, ev domain.ExpenseChanged) {
		if pub == nil {
			return
		}
		if err := pub.PublishExpenseChanged(context.WithoutCancel(ctx), ev); err != nil {
			middleware.GetLoggerFromCtx(ctx).WarnContext(ctx, "Failed to forward expense change",
				slog.String("kind", string(ev.Kind)),
				slog.String("expense_id", ev.ExpenseID),
				slog.String("error", err.Error()))
		}
	}
}
