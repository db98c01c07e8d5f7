// Package mq wraps the RabbitMQ connection used for inbound events.
package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	queue    string
	keys     []string
}

// DeadLetterExchange names the fanout exchange that receives deliveries
// rejected without requeue.
func DeadLetterExchange(exchange string) string {
	return exchange + ".dlx"
}

func DeadLetterQueue(queue string) string {
	return queue + ".dead"
}

func queueArgs(exchange string) amqp.Table {
	return amqp.Table{"x-dead-letter-exchange": DeadLetterExchange(exchange)}
}

// NewConsumer declares a durable topic exchange and queue and binds keys.
// Rejected deliveries are routed to a dead letter queue next to it.
// prefetch bounds the unacknowledged deliveries held by this consumer.
func NewConsumer(url, exchange, queue string, keys []string, prefetch int) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	fail := func(step string, err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fail("set qos", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}

	dlx := DeadLetterExchange(exchange)
	if err := ch.ExchangeDeclare(dlx, "fanout", true, false, false, false, nil); err != nil {
		return fail("declare dead letter exchange", err)
	}
	dead, err := ch.QueueDeclare(DeadLetterQueue(queue), true, false, false, false, nil)
	if err != nil {
		return fail("declare dead letter queue", err)
	}
	if err := ch.QueueBind(dead.Name, "", dlx, false, nil); err != nil {
		return fail("bind dead letter queue", err)
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, queueArgs(exchange))
	if err != nil {
		return fail("declare queue", err)
	}
	for _, rk := range keys {
		if err := ch.QueueBind(q.Name, rk, exchange, false, nil); err != nil {
			return fail("bind "+rk, err)
		}
	}
	return &Consumer{conn: conn, ch: ch, exchange: exchange, queue: q.Name, keys: keys}, nil
}

func (c *Consumer) Deliveries(ctx context.Context) (<-chan amqp.Delivery, error) {
	return c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
