// Package consumer applies payment confirmations delivered over RabbitMQ.
package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"walk-booking/internal/dto/request"
	"walk-booking/internal/dto/response"
	"walk-booking/pkg/apperr"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var ErrDeliveriesClosed = errors.New("delivery channel closed")

type DeliverySource interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
}

type PaymentApplier interface {
	ApplyEvent(ctx context.Context, event *request.PaymentConfirmedEvent) (*response.PaymentAppliedResponse, error)
}

type PaymentConsumer struct {
	source     DeliverySource
	payments   PaymentApplier
	routingKey string
	log        *zap.Logger
}

func NewPaymentConsumer(source DeliverySource, payments PaymentApplier, routingKey string, log *zap.Logger) *PaymentConsumer {
	return &PaymentConsumer{
		source:     source,
		payments:   payments,
		routingKey: routingKey,
		log:        log.With(zap.String("consumer", "payment")),
	}
}

// Run handles deliveries until ctx is done. It returns ErrDeliveriesClosed
// if the broker closes the channel first.
func (pc *PaymentConsumer) Run(ctx context.Context) error {
	msgs, err := pc.source.Deliveries(ctx)
	if err != nil {
		return err
	}

	pc.log.Info("Payment consumer started", zap.String("routing_key", pc.routingKey))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrDeliveriesClosed
			}
			pc.handle(ctx, d)
		}
	}
}

// handle acks applied and duplicate events, dead-letters malformed ones and
// those for users without a profile, and requeues deliveries that failed for
// transient reasons.
func (pc *PaymentConsumer) handle(ctx context.Context, d amqp.Delivery) {
	if d.RoutingKey != pc.routingKey {
		pc.log.Debug("Ignoring delivery", zap.String("routing_key", d.RoutingKey))
		pc.settle(d.Ack(false))
		return
	}

	var event request.PaymentConfirmedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		pc.log.Warn("Malformed payment event", zap.Error(err))
		pc.settle(d.Nack(false, false))
		return
	}

	res, err := pc.payments.ApplyEvent(ctx, &event)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindUserNotFound:
			// nothing to credit yet; the broker moves it to the dead letter queue
			pc.log.Error("Payment event for unknown user dead-lettered",
				zap.String("event_id", event.EventID),
				zap.String("user_id", event.UserID),
				zap.Error(err),
			)
			pc.settle(d.Nack(false, false))
		case apperr.KindValidation:
			pc.log.Warn("Rejected payment event",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
			pc.settle(d.Nack(false, false))
		default:
			pc.log.Error("Payment event failed, requeueing",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
			pc.settle(d.Nack(false, true))
		}
		return
	}

	pc.log.Debug("Payment event handled",
		zap.String("event_id", res.EventID),
		zap.Bool("applied", res.Applied),
	)
	pc.settle(d.Ack(false))
}

func (pc *PaymentConsumer) settle(err error) {
	if err != nil {
		pc.log.Error("Failed to settle delivery", zap.Error(err))
	}
}
