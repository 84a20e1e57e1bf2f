package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Publisher publishes reservation events to a durable queue.  It dials per
// publish, which keeps the request path free of long-lived channel state;
// event volume is one message per reservation transition.
type Publisher struct {
    url    string
    queue  string
    logger *zap.Logger
}

// NewPublisher returns a Publisher for the reservation.events queue.
func NewPublisher(url string, logger *zap.Logger) *Publisher {
    return &Publisher{url: url, queue: ReservationEventsQueue, logger: logger}
}

// Publish sends event as a persistent JSON message.  Errors are logged and
// returned so the caller can decide to ignore them.
func (p *Publisher) Publish(ctx context.Context, event ReservationEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.logger.Warn("rabbitmq: dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.logger.Warn("rabbitmq: channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        p.logger.Warn("rabbitmq: queue declare failed", zap.String("queue", p.queue), zap.Error(err))
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    event.ID,
        Type:         string(event.Type),
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    // default exchange, routing key = queue name
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        p.logger.Warn("rabbitmq: publish failed", zap.String("type", string(event.Type)), zap.Error(err))
        return err
    }
    return nil
}

// NopPublisher drops events.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReservationEvent) error { return nil }
