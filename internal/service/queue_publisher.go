// Package queue_publisher provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package queue_publisher

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/absolute-cinema/ticketing-engine/internal/queue"
)

// PublishTicketsReserved publishes a TicketsReservedEvent to the
// "ticket.reserved" queue. Messages are marked as persistent.
func PublishTicketsReserved(ctx context.Context, event q.TicketsReservedEvent) error {
    return publishJSON(ctx, "ticket.reserved", event)
}

// PublishTicketValidated publishes a TicketValidatedEvent to the
// "ticket.validated" queue.
func PublishTicketValidated(ctx context.Context, event q.TicketValidatedEvent) error {
    return publishJSON(ctx, "ticket.validated", event)
}

// publishJSON dials the broker, declares the queue (idempotent,
// durable) and publishes the event as JSON. The function attempts to
// be robust and to never panic; any error is logged and returned so
// the caller can choose to ignore it.
func publishJSON(ctx context.Context, queueName string, event any) error {
    conn, err := amqp.Dial(q.BrokerURL())
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        queueName, // name
        true,      // durable
        false,     // autoDelete
        false,     // exclusive
        false,     // noWait
        nil,       // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",        // default exchange
        queueName, // routing key = queue name
        false,     // mandatory
        false,     // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }

    return nil
}
