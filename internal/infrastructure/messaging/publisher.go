// Package messaging moves bundle dispatch work through RabbitMQ.
// The outbox processor hands BundleDispatchRequested events to the
// publisher, and the worker consumes the dispatch queue to fan offers
// out to athletes.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nilmarket/backend/internal/domain/bundle"
	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/nilmarket/backend/internal/infrastructure/config"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DispatchMessage is the wire format for a dispatch job on the queue
type DispatchMessage struct {
	TenantID   string                   `json:"tenant_id"`
	BundleID   string                   `json:"bundle_id"`
	CampaignID string                   `json:"campaign_id"`
	BundleName string                   `json:"bundle_name"`
	ExpiresAt  string                   `json:"expires_at"`
	Offers     []bundle.BundleOfferInfo `json:"offers"`
}

// DispatchPublisher publishes bundle dispatch jobs to RabbitMQ.
// It subscribes to the in-process event bus for BundleDispatchRequested,
// so the delivery path is outbox, bus, queue.
type DispatchPublisher struct {
	cfg    config.MessagingConfig
	logger *zap.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewDispatchPublisher creates a publisher and declares the exchange and queue
func NewDispatchPublisher(cfg config.MessagingConfig, logger *zap.Logger) (*DispatchPublisher, error) {
	p := &DispatchPublisher{
		cfg:    cfg,
		logger: logger,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *DispatchPublisher) connect() error {
	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := declareDispatchTopology(ch, p.cfg); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = ch
	p.mu.Unlock()
	return nil
}

// DeadLetterExchangeName returns the dead-letter exchange for the configured exchange
func DeadLetterExchangeName(cfg config.MessagingConfig) string {
	return cfg.Exchange + ".dlx"
}

// DeadLetterQueueName returns the dead-letter queue for the dispatch queue
func DeadLetterQueueName(cfg config.MessagingConfig) string {
	return cfg.DispatchQueue + ".dead"
}

// dispatchQueueArgs returns the arguments for the dispatch queue declaration.
// Messages the consumer rejects without requeue are routed to the dead-letter
// exchange instead of being discarded.
func dispatchQueueArgs(cfg config.MessagingConfig) amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    DeadLetterExchangeName(cfg),
		"x-dead-letter-routing-key": cfg.DispatchQueue,
	}
}

// declareDispatchTopology declares the exchange, the dispatch queue, the
// dead-letter exchange and queue, and the bindings.
// Declaration is idempotent, so publisher and consumer both call it and
// either side can start first.
func declareDispatchTopology(ch *amqp.Channel, cfg config.MessagingConfig) error {
	if err := ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(
		DeadLetterExchangeName(cfg),
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare dead-letter exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		DeadLetterQueueName(cfg),
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare dead-letter queue: %w", err)
	}

	if err := ch.QueueBind(DeadLetterQueueName(cfg), cfg.DispatchQueue, DeadLetterExchangeName(cfg), false, nil); err != nil {
		return fmt.Errorf("failed to bind dead-letter queue: %w", err)
	}

	if _, err := ch.QueueDeclare(
		cfg.DispatchQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		dispatchQueueArgs(cfg),
	); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(cfg.DispatchQueue, cfg.DispatchQueue, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

// Handle publishes a dispatch job for a BundleDispatchRequested event
func (p *DispatchPublisher) Handle(ctx context.Context, event shared.DomainEvent) error {
	dispatchEvent, ok := event.(*bundle.BundleDispatchRequestedEvent)
	if !ok {
		return nil
	}

	msg := DispatchMessage{
		TenantID:   dispatchEvent.TenantID().String(),
		BundleID:   dispatchEvent.BundleID.String(),
		CampaignID: dispatchEvent.CampaignID.String(),
		BundleName: dispatchEvent.BundleName,
		ExpiresAt:  dispatchEvent.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		Offers:     dispatchEvent.Offers,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode dispatch message: %w", err)
	}

	p.mu.Lock()
	ch := p.channel
	p.mu.Unlock()
	if ch == nil {
		return fmt.Errorf("publisher channel is closed")
	}

	if err := ch.Publish(
		p.cfg.Exchange,
		p.cfg.DispatchQueue, // routing key
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID().String(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("failed to publish dispatch message: %w", err)
	}

	p.logger.Info("published bundle dispatch job",
		zap.String("bundle_id", msg.BundleID),
		zap.Int("offer_count", len(msg.Offers)),
	)
	return nil
}

// EventTypes returns the event types this handler subscribes to
func (p *DispatchPublisher) EventTypes() []string {
	return []string{bundle.EventTypeBundleDispatchRequested}
}

// Close shuts down the channel and connection
func (p *DispatchPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
		p.conn = nil
	}
	return nil
}

// Ensure DispatchPublisher implements EventHandler
var _ shared.EventHandler = (*DispatchPublisher)(nil)
