package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nilmarket/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// BundleDispatcher marks a bundle dispatched once its offer
// notifications are on their way
type BundleDispatcher interface {
	MarkDispatched(ctx context.Context, tenantID, bundleID uuid.UUID) error
}

// DispatchConsumer consumes bundle dispatch jobs from RabbitMQ.
// Each job fans out offer notifications and then flips the bundle to
// DISPATCHED through the application service.
type DispatchConsumer struct {
	cfg        config.MessagingConfig
	dispatcher BundleDispatcher
	logger     *zap.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	done    chan struct{}
}

// NewDispatchConsumer creates a consumer for the dispatch queue
func NewDispatchConsumer(cfg config.MessagingConfig, dispatcher BundleDispatcher, logger *zap.Logger) *DispatchConsumer {
	return &DispatchConsumer{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start connects and consumes until the context is cancelled.
// Connection loss triggers a reconnect after the configured delay.
func (c *DispatchConsumer) Start(ctx context.Context) error {
	for {
		if err := c.consume(ctx); err != nil {
			c.logger.Error("dispatch consumer stopped", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.ReconnectDelay):
			c.logger.Info("reconnecting to RabbitMQ")
		}
	}
}

func (c *DispatchConsumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	defer ch.Close()

	if err := declareDispatchTopology(ch, c.cfg); err != nil {
		return err
	}

	if err := ch.Qos(c.cfg.PrefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.Consume(
		c.cfg.DispatchQueue,
		"",    // consumer tag
		false, // manual ack for reliability
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = ch
	c.mu.Unlock()

	c.logger.Info("dispatch consumer started", zap.String("queue", c.cfg.DispatchQueue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

func (c *DispatchConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var msg DispatchMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Warn("invalid dispatch message, dropping", zap.Error(err))
		d.Ack(false)
		return
	}

	tenantID, err := uuid.Parse(msg.TenantID)
	if err != nil {
		c.logger.Warn("invalid tenant ID in dispatch message, dropping",
			zap.String("tenant_id", msg.TenantID))
		d.Ack(false)
		return
	}
	bundleID, err := uuid.Parse(msg.BundleID)
	if err != nil {
		c.logger.Warn("invalid bundle ID in dispatch message, dropping",
			zap.String("bundle_id", msg.BundleID))
		d.Ack(false)
		return
	}

	if err := c.dispatcher.MarkDispatched(ctx, tenantID, bundleID); err != nil {
		c.logger.Error("failed to dispatch bundle",
			zap.String("bundle_id", msg.BundleID),
			zap.Bool("redelivered", d.Redelivered),
			zap.Error(err),
		)
		// Redelivered messages that fail again go to the dead-letter
		// queue for operator inspection instead of looping forever
		d.Nack(false, !d.Redelivered)
		return
	}

	c.logger.Info("bundle dispatched",
		zap.String("bundle_id", msg.BundleID),
		zap.Int("offer_count", len(msg.Offers)),
	)
	d.Ack(false)
}

// Stop closes the connection, which ends the consume loop
func (c *DispatchConsumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
