package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	domevents "mechmarket/internal/domain/events"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitConfig holds the broker connection settings for the event bridge.
type RabbitConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	VHost             string
	ExchangeName      string
	ConnectRetries    int
	ConnectRetryDelay time.Duration
	PublishRetries    int
	PublishRetryDelay time.Duration
}

// RabbitPublisher bridges the in-process bus onto a durable topic exchange.
// The event topic doubles as the routing key, so consumers bind patterns
// like "payment.*" or "change_order.#" directly.
type RabbitPublisher struct {
	cfg     RabbitConfig
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

func NewRabbitPublisher(cfg RabbitConfig, logger *slog.Logger) (*RabbitPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ExchangeName == "" {
		cfg.ExchangeName = "mechmarket.events"
	}
	if cfg.ConnectRetries <= 0 {
		cfg.ConnectRetries = 3
	}
	if cfg.ConnectRetryDelay <= 0 {
		cfg.ConnectRetryDelay = 2 * time.Second
	}
	if cfg.PublishRetries <= 0 {
		cfg.PublishRetries = 3
	}
	if cfg.PublishRetryDelay <= 0 {
		cfg.PublishRetryDelay = 100 * time.Millisecond
	}

	p := &RabbitPublisher{cfg: cfg, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *RabbitPublisher) connect() error {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		p.cfg.User, p.cfg.Password, p.cfg.Host, p.cfg.Port, p.cfg.VHost,
	)

	var err error
	for attempt := 1; attempt <= p.cfg.ConnectRetries; attempt++ {
		p.conn, err = amqp.Dial(dsn)
		if err == nil {
			break
		}
		p.logger.Warn("rabbitmq connection failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.cfg.ConnectRetries),
			slog.Any("error", err),
		)
		if attempt < p.cfg.ConnectRetries {
			time.Sleep(p.cfg.ConnectRetryDelay)
		}
	}
	if err != nil {
		return fmt.Errorf("connecting to rabbitmq after %d attempts: %w", p.cfg.ConnectRetries, err)
	}

	p.channel, err = p.conn.Channel()
	if err != nil {
		p.conn.Close()
		return fmt.Errorf("opening rabbitmq channel: %w", err)
	}

	if err := p.channel.ExchangeDeclare(
		p.cfg.ExchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		p.channel.Close()
		p.conn.Close()
		return fmt.Errorf("declaring exchange: %w", err)
	}

	p.logger.Info("rabbitmq event bridge connected",
		slog.String("exchange", p.cfg.ExchangeName),
	)
	return nil
}

// Handle is the bus subscriber: it serializes the event and publishes it
// with bounded retries and exponential backoff. Delivery stays best-effort;
// an exhausted retry only logs, it never propagates back to the domain.
func (p *RabbitPublisher) Handle(e domevents.Event) {
	body, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("event serialization failed",
			slog.String("topic", e.Topic),
			slog.Any("error", err),
		)
		return
	}

	var lastErr error
	for attempt := 0; attempt <= p.cfg.PublishRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		lastErr = p.channel.PublishWithContext(
			ctx,
			p.cfg.ExchangeName,
			e.Topic, // routing key
			false,   // mandatory
			false,   // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				MessageId:    e.ID,
				Body:         body,
				DeliveryMode: amqp.Persistent,
				Timestamp:    e.OccurredAt,
			},
		)
		cancel()
		if lastErr == nil {
			return
		}
		if attempt < p.cfg.PublishRetries {
			backoff := p.cfg.PublishRetryDelay * (1 << attempt)
			p.logger.Warn("event publish failed, retrying",
				slog.String("topic", e.Topic),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
				slog.Any("error", lastErr),
			)
			time.Sleep(backoff)
		}
	}

	p.logger.Error("event publish failed after all retries",
		slog.String("topic", e.Topic),
		slog.String("event_id", e.ID),
		slog.Any("error", lastErr),
	)
}

func (p *RabbitPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
