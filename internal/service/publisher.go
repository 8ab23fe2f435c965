package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/config"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

const (
	publishConfirmTimeout = 5 * time.Second

	// ReportMessageType is set on every published report.
	ReportMessageType = "analysis.report"
)

// ReportPublisher publishes finished reports to a RabbitMQ topic exchange and waits for
// broker confirmation.
type ReportPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  *config.RabbitMQConfig
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewReportPublisher connects and declares the exchange, queue and binding.
func NewReportPublisher(cfg *config.RabbitMQConfig, logger *zap.Logger) (*ReportPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &ReportPublisher{
		config: cfg,
		logger: logger,
	}

	if err := p.connect(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *ReportPublisher) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	connURL := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		p.config.User, p.config.Password, p.config.Host, p.config.Port)

	conn, err := amqp.Dial(connURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.config.Exchange, // name
		"topic",           // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		p.config.Queue, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		amqp.Table{
			"x-message-ttl": 7 * 24 * 60 * 60 * 1000, // 7 days
			"x-max-length":  10000,
		},
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(
		p.config.Queue,
		p.config.RoutingKey,
		p.config.Exchange,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	p.conn = conn
	p.channel = ch

	p.logger.Info("Connected to RabbitMQ",
		zap.String("exchange", p.config.Exchange),
		zap.String("queue", p.config.Queue),
	)

	return nil
}

// PublishReport sends report as a persistent JSON message keyed by the report ID.
// Publishes are serialised so each confirmation pairs with its own message.
func (p *ReportPublisher) PublishReport(ctx context.Context, report *models.AnalysisReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	confirmation, err := p.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		p.config.Exchange,   // exchange
		p.config.RoutingKey, // routing key
		true,                // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    report.GeneratedAt,
			MessageId:    report.ID.String(),
			Type:         ReportMessageType,
			Headers: amqp.Table{
				"keyword": report.Keyword,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	confirmCtx, cancel := context.WithTimeout(ctx, publishConfirmTimeout)
	defer cancel()

	acked, err := confirmation.WaitContext(confirmCtx)
	if err != nil {
		return fmt.Errorf("waiting for publish confirmation: %w", err)
	}
	if !acked {
		return fmt.Errorf("message was not acknowledged by broker")
	}

	p.logger.Debug("Published report to RabbitMQ",
		zap.String("reportId", report.ID.String()),
		zap.String("routingKey", p.config.RoutingKey),
	)

	return nil
}

func (p *ReportPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing publisher: %v", errs)
	}

	p.logger.Info("RabbitMQ publisher closed")
	return nil
}

func (p *ReportPublisher) IsHealthy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.conn != nil && !p.conn.IsClosed() && p.channel != nil
}
