package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"remit-wallet-go/internal/models"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQNotifier publishes settlement events as JSON to a durable topic
// exchange. The routing key is "<routing key>.<transaction type>".
type RabbitMQNotifier struct {
	mu         sync.Mutex
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
}

func NewRabbitMQNotifier(cfg models.NotifierConfig) (*RabbitMQNotifier, error) {
	cleanURL, err := sanitizeAMQPURL(cfg.AMQPURL)
	if err != nil {
		return nil, err
	}

	// Bounded dial timeout so startup does not hang
	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to open rabbitmq channel: %w", err)
	}

	n := &RabbitMQNotifier{conn: conn, channel: ch, exchange: cfg.Exchange, routingKey: cfg.RoutingKey}
	if err := n.declareExchange(); err != nil {
		n.Close()
		return nil, fmt.Errorf("unable to declare exchange %s: %w", cfg.Exchange, err)
	}

	zap.L().Info("RabbitMQ notifier connected",
		zap.String("exchange", cfg.Exchange),
		zap.String("routing_key", cfg.RoutingKey))
	return n, nil
}

func (n *RabbitMQNotifier) declareExchange() error {
	return n.channel.ExchangeDeclare(
		n.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	)
}

// Notify publishes the event, reopening the channel once if the publish fails.
func (n *RabbitMQNotifier) Notify(ctx context.Context, event models.SettlementEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("unable to encode settlement event: %w", err)
	}

	routingKey := eventRoutingKey(n.routingKey, event)
	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.TransactionId,
		Timestamp:    time.Now(),
		Body:         body,
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.channel.PublishWithContext(ctx, n.exchange, routingKey, false, false, publishing)
	if err == nil {
		return nil
	}

	zap.L().Warn("Publish failed; reopening channel",
		zap.String("exchange", n.exchange),
		zap.String("routing_key", routingKey),
		zap.Error(err))

	ch, chErr := n.conn.Channel()
	if chErr != nil {
		return fmt.Errorf("unable to reopen channel: %w", chErr)
	}
	n.channel = ch
	if err := n.declareExchange(); err != nil {
		return err
	}
	return n.channel.PublishWithContext(ctx, n.exchange, routingKey, false, false, publishing)
}

func (n *RabbitMQNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.channel != nil {
		if err := n.channel.Close(); err != nil {
			zap.L().Warn("Failed to close rabbitmq channel", zap.Error(err))
		}
	}
	if n.conn != nil {
		if err := n.conn.Close(); err != nil {
			zap.L().Warn("Failed to close rabbitmq connection", zap.Error(err))
		}
	}
}

func eventRoutingKey(base string, event models.SettlementEvent) string {
	if event.Type == "" {
		return base
	}
	return base + "." + event.Type
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}
