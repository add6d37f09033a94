// Package bus connects the pipeline to RabbitMQ. One fanout exchange
// carries FileDiscovered to the two durable worker queues; the completion
// queues each feed a single consumer inside the ingestion service. Delivery
// is at-least-once everywhere, so every consumer side-effect must be an
// idempotent update on a primary-keyed row.
package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/marmos91/photovault/internal/logger"
)

// Topology names.
const (
	// ExchangeFiles is the fanout exchange for FileDiscovered.
	ExchangeFiles = "photovault.files"

	// Worker input queues, one durable copy of the fanout each.
	QueueMetadataExtract   = "metadata-extract"
	QueueThumbnailGenerate = "thumbnail-generate"

	// Completion queues consumed by the ingestion service.
	QueueMetadataExtracted  = "metadata-extracted"
	QueueThumbnailGenerated = "thumbnail-generated"

	// Dead-letter topology for messages past the redelivery budget.
	ExchangeDeadLetter = "photovault.dlx"
	QueueDeadLetter    = "photovault.dead-letters"
)

// Config contains bus connection settings.
type Config struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	VHost    string `mapstructure:"vhost" yaml:"vhost,omitempty"`

	// Prefetch bounds unacked deliveries per consumer channel (default: 8).
	// It doubles as the consumer concurrency limit.
	Prefetch int `mapstructure:"prefetch" yaml:"prefetch,omitempty"`

	// ReconnectDelay is the pause between redial attempts (default: 5s).
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay" yaml:"reconnect_delay,omitempty"`

	// DialTimeout bounds one connection attempt (default: 10s).
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout,omitempty"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5672
	}
	if c.Username == "" {
		c.Username = "guest"
	}
	if c.Password == "" {
		c.Password = "guest"
	}
	if c.VHost == "" {
		c.VHost = "/"
	}
	if c.Prefetch == 0 {
		c.Prefetch = 8
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 5 * time.Second
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}
}

// URL returns the AMQP connection string.
func (c *Config) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s", c.Username, c.Password, c.Host, c.Port, c.VHost)
}

// Bus holds one AMQP connection and redials it when the broker drops it.
// Channels are cheap and per-purpose; the connection is shared.
type Bus struct {
	config  *Config
	metrics Metrics

	mu     sync.RWMutex
	conn   *amqp.Connection
	closed bool
}

// Connect dials the broker and declares the full topology. It retries until
// the context is cancelled, then gives up with the last dial error. A nil
// Metrics disables instrumentation.
func Connect(ctx context.Context, config *Config, m Metrics) (*Bus, error) {
	if config == nil {
		config = &Config{}
	}
	config.ApplyDefaults()

	b := &Bus{config: config, metrics: m}

	var lastErr error
	for {
		conn, err := amqp.DialConfig(config.URL(), amqp.Config{
			Dial: amqp.DefaultDial(config.DialTimeout),
		})
		if err == nil {
			b.conn = conn
			if err := b.declareTopology(); err != nil {
				conn.Close()
				return nil, fmt.Errorf("failed to declare topology: %w", err)
			}
			go b.watchConnection(conn)
			logger.Info("bus connected",
				"host", config.Host, "port", config.Port)
			return b, nil
		}

		lastErr = err
		logger.Warn("bus dial failed, retrying",
			logger.Err(err), "delay", config.ReconnectDelay)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("bus connect cancelled: %w", lastErr)
		case <-time.After(config.ReconnectDelay):
		}
	}
}

// watchConnection redials after the broker closes the connection. Consumers
// observe the close through their delivery channel draining and re-enter
// Consume, which picks up the fresh connection.
func (b *Bus) watchConnection(conn *amqp.Connection) {
	closeErr := <-conn.NotifyClose(make(chan *amqp.Error, 1))
	if closeErr == nil {
		return // clean shutdown
	}
	logger.Warn("bus connection lost", logger.Err(closeErr))

	for {
		b.mu.RLock()
		closed := b.closed
		b.mu.RUnlock()
		if closed {
			return
		}

		newConn, err := amqp.DialConfig(b.config.URL(), amqp.Config{
			Dial: amqp.DefaultDial(b.config.DialTimeout),
		})
		if err == nil {
			b.mu.Lock()
			b.conn = newConn
			b.mu.Unlock()
			logger.Info("bus reconnected")
			go b.watchConnection(newConn)
			return
		}

		logger.Warn("bus redial failed", logger.Err(err))
		time.Sleep(b.config.ReconnectDelay)
	}
}

// Channel opens a fresh channel on the current connection.
func (b *Bus) Channel() (*amqp.Channel, error) {
	b.mu.RLock()
	conn := b.conn
	b.mu.RUnlock()
	if conn == nil {
		return nil, fmt.Errorf("bus not connected")
	}
	return conn.Channel()
}

// Close shuts down the connection. Safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

// declareTopology declares the exchange, queues, and dead-letter wiring.
// Declarations are idempotent; every process declares on startup so the
// broker can boot in any order.
func (b *Bus) declareTopology() error {
	ch, err := b.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		ExchangeFiles, // name
		"fanout",      // kind
		true,          // durable
		false,         // auto-delete
		false,         // internal
		false,         // no-wait
		nil,           // arguments
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeFiles, err)
	}

	if err := ch.ExchangeDeclare(
		ExchangeDeadLetter, "fanout", true, false, false, false, nil,
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeDeadLetter, err)
	}
	if _, err := ch.QueueDeclare(
		QueueDeadLetter, true, false, false, false, nil,
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueDeadLetter, err)
	}
	if err := ch.QueueBind(QueueDeadLetter, "", ExchangeDeadLetter, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", QueueDeadLetter, err)
	}

	// Worker queues dead-letter into the DLX once past the redelivery
	// budget.
	workerArgs := amqp.Table{
		"x-dead-letter-exchange": ExchangeDeadLetter,
	}
	for _, queue := range []string{QueueMetadataExtract, QueueThumbnailGenerate} {
		if _, err := ch.QueueDeclare(
			queue, true, false, false, false, workerArgs,
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := ch.QueueBind(queue, "", ExchangeFiles, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	// Completion queues are point-to-point through the default exchange.
	for _, queue := range []string{QueueMetadataExtracted, QueueThumbnailGenerated} {
		if _, err := ch.QueueDeclare(
			queue, true, false, false, false, nil,
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
	}

	return nil
}
