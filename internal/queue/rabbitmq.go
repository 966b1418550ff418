package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	dlxExchangeName  = "notifications.dlx"
	reconnectBackoff = time.Second
	maxBackoff       = 30 * time.Second
)

// RabbitMQ owns one broker connection and declares the queue topology on
// every channel it hands out. Each worker holds its own instance; the
// connection is never shared as process-global state.
type RabbitMQ struct {
	url       string
	queueName string

	mu          sync.RWMutex
	reconnectMu sync.Mutex
	conn        *amqp.Connection
}

func NewRabbitMQ(url, queueName string) (*RabbitMQ, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("rabbitmq url is required")
	}
	if strings.TrimSpace(queueName) == "" {
		return nil, fmt.Errorf("queue name is required")
	}

	r := &RabbitMQ{url: url, queueName: queueName}

	if err := r.ensureConnected(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *RabbitMQ) QueueName() string { return r.queueName }

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}

	return conn.Close()
}

// channel returns a fresh channel with the topology declared. A stale or
// closed connection triggers exactly one transparent reconnect before the
// error propagates to the caller.
func (r *RabbitMQ) channel(ctx context.Context) (*amqp.Channel, error) {
	if ctx != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err := r.ensureConnected(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	conn := r.conn
	r.mu.RUnlock()

	ch, err := conn.Channel()
	if err != nil {
		if errReconnect := r.reconnect(); errReconnect != nil {
			return nil, errReconnect
		}

		r.mu.RLock()
		conn = r.conn
		r.mu.RUnlock()

		ch, err = conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("failed to create rabbitmq channel after reconnect: %w", err)
		}
	}

	if err := declareTopology(ch, r.queueName); err != nil {
		_ = ch.Close()
		return nil, err
	}

	return ch, nil
}

func (r *RabbitMQ) ensureConnected() error {
	r.mu.RLock()
	conn := r.conn
	r.mu.RUnlock()

	if conn != nil && !conn.IsClosed() {
		return nil
	}

	return r.reconnect()
}

func (r *RabbitMQ) reconnect() error {
	r.reconnectMu.Lock()
	defer r.reconnectMu.Unlock()

	r.mu.RLock()
	conn := r.conn
	r.mu.RUnlock()
	if conn != nil && !conn.IsClosed() {
		return nil
	}

	newConn, err := amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("failed to connect rabbitmq: %w", err)
	}

	r.mu.Lock()
	oldConn := r.conn
	r.conn = newConn
	r.mu.Unlock()

	if oldConn != nil && !oldConn.IsClosed() {
		_ = oldConn.Close()
	}

	return nil
}

// declareTopology declares the durable work queue and its dead-letter
// route. Rejected poison messages land in dlq.<queue> instead of being
// dropped.
func declareTopology(ch *amqp.Channel, queueName string) error {
	if err := ch.ExchangeDeclare(
		dlxExchangeName,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare dlx exchange: %w", err)
	}

	dlqName := DLQName(queueName)
	if _, err := ch.QueueDeclare(
		dlqName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare dlq %q: %w", dlqName, err)
	}

	if err := ch.QueueBind(dlqName, queueName, dlxExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind dlq %q: %w", dlqName, err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    dlxExchangeName,
		"x-dead-letter-routing-key": queueName,
	}

	if _, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		args,
	); err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", queueName, err)
	}

	return nil
}
