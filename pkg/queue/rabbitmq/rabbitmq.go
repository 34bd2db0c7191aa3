// Package rabbitmq moves ranking tasks between the API process and workers
// over a durable AMQP queue.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/artem13815/shortlist/pkg/job"
	"github.com/artem13815/shortlist/pkg/logger"
)

const (
	DefaultQueue   = "shortlist.jobs"
	publishTimeout = 5 * time.Second
)

var ErrClosed = errors.New("amqp connection closed")

// Client owns one connection and channel with the task queue declared.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	mu      sync.Mutex
	log     *zap.Logger
}

func Dial(url, queue string, log *zap.Logger) (*Client, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &Client{conn: conn, channel: ch, queue: q, log: logger.WithFields(log)}, nil
}

// Ping reports whether the connection is still open.
func (c *Client) Ping(context.Context) error {
	if c.conn.IsClosed() {
		return ErrClosed
	}
	return nil
}

func (c *Client) Close() error {
	if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		_ = c.conn.Close()
		return err
	}
	return c.conn.Close()
}

var _ job.Dispatcher = (*Client)(nil)

// Dispatch publishes the task as a persistent JSON message.
func (c *Client) Dispatch(ctx context.Context, t job.Task) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.PublishWithContext(ctx,
		"",           // exchange
		c.queue.Name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    t.JobID.String(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish task: %w", err)
	}
	return nil
}

// Consume runs tasks from the queue with at most concurrency in flight, until
// ctx is done or the channel closes. Messages are acked once the run has
// recorded its outcome; malformed messages are dropped.
func (c *Client) Consume(ctx context.Context, runner job.Runner, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	if err := c.channel.Qos(concurrency, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := c.channel.ConsumeWithContext(ctx,
		c.queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	sem := semaphore.NewWeighted(int64(concurrency))
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrClosed
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				_ = d.Nack(false, true)
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)
				c.handle(ctx, runner, d)
			}()
		}
	}
}

func (c *Client) handle(ctx context.Context, runner job.Runner, d amqp.Delivery) {
	t, err := decodeTask(d.Body)
	if err != nil {
		c.log.Warn("malformed task dropped", zap.String("message_id", d.MessageId), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	if err := runner.Run(context.WithoutCancel(ctx), t); err != nil {
		c.log.Debug("job run returned error", zap.String(logger.FieldJobID, t.JobID.String()), zap.Error(err))
	}
	if err := d.Ack(false); err != nil {
		c.log.Warn("ack failed", zap.String(logger.FieldJobID, t.JobID.String()), zap.Error(err))
	}
}

func decodeTask(body []byte) (job.Task, error) {
	var t job.Task
	if err := json.Unmarshal(body, &t); err != nil {
		return job.Task{}, err
	}
	if t.JobID == uuid.Nil || t.UserID == uuid.Nil {
		return job.Task{}, errors.New("task without job or user id")
	}
	if len(t.Files) == 0 {
		return job.Task{}, errors.New("task without files")
	}
	return t, nil
}
