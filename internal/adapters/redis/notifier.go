package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"navindex/internal/domain"
	"navindex/internal/logging"
	"navindex/internal/ports"
)

// DefaultChannel is the pub/sub channel used when none is configured
const DefaultChannel = "navindex:rebuild"

// NotifierOptions configures the Redis connection
type NotifierOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// Channel carries rebuild requests. Defaults to DefaultChannel.
	Channel string

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// Logger receives dropped-message warnings. Defaults to a no-op logger.
	Logger *logging.Logger
}

// Notifier broadcasts rebuild requests over Redis pub/sub so every process
// sharing a store reloads its trees after a write
type Notifier struct {
	client  *redis.Client
	channel string
	logger  *logging.Logger
}

// Ensure Notifier implements RebuildNotifier
var _ ports.RebuildNotifier = (*Notifier)(nil)

// NewNotifier connects to Redis and verifies the connection
func NewNotifier(opts NotifierOptions) (*Notifier, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.Channel == "" {
		opts.Channel = DefaultChannel
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoopLogger()
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Notifier{
		client:  client,
		channel: opts.Channel,
		logger:  opts.Logger,
	}, nil
}

// Channel returns the pub/sub channel name
func (n *Notifier) Channel() string {
	return n.channel
}

// Publish announces that a tree changed
func (n *Notifier) Publish(ctx context.Context, req domain.RebuildRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal rebuild request: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", n.channel, err)
	}
	return nil
}

// Subscribe delivers rebuild requests until ctx is cancelled. Malformed
// payloads are logged and skipped.
func (n *Notifier) Subscribe(ctx context.Context) (<-chan domain.RebuildRequest, error) {
	pubsub := n.client.Subscribe(ctx, n.channel)

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", n.channel, err)
	}

	requests := make(chan domain.RebuildRequest)

	go func() {
		defer close(requests)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var req domain.RebuildRequest
				if err := json.Unmarshal([]byte(msg.Payload), &req); err != nil {
					n.logger.WarnContext(ctx, "dropping malformed rebuild request",
						"channel", n.channel,
						"error", err,
					)
					continue
				}

				select {
				case requests <- req:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return requests, nil
}

// Close closes the Redis connection
func (n *Notifier) Close() error {
	return n.client.Close()
}
