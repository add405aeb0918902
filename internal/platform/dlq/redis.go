// Package dlq parks envelopes whose projection failed so they can be
// inspected or replayed by hand. Pushing is best-effort: a DLQ failure is
// logged and dropped, it never compounds the original error.
package dlq

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"pulseops/internal/platform/metrics"
)

const defaultKey = "pulseops:dlq"

type Message struct {
	At      time.Time       `json:"at"`
	Error   string          `json:"error"`
	Payload json.RawMessage `json:"payload"`
}

type Client struct {
	cli    *redis.Client
	key    string
	logger *slog.Logger
}

func New(addr, key string, logger *slog.Logger) *Client {
	if key == "" {
		key = defaultKey
	}
	return &Client{
		cli:    redis.NewClient(&redis.Options{Addr: addr}),
		key:    key,
		logger: logger,
	}
}

func (c *Client) Push(ctx context.Context, payload []byte, cause error) {
	msg := Message{At: time.Now().UTC(), Error: cause.Error(), Payload: json.RawMessage(payload)}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if _, err := c.cli.LPush(ctx, c.key, encoded).Result(); err != nil {
		if c.logger != nil {
			c.logger.Error("dlq push failed",
				"event", "dlq_push_failed",
				"module", "internal/platform/dlq",
				"layer", "platform",
				"key", c.key,
				"error", err.Error(),
			)
		}
		return
	}
	metrics.DLQPushed.Inc()
}

func (c *Client) Close() error {
	return c.cli.Close()
}
