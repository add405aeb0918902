package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"pulseops/internal/platform/metrics"
	"pulseops/internal/shared/events"
)

// Kafka is the external-broker bus used when services run as separate
// processes. Messages are keyed by the envelope's incident id so one
// incident's events stay in publish order within a consumer group.
type Kafka struct {
	producer sarama.SyncProducer
	brokers  []string
	logger   *slog.Logger
}

func newSaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_7_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Net.MaxOpenRequests = 1
	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Metadata.Retry.Max = 5
	cfg.Metadata.Retry.Backoff = 2 * time.Second
	return cfg
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	producer, err := sarama.NewSyncProducer(brokers, newSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Kafka{
		producer: producer,
		brokers:  brokers,
		logger:   logger,
	}, nil
}

func (k *Kafka) Publish(_ context.Context, topic string, event events.Envelope) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.IncidentID),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	metrics.EventsPublished.WithLabelValues(event.Type).Inc()
	return nil
}

func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, events.Envelope) error,
) error {
	group, err := sarama.NewConsumerGroup(k.brokers, consumerGroup, newSaramaConfig())
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}

	consumer := &groupConsumer{handler: handler, logger: k.logger}
	go func() {
		defer group.Close()
		for {
			if err := group.Consume(ctx, []string{topic}, consumer); err != nil {
				if k.logger != nil {
					k.logger.Error("kafka consume session ended",
						"event", "kafka_consume_session_error",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"error", err.Error(),
					)
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return nil
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

type groupConsumer struct {
	handler func(context.Context, events.Envelope) error
	logger  *slog.Logger
}

func (c *groupConsumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *groupConsumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (c *groupConsumer) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var event events.Envelope
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			if c.logger != nil {
				c.logger.Error("kafka message decode failed",
					"event", "kafka_message_decode_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", msg.Topic,
					"offset", msg.Offset,
					"error", err.Error(),
				)
			}
			sess.MarkMessage(msg, "")
			continue
		}
		if err := c.handler(sess.Context(), event); err != nil {
			if c.logger != nil {
				c.logger.Error("consumer handler failed",
					"event", "kafka_consume_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", msg.Topic,
					"event_id", event.EventID,
					"event_type", event.Type,
					"correlation_id", event.CorrelationID,
					"error", err.Error(),
				)
			}
			// At-least-once: the projection dedupes on event id, so marking a
			// failed message keeps the feed consistent without stalling the
			// partition.
			sess.MarkMessage(msg, "")
			continue
		}
		metrics.EventsConsumed.WithLabelValues(event.Type).Inc()
		sess.MarkMessage(msg, "")
	}
	return nil
}
