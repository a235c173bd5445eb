package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/influxenergy/influx/pkg/log"
	"github.com/influxenergy/influx/pkg/types"
	"github.com/levenlabs/go-lflag"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer used by Kafka.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes each bundle as one message keyed by the bundle ID.
type Kafka struct {
	brokers []string
	topic   string
	writer  messageWriter
}

func configuredKafka() *Kafka {
	brokers := lflag.String("kafka-brokers", "", "Comma separated list of Kafka brokers")
	topic := lflag.String("kafka-topic", "influx.insights", "Kafka topic bundles are published to")

	k := &Kafka{}
	lflag.Do(func() {
		k.brokers = splitList(*brokers)
		k.topic = *topic
	})
	return k
}

// Validate checks if the publisher is properly configured.
func (k *Kafka) Validate() error {
	if len(k.brokers) == 0 {
		return fmt.Errorf("kafka-brokers is required")
	}
	if k.topic == "" {
		return fmt.Errorf("kafka-topic is required")
	}
	return nil
}

// Init creates the underlying writer. No connection is made until the first
// Publish.
func (k *Kafka) Init() {
	k.writer = &kafka.Writer{
		Addr:         kafka.TCP(k.brokers...),
		Topic:        k.topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

// Publish implements Publisher.
func (k *Kafka) Publish(ctx context.Context, bundle types.Bundle) error {
	value, err := encodeBundle(bundle)
	if err != nil {
		return err
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(bundle.ID),
		Value: value,
		Time:  bundle.GeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to write bundle to kafka topic %s: %w", k.topic, err)
	}
	log.Ctx(ctx).DebugContext(ctx, "published bundle to kafka", slog.String("topic", k.topic), slog.String("bundleID", bundle.ID))
	return nil
}

// Close implements Publisher.
func (k *Kafka) Close() error {
	if k.writer != nil {
		return k.writer.Close()
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
