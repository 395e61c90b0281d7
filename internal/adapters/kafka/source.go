// Package kafka reads stream items from, and publishes them to, a
// Kafka-compatible topic using franz-go.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/corey/anagramatron/internal/logging"
	"github.com/corey/anagramatron/internal/ports"
)

// DecodeFunc turns one record value into an item.
type DecodeFunc[T any] func(value []byte) (T, error)

// Config names the topic and consumer group to read.
type Config struct {
	Brokers   []string
	Topic     string
	Group     string
	FromStart bool // reset to the earliest offset when the group has none
}

// Source is a consumer-group reader; each partition assignment is one of
// the independent input partitions a store instance can own. Not thread-safe.
type Source[T any] struct {
	client  *kgo.Client
	decode  DecodeFunc[T]
	logger  *logging.Logger
	pending []*kgo.Record
}

// NewSource joins cfg.Group on cfg.Topic.
func NewSource[T any](cfg Config, decode DecodeFunc[T], logger *logging.Logger) (*Source[T], error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}
	if cfg.Topic == "" || cfg.Group == "" {
		return nil, fmt.Errorf("topic and consumer group are required")
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
	}
	if cfg.FromStart {
		opts = append(opts, kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()))
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	return &Source[T]{client: client, decode: decode, logger: logging.OrNoop(logger)}, nil
}

// Next returns the next decoded record. It blocks until a record arrives or
// ctx is done; io.EOF means the client was closed. Fetch errors are logged
// and polling continues.
func (s *Source[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for len(s.pending) == 0 {
		fetches := s.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return zero, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			s.logger.Warn("fetch error", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(r *kgo.Record) {
			s.pending = append(s.pending, r)
		})
	}
	r := s.pending[0]
	s.pending = s.pending[1:]
	return decodeRecord(s.decode, r.Value)
}

// Close leaves the group and closes the client.
func (s *Source[T]) Close() error {
	s.client.Close()
	return nil
}

func decodeRecord[T any](decode DecodeFunc[T], value []byte) (T, error) {
	item, err := decode(value)
	if err != nil && !errors.Is(err, ports.ErrMalformed) {
		var zero T
		return zero, fmt.Errorf("%w: %v", ports.ErrMalformed, err)
	}
	return item, err
}

// Publisher produces raw records to one topic.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects a producer for topic.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Publish sends one record synchronously.
func (p *Publisher) Publish(ctx context.Context, key, value []byte) error {
	results := p.client.ProduceSync(ctx, &kgo.Record{Topic: p.topic, Key: key, Value: value})
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.client.Close()
	return nil
}
