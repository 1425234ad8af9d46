package events

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/GTDGit/bakery_api/internal/config"
	"github.com/GTDGit/bakery_api/internal/metrics"
)

const breakerName = "kafka"

// KafkaPublisher sends events through a sarama SyncProducer guarded by a
// circuit breaker, so a broker outage fails fast instead of stalling
// checkout.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	breaker  *gobreaker.CircuitBreaker[interface{}]
	prefix   string
}

// NewKafkaPublisher connects to cfg.Brokers.
func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = true
	sc.Producer.Timeout = 5 * time.Second
	sc.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg.TopicPrefix), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, prefix string) *KafkaPublisher {
	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	}
	return &KafkaPublisher{
		producer: producer,
		breaker:  gobreaker.NewCircuitBreaker[interface{}](settings),
		prefix:   prefix,
	}
}

// Publish marshals event as JSON and sends it synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	fullTopic := topic
	if p.prefix != "" {
		fullTopic = p.prefix + "." + topic
	}
	msg := &sarama.ProducerMessage{
		Topic: fullTopic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	res, err := p.breaker.Execute(func() (interface{}, error) {
		partition, offset, err := p.producer.SendMessage(msg)
		if err != nil {
			return nil, err
		}
		return [2]int64{int64(partition), offset}, nil
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues(topic, "error").Inc()
		return fmt.Errorf("publish %s: %w", fullTopic, err)
	}

	pos := res.([2]int64)
	metrics.EventsPublished.WithLabelValues(topic, "ok").Inc()
	log.Debug().
		Str("topic", fullTopic).
		Str("key", key).
		Int64("partition", pos[0]).
		Int64("offset", pos[1]).
		Msg("event published")
	return nil
}

// State reports the breaker state for health checks.
func (p *KafkaPublisher) State() string {
	return p.breaker.State().String()
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
