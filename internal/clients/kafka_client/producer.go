package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/tweetsentiment/config"
	"github.com/spacesedan/tweetsentiment/internal/models"
)

// SummaryPublisher writes analysis summaries to a Kafka topic.
type SummaryPublisher struct {
	producer *kafka.Producer
	topic    string
	done     chan struct{}
}

func NewSummaryPublisher(cfg config.KafkaConfig) (*SummaryPublisher, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"enable.idempotence":  true,
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	sp := &SummaryPublisher{producer: p, topic: cfg.SummaryTopic, done: make(chan struct{})}
	go sp.watchDeliveries()

	slog.Info("[KafkaClient] Kafka Producer initialized successfully",
		slog.String("topic", cfg.SummaryTopic))
	return sp, nil
}

// watchDeliveries drains delivery reports so Produce never blocks on a full
// events channel.
func (sp *SummaryPublisher) watchDeliveries() {
	defer close(sp.done)
	for e := range sp.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				slog.Warn("[KafkaClient] Summary delivery failed",
					slog.String("key", string(ev.Key)),
					slog.String("error", ev.TopicPartition.Error.Error()))
			}
		case kafka.Error:
			slog.Warn("[KafkaClient] Producer error",
				slog.String("error", ev.Error()))
		}
	}
}

func (sp *SummaryPublisher) Publish(event models.SummaryEvent) error {
	msg, err := summaryMessage(sp.topic, event)
	if err != nil {
		return err
	}

	for i := 0; i < PRODUCE_RETRIES; i++ {
		err = sp.producer.Produce(msg, nil)
		if err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce summary %s: %w", event.AnalysisID, err)
	}

	slog.Debug("[KafkaClient] Queued summary event",
		slog.String("topic", sp.topic),
		slog.String("analysis_id", event.AnalysisID))
	return nil
}

func (sp *SummaryPublisher) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := sp.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	sp.producer.Close()
	<-sp.done
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// summaryMessage keys the message by analysis ID.
func summaryMessage(topic string, event models.SummaryEvent) (*kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] failed to marshal summary: %w", err)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.AnalysisID),
		Value:          value,
	}, nil
}

// Ping fetches topic metadata from the broker.
func (sp *SummaryPublisher) Ping(ctx context.Context) error {
	timeout := 2000
	if deadline, ok := ctx.Deadline(); ok {
		timeout = int(time.Until(deadline).Milliseconds())
	}
	_, err := sp.producer.GetMetadata(&sp.topic, false, timeout)
	return err
}
