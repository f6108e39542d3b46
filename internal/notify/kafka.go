package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"rollcall/internal/participant"
)

// KafkaPublisher mirrors every accepted registration onto a Kafka topic so
// out-of-process consumers (reporting, CRM sync) can follow the same stream
// the dashboards see. Publishing is fire-and-forget: a produce failure is
// logged, never surfaced to the submitter.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the brokers and ensures the topic exists.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}

	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

// Publish produces rec asynchronously, keyed by participant id.
func (p *KafkaPublisher) Publish(rec participant.Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		p.logger.Error("failed to marshal participant for kafka",
			"participant_id", rec.ID,
			"error", err,
		)
		return
	}

	p.client.Produce(context.Background(), &kgo.Record{
		Topic: p.topic,
		Key:   []byte(rec.ID),
		Value: data,
	}, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("kafka produce failed",
				"topic", p.topic,
				"participant_id", rec.ID,
				"error", err,
			)
		}
	})
}

// Close flushes outstanding produces and releases the client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}
