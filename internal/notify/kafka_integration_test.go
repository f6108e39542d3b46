//go:build integration

package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"rollcall/internal/notify"
	"rollcall/internal/participant"
	"rollcall/pkg/testutil/containers"
)

func TestKafkaPublisherProducesParticipantEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	redpanda := containers.NewRedpandaContainer(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	const topic = "rollcall.participants.test"
	publisher, err := notify.NewKafkaPublisher(ctx, []string{redpanda.Broker}, topic, logger)
	require.NoError(t, err)

	year := 3
	sent := participant.Record{
		ID:          "k-1",
		FullName:    "Jane Doe",
		Email:       "jane@outlook.com",
		Phone:       "+14155550100",
		Role:        participant.RoleStudent,
		Department:  "CS",
		CurrentYear: &year,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	publisher.Publish(sent)
	publisher.Close() // flushes outstanding produces

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, []byte(sent.ID), records[0].Key)

	var got participant.Record
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, sent, got)
}

func TestKafkaPublisherTopicAlreadyExists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	redpanda := containers.NewRedpandaContainer(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	const topic = "rollcall.participants.existing"
	first, err := notify.NewKafkaPublisher(ctx, []string{redpanda.Broker}, topic, logger)
	require.NoError(t, err)
	first.Close()

	second, err := notify.NewKafkaPublisher(ctx, []string{redpanda.Broker}, topic, logger)
	require.NoError(t, err, "an existing topic is not an error")
	second.Close()
}
