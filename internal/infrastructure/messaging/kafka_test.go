package messaging

import (
	"errors"
	"io"
	"testing"

	"triage-waitlist/config"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaWriter_AsyncHashPartitioned(t *testing.T) {
	log, _ := test.NewNullLogger()
	log.SetOutput(io.Discard)

	writer := NewKafkaWriter(config.KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "triage.action-logs",
	}, log)
	defer writer.Close()

	assert.True(t, writer.Async)
	assert.IsType(t, &kafka.Hash{}, writer.Balancer)
	assert.Equal(t, kafka.RequireAll, writer.RequiredAcks)
	assert.Equal(t, "triage.action-logs", writer.Topic)
	require.NotNil(t, writer.Completion)
}

func TestDeliveryReporter_LogsFailures(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.DebugLevel)
	report := deliveryReporter(log)

	report([]kafka.Message{{Key: []byte("1")}, {Key: []byte("2")}}, errors.New("broker unreachable"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "Failed to deliver 2 action log event(s)")
	assert.Contains(t, entry.Message, "broker unreachable")

	report([]kafka.Message{{Key: []byte("1")}}, nil)
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}
