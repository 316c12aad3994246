package messaging

import (
	"time"

	"triage-waitlist/config"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// NewKafkaWriter creates the producer for action log events. Messages are
// hash-partitioned by key so each patient's events keep their order.
//
// The writer is asynchronous: WriteMessages only enqueues, so an unreachable
// broker never holds up an HTTP response. Delivery failures surface through
// Completion and are logged. Close flushes whatever is still buffered.
func NewKafkaWriter(cfg config.KafkaConfig, log *logrus.Logger) *kafka.Writer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             deliveryReporter(log),
	}

	log.Infof("Kafka writer configured for topic %s", cfg.Topic)

	return writer
}

func deliveryReporter(log *logrus.Logger) func(messages []kafka.Message, err error) {
	return func(messages []kafka.Message, err error) {
		if err != nil {
			log.Warnf("Failed to deliver %d action log event(s): %+v", len(messages), err)
			return
		}
		log.Debugf("Delivered %d action log event(s)", len(messages))
	}
}
