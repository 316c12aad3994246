package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"triage-waitlist/internal/domain/entity"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const kafkaPublishTimeout = 5 * time.Second

// ActionLogPublisher announces committed action log entries to other systems.
// Delivery is best effort; failures are logged and never undo the commit.
type ActionLogPublisher interface {
	Publish(ctx context.Context, logs ...entity.ActionLog)
}

// MessageWriter is the subset of *kafka.Writer used for publishing. The
// production writer is asynchronous, so WriteMessages returns once the
// messages are queued and broker errors arrive through its Completion hook.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ActionLogEvent is the JSON payload written to the action log topic
type ActionLogEvent struct {
	ActionID        int64                  `json:"action_id"`
	PatientID       int64                  `json:"patient_id"`
	ActionType      entity.ActionType      `json:"action_type"`
	OldPriorityID   *int                   `json:"old_priority_id"`
	NewPriorityID   *int                   `json:"new_priority_id"`
	ActionTimestamp time.Time              `json:"action_timestamp"`
	Notes           string                 `json:"notes"`
	PerformedBy     *string                `json:"performed_by,omitempty"`
	Patient         entity.PatientSnapshot `json:"patient"`
}

func NewActionLogEvent(log entity.ActionLog) ActionLogEvent {
	return ActionLogEvent{
		ActionID:        log.ID,
		PatientID:       log.PatientID,
		ActionType:      log.ActionType,
		OldPriorityID:   log.OldPriorityID,
		NewPriorityID:   log.NewPriorityID,
		ActionTimestamp: log.ActionTimestamp,
		Notes:           log.Notes,
		PerformedBy:     log.PerformedBy,
		Patient:         log.PatientSnapshot.Data(),
	}
}

type kafkaActionLogPublisher struct {
	writer MessageWriter
	log    *logrus.Logger
}

func NewKafkaActionLogPublisher(writer MessageWriter, log *logrus.Logger) ActionLogPublisher {
	return &kafkaActionLogPublisher{
		writer: writer,
		log:    log,
	}
}

// Publish keys every message by patient_id so one patient's history stays
// on a single partition, in commit order.
func (p *kafkaActionLogPublisher) Publish(ctx context.Context, logs ...entity.ActionLog) {
	if len(logs) == 0 {
		return
	}

	msgs := make([]kafka.Message, 0, len(logs))
	for _, l := range logs {
		value, err := json.Marshal(NewActionLogEvent(l))
		if err != nil {
			p.log.Warnf("Failed to encode action log %d event: %+v", l.ID, err)
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatInt(l.PatientID, 10)),
			Value: value,
		})
	}
	if len(msgs) == 0 {
		return
	}

	// The request may already be finished; queueing must not be cut short by it
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), kafkaPublishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.log.Warnf("Failed to publish action log events: %+v", err)
		return
	}

	p.log.Debugf("Published %d action log event(s)", len(msgs))
}

// NoopActionLogPublisher is used when Kafka is disabled
type NoopActionLogPublisher struct{}

func (NoopActionLogPublisher) Publish(context.Context, ...entity.ActionLog) {}
