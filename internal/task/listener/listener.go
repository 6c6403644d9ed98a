package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/event"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task/dto"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ProductionListener turns ProductionRecorded events from workshop devices
// into MarkProduced calls. Offsets are committed only once an event is
// recorded or rejected for good.
type ProductionListener struct {
	reader       MessageReader
	uc           task.UseCase
	logger       logger.ZapLogger
	retryBackoff time.Duration
	maxBackoff   time.Duration
}

func NewProductionListener(reader MessageReader, uc task.UseCase, log logger.ZapLogger) *ProductionListener {
	return &ProductionListener{
		reader:       reader,
		uc:           uc,
		logger:       log,
		retryBackoff: time.Second,
		maxBackoff:   30 * time.Second,
	}
}

// Start blocks until ctx is done.
func (l *ProductionListener) Start(ctx context.Context) {
	l.logger.Info("Starting production Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping production Kafka listener")
			return
		default:
			msg, err := l.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				if !l.wait(ctx, l.retryBackoff) {
					return
				}
				continue
			}

			if !l.processMessage(ctx, msg.Value) {
				// shutting down mid-retry; the message is redelivered on restart
				return
			}
			if err := l.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				l.logger.Error("Failed to commit kafka message",
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
			}
		}
	}
}

type productionRecordedEvent struct {
	EventID   string                          `json:"event_id"`
	EventType string                          `json:"event_type"`
	Payload   event.ProductionRecordedPayload `json:"payload"`
	Timestamp time.Time                       `json:"timestamp"`
}

// processMessage reports false when ctx ended before the event reached a
// final outcome.
func (l *ProductionListener) processMessage(ctx context.Context, value []byte) bool {
	var evt productionRecordedEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return true
	}

	if evt.EventType != event.TypeProductionRecorded {
		return true
	}

	operator := evt.Payload.OperatorID
	if operator == "" {
		operator = "device"
	}
	input := &dto.MarkProducedInput{
		VariantID:  evt.Payload.VariantID,
		Quantity:   evt.Payload.Quantity,
		OperatorID: operator,
	}

	backoff := l.retryBackoff
	for attempt := 1; ; attempt++ {
		_, err := l.uc.MarkProduced(ctx, input)
		if err == nil {
			return true
		}

		fields := []zap.Field{
			zap.String("event_id", evt.EventID),
			zap.String("variant_id", evt.Payload.VariantID),
			zap.Int("quantity", evt.Payload.Quantity),
			zap.String("kind", apperror.KindOf(err).String()),
			zap.Error(err),
		}
		if !transient(err) {
			l.logger.Warn("Production event rejected", fields...)
			return true
		}

		l.logger.Error("Failed to record production, retrying",
			append(fields, zap.Int("attempt", attempt), zap.Duration("backoff", backoff))...)
		if !l.wait(ctx, backoff) {
			return false
		}
		backoff = min(backoff*2, l.maxBackoff)
	}
}

// transient reports whether a retry can succeed: a held store lock or an
// unclassified storage failure. Rejections by the domain rules are final.
func transient(err error) bool {
	switch apperror.KindOf(err) {
	case apperror.KindBusy, apperror.KindInternal:
		return true
	default:
		return false
	}
}

func (l *ProductionListener) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
