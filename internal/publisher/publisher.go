package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Checker-Finance/product-explorer/internal/metrics"
	"github.com/Checker-Finance/product-explorer/pkg/eventbus"
	"github.com/Checker-Finance/product-explorer/pkg/model"
)

const (
	// EventTypeAPICall is the event type of mirrored request log entries.
	EventTypeAPICall = "explorer.api_call"
	// EnvelopeVersion is the schema version stamped on every envelope.
	EnvelopeVersion = "1.0.0"
	// DefaultBuffer is the queue size between the event bus and NATS.
	DefaultBuffer = 256
)

// MsgPublisher is the part of a NATS connection the Publisher needs.
// *nats.Conn satisfies it.
type MsgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Publisher mirrors request log entries to NATS as canonical envelopes.
type Publisher struct {
	nc      MsgPublisher
	subject string
	service string
	logger  *zap.Logger

	queue chan model.APILog
	sub   *eventbus.Subscription
	bus   *eventbus.EventBus
}

// New creates a Publisher. buffer <= 0 selects DefaultBuffer.
func New(nc MsgPublisher, subject, service string, buffer int, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Publisher{
		nc:      nc,
		subject: subject,
		service: service,
		logger:  logger,
		queue:   make(chan model.APILog, buffer),
	}
}

// Attach subscribes to LogAppended on bus. Entries are queued without
// blocking the caller; when the queue is full the entry is dropped and counted.
func (p *Publisher) Attach(bus *eventbus.EventBus) {
	sub := bus.Subscribe(model.LogAppended{}, func(ev any) {
		entry := ev.(model.LogAppended).Entry
		select {
		case p.queue <- entry:
		default:
			metrics.IncNATSMessage(p.subject, "dropped")
			p.logger.Warn("publisher.queue_full",
				zap.String("subject", p.subject),
				zap.String("endpoint", entry.Endpoint))
		}
	})
	p.bus = bus
	p.sub = &sub
}

// Run drains the queue until ctx is cancelled, then detaches from the bus.
func (p *Publisher) Run(ctx context.Context) {
	defer p.detach()
	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-p.queue:
			// failures are logged and counted inside PublishLog
			_ = p.PublishLog(entry)
		}
	}
}

func (p *Publisher) detach() {
	if p.bus != nil && p.sub != nil {
		p.bus.Unsubscribe(*p.sub)
		p.sub = nil
	}
}

// PublishLog wraps one request log entry in an envelope and publishes it.
func (p *Publisher) PublishLog(entry model.APILog) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}
	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: correlationID(entry.ID),
		Source:        p.service,
		Topic:         p.subject,
		EventType:     EventTypeAPICall,
		Version:       EnvelopeVersion,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
	}
	return p.PublishEnvelope(env)
}

// PublishEnvelope serializes env and publishes it on the configured subject.
func (p *Publisher) PublishEnvelope(env *model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("publisher.marshal_failed",
			zap.String("subject", p.subject),
			zap.String("event_type", env.EventType),
			zap.Error(err))
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{env.EventType},
			"correlation_id": []string{env.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
		},
	}

	start := time.Now()
	err = p.nc.PublishMsg(msg)
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, p.subject)

	if err != nil {
		p.logger.Error("publisher.publish_failed",
			zap.String("subject", p.subject),
			zap.String("event_type", env.EventType),
			zap.Error(err))
		metrics.IncNATSMessage(p.subject, "error")
		return err
	}

	p.logger.Debug("publisher.publish_success",
		zap.String("subject", p.subject),
		zap.String("event_type", env.EventType))
	metrics.IncNATSMessage(p.subject, "ok")
	return nil
}

// correlationID reuses the log entry id when it is a UUID.
func correlationID(entryID string) uuid.UUID {
	if id, err := uuid.Parse(entryID); err == nil {
		return id
	}
	return uuid.New()
}
