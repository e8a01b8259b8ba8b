package queue

import (
	"context"
	"time"

	"lawxpert-backend/internal/audit"
)

// Sender delivers an encoded message to a queue.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// EventPublisher turns audit records into queue messages.
type EventPublisher struct {
	Sender Sender
	now    func() time.Time
}

// NewEventPublisher constructs an EventPublisher.
func NewEventPublisher(sender Sender) *EventPublisher {
	return &EventPublisher{Sender: sender, now: time.Now}
}

// Publish sends an analysis.completed or analysis.failed message for rec.
func (p *EventPublisher) Publish(ctx context.Context, rec audit.Record) error {
	if p == nil || p.Sender == nil {
		return nil
	}
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	return p.Sender.Send(ctx, MessageFor(rec, now()))
}

// MessageFor builds the queue message describing rec.
func MessageFor(rec audit.Record, emittedAt time.Time) Message {
	eventType := EventAnalysisCompleted
	if rec.Status != "completed" {
		eventType = EventAnalysisFailed
	}
	return Message{
		Type:          eventType,
		AuditID:       rec.ID,
		RequestID:     rec.RequestID,
		Status:        rec.Status,
		SourceKind:    rec.SourceKind,
		ErrorKind:     rec.ErrorKind,
		UpstreamCalls: rec.UpstreamCalls,
		EmittedAt:     emittedAt.UTC().Format(time.RFC3339),
		Version:       MessageVersion,
	}
}

var _ audit.Publisher = (*EventPublisher)(nil)
