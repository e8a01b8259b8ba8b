package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lawxpert-backend/internal/analysis"
)

// Publisher announces a stored record to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}

// Recorder turns finished analysis requests into audit records. It satisfies
// analysis.Observer. Either dependency may be nil.
type Recorder struct {
	Repo      Repo
	Publisher Publisher
	newID     func() string
}

// NewRecorder constructs a Recorder.
func NewRecorder(repo Repo, pub Publisher) *Recorder {
	return &Recorder{Repo: repo, Publisher: pub}
}

// Observe stores the outcome and publishes it. Both steps are attempted even
// when the first fails.
func (r *Recorder) Observe(ctx context.Context, o analysis.Outcome) error {
	rec := r.recordFor(o)

	var errs []error
	if r.Repo != nil {
		if err := r.Repo.Create(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("audit create: %w", err))
		}
	}
	if r.Publisher != nil {
		if err := r.Publisher.Publish(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("audit publish: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (r *Recorder) recordFor(o analysis.Outcome) Record {
	newID := r.newID
	if newID == nil {
		newID = uuid.NewString
	}
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return Record{
		ID:            newID(),
		RequestID:     o.RequestID,
		SourceKind:    o.SourceKind,
		FileName:      o.FileName,
		TextChars:     o.TextChars,
		QuestionAsked: o.QuestionAsked,
		Status:        o.Status,
		ErrorKind:     o.ErrorKind,
		UpstreamCalls: o.UpstreamCalls,
		DurationMs:    o.Duration.Milliseconds(),
		CreatedAt:     createdAt.UTC(),
	}
}

var _ analysis.Observer = (*Recorder)(nil)
