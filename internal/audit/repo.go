package audit

import "context"

const (
	DefaultListLimit = 20
	MaxListLimit     = 500
)

// Repo defines persistence operations for audit records.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
