package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	// AuditDB is checked when set; a failing ping is reported but does not
	// flip ok, since audit writes are best-effort.
	AuditDB Pinger
	timeout time.Duration
}

// NewService constructs a new health service.
func NewService(auditDB Pinger) *Service {
	return &Service{AuditDB: auditDB, timeout: 2 * time.Second}
}

// Status returns the health payload.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{"ok": true}
	if s == nil || s.AuditDB == nil {
		return out
	}
	timeout := s.timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out["auditStore"] = s.AuditDB.PingContext(ctx) == nil
	return out
}
