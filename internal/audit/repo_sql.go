package audit

import (
	"context"
	"database/sql"
	"fmt"

	"lawxpert-backend/internal/shared/storage/db"
)

// SQLRepo implements Repo over Postgres or SQLite.
type SQLRepo struct {
	DB      *sql.DB
	Dialect db.Dialect
}

// NewSQLRepo constructs a SQLRepo.
func NewSQLRepo(database *sql.DB, dialect db.Dialect) *SQLRepo {
	return &SQLRepo{DB: database, Dialect: dialect}
}

// Create inserts a record.
func (r *SQLRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO analysis_audit (
	id, request_id, source_kind, file_name, text_chars, question_asked,
	status, error_kind, upstream_calls, duration_ms, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		rec.ID,
		rec.RequestID,
		rec.SourceKind,
		rec.FileName,
		rec.TextChars,
		rec.QuestionAsked,
		rec.Status,
		rec.ErrorKind,
		rec.UpstreamCalls,
		rec.DurationMs,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListRecent returns up to limit records, newest first.
func (r *SQLRepo) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	const query = `
SELECT id, request_id, source_kind, file_name, text_chars, question_asked,
	status, error_kind, upstream_calls, duration_ms, created_at
FROM analysis_audit
ORDER BY created_at DESC
LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.SourceKind,
			&rec.FileName,
			&rec.TextChars,
			&rec.QuestionAsked,
			&rec.Status,
			&rec.ErrorKind,
			&rec.UpstreamCalls,
			&rec.DurationMs,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
