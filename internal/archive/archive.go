package archive

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"lawxpert-backend/internal/analysis"
	"lawxpert-backend/internal/shared/storage/object"
	"lawxpert-backend/internal/shared/util"
)

const extractedSuffix = ".extracted.txt"

// Archiver stores uploaded documents next to their extracted text.
type Archiver struct {
	Store object.ObjectStore
	now   func() time.Time
}

// New constructs an Archiver over store.
func New(store object.ObjectStore) *Archiver {
	return &Archiver{Store: store, now: time.Now}
}

// Archive writes the raw upload at uploads/<yyyy>/<mm>/<dd>/<id>/<name> and
// the extracted text at the same key plus ".extracted.txt". The id is the
// request ID, or a content hash prefix when there is none.
func (a *Archiver) Archive(ctx context.Context, requestID, fileName string, data []byte, text string) error {
	key, err := a.Key(requestID, fileName, data)
	if err != nil {
		return err
	}
	if _, err := a.Store.SaveWithKey(ctx, key, contentTypeFor(fileName, data), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("archive upload: %w", err)
	}
	if _, err := a.Store.SaveWithKey(ctx, key+extractedSuffix, "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		return fmt.Errorf("archive extracted text: %w", err)
	}
	return nil
}

// Key returns the storage key for an upload.
func (a *Archiver) Key(requestID, fileName string, data []byte) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	id := strings.TrimSpace(requestID)
	if id == "" {
		id = util.ContentHash(data)[:16]
	} else if sanitized, err := util.SanitizeFileName(id); err == nil {
		id = sanitized
	} else {
		id = util.ContentHash([]byte(id))[:16]
	}
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	day := now().UTC().Format("2006/01/02")
	return path.Join("uploads", day, id, name), nil
}

func contentTypeFor(fileName string, data []byte) string {
	switch {
	case strings.HasSuffix(fileName, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(fileName, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return http.DetectContentType(data)
	}
}

var _ analysis.Archiver = (*Archiver)(nil)
