package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lawxpert-backend/internal/extract"
	"lawxpert-backend/internal/shared/metrics"
	"lawxpert-backend/internal/shared/server/middleware"
	"lawxpert-backend/internal/shared/server/respond"
	"lawxpert-backend/internal/shared/telemetry"
)

const (
	defaultMaxMemory = 32 << 20
	observeTimeout   = 5 * time.Second
)

// Observer is told about every finished /analyze request. Failures are logged
// and never change the response.
type Observer interface {
	Observe(ctx context.Context, o Outcome) error
}

// Archiver keeps a copy of an uploaded document and its extracted text.
type Archiver interface {
	Archive(ctx context.Context, requestID, fileName string, data []byte, text string) error
}

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc            *Service
	Observers      []Observer
	Archiver       Archiver
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches POST /analyze; mw runs before the handler.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.analyze)
	rg.POST("/analyze", handlers...)
}

func (h *Handler) analyze(c *gin.Context) {
	start := time.Now()
	reqID := middleware.RequestIDFromContext(c)
	ctx := WithRequestID(c.Request.Context(), reqID)

	outcome := Outcome{RequestID: reqID, SourceKind: SourceNone, CreatedAt: start.UTC()}
	result, err := h.run(ctx, c, &outcome)

	outcome.Duration = time.Since(start)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.ErrorKind, outcome.Detail = classify(err)
	} else {
		outcome.Status = StatusCompleted
	}
	c.Set(middleware.SourceKindKey, outcome.SourceKind)
	c.Set(middleware.UpstreamCallsKey, outcome.UpstreamCalls)
	h.notify(ctx, outcome)

	if err != nil {
		respond.Error(c, statusFor(err), outcome.Detail)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) run(ctx context.Context, c *gin.Context, outcome *Outcome) (Result, error) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	if err := c.Request.ParseMultipartForm(defaultMaxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return Result{}, ErrFileTooLarge
		}
		return Result{}, ErrInvalidForm
	}

	text := c.PostForm("text")
	question := c.PostForm("question")
	outcome.QuestionAsked = strings.TrimSpace(question) != ""

	fileHeader, err := c.FormFile("file")
	switch {
	case err == nil:
		text, err = h.extractUpload(ctx, fileHeader, outcome)
		if err != nil {
			return Result{}, err
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		if strings.TrimSpace(text) == "" {
			return Result{}, ErrMissingInput
		}
		outcome.SourceKind = SourceText
	default:
		return Result{}, ErrInvalidForm
	}
	outcome.TextChars = len(text)

	result, err := h.Svc.Analyze(ctx, Input{Text: text, Question: question})
	outcome.UpstreamCalls = UpstreamCalls(result, err)
	return result, err
}

func (h *Handler) extractUpload(ctx context.Context, fh *multipart.FileHeader, outcome *Outcome) (string, error) {
	outcome.FileName = fh.Filename
	format, ok := extract.FormatForFileName(fh.Filename)
	if !ok {
		return "", ErrUnsupportedFormat
	}
	outcome.SourceKind = string(format)

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	text, err := extract.Extract(ctx, format, data)
	if err != nil {
		return "", err
	}

	if h.Archiver != nil {
		if err := h.Archiver.Archive(ctx, outcome.RequestID, fh.Filename, data, text); err != nil {
			telemetry.Warn("analysis.archive_failed", map[string]any{
				"request_id": outcome.RequestID,
				"file_name":  fh.Filename,
				"error":      err.Error(),
			})
		}
	}
	return text, nil
}

func (h *Handler) notify(ctx context.Context, outcome Outcome) {
	metrics.IncRequest(outcome.SourceKind, outcome.Status)
	if len(h.Observers) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), observeTimeout)
	defer cancel()
	for _, o := range h.Observers {
		if o == nil {
			continue
		}
		if err := o.Observe(ctx, outcome); err != nil {
			telemetry.Warn("analysis.observer_failed", map[string]any{
				"request_id": outcome.RequestID,
				"observer":   fmt.Sprintf("%T", o),
				"error":      err.Error(),
			})
		}
	}
}

// classify maps an error to its outcome kind and client-facing detail.
func classify(err error) (string, string) {
	var ve *ValidationError
	var ee *extract.ExtractionError
	var ae *AnalysisError
	switch {
	case errors.As(err, &ve):
		return ErrorKindValidation, ve.Detail
	case errors.As(err, &ee):
		return ErrorKindExtraction, fmt.Sprintf("Error extracting text from %s: %v", ee.Format.Label(), ee.Err)
	case errors.As(err, &ae):
		return ErrorKindAnalysis, fmt.Sprintf("Error analyzing document: %v", ae.Err)
	default:
		return ErrorKindUnexpected, fmt.Sprintf("Unexpected error: %v", err)
	}
}

func statusFor(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		if ve == ErrFileTooLarge {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
