package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"lawxpert-backend/internal/llm"
	"lawxpert-backend/internal/shared/metrics"
	"lawxpert-backend/internal/shared/telemetry"
)

// Service runs the fixed summary, clauses and question sequence against a
// text generator.
type Service struct {
	LLM llm.Generator
	// CallTimeout bounds each model invocation; zero leaves only the caller's deadline.
	CallTimeout time.Duration
}

// NewService constructs a Service.
func NewService(gen llm.Generator, callTimeout time.Duration) *Service {
	return &Service{LLM: gen, CallTimeout: callTimeout}
}

// Analyze summarizes the text, extracts its key clauses and, when a
// non-blank question is given, answers it. The first failing call stops the
// sequence and is returned as *AnalysisError.
func (s *Service) Analyze(ctx context.Context, in Input) (Result, error) {
	if s == nil || s.LLM == nil {
		return Result{}, &AnalysisError{Stage: StageSummary, Err: errNoGenerator}
	}

	startedAt := time.Now()
	question := in.Question
	asked := strings.TrimSpace(question) != ""
	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.status", map[string]any{
		"request_id":     RequestIDFromContext(ctx),
		"status":         "processing",
		"text_chars":     len(in.Text),
		"question_asked": asked,
	})

	calls := 0
	run := func(stage Stage, prompt string) (string, error) {
		calls++
		text, err := s.generate(ctx, prompt)
		if err != nil {
			return "", stageError(stage, calls, err)
		}
		return text, nil
	}

	var result Result
	var err error
	if result.Summary, err = run(StageSummary, llm.SummaryPrompt(in.Text)); err != nil {
		return Result{}, s.fail(ctx, err, calls, startedAt)
	}
	if result.Clauses, err = run(StageClauses, llm.ClausesPrompt(in.Text)); err != nil {
		return Result{}, s.fail(ctx, err, calls, startedAt)
	}
	if asked {
		answer, err := run(StageQuestion, llm.QuestionPrompt(in.Text, question))
		if err != nil {
			return Result{}, s.fail(ctx, err, calls, startedAt)
		}
		result.Answer = &answer
	}

	durationMs := msSince(startedAt)
	metrics.AddUpstreamCalls(calls)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(durationMs)
	telemetry.Info("analysis.status", map[string]any{
		"request_id":     RequestIDFromContext(ctx),
		"status":         StatusCompleted,
		"upstream_calls": calls,
		"duration_ms":    durationMs,
	})
	return result, nil
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.CallTimeout)
		defer cancel()
	}
	resp, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return llm.ResponseText(resp)
}

func (s *Service) fail(ctx context.Context, err error, calls int, startedAt time.Time) error {
	durationMs := msSince(startedAt)
	metrics.AddUpstreamCalls(calls)
	metrics.ObserveAnalysisDurationMs(durationMs)
	fields := map[string]any{
		"request_id":     RequestIDFromContext(ctx),
		"status":         StatusFailed,
		"upstream_calls": calls,
		"duration_ms":    durationMs,
		"error":          err.Error(),
	}
	stage := "unknown"
	var ae *AnalysisError
	if errors.As(err, &ae) {
		stage = string(ae.Stage)
		fields["stage"] = stage
	}
	metrics.IncAnalysisFailed(stage)
	telemetry.Error("analysis.status", fields)
	return err
}

// UpstreamCalls reports how many model invocations produced result or err.
func UpstreamCalls(result Result, err error) int {
	if err != nil {
		var ae *AnalysisError
		if errors.As(err, &ae) {
			return ae.Calls
		}
		return 0
	}
	if result.Answer != nil {
		return 3
	}
	return 2
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
