package analysis

import "time"

// Input is the text to analyze plus an optional question.
type Input struct {
	Text     string
	Question string
}

// Result is the /analyze response body. Answer is present only when a
// question was asked.
type Result struct {
	Summary string  `json:"summary"`
	Clauses string  `json:"clauses"`
	Answer  *string `json:"answer,omitempty"`
}

// Source kinds recorded for a request.
const (
	SourceText = "text"
	SourcePDF  = "pdf"
	SourceDOCX = "docx"
	SourceNone = "none"
)

// Outcome kinds.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	ErrorKindValidation = "validation"
	ErrorKindExtraction = "extraction"
	ErrorKindAnalysis   = "analysis"
	ErrorKindUnexpected = "unexpected"
)

// Outcome summarizes one /analyze request for observers.
type Outcome struct {
	RequestID     string
	SourceKind    string
	FileName      string
	TextChars     int
	QuestionAsked bool
	Status        string
	ErrorKind     string
	Detail        string
	UpstreamCalls int
	Duration      time.Duration
	CreatedAt     time.Time
}
