package audit

import "time"

// Record is the stored metadata of one /analyze request. Document text,
// questions and model output are never stored.
type Record struct {
	ID            string    `json:"id"`
	RequestID     string    `json:"requestId"`
	SourceKind    string    `json:"sourceKind"`
	FileName      string    `json:"fileName,omitempty"`
	TextChars     int       `json:"textChars"`
	QuestionAsked bool      `json:"questionAsked"`
	Status        string    `json:"status"`
	ErrorKind     string    `json:"errorKind,omitempty"`
	UpstreamCalls int       `json:"upstreamCalls"`
	DurationMs    int64     `json:"durationMs"`
	CreatedAt     time.Time `json:"createdAt"`
}
