package queue

import "encoding/json"

// MessageVersion is bumped when Message changes incompatibly.
const MessageVersion = 1

// Event types.
const (
	EventAnalysisCompleted = "analysis.completed"
	EventAnalysisFailed    = "analysis.failed"
)

// Message is the payload sent to downstream queue consumers after every
// /analyze request.
type Message struct {
	Type          string `json:"type"`
	AuditID       string `json:"auditId"`
	RequestID     string `json:"requestId"`
	Status        string `json:"status"`
	SourceKind    string `json:"sourceKind"`
	ErrorKind     string `json:"errorKind,omitempty"`
	UpstreamCalls int    `json:"upstreamCalls"`
	EmittedAt     string `json:"emittedAt"`
	Version       int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
