package queue

import (
	"encoding/json"
	"time"
)

// MessageVersion is the current payload version.
const MessageVersion = 1

// Message kinds.
const (
	KindAnalysis       = "analysis"
	KindDataSourceSync = "datasource_sync"
)

// Message is the payload sent to downstream queue consumers. Kind is empty
// on payloads from older producers and means an analysis job.
type Message struct {
	Kind         string    `json:"kind,omitempty"`
	AnalysisID   string    `json:"analysisId,omitempty"`
	DataSourceID string    `json:"dataSourceId,omitempty"`
	RequestID    string    `json:"requestId"`
	EnqueuedAt   time.Time `json:"enqueuedAt"`
	Version      int       `json:"version"`
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
