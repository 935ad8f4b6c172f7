package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LogAppended is emitted after an entry is added to the request log.
type LogAppended struct {
	Entry APILog `json:"entry"`
}

// LogCleared is emitted after the request log is emptied.
type LogCleared struct {
	At time.Time `json:"at"`
}

// State is the explorer's view state: the last returned page, its paging
// summary and the shared loading flag.
type State struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
	Loading    bool       `json:"loading"`
}

// StateChanged is emitted whenever products, pagination or the loading flag change.
type StateChanged struct {
	State State `json:"state"`
}

// Envelope is the canonical event envelope published to NATS.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	Source        string          `json:"source"`
	Topic         string          `json:"topic"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}
