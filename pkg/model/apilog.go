package model

import (
	"encoding/json"
	"time"
)

// Method is one of the HTTP verbs the explorer issues.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// APILog records one HTTP attempt against the product API and its outcome.
// Entries are never mutated after they are appended to the log.
type APILog struct {
	ID           string          `json:"id"`
	Method       Method          `json:"method"`
	Endpoint     string          `json:"endpoint"`
	Status       int             `json:"status"`
	Timestamp    time.Time       `json:"timestamp"`
	Duration     int64           `json:"duration"` // milliseconds
	RequestBody  json.RawMessage `json:"requestBody,omitempty"`
	ResponseBody json.RawMessage `json:"responseBody,omitempty"`
}

// Succeeded reports whether the logged status is in the 2xx range.
func (l APILog) Succeeded() bool {
	return l.Status >= 200 && l.Status < 300
}
