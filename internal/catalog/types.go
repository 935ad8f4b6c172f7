package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Checker-Finance/product-explorer/internal/httpclient"
	"github.com/Checker-Finance/product-explorer/pkg/model"
)

// ErrNetwork is reported for calls that produced no usable response.
var ErrNetwork = httpclient.ErrNetwork

// StatusError reports a non-2xx response from the product API.
type StatusError struct {
	Method   model.Method
	Endpoint string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s returned %d", e.Method, e.Endpoint, e.Status)
}

// errorBody is the shape of the product API's error payloads.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Call describes one request issued by the Client and what came back.
type Call struct {
	Method      model.Method
	Endpoint    string
	RequestBody []byte
	Exchange    httpclient.Exchange
}

// OK reports whether the response status is in the 2xx range.
func (c Call) OK() bool {
	return c.Exchange.OK()
}

// Err returns nil for a 2xx call, an error wrapping ErrNetwork for transport
// failures and a *StatusError otherwise.
func (c Call) Err() error {
	switch {
	case c.Exchange.Failed:
		return c.Exchange.Err
	case c.OK():
		return nil
	}
	var body errorBody
	_ = json.Unmarshal(c.Exchange.Body, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	return &StatusError{Method: c.Method, Endpoint: c.Endpoint, Status: c.Exchange.Status, Message: msg}
}

// Decode unmarshals the response body into out. An empty or null body leaves out untouched.
func (c Call) Decode(out any) error {
	if len(c.Exchange.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(c.Exchange.Body, out); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

// IsNetworkError reports whether err stems from a call without a usable response.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}
