package explorer

import (
	"encoding/json"
	"fmt"

	"github.com/Checker-Finance/product-explorer/internal/catalog"
)

// Result is what every explorer operation hands back to its caller.
// Success mirrors the HTTP status class and nothing else. Err is set for a
// non-2xx status, a transport failure, or a 2xx body that does not decode
// into T. Raw always carries the body that was logged (the synthetic network
// error body on transport failure).
type Result[T any] struct {
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Data    T               `json:"data"`
	Raw     json.RawMessage `json:"-"`
	Err     error           `json:"-"`
}

// Error returns the failure reason, or "" for a successful result.
func (r Result[T]) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// resultOf converts a finished call into a Result, decoding the body into T
// when the call succeeded. A 2xx body that does not fit T keeps Success and
// reports the decode error in Err.
func resultOf[T any](call catalog.Call) Result[T] {
	res := Result[T]{
		Success: call.OK(),
		Status:  call.Exchange.Status,
		Raw:     json.RawMessage(call.Exchange.Body),
		Err:     call.Err(),
	}
	if !res.Success {
		return res
	}
	if err := call.Decode(&res.Data); err != nil {
		res.Err = fmt.Errorf("%s %s: %w", call.Method, call.Endpoint, err)
	}
	return res
}
