package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Checker-Finance/product-explorer/internal/explorer"
	"github.com/Checker-Finance/product-explorer/pkg/model"
)

// OperationResponse wraps the outcome of one product API call.
// Data is the remote body as received, or the synthetic network error body.
type OperationResponse struct {
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// ErrorResponse reports input rejected before any remote call.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Fields  []string `json:"fields,omitempty"`
}

// LogsResponse is the body of GET /api/v1/logs.
type LogsResponse struct {
	Count int            `json:"count"`
	Logs  []model.APILog `json:"logs"`
}

var jsonNull = json.RawMessage("null")

// writeResult answers 200 when the remote call succeeded and 502 otherwise.
func writeResult[T any](c *fiber.Ctx, res explorer.Result[T]) error {
	code := fiber.StatusOK
	if !res.Success {
		code = fiber.StatusBadGateway
	}
	data := res.Raw
	if len(data) == 0 {
		data = jsonNull
	}
	return c.Status(code).JSON(OperationResponse{
		Success: res.Success,
		Status:  res.Status,
		Data:    data,
		Error:   res.Error(),
	})
}

func writeBadRequest(c *fiber.Ctx, err error) error {
	resp := ErrorResponse{Error: err.Error()}
	var ve *ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}
