package api

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/product-explorer/internal/explorer"
	"github.com/Checker-Finance/product-explorer/pkg/model"
)

// Service defines the explorer operations the handlers drive.
// *explorer.Explorer satisfies it.
type Service interface {
	FetchProducts(ctx context.Context, f model.ListFilters) explorer.Result[model.ProductsResponse]
	GetProduct(ctx context.Context, id string) explorer.Result[model.Product]
	CreateProduct(ctx context.Context, data model.ProductFormData) explorer.Result[model.Product]
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) explorer.Result[model.Product]
	DeleteProduct(ctx context.Context, id string) explorer.Result[json.RawMessage]
	ClearLogs()
	Logs() []model.APILog
	State() model.State
}

// PageInfo describes the remote API on the dashboard header.
type PageInfo struct {
	Title   string
	BaseURL string
	DocsURL string
}

// Handler serves the JSON control API, the dashboard and its form posts.
type Handler struct {
	logger *zap.Logger
	svc    Service
	page   PageInfo
}

// NewHandler creates a new Handler.
func NewHandler(logger *zap.Logger, svc Service, page PageInfo) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if page.Title == "" {
		page.Title = "Product Explorer"
	}
	return &Handler{
		logger: logger,
		svc:    svc,
		page:   page,
	}
}

// State returns the held page, its pagination and the loading flag.
func (h *Handler) State(c *fiber.Ctx) error {
	return c.JSON(h.svc.State())
}

// Logs returns the request log, newest first.
func (h *Handler) Logs(c *fiber.Ctx) error {
	logs := h.svc.Logs()
	return c.JSON(LogsResponse{Count: len(logs), Logs: logs})
}

// ClearLogs empties the request log.
func (h *Handler) ClearLogs(c *fiber.Ctx) error {
	h.svc.ClearLogs()
	return c.SendStatus(fiber.StatusNoContent)
}

// ListProducts handles GET /api/v1/products.
func (h *Handler) ListProducts(c *fiber.Ctx) error {
	var q ListProductsQuery
	if err := c.QueryParser(&q); err != nil {
		return writeBadRequest(c, &ValidationError{Message: MsgFilters})
	}
	return writeResult(c, h.svc.FetchProducts(c.Context(), q.Filters()))
}

// GetProduct handles GET /api/v1/products/:id.
func (h *Handler) GetProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := ValidateID(id); err != nil {
		return writeBadRequest(c, err)
	}
	return writeResult(c, h.svc.GetProduct(c.Context(), id))
}

// CreateProduct handles POST /api/v1/products.
func (h *Handler) CreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if err := ValidateCreate(req); err != nil {
		return writeBadRequest(c, err)
	}

	res := h.svc.CreateProduct(c.Context(), req.FormData())
	if !res.Success {
		h.logger.Info("api.create_product.failed",
			zap.Int("status", res.Status),
			zap.String("error", res.Error()))
	}
	return writeResult(c, res)
}

// UpdateProduct handles PATCH /api/v1/products/:id.
func (h *Handler) UpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	req = req.Normalized()
	if err := ValidateUpdate(id, req); err != nil {
		return writeBadRequest(c, err)
	}
	return writeResult(c, h.svc.UpdateProduct(c.Context(), id, req.Patch()))
}

// DeleteProduct handles DELETE /api/v1/products/:id.
func (h *Handler) DeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := ValidateID(id); err != nil {
		return writeBadRequest(c, err)
	}
	return writeResult(c, h.svc.DeleteProduct(c.Context(), id))
}
