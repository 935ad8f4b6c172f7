package api

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/product-explorer/pkg/utils"
)

const flashCookie = "explorer_flash"

// Flash is a one-shot notification shown on the next dashboard render.
type Flash struct {
	Kind    string // "success" | "error"
	Message string
}

func (f Flash) encode() string {
	return url.QueryEscape(f.Kind + "|" + f.Message)
}

func decodeFlash(raw string) *Flash {
	if raw == "" {
		return nil
	}
	s, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(s, "|")
	if !ok || msg == "" {
		return nil
	}
	if kind != "success" {
		kind = "error"
	}
	return &Flash{Kind: kind, Message: msg}
}

// redirectWithFlash sends the browser back to the dashboard with a notification.
func redirectWithFlash(c *fiber.Ctx, view string, f Flash) error {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    f.encode(),
		Path:     "/",
		Expires:  time.Now().Add(time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(dashboardPath(view), fiber.StatusSeeOther)
}

func dashboardPath(view string) string {
	if view == viewCards {
		return "/?view=" + viewCards
	}
	return "/"
}

func failed(action string, status int) Flash {
	return Flash{Kind: "error", Message: fmt.Sprintf("Failed to %s (status %d)", action, status)}
}

// UIFetchProducts handles the dashboard's "fetch all" form.
func (h *Handler) UIFetchProducts(c *fiber.Ctx) error {
	var form FilterForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithFlash(c, "", Flash{Kind: "error", Message: MsgFilters})
	}
	res := h.svc.FetchProducts(c.Context(), form.query().Filters())
	if !res.Success {
		return redirectWithFlash(c, form.View, failed("fetch products", res.Status))
	}
	return redirectWithFlash(c, form.View, Flash{
		Kind:    "success",
		Message: fmt.Sprintf("Loaded %d of %d products", len(res.Data.Data), res.Data.Total),
	})
}

// UIGetProduct handles the dashboard's "get product" form.
func (h *Handler) UIGetProduct(c *fiber.Ctx) error {
	var form ProductForm
	_ = c.BodyParser(&form)
	if err := ValidateID(form.ID); err != nil {
		return redirectWithFlash(c, form.View, Flash{Kind: "error", Message: err.Error()})
	}
	res := h.svc.GetProduct(c.Context(), form.ID)
	if !res.Success {
		return redirectWithFlash(c, form.View, failed("fetch product", res.Status))
	}
	return redirectWithFlash(c, form.View, Flash{
		Kind:    "success",
		Message: fmt.Sprintf("Found %q (%s)", res.Data.Name, utils.ShortID(res.Data.ID, 8)),
	})
}

// UICreateProduct handles the dashboard's create form.
func (h *Handler) UICreateProduct(c *fiber.Ctx) error {
	var form ProductForm
	_ = c.BodyParser(&form)
	req := form.createRequest()
	if err := ValidateCreate(req); err != nil {
		return redirectWithFlash(c, form.View, Flash{Kind: "error", Message: err.Error()})
	}
	res := h.svc.CreateProduct(c.Context(), req.FormData())
	if !res.Success {
		h.logger.Info("api.ui_create_product.failed", zap.Int("status", res.Status))
		return redirectWithFlash(c, form.View, Flash{Kind: "error", Message: "Failed to create product"})
	}
	return redirectWithFlash(c, form.View, Flash{Kind: "success", Message: "Product created successfully!"})
}

// UIUpdateProduct handles the dashboard's update form.
func (h *Handler) UIUpdateProduct(c *fiber.Ctx) error {
	var form ProductForm
	_ = c.BodyParser(&form)
	req := form.updateRequest()
	if err := ValidateUpdate(form.ID, req); err != nil {
		return redirectWithFlash(c, form.View, Flash{Kind: "error", Message: err.Error()})
	}
	res := h.svc.UpdateProduct(c.Context(), form.ID, req.Patch())
	if !res.Success {
		return redirectWithFlash(c, form.View, failed("update product", res.Status))
	}
	return redirectWithFlash(c, form.View, Flash{Kind: "success", Message: "Product updated successfully!"})
}

// UIDeleteProduct handles the dashboard's delete form and the per-row delete buttons.
func (h *Handler) UIDeleteProduct(c *fiber.Ctx) error {
	var form ProductForm
	_ = c.BodyParser(&form)
	if err := ValidateID(form.ID); err != nil {
		return redirectWithFlash(c, form.View, Flash{Kind: "error", Message: err.Error()})
	}
	res := h.svc.DeleteProduct(c.Context(), form.ID)
	if !res.Success {
		return redirectWithFlash(c, form.View, failed("delete product", res.Status))
	}
	return redirectWithFlash(c, form.View, Flash{Kind: "success", Message: "Product deleted successfully!"})
}

// UIClearLogs handles the request log's clear button.
func (h *Handler) UIClearLogs(c *fiber.Ctx) error {
	h.svc.ClearLogs()
	return c.Redirect(dashboardPath(c.FormValue("view")), fiber.StatusSeeOther)
}
