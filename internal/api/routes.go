package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the dashboard, the JSON control API, the event stream,
// health and metrics. nc may be nil when the NATS mirror is disabled.
func RegisterRoutes(app *fiber.App, nc *nats.Conn, handler *Handler, streamer *Streamer) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"nats": "disabled",
		}
		status := "ok"
		code := fiber.StatusOK

		if nc != nil {
			checks["nats"] = "ok"
			if !nc.IsConnected() {
				checks["nats"] = "disconnected"
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
				checks["nats"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// Dashboard
	app.Get("/", handler.Dashboard)
	ui := app.Group("/ui")
	ui.Post("/products/fetch", handler.UIFetchProducts)
	ui.Post("/products/get", handler.UIGetProduct)
	ui.Post("/products/create", handler.UICreateProduct)
	ui.Post("/products/update", handler.UIUpdateProduct)
	ui.Post("/products/delete", handler.UIDeleteProduct)
	ui.Post("/logs/clear", handler.UIClearLogs)

	// API routes
	v1 := app.Group("/api/v1")
	v1.Get("/state", handler.State)
	v1.Get("/logs", handler.Logs)
	v1.Delete("/logs", handler.ClearLogs)
	v1.Get("/products", handler.ListProducts)
	v1.Get("/products/:id", handler.GetProduct)
	v1.Post("/products", handler.CreateProduct)
	v1.Patch("/products/:id", handler.UpdateProduct)
	v1.Delete("/products/:id", handler.DeleteProduct)
	if streamer != nil {
		v1.Get("/stream", streamer.Stream)
	}
}
