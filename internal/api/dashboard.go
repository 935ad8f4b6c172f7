package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Checker-Finance/product-explorer/pkg/model"
	"github.com/Checker-Finance/product-explorer/pkg/utils"
)

const (
	viewTable = "table"
	viewCards = "cards"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(
	template.New("dashboard.html").Funcs(template.FuncMap{
		"price":       formatPrice,
		"shortID":     func(id string) string { return utils.ShortID(id, 8) },
		"date":        formatDate,
		"clock":       func(t time.Time) string { return t.Format("15:04:05") },
		"statusClass": statusClass,
		"lower":       strings.ToLower,
		"pretty":      prettyJSON,
	}).ParseFS(templateFS, "templates/dashboard.html"),
)

type dashboardData struct {
	Page  PageInfo
	View  string
	State model.State
	Logs  []model.APILog
	Flash *Flash
}

// Dashboard renders the control panel, request log and data panel.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	view := viewTable
	if c.Query("view") == viewCards {
		view = viewCards
	}

	data := dashboardData{
		Page:  h.page,
		View:  view,
		State: h.svc.State(),
		Logs:  h.svc.Logs(),
		Flash: decodeFlash(c.Cookies(flashCookie)),
	}
	if data.Flash != nil {
		c.ClearCookie(flashCookie)
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		h.logger.Error("api.dashboard.render_failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "render failed")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// formatPrice renders a price with exactly two decimals.
func formatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatDate(s string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return s
}

func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "ok"
	case status >= 400 && status < 500:
		return "warn"
	default:
		return "err"
	}
}

func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
