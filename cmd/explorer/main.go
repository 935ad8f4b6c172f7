package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/Checker-Finance/product-explorer/internal/api"
	"github.com/Checker-Finance/product-explorer/internal/catalog"
	"github.com/Checker-Finance/product-explorer/internal/explorer"
	"github.com/Checker-Finance/product-explorer/internal/httpclient"
	"github.com/Checker-Finance/product-explorer/internal/publisher"
	"github.com/Checker-Finance/product-explorer/internal/rate"
	"github.com/Checker-Finance/product-explorer/pkg/config"
	"github.com/Checker-Finance/product-explorer/pkg/eventbus"
	"github.com/Checker-Finance/product-explorer/pkg/logger"
	"github.com/Checker-Finance/product-explorer/pkg/model"
	"github.com/Checker-Finance/product-explorer/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Infof("starting [%s]...", cfg.ServiceName)
	logg.Infow("product API", "base_url", cfg.APIBaseURL, "docs", cfg.APIDocsURL)

	// --- Rate limiter (off unless API_RATE_LIMIT_RPS is set) ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})

	// --- Product API client ---
	exec := httpclient.New(logg.Desugar(), rateMgr, &http.Client{Timeout: cfg.APIRequestTimeout})
	client := catalog.NewClient(logg.Desugar(), exec, cfg.APIBaseURL)

	// --- Explorer state + event bus ---
	bus := eventbus.New()
	exp := explorer.New(logg.Desugar(), client, explorer.WithEvents(bus))

	// --- Optional NATS mirror of the request log ---
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		var err error
		nc, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.ServiceName))
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "url", utils.MaskURL(cfg.NATSURL), "error", err)
		}
		pub := publisher.New(nc, cfg.NATSSubject, cfg.ServiceName, publisher.DefaultBuffer, logg.Desugar())
		pub.Attach(bus)
		go pub.Run(ctx)
		logg.Infow("request log mirrored to NATS", "url", utils.MaskURL(cfg.NATSURL), "subject", cfg.NATSSubject)
	} else {
		logg.Info("NATS_URL not configured; request log mirror disabled")
	}

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	handler := api.NewHandler(logg.Desugar(), exp, api.PageInfo{
		Title:   "Product Explorer",
		BaseURL: cfg.APIBaseURL,
		DocsURL: cfg.APIDocsURL,
	})
	keepAlive := cfg.StreamKeepAlive
	if cfg.HTTPWriteTimeout > 0 && keepAlive >= cfg.HTTPWriteTimeout {
		keepAlive = cfg.HTTPWriteTimeout / 2
	}
	streamer := api.NewStreamer(logg.Desugar(), bus, exp, keepAlive)
	api.RegisterRoutes(app, nc, handler, streamer)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	// --- Initial listing, as the dashboard shows on first load ---
	go func() {
		res := exp.FetchProducts(ctx, model.ListFilters{Page: 1, Limit: 10})
		if !res.Success {
			logg.Warnw("initial product fetch failed", "status", res.Status, "error", res.Error())
			return
		}
		logg.Infow("initial product fetch", "loaded", len(res.Data.Data), "total", res.Data.Total)
	}()

	logg.Infow(fmt.Sprintf("[%s] running", cfg.ServiceName),
		"env", cfg.Env,
		"port", cfg.Port,
		"rate_limit_rps", cfg.RateLimitRPS)

	<-ctx.Done()
	logg.Infof("shutting down [%s]...", cfg.ServiceName)

	streamer.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
}
