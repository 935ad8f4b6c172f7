package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/Checker-Finance/product-explorer/internal/api"
	"github.com/Checker-Finance/product-explorer/internal/catalog"
	"github.com/Checker-Finance/product-explorer/internal/explorer"
	"github.com/Checker-Finance/product-explorer/internal/httpclient"
	"github.com/Checker-Finance/product-explorer/pkg/config"
	"github.com/Checker-Finance/product-explorer/pkg/logger"
	"github.com/Checker-Finance/product-explorer/pkg/model"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	serviceName = "explorerctl"
)

const usage = `usage: explorerctl [--base-url URL] [--log-level LEVEL] [--timeout D] <command> [flags]

commands:
  list   [--page N] [--limit N] [--category C] [--min-price P] [--max-price P]
  get    <id>
  create --name NAME --price PRICE --category CATEGORY
  update <id> [--name NAME] [--price PRICE] [--category CATEGORY]
  delete <id>
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	global := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	baseURL := global.String("base-url", cfg.APIBaseURL, "product API base URL")
	logLevel := global.String("log-level", "warn", "log level (debug, info, warn, error)")
	timeout := global.Duration("timeout", cfg.APIRequestTimeout, "per-request timeout (0 = none)")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		return exitUsage
	}

	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	logger.Init(serviceName, "prod", *logLevel)
	defer logger.Sync()

	exec := httpclient.New(logger.L(), nil, &http.Client{Timeout: *timeout})
	client := catalog.NewClient(logger.L(), exec, strings.TrimRight(*baseURL, "/"))
	exp := explorer.New(logger.L(), client)

	ok, err := dispatch(ctx, exp, rest[0], rest[1:], stdout)
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(stderr, "error:", err)
		}
		if errors.Is(err, errUsage) || errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(stderr, usage)
		}
		return exitUsage
	}

	printLogs(stdout, exp.Logs())
	if !ok {
		return exitFailed
	}
	return exitOK
}

// dispatch runs one command. A non-nil error means no request was made.
func dispatch(ctx context.Context, exp *explorer.Explorer, cmd string, args []string, out io.Writer) (bool, error) {
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	switch cmd {
	case "list":
		page := fs.Int("page", 0, "page number")
		limit := fs.Int("limit", 0, "page size")
		category := fs.String("category", "", "category filter")
		minPrice := fs.Float64("min-price", 0, "minimum price")
		maxPrice := fs.Float64("max-price", 0, "maximum price")
		if err := fs.Parse(args); err != nil {
			return false, err
		}
		q := api.ListProductsQuery{Page: *page, Limit: *limit, Category: *category, MinPrice: *minPrice, MaxPrice: *maxPrice}
		res := exp.FetchProducts(ctx, q.Filters())
		return printResult(out, res.Success, res.Status, res.Raw), nil

	case "get":
		if err := fs.Parse(args); err != nil {
			return false, err
		}
		id := fs.Arg(0)
		if err := api.ValidateID(id); err != nil {
			return false, err
		}
		res := exp.GetProduct(ctx, id)
		return printResult(out, res.Success, res.Status, res.Raw), nil

	case "create":
		name := fs.String("name", "", "product name")
		price := fs.Float64("price", 0, "product price")
		category := fs.String("category", "", "product category")
		if err := fs.Parse(args); err != nil {
			return false, err
		}
		req := api.CreateProductRequest{Name: *name, Price: *price, Category: *category}
		if err := api.ValidateCreate(req); err != nil {
			return false, err
		}
		res := exp.CreateProduct(ctx, req.FormData())
		return printResult(out, res.Success, res.Status, res.Raw), nil

	case "update":
		name := fs.String("name", "", "new product name")
		price := fs.Float64("price", 0, "new product price")
		category := fs.String("category", "", "new product category")
		if err := fs.Parse(args); err != nil {
			return false, err
		}
		var req api.UpdateProductRequest
		if fs.Changed("name") {
			req.Name = name
		}
		if fs.Changed("price") {
			req.Price = price
		}
		if fs.Changed("category") {
			req.Category = category
		}
		req = req.Normalized()
		id := fs.Arg(0)
		if err := api.ValidateUpdate(id, req); err != nil {
			return false, err
		}
		res := exp.UpdateProduct(ctx, id, req.Patch())
		return printResult(out, res.Success, res.Status, res.Raw), nil

	case "delete":
		if err := fs.Parse(args); err != nil {
			return false, err
		}
		id := fs.Arg(0)
		if err := api.ValidateID(id); err != nil {
			return false, err
		}
		res := exp.DeleteProduct(ctx, id)
		return printResult(out, res.Success, res.Status, res.Raw), nil
	}

	return false, fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func printResult(out io.Writer, success bool, status int, raw json.RawMessage) bool {
	data := raw
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	b, err := json.MarshalIndent(struct {
		Success bool            `json:"success"`
		Status  int             `json:"status"`
		Data    json.RawMessage `json:"data"`
	}{success, status, data}, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "{\"success\":%t,\"status\":%d}\n", success, status)
		return success
	}
	fmt.Fprintln(out, string(b))
	return success
}

func printLogs(out io.Writer, logs []model.APILog) {
	fmt.Fprintf(out, "\n--- request log (%d) ---\n", len(logs))
	for _, l := range logs {
		fmt.Fprintf(out, "%-6s %-40s %3d %6dms %s\n",
			l.Method, l.Endpoint, l.Status, l.Duration, l.Timestamp.Format(time.TimeOnly))
		if len(l.ResponseBody) > 0 {
			fmt.Fprintf(out, "       <- %s\n", l.ResponseBody)
		}
	}
}
