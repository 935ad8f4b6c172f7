package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Checker-Finance/product-explorer/internal/httpclient"
	"github.com/Checker-Finance/product-explorer/pkg/model"
)

// Client wraps low-level HTTP communication with the product API.
// It has no state: every method performs one request and describes it in a Call.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
}

// NewClient constructs a product API client rooted at baseURL (e.g. "https://host/api").
func NewClient(logger *zap.Logger, exec *httpclient.Executor, baseURL string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		logger:  logger,
		exec:    exec,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// List fetches a page of products.
// GET /products?page&limit&category&minPrice&maxPrice
func (c *Client) List(ctx context.Context, f model.ListFilters) Call {
	return c.do(ctx, model.MethodGet, ListEndpoint(f), nil)
}

// Get fetches a single product.
// GET /products/{id}
func (c *Client) Get(ctx context.Context, id string) Call {
	return c.do(ctx, model.MethodGet, productEndpoint(id), nil)
}

// Create posts a new product.
// POST /products
func (c *Client) Create(ctx context.Context, data model.ProductFormData) Call {
	return c.doJSON(ctx, model.MethodPost, "/products", data)
}

// Update patches the given fields of a product.
// PATCH /products/{id}
func (c *Client) Update(ctx context.Context, id string, patch model.ProductPatch) Call {
	return c.doJSON(ctx, model.MethodPatch, productEndpoint(id), patch)
}

// Delete removes a product. A 204 response carries no body.
// DELETE /products/{id}
func (c *Client) Delete(ctx context.Context, id string) Call {
	return c.do(ctx, model.MethodDelete, productEndpoint(id), nil)
}

// ListEndpoint builds the listing path. Unset filters are omitted and the
// remaining parameters keep the order page, limit, category, minPrice, maxPrice.
func ListEndpoint(f model.ListFilters) string {
	var params []string
	add := func(key, val string) {
		params = append(params, key+"="+url.QueryEscape(val))
	}
	if f.Page != 0 {
		add("page", strconv.Itoa(f.Page))
	}
	if f.Limit != 0 {
		add("limit", strconv.Itoa(f.Limit))
	}
	if f.Category != "" {
		add("category", f.Category)
	}
	if f.MinPrice != 0 {
		add("minPrice", formatNumber(f.MinPrice))
	}
	if f.MaxPrice != 0 {
		add("maxPrice", formatNumber(f.MaxPrice))
	}
	if len(params) == 0 {
		return "/products"
	}
	return "/products?" + strings.Join(params, "&")
}

func productEndpoint(id string) string {
	return "/products/" + url.PathEscape(id)
}

// formatNumber renders a float the shortest way, so 25 is "25" and 9.5 is "9.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *Client) doJSON(ctx context.Context, method model.Method, endpoint string, body any) Call {
	data, err := json.Marshal(body)
	if err != nil {
		// the payload types are plain structs; this only fires on NaN/Inf prices
		c.logger.Error("catalog.marshal_failed", zap.String("endpoint", endpoint), zap.Error(err))
		return Call{
			Method:   method,
			Endpoint: endpoint,
			Exchange: httpclient.Exchange{}.AsNetworkFailure(fmt.Errorf("marshal request: %w", err)),
		}
	}
	return c.do(ctx, method, endpoint, data)
}

func (c *Client) do(ctx context.Context, method model.Method, endpoint string, body []byte) Call {
	call := Call{Method: method, Endpoint: endpoint, RequestBody: body}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := newRequest(ctx, string(method), c.baseURL+endpoint, reader)
	if err != nil {
		call.Exchange = httpclient.Exchange{}.AsNetworkFailure(err)
		return call
	}
	setHeaders(req, body != nil)

	call.Exchange = normalize(method, c.exec.Do(ctx, req, endpoint))
	return call
}

func newRequest(ctx context.Context, method, target string, body *bytes.Reader) (*http.Request, error) {
	if body == nil {
		return http.NewRequestWithContext(ctx, method, target, nil)
	}
	return http.NewRequestWithContext(ctx, method, target, body)
}

// normalize applies the body rules every response goes through:
// a DELETE answered with 204 has no body to parse, anything else must be JSON.
// An unparseable body is indistinguishable from a transport failure to the caller.
func normalize(method model.Method, x httpclient.Exchange) httpclient.Exchange {
	if x.Failed {
		return x
	}
	if method == model.MethodDelete && x.Status == http.StatusNoContent {
		x.Body = nil
		return x
	}
	if !json.Valid(x.Body) {
		return x.AsNetworkFailure(fmt.Errorf("decode %d response: invalid JSON body", x.Status))
	}
	return x
}

// setHeaders sets the headers the product API expects.
func setHeaders(req *http.Request, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
}
