package explorer

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/product-explorer/internal/apilog"
	"github.com/Checker-Finance/product-explorer/internal/catalog"
	"github.com/Checker-Finance/product-explorer/pkg/model"
)

// DeletedPlaceholder is logged as the response body of a bodyless delete.
var DeletedPlaceholder = json.RawMessage(`{"message":"Product deleted"}`)

// ProductAPI is the transport the explorer drives.
type ProductAPI interface {
	List(ctx context.Context, f model.ListFilters) catalog.Call
	Get(ctx context.Context, id string) catalog.Call
	Create(ctx context.Context, data model.ProductFormData) catalog.Call
	Update(ctx context.Context, id string, patch model.ProductPatch) catalog.Call
	Delete(ctx context.Context, id string) catalog.Call
}

// EventPublisher receives state and log events. *eventbus.EventBus satisfies it.
type EventPublisher interface {
	PublishSync(event any)
}

// Explorer issues product API calls, records each one in a capped log and
// keeps the last listed page for display.
//
// The mutex only protects memory. Overlapping calls are not fenced: whichever
// listing resolves last owns the product page, and the single loading flag is
// cleared by whichever call finishes first.
type Explorer struct {
	logger *zap.Logger
	api    ProductAPI
	log    *apilog.Log
	events EventPublisher

	mu         sync.RWMutex
	products   []model.Product
	pagination model.Pagination
	loading    bool
}

// Option customises an Explorer.
type Option func(*Explorer)

// WithEvents publishes LogAppended, LogCleared and StateChanged events.
func WithEvents(p EventPublisher) Option {
	return func(e *Explorer) { e.events = p }
}

// WithLog replaces the default 50-entry log.
func WithLog(l *apilog.Log) Option {
	return func(e *Explorer) { e.log = l }
}

// New creates an Explorer with an empty product page and pagination {0, 1, 1}.
func New(logger *zap.Logger, api ProductAPI, opts ...Option) *Explorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Explorer{
		logger:     logger,
		api:        api,
		log:        apilog.New(),
		products:   []model.Product{},
		pagination: model.InitialPagination(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FetchProducts lists products. On a 2xx response that decodes, the held page
// and pagination are replaced verbatim; otherwise they are left as they were.
func (e *Explorer) FetchProducts(ctx context.Context, f model.ListFilters) Result[model.ProductsResponse] {
	e.setLoading(true)
	defer e.setLoading(false)

	call := e.record(func() catalog.Call { return e.api.List(ctx, f) })
	res := resultOf[model.ProductsResponse](call)
	if res.Err != nil {
		e.logFailure("explorer.fetch_products.failed", call, res.Err)
		return res
	}

	products := res.Data.Data
	if products == nil {
		products = []model.Product{}
	}
	e.mu.Lock()
	e.products = products
	e.pagination = res.Data.Pagination()
	e.mu.Unlock()
	e.publishState()
	return res
}

// GetProduct fetches one product. It never touches the held page.
func (e *Explorer) GetProduct(ctx context.Context, id string) Result[model.Product] {
	e.setLoading(true)
	defer e.setLoading(false)

	call := e.record(func() catalog.Call { return e.api.Get(ctx, id) })
	res := resultOf[model.Product](call)
	if res.Err != nil {
		e.logFailure("explorer.get_product.failed", call, res.Err)
	}
	return res
}

// CreateProduct posts data as-is; validation is the caller's job.
// A 2xx response triggers a refetch of the default listing.
func (e *Explorer) CreateProduct(ctx context.Context, data model.ProductFormData) Result[model.Product] {
	e.setLoading(true)
	defer e.setLoading(false)

	call := e.record(func() catalog.Call { return e.api.Create(ctx, data) })
	res := resultOf[model.Product](call)
	e.afterMutation(ctx, "explorer.create_product.failed", call, res.Err)
	return res
}

// UpdateProduct patches the given fields. A 2xx response triggers a refetch.
func (e *Explorer) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) Result[model.Product] {
	e.setLoading(true)
	defer e.setLoading(false)

	call := e.record(func() catalog.Call { return e.api.Update(ctx, id, patch) })
	res := resultOf[model.Product](call)
	e.afterMutation(ctx, "explorer.update_product.failed", call, res.Err)
	return res
}

// DeleteProduct removes a product. Data is nil for a 204 response.
// A 2xx response triggers a refetch.
func (e *Explorer) DeleteProduct(ctx context.Context, id string) Result[json.RawMessage] {
	e.setLoading(true)
	defer e.setLoading(false)

	call := e.record(func() catalog.Call { return e.api.Delete(ctx, id) })
	res := resultOf[json.RawMessage](call)
	e.afterMutation(ctx, "explorer.delete_product.failed", call, res.Err)
	return res
}

// afterMutation refetches on any 2xx status, even when the body could not be decoded.
func (e *Explorer) afterMutation(ctx context.Context, event string, call catalog.Call, err error) {
	if err != nil {
		e.logFailure(event, call, err)
	}
	if call.OK() {
		e.FetchProducts(ctx, model.ListFilters{})
	}
}

// record performs one call and appends exactly one log entry for it.
func (e *Explorer) record(perform func() catalog.Call) catalog.Call {
	start := time.Now()
	call := perform()
	duration := time.Since(start).Milliseconds()

	entry := e.log.Append(model.APILog{
		Method:       call.Method,
		Endpoint:     call.Endpoint,
		Status:       call.Exchange.Status,
		Timestamp:    time.Now(),
		Duration:     duration,
		RequestBody:  json.RawMessage(call.RequestBody),
		ResponseBody: loggedBody(call),
	})
	e.publish(model.LogAppended{Entry: entry})
	return call
}

// loggedBody substitutes the delete placeholder when a delete returned no payload.
func loggedBody(call catalog.Call) json.RawMessage {
	body := call.Exchange.Body
	if call.Method == model.MethodDelete && !call.Exchange.Failed {
		if call.Exchange.Status == http.StatusNoContent || len(body) == 0 || string(body) == "null" {
			return DeletedPlaceholder
		}
	}
	return json.RawMessage(body)
}

func (e *Explorer) logFailure(event string, call catalog.Call, err error) {
	e.logger.Info(event,
		zap.String("method", string(call.Method)),
		zap.String("endpoint", call.Endpoint),
		zap.Int("status", call.Exchange.Status),
		zap.Error(err))
}

// ClearLogs empties the request log.
func (e *Explorer) ClearLogs() {
	e.log.Clear()
	e.publish(model.LogCleared{At: time.Now()})
}

// Logs returns the request log, newest first.
func (e *Explorer) Logs() []model.APILog {
	return e.log.Entries()
}

// Loading reports the shared loading flag.
func (e *Explorer) Loading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading
}

// State returns a copy of the current view state.
func (e *Explorer) State() model.State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	products := make([]model.Product, len(e.products))
	copy(products, e.products)
	return model.State{
		Products:   products,
		Pagination: e.pagination,
		Loading:    e.loading,
	}
}

func (e *Explorer) setLoading(v bool) {
	e.mu.Lock()
	changed := e.loading != v
	e.loading = v
	e.mu.Unlock()
	if changed {
		e.publishState()
	}
}

func (e *Explorer) publishState() {
	if e.events == nil {
		return
	}
	e.publish(model.StateChanged{State: e.State()})
}

func (e *Explorer) publish(event any) {
	if e.events != nil {
		e.events.PublishSync(event)
	}
}
