package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/product-explorer/internal/metrics"
	"github.com/Checker-Finance/product-explorer/internal/rate"
)

// NetworkErrorBody is the synthetic response body recorded for transport failures.
var NetworkErrorBody = []byte(`{"message":"Network error"}`)

// ErrNetwork marks an exchange that never produced an HTTP response.
var ErrNetwork = errors.New("network error")

// Exchange is the outcome of a single HTTP attempt.
type Exchange struct {
	Status   int
	Body     []byte
	Duration time.Duration
	// Failed is set when no usable response was received. Status is then 500
	// and Body is NetworkErrorBody.
	Failed bool
	Err    error
}

// OK reports whether the status is in the 2xx range.
func (x Exchange) OK() bool {
	return x.Status >= 200 && x.Status < 300
}

// AsNetworkFailure rewrites x as a transport failure, keeping its duration.
func (x Exchange) AsNetworkFailure(cause error) Exchange {
	return Exchange{
		Status:   http.StatusInternalServerError,
		Body:     NetworkErrorBody,
		Duration: x.Duration,
		Failed:   true,
		Err:      fmt.Errorf("%w: %w", ErrNetwork, cause),
	}
}

// Executor performs exactly one HTTP attempt per call and times it.
// It never retries: a failed exchange is reported, not repeated.
type Executor struct {
	logger  *zap.Logger
	rateMgr *rate.Manager
	http    *http.Client
}

// New creates an Executor. rateMgr may be nil.
func New(logger *zap.Logger, rateMgr *rate.Manager, httpClient *http.Client) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Executor{
		logger:  logger,
		rateMgr: rateMgr,
		http:    httpClient,
	}
}

// Do executes req once. endpoint is the API-relative path used for logs and metrics.
// The returned duration covers the request and the full body read, whatever the outcome.
func (e *Executor) Do(ctx context.Context, req *http.Request, endpoint string) Exchange {
	if err := e.rateMgr.Wait(ctx, req.URL.Host); err != nil {
		e.logger.Warn("httpclient.rate_wait_failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return Exchange{}.AsNetworkFailure(fmt.Errorf("rate limit wait: %w", err))
	}

	start := time.Now()
	x := e.roundTrip(req)
	x.Duration = time.Since(start)

	metrics.IncAPIRequest(endpoint, req.Method, x.Status)
	metrics.APIRequestDuration.WithLabelValues(metrics.EndpointLabel(endpoint), req.Method).Observe(x.Duration.Seconds())

	switch {
	case x.Failed:
		metrics.IncError("httpclient", "transport")
		e.logger.Warn("httpclient.transport_failed",
			zap.String("method", req.Method),
			zap.String("endpoint", endpoint),
			zap.Duration("elapsed", x.Duration),
			zap.Error(x.Err))
	case !x.OK():
		e.logger.Info("httpclient.non_2xx",
			zap.String("method", req.Method),
			zap.String("endpoint", endpoint),
			zap.Int("status", x.Status),
			zap.Duration("elapsed", x.Duration))
	default:
		e.logger.Debug("httpclient.http_success",
			zap.String("method", req.Method),
			zap.String("endpoint", endpoint),
			zap.Int("status", x.Status),
			zap.Duration("elapsed", x.Duration))
	}
	return x
}

func (e *Executor) roundTrip(req *http.Request) Exchange {
	resp, err := e.http.Do(req)
	if err != nil {
		return Exchange{}.AsNetworkFailure(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Exchange{}.AsNetworkFailure(fmt.Errorf("read body: %w", err))
	}
	return Exchange{Status: resp.StatusCode, Body: body}
}
