package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/products", EndpointLabel("/products"))
	assert.Equal(t, "/products", EndpointLabel("/products?page=2&limit=10"))
	assert.Equal(t, "/products/:id", EndpointLabel("/products/6650f1c2"))
	assert.Equal(t, "/", EndpointLabel(""))
}

func TestIncAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("/products/:id", "DELETE", "204")
	before := counterValue(t, c)

	IncAPIRequest("/products/abc", "DELETE", 204)
	IncAPIRequest("/products/def", "DELETE", 204)

	assert.Equal(t, before+2, counterValue(t, c))
}

func TestIncLogEviction(t *testing.T) {
	before := counterValue(t, LogEvictionsTotal)
	IncLogEviction(3)
	assert.Equal(t, before+3, counterValue(t, LogEvictionsTotal))
}

func TestObserveDuration_IgnoresCounters(t *testing.T) {
	// must not panic on unsupported metric types
	ObserveDuration(APIRequestsTotal, time.Now(), "/products", "GET", "200")
	ObserveDuration(APIRequestDuration, time.Now(), "/products", "GET")
}
