package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/product-explorer/internal/httpclient"
	"github.com/Checker-Finance/product-explorer/pkg/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	exec := httpclient.New(zap.NewNop(), nil, server.Client())
	return NewClient(zap.NewNop(), exec, server.URL+"/api/"), server
}

func strPtr(s string) *string { return &s }

func TestListEndpoint(t *testing.T) {
	cases := []struct {
		name string
		in   model.ListFilters
		want string
	}{
		{"no filters", model.ListFilters{}, "/products"},
		{"paging", model.ListFilters{Page: 1, Limit: 10}, "/products?page=1&limit=10"},
		{"all", model.ListFilters{Page: 2, Limit: 5, Category: "Food", MinPrice: 1.5, MaxPrice: 20},
			"/products?page=2&limit=5&category=Food&minPrice=1.5&maxPrice=20"},
		{"category escaped", model.ListFilters{Category: "Ice Cream&Co"}, "/products?category=Ice+Cream%26Co"},
		{"zero prices omitted", model.ListFilters{Limit: 10, MinPrice: 0, MaxPrice: 0}, "/products?limit=10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ListEndpoint(tc.in))
		})
	}
}

func TestClient_List(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "page=2&limit=5&category=Drinks", r.URL.RawQuery)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Empty(t, r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"_id":"p1","name":"Tea","price":3.5,"category":"Drinks","createdAt":"2024-05-01T10:00:00Z"}],"total":6,"page":2,"pages":2}`))
	})

	call := client.List(context.Background(), model.ListFilters{Page: 2, Limit: 5, Category: "Drinks"})

	require.True(t, call.OK())
	require.NoError(t, call.Err())
	assert.Equal(t, model.MethodGet, call.Method)
	assert.Equal(t, "/products?page=2&limit=5&category=Drinks", call.Endpoint)
	assert.Nil(t, call.RequestBody)

	var resp model.ProductsResponse
	require.NoError(t, call.Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "p1", resp.Data[0].ID)
	assert.Equal(t, model.Pagination{Total: 6, Page: 2, Pages: 2}, resp.Pagination())
}

func TestClient_Get_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/missing", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Product not found"}`))
	})

	call := client.Get(context.Background(), "missing")

	assert.False(t, call.OK())
	assert.Equal(t, http.StatusNotFound, call.Exchange.Status)

	var se *StatusError
	require.True(t, errors.As(call.Err(), &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "Product not found", se.Message)
	assert.False(t, IsNetworkError(call.Err()))
}

func TestClient_Get_EscapesID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/a%2Fb", r.URL.RawPath)
		_, _ = w.Write([]byte(`{}`))
	})

	call := client.Get(context.Background(), "a/b")
	assert.Equal(t, "/products/a%2Fb", call.Endpoint)
}

func TestClient_Create(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body model.ProductFormData
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Sushi", body.Name)
		assert.Equal(t, 12.0, body.Price)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"new1","name":"Sushi","price":12,"category":"Food","createdAt":"2024-05-01T10:00:00Z"}`))
	})

	call := client.Create(context.Background(), model.ProductFormData{Name: "Sushi", Price: 12, Category: "Food"})

	require.True(t, call.OK())
	assert.JSONEq(t, `{"name":"Sushi","price":12,"category":"Food"}`, string(call.RequestBody))

	var p model.Product
	require.NoError(t, call.Decode(&p))
	assert.Equal(t, "new1", p.ID)
}

func TestClient_Update_OmitsUnsetFields(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/products/p1", r.URL.Path)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, map[string]any{"name": "Matcha"}, raw)

		_, _ = w.Write([]byte(`{"_id":"p1","name":"Matcha","price":3.5,"category":"Drinks"}`))
	})

	call := client.Update(context.Background(), "p1", model.ProductPatch{Name: strPtr("Matcha")})

	require.True(t, call.OK())
	assert.JSONEq(t, `{"name":"Matcha"}`, string(call.RequestBody))
}

func TestClient_Delete_NoContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	call := client.Delete(context.Background(), "p1")

	require.True(t, call.OK())
	assert.Equal(t, http.StatusNoContent, call.Exchange.Status)
	assert.Empty(t, call.Exchange.Body)
	assert.NoError(t, call.Err())
}

func TestClient_Delete_JSONConfirmation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"deleted"}`))
	})

	call := client.Delete(context.Background(), "p1")

	require.True(t, call.OK())
	assert.JSONEq(t, `{"message":"deleted"}`, string(call.Exchange.Body))
}

// ─── Unparseable bodies collapse into a network failure ──────────────────────

func TestClient_InvalidJSONTreatedAsNetworkError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>Bad Gateway</html>"))
	})

	call := client.List(context.Background(), model.ListFilters{})

	assert.False(t, call.OK())
	assert.True(t, call.Exchange.Failed)
	assert.Equal(t, http.StatusInternalServerError, call.Exchange.Status)
	assert.JSONEq(t, `{"message":"Network error"}`, string(call.Exchange.Body))
	assert.True(t, IsNetworkError(call.Err()))
}

func TestClient_EmptyBodyOnNonDeleteIsNetworkError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	call := client.Update(context.Background(), "p1", model.ProductPatch{Category: strPtr("Food")})

	assert.True(t, call.Exchange.Failed)
	assert.Equal(t, http.StatusInternalServerError, call.Exchange.Status)
	assert.JSONEq(t, `{"category":"Food"}`, string(call.RequestBody))
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := server.URL
	server.Close()

	client := NewClient(zap.NewNop(), httpclient.New(zap.NewNop(), nil, &http.Client{}), base)
	call := client.Create(context.Background(), model.ProductFormData{Name: "Tea", Price: 1, Category: "Drinks"})

	assert.False(t, call.OK())
	assert.Equal(t, http.StatusInternalServerError, call.Exchange.Status)
	assert.True(t, IsNetworkError(call.Err()))
	assert.NotEmpty(t, call.RequestBody, "request body is kept for the log")
}

func TestStatusError_Message(t *testing.T) {
	err := &StatusError{Method: model.MethodGet, Endpoint: "/products/x", Status: 400}
	assert.Equal(t, "GET /products/x returned 400", err.Error())

	err.Message = "Invalid id"
	assert.Equal(t, "GET /products/x returned 400: Invalid id", err.Error())
}
