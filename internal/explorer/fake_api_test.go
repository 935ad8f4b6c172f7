package explorer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/Checker-Finance/product-explorer/internal/catalog"
	"github.com/Checker-Finance/product-explorer/internal/httpclient"
	"github.com/Checker-Finance/product-explorer/pkg/model"
)

// fakeProductAPI is an in-memory product API that records every request it sees.
type fakeProductAPI struct {
	mu       sync.Mutex
	products []model.Product
	requests []string // "METHOD /path?query"
	nextID   int

	// overrides keyed by "METHOD /path"; status 0 means use the default behaviour
	overrides map[string]fakeResponse
}

type fakeResponse struct {
	status int
	body   string
}

func newFakeProductAPI(products ...model.Product) *fakeProductAPI {
	return &fakeProductAPI{products: products, overrides: map[string]fakeResponse{}}
}

func (f *fakeProductAPI) override(methodPath string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[methodPath] = fakeResponse{status: status, body: body}
}

func (f *fakeProductAPI) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeProductAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	line := r.Method + " " + path
	if r.URL.RawQuery != "" {
		line += "?" + r.URL.RawQuery
	}
	f.requests = append(f.requests, line)

	if o, ok := f.overrides[r.Method+" "+path]; ok {
		w.WriteHeader(o.status)
		_, _ = w.Write([]byte(o.body))
		return
	}

	id := strings.TrimPrefix(path, "/products/")
	switch {
	case r.Method == http.MethodGet && path == "/products":
		writeJSON(w, http.StatusOK, model.ProductsResponse{
			Data: f.products, Total: len(f.products), Page: 1, Pages: 1,
		})
	case r.Method == http.MethodGet:
		for _, p := range f.products {
			if p.ID == id {
				writeJSON(w, http.StatusOK, p)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
	case r.Method == http.MethodPost:
		var in model.ProductFormData
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.nextID++
		p := model.Product{
			ID: fmt.Sprintf("new-%d", f.nextID), Name: in.Name, Price: in.Price,
			Category: in.Category, CreatedAt: "2024-05-01T10:00:00Z",
		}
		f.products = append(f.products, p)
		writeJSON(w, http.StatusCreated, p)
	case r.Method == http.MethodPatch:
		var patch model.ProductPatch
		_ = json.NewDecoder(r.Body).Decode(&patch)
		for i, p := range f.products {
			if p.ID != id {
				continue
			}
			if patch.Name != nil {
				p.Name = *patch.Name
			}
			if patch.Price != nil {
				p.Price = *patch.Price
			}
			if patch.Category != nil {
				p.Category = *patch.Category
			}
			f.products[i] = p
			writeJSON(w, http.StatusOK, p)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
	case r.Method == http.MethodDelete:
		for i, p := range f.products {
			if p.ID == id {
				f.products = append(f.products[:i], f.products[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"message":"method not allowed"}`))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTestExplorer wires an Explorer to a fake API served over real HTTP.
func newTestExplorer(t *testing.T, api *fakeProductAPI, opts ...Option) *Explorer {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	exec := httpclient.New(zap.NewNop(), nil, srv.Client())
	client := catalog.NewClient(zap.NewNop(), exec, srv.URL+"/api")
	return New(zap.NewNop(), client, opts...)
}

func sampleProducts() []model.Product {
	return []model.Product{
		{ID: "p1", Name: "Sushi", Price: 12, Category: "Food", CreatedAt: "2024-05-01T10:00:00Z"},
		{ID: "p2", Name: "Pineapple", Price: 3.5, Category: "Fruit", CreatedAt: "2024-05-02T10:00:00Z"},
	}
}
