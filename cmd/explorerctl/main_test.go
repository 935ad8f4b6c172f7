package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/product-explorer/internal/api"
)

type recordingAPI struct {
	mu       sync.Mutex
	requests []string
}

func (r *recordingAPI) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	line := req.Method + " " + req.URL.RequestURI()
	r.requests = append(r.requests, line)
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case req.Method == http.MethodGet && req.URL.Path == "/api/products":
		_, _ = w.Write([]byte(`{"data":[{"_id":"p1","name":"Sushi","price":12,"category":"Food","createdAt":"2024-05-01T10:00:00Z"}],"total":1,"page":1,"pages":1}`))
	case req.Method == http.MethodDelete && req.URL.Path == "/api/products/p1":
		w.WriteHeader(http.StatusNoContent)
	case req.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Product not found"}`))
	default:
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"n1","name":"Tea","price":2,"category":"Drinks"}`))
	}
}

func (r *recordingAPI) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requests...)
}

func runCLI(t *testing.T, srv *httptest.Server, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--base-url", srv.URL + "/api/", "--log-level", "error"}, args...)
	code := run(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_List(t *testing.T) {
	rec := &recordingAPI{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	code, out, _ := runCLI(t, srv, "list", "--page", "1", "--limit", "10", "--category", "Food")

	assert.Equal(t, exitOK, code)
	assert.Equal(t, []string{"GET /api/products?page=1&limit=10&category=Food"}, rec.seen())
	assert.Contains(t, out, `"success": true`)
	assert.Contains(t, out, "--- request log (1) ---")
}

func TestRun_ListPassesFiltersThrough(t *testing.T) {
	rec := &recordingAPI{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	code, _, _ := runCLI(t, srv, "list", "--page=-1", "--min-price=-5")

	assert.Equal(t, exitOK, code)
	assert.Equal(t, []string{"GET /api/products?page=-1&minPrice=-5"}, rec.seen())
}

func TestRun_DeleteRefetchesAndLogsPlaceholder(t *testing.T) {
	rec := &recordingAPI{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	code, out, _ := runCLI(t, srv, "delete", "p1")

	assert.Equal(t, exitOK, code)
	assert.Equal(t, []string{"DELETE /api/products/p1", "GET /api/products"}, rec.seen())
	assert.Contains(t, out, `"status": 204`)
	assert.Contains(t, out, `{"message":"Product deleted"}`)
	// newest entry first
	assert.Less(t, strings.Index(out, "GET "), strings.Index(out, "DELETE "))
}

func TestRun_UpdateSendsOnlyChangedFlags(t *testing.T) {
	rec := &recordingAPI{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	code, _, _ := runCLI(t, srv, "update", "p1", "--price", "3.5")

	assert.Equal(t, exitOK, code)
	assert.Equal(t, []string{"PATCH /api/products/p1", "GET /api/products"}, rec.seen())
}

func TestRun_RemoteFailureExitsNonZero(t *testing.T) {
	rec := &recordingAPI{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	code, out, _ := runCLI(t, srv, "delete", "ghost")

	assert.Equal(t, exitFailed, code)
	assert.Contains(t, out, `"success": false`)
	assert.Equal(t, []string{"DELETE /api/products/ghost"}, rec.seen())
}

func TestRun_ValidationMakesNoRequest(t *testing.T) {
	rec := &recordingAPI{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	cases := []struct {
		args []string
		msg  string
	}{
		{[]string{"create", "--name", "Tea", "--category", "Drinks"}, api.MsgCreateFields},
		{[]string{"get"}, api.MsgProductID},
		{[]string{"delete"}, api.MsgProductID},
		{[]string{"update", "p1"}, api.MsgUpdateFields},
	}
	for _, tc := range cases {
		code, _, errOut := runCLI(t, srv, tc.args...)
		assert.Equal(t, exitUsage, code, tc.args)
		assert.Contains(t, errOut, tc.msg, tc.args)
	}
	assert.Empty(t, rec.seen())
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, exitUsage, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: explorerctl")

	stderr.Reset()
	assert.Equal(t, exitUsage, run(context.Background(), []string{"frobnicate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "frobnicate"`)
}

func TestRun_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--base-url", srv.URL, "--log-level", "error", "get", "p1"}, &stdout, &stderr)

	require.Equal(t, exitFailed, code)
	assert.Contains(t, stdout.String(), `"status": 500`)
	assert.Contains(t, stdout.String(), "Network error")
}
