package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "123145"

// testConfig returns a config with a complete credential set pointed at
// baseURL.
func testConfig(baseURL string) *qbo.Config {
	return &qbo.Config{
		CompanyID:         testCompanyID,
		ConsumerKey:       "consumer-key",
		ConsumerSecret:    "consumer-secret",
		AccessToken:       "access-token",
		AccessTokenSecret: "access-token-secret",
		BaseURL:           baseURL,
	}
}

// NewTestClient creates a client for testCompanyID rooted at baseURL.
func NewTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := New(context.Background(), testConfig(baseURL))
	require.NoError(t, err)

	return client
}

// recordedRequest is what a test server saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]interface{}
	Auth   string
}

// recorder collects requests received by a test server.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) record(request *http.Request) {
	seen := recordedRequest{
		Method: request.Method,
		Path:   request.URL.Path,
		Query:  map[string]string{},
		Auth:   request.Header.Get("Authorization"),
	}

	for key := range request.URL.Query() {
		seen.Query[key] = request.URL.Query().Get(key)
	}

	_ = json.NewDecoder(request.Body).Decode(&seen.Body)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, seen)
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]recordedRequest(nil), r.requests...)
}

func (r *recorder) last(t *testing.T) recordedRequest {
	t.Helper()

	requests := r.all()
	require.NotEmpty(t, requests)

	return requests[len(requests)-1]
}

// jsonServer starts a server answering every request with status and the
// JSON encoding of body, recording what it receives.
func jsonServer(t *testing.T, status int, body interface{}) (*httptest.Server, *recorder) {
	t.Helper()

	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		rec.record(request)
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_ = json.NewEncoder(writer).Encode(body)
	}))
	t.Cleanup(server.Close)

	return server, rec
}

// rawServer starts a server answering with a fixed content type and body.
func rawServer(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", contentType)
		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

// pageResponse renders a QueryResponse page of n Customer rows starting at
// start.
func pageResponse(start, n, maxResults int) map[string]interface{} {
	rows := make([]map[string]interface{}, n)
	for i := range rows {
		rows[i] = map[string]interface{}{"Id": start + i}
	}

	return map[string]interface{}{
		"QueryResponse": map[string]interface{}{
			"Customer":      rows,
			"startPosition": start,
			"maxResults":    n,
		},
		"time": "2024-01-01T00:00:00.000-08:00",
	}
}

// writeJSON answers with a 200 JSON body.
func writeJSON(writer http.ResponseWriter, body interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(writer).Encode(body)
}

// pageWindow extracts the pagination window from a rendered query.
func pageWindow(query string) (int, int) {
	start, maxResults := 1, 100

	index := strings.Index(query, "StartPosition")
	if index < 0 {
		return start, maxResults
	}

	_, _ = fmt.Sscanf(query[index:], "StartPosition %d MaxResults %d", &start, &maxResults)

	return start, maxResults
}
