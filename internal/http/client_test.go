package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	qbohttp "github.com/fivetwenty-io/qbo-client/internal/http"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInterceptorRejected = errors.New("rejected")

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v3/company/123/customer/1", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Empty(t, request.Header.Get("Content-Type"))

			writer.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{"Customer": map[string]string{"Id": "1"}})
		}))
		defer server.Close()

		client := qbohttp.NewClient(server.URL + "/v3")

		resp, err := client.Do(context.Background(), &qbohttp.Request{
			Method: "GET",
			Path:   "/company/123/customer/1",
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "OK", resp.Reason)
		assert.False(t, resp.IsXML())

		payload, err := qbo.ParseResponse(resp)
		require.NoError(t, err)
		assert.Contains(t, payload, "Customer")
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/company/123/query", request.URL.Path)
			assert.Equal(t, "select * from Customer", request.URL.Query().Get("query"))
			assert.Equal(t, "65", request.URL.Query().Get("minorversion"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := qbohttp.NewClient(server.URL)

		resp, err := client.Get(context.Background(), "/company/123/query", url.Values{
			"query":        []string{"select * from Customer"},
			"minorversion": []string{"65"},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
			assert.Equal(t, "delete", request.URL.Query().Get("operation"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "42", body["Id"])

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := qbohttp.NewClient(server.URL)

		resp, err := client.Post(context.Background(), "/company/123/invoice",
			url.Values{"operation": []string{"delete"}}, map[string]string{"Id": "42"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("raw body is sent unchanged", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			data, _ := io.ReadAll(request.Body)
			assert.Equal(t, `{"DisplayName":"Acme"}`, string(data))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := qbohttp.NewClient(server.URL)

		_, err := client.Post(context.Background(), "/company/123/customer", nil, []byte(`{"DisplayName":"Acme"}`))
		require.NoError(t, err)
	})

	t.Run("error status is returned as a response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/xml")
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`<IntuitResponse/>`))
		}))
		defer server.Close()

		client := qbohttp.NewClient(server.URL)

		resp, err := client.Get(context.Background(), "/company/123/customer/999", nil)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, "Not Found", resp.Reason)
		assert.True(t, resp.IsXML())

		_, err = qbo.ParseResponse(resp)
		require.ErrorIs(t, err, qbo.ErrNotFound)
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "test-agent", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := qbohttp.NewClient(server.URL, qbohttp.WithUserAgent("test-agent"))

		resp, err := client.Do(context.Background(), &qbohttp.Request{
			Method: "GET",
			Path:   "/company/123/preferences",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := qbohttp.NewClient(server.URL, qbohttp.WithLogger(logger), qbohttp.WithDebug(true))

		_, err := client.Get(context.Background(), "/company/123/companyinfo/123", nil)
		require.NoError(t, err)

		require.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})

	t.Run("signing client is used", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "OAuth signed", request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		signing := &http.Client{Transport: headerTransport{key: "Authorization", value: "OAuth signed"}}
		client := qbohttp.NewClient(server.URL, qbohttp.WithHTTPClient(signing))

		resp, err := client.Get(context.Background(), "/company/123/account/1", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		client := qbohttp.NewClient(server.URL)

		resp, err := client.Get(context.Background(), "/company/123/account/1", nil)
		require.Error(t, err)
		assert.Nil(t, resp)
	})
}

type headerTransport struct {
	key   string
	value string
}

func (h headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(h.key, h.value)

	return http.DefaultTransport.RoundTrip(clone)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	t.Run("request and response interceptors run", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "intercepted", request.Header.Get("X-Trace"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		var seen *qbo.Response

		chain := qbo.NewInterceptorChain().
			AddRequestInterceptor(qbo.HeaderInterceptor(map[string]string{"X-Trace": "intercepted"})).
			AddResponseInterceptor(func(ctx context.Context, req *qbo.Request, resp *qbo.Response) error {
				seen = resp

				return nil
			})

		client := qbohttp.NewClient(server.URL, qbohttp.WithInterceptors(chain))

		_, err := client.Get(context.Background(), "/company/123/class/1", nil)
		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.Equal(t, 200, seen.StatusCode)
	})

	t.Run("failing request interceptor aborts", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			calls.Add(1)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		chain := qbo.NewInterceptorChain().
			AddRequestInterceptor(func(ctx context.Context, req *qbo.Request) error {
				return errInterceptorRejected
			})

		client := qbohttp.NewClient(server.URL, qbohttp.WithInterceptors(chain))

		_, err := client.Get(context.Background(), "/company/123/class/1", nil)
		require.ErrorIs(t, err, errInterceptorRejected)
		assert.Equal(t, int32(0), calls.Load())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()

	t.Run("does not retry by default", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := qbohttp.NewClient(server.URL)

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := qbohttp.NewClient(server.URL, qbohttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := qbohttp.NewClient(server.URL, qbohttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("last response is returned once retries are exhausted", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := qbohttp.NewClient(server.URL, qbohttp.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := qbohttp.NewClient(server.URL, qbohttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})
}
