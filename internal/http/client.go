package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/hashicorp/go-retryablehttp"
)

// Client is the transport used by the API client. It sends requests
// through an (optionally signing) *http.Client wrapped in retryablehttp and
// hands back the raw response; classifying statuses and faults is left to
// qbo.ParseResponse.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	timeout      time.Duration
	logger       qbo.Logger
	debug        bool
	userAgent    string
	interceptors *qbo.InterceptorChain
}

// Request is a single API call relative to the base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	// Body is sent as is when it is a []byte and JSON-encoded otherwise.
	Body any
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets the underlying client, typically an OAuth 1.0a
// signing client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger qbo.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables request/response tracing.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetryConfig enables retries of connection errors, 429 and 5xx
// responses. A zero retryMax disables retries.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax

		if waitMin > 0 {
			c.httpClient.RetryWaitMin = waitMin
		}

		if waitMax > 0 {
			c.httpClient.RetryWaitMax = waitMax
		}
	}
}

// WithInterceptors runs chain around every request.
func WithInterceptors(chain *qbo.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a transport rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.Logger = nil
	// Return the last response instead of a "giving up" error so the
	// response parser sees the real status and body.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: retryClient,
		logger:     qbo.NopLogger{},
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.timeout > 0 {
		client.httpClient.HTTPClient.Timeout = client.timeout
	}

	return client
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req and returns the raw response. An error is returned only when
// no response was obtained or an interceptor failed; any status code,
// including errors, comes back as a response.
func (c *Client) Do(ctx context.Context, req *Request) (*qbo.Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	intercepted := &qbo.Request{
		Method:  req.Method,
		Path:    req.Path,
		Query:   req.Query.Encode(),
		Headers: c.headers(req, body),
		Body:    body,
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, intercepted, req.Query, body)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    httpReq.URL.String(),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		err = fmt.Errorf("executing %s %s: %w", req.Method, req.Path, err)
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &qbo.Response{Error: err})

		return nil, err
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &qbo.Response{
		StatusCode: httpResp.StatusCode,
		Reason:     reasonPhrase(httpResp),
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status_code": resp.StatusCode,
			"body_size":   len(respBody),
		})
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, resp)
	if err != nil {
		return resp, err
	}

	return resp, nil
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*qbo.Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body any) (*qbo.Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Query:  query,
		Body:   body,
	})
}

func (c *Client) headers(req *Request, body []byte) http.Header {
	headers := make(http.Header)
	headers.Set("Accept", constants.ContentTypeJSON)
	headers.Set("User-Agent", c.userAgent)

	if body != nil {
		headers.Set("Content-Type", constants.ContentTypeJSON)
	}

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	return headers
}

func (c *Client) newRequest(ctx context.Context, req *qbo.Request, query url.Values, body []byte) (*retryablehttp.Request, error) {
	target := c.baseURL + "/" + strings.TrimPrefix(req.Path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	return httpReq, nil
}

func encodeBody(body any) ([]byte, error) {
	switch value := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return value, nil
	case json.RawMessage:
		return value, nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		return data, nil
	}
}

// reasonPhrase extracts the reason from a status line such as "404 Not Found".
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		return http.StatusText(resp.StatusCode)
	}

	return reason
}
