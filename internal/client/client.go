package client

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/qbo-client/internal/auth"
	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/internal/http"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/google/uuid"
)

// Client implements the qbo.Client interface for a single company.
type Client struct {
	httpClient       *http.Client
	credentials      auth.Credentials
	companyID        string
	logger           qbo.Logger
	idempotentWrites bool
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *qbo.Config, logger qbo.Logger) []http.Option {
	httpOpts := []http.Option{
		http.WithLogger(logger),
		http.WithTimeout(constants.DefaultHTTPTimeout),
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	return httpOpts
}

// New creates a client for config.CompanyID. Credentials are resolved and
// checked here; an incomplete set fails with qbo.ErrMissingCredentials.
func New(ctx context.Context, config *qbo.Config) (*Client, error) {
	if config == nil {
		return nil, qbo.ErrConfigRequired
	}

	if config.CompanyID == "" {
		return nil, qbo.ErrCompanyIDRequired
	}

	creds, err := auth.LoadCredentials(auth.Credentials{
		ConsumerKey:       config.ConsumerKey,
		ConsumerSecret:    config.ConsumerSecret,
		AccessToken:       config.AccessToken,
		AccessTokenSecret: config.AccessTokenSecret,
	}, config.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	logger := config.EffectiveLogger(qbo.NewSlogLogger(os.Stdout, config.LogLevel))

	httpOpts := createHTTPClientOptions(config, logger)
	httpOpts = append(httpOpts, http.WithHTTPClient(auth.NewSigningClient(ctx, creds, nil)))

	return &Client{
		httpClient:       http.NewClient(config.ResolveBaseURL(), httpOpts...),
		credentials:      creds,
		companyID:        config.CompanyID,
		logger:           logger,
		idempotentWrites: config.IdempotentWrites,
	}, nil
}

// CompanyID implements qbo.Client.CompanyID.
func (c *Client) CompanyID() string {
	return c.companyID
}

// BaseURL implements qbo.Client.BaseURL.
func (c *Client) BaseURL() string {
	return c.httpClient.BaseURL()
}

// Create implements qbo.EntityClient.Create.
func (c *Client) Create(ctx context.Context, resource string, payload any, params *qbo.Params) (qbo.Record, error) {
	record, err := c.write(ctx, resource, payload, c.writeValues(params))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", resource, err)
	}

	return record, nil
}

// Read implements qbo.EntityClient.Read.
func (c *Client) Read(ctx context.Context, resource, id string, params *qbo.Params) (qbo.Record, error) {
	canonical, err := qbo.CanonicalResource(resource)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", resource, err)
	}

	payload, err := c.get(ctx, c.companyPath(strings.ToLower(canonical), url.PathEscape(id)), params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("reading %s %s: %w", canonical, id, err)
	}

	return unwrapRecord(payload, canonical, resource)
}

// Update implements qbo.EntityClient.Update.
func (c *Client) Update(ctx context.Context, resource string, payload any, params *qbo.Params) (qbo.Record, error) {
	record, err := c.write(ctx, resource, payload, c.writeValues(params))
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", resource, err)
	}

	return record, nil
}

// Delete implements qbo.EntityClient.Delete. The payload must carry at
// least the entity's Id and SyncToken.
func (c *Client) Delete(ctx context.Context, resource string, payload any, params *qbo.Params) (qbo.Record, error) {
	values := c.writeValues(params)
	values.Set(qbo.ParamOperation, constants.OperationDelete)

	record, err := c.write(ctx, resource, payload, values)
	if err != nil {
		return nil, fmt.Errorf("deleting %s: %w", resource, err)
	}

	return record, nil
}

// Query implements qbo.QueryClient.Query. Count queries are rejected; use
// Count for them.
func (c *Client) Query(ctx context.Context, builder *qbo.QueryBuilder, params *qbo.Params) (*qbo.QueryResponse, error) {
	if builder.IsCount() {
		return nil, fmt.Errorf("%w: count query passed to Query, use Count", qbo.ErrInvalidQuery)
	}

	raw, err := c.query(ctx, builder, params)
	if err != nil {
		return nil, err
	}

	response, err := qbo.NewQueryResponse(recordKey(builder.Entity()), raw)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", builder.Entity(), err)
	}

	return response, nil
}

// Count implements qbo.QueryClient.Count. The builder's filters are kept
// and its columns replaced by count(*); the builder itself is not changed.
func (c *Client) Count(ctx context.Context, builder *qbo.QueryBuilder, params *qbo.Params) (int, error) {
	raw, err := c.query(ctx, builder.Clone().Count(), params)
	if err != nil {
		return 0, err
	}

	var window struct {
		TotalCount int `json:"totalCount"`
	}

	err = json.Unmarshal(raw, &window)
	if err != nil {
		return 0, fmt.Errorf("counting %s: decoding query response: %w", builder.Entity(), err)
	}

	return window.TotalCount, nil
}

// BatchQuery implements qbo.QueryClient.BatchQuery.
func (c *Client) BatchQuery(ctx context.Context, builder *qbo.QueryBuilder, params *qbo.Params) iter.Seq2[*qbo.QueryResponse, error] {
	return func(yield func(*qbo.QueryResponse, error) bool) {
		maxResults := builder.MaxResults()

		for {
			page, err := c.Query(ctx, builder, params)
			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(page, nil) {
				return
			}

			if page.TotalCount < maxResults {
				return
			}

			builder.Offset(page.StartPosition + maxResults)
		}
	}
}

// Report implements qbo.ReportClient.Report.
func (c *Client) Report(ctx context.Context, name string, params *qbo.Params) (qbo.Payload, error) {
	payload, err := c.get(ctx, c.companyPath(constants.ReportsPath, url.PathEscape(name)), params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("getting report %s: %w", name, err)
	}

	return payload, nil
}

// CDC implements qbo.ChangeDataClient.CDC.
func (c *Client) CDC(ctx context.Context, entities []string, changedSince time.Time, params *qbo.Params) (*qbo.CDCResponse, error) {
	values := params.ToValues()
	values.Set(qbo.ParamEntities, strings.Join(entities, ","))
	values.Set(qbo.ParamChangedSince, changedSince.Format(time.RFC3339))

	payload, err := c.get(ctx, c.companyPath(constants.CDCPath), values)
	if err != nil {
		return nil, fmt.Errorf("getting changes: %w", err)
	}

	raw, ok := payload[constants.CDCResponseKey]
	if !ok {
		return nil, fmt.Errorf("getting changes: %w: %s", qbo.ErrMissingEnvelope, constants.CDCResponseKey)
	}

	changes, err := qbo.NewCDCResponse(entities, raw)
	if err != nil {
		return nil, fmt.Errorf("getting changes: %w", err)
	}

	return changes, nil
}

func (c *Client) query(ctx context.Context, builder *qbo.QueryBuilder, params *qbo.Params) (json.RawMessage, error) {
	statement, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building %s query: %w", builder.Entity(), err)
	}

	values := params.ToValues()
	values.Set(qbo.ParamQuery, statement)

	payload, err := c.get(ctx, c.companyPath(constants.QueryPath), values)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", builder.Entity(), err)
	}

	raw, ok := payload[constants.QueryResponseKey]
	if !ok {
		return nil, fmt.Errorf("querying %s: %w: %s", builder.Entity(), qbo.ErrMissingEnvelope, constants.QueryResponseKey)
	}

	return raw, nil
}

func (c *Client) write(ctx context.Context, resource string, body any, values url.Values) (qbo.Record, error) {
	canonical, err := qbo.CanonicalResource(resource)
	if err != nil {
		return nil, err
	}

	payload, err := c.execute(ctx, &http.Request{
		Method: "POST",
		Path:   c.companyPath(strings.ToLower(canonical)),
		Query:  values,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	return unwrapRecord(payload, canonical, resource)
}

func (c *Client) get(ctx context.Context, path string, values url.Values) (qbo.Payload, error) {
	return c.execute(ctx, &http.Request{
		Method: "GET",
		Path:   path,
		Query:  values,
	})
}

// execute sends one request and classifies its response.
func (c *Client) execute(ctx context.Context, req *http.Request) (qbo.Payload, error) {
	if !c.credentials.Complete() {
		return nil, qbo.ErrMissingCredentials
	}

	c.logger.Debug("QuickBooks request", map[string]interface{}{
		"method": req.Method,
		"path":   req.Path,
	})

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		c.logger.Error("QuickBooks request failed", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
			"error":  err.Error(),
		})

		return nil, err
	}

	payload, err := qbo.ParseResponse(resp)
	if err != nil {
		c.logger.Error("QuickBooks request failed", map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
			"error":       err.Error(),
		})

		return nil, err
	}

	return payload, nil
}

// writeValues returns the query parameters of a write, adding a generated
// requestid when idempotent writes are enabled and none was given.
func (c *Client) writeValues(params *qbo.Params) url.Values {
	values := params.ToValues()

	if c.idempotentWrites && values.Get(qbo.ParamRequestID) == "" {
		values.Set(qbo.ParamRequestID, uuid.NewString())
	}

	return values
}

func (c *Client) companyPath(segments ...string) string {
	parts := append([]string{"", constants.CompanyPath, url.PathEscape(c.companyID)}, segments...)

	return strings.Join(parts, "/")
}

// recordKey returns the key query rows are stored under: the canonical
// entity name when known, the name as given otherwise.
func recordKey(entity string) string {
	canonical, err := qbo.CanonicalResource(entity)
	if err != nil {
		return entity
	}

	return canonical
}

// unwrapRecord extracts the entity from its single-key response envelope.
func unwrapRecord(payload qbo.Payload, canonical, given string) (qbo.Record, error) {
	for _, key := range []string{canonical, given} {
		if _, ok := payload[key]; !ok {
			continue
		}

		var record qbo.Record

		err := payload.Decode(key, &record)
		if err != nil {
			return nil, err
		}

		return record, nil
	}

	return nil, fmt.Errorf("%w: %s", qbo.ErrMissingEnvelope, canonical)
}
