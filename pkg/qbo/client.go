package qbo

import (
	"context"
	"iter"
	"time"
)

// Base URLs of the v3 API.
const (
	ProductionBaseURL = "https://quickbooks.api.intuit.com/v3"
	SandboxBaseURL    = "https://sandbox-quickbooks.api.intuit.com/v3"
)

// EntityClient provides create, read, update and delete for accounting
// entities. Resource names are checked against Resources before any request
// is sent; payloads are passed through without validation.
type EntityClient interface {
	Create(ctx context.Context, resource string, payload any, params *Params) (Record, error)
	Read(ctx context.Context, resource, id string, params *Params) (Record, error)
	Update(ctx context.Context, resource string, payload any, params *Params) (Record, error)
	Delete(ctx context.Context, resource string, payload any, params *Params) (Record, error)
}

// QueryClient runs query statements built with QueryBuilder.
type QueryClient interface {
	// Query fetches a single page of rows.
	Query(ctx context.Context, builder *QueryBuilder, params *Params) (*QueryResponse, error)
	// Count returns the row count of the query's filters.
	Count(ctx context.Context, builder *QueryBuilder, params *Params) (int, error)
	// BatchQuery lazily fetches consecutive pages, advancing the builder's
	// offset between pages. The sequence ends after the first page holding
	// fewer than the builder's MaxResults rows, on the first error, or when
	// the caller stops iterating.
	BatchQuery(ctx context.Context, builder *QueryBuilder, params *Params) iter.Seq2[*QueryResponse, error]
}

// ReportClient fetches named reports.
type ReportClient interface {
	Report(ctx context.Context, name string, params *Params) (Payload, error)
}

// ChangeDataClient fetches change-data-capture feeds.
type ChangeDataClient interface {
	CDC(ctx context.Context, entities []string, changedSince time.Time, params *Params) (*CDCResponse, error)
}

// Client is the accounting API surface for a single company.
type Client interface {
	EntityClient
	QueryClient
	ReportClient
	ChangeDataClient

	CompanyID() string
	BaseURL() string
}

// Config represents client configuration for building a Client.
//
// # Credentials
//
// The four OAuth 1.0a secrets are resolved in this order:
//  1. CredentialsFile: when set, all four are read from its "credentials"
//     section (keys QB_CONSUMER_KEY, QB_CONSUMER_SECRET, QB_ACCESS_TOKEN,
//     QB_ACCESS_TOKEN_SECRET) and the explicit fields are ignored.
//  2. Otherwise each explicit field, falling back to the environment
//     variable of the same name.
//
// A missing secret fails construction with ErrMissingCredentials.
//
// # Logging
//
// Nothing is logged unless EnableLogging is set. Logger defaults to a text
// logger on stdout; LogLevel (default LevelError) filters either one.
type Config struct {
	// CompanyID is the realm ID obtained during authorization. Required.
	CompanyID string

	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
	// CredentialsFile is a config file with a "credentials" section.
	CredentialsFile string

	// Sandbox selects SandboxBaseURL instead of ProductionBaseURL.
	Sandbox bool
	// BaseURL overrides the base URL selected by Sandbox.
	BaseURL string

	Logger        Logger
	EnableLogging bool
	LogLevel      LogLevel
	// Debug enables request/response tracing in the transport.
	Debug bool

	// HTTPTimeout bounds each request; zero leaves it to the context.
	HTTPTimeout time.Duration
	// RetryMax enables transport retries for connection errors, 429 and
	// 5xx responses. Zero, the default, sends every request once.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string

	// Interceptors run around every request.
	Interceptors *InterceptorChain
	// IdempotentWrites adds a generated requestid to writes that do not
	// carry one.
	IdempotentWrites bool
}

// ResolveBaseURL returns the base URL the configuration points at.
func (c *Config) ResolveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}

	if c.Sandbox {
		return SandboxBaseURL
	}

	return ProductionBaseURL
}

// EffectiveLogger returns the logger requests should use, honoring
// EnableLogging and LogLevel.
func (c *Config) EffectiveLogger(fallback Logger) Logger {
	if !c.EnableLogging {
		return NopLogger{}
	}

	logger := c.Logger
	if logger == nil {
		logger = fallback
	}

	if logger == nil {
		return NopLogger{}
	}

	return NewLevelLogger(logger, c.LogLevel)
}
