package qboclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dghubble/oauth1"
	"github.com/fivetwenty-io/qbo-client/internal/auth"
	"github.com/fivetwenty-io/qbo-client/internal/client"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
)

// New creates a QuickBooks Online API client for config.CompanyID.
func New(ctx context.Context, config *qbo.Config) (qbo.Client, error) {
	if config == nil {
		return nil, qbo.ErrConfigRequired
	}

	c, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithCredentials creates a production client from an explicit
// credential set.
func NewWithCredentials(ctx context.Context, companyID, consumerKey, consumerSecret, accessToken, accessTokenSecret string) (qbo.Client, error) {
	return New(ctx, &qbo.Config{
		CompanyID:         companyID,
		ConsumerKey:       consumerKey,
		ConsumerSecret:    consumerSecret,
		AccessToken:       accessToken,
		AccessTokenSecret: accessTokenSecret,
	})
}

// NewWithCredentialsFile creates a client whose credentials are read from
// the credentials section of file.
func NewWithCredentialsFile(ctx context.Context, companyID, file string, sandbox bool) (qbo.Client, error) {
	return New(ctx, &qbo.Config{
		CompanyID:       companyID,
		CredentialsFile: file,
		Sandbox:         sandbox,
	})
}

// TokenPair is an OAuth 1.0a token and its secret.
type TokenPair struct {
	Token  string
	Secret string
}

// Endpoints are the OAuth 1.0a URLs used by an Authorizer.
type Endpoints struct {
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
}

// AuthorizerOption configures an Authorizer.
type AuthorizerOption func(*authorizerOptions)

type authorizerOptions struct {
	service []auth.ServiceOption
}

// WithCallbackURL sets where the user is sent after granting access.
func WithCallbackURL(callbackURL string) AuthorizerOption {
	return func(o *authorizerOptions) {
		o.service = append(o.service, auth.WithCallbackURL(callbackURL))
	}
}

// WithEndpoints overrides the Intuit OAuth endpoints.
func WithEndpoints(endpoints Endpoints) AuthorizerOption {
	return func(o *authorizerOptions) {
		o.service = append(o.service, auth.WithEndpoint(oauth1.Endpoint{
			RequestTokenURL: endpoints.RequestTokenURL,
			AuthorizeURL:    endpoints.AuthorizeURL,
			AccessTokenURL:  endpoints.AccessTokenURL,
		}))
	}
}

// Authorizer obtains access tokens through the OAuth 1.0a flow.
type Authorizer struct {
	service *auth.Service
}

// NewAuthorizer creates an authorizer for a consumer.
func NewAuthorizer(consumerKey, consumerSecret string, opts ...AuthorizerOption) (*Authorizer, error) {
	options := &authorizerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	service, err := auth.NewService(consumerKey, consumerSecret, options.service...)
	if err != nil {
		return nil, err
	}

	return &Authorizer{service: service}, nil
}

// RequestToken obtains a temporary request token pair.
func (a *Authorizer) RequestToken() (*TokenPair, error) {
	token, err := a.service.RequestToken()
	if err != nil {
		return nil, err
	}

	return &TokenPair{Token: token.Token, Secret: token.Secret}, nil
}

// AuthorizeURL returns the URL where the user grants access.
func (a *Authorizer) AuthorizeURL(requestToken *TokenPair) (string, error) {
	return a.service.AuthorizeURL(&auth.RequestToken{Token: requestToken.Token, Secret: requestToken.Secret})
}

// ParseCallback returns the request token and verifier of an authorization
// callback request.
func (a *Authorizer) ParseCallback(req *http.Request) (string, string, error) {
	return a.service.ParseCallback(req)
}

// AccessToken exchanges an authorized request token for an access token.
func (a *Authorizer) AccessToken(requestToken *TokenPair, verifier string) (*TokenPair, error) {
	token, err := a.service.AccessToken(&auth.RequestToken{Token: requestToken.Token, Secret: requestToken.Secret}, verifier)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Token: token.Token, Secret: token.Secret}, nil
}
