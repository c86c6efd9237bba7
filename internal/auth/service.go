package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dghubble/oauth1"
	"github.com/fivetwenty-io/qbo-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrConsumerRequired = errors.New("consumer key and consumer secret are required")
)

// DefaultEndpoint is the Intuit OAuth 1.0a endpoint set.
var DefaultEndpoint = oauth1.Endpoint{
	RequestTokenURL: constants.RequestTokenURL,
	AuthorizeURL:    constants.AuthorizeURL,
	AccessTokenURL:  constants.AccessTokenURL,
}

// RequestToken is a temporary token pair awaiting user authorization.
type RequestToken struct {
	Token  string
	Secret string
}

// AccessToken is the long-lived token pair used to sign API requests.
type AccessToken struct {
	Token  string
	Secret string
}

// Service runs the OAuth 1.0a three-legged authorization flow and builds
// signing HTTP clients.
type Service struct {
	config *oauth1.Config
}

// ServiceOption configures the service.
type ServiceOption func(*oauth1.Config)

// WithEndpoint overrides the OAuth endpoints.
func WithEndpoint(endpoint oauth1.Endpoint) ServiceOption {
	return func(c *oauth1.Config) {
		c.Endpoint = endpoint
	}
}

// WithCallbackURL sets where the user is sent after authorizing. Without
// one the out-of-band flow is used and the user copies the verifier.
func WithCallbackURL(callbackURL string) ServiceOption {
	return func(c *oauth1.Config) {
		c.CallbackURL = callbackURL
	}
}

// NewService creates an authorization service for a consumer.
func NewService(consumerKey, consumerSecret string, opts ...ServiceOption) (*Service, error) {
	if consumerKey == "" || consumerSecret == "" {
		return nil, ErrConsumerRequired
	}

	config := &oauth1.Config{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		CallbackURL:    constants.OutOfBandCallback,
		Endpoint:       DefaultEndpoint,
	}

	for _, opt := range opts {
		opt(config)
	}

	return &Service{config: config}, nil
}

// RequestToken obtains a temporary request token pair.
func (s *Service) RequestToken() (*RequestToken, error) {
	token, secret, err := s.config.RequestToken()
	if err != nil {
		return nil, fmt.Errorf("getting request token: %w", err)
	}

	return &RequestToken{Token: token, Secret: secret}, nil
}

// AuthorizeURL returns the URL the user visits to grant access.
func (s *Service) AuthorizeURL(requestToken *RequestToken) (string, error) {
	authorizeURL, err := s.config.AuthorizationURL(requestToken.Token)
	if err != nil {
		return "", fmt.Errorf("building authorize URL: %w", err)
	}

	return authorizeURL.String(), nil
}

// ParseCallback extracts the request token and verifier from the callback
// request the provider redirects the user to.
func (s *Service) ParseCallback(req *http.Request) (string, string, error) {
	token, verifier, err := oauth1.ParseAuthorizationCallback(req)
	if err != nil {
		return "", "", fmt.Errorf("parsing authorization callback: %w", err)
	}

	return token, verifier, nil
}

// AccessToken exchanges an authorized request token and its verifier for an
// access token pair.
func (s *Service) AccessToken(requestToken *RequestToken, verifier string) (*AccessToken, error) {
	token, secret, err := s.config.AccessToken(requestToken.Token, requestToken.Secret, verifier)
	if err != nil {
		return nil, fmt.Errorf("getting access token: %w", err)
	}

	return &AccessToken{Token: token, Secret: secret}, nil
}

// HTTPClient returns a client that signs every request with the access
// token pair.
func (s *Service) HTTPClient(ctx context.Context, token *AccessToken) *http.Client {
	return s.config.Client(ctx, oauth1.NewToken(token.Token, token.Secret))
}

// NewSigningClient returns an HTTP client that signs every request with
// creds. base, when non-nil, supplies the underlying transport.
func NewSigningClient(ctx context.Context, creds Credentials, base *http.Client) *http.Client {
	if base != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, base)
	}

	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)

	return config.Client(ctx, oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret))
}
