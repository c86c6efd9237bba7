// Package qboclient provides the primary entry point for constructing a
// QuickBooks Online accounting API client that implements the qbo.Client
// interface.
//
// It layers credential resolution, OAuth 1.0a request signing, and the HTTP
// transport on top of the interfaces and types defined in the qbo package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/qbo-client/pkg/qbo"
//	  "github.com/fivetwenty-io/qbo-client/pkg/qboclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Credentials from QB_CONSUMER_KEY, QB_CONSUMER_SECRET,
//	  // QB_ACCESS_TOKEN and QB_ACCESS_TOKEN_SECRET.
//	  cli, err := qboclient.New(ctx, &qbo.Config{CompanyID: "123145"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or from the credentials section of a config file.
//	  cli, err = qboclient.New(ctx, &qbo.Config{
//	    CompanyID:       "123145",
//	    CredentialsFile: "/etc/qbo/credentials.yaml",
//	    Sandbox:         true,
//	  })
//	  _ = cli
//	}
//
// Obtaining an access token
//
// Authorizer runs the three-legged OAuth 1.0a flow: request a token, send
// the user to AuthorizeURL, then exchange the verifier for an access token.
package qboclient
