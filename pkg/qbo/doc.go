// Package qbo provides types, interfaces, and helpers for working with the
// QuickBooks Online v3 accounting API.
//
// # Overview
//
// The qbo package defines the read-models (Record, QueryResponse,
// CDCResponse), the query builder, the error taxonomy, and the Client
// interface. A concrete client is provided by the qboclient package, which
// wires credentials, OAuth 1.0a request signing, and the HTTP transport.
//
// Getting a client
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
//	  cli, err := qboclient.New(ctx, &qbo.Config{CompanyID: "123145", Sandbox: true})
//	  if err != nil { log.Fatal(err) }
//
//	  customer, err := cli.Read(ctx, qbo.ResourceCustomer, "1", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = customer
//	}
//
// # Queries and pagination
//
// QueryBuilder renders query statements through a two-phase fluent API:
//
//	qb := qbo.NewQueryBuilder("Customer").
//	  Select("Id", "DisplayName").
//	  Where("Active").Equals(true).
//	  Where("Balance").Gt(100)
//
//	page, err := cli.Query(ctx, qb, nil)
//
// BatchQuery walks every page lazily:
//
//	for page, err := range cli.BatchQuery(ctx, qb.Limit(500), nil) {
//	  if err != nil { break }
//	  _ = page.Records
//	}
//
// # Errors
//
// Failures reported by the service are *APIError values tagged with an
// ErrorKind. They match the kind sentinels (ErrAuthentication, ErrNotFound,
// ErrValidationFault, ...) through errors.Is, and helpers such as IsNotFound
// and IsValidationFault cover the common cases. Local precondition failures
// are plain sentinels: ErrMissingCredentials, ErrInvalidQuery and
// ErrInvalidResource.
//
// # Interceptors and change publishing
//
// Request/response interceptors add logging, headers and per-endpoint
// metrics. ChangePublisher forwards a change-data-capture feed to NATS.
package qbo
