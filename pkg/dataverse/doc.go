// Package dataverse provides types, interfaces, and helpers for working with
// the Microsoft Dataverse Web API.
//
// # Overview
//
// The dataverse package defines the public surface of the client: the Client
// and EntityClient interfaces, the Record and QueryOptions types, the Config
// used to build a client, and the Error type returned by every operation. A
// concrete implementation is provided by the dvclient package.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/dataverse/pkg/dataverse"
//	  "github.com/fivetwenty-io/dataverse/pkg/dvclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := dvclient.New(ctx, &dataverse.Config{
//	    ServiceURL:         "https://org.crm4.dynamics.com",
//	    AccessToken:        token,
//	    MetadataValidation: true,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  accounts, err := cli.Entity("accounts")
//	  if err != nil { log.Fatal(err) }
//
//	  rows, err := accounts.Query(ctx, dataverse.NewQueryOptions().
//	    WithFilter("name eq 'Acme'").
//	    WithSelect("name", "accountid"))
//	  if err != nil { log.Fatal(err) }
//	  _ = rows
//	}
//
// # Errors
//
// Every failure is an *Error. Its Kind separates bad input detected against
// metadata (KindValidation, raised before any request) from remote failures
// (KindTransport). Transport errors carry the HTTP status code and the raw
// response; Web API error payloads are decoded into APIError. Helpers such as
// IsValidation, IsTransport, IsNotFound and StatusCode make branching easy.
//
// # Concurrency
//
// A client issues one synchronous request per operation. The entity handle
// cache is locked, so a client may be shared, but there is no other
// coordination between concurrent calls.
package dataverse
