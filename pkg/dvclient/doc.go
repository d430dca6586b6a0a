// Package dvclient provides the primary entry point for constructing a
// Microsoft Dataverse Web API client that implements the dataverse.Client
// interface.
//
// It layers URL normalisation, HTTP transport and optional $metadata
// validation on top of the interfaces and types defined in the dataverse
// package.
//
// Quick start
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
//
//	  // With a token you already have. The scheme defaults to https.
//	  cli, err := dvclient.NewWithToken(ctx, "org.crm.dynamics.com", "eyJ0eXAiOi...")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or validate entity and property names before writing.
//	  cli, err = dvclient.New(ctx, &dataverse.Config{
//	    ServiceURL:         "https://org.crm.dynamics.com",
//	    AccessToken:        "eyJ0eXAiOi...",
//	    MetadataValidation: true,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  accounts, err := cli.Entity("accounts")
//	  if err != nil { log.Fatal(err) }
//
//	  records, err := accounts.Query(ctx, dataverse.NewQueryOptions().WithTop(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = records
//	}
//
// # Helpers
//
// NewWithToken, NewWithValidation and NewWithClientCredentials wrap New with
// the matching configuration. NewWithClientCredentials runs the Azure AD
// client credentials grant once; the token is not refreshed.
package dvclient
