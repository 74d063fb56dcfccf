// Package fdclient is the entry point for constructing a content client that
// implements the fdapi.Client interface.
//
// It layers settings normalisation, the pooled retrying transport, optional
// API-key authentication and optional call events on top of the types defined
// in the fdapi package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/fdapi-mcp/pkg/fdapi"
//	  "github.com/fivetwenty-io/fdapi-mcp/pkg/fdclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := fdclient.NewWithEndpoint(ctx, "https://api.example.com")
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  item, err := cli.FetchItem(ctx, fdapi.NewItemRequest("albums", fdapi.LanguageEnGB, "championship-photos"))
//	  if err != nil { log.Fatal(err) }
//	  log.Println(item.Title)
//	}
//
// Scoped use
//
// With starts a client, runs a function and always closes the client, even
// when the function fails:
//
//	err := fdclient.With(ctx, fdapi.DefaultSettings("https://api.example.com"), func(cli fdapi.Client) error {
//	  _, err := cli.ListItems(ctx, fdapi.NewListRequest("photos", "", 1, 20))
//	  return err
//	})
package fdclient
