/*
Package fdapi defines the content API surface shared by the client, the
MCP tool adapter and the command line.

The package holds the request and result types, the closed error taxonomy,
outcome classification and the interceptor chain. The concrete client lives
in pkg/fdclient:

	client, err := fdclient.New(ctx, fdapi.DefaultSettings("https://api.example.com"))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	item, err := client.FetchItem(ctx, fdapi.NewItemRequest("albums", fdapi.LanguageEnGB, "championship-photos"))

# Errors

Every failed operation returns an *Error. Branch on its Kind:

	switch {
	case fdapi.IsNotFound(err):
		// the item does not exist
	case fdapi.IsRateLimited(err):
		// wait fdErr.RetryAfter
	}

errors.Is also works against the kind sentinels such as ErrNotFound.

# Interceptors

Request and response interceptors see each logical call once, after
validation and around all retry attempts:

	fdclient.New(ctx, settings,
		fdclient.WithRequestInterceptor(fdapi.HeaderInterceptor(map[string]string{"X-Trace": id})),
	)
*/
package fdapi
