// Package client is the Go SDK for the threadboard HTTP API.
//
// Create a client with a session token and call the API:
//
//	c, err := client.New("http://localhost:8080", client.WithBearerToken(tok))
//	if err != nil { ... }
//
//	root, err := c.CreateComment(ctx, postID, "hello")
//	reply, err := c.Reply(ctx, root.ID, "hi back")
//
// Errors returned for non-2xx responses are *APIError values. They match the
// package sentinels with errors.Is:
//
//	if errors.Is(err, client.ErrNestingLimit) {
//	    // the thread is already at its maximum depth
//	}
package client
