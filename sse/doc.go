// Package sse streams Server-Sent Events to browser clients.
//
// A Client is a buffered outbox with an ID and a non-blocking Send, so it can
// be subscribed to a session.Registry next to websocket connections. Serve
// drains the outbox onto the response until the request context ends:
//
//	client := sse.NewClient(uuid.NewString(), 16)
//	registry.Subscribe(session.KindSummary, meetingID, client)
//	defer registry.Unsubscribe(session.KindSummary, meetingID, client)
//	sse.Serve(w, r, client, sse.Options{Event: "summary"})
package sse
