// Package api exposes huddle over HTTP: the REST routes, the chat, audio and
// summary websockets, and the SSE summary stream.
package api
