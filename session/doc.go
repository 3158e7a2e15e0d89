// Package session tracks which subscribers listen to which meeting.
//
// A Registry holds one subscriber set per (Kind, meeting). Websocket
// connections and SSE clients both implement Subscriber. The registry is
// created once at startup and injected; it is never a package global.
package session
