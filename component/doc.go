// Package component defines the lifecycle contract shared by huddle's
// infrastructure pieces (database, cache, object storage, task queue, HTTP
// server) and a registry that starts them in order and stops them in reverse.
package component
