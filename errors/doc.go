// Package errors defines the structured error type shared by every huddle
// package. Each AppError carries a machine-readable code, the HTTP status the
// API layer should answer with, and whether the failed operation may be retried.
package errors
