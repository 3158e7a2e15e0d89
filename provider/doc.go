// Package provider defines the request/response abstraction shared by
// huddle's external backends (speech-to-text and LLM providers).
//
// A backend implements RequestResponse[I, O]. Cross-cutting behavior is added
// with Middleware and composed with Chain, outermost first:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[transcription.Request, *transcription.Result](log),
//	    provider.WithTracing[transcription.Request, *transcription.Result]("transcription"),
//	    provider.WithMetrics[transcription.Request, *transcription.Result](metrics),
//	    provider.WithResilience[transcription.Request, *transcription.Result](policy),
//	)(deepgramProvider)
//
// Registry maps configured provider names to factories so the backend can be
// selected from config.
package provider
