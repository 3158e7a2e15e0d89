// Package resilience guards calls to huddle's external collaborators (the
// speech-to-text API, the LLM API, and the ffmpeg subprocess).
//
//   - Retry: retries retryable failures with exponential backoff
//   - CircuitBreaker: fails fast after repeated failures until a cooldown passes
//   - Bulkhead: caps how many calls run at once
//
// Policy combines the three from a config block:
//
//	policy := resilience.NewPolicy("deepgram", cfg.Transcription.Resilience)
//	res, err := resilience.Execute(ctx, policy, func() (*Result, error) { ... })
package resilience
