// Package transcription turns a transcoded WAV file into text.
//
// Backends implement Backend (a provider.RequestResponse) and live in
// sub-packages:
//
//   - transcription/deepgram: Deepgram prerecorded REST API
//   - transcription/whisper: self-hosted faster-whisper sidecar
//
// Transcriber wraps the configured backend with middleware and fills in the
// default language:
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory(deepgram.ProviderName, deepgram.Factory(cfg.Deepgram))
//	backend, err := reg.Create(cfg.Provider, nil)
//	t := transcription.New(backend, cfg, provider.WithLogging[transcription.Request, *transcription.Result](log))
//	res, err := t.Transcribe(ctx, transcription.Request{AudioPath: wav})
package transcription
