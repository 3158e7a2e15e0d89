// Package httpclient is the outbound HTTP client used by the REST-based
// providers (Deepgram, the Whisper sidecar).
//
//	c, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.deepgram.com",
//	    Auth:    httpclient.TokenAuth(apiKey),
//	})
//	resp, err := c.Do(ctx, httpclient.Request{Method: http.MethodPost, Path: "/v1/listen", Body: file})
//
// Non-2xx responses come back as *Error classified by status code, so
// callers can decide on retries with IsRetryable.
package httpclient
