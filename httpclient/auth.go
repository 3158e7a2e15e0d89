package httpclient

import "net/http"

// AuthConfig sets the authentication header of a request.
type AuthConfig struct {
	// Header is the header name, "Authorization" when empty.
	Header string
	// Value is the full header value.
	Value string
}

// TokenAuth authenticates with "Authorization: Token <key>", the scheme
// Deepgram uses.
func TokenAuth(key string) *AuthConfig {
	return &AuthConfig{Value: "Token " + key}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil || a.Value == "" {
		return
	}
	name := a.Header
	if name == "" {
		name = "Authorization"
	}
	req.Header.Set(name, a.Value)
}
