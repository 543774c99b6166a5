package http

import "net/http"

type authTransport struct {
	token     string
	apiKey    string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.token != "" && reqCopy.Header.Get("Authorization") == "" {
		reqCopy.Header.Set("Authorization", "Bearer "+t.token)
	}
	if t.apiKey != "" {
		reqCopy.Header.Set("apikey", t.apiKey)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sets a default bearer token. A per-request Authorization header wins.
func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			token:     token,
			transport: rt,
		}
	})
}

// WithAPIKey sends the project key in the "apikey" header, as hosted identity providers expect.
func WithAPIKey(key string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			apiKey:    key,
			transport: rt,
		}
	})
}
