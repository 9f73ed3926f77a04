package services

import (
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// limitedTransport waits on a shared limiter before each request.
type limitedTransport struct {
	limiter *rate.Limiter
	base    http.RoundTripper
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.base.RoundTrip(req)
}

// authorizedClient returns a client that sends tokens from ts and respects limiter, keeping the
// timeouts of base. The token source is asked for a token on every request so expired
// credentials are refreshed before they are used.
func authorizedClient(base *http.Client, ts oauth2.TokenSource, limiter *rate.Limiter) *http.Client {
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   &limitedTransport{limiter: limiter, base: rt},
		},
		Timeout: base.Timeout,
	}
}
