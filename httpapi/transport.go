package httpapi

import (
	"context"
	"net/http"
)

// Refresher triggers an on-demand credential renewal. *goSession.Engine
// satisfies it.
type Refresher interface {
	RefreshNow(ctx context.Context) error
}

// Transport is an http.RoundTripper for the host application's own API
// calls. It injects the current access credential as a bearer token and, on
// an authorization rejection, performs one on-demand renewal and retries the
// request once.
//
// Requests with bodies are retried only when GetBody is set (true for all
// requests built from byte readers).
type Transport struct {
	// Base performs the actual round trip. Defaults to
	// http.DefaultTransport.
	Base http.RoundTripper

	// TokenSource supplies the current access credential; typically
	// Engine.AccessToken.
	TokenSource func() string

	// Refresher enables the renew-and-retry path. Nil disables it.
	Refresher Refresher
}

// NewTransport wires a Transport to an engine-shaped token source.
func NewTransport(source func() string, refresher Refresher) *Transport {
	return &Transport{
		TokenSource: source,
		Refresher:   refresher,
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base().RoundTrip(t.authorize(req))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || t.Refresher == nil {
		return resp, nil
	}

	retry, ok := rewindRequest(req)
	if !ok {
		return resp, nil
	}
	if refreshErr := t.Refresher.RefreshNow(req.Context()); refreshErr != nil {
		return resp, nil
	}

	drain(resp)
	return t.base().RoundTrip(t.authorize(retry))
}

// authorize clones the request and attaches the bearer header. RoundTrippers
// must not mutate the caller's request.
func (t *Transport) authorize(req *http.Request) *http.Request {
	out := req.Clone(req.Context())
	if t.TokenSource != nil {
		if token := t.TokenSource(); token != "" {
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return out
}

func rewindRequest(req *http.Request) (*http.Request, bool) {
	if req.Body == nil {
		return req, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	out := req.Clone(req.Context())
	out.Body = body
	return out, true
}
