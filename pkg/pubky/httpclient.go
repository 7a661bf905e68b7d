package pubky

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/pkarr"
)

// PubkyHostHeader tells a homeserver which user a request is about.
const PubkyHostHeader = "pubky-host"

// DefaultHTTPTimeout bounds SDK requests when no client is supplied.
const DefaultHTTPTimeout = 30 * time.Second

type hostKind int

const (
	hostPlain hostKind = iota
	hostPubky
	hostPrefixed
)

// classifyHost reports whether host names a pubky identity. Both the bare
// key and the "_pubky." label count; "pubky"-prefixed keys are display
// forms and never valid transport hosts.
func classifyHost(host string) (hostKind, keys.PublicKey) {
	h := strings.TrimPrefix(host, pubkyHostLabel)
	if pk, err := keys.ParsePublicKey(h); err == nil {
		return hostPubky, pk
	}
	if keys.IsPubkyPrefixed(h) {
		return hostPrefixed, keys.PublicKey{}
	}
	return hostPlain, keys.PublicKey{}
}

// HTTPClient sends requests, rewriting pubky hosts to the endpoint of the
// homeserver that currently serves them.
type HTTPClient struct {
	client   *http.Client
	resolver pkarr.Resolver
}

func newHTTPClient(c *http.Client, r pkarr.Resolver) *HTTPClient {
	if c == nil {
		c = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPClient{client: c, resolver: r}
}

// Client exposes the underlying transport.
func (c *HTTPClient) Client() *http.Client { return c.client }

// Do routes and sends req. Transport failures are KindRequest; failing to
// resolve a pubky host is KindPkarr.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	const op = "http"
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent())
	}
	if err := c.prepare(req); err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, newError(KindRequest, op, err)
	}
	return resp, nil
}

func (c *HTTPClient) prepare(req *http.Request) error {
	kind, pk := classifyHost(req.URL.Hostname())
	switch kind {
	case hostPrefixed:
		return newError(KindParse, "http", fmt.Errorf("%w: host %q must not carry the pubky prefix", ErrInvalidPath, req.URL.Host))
	case hostPlain:
		return nil
	}
	endpoint, err := c.endpointOf(req.Context(), pk)
	if err != nil {
		return err
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return newError(KindPkarr, "http", fmt.Errorf("%w: homeserver endpoint %q", pkarr.ErrInvalidPacket, endpoint))
	}
	req.URL.Scheme = u.Scheme
	req.URL.Host = u.Host
	req.Host = u.Host
	req.Header.Set(PubkyHostHeader, pk.String())
	return nil
}

// endpointOf follows user -> homeserver -> endpoint.
func (c *HTTPClient) endpointOf(ctx context.Context, pk keys.PublicKey) (string, error) {
	const op = "resolve"
	rec, err := c.resolver.Resolve(ctx, pk)
	if err != nil {
		return "", wrap(op, KindPkarr, notFoundAsPkarr(err))
	}
	if rec.Endpoint != "" {
		return rec.Endpoint, nil
	}
	if !rec.HasHomeserver() {
		return "", newError(KindPkarr, op, fmt.Errorf("%w: %s publishes neither endpoint nor homeserver", pkarr.ErrNotFound, pk))
	}
	hs, err := c.resolver.Resolve(ctx, rec.Homeserver)
	if err != nil {
		return "", wrap(op, KindPkarr, notFoundAsPkarr(err))
	}
	if hs.Endpoint == "" {
		return "", newError(KindPkarr, op, fmt.Errorf("%w: homeserver %s publishes no endpoint", pkarr.ErrNotFound, rec.Homeserver))
	}
	return hs.Endpoint, nil
}

// A pubky host that does not resolve is a resolution failure, not absence.
func notFoundAsPkarr(err error) error {
	if errors.Is(err, pkarr.ErrNotFound) {
		return &Error{Kind: KindPkarr, Op: "resolve", Err: err}
	}
	return err
}
