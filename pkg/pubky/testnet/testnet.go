package testnet

import (
	"context"
	"fmt"
	"net"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/pubky/pubky-ffi-go/pkg/pubky"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/pkarr"
)

const relayPrefix = "/relay"

type config struct {
	listenAddr   string
	maxBody      int64
	requireToken bool
}

type Option func(*config)

// WithListenAddr binds the server to addr instead of a random local port.
func WithListenAddr(addr string) Option { return func(c *config) { c.listenAddr = addr } }

// WithMaxBodySize caps stored objects; larger writes get 413.
func WithMaxBodySize(n int64) Option { return func(c *config) { c.maxBody = n } }

// WithSignupTokens makes signup require a token from GenerateSignupToken.
func WithSignupTokens() Option { return func(c *config) { c.requireToken = true } }

// Testnet is a running in-process network.
type Testnet struct {
	Homeserver *Homeserver
	DHT        *pkarr.Memory

	server *httptest.Server
}

// Start serves the homeserver and relay and publishes the homeserver endpoint.
func Start(opts ...Option) (*Testnet, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	kp, err := keys.RandomKeypair()
	if err != nil {
		return nil, err
	}
	dht := pkarr.NewMemory()
	hs := newHomeserver(kp, cfg.maxBody, cfg.requireToken)

	r := chi.NewRouter()
	r.Route(relayPrefix, relayRoutes(dht))
	// Also at the root, where DefaultTestnetRelay points.
	r.Group(relayRoutes(dht))
	hs.routes(r)

	srv := httptest.NewUnstartedServer(r)
	if cfg.listenAddr != "" {
		ln, err := net.Listen("tcp", cfg.listenAddr)
		if err != nil {
			return nil, fmt.Errorf("testnet: listen %s: %w", cfg.listenAddr, err)
		}
		srv.Listener.Close()
		srv.Listener = ln
	}
	srv.Start()

	if err := dht.Publish(context.Background(), kp, pkarr.Record{Endpoint: srv.URL}); err != nil {
		srv.Close()
		return nil, fmt.Errorf("testnet: publish homeserver: %w", err)
	}
	return &Testnet{Homeserver: hs, DHT: dht, server: srv}, nil
}

// URL is the homeserver endpoint.
func (t *Testnet) URL() string { return t.server.URL }

// RelayURL is the pkarr relay clients resolve through.
func (t *Testnet) RelayURL() string { return t.server.URL + relayPrefix }

func (t *Testnet) HomeserverKey() keys.PublicKey { return t.Homeserver.PublicKey() }

// Client returns a facade bound to this network.
func (t *Testnet) Client(opts ...pubky.Option) (*pubky.Pubky, error) {
	all := append([]pubky.Option{pubky.WithHTTPClient(t.server.Client())}, opts...)
	return pubky.Testnet(t.RelayURL(), all...)
}

func (t *Testnet) Close() { t.server.Close() }
