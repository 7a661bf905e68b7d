package pubky

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/logging"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/pkarr"
)

// DefaultTestnetRelay is the relay of a locally running test network.
const DefaultTestnetRelay = "http://localhost:15411"

// DefaultPublishTimeout bounds the wait of blocking sign-in.
const DefaultPublishTimeout = 30 * time.Second

// republishAfter is the age past which sign-in refreshes the homeserver record.
const republishAfter = time.Hour

type options struct {
	httpClient     *http.Client
	resolver       pkarr.Resolver
	relays         []string
	logger         logging.Logger
	publishTimeout time.Duration
}

// Option configures a Pubky facade.
type Option func(*options)

// WithHTTPClient sets the transport used for homeserver and relay requests.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.httpClient = c } }

// WithResolver replaces the relay-backed resolver.
func WithResolver(r pkarr.Resolver) Option { return func(o *options) { o.resolver = r } }

// WithRelays sets the relays of the default resolver.
func WithRelays(relays []string) Option { return func(o *options) { o.relays = relays } }

func WithLogger(l logging.Logger) Option { return func(o *options) { o.logger = l } }

func WithPublishTimeout(d time.Duration) Option { return func(o *options) { o.publishTimeout = d } }

// Pubky is the root of the SDK. It is safe for concurrent use.
type Pubky struct {
	http           *HTTPClient
	resolver       pkarr.Resolver
	logger         logging.Logger
	publishTimeout time.Duration
	testnet        bool
}

// New returns a facade bound to the production network.
func New(opts ...Option) (*Pubky, error) {
	return build(false, pkarr.DefaultRelays, opts)
}

// Testnet returns a facade bound to the test network reachable through relay.
// An empty relay uses DefaultTestnetRelay.
func Testnet(relay string, opts ...Option) (*Pubky, error) {
	if relay == "" {
		relay = DefaultTestnetRelay
	}
	return build(true, []string{relay}, opts)
}

func build(testnet bool, relays []string, opts []Option) (*Pubky, error) {
	o := options{relays: relays, publishTimeout: DefaultPublishTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if o.logger == nil {
		o.logger = logging.New(nil)
	}
	if o.resolver == nil {
		if len(o.relays) == 0 {
			return nil, &Error{Kind: KindBuild, Op: "new", Err: errors.New("no relays configured")}
		}
		o.resolver = pkarr.NewRelay(o.relays, o.httpClient)
	}
	if o.publishTimeout <= 0 {
		o.publishTimeout = DefaultPublishTimeout
	}
	return &Pubky{
		http:           newHTTPClient(o.httpClient, o.resolver),
		resolver:       o.resolver,
		logger:         o.logger.With("component", "pubky", "testnet", testnet),
		publishTimeout: o.publishTimeout,
		testnet:        testnet,
	}, nil
}

func (p *Pubky) IsTestnet() bool { return p.testnet }

func (p *Pubky) HTTP() *HTTPClient { return p.http }

func (p *Pubky) Resolver() pkarr.Resolver { return p.resolver }

// Signer binds kp to this facade.
func (p *Pubky) Signer(kp *keys.Keypair) *Signer { return &Signer{pubky: p, keypair: kp} }

// PublicStorage returns the read-only view of every user's public data.
func (p *Pubky) PublicStorage() *PublicStorage { return &PublicStorage{pubky: p} }

// HomeserverOf resolves the homeserver a user publishes. The boolean is
// false when the user has no record.
func (p *Pubky) HomeserverOf(ctx context.Context, user keys.PublicKey) (keys.PublicKey, bool, error) {
	rec, err := p.resolver.Resolve(ctx, user)
	switch {
	case errors.Is(err, pkarr.ErrNotFound):
		return keys.PublicKey{}, false, nil
	case err != nil:
		return keys.PublicKey{}, false, newError(KindRequest, "get_homeserver_of", err)
	case !rec.HasHomeserver():
		return keys.PublicKey{}, false, nil
	}
	return rec.Homeserver, true, nil
}

// publishHomeserver refreshes the user's record unless a recent one names hs.
func (p *Pubky) publishHomeserver(ctx context.Context, kp *keys.Keypair, hs keys.PublicKey, force bool) error {
	if !force {
		rec, err := p.resolver.Resolve(ctx, kp.PublicKey())
		if err == nil && rec.Homeserver == hs && time.Since(rec.Timestamp) < republishAfter {
			return nil
		}
	}
	if err := p.resolver.Publish(ctx, kp, pkarr.Record{Homeserver: hs}); err != nil {
		return wrap("publish_homeserver", KindPkarr, err)
	}
	return nil
}
