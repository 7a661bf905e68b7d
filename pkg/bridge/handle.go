package bridge

import (
	"fmt"
	"sync"
)

// Kind tags the object a Handle refers to.
type Kind uint8

const (
	// KindInvalid is the kind of the null handle.
	KindInvalid Kind = iota
	// KindKeypair is an Ed25519 keypair.
	KindKeypair
	// KindPublicKey is a bare public key.
	KindPublicKey
	// KindFacade is a pubky client facade.
	KindFacade
	// KindSigner is a keypair bound to a facade.
	KindSigner
	// KindSession is an authenticated homeserver session.
	KindSession
	// KindSessionStorage is read-write storage scoped to a session.
	KindSessionStorage
	// KindPublicStorage is read-only storage addressed by pubky URL.
	KindPublicStorage
	// KindHTTPClient is a plain HTTP client.
	KindHTTPClient
)

var kindNames = [...]string{
	KindInvalid:        "invalid",
	KindKeypair:        "keypair",
	KindPublicKey:      "public_key",
	KindFacade:         "facade",
	KindSigner:         "signer",
	KindSession:        "session",
	KindSessionStorage: "session_storage",
	KindPublicStorage:  "public_storage",
	KindHTTPClient:     "http_client",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Handle is an opaque reference to a registered object. The top byte is the
// Kind, the rest a sequence number that is never reused.
type Handle uint64

const (
	kindShift = 56
	seqMask   = 1<<kindShift - 1
)

func makeHandle(k Kind, seq uint64) Handle { return Handle(uint64(k)<<kindShift | seq&seqMask) }

func (h Handle) Kind() Kind { return Kind(h >> kindShift) }

func (h Handle) IsNull() bool { return h == 0 }

func (h Handle) String() string { return fmt.Sprintf("%s#%d", h.Kind(), uint64(h)&seqMask) }

type registry struct {
	mu       sync.Mutex
	next     uint64
	live     map[Handle]any
	released map[Handle]struct{}
	debug    bool
}

func newRegistry() *registry {
	return &registry{next: 1, live: make(map[Handle]any), released: make(map[Handle]struct{})}
}

// handles is the process-wide registry.
var handles = newRegistry()

func (r *registry) setDebug(on bool) {
	r.mu.Lock()
	r.debug = on
	if !on {
		r.released = make(map[Handle]struct{})
	}
	r.mu.Unlock()
}

func (r *registry) put(k Kind, v any) Handle {
	r.mu.Lock()
	h := makeHandle(k, r.next)
	r.next++
	r.live[h] = v
	r.mu.Unlock()
	stats.handleOpened(k)
	return h
}

func (r *registry) get(h Handle) (any, error) {
	if h.IsNull() {
		return nil, ErrNullHandle
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.live[h]; ok {
		return v, nil
	}
	if _, ok := r.released[h]; ok {
		return nil, fmt.Errorf("%s: %w", h, ErrUsedAfterFree)
	}
	return nil, fmt.Errorf("%s: %w", h, ErrStaleHandle)
}

// release drops h if it is live and of kind k.
func (r *registry) release(h Handle, k Kind) bool {
	if h.IsNull() || h.Kind() != k {
		return false
	}
	r.mu.Lock()
	_, ok := r.live[h]
	if ok {
		delete(r.live, h)
		if r.debug {
			r.released[h] = struct{}{}
		}
	}
	r.mu.Unlock()
	if ok {
		stats.handleClosed(k)
	}
	return ok
}

func (r *registry) count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for h := range r.live {
		if h.Kind() == k {
			n++
		}
	}
	return n
}

// lookup resolves h to a *T registered under kind k.
func lookup[T any](h Handle, k Kind) (*T, error) {
	if !h.IsNull() && h.Kind() != k {
		return nil, fmt.Errorf("%w: %s is not a %s", ErrHandleKind, h, k)
	}
	v, err := handles.get(h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	t, ok := v.(*T)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", ErrHandleKind, h, v)
	}
	return t, nil
}
