package bridge

import (
	"context"

	"github.com/pubky/pubky-ffi-go/pkg/pubky"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

// FacadeNew returns a handle to the shared mainnet instance.
func FacadeNew() Handle { return newFacade("new", false) }

// FacadeTestnet returns a handle to the shared testnet instance.
func FacadeTestnet() Handle { return newFacade("testnet", true) }

func newFacade(op string, testnet bool) Handle {
	p, err := local(op, func() (*pubky.Pubky, error) {
		return runtimeState().facade(testnet)
	})
	if err != nil {
		return 0
	}
	return handles.put(KindFacade, p)
}

// RegisterFacade exposes an SDK instance built by Go code, e.g. one bound
// to an in-process test network.
func RegisterFacade(p *pubky.Pubky) Handle {
	if p == nil {
		return 0
	}
	return handles.put(KindFacade, p)
}

// FacadeFree releases a facade handle. Objects it created stay valid.
func FacadeFree(h Handle) { handles.release(h, KindFacade) }

// FacadeSigner binds a keypair to the facade. Neither handle is consumed.
func FacadeSigner(f, kp Handle) Handle {
	s, err := local("signer", func() (*pubky.Signer, error) {
		p, err := lookup[pubky.Pubky](f, KindFacade)
		if err != nil {
			return nil, err
		}
		k, err := lookup[keys.Keypair](kp, KindKeypair)
		if err != nil {
			return nil, err
		}
		return p.Signer(k), nil
	})
	if err != nil {
		return 0
	}
	return handles.put(KindSigner, s)
}

// FacadePublicStorage returns a read-only storage handle, or 0 if f is not live.
func FacadePublicStorage(f Handle) Handle {
	p, err := lookup[pubky.Pubky](f, KindFacade)
	if err != nil {
		return 0
	}
	return handles.put(KindPublicStorage, p.PublicStorage())
}

// FacadeHomeserverOf returns the z32 key of the user's homeserver, or empty
// data when the user publishes none.
func FacadeHomeserverOf(f, user Handle) Result {
	p, err := lookup[pubky.Pubky](f, KindFacade)
	if err != nil {
		return textResult("", err)
	}
	pk, err := lookup[keys.PublicKey](user, KindPublicKey)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("get_homeserver_of", func(ctx context.Context) (string, error) {
		hs, ok, err := p.HomeserverOf(ctx, *pk)
		if err != nil || !ok {
			return "", err
		}
		return hs.String(), nil
	}))
}

// ResolveAddress turns a pubky address into its https transport URL.
func ResolveAddress(addr string) Result {
	if addr == "" {
		return InvalidText("address is empty")
	}
	return textResult(local("resolve_address", func() (string, error) {
		return pubky.ResolveAddress(addr)
	}))
}
