package bridge

import (
	"context"

	"github.com/pubky/pubky-ffi-go/pkg/pubky"
)

// SessionPublicKey returns the z-base-32 key of the session owner.
func SessionPublicKey(h Handle) Result {
	s, err := lookup[pubky.Session](h, KindSession)
	if err != nil {
		return textResult("", err)
	}
	return okText(s.PublicKey().String())
}

// SessionCapabilities returns the comma separated capability list.
func SessionCapabilities(h Handle) Result {
	s, err := lookup[pubky.Session](h, KindSession)
	if err != nil {
		return textResult("", err)
	}
	caps, err := s.Capabilities()
	if err != nil {
		return textResult("", err)
	}
	return okText(caps.String())
}

// SessionStorage returns a storage handle bound to the session, or 0.
func SessionStorage(h Handle) Handle {
	s, err := lookup[pubky.Session](h, KindSession)
	if err != nil {
		return 0
	}
	return handles.put(KindSessionStorage, s.Storage())
}

// SessionSignout ends the session. The handle stays valid for SessionFree;
// storage views of the session fail with CodeAuthentication afterwards.
func SessionSignout(h Handle) Result {
	s, err := lookup[pubky.Session](h, KindSession)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("signout", func(ctx context.Context) (string, error) {
		return "", s.Signout(ctx)
	}))
}

// SessionRevalidate returns "valid" while the homeserver accepts the session.
func SessionRevalidate(h Handle) Result {
	s, err := lookup[pubky.Session](h, KindSession)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("revalidate", func(ctx context.Context) (string, error) {
		if err := s.Revalidate(ctx); err != nil {
			return "", err
		}
		return "valid", nil
	}))
}

// SessionFree releases a session handle without signing out.
func SessionFree(h Handle) { handles.release(h, KindSession) }
