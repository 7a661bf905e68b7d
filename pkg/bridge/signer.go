package bridge

import (
	"context"

	"github.com/pubky/pubky-ffi-go/pkg/pubky"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

// SignerPublicKey returns the z-base-32 key the signer signs with.
func SignerPublicKey(h Handle) Result {
	s, err := lookup[pubky.Signer](h, KindSigner)
	if err != nil {
		return textResult("", err)
	}
	return okText(s.PublicKey().String())
}

// SignerSignup registers on homeserver and returns a Session handle, or null.
// An empty token means none.
func SignerSignup(h, homeserver Handle, token string) Handle {
	sess, _ := SignerSignupWithResult(h, homeserver, token)
	return sess
}

// SignerSignupWithResult is SignerSignup that also reports why it failed.
func SignerSignupWithResult(h, homeserver Handle, token string) (Handle, Result) {
	s, err := lookup[pubky.Signer](h, KindSigner)
	if err != nil {
		return 0, textResult("", err)
	}
	hs, err := lookup[keys.PublicKey](homeserver, KindPublicKey)
	if err != nil {
		return 0, textResult("", err)
	}
	return sessionResult(blocking("signup", func(ctx context.Context) (*pubky.Session, error) {
		return s.Signup(ctx, *hs, token)
	}))
}

// SignerSignin signs in and returns a session handle, or 0.
func SignerSignin(h Handle) Handle {
	sess, _ := SignerSigninWithResult(h)
	return sess
}

// SignerSigninWithResult is SignerSignin that also reports why it failed.
func SignerSigninWithResult(h Handle) (Handle, Result) {
	return signin(h, "signin", (*pubky.Signer).Signin)
}

// SignerSigninBlocking waits for the homeserver record to propagate.
func SignerSigninBlocking(h Handle) Handle {
	sess, _ := SignerSigninBlockingWithResult(h)
	return sess
}

// SignerSigninBlockingWithResult is SignerSigninBlocking that also reports why it failed.
func SignerSigninBlockingWithResult(h Handle) (Handle, Result) {
	return signin(h, "signin_blocking", (*pubky.Signer).SigninBlocking)
}

func signin(h Handle, op string, fn func(*pubky.Signer, context.Context) (*pubky.Session, error)) (Handle, Result) {
	s, err := lookup[pubky.Signer](h, KindSigner)
	if err != nil {
		return 0, textResult("", err)
	}
	return sessionResult(blocking(op, func(ctx context.Context) (*pubky.Session, error) {
		return fn(s, ctx)
	}))
}

func sessionResult(sess *pubky.Session, err error) (Handle, Result) {
	if err != nil {
		return 0, textResult("", err)
	}
	return handles.put(KindSession, sess), okText("")
}

// SignerFree releases a signer handle.
func SignerFree(h Handle) { handles.release(h, KindSigner) }
