//go:build cgo

package main

/*
#include "pubky_ffi.h"
*/
import "C"

import "github.com/pubky/pubky-ffi-go/pkg/bridge"

//export pubky_facade_new
func pubky_facade_new() C.pubky_facade_t { return C.pubky_facade_t(bridge.FacadeNew()) }

//export pubky_facade_testnet
func pubky_facade_testnet() C.pubky_facade_t { return C.pubky_facade_t(bridge.FacadeTestnet()) }

//export pubky_facade_free
func pubky_facade_free(f C.pubky_facade_t) { bridge.FacadeFree(bridge.Handle(f)) }

//export pubky_facade_signer
func pubky_facade_signer(f C.pubky_facade_t, kp C.pubky_keypair_t) C.pubky_signer_t {
	return C.pubky_signer_t(bridge.FacadeSigner(bridge.Handle(f), bridge.Handle(kp)))
}

//export pubky_facade_public_storage
func pubky_facade_public_storage(f C.pubky_facade_t) C.pubky_public_storage_t {
	return C.pubky_public_storage_t(bridge.FacadePublicStorage(bridge.Handle(f)))
}

//export pubky_facade_get_homeserver_of
func pubky_facade_get_homeserver_of(f C.pubky_facade_t, user C.pubky_public_key_t) C.FfiResult {
	return cResult(bridge.FacadeHomeserverOf(bridge.Handle(f), bridge.Handle(user)))
}

//export pubky_resolve_address
func pubky_resolve_address(addr *C.char) C.FfiResult {
	a, err := goString("address", addr)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.ResolveAddress(a))
}

//export pubky_signer_public_key
func pubky_signer_public_key(s C.pubky_signer_t) C.FfiResult {
	return cResult(bridge.SignerPublicKey(bridge.Handle(s)))
}

// token may be NULL.
//
//export pubky_signer_signup
func pubky_signer_signup(s C.pubky_signer_t, homeserver C.pubky_public_key_t, token *C.char) C.pubky_session_t {
	tok, err := optString("token", token)
	if err != nil {
		return 0
	}
	return C.pubky_session_t(bridge.SignerSignup(bridge.Handle(s), bridge.Handle(homeserver), tok))
}

//export pubky_signer_signup_with_result
func pubky_signer_signup_with_result(s C.pubky_signer_t, homeserver C.pubky_public_key_t, token *C.char, out *C.pubky_session_t) C.FfiResult {
	if out == nil {
		return invalid(errNullOut)
	}
	*out = 0
	tok, err := optString("token", token)
	if err != nil {
		return invalid(err)
	}
	h, r := bridge.SignerSignupWithResult(bridge.Handle(s), bridge.Handle(homeserver), tok)
	*out = C.pubky_session_t(h)
	return cResult(r)
}

//export pubky_signer_signin
func pubky_signer_signin(s C.pubky_signer_t) C.pubky_session_t {
	return C.pubky_session_t(bridge.SignerSignin(bridge.Handle(s)))
}

//export pubky_signer_signin_with_result
func pubky_signer_signin_with_result(s C.pubky_signer_t, out *C.pubky_session_t) C.FfiResult {
	if out == nil {
		return invalid(errNullOut)
	}
	*out = 0
	h, r := bridge.SignerSigninWithResult(bridge.Handle(s))
	*out = C.pubky_session_t(h)
	return cResult(r)
}

//export pubky_signer_signin_blocking
func pubky_signer_signin_blocking(s C.pubky_signer_t) C.pubky_session_t {
	return C.pubky_session_t(bridge.SignerSigninBlocking(bridge.Handle(s)))
}

//export pubky_signer_signin_blocking_with_result
func pubky_signer_signin_blocking_with_result(s C.pubky_signer_t, out *C.pubky_session_t) C.FfiResult {
	if out == nil {
		return invalid(errNullOut)
	}
	*out = 0
	h, r := bridge.SignerSigninBlockingWithResult(bridge.Handle(s))
	*out = C.pubky_session_t(h)
	return cResult(r)
}

//export pubky_signer_free
func pubky_signer_free(s C.pubky_signer_t) { bridge.SignerFree(bridge.Handle(s)) }

//export pubky_session_public_key
func pubky_session_public_key(s C.pubky_session_t) C.FfiResult {
	return cResult(bridge.SessionPublicKey(bridge.Handle(s)))
}

//export pubky_session_capabilities
func pubky_session_capabilities(s C.pubky_session_t) C.FfiResult {
	return cResult(bridge.SessionCapabilities(bridge.Handle(s)))
}

//export pubky_session_storage
func pubky_session_storage(s C.pubky_session_t) C.pubky_session_storage_t {
	return C.pubky_session_storage_t(bridge.SessionStorage(bridge.Handle(s)))
}

//export pubky_session_signout
func pubky_session_signout(s C.pubky_session_t) C.FfiResult {
	return cResult(bridge.SessionSignout(bridge.Handle(s)))
}

//export pubky_session_revalidate
func pubky_session_revalidate(s C.pubky_session_t) C.FfiResult {
	return cResult(bridge.SessionRevalidate(bridge.Handle(s)))
}

//export pubky_session_free
func pubky_session_free(s C.pubky_session_t) { bridge.SessionFree(bridge.Handle(s)) }
