//go:build cgo

package main

/*
#include "pubky_ffi.h"
*/
import "C"

import "github.com/pubky/pubky-ffi-go/pkg/bridge"

//export pubky_keypair_random
func pubky_keypair_random() C.pubky_keypair_t {
	return C.pubky_keypair_t(bridge.KeypairRandom())
}

// pubky_keypair_from_secret_key returns 0 unless secret holds exactly 32 bytes.
//
//export pubky_keypair_from_secret_key
func pubky_keypair_from_secret_key(secret *C.uint8_t, n C.size_t) C.pubky_keypair_t {
	b, err := goBytes("secret key", secret, n)
	if err != nil || secret == nil {
		return 0
	}
	return C.pubky_keypair_t(bridge.KeypairFromSecretKey(b))
}

//export pubky_keypair_from_recovery_file
func pubky_keypair_from_recovery_file(blob *C.uint8_t, n C.size_t, passphrase *C.char) C.pubky_keypair_t {
	b, err := goBytes("blob", blob, n)
	if err != nil {
		return 0
	}
	pass, err := goString("passphrase", passphrase)
	if err != nil {
		return 0
	}
	return C.pubky_keypair_t(bridge.KeypairFromRecoveryFile(b, pass))
}

//export pubky_keypair_from_recovery_file_with_result
func pubky_keypair_from_recovery_file_with_result(blob *C.uint8_t, n C.size_t, passphrase *C.char, out *C.pubky_keypair_t) C.FfiResult {
	if out == nil {
		return invalid(errNullOut)
	}
	*out = 0
	b, err := goBytes("blob", blob, n)
	if err != nil {
		return invalid(err)
	}
	pass, err := goString("passphrase", passphrase)
	if err != nil {
		return invalid(err)
	}
	h, r := bridge.KeypairFromRecoveryFileWithResult(b, pass)
	*out = C.pubky_keypair_t(h)
	return cResult(r)
}

//export pubky_keypair_secret_key
func pubky_keypair_secret_key(kp C.pubky_keypair_t) C.FfiBytesResult {
	return cBytesResult(bridge.KeypairSecretKey(bridge.Handle(kp)))
}

//export pubky_keypair_public_key
func pubky_keypair_public_key(kp C.pubky_keypair_t) C.pubky_public_key_t {
	return C.pubky_public_key_t(bridge.KeypairPublicKey(bridge.Handle(kp)))
}

//export pubky_keypair_create_recovery_file
func pubky_keypair_create_recovery_file(kp C.pubky_keypair_t, passphrase *C.char) C.FfiBytesResult {
	pass, err := goString("passphrase", passphrase)
	if err != nil {
		return invalidBytes(err)
	}
	return cBytesResult(bridge.KeypairCreateRecoveryFile(bridge.Handle(kp), pass))
}

//export pubky_keypair_free
func pubky_keypair_free(kp C.pubky_keypair_t) { bridge.KeypairFree(bridge.Handle(kp)) }

//export pubky_public_key_from_z32
func pubky_public_key_from_z32(z32 *C.char) C.pubky_public_key_t {
	s, err := goString("z32", z32)
	if err != nil {
		return 0
	}
	return C.pubky_public_key_t(bridge.PublicKeyFromZ32(s))
}

//export pubky_public_key_z32
func pubky_public_key_z32(pk C.pubky_public_key_t) C.FfiResult {
	return cResult(bridge.PublicKeyZ32(bridge.Handle(pk)))
}

//export pubky_public_key_bytes
func pubky_public_key_bytes(pk C.pubky_public_key_t) C.FfiBytesResult {
	return cBytesResult(bridge.PublicKeyBytes(bridge.Handle(pk)))
}

//export pubky_public_key_free
func pubky_public_key_free(pk C.pubky_public_key_t) { bridge.PublicKeyFree(bridge.Handle(pk)) }
