//go:build cgo

package main

/*
#include "pubky_ffi.h"
*/
import "C"

import "github.com/pubky/pubky-ffi-go/pkg/bridge"

//export pubky_session_storage_get_text
func pubky_session_storage_get_text(st C.pubky_session_storage_t, path *C.char) C.FfiResult {
	p, err := goString("path", path)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.SessionStorageGetText(bridge.Handle(st), p))
}

//export pubky_session_storage_get_bytes
func pubky_session_storage_get_bytes(st C.pubky_session_storage_t, path *C.char) C.FfiBytesResult {
	p, err := goString("path", path)
	if err != nil {
		return invalidBytes(err)
	}
	return cBytesResult(bridge.SessionStorageGetBytes(bridge.Handle(st), p))
}

//export pubky_session_storage_get_json
func pubky_session_storage_get_json(st C.pubky_session_storage_t, path *C.char) C.FfiResult {
	p, err := goString("path", path)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.SessionStorageGetJSON(bridge.Handle(st), p))
}

//export pubky_session_storage_put_text
func pubky_session_storage_put_text(st C.pubky_session_storage_t, path, body *C.char) C.FfiResult {
	p, err := goString("path", path)
	if err != nil {
		return invalid(err)
	}
	b, err := goString("body", body)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.SessionStoragePutText(bridge.Handle(st), p, b))
}

//export pubky_session_storage_put_bytes
func pubky_session_storage_put_bytes(st C.pubky_session_storage_t, path *C.char, body *C.uint8_t, n C.size_t) C.FfiResult {
	p, err := goString("path", path)
	if err != nil {
		return invalid(err)
	}
	b, err := goBytes("body", body, n)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.SessionStoragePutBytes(bridge.Handle(st), p, b))
}

//export pubky_session_storage_put_json
func pubky_session_storage_put_json(st C.pubky_session_storage_t, path, body *C.char) C.FfiResult {
	p, err := goString("path", path)
	if err != nil {
		return invalid(err)
	}
	b, err := goString("body", body)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.SessionStoragePutJSON(bridge.Handle(st), p, b))
}

//export pubky_session_storage_delete
func pubky_session_storage_delete(st C.pubky_session_storage_t, path *C.char) C.FfiResult {
	p, err := goString("path", path)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.SessionStorageDelete(bridge.Handle(st), p))
}

//export pubky_session_storage_exists
func pubky_session_storage_exists(st C.pubky_session_storage_t, path *C.char) C.FfiResult {
	p, err := goString("path", path)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.SessionStorageExists(bridge.Handle(st), p))
}

//export pubky_session_storage_list
func pubky_session_storage_list(st C.pubky_session_storage_t, path *C.char, limit C.uint16_t) C.FfiResult {
	p, err := goString("path", path)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.SessionStorageList(bridge.Handle(st), p, uint16(limit)))
}

//export pubky_session_storage_free
func pubky_session_storage_free(st C.pubky_session_storage_t) {
	bridge.SessionStorageFree(bridge.Handle(st))
}

//export pubky_public_storage_get_text
func pubky_public_storage_get_text(ps C.pubky_public_storage_t, addr *C.char) C.FfiResult {
	a, err := goString("address", addr)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.PublicStorageGetText(bridge.Handle(ps), a))
}

//export pubky_public_storage_get_bytes
func pubky_public_storage_get_bytes(ps C.pubky_public_storage_t, addr *C.char) C.FfiBytesResult {
	a, err := goString("address", addr)
	if err != nil {
		return invalidBytes(err)
	}
	return cBytesResult(bridge.PublicStorageGetBytes(bridge.Handle(ps), a))
}

//export pubky_public_storage_get_json
func pubky_public_storage_get_json(ps C.pubky_public_storage_t, addr *C.char) C.FfiResult {
	a, err := goString("address", addr)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.PublicStorageGetJSON(bridge.Handle(ps), a))
}

//export pubky_public_storage_exists
func pubky_public_storage_exists(ps C.pubky_public_storage_t, addr *C.char) C.FfiResult {
	a, err := goString("address", addr)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.PublicStorageExists(bridge.Handle(ps), a))
}

//export pubky_public_storage_list
func pubky_public_storage_list(ps C.pubky_public_storage_t, addr *C.char, limit C.uint16_t) C.FfiResult {
	a, err := goString("address", addr)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.PublicStorageList(bridge.Handle(ps), a, uint16(limit)))
}

//export pubky_public_storage_free
func pubky_public_storage_free(ps C.pubky_public_storage_t) {
	bridge.PublicStorageFree(bridge.Handle(ps))
}
