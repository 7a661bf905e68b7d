//go:build cgo

package main

/*
#include "pubky_ffi.h"
*/
import "C"

import "github.com/pubky/pubky-ffi-go/pkg/bridge"

//export pubky_http_client_new
func pubky_http_client_new() C.pubky_http_client_t {
	return C.pubky_http_client_t(bridge.HTTPClientNew())
}

//export pubky_http_client_testnet
func pubky_http_client_testnet() C.pubky_http_client_t {
	return C.pubky_http_client_t(bridge.HTTPClientTestnet())
}

//export pubky_http_client_free
func pubky_http_client_free(c C.pubky_http_client_t) { bridge.HTTPClientFree(bridge.Handle(c)) }

// request holds the converted string arguments of an HTTP call.
type request struct {
	method, url, headers string
}

func httpArgs(method, url, headers *C.char) (request, error) {
	var (
		r   request
		err error
	)
	if r.method, err = goString("method", method); err != nil {
		return r, err
	}
	if r.url, err = goString("url", url); err != nil {
		return r, err
	}
	r.headers, err = optString("headers", headers)
	return r, err
}

// client may be 0. body and headers may be NULL.
//
//export pubky_http_client_request
func pubky_http_client_request(c C.pubky_http_client_t, method, url, body, headers *C.char) C.FfiResult {
	r, err := httpArgs(method, url, headers)
	if err != nil {
		return invalid(err)
	}
	b, err := optString("body", body)
	if err != nil {
		return invalid(err)
	}
	return cResult(bridge.HTTPRequest(bridge.Handle(c), r.method, r.url, b, r.headers))
}

//export pubky_http_client_request_bytes
func pubky_http_client_request_bytes(c C.pubky_http_client_t, method, url *C.char, body *C.uint8_t, n C.size_t, headers *C.char) C.FfiBytesResult {
	r, err := httpArgs(method, url, headers)
	if err != nil {
		return invalidBytes(err)
	}
	b, err := goBytes("body", body, n)
	if err != nil {
		return invalidBytes(err)
	}
	return cBytesResult(bridge.HTTPRequestBytes(bridge.Handle(c), r.method, r.url, b, r.headers))
}

//export pubky_http_client_request_full
func pubky_http_client_request_full(c C.pubky_http_client_t, method, url, body, headers *C.char) C.FfiHttpResponse {
	r, err := httpArgs(method, url, headers)
	if err != nil {
		return invalidHTTP(err)
	}
	b, err := optString("body", body)
	if err != nil {
		return invalidHTTP(err)
	}
	return cHTTPResponse(bridge.HTTPRequestFull(bridge.Handle(c), r.method, r.url, b, r.headers))
}
