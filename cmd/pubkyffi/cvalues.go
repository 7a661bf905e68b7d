//go:build cgo

package main

/*
#include <stdlib.h>
#include "pubky_ffi.h"
*/
import "C"

import "unsafe"

// The helpers below build C arguments and read C results as Go values so
// the package tests can drive the exports without importing "C".

// cString returns a C copy of s. Release it with pubky_string_free.
func cString(s string) *C.char { return C.CString(s) }

// cRaw returns a C copy of b without validating it as text.
func cRaw(b []byte) *C.char {
	p := (*C.char)(C.malloc(C.size_t(len(b) + 1)))
	buf := unsafe.Slice((*byte)(unsafe.Pointer(p)), len(b)+1)
	copy(buf, b)
	buf[len(b)] = 0
	return p
}

// cBuffer returns a C copy of b and its length. Release it with
// pubky_bytes_free.
func cBuffer(b []byte) (*C.uint8_t, C.size_t) {
	if len(b) == 0 {
		return (*C.uint8_t)(C.malloc(1)), 0
	}
	return (*C.uint8_t)(C.CBytes(b)), C.size_t(len(b))
}

func cSize(n uint64) C.size_t { return C.size_t(n) }

func keypairSlot(v uint64) *C.pubky_keypair_t {
	p := new(C.pubky_keypair_t)
	*p = C.pubky_keypair_t(v)
	return p
}

func sessionSlot(v uint64) *C.pubky_session_t {
	p := new(C.pubky_session_t)
	*p = C.pubky_session_t(v)
	return p
}

// cView is an FfiResult, FfiBytesResult or FfiHttpResponse read into Go.
// The take functions release the C result after reading it.
type cView struct {
	code      int32
	hasData   bool
	data      string
	bytes     []byte
	hasError  bool
	errorText string
	status    uint16
	headers   string
}

func takeResult(r C.FfiResult) cView {
	defer pubky_result_free(r)
	v := cView{code: int32(r.code), hasData: r.data != nil, hasError: r.error != nil}
	if r.data != nil {
		v.data = C.GoString(r.data)
	}
	if r.error != nil {
		v.errorText = C.GoString(r.error)
	}
	return v
}

func takeBytes(r C.FfiBytesResult) cView {
	defer pubky_bytes_result_free(r)
	v := cView{code: int32(r.code), hasData: r.data != nil, hasError: r.error != nil}
	if r.data != nil {
		v.bytes = C.GoBytes(unsafe.Pointer(r.data), C.int(r.len))
	}
	if r.error != nil {
		v.errorText = C.GoString(r.error)
	}
	return v
}

func takeHTTP(r C.FfiHttpResponse) cView {
	defer pubky_http_response_free(r)
	v := cView{code: int32(r.code), status: uint16(r.status), hasData: r.body != nil, hasError: r.error != nil}
	if r.body != nil {
		v.data = C.GoString(r.body)
	}
	if r.headers != nil {
		v.headers = C.GoString(r.headers)
	}
	if r.error != nil {
		v.errorText = C.GoString(r.error)
	}
	return v
}

func emptyResult() C.FfiResult { return C.FfiResult{} }

func emptyBytesResult() C.FfiBytesResult { return C.FfiBytesResult{} }

func emptyHTTPResponse() C.FfiHttpResponse { return C.FfiHttpResponse{} }
