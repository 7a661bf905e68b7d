//go:build cgo

package main

/*
#include <stdlib.h>
#include "pubky_ffi.h"
*/
import "C"

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
	"unsafe"

	"github.com/pubky/pubky-ffi-go/pkg/bridge"
)

func cResult(r bridge.Result) C.FfiResult {
	var out C.FfiResult
	out.code = C.int32_t(r.Code())
	if r.OK() {
		out.data = C.CString(r.Data())
	} else {
		out.error = C.CString(r.Error())
	}
	return out
}

func cBytesResult(r bridge.BytesResult) C.FfiBytesResult {
	var out C.FfiBytesResult
	out.code = C.int32_t(r.Code())
	if !r.OK() {
		out.error = C.CString(r.Error())
		return out
	}
	if r.Len() > 0 {
		out.data = (*C.uint8_t)(C.CBytes(r.Data()))
		out.len = C.size_t(r.Len())
	}
	return out
}

func cHTTPResponse(r bridge.HTTPResponse) C.FfiHttpResponse {
	var out C.FfiHttpResponse
	out.code = C.int32_t(r.Code())
	if !r.OK() {
		out.error = C.CString(r.Error())
		return out
	}
	out.status = C.uint16_t(r.Status())
	out.body = C.CString(r.Body())
	out.headers = C.CString(r.Headers())
	return out
}

var errNullOut = errors.New("out is null")

func invalid(err error) C.FfiResult { return cResult(bridge.InvalidText(err.Error())) }

func invalidBytes(err error) C.FfiBytesResult { return cBytesResult(bridge.InvalidBytes(err.Error())) }

func invalidHTTP(err error) C.FfiHttpResponse { return cHTTPResponse(bridge.InvalidHTTP(err.Error())) }

// goString copies a required C string, which must be valid UTF-8.
func goString(name string, p *C.char) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%s is null", name)
	}
	return optString(name, p)
}

// optString is goString that maps NULL to "".
func optString(name string, p *C.char) (string, error) {
	if p == nil {
		return "", nil
	}
	s := C.GoString(p)
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%s is not valid UTF-8", name)
	}
	return s, nil
}

// goBytes copies n bytes at p. NULL is accepted only with n == 0, and n
// must fit the length C.GoBytes takes.
func goBytes(name string, p *C.uint8_t, n C.size_t) ([]byte, error) {
	if uint64(n) > math.MaxInt32 {
		return nil, fmt.Errorf("%s is too large (%d bytes)", name, uint64(n))
	}
	if p == nil {
		if n != 0 {
			return nil, fmt.Errorf("%s is null", name)
		}
		return nil, nil
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(n)), nil
}

func freeString(p *C.char) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}

//export pubky_string_free
func pubky_string_free(s *C.char) { freeString(s) }

//export pubky_bytes_free
func pubky_bytes_free(data *C.uint8_t, n C.size_t) {
	if data != nil {
		C.free(unsafe.Pointer(data))
	}
}

//export pubky_result_free
func pubky_result_free(r C.FfiResult) {
	freeString(r.data)
	freeString(r.error)
}

//export pubky_bytes_result_free
func pubky_bytes_result_free(r C.FfiBytesResult) {
	pubky_bytes_free(r.data, r.len)
	freeString(r.error)
}

//export pubky_http_response_free
func pubky_http_response_free(r C.FfiHttpResponse) {
	freeString(r.body)
	freeString(r.headers)
	freeString(r.error)
}

//export pubky_init
func pubky_init() C.int32_t { return C.int32_t(bridge.Init()) }

//export pubky_init_testnet
func pubky_init_testnet() C.int32_t { return C.int32_t(bridge.InitTestnet()) }

//export pubky_version
func pubky_version() C.FfiResult { return cResult(bridge.Version()) }

//export pubky_metrics
func pubky_metrics() C.FfiResult { return cResult(bridge.Metrics()) }
