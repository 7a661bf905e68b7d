//go:build cgo

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const codeInvalid = -1

// requireFailure checks the error side of an envelope.
func requireFailure(t *testing.T, v cView, code int32) {
	t.Helper()
	assert.Equal(t, code, v.code)
	assert.True(t, v.hasError, "error must be set")
	assert.NotEmpty(t, v.errorText)
	assert.False(t, v.hasData, "data must be NULL on failure")
}

func TestNullArgumentsAreInvalidInput(t *testing.T) {
	path := cString("/pub/app/x")
	defer pubky_string_free(path)
	url := cString("http://127.0.0.1:1/")
	defer pubky_string_free(url)
	get := cString("GET")
	defer pubky_string_free(get)

	tests := []struct {
		name string
		call func() cView
	}{
		{"resolve address", func() cView { return takeResult(pubky_resolve_address(nil)) }},
		{"get text path", func() cView { return takeResult(pubky_session_storage_get_text(0, nil)) }},
		{"get bytes path", func() cView { return takeBytes(pubky_session_storage_get_bytes(0, nil)) }},
		{"put text body", func() cView { return takeResult(pubky_session_storage_put_text(0, path, nil)) }},
		{"put json body", func() cView { return takeResult(pubky_session_storage_put_json(0, path, nil)) }},
		{"put bytes body", func() cView { return takeResult(pubky_session_storage_put_bytes(0, path, nil, cSize(4))) }},
		{"public exists", func() cView { return takeResult(pubky_public_storage_exists(0, nil)) }},
		{"recovery passphrase", func() cView { return takeBytes(pubky_keypair_create_recovery_file(0, nil)) }},
		{"http method", func() cView { return takeResult(pubky_http_client_request(0, nil, url, nil, nil)) }},
		{"http url", func() cView { return takeBytes(pubky_http_client_request_bytes(0, get, nil, nil, 0, nil)) }},
		{"http full url", func() cView { return takeHTTP(pubky_http_client_request_full(0, get, nil, nil, nil)) }},
		{"signup out", func() cView { return takeResult(pubky_signer_signup_with_result(0, 0, nil, nil)) }},
		{"signin out", func() cView { return takeResult(pubky_signer_signin_with_result(0, nil)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireFailure(t, tt.call(), codeInvalid)
		})
	}

	assert.Zero(t, uint64(pubky_public_key_from_z32(nil)))
	assert.Zero(t, uint64(pubky_keypair_from_secret_key(nil, 0)))
}

func TestInvalidUTF8IsRejected(t *testing.T) {
	bad := cRaw([]byte{'/', 'p', 'u', 'b', '/', 0xff, 0xfe})
	defer pubky_string_free(bad)

	requireFailure(t, takeResult(pubky_session_storage_exists(0, bad)), codeInvalid)
	requireFailure(t, takeResult(pubky_public_storage_get_text(0, bad)), codeInvalid)
	requireFailure(t, takeResult(pubky_resolve_address(bad)), codeInvalid)
	requireFailure(t, takeBytes(pubky_keypair_create_recovery_file(0, bad)), codeInvalid)
	requireFailure(t, takeResult(pubky_http_client_request(0, bad, bad, nil, nil)), codeInvalid)
	assert.Zero(t, uint64(pubky_public_key_from_z32(bad)))

	v := takeResult(pubky_session_storage_exists(0, bad))
	assert.Contains(t, v.errorText, "UTF-8")
}

func TestOversizedLengthsAreRejected(t *testing.T) {
	secret, _ := cBuffer(make([]byte, 32))
	defer pubky_bytes_free(secret, 32)
	path := cString("/pub/app/x")
	defer pubky_string_free(path)
	get := cString("GET")
	defer pubky_string_free(get)
	url := cString("http://127.0.0.1:1/")
	defer pubky_string_free(url)

	// 2^32+32 would wrap to a 32-byte key if the length were truncated.
	assert.Zero(t, uint64(pubky_keypair_from_secret_key(secret, cSize(1<<32|32))))
	assert.Zero(t, uint64(pubky_keypair_from_secret_key(secret, cSize(1<<31))))

	requireFailure(t, takeResult(pubky_session_storage_put_bytes(0, path, secret, cSize(1<<32|32))), codeInvalid)
	requireFailure(t, takeBytes(pubky_http_client_request_bytes(0, get, url, secret, cSize(1<<40), nil)), codeInvalid)

	slot := keypairSlot(99)
	requireFailure(t, takeResult(pubky_keypair_from_recovery_file_with_result(secret, cSize(1<<33), path, slot)), codeInvalid)
	assert.Zero(t, uint64(*slot))
}

func TestOutParamIsClearedOnFailure(t *testing.T) {
	kp := keypairSlot(42)
	requireFailure(t, takeResult(pubky_keypair_from_recovery_file_with_result(nil, 0, nil, kp)), codeInvalid)
	assert.Zero(t, uint64(*kp))

	bad := cRaw([]byte{0xc3, 0x28})
	defer pubky_string_free(bad)
	sess := sessionSlot(7)
	requireFailure(t, takeResult(pubky_signer_signup_with_result(0, 0, bad, sess)), codeInvalid)
	assert.Zero(t, uint64(*sess))

	sess = sessionSlot(7)
	requireFailure(t, takeResult(pubky_signer_signin_with_result(0, sess)), codeInvalid)
	assert.Zero(t, uint64(*sess))

	sess = sessionSlot(7)
	requireFailure(t, takeResult(pubky_signer_signin_blocking_with_result(0, sess)), codeInvalid)
	assert.Zero(t, uint64(*sess))
}

func TestKeypairThroughCABI(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	buf, n := cBuffer(seed)
	defer pubky_bytes_free(buf, n)

	kp := pubky_keypair_from_secret_key(buf, n)
	require.NotZero(t, uint64(kp))
	defer pubky_keypair_free(kp)

	v := takeBytes(pubky_keypair_secret_key(kp))
	assert.Zero(t, v.code)
	assert.False(t, v.hasError)
	assert.Equal(t, seed, v.bytes)

	pk := pubky_keypair_public_key(kp)
	defer pubky_public_key_free(pk)
	z := takeResult(pubky_public_key_z32(pk))
	require.Zero(t, z.code)
	assert.True(t, z.hasData)
	assert.False(t, z.hasError)
	assert.Len(t, z.data, 52)

	text := cString(z.data)
	defer pubky_string_free(text)
	again := pubky_public_key_from_z32(text)
	defer pubky_public_key_free(again)
	assert.Equal(t, z.data, takeResult(pubky_public_key_z32(again)).data)

	pass := cString("hunter2")
	defer pubky_string_free(pass)
	blob := takeBytes(pubky_keypair_create_recovery_file(kp, pass))
	require.Zero(t, blob.code)
	bb, bn := cBuffer(blob.bytes)
	defer pubky_bytes_free(bb, bn)
	out := keypairSlot(0)
	r := takeResult(pubky_keypair_from_recovery_file_with_result(bb, bn, pass, out))
	require.Zero(t, r.code, r.errorText)
	assert.True(t, r.hasData)
	assert.NotZero(t, uint64(*out))
	pubky_keypair_free(*out)
}

func TestEmptyBytesResultHasNullData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen", r.Method)
	}))
	defer srv.Close()
	get := cString("get")
	defer pubky_string_free(get)
	url := cString(srv.URL)
	defer pubky_string_free(url)

	v := takeBytes(pubky_http_client_request_bytes(0, get, url, nil, 0, nil))
	assert.Zero(t, v.code, v.errorText)
	assert.False(t, v.hasData, "empty body must be a NULL buffer")
	assert.False(t, v.hasError)

	full := takeHTTP(pubky_http_client_request_full(0, get, url, nil, nil))
	require.Zero(t, full.code, full.errorText)
	assert.EqualValues(t, http.StatusOK, full.status)
	assert.True(t, full.hasData)
	assert.Empty(t, full.data)
	assert.Contains(t, full.headers, `"x-seen":"GET"`)
	assert.False(t, full.hasError)
}

func TestReleasingEmptyValuesIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		pubky_result_free(emptyResult())
		pubky_bytes_result_free(emptyBytesResult())
		pubky_http_response_free(emptyHTTPResponse())
		pubky_string_free(nil)
		pubky_bytes_free(nil, 0)
		pubky_keypair_free(0)
		pubky_public_key_free(0)
		pubky_facade_free(0)
		pubky_signer_free(0)
		pubky_session_free(0)
		pubky_session_storage_free(0)
		pubky_public_storage_free(0)
		pubky_http_client_free(0)
	})
}

func TestRuntimeExports(t *testing.T) {
	v := takeResult(pubky_version())
	assert.Zero(t, v.code)
	assert.NotEmpty(t, v.data)
	assert.False(t, v.hasError)

	m := takeResult(pubky_metrics())
	assert.Zero(t, m.code)
	assert.Contains(t, m.data, "pubky_ffi_")
}
