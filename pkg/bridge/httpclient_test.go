package bridge

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Echo", r.Header.Get("X-Custom"))
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPRequest(t *testing.T) {
	srv := echoServer(t)
	client := HTTPClientNew()
	require.False(t, client.IsNull())
	defer HTTPClientFree(client)

	r := HTTPRequest(client, "post", srv.URL, "payload", `{"X-Custom":"v","X-Num":1}`)
	require.True(t, r.OK(), r.Error())
	assert.Equal(t, "payload", r.Data())

	// A null client uses the global one; non-2xx is not an error.
	r = HTTPRequest(0, "GET", srv.URL+"/missing", "", "")
	assert.True(t, r.OK(), r.Error())
}

func TestHTTPRequestBytes(t *testing.T) {
	srv := echoServer(t)
	r := HTTPRequestBytes(0, "PUT", srv.URL, []byte{0, 1, 2}, "")
	require.True(t, r.OK(), r.Error())
	assert.Equal(t, []byte{0, 1, 2}, r.Data())
}

func TestHTTPRequestFull(t *testing.T) {
	srv := echoServer(t)
	client := HTTPClientTestnet()
	defer HTTPClientFree(client)

	r := HTTPRequestFull(client, "Patch", srv.URL+"/missing", "b", `{"X-Custom":"hdr"}`)
	require.True(t, r.OK(), r.Error())
	assert.EqualValues(t, http.StatusNotFound, r.Status())
	assert.Equal(t, "b", r.Body())
	assert.Equal(t, "PATCH", gjson.Get(r.Headers(), "x-method").String())
	assert.Equal(t, "hdr", gjson.Get(r.Headers(), "x-echo").String())
}

func TestHTTPRequestInvalid(t *testing.T) {
	srv := echoServer(t)
	assert.Equal(t, CodeInvalidInput, HTTPRequest(0, "TRACE", srv.URL, "", "").Code())
	assert.Equal(t, CodeInvalidInput, HTTPRequest(0, "", srv.URL, "", "").Code())
	assert.Equal(t, CodeInvalidInput, HTTPRequest(0, "GET", "", "", "").Code())
	assert.Equal(t, CodeInvalidInput, HTTPRequestFull(KeypairRandom(), "GET", srv.URL, "", "").Code())

	released := HTTPClientNew()
	HTTPClientFree(released)
	assert.Equal(t, CodeInvalidInput, HTTPRequestBytes(released, "GET", srv.URL, nil, "").Code())
}

func TestHTTPTransportError(t *testing.T) {
	srv := echoServer(t)
	url := srv.URL
	srv.Close()
	r := HTTPRequest(0, "GET", url, "", "")
	assert.Equal(t, CodeRequest, r.Code())
	checkText(t, r)
}
