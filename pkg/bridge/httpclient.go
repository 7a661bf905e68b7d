package bridge

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// httpClient is the object behind a KindHTTPClient handle. Every handle
// shares the process-wide plain client.
type httpClient struct {
	testnet bool
}

var (
	plainOnce sync.Once
	plain     *http.Client
)

// plainHTTP is the synchronous client used for generic requests. It does
// not route pubky hosts.
func plainHTTP() *http.Client {
	plainOnce.Do(func() {
		plain = &http.Client{Timeout: runtimeState().cfg.HTTPTimeout}
	})
	return plain
}

var allowedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodPatch:   true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// HTTPClientNew returns a handle to the plain HTTP client.
func HTTPClientNew() Handle {
	plainHTTP()
	return handles.put(KindHTTPClient, &httpClient{})
}

// HTTPClientTestnet is HTTPClientNew for clients used against a local testnet.
func HTTPClientTestnet() Handle {
	plainHTTP()
	return handles.put(KindHTTPClient, &httpClient{testnet: true})
}

// HTTPClientFree releases a client handle.
func HTTPClientFree(h Handle) { handles.release(h, KindHTTPClient) }

// HTTPRequest sends a request and returns the body as text. Non-2xx
// statuses are not errors. headers is an optional JSON object; only string
// values are applied.
func HTTPRequest(client Handle, method, url, body, headers string) Result {
	return textResult(local("http_request", func() (string, error) {
		resp, err := doPlain(client, method, url, textBody(body), headers)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		return string(b), transportErr(err)
	}))
}

// HTTPRequestBytes is HTTPRequest with a binary body and result.
func HTTPRequestBytes(client Handle, method, url string, body []byte, headers string) BytesResult {
	return bytesResult(local("http_request_bytes", func() ([]byte, error) {
		resp, err := doPlain(client, method, url, body, headers)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		return b, transportErr(err)
	}))
}

// HTTPRequestFull returns status, body and headers as a JSON object.
// Repeated headers are joined with ", ".
func HTTPRequestFull(client Handle, method, url, body, headers string) HTTPResponse {
	type full struct {
		status  int
		body    string
		headers string
	}
	out, err := local("http_request_full", func() (full, error) {
		resp, err := doPlain(client, method, url, textBody(body), headers)
		if err != nil {
			return full{}, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return full{}, transportErr(err)
		}
		return full{status: resp.StatusCode, body: string(b), headers: headersJSON(resp.Header)}, nil
	})
	if err != nil {
		return failHTTP(codeOf(err), err.Error())
	}
	return okHTTP(out.status, out.body, out.headers)
}

func doPlain(client Handle, method, url string, body []byte, headers string) (*http.Response, error) {
	testnet := false
	if !client.IsNull() {
		c, err := lookup[httpClient](client, KindHTTPClient)
		if err != nil {
			return nil, err
		}
		testnet = c.testnet
	}
	m := strings.ToUpper(strings.TrimSpace(method))
	if m == "" {
		return nil, invalidf("method is empty")
	}
	if !allowedMethods[m] {
		return nil, invalidf("unsupported HTTP method: %s", method)
	}
	if url == "" {
		return nil, invalidf("url is empty")
	}
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(m, url, r)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	applyHeaders(req, headers)
	runtimeState().logger.Debug(req.Context(), "plain http request", "method", m, "host", req.URL.Host, "testnet", testnet)
	resp, err := plainHTTP().Do(req)
	if err != nil {
		return nil, transportErr(err)
	}
	return resp, nil
}

// applyHeaders sets the string members of a JSON object. Anything else is
// ignored.
func applyHeaders(req *http.Request, headers string) {
	if headers == "" || !gjson.Valid(headers) {
		return
	}
	obj := gjson.Parse(headers)
	if !obj.IsObject() {
		return
	}
	obj.ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.String {
			req.Header.Set(k.String(), v.String())
		}
		return true
	})
}

// headersJSON encodes response headers with lowercased names.
func headersJSON(h http.Header) string {
	m := make(map[string]string, len(h))
	for name, vals := range h {
		m[strings.ToLower(name)] = strings.Join(vals, ", ")
	}
	b, _ := json.Marshal(m)
	return string(b)
}

func textBody(s string) []byte {
	if s == "" {
		return nil
	}
	return []byte(s)
}
