package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/pubky/pubky-ffi-go/pkg/pubky"
)

// Get operations return empty data when the object does not exist.

// SessionStorageGetText reads a file under the session owner as text.
func SessionStorageGetText(h Handle, path string) Result {
	st, err := sessionStorage(h, path)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("storage_get_text", func(ctx context.Context) (string, error) {
		return absentAs(st.GetText(ctx, path))
	}))
}

// SessionStorageGetBytes reads a file under the session owner.
func SessionStorageGetBytes(h Handle, path string) BytesResult {
	st, err := sessionStorage(h, path)
	if err != nil {
		return bytesResult(nil, err)
	}
	return bytesResult(blocking("storage_get_bytes", func(ctx context.Context) ([]byte, error) {
		return absentAs(st.GetBytes(ctx, path))
	}))
}

// SessionStorageGetJSON reads a file and checks that it holds JSON.
func SessionStorageGetJSON(h Handle, path string) Result {
	st, err := sessionStorage(h, path)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("storage_get_json", func(ctx context.Context) (string, error) {
		raw, err := absentAs(st.GetJSON(ctx, path))
		return string(raw), err
	}))
}

// SessionStoragePutText writes body as a text file.
func SessionStoragePutText(h Handle, path, body string) Result {
	st, err := sessionStorage(h, path)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("storage_put_text", func(ctx context.Context) (string, error) {
		return "", st.PutText(ctx, path, body)
	}))
}

// SessionStoragePutBytes stores body. An empty body is a valid object.
func SessionStoragePutBytes(h Handle, path string, body []byte) Result {
	st, err := sessionStorage(h, path)
	if err != nil {
		return textResult("", err)
	}
	if body == nil {
		body = []byte{}
	}
	return textResult(blocking("storage_put_bytes", func(ctx context.Context) (string, error) {
		return "", st.PutBytes(ctx, path, body)
	}))
}

// SessionStoragePutJSON stores body, which must be valid JSON.
func SessionStoragePutJSON(h Handle, path, body string) Result {
	st, err := sessionStorage(h, path)
	if err != nil {
		return textResult("", err)
	}
	if !json.Valid([]byte(body)) {
		return InvalidText("invalid JSON body")
	}
	return textResult(blocking("storage_put_json", func(ctx context.Context) (string, error) {
		return "", st.PutJSON(ctx, path, json.RawMessage(body))
	}))
}

// SessionStorageDelete succeeds when the object is already absent.
func SessionStorageDelete(h Handle, path string) Result {
	st, err := sessionStorage(h, path)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("storage_delete", func(ctx context.Context) (string, error) {
		return "", st.Delete(ctx, path)
	}))
}

// SessionStorageExists returns "true" or "false".
func SessionStorageExists(h Handle, path string) Result {
	st, err := sessionStorage(h, path)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("storage_exists", func(ctx context.Context) (string, error) {
		return boolText(st.Exists(ctx, path))
	}))
}

// SessionStorageList returns a JSON array of pubky:// URLs. limit 0 applies
// the homeserver default.
func SessionStorageList(h Handle, path string, limit uint16) Result {
	st, err := sessionStorage(h, path)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("storage_list", func(ctx context.Context) (string, error) {
		return jsonList(st.List(ctx, path, pubky.ListOptions{Limit: int(limit)}))
	}))
}

// SessionStorageFree releases a session storage handle.
func SessionStorageFree(h Handle) { handles.release(h, KindSessionStorage) }

// PublicStorageGetText reads a public file by pubky address as text.
func PublicStorageGetText(h Handle, addr string) Result {
	ps, err := publicStorage(h, addr)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("public_get_text", func(ctx context.Context) (string, error) {
		return absentAs(ps.GetText(ctx, addr))
	}))
}

// PublicStorageGetBytes reads a public file by pubky address.
func PublicStorageGetBytes(h Handle, addr string) BytesResult {
	ps, err := publicStorage(h, addr)
	if err != nil {
		return bytesResult(nil, err)
	}
	return bytesResult(blocking("public_get_bytes", func(ctx context.Context) ([]byte, error) {
		return absentAs(ps.GetBytes(ctx, addr))
	}))
}

// PublicStorageGetJSON reads a public file and checks that it holds JSON.
func PublicStorageGetJSON(h Handle, addr string) Result {
	ps, err := publicStorage(h, addr)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("public_get_json", func(ctx context.Context) (string, error) {
		raw, err := absentAs(ps.GetJSON(ctx, addr))
		return string(raw), err
	}))
}

// PublicStorageExists reports "true" or "false" for a public file.
func PublicStorageExists(h Handle, addr string) Result {
	ps, err := publicStorage(h, addr)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("public_exists", func(ctx context.Context) (string, error) {
		return boolText(ps.Exists(ctx, addr))
	}))
}

// PublicStorageList lists a public directory as a JSON array of entry URLs.
func PublicStorageList(h Handle, addr string, limit uint16) Result {
	ps, err := publicStorage(h, addr)
	if err != nil {
		return textResult("", err)
	}
	return textResult(blocking("public_list", func(ctx context.Context) (string, error) {
		return jsonList(ps.List(ctx, addr, pubky.ListOptions{Limit: int(limit)}))
	}))
}

// PublicStorageFree releases a public storage handle.
func PublicStorageFree(h Handle) { handles.release(h, KindPublicStorage) }

func sessionStorage(h Handle, path string) (*pubky.SessionStorage, error) {
	st, err := lookup[pubky.SessionStorage](h, KindSessionStorage)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, invalidf("path is empty")
	}
	return st, nil
}

func publicStorage(h Handle, addr string) (*pubky.PublicStorage, error) {
	ps, err := lookup[pubky.PublicStorage](h, KindPublicStorage)
	if err != nil {
		return nil, err
	}
	if addr == "" {
		return nil, invalidf("address is empty")
	}
	return ps, nil
}

// absentAs turns pubky.ErrNotFound into an empty success.
func absentAs[T any](v T, err error) (T, error) {
	if errors.Is(err, pubky.ErrNotFound) {
		var zero T
		return zero, nil
	}
	return v, err
}

func boolText(ok bool, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(ok), nil
}

func jsonList(urls []string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", &pubky.Error{Kind: pubky.KindRequest, Op: "list", Err: err}
	}
	return string(b), nil
}
