package pubky

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

// ListOptions controls directory listings. A zero Limit lets the
// homeserver apply its default cap.
type ListOptions struct {
	Limit   int
	Cursor  string
	Reverse bool
	Shallow bool
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Cursor != "" {
		q.Set("cursor", o.Cursor)
	}
	if o.Reverse {
		q.Set("reverse", "true")
	}
	if o.Shallow {
		q.Set("shallow", "true")
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Entry is the metadata of a stored object.
type Entry struct {
	Address      Address
	ETag         string
	ContentType  string
	Size         int64
	LastModified time.Time
}

type sendFunc func(ctx context.Context, op, method, path string, body []byte, contentType string) (*http.Response, error)

// SessionStorage reads and writes the session owner's data. Paths are
// absolute below /pub/.
type SessionStorage struct {
	session *Session
}

func (st *SessionStorage) send(ctx context.Context, op, method, path string, body []byte, contentType string) (*http.Response, error) {
	if err := st.session.checkActive(op); err != nil {
		return nil, err
	}
	return st.session.send(ctx, op, method, path, body, contentType)
}

func (st *SessionStorage) GetBytes(ctx context.Context, path string) ([]byte, error) {
	return getBytes(ctx, st.send, "get_bytes", path)
}

func (st *SessionStorage) GetText(ctx context.Context, path string) (string, error) {
	b, err := getBytes(ctx, st.send, "get_text", path)
	return string(b), err
}

func (st *SessionStorage) GetJSON(ctx context.Context, path string) (json.RawMessage, error) {
	return getJSON(ctx, st.send, "get_json", path)
}

func (st *SessionStorage) Exists(ctx context.Context, path string) (bool, error) {
	return exists(ctx, st.send, "exists", path, st.session.PublicKey())
}

func (st *SessionStorage) Stat(ctx context.Context, path string) (Entry, error) {
	return stat(ctx, st.send, "stat", path, st.session.PublicKey())
}

func (st *SessionStorage) List(ctx context.Context, dir string, opts ListOptions) ([]string, error) {
	return list(ctx, st.send, "list", dir, opts)
}

func (st *SessionStorage) PutBytes(ctx context.Context, path string, body []byte) error {
	return put(ctx, st.send, "put_bytes", path, body, "application/octet-stream")
}

func (st *SessionStorage) PutText(ctx context.Context, path, text string) error {
	return put(ctx, st.send, "put_text", path, []byte(text), "text/plain; charset=utf-8")
}

// PutJSON stores the JSON encoding of v.
func (st *SessionStorage) PutJSON(ctx context.Context, path string, v any) error {
	const op = "put_json"
	body, err := json.Marshal(v)
	if err != nil {
		return &Error{Kind: KindRequest, Op: op, Err: fmt.Errorf("serialize: %w", err)}
	}
	return put(ctx, st.send, op, path, body, "application/json")
}

// Delete removes path. Deleting an absent object succeeds.
func (st *SessionStorage) Delete(ctx context.Context, path string) error {
	const op = "delete"
	p, err := normalizePath(path)
	if err != nil {
		return newError(KindParse, op, err)
	}
	resp, err := st.send(ctx, op, http.MethodDelete, p, nil, "")
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return drain(resp)
}

// PublicStorage reads any user's public data by address.
type PublicStorage struct {
	pubky *Pubky
}

func (ps *PublicStorage) sender(addr string) (sendFunc, Address, error) {
	a, err := ParseAddress(addr)
	if err != nil {
		return nil, Address{}, newError(KindParse, "address", err)
	}
	owner := a.Owner.String()
	send := func(ctx context.Context, op, method, path string, body []byte, contentType string) (*http.Response, error) {
		req, err := newRequest(ctx, method, "https://"+pubkyHostLabel+owner+path, body, contentType)
		if err != nil {
			return nil, &Error{Kind: KindBuild, Op: op, Err: err}
		}
		resp, err := ps.pubky.http.Do(req)
		if err != nil {
			return nil, wrap(op, KindRequest, err)
		}
		if err := checkResponse(op, resp); err != nil {
			return nil, err
		}
		return resp, nil
	}
	return send, a, nil
}

func (ps *PublicStorage) GetBytes(ctx context.Context, addr string) ([]byte, error) {
	send, a, err := ps.sender(addr)
	if err != nil {
		return nil, err
	}
	return getBytes(ctx, send, "public_get_bytes", a.Path)
}

func (ps *PublicStorage) GetText(ctx context.Context, addr string) (string, error) {
	send, a, err := ps.sender(addr)
	if err != nil {
		return "", err
	}
	b, err := getBytes(ctx, send, "public_get_text", a.Path)
	return string(b), err
}

func (ps *PublicStorage) GetJSON(ctx context.Context, addr string) (json.RawMessage, error) {
	send, a, err := ps.sender(addr)
	if err != nil {
		return nil, err
	}
	return getJSON(ctx, send, "public_get_json", a.Path)
}

func (ps *PublicStorage) Exists(ctx context.Context, addr string) (bool, error) {
	send, a, err := ps.sender(addr)
	if err != nil {
		return false, err
	}
	return exists(ctx, send, "public_exists", a.Path, a.Owner)
}

func (ps *PublicStorage) Stat(ctx context.Context, addr string) (Entry, error) {
	send, a, err := ps.sender(addr)
	if err != nil {
		return Entry{}, err
	}
	return stat(ctx, send, "public_stat", a.Path, a.Owner)
}

func (ps *PublicStorage) List(ctx context.Context, addr string, opts ListOptions) ([]string, error) {
	send, a, err := ps.sender(addr)
	if err != nil {
		return nil, err
	}
	return list(ctx, send, "public_list", a.Path, opts)
}

func getBytes(ctx context.Context, send sendFunc, op, path string) ([]byte, error) {
	p, err := normalizePath(path)
	if err != nil {
		return nil, newError(KindParse, op, err)
	}
	if strings.HasSuffix(p, "/") {
		return nil, newError(KindParse, op, fmt.Errorf("%w: %q is a directory", ErrInvalidPath, p))
	}
	resp, err := send(ctx, op, http.MethodGet, p, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Op: op, Err: err}
	}
	return b, nil
}

func getJSON(ctx context.Context, send sendFunc, op, path string) (json.RawMessage, error) {
	b, err := getBytes(ctx, send, op, path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(b) {
		return nil, &Error{Kind: KindParse, Op: op, Err: fmt.Errorf("%s does not hold JSON", path)}
	}
	return json.RawMessage(b), nil
}

func exists(ctx context.Context, send sendFunc, op, path string, owner keys.PublicKey) (bool, error) {
	_, err := stat(ctx, send, op, path, owner)
	if isNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func stat(ctx context.Context, send sendFunc, op, path string, owner keys.PublicKey) (Entry, error) {
	p, err := normalizePath(path)
	if err != nil {
		return Entry{}, newError(KindParse, op, err)
	}
	resp, err := send(ctx, op, http.MethodHead, p, nil, "")
	if err != nil {
		return Entry{}, err
	}
	defer resp.Body.Close()
	e := Entry{
		Address:     Address{Owner: owner, Path: p},
		ETag:        strings.Trim(resp.Header.Get("ETag"), `"`),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			e.LastModified = t
		}
	}
	return e, nil
}

// list returns the pubky:// URLs below dir.
func list(ctx context.Context, send sendFunc, op, dir string, opts ListOptions) ([]string, error) {
	p, err := normalizePath(dir)
	if err != nil {
		return nil, newError(KindParse, op, err)
	}
	if !strings.HasSuffix(p, "/") {
		return nil, newError(KindParse, op, fmt.Errorf("%w: directory %q must end with /", ErrInvalidPath, p))
	}
	if opts.Limit < 0 {
		return nil, newError(KindParse, op, fmt.Errorf("negative limit %d", opts.Limit))
	}
	resp, err := send(ctx, op, http.MethodGet, p+opts.query(), nil, "")
	if isNotFound(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Op: op, Err: err}
	}
	out := []string{}
	for _, line := range strings.Split(string(body), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

func put(ctx context.Context, send sendFunc, op, path string, body []byte, contentType string) error {
	p, err := normalizePath(path)
	if err != nil {
		return newError(KindParse, op, err)
	}
	if strings.HasSuffix(p, "/") {
		return newError(KindParse, op, fmt.Errorf("%w: cannot write directory %q", ErrInvalidPath, p))
	}
	resp, err := send(ctx, op, http.MethodPut, p, body, contentType)
	if err != nil {
		return err
	}
	return drain(resp)
}

func newRequest(ctx context.Context, method, rawURL string, body []byte, contentType string) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, r)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func drain(resp *http.Response) error {
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
