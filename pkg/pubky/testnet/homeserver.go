package testnet

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/pubky/pubky-ffi-go/pkg/pubky"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

const (
	defaultMaxBody   = 10 << 20
	defaultListLimit = 100
	maxListLimit     = 1000
	maxTokenSize     = 4 << 10
)

type object struct {
	data        []byte
	contentType string
	etag        string
	modified    time.Time
}

// Homeserver is a minimal in-memory homeserver.
type Homeserver struct {
	keypair      *keys.Keypair
	maxBody      int64
	requireToken bool

	mu       sync.Mutex
	users    map[keys.PublicKey]bool
	tokens   map[string]bool
	sessions map[string]pubky.SessionInfo
	objects  map[keys.PublicKey]map[string]object
}

func newHomeserver(kp *keys.Keypair, maxBody int64, requireToken bool) *Homeserver {
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	return &Homeserver{
		keypair:      kp,
		maxBody:      maxBody,
		requireToken: requireToken,
		users:        make(map[keys.PublicKey]bool),
		tokens:       make(map[string]bool),
		sessions:     make(map[string]pubky.SessionInfo),
		objects:      make(map[keys.PublicKey]map[string]object),
	}
}

func (h *Homeserver) PublicKey() keys.PublicKey { return h.keypair.PublicKey() }

// GenerateSignupToken mints a single-use signup token.
func (h *Homeserver) GenerateSignupToken() string {
	tok := strings.ToUpper(uuid.NewString())
	h.mu.Lock()
	h.tokens[tok] = true
	h.mu.Unlock()
	return tok
}

// ExpireSessions drops every open session, as a restarted homeserver would.
func (h *Homeserver) ExpireSessions() {
	h.mu.Lock()
	h.sessions = make(map[string]pubky.SessionInfo)
	h.mu.Unlock()
}

func (h *Homeserver) routes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/session", h.signin)
	r.Get("/session", h.getSession)
	r.Delete("/session", h.signout)
	r.Put("/pub/*", h.put)
	r.Delete("/pub/*", h.delete)
	r.Get("/pub/*", h.get)
	r.Head("/pub/*", h.get)
}

func (h *Homeserver) signup(w http.ResponseWriter, r *http.Request) {
	tok, ok := h.readToken(w, r)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.requireToken {
		st := r.URL.Query().Get("signup_token")
		if !h.tokens[st] {
			http.Error(w, "invalid signup token", http.StatusUnauthorized)
			return
		}
		delete(h.tokens, st)
	}
	if h.users[tok.PublicKey] {
		http.Error(w, "user already exists", http.StatusConflict)
		return
	}
	h.users[tok.PublicKey] = true
	h.openSessionLocked(w, tok)
}

func (h *Homeserver) signin(w http.ResponseWriter, r *http.Request) {
	tok, ok := h.readToken(w, r)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.users[tok.PublicKey] {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}
	h.openSessionLocked(w, tok)
}

func (h *Homeserver) readToken(w http.ResponseWriter, r *http.Request) (pubky.AuthToken, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxTokenSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return pubky.AuthToken{}, false
	}
	tok, err := pubky.VerifyAuthToken(body, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return pubky.AuthToken{}, false
	}
	return tok, true
}

func (h *Homeserver) openSessionLocked(w http.ResponseWriter, tok pubky.AuthToken) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	secret := base64.RawURLEncoding.EncodeToString(raw[:])
	info := pubky.SessionInfo{PublicKey: tok.PublicKey, Capabilities: tok.Capabilities, CreatedAt: time.Now().UTC()}
	h.sessions[secret] = info
	http.SetCookie(w, &http.Cookie{Name: tok.PublicKey.String(), Value: secret, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, info)
}

// owner reads the pubky-host header.
func owner(r *http.Request) (keys.PublicKey, error) {
	v := r.Header.Get(pubky.PubkyHostHeader)
	if v == "" {
		return keys.PublicKey{}, errors.New("missing pubky-host header")
	}
	return keys.ParsePublicKey(v)
}

// authenticate returns the session secret and info for the request owner.
func (h *Homeserver) authenticateLocked(r *http.Request) (string, pubky.SessionInfo, bool) {
	pk, err := owner(r)
	if err != nil {
		return "", pubky.SessionInfo{}, false
	}
	c, err := r.Cookie(pk.String())
	if err != nil {
		return "", pubky.SessionInfo{}, false
	}
	info, ok := h.sessions[c.Value]
	if !ok || info.PublicKey != pk {
		return "", pubky.SessionInfo{}, false
	}
	return c.Value, info, true
}

func (h *Homeserver) getSession(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	_, info, ok := h.authenticateLocked(r)
	h.mu.Unlock()
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Homeserver) signout(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	secret, _, ok := h.authenticateLocked(r)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	delete(h.sessions, secret)
	w.WriteHeader(http.StatusOK)
}

func (h *Homeserver) authorizeWrite(w http.ResponseWriter, r *http.Request) (keys.PublicKey, bool) {
	_, info, ok := h.authenticateLocked(r)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return keys.PublicKey{}, false
	}
	if !info.Capabilities.Allows(r.URL.Path, true) {
		http.Error(w, "capability missing for "+r.URL.Path, http.StatusForbidden)
		return keys.PublicKey{}, false
	}
	return info.PublicKey, true
}

func (h *Homeserver) put(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/") {
		http.Error(w, "cannot write a directory", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sum, err := multihash.Sum(body, multihash.SHA2_256, -1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	obj := object{
		data:        body,
		contentType: r.Header.Get("Content-Type"),
		etag:        cid.NewCidV1(cid.Raw, sum).String(),
		modified:    time.Now().UTC(),
	}
	if obj.contentType == "" {
		obj.contentType = "application/octet-stream"
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	pk, ok := h.authorizeWrite(w, r)
	if !ok {
		return
	}
	if h.objects[pk] == nil {
		h.objects[pk] = make(map[string]object)
	}
	h.objects[pk][r.URL.Path] = obj
	w.Header().Set("ETag", `"`+obj.etag+`"`)
	w.WriteHeader(http.StatusCreated)
}

func (h *Homeserver) delete(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	pk, ok := h.authorizeWrite(w, r)
	if !ok {
		return
	}
	if _, ok := h.objects[pk][r.URL.Path]; !ok {
		http.NotFound(w, r)
		return
	}
	delete(h.objects[pk], r.URL.Path)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Homeserver) get(w http.ResponseWriter, r *http.Request) {
	pk, err := owner(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.HasSuffix(r.URL.Path, "/") {
		h.list(w, r, pk)
		return
	}
	h.mu.Lock()
	obj, ok := h.objects[pk][r.URL.Path]
	h.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	hdr := w.Header()
	hdr.Set("Content-Type", obj.contentType)
	hdr.Set("Content-Length", strconv.Itoa(len(obj.data)))
	hdr.Set("ETag", `"`+obj.etag+`"`)
	hdr.Set("Last-Modified", obj.modified.Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(obj.data)
	}
}

func (h *Homeserver) list(w http.ResponseWriter, r *http.Request, pk keys.PublicKey) {
	q := r.URL.Query()
	limit := defaultListLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		if n > 0 {
			limit = min(n, maxListLimit)
		}
	}
	dir := r.URL.Path
	reverse := q.Get("reverse") == "true"
	shallow := q.Get("shallow") == "true"
	cursor := q.Get("cursor")
	if cursor != "" {
		cursor = strings.TrimPrefix(cursor, "pubky://"+pk.String())
		if !strings.HasPrefix(cursor, "/") {
			cursor = dir + cursor
		}
	}

	h.mu.Lock()
	seen := map[string]bool{}
	var paths []string
	for p := range h.objects[pk] {
		if !strings.HasPrefix(p, dir) {
			continue
		}
		if shallow {
			if i := strings.IndexByte(p[len(dir):], '/'); i >= 0 {
				p = p[:len(dir)+i+1]
			}
		}
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	h.mu.Unlock()

	sort.Strings(paths)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	}
	var sb strings.Builder
	n := 0
	for _, p := range paths {
		if cursor != "" && (!reverse && p <= cursor || reverse && p >= cursor) {
			continue
		}
		if n == limit {
			break
		}
		sb.WriteString("pubky://" + pk.String() + p + "\n")
		n++
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if r.Method != http.MethodHead {
		_, _ = io.WriteString(w, sb.String())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
