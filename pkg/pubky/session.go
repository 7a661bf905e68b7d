package pubky

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

// SessionState is the lifecycle of a Session.
type SessionState int

const (
	StateCreated SessionState = iota
	StateActive
	StateSignedOut
	StateInvalidated
)

func (s SessionState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StateSignedOut:
		return "signed_out"
	case StateInvalidated:
		return "invalidated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SessionInfo is the homeserver's description of a session.
type SessionInfo struct {
	PublicKey    keys.PublicKey `json:"public_key"`
	Capabilities Capabilities   `json:"capabilities"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Session is an authenticated connection to the user's homeserver.
// Only an active session performs storage requests.
type Session struct {
	pubky  *Pubky
	user   keys.PublicKey
	cookie string

	mu    sync.Mutex
	state SessionState
	info  SessionInfo
}

func newSession(p *Pubky, info SessionInfo, cookie string) *Session {
	s := &Session{pubky: p, user: info.PublicKey, info: info, state: StateCreated}
	if cookie != "" {
		s.cookie = cookie
		s.state = StateActive
	}
	return s
}

// PublicKey is fixed when the session is opened; Revalidate never changes it.
func (s *Session) PublicKey() keys.PublicKey { return s.user }

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Capabilities fails with KindAuthentication once the session is no longer active.
func (s *Session) Capabilities() (Capabilities, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activeLocked("capabilities"); err != nil {
		return nil, err
	}
	return append(Capabilities(nil), s.info.Capabilities...), nil
}

func (s *Session) Storage() *SessionStorage { return &SessionStorage{session: s} }

// Signout ends the session on the homeserver. The session is signed out
// locally even when the request fails.
func (s *Session) Signout(ctx context.Context) error {
	const op = "signout"
	s.mu.Lock()
	if err := s.activeLocked(op); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = StateSignedOut
	s.mu.Unlock()

	resp, err := s.send(ctx, op, http.MethodDelete, "/session", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Revalidate confirms the session with the homeserver and refreshes Info.
// A 401 moves the session to StateInvalidated.
func (s *Session) Revalidate(ctx context.Context) error {
	const op = "revalidate"
	if err := s.checkActive(op); err != nil {
		return err
	}
	resp, err := s.send(ctx, op, http.MethodGet, "/session", nil, "")
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) && perr.Kind == KindAuthentication {
			s.setState(StateInvalidated)
		}
		return err
	}
	defer resp.Body.Close()
	var info SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return &Error{Kind: KindParse, Op: op, Err: fmt.Errorf("session response: %w", err)}
	}
	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
	return nil
}

func (s *Session) setState(st SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) checkActive(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked(op)
}

func (s *Session) activeLocked(op string) error {
	switch s.state {
	case StateActive:
		return nil
	case StateSignedOut:
		return &Error{Kind: KindAuthentication, Op: op, Err: ErrSignedOut}
	case StateInvalidated:
		return &Error{Kind: KindAuthentication, Op: op, Err: ErrInvalidated}
	default:
		return &Error{Kind: KindAuthentication, Op: op, Err: errors.New("session not established")}
	}
}

// send issues an authenticated request for path on the user's homeserver
// and maps failure statuses to errors.
func (s *Session) send(ctx context.Context, op, method, path string, body []byte, contentType string) (*http.Response, error) {
	user := s.user.String()
	req, err := newRequest(ctx, method, "https://"+pubkyHostLabel+user+path, body, contentType)
	if err != nil {
		return nil, &Error{Kind: KindBuild, Op: op, Err: err}
	}
	req.AddCookie(&http.Cookie{Name: user, Value: s.cookie})
	resp, err := s.pubky.http.Do(req)
	if err != nil {
		return nil, wrap(op, KindRequest, err)
	}
	if err := checkResponse(op, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
