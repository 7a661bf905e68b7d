package pubky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/logging"
)

// Signer turns a keypair into sessions on a homeserver.
type Signer struct {
	pubky   *Pubky
	keypair *keys.Keypair
}

func (s *Signer) PublicKey() keys.PublicKey { return s.keypair.PublicKey() }

func (s *Signer) Keypair() *keys.Keypair { return s.keypair }

// Signup registers the identity on homeserver and publishes the homeserver
// record. token may be empty when the homeserver does not require one.
func (s *Signer) Signup(ctx context.Context, homeserver keys.PublicKey, token string) (*Session, error) {
	const op = "signup"
	u := "https://" + homeserver.String() + "/signup"
	if token != "" {
		u += "?signup_token=" + url.QueryEscape(token)
	}
	log := s.pubky.logger.With("op", op, "pubky", s.PublicKey().String(), "homeserver", homeserver.String())
	if token != "" {
		log = log.With(logging.Redacted("signup_token"))
	}

	sess, err := s.openSession(ctx, op, u, s.PublicKey())
	if err != nil {
		log.Warn(ctx, "signup failed", "error", err)
		return nil, err
	}
	if err := s.pubky.publishHomeserver(ctx, s.keypair, homeserver, true); err != nil {
		log.Warn(ctx, "publishing homeserver record failed", "error", err)
		return nil, err
	}
	log.Debug(ctx, "signed up")
	return sess, nil
}

// Signin opens a session on the homeserver the identity already publishes.
// A stale record is refreshed in the background.
func (s *Signer) Signin(ctx context.Context) (*Session, error) {
	sess, hs, err := s.signin(ctx, "signin")
	if err != nil {
		return nil, err
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), s.pubky.publishTimeout)
		defer cancel()
		if err := s.pubky.publishHomeserver(pctx, s.keypair, hs, false); err != nil {
			s.pubky.logger.Warn(pctx, "background republish failed", "pubky", s.PublicKey().String(), "error", err)
		}
	}()
	return sess, nil
}

// SigninBlocking is Signin that waits until the homeserver record has been
// republished. The wait is bounded by the facade publish timeout.
func (s *Signer) SigninBlocking(ctx context.Context) (*Session, error) {
	sess, hs, err := s.signin(ctx, "signin_blocking")
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, s.pubky.publishTimeout)
	defer cancel()
	if err := s.pubky.publishHomeserver(pctx, s.keypair, hs, true); err != nil {
		if pctx.Err() != nil {
			return nil, &Error{Kind: KindRequest, Op: "signin_blocking", Err: fmt.Errorf("waiting for record propagation: %w", pctx.Err())}
		}
		return nil, err
	}
	return sess, nil
}

func (s *Signer) signin(ctx context.Context, op string) (*Session, keys.PublicKey, error) {
	user := s.PublicKey()
	hs, ok, err := s.pubky.HomeserverOf(ctx, user)
	if err != nil {
		return nil, keys.PublicKey{}, &Error{Kind: KindPkarr, Op: op, Err: err}
	}
	if !ok {
		return nil, keys.PublicKey{}, &Error{Kind: KindPkarr, Op: op, Err: fmt.Errorf("no homeserver published for %s", user)}
	}
	sess, err := s.openSession(ctx, op, "https://"+pubkyHostLabel+user.String()+"/session", user)
	if err != nil {
		return nil, keys.PublicKey{}, err
	}
	return sess, hs, nil
}

// openSession posts a root auth token to u and builds the session from the
// response body and cookie.
func (s *Signer) openSession(ctx context.Context, op, u string, user keys.PublicKey) (*Session, error) {
	token := SignAuthToken(s.keypair, Capabilities{RootCapability}, time.Now())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(token))
	if err != nil {
		return nil, &Error{Kind: KindBuild, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := s.pubky.http.Do(req)
	if err != nil {
		return nil, wrap(op, KindRequest, err)
	}
	if err := checkResponse(op, resp); err != nil {
		if isNotFound(err) {
			return nil, &Error{Kind: KindAuthentication, Op: op, Err: fmt.Errorf("%s is not registered: %v", user, err)}
		}
		return nil, err
	}
	defer resp.Body.Close()

	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == user.String() {
			cookie = c.Value
		}
	}
	if cookie == "" {
		return nil, &Error{Kind: KindAuthentication, Op: op, Err: ErrNoCookie}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Op: op, Err: err}
	}
	var info SessionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, &Error{Kind: KindParse, Op: op, Err: fmt.Errorf("session response: %w", err)}
	}
	if info.PublicKey != user {
		return nil, &Error{Kind: KindAuthentication, Op: op, Err: fmt.Errorf("session issued for %s, expected %s", info.PublicKey, user)}
	}
	return newSession(s.pubky, info, cookie), nil
}
