package pubky

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

const (
	authNamespace = "PUBKY:AUTH"
	authVersion   = 0

	// TokenWindow is how far a token timestamp may drift from the verifier clock.
	TokenWindow = 45 * time.Second
)

var (
	ErrTokenFormat  = errors.New("pubky: malformed auth token")
	ErrTokenExpired = errors.New("pubky: auth token outside the accepted window")
	ErrTokenSig     = errors.New("pubky: auth token signature invalid")
)

const tokenHeader = ed25519.SignatureSize + len(authNamespace) + 1 + 8 + keys.PublicKeySize

// AuthToken proves control of PublicKey and requests Capabilities.
type AuthToken struct {
	PublicKey    keys.PublicKey
	Capabilities Capabilities
	Timestamp    time.Time
}

// SignAuthToken encodes sig || namespace || version || ts || pubkey || caps.
func SignAuthToken(kp *keys.Keypair, caps Capabilities, now time.Time) []byte {
	body := make([]byte, 0, tokenHeader)
	body = append(body, authNamespace...)
	body = append(body, authVersion)
	body = binary.BigEndian.AppendUint64(body, uint64(now.UnixMicro()))
	pk := kp.PublicKey()
	body = append(body, pk[:]...)
	body = append(body, caps.String()...)

	out := make([]byte, 0, ed25519.SignatureSize+len(body))
	out = append(out, kp.Sign(body)...)
	return append(out, body...)
}

// VerifyAuthToken checks format, signature and timestamp window.
func VerifyAuthToken(b []byte, now time.Time) (AuthToken, error) {
	var tok AuthToken
	if len(b) < tokenHeader {
		return tok, fmt.Errorf("%w: %d bytes", ErrTokenFormat, len(b))
	}
	sig, body := b[:ed25519.SignatureSize], b[ed25519.SignatureSize:]
	if string(body[:len(authNamespace)]) != authNamespace {
		return tok, fmt.Errorf("%w: bad namespace", ErrTokenFormat)
	}
	rest := body[len(authNamespace):]
	if rest[0] != authVersion {
		return tok, fmt.Errorf("%w: unsupported version %d", ErrTokenFormat, rest[0])
	}
	tok.Timestamp = time.UnixMicro(int64(binary.BigEndian.Uint64(rest[1:9])))
	pk, err := keys.PublicKeyFromBytes(rest[9 : 9+keys.PublicKeySize])
	if err != nil {
		return tok, fmt.Errorf("%w: %v", ErrTokenFormat, err)
	}
	tok.PublicKey = pk
	if tok.Capabilities, err = ParseCapabilities(string(rest[9+keys.PublicKeySize:])); err != nil {
		return tok, fmt.Errorf("%w: %v", ErrTokenFormat, err)
	}
	if !pk.Verify(body, sig) {
		return tok, ErrTokenSig
	}
	if d := now.Sub(tok.Timestamp); d > TokenWindow || d < -TokenWindow {
		return tok, fmt.Errorf("%w: drift %s", ErrTokenExpired, d)
	}
	return tok, nil
}
