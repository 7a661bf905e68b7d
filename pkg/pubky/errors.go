package pubky

import (
	"context"
	"errors"
	"fmt"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
	"github.com/pubky/pubky-ffi-go/pkg/pubky/pkarr"
)

// Kind classifies SDK failures. The numeric values are stable.
type Kind int

const (
	KindRequest Kind = iota + 1
	KindPkarr
	KindParse
	KindAuthentication
	KindBuild
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindPkarr:
		return "pkarr"
	case KindParse:
		return "parse"
	case KindAuthentication:
		return "authentication"
	case KindBuild:
		return "build"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	// ErrNotFound reports an absent object or record. It carries no Kind:
	// absence is not a failure.
	ErrNotFound = errors.New("pubky: not found")

	ErrSignedOut   = errors.New("pubky: session signed out")
	ErrInvalidated = errors.New("pubky: session invalidated")
	ErrInvalidPath = errors.New("pubky: invalid path")
	ErrNoCookie    = errors.New("pubky: homeserver returned no session cookie")
)

// Error is returned by every fallible SDK operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) error {
	var perr *Error
	if errors.As(err, &perr) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// wrap classifies err with KindOf, falling back to def.
func wrap(op string, def Kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	kind, ok := KindOf(err)
	if !ok {
		kind = def
	}
	return newError(kind, op, err)
}

// KindOf reports the Kind of err. It understands *Error as well as the
// sentinels of the keys and pkarr packages.
func KindOf(err error) (Kind, bool) {
	var perr *Error
	switch {
	case err == nil:
		return 0, false
	case errors.As(err, &perr):
		return perr.Kind, true
	case errors.Is(err, keys.ErrRecoveryFileDecrypt),
		errors.Is(err, ErrSignedOut),
		errors.Is(err, ErrInvalidated):
		return KindAuthentication, true
	case errors.Is(err, keys.ErrInvalidPublicKey),
		errors.Is(err, keys.ErrRecoveryFileFormat),
		errors.Is(err, keys.ErrInvalidSecretKey),
		errors.Is(err, pkarr.ErrInvalidPacket),
		errors.Is(err, ErrInvalidPath):
		return KindParse, true
	case errors.Is(err, keys.ErrRecoveryFileEncrypt),
		errors.Is(err, keys.ErrKeyGeneration),
		errors.Is(err, pkarr.ErrPacketTooLarge):
		return KindBuild, true
	case errors.Is(err, pkarr.ErrNotFound),
		errors.Is(err, pkarr.ErrInvalidSig),
		errors.Is(err, pkarr.ErrStalePacket),
		errors.Is(err, pkarr.ErrRelay):
		return KindPkarr, true
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindRequest, true
	}
	return 0, false
}
