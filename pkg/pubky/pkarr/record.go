package pkarr

import (
	"context"
	"errors"
	"time"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

var (
	ErrNotFound       = errors.New("pkarr: no record published for key")
	ErrInvalidPacket  = errors.New("pkarr: invalid signed packet")
	ErrInvalidSig     = errors.New("pkarr: signature verification failed")
	ErrPacketTooLarge = errors.New("pkarr: signed packet too large")
	ErrStalePacket    = errors.New("pkarr: packet older than the stored one")
	ErrRelay          = errors.New("pkarr: relay request failed")
)

// Record is the resolved content of a signed packet. Users publish the key of
// their homeserver; homeservers publish the URL they are reachable at.
type Record struct {
	Homeserver keys.PublicKey
	Endpoint   string
	Timestamp  time.Time
}

// HasHomeserver reports whether the record names a homeserver.
func (r Record) HasHomeserver() bool { return !r.Homeserver.IsZero() }

// Resolver looks up and publishes records. Implementations are safe for
// concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, pk keys.PublicKey) (Record, error)
	Publish(ctx context.Context, kp *keys.Keypair, rec Record) error
}
