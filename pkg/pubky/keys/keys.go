package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const (
	// SecretKeySize is the length of a raw Ed25519 seed.
	SecretKeySize = ed25519.SeedSize
	// PublicKeySize is the length of a raw Ed25519 public key.
	PublicKeySize = ed25519.PublicKeySize
	// Z32Size is the length of the canonical textual form of a PublicKey.
	Z32Size = 52

	pubkyPrefix = "pubky"
)

var (
	ErrInvalidSecretKey = errors.New("keys: secret key must be exactly 32 bytes")
	ErrInvalidPublicKey = errors.New("keys: malformed public key")
	ErrKeyGeneration    = errors.New("keys: key generation failed")
)

// z-base32 shares the RFC 4648 bit layout and only differs in its alphabet.
var z32 = base32.NewEncoding("ybndrfg8ejkmcpqxot1uwisza345h769").WithPadding(base32.NoPadding)

// PublicKey identifies a pubky user or homeserver.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes the canonical z-base32 form. Only input that
// re-encodes to itself is accepted, so String always returns the parsed text.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	if len(s) != Z32Size {
		return pk, fmt.Errorf("%w: expected %d characters, got %d", ErrInvalidPublicKey, Z32Size, len(s))
	}
	raw, err := z32.DecodeString(s)
	if err != nil {
		return pk, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != PublicKeySize {
		return pk, fmt.Errorf("%w: decoded %d bytes", ErrInvalidPublicKey, len(raw))
	}
	copy(pk[:], raw)
	if pk.String() != s {
		return PublicKey{}, fmt.Errorf("%w: non-canonical encoding", ErrInvalidPublicKey)
	}
	return pk, nil
}

// ParsePublicKeyLoose accepts the canonical form with an optional "pubky" prefix.
func ParsePublicKeyLoose(s string) (PublicKey, error) {
	if len(s) == Z32Size+len(pubkyPrefix) && strings.HasPrefix(s, pubkyPrefix) {
		s = s[len(pubkyPrefix):]
	}
	return ParsePublicKey(s)
}

// IsPubkyPrefixed reports whether s is a "pubky"-prefixed public key.
func IsPubkyPrefixed(s string) bool {
	if len(s) != Z32Size+len(pubkyPrefix) || !strings.HasPrefix(s, pubkyPrefix) {
		return false
	}
	_, err := ParsePublicKey(s[len(pubkyPrefix):])
	return err == nil
}

// PublicKeyFromBytes copies a raw 32-byte key.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeySize {
		return pk, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, PublicKeySize, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

func (pk PublicKey) String() string { return z32.EncodeToString(pk[:]) }

// Bytes returns a copy of the raw key.
func (pk PublicKey) Bytes() []byte {
	out := make([]byte, PublicKeySize)
	copy(out, pk[:])
	return out
}

func (pk PublicKey) IsZero() bool { return pk == PublicKey{} }

// Verify checks an Ed25519 signature made by this key.
func (pk PublicKey) Verify(msg, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pk[:]), msg, sig)
}

func (pk PublicKey) MarshalText() ([]byte, error) { return []byte(pk.String()), nil }

func (pk *PublicKey) UnmarshalText(b []byte) error {
	parsed, err := ParsePublicKey(string(b))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// Keypair holds an Ed25519 private key.
type Keypair struct {
	priv ed25519.PrivateKey
	pub  PublicKey
}

// RandomKeypair generates a fresh keypair from crypto/rand.
func RandomKeypair() (*Keypair, error) {
	seed := make([]byte, SecretKeySize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	defer zeroize(seed)
	return KeypairFromSecretKey(seed)
}

// KeypairFromSecretKey rebuilds a keypair from its 32-byte seed.
func KeypairFromSecretKey(secret []byte) (*Keypair, error) {
	if len(secret) != SecretKeySize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSecretKey, len(secret))
	}
	priv := ed25519.NewKeyFromSeed(secret)
	kp := &Keypair{priv: priv}
	copy(kp.pub[:], priv.Public().(ed25519.PublicKey))
	return kp, nil
}

// SecretKey returns a copy of the 32-byte seed.
func (kp *Keypair) SecretKey() []byte {
	out := make([]byte, SecretKeySize)
	copy(out, kp.priv.Seed())
	return out
}

func (kp *Keypair) PublicKey() PublicKey { return kp.pub }

func (kp *Keypair) Sign(msg []byte) []byte { return ed25519.Sign(kp.priv, msg) }

// Equal compares two keypairs in constant time.
func (kp *Keypair) Equal(other *Keypair) bool {
	if kp == nil || other == nil {
		return kp == other
	}
	return subtle.ConstantTimeCompare(kp.priv, other.priv) == 1
}

// String never prints secret material.
func (kp *Keypair) String() string { return "Keypair(" + kp.pub.String() + ")" }

func zeroize(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}
