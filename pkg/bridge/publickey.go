package bridge

import (
	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

// PublicKeyFromZ32 parses the canonical text form, or returns null.
func PublicKeyFromZ32(s string) Handle {
	pk, err := local("public_key_from_z32", func() (keys.PublicKey, error) {
		return keys.ParsePublicKey(s)
	})
	if err != nil {
		return 0
	}
	return handles.put(KindPublicKey, &pk)
}

// PublicKeyZ32 returns the z-base-32 form of a public key.
func PublicKeyZ32(h Handle) Result {
	pk, err := lookup[keys.PublicKey](h, KindPublicKey)
	if err != nil {
		return textResult("", err)
	}
	return okText(pk.String())
}

// PublicKeyBytes returns the 32 raw bytes of a public key.
func PublicKeyBytes(h Handle) BytesResult {
	pk, err := lookup[keys.PublicKey](h, KindPublicKey)
	if err != nil {
		return bytesResult(nil, err)
	}
	return okBytes(pk.Bytes())
}

// PublicKeyFree releases a public key handle.
func PublicKeyFree(h Handle) { handles.release(h, KindPublicKey) }
