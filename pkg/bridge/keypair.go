package bridge

import (
	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

// KeypairRandom returns a new random keypair, or null on entropy failure.
func KeypairRandom() Handle {
	kp, err := local("keypair_random", keys.RandomKeypair)
	if err != nil {
		return 0
	}
	return handles.put(KindKeypair, kp)
}

// KeypairFromSecretKey imports a 32-byte seed. Any other length yields null.
func KeypairFromSecretKey(secret []byte) Handle {
	kp, err := local("keypair_from_secret_key", func() (*keys.Keypair, error) {
		if len(secret) != keys.SecretKeySize {
			return nil, invalidf("secret key must be %d bytes, got %d", keys.SecretKeySize, len(secret))
		}
		return keys.KeypairFromSecretKey(secret)
	})
	if err != nil {
		return 0
	}
	return handles.put(KindKeypair, kp)
}

// KeypairSecretKey copies the seed out. The caller must zeroize and free it.
func KeypairSecretKey(h Handle) BytesResult {
	return bytesResult(local("keypair_secret_key", func() ([]byte, error) {
		kp, err := lookup[keys.Keypair](h, KindKeypair)
		if err != nil {
			return nil, err
		}
		return kp.SecretKey(), nil
	}))
}

// KeypairPublicKey returns a new PublicKey handle, or null.
func KeypairPublicKey(h Handle) Handle {
	kp, err := lookup[keys.Keypair](h, KindKeypair)
	if err != nil {
		return 0
	}
	pk := kp.PublicKey()
	return handles.put(KindPublicKey, &pk)
}

// KeypairCreateRecoveryFile encrypts the keypair under passphrase.
func KeypairCreateRecoveryFile(h Handle, passphrase string) BytesResult {
	return bytesResult(local("keypair_create_recovery_file", func() ([]byte, error) {
		kp, err := lookup[keys.Keypair](h, KindKeypair)
		if err != nil {
			return nil, err
		}
		return keys.CreateRecoveryFile(kp, passphrase)
	}))
}

// KeypairFromRecoveryFile decrypts a recovery file, or returns null.
func KeypairFromRecoveryFile(blob []byte, passphrase string) Handle {
	h, _ := KeypairFromRecoveryFileWithResult(blob, passphrase)
	return h
}

// KeypairFromRecoveryFileWithResult is KeypairFromRecoveryFile reporting why
// decryption failed.
func KeypairFromRecoveryFileWithResult(blob []byte, passphrase string) (Handle, Result) {
	kp, err := local("keypair_from_recovery_file", func() (*keys.Keypair, error) {
		if len(blob) == 0 {
			return nil, invalidf("recovery file is empty")
		}
		return keys.DecryptRecoveryFile(blob, passphrase)
	})
	if err != nil {
		return 0, textResult("", err)
	}
	return handles.put(KindKeypair, kp), okText("")
}

// KeypairFree releases a keypair handle.
func KeypairFree(h Handle) { handles.release(h, KindKeypair) }
