package keys

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	recoverySpecName   = "recovery"
	recoverySpecLine   = "pubky.org/recovery"
	recoveryLegacyLine = "pkarr.org/recovery"

	nonceSize = 24
	keySize   = 32
)

// Argon2id parameters of the recovery file KDF.
const (
	argonTime    = 2
	argonMemory  = 19 * 1024
	argonThreads = 1
)

var (
	// ErrRecoveryFileFormat reports a blob that is not a recovery file.
	ErrRecoveryFileFormat = errors.New("keys: unsupported or corrupt recovery file")
	// ErrRecoveryFileDecrypt reports a wrong passphrase or a tampered payload.
	ErrRecoveryFileDecrypt = errors.New("keys: recovery file decryption failed")
	// ErrRecoveryFileEncrypt reports a failure to produce a recovery file.
	ErrRecoveryFileEncrypt = errors.New("keys: recovery file encryption failed")
)

// CreateRecoveryFile encrypts the keypair seed under a passphrase-derived key.
//
// Layout: "pubky.org/recovery\n" || nonce(24) || secretbox(seed).
func CreateRecoveryFile(kp *Keypair, passphrase string) ([]byte, error) {
	if kp == nil {
		return nil, fmt.Errorf("%w: nil keypair", ErrRecoveryFileEncrypt)
	}
	key := recoveryKey(passphrase)
	defer zeroize(key[:])

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", ErrRecoveryFileEncrypt, err)
	}

	seed := kp.SecretKey()
	defer zeroize(seed)

	out := make([]byte, 0, len(recoverySpecLine)+1+nonceSize+len(seed)+secretbox.Overhead)
	out = append(out, recoverySpecLine...)
	out = append(out, '\n')
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, seed, &nonce, &key), nil
}

// DecryptRecoveryFile reverses CreateRecoveryFile. A wrong passphrase never
// yields a keypair: secretbox authentication fails first.
func DecryptRecoveryFile(blob []byte, passphrase string) (*Keypair, error) {
	nl := bytes.IndexByte(blob, '\n')
	if nl < 0 {
		return nil, fmt.Errorf("%w: missing header line", ErrRecoveryFileFormat)
	}
	header := blob[:nl]
	if !bytes.HasPrefix(header, []byte(recoverySpecLine)) && !bytes.HasPrefix(header, []byte(recoveryLegacyLine)) {
		return nil, fmt.Errorf("%w: unknown header %q", ErrRecoveryFileFormat, header)
	}
	payload := blob[nl+1:]
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: missing encrypted secret key", ErrRecoveryFileFormat)
	}
	if len(payload) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: payload too short (%d bytes)", ErrRecoveryFileFormat, len(payload))
	}

	var nonce [nonceSize]byte
	copy(nonce[:], payload[:nonceSize])
	key := recoveryKey(passphrase)
	defer zeroize(key[:])

	seed, ok := secretbox.Open(nil, payload[nonceSize:], &nonce, &key)
	if !ok {
		return nil, ErrRecoveryFileDecrypt
	}
	defer zeroize(seed)
	if len(seed) != SecretKeySize {
		return nil, fmt.Errorf("%w: secret key has %d bytes", ErrRecoveryFileFormat, len(seed))
	}
	return KeypairFromSecretKey(seed)
}

func recoveryKey(passphrase string) [keySize]byte {
	salt := sha256.Sum256([]byte(recoverySpecName))
	var key [keySize]byte
	derived := argon2.IDKey([]byte(passphrase), salt[:], argonTime, argonMemory, argonThreads, keySize)
	copy(key[:], derived)
	zeroize(derived)
	return key
}
