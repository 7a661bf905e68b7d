package keys

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretKeyRoundTrip(t *testing.T) {
	for i := 0; i < 16; i++ {
		seed := bytes.Repeat([]byte{byte(i * 7)}, SecretKeySize)
		seed[0] = byte(i)
		kp, err := KeypairFromSecretKey(seed)
		require.NoError(t, err)
		assert.Equal(t, seed, kp.SecretKey())
	}
}

func TestSecretKeyIsCopied(t *testing.T) {
	kp, err := RandomKeypair()
	require.NoError(t, err)
	sk := kp.SecretKey()
	sk[0] ^= 0xff
	assert.NotEqual(t, sk, kp.SecretKey())
}

func TestKeypairFromSecretKeyWrongLength(t *testing.T) {
	for _, n := range []int{0, 1, 31, 33, 64} {
		_, err := KeypairFromSecretKey(make([]byte, n))
		assert.ErrorIs(t, err, ErrInvalidSecretKey, "len %d", n)
	}
}

func TestPublicKeyZ32RoundTrip(t *testing.T) {
	for i := 0; i < 32; i++ {
		kp, err := RandomKeypair()
		require.NoError(t, err)
		text := kp.PublicKey().String()
		require.Len(t, text, Z32Size)

		parsed, err := ParsePublicKey(text)
		require.NoError(t, err)
		assert.Equal(t, kp.PublicKey(), parsed)
		assert.Equal(t, text, parsed.String())
	}
}

func TestParsePublicKeyRejectsMalformed(t *testing.T) {
	kp, err := RandomKeypair()
	require.NoError(t, err)
	good := kp.PublicKey().String()

	cases := map[string]string{
		"empty":         "",
		"short":         good[:51],
		"long":          good + "y",
		"bad alphabet":  "0" + good[1:],
		"uppercase":     strings.ToUpper(good),
		"prefixed":      "pubky" + good,
		"trailing bits": good[:51] + "9",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if in == good {
				t.Skip("mutation produced the canonical key")
			}
			_, err := ParsePublicKey(in)
			assert.ErrorIs(t, err, ErrInvalidPublicKey)
		})
	}
}

func TestParsePublicKeyLoose(t *testing.T) {
	kp, err := RandomKeypair()
	require.NoError(t, err)
	pk := kp.PublicKey()

	got, err := ParsePublicKeyLoose("pubky" + pk.String())
	require.NoError(t, err)
	assert.Equal(t, pk, got)
	assert.True(t, IsPubkyPrefixed("pubky"+pk.String()))
	assert.False(t, IsPubkyPrefixed(pk.String()))
}

func TestSignVerify(t *testing.T) {
	kp, err := RandomKeypair()
	require.NoError(t, err)
	msg := []byte("hello pubky")
	sig := kp.Sign(msg)
	assert.True(t, kp.PublicKey().Verify(msg, sig))
	assert.False(t, kp.PublicKey().Verify([]byte("other"), sig))
	assert.False(t, kp.PublicKey().Verify(msg, sig[:10]))
}

func TestKeypairStringHidesSecret(t *testing.T) {
	kp, err := RandomKeypair()
	require.NoError(t, err)
	assert.Equal(t, "Keypair("+kp.PublicKey().String()+")", kp.String())
}

func TestRecoveryFileRoundTrip(t *testing.T) {
	kp, err := RandomKeypair()
	require.NoError(t, err)

	blob, err := CreateRecoveryFile(kp, "correct horse")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(blob, []byte("pubky.org/recovery\n")))

	restored, err := DecryptRecoveryFile(blob, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey().String(), restored.PublicKey().String())
	assert.True(t, kp.Equal(restored))
}

func TestRecoveryFileWrongPassphrase(t *testing.T) {
	kp, err := RandomKeypair()
	require.NoError(t, err)
	blob, err := CreateRecoveryFile(kp, "right")
	require.NoError(t, err)

	restored, err := DecryptRecoveryFile(blob, "wrong")
	assert.Nil(t, restored)
	assert.ErrorIs(t, err, ErrRecoveryFileDecrypt)
}

func TestRecoveryFileCorrupt(t *testing.T) {
	kp, err := RandomKeypair()
	require.NoError(t, err)
	blob, err := CreateRecoveryFile(kp, "pass")
	require.NoError(t, err)

	tampered := append([]byte(nil), blob...)
	tampered[len(tampered)-1] ^= 0x01
	_, err = DecryptRecoveryFile(tampered, "pass")
	assert.ErrorIs(t, err, ErrRecoveryFileDecrypt)

	for name, in := range map[string][]byte{
		"no header":     []byte("garbage"),
		"wrong header":  []byte("example.org/recovery\nxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"),
		"empty payload": []byte("pubky.org/recovery\n"),
		"short payload": []byte("pubky.org/recovery\nabc"),
	} {
		_, err := DecryptRecoveryFile(in, "pass")
		assert.True(t, errors.Is(err, ErrRecoveryFileFormat), "%s: %v", name, err)
	}
}

func TestRecoveryFileLegacyHeader(t *testing.T) {
	kp, err := RandomKeypair()
	require.NoError(t, err)
	blob, err := CreateRecoveryFile(kp, "pass")
	require.NoError(t, err)

	legacy := append([]byte(recoveryLegacyLine), blob[len(recoverySpecLine):]...)
	restored, err := DecryptRecoveryFile(legacy, "pass")
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey(), restored.PublicKey())
}
