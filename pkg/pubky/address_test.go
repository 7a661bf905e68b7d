package pubky

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

func randomKey(t *testing.T) *keys.Keypair {
	t.Helper()
	kp, err := keys.RandomKeypair()
	require.NoError(t, err)
	return kp
}

func TestParseAddressForms(t *testing.T) {
	pk := randomKey(t).PublicKey()
	z := pk.String()
	for _, in := range []string{
		"pubky://" + z + "/pub/app/file.txt",
		"pubky" + z + "/pub/app/file.txt",
		z + "/pub/app/file.txt",
	} {
		a, err := ParseAddress(in)
		require.NoError(t, err, in)
		assert.Equal(t, pk, a.Owner)
		assert.Equal(t, "/pub/app/file.txt", a.Path)
		assert.Equal(t, "pubky://"+z+"/pub/app/file.txt", a.String())
		assert.Equal(t, "https://_pubky."+z+"/pub/app/file.txt", a.TransportURL())
	}
}

func TestParseAddressRejects(t *testing.T) {
	z := randomKey(t).PublicKey().String()
	for _, in := range []string{
		"",
		"not-a-key/pub/x",
		z,
		z + "/private/x",
		z + "/pub//x",
		z + "/pub/../x",
		z + "/pub/a\x00b",
		z + "/pub/app/file?x=1",
		z + "/pub/app/b#frag",
		z + "/pub/app/%2e%2e",
	} {
		_, err := ParseAddress(in)
		assert.ErrorIs(t, err, ErrInvalidPath, in)
	}
}

func TestResolveAddressKind(t *testing.T) {
	_, err := ResolveAddress("garbage")
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindParse, kind)
}

func TestNormalizePath(t *testing.T) {
	p, err := normalizePath("pub/app/")
	require.NoError(t, err)
	assert.Equal(t, "/pub/app/", p)

	for _, bad := range []string{"/pub/app/file?x=1", "/pub/app/b#frag", "/pub/a%20b", "/pub/dir?/"} {
		_, err := normalizePath(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestCapabilities(t *testing.T) {
	caps, err := ParseCapabilities("/pub/app/:rw, /pub/other.txt:r")
	require.NoError(t, err)
	assert.Equal(t, "/pub/app/:rw,/pub/other.txt:r", caps.String())

	assert.True(t, caps.Allows("/pub/app/x/y", true))
	assert.True(t, caps.Allows("/pub/other.txt", false))
	assert.False(t, caps.Allows("/pub/other.txt", true))
	assert.False(t, caps.Allows("/pub/elsewhere", false))

	for _, bad := range []string{"/pub", "pub/:rw", "/pub/:", "/pub/:rx"} {
		_, err := ParseCapability(bad)
		assert.Error(t, err, bad)
	}
	none, err := ParseCapabilities("")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Equal(t, "/:rw", RootCapability.String())
}

func TestAuthToken(t *testing.T) {
	kp := randomKey(t)
	now := time.Now()
	tok := SignAuthToken(kp, Capabilities{RootCapability}, now)

	got, err := VerifyAuthToken(tok, now.Add(10*time.Second))
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey(), got.PublicKey)
	assert.Equal(t, "/:rw", got.Capabilities.String())

	_, err = VerifyAuthToken(tok, now.Add(2*TokenWindow))
	assert.ErrorIs(t, err, ErrTokenExpired)

	tampered := append([]byte(nil), tok...)
	tampered[len(tampered)-1] = 'r'
	_, err = VerifyAuthToken(tampered, now)
	assert.ErrorIs(t, err, ErrTokenSig)

	_, err = VerifyAuthToken(tok[:20], now)
	assert.ErrorIs(t, err, ErrTokenFormat)
}

func TestClassifyHost(t *testing.T) {
	pk := randomKey(t).PublicKey()
	kind, got := classifyHost(pk.String())
	assert.Equal(t, hostPubky, kind)
	assert.Equal(t, pk, got)

	kind, got = classifyHost("_pubky." + pk.String())
	assert.Equal(t, hostPubky, kind)
	assert.Equal(t, pk, got)

	kind, _ = classifyHost("pubky" + pk.String())
	assert.Equal(t, hostPrefixed, kind)

	kind, _ = classifyHost("example.com")
	assert.Equal(t, hostPlain, kind)
}

func TestKindOf(t *testing.T) {
	cases := map[error]Kind{
		keys.ErrRecoveryFileDecrypt: KindAuthentication,
		keys.ErrRecoveryFileFormat:  KindParse,
		keys.ErrInvalidPublicKey:    KindParse,
		ErrSignedOut:                KindAuthentication,
		&Error{Kind: KindBuild}:     KindBuild,
	}
	for err, want := range cases {
		got, ok := KindOf(err)
		assert.True(t, ok, err.Error())
		assert.Equal(t, want, got, err.Error())
	}
	_, ok := KindOf(ErrNotFound)
	assert.False(t, ok)
}
