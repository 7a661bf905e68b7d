package bridge

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pubky/pubky-ffi-go/pkg/pubky"
)

func TestKeypairSecretKeyRoundTrip(t *testing.T) {
	secret := bytes.Repeat([]byte{0x42}, 32)
	kp := KeypairFromSecretKey(secret)
	require.False(t, kp.IsNull())
	defer KeypairFree(kp)

	r := KeypairSecretKey(kp)
	require.True(t, r.OK(), r.Error())
	assert.Equal(t, secret, r.Data())
}

func TestKeypairFromSecretKeyWrongLength(t *testing.T) {
	for _, n := range []int{0, 31, 33} {
		assert.True(t, KeypairFromSecretKey(make([]byte, n)).IsNull(), "len %d", n)
	}
}

func TestPublicKeyZ32Idempotent(t *testing.T) {
	kp := KeypairRandom()
	defer KeypairFree(kp)
	pk := KeypairPublicKey(kp)
	defer PublicKeyFree(pk)

	z := PublicKeyZ32(pk)
	require.True(t, z.OK())
	parsed := PublicKeyFromZ32(z.Data())
	require.False(t, parsed.IsNull())
	defer PublicKeyFree(parsed)
	assert.Equal(t, z.Data(), PublicKeyZ32(parsed).Data())

	raw := PublicKeyBytes(parsed)
	require.True(t, raw.OK())
	assert.Equal(t, 32, raw.Len())

	for _, bad := range []string{"", "abc", z.Data() + "y", "0" + z.Data()[1:]} {
		assert.True(t, PublicKeyFromZ32(bad).IsNull(), bad)
	}
}

func TestRecoveryFile(t *testing.T) {
	kp := KeypairRandom()
	defer KeypairFree(kp)
	pk := KeypairPublicKey(kp)
	defer PublicKeyFree(pk)

	blob := KeypairCreateRecoveryFile(kp, "hunter2")
	require.True(t, blob.OK(), blob.Error())

	restored := KeypairFromRecoveryFile(blob.Data(), "hunter2")
	require.False(t, restored.IsNull())
	defer KeypairFree(restored)
	rpk := KeypairPublicKey(restored)
	defer PublicKeyFree(rpk)
	assert.Equal(t, PublicKeyZ32(pk).Data(), PublicKeyZ32(rpk).Data())

	h, r := KeypairFromRecoveryFileWithResult(blob.Data(), "wrong")
	assert.True(t, h.IsNull())
	assert.Equal(t, CodeAuthentication, r.Code())
	checkText(t, r)

	h, r = KeypairFromRecoveryFileWithResult([]byte("not a recovery file\n"), "hunter2")
	assert.True(t, h.IsNull())
	assert.Equal(t, CodeParse, r.Code())

	_, r = KeypairFromRecoveryFileWithResult(nil, "hunter2")
	assert.Equal(t, CodeInvalidInput, r.Code())

	assert.Equal(t, CodeInvalidInput, KeypairCreateRecoveryFile(0, "x").Code())
}

func TestConcurrentKeypairRandom(t *testing.T) {
	const n = 32
	var wg sync.WaitGroup
	out := make([]Handle, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = KeypairRandom()
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, kp := range out {
		require.False(t, kp.IsNull())
		pk := KeypairPublicKey(kp)
		seen[PublicKeyZ32(pk).Data()] = true
		PublicKeyFree(pk)
		KeypairFree(kp)
	}
	assert.Len(t, seen, n)

	stateMu.Lock()
	defer stateMu.Unlock()
	assert.Equal(t, 1, inits)
}

func TestVersionAndMetrics(t *testing.T) {
	assert.NotEmpty(t, Version().Data())

	kp := KeypairRandom()
	KeypairFree(kp)
	m := Metrics()
	require.True(t, m.OK(), m.Error())
	assert.Contains(t, m.Data(), "pubky_ffi_calls_total")
	assert.Contains(t, m.Data(), `op="keypair_random"`)
	assert.Contains(t, m.Data(), "pubky_ffi_live_handles")
}

func TestInitIsIdempotent(t *testing.T) {
	assert.Zero(t, Init())
	assert.Zero(t, Init())
	assert.Zero(t, InitTestnet())

	a, b := FacadeNew(), FacadeNew()
	require.False(t, a.IsNull())
	assert.NotEqual(t, a, b)
	pa, err := lookup[pubky.Pubky](a, KindFacade)
	require.NoError(t, err)
	pb, err := lookup[pubky.Pubky](b, KindFacade)
	require.NoError(t, err)
	assert.Same(t, pa, pb)
	FacadeFree(a)
	FacadeFree(b)
}
