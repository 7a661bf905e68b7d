package bridge

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleKindTag(t *testing.T) {
	r := newRegistry()
	v := new(int)
	h := r.put(KindSession, v)
	assert.Equal(t, KindSession, h.Kind())
	assert.False(t, h.IsNull())

	got, err := r.get(h)
	require.NoError(t, err)
	assert.Same(t, v, got)
	assert.Equal(t, 1, r.count(KindSession))
}

func TestReleaseIsIdempotent(t *testing.T) {
	r := newRegistry()
	h := r.put(KindKeypair, new(int))

	assert.False(t, r.release(0, KindKeypair))
	assert.False(t, r.release(h, KindSession), "wrong kind must not release")
	assert.True(t, r.release(h, KindKeypair))
	assert.False(t, r.release(h, KindKeypair))

	_, err := r.get(h)
	assert.ErrorIs(t, err, ErrStaleHandle)
	assert.NotErrorIs(t, err, ErrUsedAfterFree)
}

func TestDebugTombstones(t *testing.T) {
	r := newRegistry()
	r.setDebug(true)
	h := r.put(KindKeypair, new(int))
	r.release(h, KindKeypair)

	_, err := r.get(h)
	assert.ErrorIs(t, err, ErrUsedAfterFree)
	assert.Contains(t, err.Error(), "used after release")
}

func TestNullHandle(t *testing.T) {
	_, err := handles.get(0)
	assert.ErrorIs(t, err, ErrNullHandle)

	r := PublicKeyZ32(0)
	assert.Equal(t, CodeInvalidInput, r.Code())
	checkText(t, r)

	KeypairFree(0)
	SessionFree(0)
	FacadeFree(0)
	HTTPClientFree(0)
}

func TestLookupWrongKind(t *testing.T) {
	kp := KeypairRandom()
	require.False(t, kp.IsNull())
	defer KeypairFree(kp)

	r := PublicKeyZ32(kp)
	assert.Equal(t, CodeInvalidInput, r.Code())
	assert.Contains(t, r.Error(), "wrong kind")

	// Freeing through the wrong family leaves the handle live.
	PublicKeyFree(kp)
	assert.True(t, KeypairSecretKey(kp).OK())
}

func TestHandlesAreUnique(t *testing.T) {
	r := newRegistry()
	const n = 64
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[Handle]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := r.put(KindPublicKey, new(int))
			mu.Lock()
			seen[h] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}
