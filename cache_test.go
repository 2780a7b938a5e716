package mipgen

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintStableAndDistinct(t *testing.T) {
	pix := []byte{1, 2, 3, 4}

	a := ComputeFingerprint(pix, 2, 2, TargetBC4R)
	b := ComputeFingerprint([]byte{1, 2, 3, 4}, 2, 2, TargetBC4R)
	require.Equal(t, a, b, "identical inputs must share a fingerprint")

	require.NotEqual(t, a, ComputeFingerprint(pix, 4, 1, TargetBC4R), "dimensions are part of the key")
	require.NotEqual(t, a, ComputeFingerprint(pix, 2, 2, TargetBC5RG), "target is part of the key")
	require.NotEqual(t, a, ComputeFingerprint([]byte{1, 2, 3, 5}, 2, 2, TargetBC4R), "pixels are part of the key")

	require.Len(t, a.String(), 16)
}

func TestCacheDisabled(t *testing.T) {
	cache, err := OpenCache("")
	require.NoError(t, err)
	require.False(t, cache.Enabled())

	key := ComputeFingerprint([]byte{1}, 1, 1, TargetBC4R)
	_, ok := cache.Lookup(key)
	require.False(t, ok)
	require.NoError(t, cache.Store(key, []byte{9, 9}))

	_, ok = cache.Lookup(key)
	require.False(t, ok, "store into a disabled cache must stay a no-op")
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	require.True(t, cache.Enabled())

	key := ComputeFingerprint([]byte{5, 6, 7}, 3, 1, TargetBC4R)
	_, ok := cache.Lookup(key)
	require.False(t, ok, "empty cache must miss")

	payload := []byte{0xde, 0xad, 0xbe, 0xef, 0x01}
	require.NoError(t, cache.Store(key, payload))

	got, ok := cache.Lookup(key)
	require.True(t, ok)
	require.Equal(t, payload, got, "cache must round-trip bytes exactly")

	// One file per key, named by the hex fingerprint.
	_, err = os.Stat(filepath.Join(cache.root, key.String()))
	require.NoError(t, err)
}

func TestCacheStoreIdempotentAndConflicting(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)

	key := ComputeFingerprint([]byte{1, 2}, 2, 1, TargetBC5RG)
	payload := bytes.Repeat([]byte{7}, 64)

	require.NoError(t, cache.Store(key, payload))
	require.NoError(t, cache.Store(key, payload), "same key, same bytes is a no-op")

	err = cache.Store(key, bytes.Repeat([]byte{8}, 64))
	require.ErrorIs(t, err, ErrCacheKeyConflict, "same key, different bytes indicates a hashing bug")
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(dir)
	require.NoError(t, err)

	key := ComputeFingerprint([]byte{3, 3}, 1, 2, TargetBC4R)

	for _, garbage := range [][]byte{
		{},
		{0x01, 0x02},
		[]byte("JUNKsome unknown framing"),
		[]byte("LZ4 \xff\xff"),
		[]byte("LZ4 \x10\x00\x00\x00not-actually-lz4"),
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, key.String()), garbage, 0o644))
		_, ok := cache.Lookup(key)
		require.False(t, ok, "corrupt entry %q must read as a miss", garbage)
	}

	// A corrupt entry is repaired by the next store.
	payload := []byte{1, 2, 3, 4, 5, 6}
	require.NoError(t, cache.Store(key, payload))
	got, ok := cache.Lookup(key)
	require.True(t, ok)
	require.Equal(t, payload, got)
}

func TestCacheEntryFraming(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(dir)
	require.NoError(t, err)

	small := ComputeFingerprint([]byte{1}, 1, 1, TargetBC4R)
	require.NoError(t, cache.Store(small, []byte{1, 2, 3, 4}))
	raw, err := os.ReadFile(filepath.Join(dir, small.String()))
	require.NoError(t, err)
	require.Equal(t, entryMagicCOPY, string(raw[:4]), "small payloads stay uncompressed")

	big := ComputeFingerprint([]byte{2}, 1, 1, TargetBC4R)
	payload := bytes.Repeat([]byte{0xaa, 0xbb, 0xcc, 0xdd}, 1024)
	require.NoError(t, cache.Store(big, payload))
	raw, err = os.ReadFile(filepath.Join(dir, big.String()))
	require.NoError(t, err)
	require.Equal(t, entryMagicLZ4, string(raw[:4]), "repetitive payloads compress")
	require.Less(t, len(raw), len(payload))

	got, ok := cache.Lookup(big)
	require.True(t, ok)
	require.Equal(t, payload, got)
}
