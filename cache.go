package mipgen

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/pierrec/lz4/v4"
)

// Entry files start with a 4-byte magic selecting the payload framing.
const (
	entryMagicCOPY = "COPY"
	entryMagicLZ4  = "LZ4 "

	// Payloads below this size are stored uncompressed.
	entryCompressMin = 1024
)

// Fingerprint is the content-derived cache key of one compressed level:
// a 64-bit digest over the level's pixel bytes, dimensions and target.
// Identical inputs always produce the same fingerprint.
type Fingerprint uint64

// String renders the fingerprint as the 16-char hex name of its cache file.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// ComputeFingerprint derives the cache key for compressing pix at the given
// dimensions into target.
func ComputeFingerprint(pix []byte, width, height int, target CompressionTarget) Fingerprint {
	d := xxhash.New()

	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(width))   // #nosec G115 -- dims validated upstream
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(height))  // #nosec G115
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(target)) //nolint:gosec // small enum

	_, _ = d.Write(hdr[:])
	_, _ = d.Write(pix)

	return Fingerprint(d.Sum64())
}

// Cache is a disk-backed store of compressed level payloads, one file per
// fingerprint. A Cache with an empty root is valid and always misses.
type Cache struct {
	root string
}

// OpenCache prepares the cache root directory. An empty root yields a
// disabled cache: Lookup always misses and Store is a no-op. A root that
// cannot be created is a configuration error.
func OpenCache(root string) (*Cache, error) {
	if root == "" {
		return &Cache{}, nil
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCacheRoot, root, err)
	}

	return &Cache{root: root}, nil
}

// Enabled reports whether a cache root is configured.
func (c *Cache) Enabled() bool {
	return c.root != ""
}

func (c *Cache) entryPath(key Fingerprint) string {
	return filepath.Join(c.root, key.String())
}

// Lookup returns the cached payload for key. Absence, a truncated file or
// an undecodable entry are all reported as a miss, never as an error.
func (c *Cache) Lookup(key Fingerprint) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}

	raw, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return nil, false
	}

	data, err := decodeEntry(raw)
	if err != nil {
		return nil, false
	}

	return data, true
}

// Store persists the payload for key. Keys are content-derived, so storing
// an already present key is a no-op; an existing entry that decodes to
// different bytes indicates a hashing bug and returns ErrCacheKeyConflict.
// Write failures are returned for the caller to log; they never invalidate
// the in-memory payload.
func (c *Cache) Store(key Fingerprint, data []byte) error {
	if !c.Enabled() {
		return nil
	}

	path := c.entryPath(key)
	if existing, err := os.ReadFile(path); err == nil {
		prev, decErr := decodeEntry(existing)
		if decErr == nil {
			if !bytes.Equal(prev, data) {
				return fmt.Errorf("%w: %s", ErrCacheKeyConflict, key)
			}
			return nil
		}
		// Corrupt entry on disk: fall through and rewrite it.
	}

	entry, err := encodeEntry(data)
	if err != nil {
		return err
	}

	// Write-then-rename so concurrent writers of the same key publish whole
	// files; their contents are identical by construction.
	tmp, err := os.CreateTemp(c.root, key.String()+".tmp*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateFile, err)
	}

	_, werr := tmp.Write(entry)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmp.Name())
		if werr != nil {
			return fmt.Errorf("%w: %v", ErrCreateFile, werr)
		}
		return fmt.Errorf("%w: %v", ErrCreateFile, cerr)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrCreateFile, err)
	}

	return nil
}

// encodeEntry frames a payload for disk: LZ4 when it pays off, COPY
// otherwise. LZ4 entries carry the uncompressed size after the magic.
func encodeEntry(data []byte) ([]byte, error) {
	if len(data) > maxInt32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrSizeOverflow, len(data))
	}

	if len(data) >= entryCompressMin {
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		cn, err := lz4.CompressBlockHC(data, buf, 0, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Compress, err)
		}
		if cn > 0 && cn < len(data) {
			entry := make([]byte, 0, 8+cn)
			entry = append(entry, entryMagicLZ4...)
			entry = binary.LittleEndian.AppendUint32(entry, uint32(len(data))) // #nosec G115 -- bounds checked above
			entry = append(entry, buf[:cn]...)
			return entry, nil
		}
	}

	entry := make([]byte, 0, 4+len(data))
	entry = append(entry, entryMagicCOPY...)
	entry = append(entry, data...)

	return entry, nil
}

// decodeEntry inflates a framed entry back into the raw payload.
func decodeEntry(raw []byte) ([]byte, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCacheEntryCorrupt, len(raw))
	}

	magic := string(raw[:4])
	body := raw[4:]

	switch magic {
	case entryMagicCOPY:
		data := make([]byte, len(body))
		copy(data, body)
		return data, nil

	case entryMagicLZ4:
		if len(body) < 4 {
			return nil, fmt.Errorf("%w: truncated LZ4 entry", ErrCacheEntryCorrupt)
		}
		size := int(binary.LittleEndian.Uint32(body[:4]))
		if size < 0 || size > maxInt32 {
			return nil, fmt.Errorf("%w: size %d", ErrCacheEntryCorrupt, size)
		}
		data := make([]byte, size)
		n, err := lz4.UncompressBlock(body[4:], data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Decode, err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrCacheEntryCorrupt, size, n)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("%w: magic %q", ErrCacheEntryCorrupt, magic)
	}
}
