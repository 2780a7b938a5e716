package mipgen

import "errors"

var (
	// ErrInvalidFormat indicates an unrecognized pixel format tag.
	ErrInvalidFormat = errors.New("invalid pixel format")
	// ErrZeroDimension indicates a width or height below 1.
	ErrZeroDimension = errors.New("image dimensions must be at least 1x1")
	// ErrBufferSizeMismatch indicates the pixel buffer does not match the declared dimensions.
	ErrBufferSizeMismatch = errors.New("pixel buffer size mismatch")
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrUnsupportedTarget indicates a compression target with no encoder.
	ErrUnsupportedTarget = errors.New("unsupported compression target")
	// ErrFormatTargetMismatch indicates level channels do not fit the target encoding.
	ErrFormatTargetMismatch = errors.New("pixel format does not match compression target")
	// ErrCompressedSizeMismatch indicates a compressed payload of unexpected length.
	ErrCompressedSizeMismatch = errors.New("compressed payload size mismatch")
	// ErrUnsupportedBC7Mode indicates a BC7 block mode this decoder does not handle.
	ErrUnsupportedBC7Mode = errors.New("unsupported BC7 block mode")
	// ErrLevelOutOfRange indicates a mip level index beyond the stored chain.
	ErrLevelOutOfRange = errors.New("mip level out of range")
	// ErrEmptyLevels indicates a processed image without any levels.
	ErrEmptyLevels = errors.New("empty mip levels")
	// ErrCacheRoot indicates the cache root directory could not be prepared.
	ErrCacheRoot = errors.New("cache root unusable")
	// ErrCacheKeyConflict indicates an existing cache entry that disagrees with new bytes.
	ErrCacheKeyConflict = errors.New("cache key conflict")
	// ErrCacheEntryCorrupt indicates an undecodable cache entry payload.
	ErrCacheEntryCorrupt = errors.New("cache entry corrupt")
	// ErrLZ4Compress indicates LZ4 compression failed.
	ErrLZ4Compress = errors.New("LZ4 compression failed")
	// ErrLZ4Decode indicates LZ4 decode failed.
	ErrLZ4Decode = errors.New("LZ4 decode failed")
	// ErrCreateFile indicates file creation failed.
	ErrCreateFile = errors.New("create file failed")
	// ErrWriteDDSMagic indicates DDS magic write failed.
	ErrWriteDDSMagic = errors.New("writing DDS magic failed")
	// ErrWriteDDSHeader indicates DDS header write failed.
	ErrWriteDDSHeader = errors.New("writing DDS header failed")
	// ErrWriteDDSData indicates DDS level data write failed.
	ErrWriteDDSData = errors.New("writing DDS level data failed")
	// ErrLevelSizeMismatch indicates a stored level payload of unexpected length.
	ErrLevelSizeMismatch = errors.New("mip level size mismatch")
)
