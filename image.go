package mipgen

import "fmt"

// RasterImage is a single uncompressed image level: contiguous 8-bit channel
// data, row-major, no padding between rows.
type RasterImage struct {
	Width  int
	Height int
	Format PixelFormat
	Pix    []byte
}

// Validate checks the declared format and that the pixel buffer length
// matches Width*Height*channels exactly.
func (im *RasterImage) Validate() error {
	if im.Format.Channels() == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidFormat, im.Format)
	}
	if im.Width < 1 || im.Height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrZeroDimension, im.Width, im.Height)
	}

	expected := im.Width * im.Height * im.Format.Channels()
	if len(im.Pix) != expected {
		return fmt.Errorf("%w: expected %d, got %d", ErrBufferSizeMismatch, expected, len(im.Pix))
	}

	return nil
}

// MipLevel is one level of a chain. Data holds raw channel bytes for
// uncompressed levels or the encoded block payload for compressed ones.
// Width and Height are always the logical pixel dimensions, even when the
// payload stores a single padded block for a sub-4x4 level.
type MipLevel struct {
	Index  int
	Width  int
	Height int
	Data   []byte
}

// MipPyramid is an ordered chain of uncompressed levels, index 0 at the
// original resolution, each following level halved (clamped at 1) until both
// dimensions reach 1.
type MipPyramid struct {
	Format PixelFormat
	Levels []MipLevel
}

// ProcessedImage is the finished multi-level image handed back to the host.
// Target is TargetNone when levels are uncompressed.
type ProcessedImage struct {
	Width  int
	Height int
	Format PixelFormat
	Target CompressionTarget
	Levels []MipLevel
}

// levelDataLength returns the expected payload length of one level.
func (pi *ProcessedImage) levelDataLength(width, height int) int {
	if pi.Target == TargetNone {
		return width * height * pi.Format.Channels()
	}

	return compressedDataLength(pi.Target, width, height)
}

// Packed concatenates all levels base-to-smallest into one contiguous
// buffer, the layout GPU texture uploads expect.
func (pi *ProcessedImage) Packed() []byte {
	total := 0
	for _, level := range pi.Levels {
		total += len(level.Data)
	}

	packed := make([]byte, 0, total)
	for _, level := range pi.Levels {
		packed = append(packed, level.Data...)
	}

	return packed
}

// ExtractLevel returns one level of the chain as a standalone copy.
func (pi *ProcessedImage) ExtractLevel(index int) (*MipLevel, error) {
	if len(pi.Levels) == 0 {
		return nil, ErrEmptyLevels
	}
	if index < 0 || index >= len(pi.Levels) {
		return nil, fmt.Errorf("%w: level %d of %d", ErrLevelOutOfRange, index, len(pi.Levels))
	}

	src := pi.Levels[index]
	data := make([]byte, len(src.Data))
	copy(data, src.Data)

	return &MipLevel{Index: src.Index, Width: src.Width, Height: src.Height, Data: data}, nil
}

// validateLevels checks the chain shape and per-level payload lengths.
func (pi *ProcessedImage) validateLevels() error {
	if len(pi.Levels) == 0 {
		return ErrEmptyLevels
	}

	for i, level := range pi.Levels {
		wantW := mipDimension(pi.Width, i)
		wantH := mipDimension(pi.Height, i)
		if level.Width != wantW || level.Height != wantH {
			return fmt.Errorf("%w: level %d is %dx%d, expected %dx%d",
				ErrLevelSizeMismatch, i, level.Width, level.Height, wantW, wantH)
		}

		expected := pi.levelDataLength(level.Width, level.Height)
		if expected <= 0 {
			return fmt.Errorf("%w: %s", ErrUnsupportedTarget, pi.Target)
		}
		if len(level.Data) != expected {
			return fmt.Errorf("%w: level %d: expected %d, got %d",
				ErrLevelSizeMismatch, i, expected, len(level.Data))
		}
	}

	return nil
}
