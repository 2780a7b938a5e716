package mipgen

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Compress encodes one uncompressed level into the target block format.
// It is a pure function of its inputs and safe to call concurrently on
// independent levels. Levels smaller than 4x4 are padded with replicated
// edge pixels and stored as a single block; the logical dimensions stay the
// level's true values.
func Compress(level *RasterImage, target CompressionTarget) ([]byte, error) {
	if err := level.Validate(); err != nil {
		return nil, err
	}

	channels := target.Channels()
	if channels == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTarget, target)
	}
	if level.Format.Channels() != channels {
		return nil, fmt.Errorf("%w: %s into %s", ErrFormatTargetMismatch, level.Format, target)
	}

	blocksW := (level.Width + 3) / 4
	blocksH := (level.Height + 3) / 4
	totalBlocks := blocksW * blocksH
	blockBytes := target.BlockBytes()
	out := make([]byte, totalBlocks*blockBytes)

	encodeAt := func(idx int, texels []byte) {
		bx := idx % blocksW
		by := idx / blocksW
		extractBlock(level.Pix, level.Width, level.Height, channels, bx*4, by*4, texels)
		encodeBlock(texels, target, out[idx*blockBytes:(idx+1)*blockBytes])
	}

	procs := runtime.GOMAXPROCS(0)
	if procs > totalBlocks {
		procs = totalBlocks
	}

	// Small levels are faster to encode sequentially.
	if procs <= 1 || totalBlocks < 32 {
		texels := make([]byte, 16*channels)
		for idx := 0; idx < totalBlocks; idx++ {
			encodeAt(idx, texels)
		}
		return out, nil
	}

	var next uint32
	var wg sync.WaitGroup
	wg.Add(procs)
	for w := 0; w < procs; w++ {
		go func() {
			defer wg.Done()
			texels := make([]byte, 16*channels)
			for {
				idx := int(atomic.AddUint32(&next, 1) - 1)
				if idx >= totalBlocks {
					return
				}
				encodeAt(idx, texels)
			}
		}()
	}
	wg.Wait()

	return out, nil
}

// Decompress decodes a compressed level payload back into raw channel
// bytes. Padding pixels of partial blocks are discarded.
func Decompress(data []byte, width, height int, target CompressionTarget) (*RasterImage, error) {
	format, err := targetSourceFormat(target)
	if err != nil {
		return nil, err
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroDimension, width, height)
	}

	expected := compressedDataLength(target, width, height)
	if len(data) != expected {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrCompressedSizeMismatch, expected, len(data))
	}

	channels := target.Channels()
	blocksW := (width + 3) / 4
	blocksH := (height + 3) / 4
	blockBytes := target.BlockBytes()

	im := &RasterImage{
		Width:  width,
		Height: height,
		Format: format,
		Pix:    make([]byte, width*height*channels),
	}

	texels := make([]byte, 16*channels)
	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			idx := by*blocksW + bx
			if err := decodeBlock(data[idx*blockBytes:(idx+1)*blockBytes], target, texels); err != nil {
				return nil, err
			}
			scatterBlock(im.Pix, width, height, channels, bx*4, by*4, texels)
		}
	}

	return im, nil
}

// targetSourceFormat returns the uncompressed format a target decodes to.
func targetSourceFormat(target CompressionTarget) (PixelFormat, error) {
	switch target {
	case TargetBC4R:
		return FormatR8, nil
	case TargetBC5RG:
		return FormatRG8, nil
	case TargetBC7RGBA:
		return FormatRGBA8, nil
	case TargetBC7RGBASRGB:
		return FormatRGBA8SRGB, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedTarget, target)
	}
}

func encodeBlock(texels []byte, target CompressionTarget, dst []byte) {
	switch target {
	case TargetBC4R:
		encodeBlockBC4((*[16]byte)(texels), dst)
	case TargetBC5RG:
		encodeBlockBC5((*[32]byte)(texels), dst)
	default:
		encodeBlockBC7((*[64]byte)(texels), dst)
	}
}

func decodeBlock(block []byte, target CompressionTarget, texels []byte) error {
	switch target {
	case TargetBC4R:
		decodeBlockBC4(block, (*[16]byte)(texels))
	case TargetBC5RG:
		decodeBlockBC5(block, (*[32]byte)(texels))
	default:
		return decodeBlockBC7(block, (*[64]byte)(texels))
	}

	return nil
}

// extractBlock copies a 4x4 block starting at (x0, y0) into dst, replicating
// edge pixels when the block extends past the image.
func extractBlock(pix []byte, width, height, channels, x0, y0 int, dst []byte) {
	for by := 0; by < 4; by++ {
		y := y0 + by
		if y >= height {
			y = height - 1
		}
		row := y * width * channels
		for bx := 0; bx < 4; bx++ {
			x := x0 + bx
			if x >= width {
				x = width - 1
			}
			src := row + x*channels
			out := (by*4 + bx) * channels
			copy(dst[out:out+channels], pix[src:src+channels])
		}
	}
}

// scatterBlock writes the in-bounds texels of a decoded 4x4 block back into
// the pixel buffer.
func scatterBlock(pix []byte, width, height, channels, x0, y0 int, texels []byte) {
	for by := 0; by < 4; by++ {
		y := y0 + by
		if y >= height {
			break
		}
		row := y * width * channels
		for bx := 0; bx < 4; bx++ {
			x := x0 + bx
			if x >= width {
				break
			}
			src := (by*4 + bx) * channels
			copy(pix[row+x*channels:row+(x+1)*channels], texels[src:src+channels])
		}
	}
}
