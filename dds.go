package mipgen

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/bcn"
)

// ddsHeaderDX10 mirrors the 20-byte DX10 extension block that follows the
// legacy header when the pixel format FourCC is "DX10".
type ddsHeaderDX10 struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

const d3d10ResourceDimensionTexture2D = 3

// DXGI ids for the uncompressed source formats exported through DX10.
const (
	dxgiFormatRGBA8SRGB = 29 // R8G8B8A8_UNORM_SRGB
	dxgiFormatRG8       = 49 // R8G8_UNORM
	dxgiFormatR8        = 61 // R8_UNORM
)

func makeFourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// WriteDDS serializes a processed image to a DDS file, levels ordered
// base to smallest.
func WriteDDS(pi *ProcessedImage, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}
	defer func() { _ = f.Close() }()

	return EncodeDDS(f, pi)
}

// EncodeDDS writes the DDS magic, headers and level payloads of a processed
// image. BC7 and the sRGB/R8/RG8 uncompressed formats use the DX10 header
// extension; BC4, BC5 and linear RGBA8 use the legacy header alone.
func EncodeDDS(w io.Writer, pi *ProcessedImage) error {
	if err := pi.validateLevels(); err != nil {
		return err
	}

	header, dx10, err := makeDDSHeader(pi)
	if err != nil {
		return err
	}

	if err := bcn.WriteDDSMagic(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDDSMagic, err)
	}
	if err := bcn.WriteDDSHeader(w, header); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDDSHeader, err)
	}
	if dx10 != nil {
		if err := binary.Write(w, binary.LittleEndian, dx10); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteDDSHeader, err)
		}
	}

	for i, level := range pi.Levels {
		if _, err := w.Write(level.Data); err != nil {
			return fmt.Errorf("%w: level %d: %v", ErrWriteDDSData, i, err)
		}
	}

	return nil
}

func makeDDSHeader(pi *ProcessedImage) (*bcn.DDSHeader, *ddsHeaderDX10, error) {
	width, err := u32FromInt(pi.Width)
	if err != nil {
		return nil, nil, err
	}
	height, err := u32FromInt(pi.Height)
	if err != nil {
		return nil, nil, err
	}
	mipMapCount, err := u32FromInt(len(pi.Levels))
	if err != nil {
		return nil, nil, err
	}

	flags := uint32(bcn.DDSFlagCaps | bcn.DDSFlagHeight | bcn.DDSFlagWidth | bcn.DDSFlagPixelFormat)
	caps := uint32(bcn.DDSCapsTexture)
	if mipMapCount > 1 {
		flags |= bcn.DDSFlagMipmapCount
		caps |= bcn.DDSCapsComplex | bcn.DDSCapsMipmap
	}

	hdr := &bcn.DDSHeader{
		Size:        bcn.DDSHeaderSize,
		Flags:       flags,
		Height:      height,
		Width:       width,
		Depth:       1,
		MipMapCount: mipMapCount,
		Caps:        caps,
	}
	hdr.PixelFormat.Size = bcn.DDSPixelFormatSize

	var dx10 *ddsHeaderDX10
	newDX10 := func(format uint32) *ddsHeaderDX10 {
		hdr.PixelFormat.Flags = bcn.DDSPFFourCC
		hdr.PixelFormat.FourCC = makeFourCC('D', 'X', '1', '0')
		return &ddsHeaderDX10{
			DXGIFormat:        format,
			ResourceDimension: d3d10ResourceDimensionTexture2D,
			ArraySize:         1,
		}
	}

	switch pi.Target {
	case TargetBC4R:
		hdr.Flags |= bcn.DDSFlagLinearSize
		hdr.PixelFormat.Flags = bcn.DDSPFFourCC
		hdr.PixelFormat.FourCC = makeFourCC('A', 'T', 'I', '1')

	case TargetBC5RG:
		hdr.Flags |= bcn.DDSFlagLinearSize
		hdr.PixelFormat.Flags = bcn.DDSPFFourCC
		hdr.PixelFormat.FourCC = makeFourCC('A', 'T', 'I', '2')

	case TargetBC7RGBA, TargetBC7RGBASRGB:
		hdr.Flags |= bcn.DDSFlagLinearSize
		dx10 = newDX10(pi.Target.DXGIFormat())

	case TargetNone:
		hdr.Flags |= bcn.DDSFlagPitch
		switch pi.Format {
		case FormatRGBA8:
			hdr.PixelFormat.Flags = bcn.DDSPFRGB | bcn.DDSPFAlphaPixels
			hdr.PixelFormat.RGBBitCount = 32
			hdr.PixelFormat.RBitMask = 0x000000ff
			hdr.PixelFormat.GBitMask = 0x0000ff00
			hdr.PixelFormat.BBitMask = 0x00ff0000
			hdr.PixelFormat.ABitMask = 0xff000000
		case FormatRGBA8SRGB:
			dx10 = newDX10(dxgiFormatRGBA8SRGB)
		case FormatRG8:
			dx10 = newDX10(dxgiFormatRG8)
		case FormatR8:
			dx10 = newDX10(dxgiFormatR8)
		default:
			return nil, nil, fmt.Errorf("%w: %s", ErrInvalidFormat, pi.Format)
		}

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedTarget, pi.Target)
	}

	if hdr.Flags&bcn.DDSFlagLinearSize != 0 {
		size, err := u32FromInt(len(pi.Levels[0].Data))
		if err != nil {
			return nil, nil, err
		}
		hdr.PitchOrLinearSize = size
	} else {
		hdr.PitchOrLinearSize = width * uint32(pi.Format.Channels()) // #nosec G115 -- channels is at most 4
	}

	return hdr, dx10, nil
}
