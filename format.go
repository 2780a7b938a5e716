package mipgen

// PixelFormat identifies the layout of an uncompressed pixel buffer.
type PixelFormat uint8

const (
	// FormatUnknown is an unrecognized pixel format.
	FormatUnknown PixelFormat = iota
	// FormatR8 is a single 8-bit linear channel per pixel.
	FormatR8
	// FormatRG8 is two 8-bit linear channels per pixel.
	FormatRG8
	// FormatRGBA8 is four 8-bit linear channels per pixel.
	FormatRGBA8
	// FormatRGBA8SRGB is four 8-bit channels with gamma-encoded RGB and linear alpha.
	FormatRGBA8SRGB
)

// Channels returns the number of byte channels per pixel, or 0 for unknown.
func (f PixelFormat) Channels() int {
	switch f {
	case FormatR8:
		return 1
	case FormatRG8:
		return 2
	case FormatRGBA8, FormatRGBA8SRGB:
		return 4
	default:
		return 0
	}
}

// IsSRGB reports whether color channels are gamma encoded.
func (f PixelFormat) IsSRGB() bool {
	return f == FormatRGBA8SRGB
}

func (f PixelFormat) String() string {
	switch f {
	case FormatR8:
		return "R8"
	case FormatRG8:
		return "RG8"
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBA8SRGB:
		return "RGBA8-sRGB"
	default:
		return "UNKNOWN"
	}
}

// CompressionTarget identifies the block-compressed encoding a level maps to.
type CompressionTarget uint8

const (
	// TargetNone keeps levels uncompressed.
	TargetNone CompressionTarget = iota
	// TargetBC4R is single-channel BC4.
	TargetBC4R
	// TargetBC5RG is dual-channel BC5.
	TargetBC5RG
	// TargetBC7RGBA is four-channel BC7.
	TargetBC7RGBA
	// TargetBC7RGBASRGB is BC7 with the sRGB format tag.
	TargetBC7RGBASRGB
)

// BlockBytes returns the encoded size of one 4x4 block, or 0 for TargetNone.
func (t CompressionTarget) BlockBytes() int {
	switch t {
	case TargetBC4R:
		return 8
	case TargetBC5RG, TargetBC7RGBA, TargetBC7RGBASRGB:
		return 16
	default:
		return 0
	}
}

// Channels returns the number of source channels the target encodes.
func (t CompressionTarget) Channels() int {
	switch t {
	case TargetBC4R:
		return 1
	case TargetBC5RG:
		return 2
	case TargetBC7RGBA, TargetBC7RGBASRGB:
		return 4
	default:
		return 0
	}
}

// DXGIFormat returns the DXGI format id used in DX10 DDS headers.
func (t CompressionTarget) DXGIFormat() uint32 {
	switch t {
	case TargetBC4R:
		return 80 // BC4_UNORM
	case TargetBC5RG:
		return 83 // BC5_UNORM
	case TargetBC7RGBA:
		return 98 // BC7_UNORM
	case TargetBC7RGBASRGB:
		return 99 // BC7_UNORM_SRGB
	default:
		return 0
	}
}

func (t CompressionTarget) String() string {
	switch t {
	case TargetNone:
		return "none"
	case TargetBC4R:
		return "BC4-R"
	case TargetBC5RG:
		return "BC5-RG"
	case TargetBC7RGBA:
		return "BC7-RGBA"
	case TargetBC7RGBASRGB:
		return "BC7-RGBA-sRGB"
	default:
		return "invalid"
	}
}

// AveragingMode selects how color channels are averaged while downsampling.
type AveragingMode uint8

const (
	// AverageLinear averages stored byte values directly.
	AverageLinear AveragingMode = iota
	// AverageGamma decodes sRGB to linear light, averages, and re-encodes.
	// Alpha is always averaged linearly.
	AverageGamma
)

// Classify maps a source pixel format to its processing decision: whether the
// format is eligible at all, how channels are averaged during downsampling,
// and which compressed target it encodes to. Ineligible formats are an
// expected outcome, not an error; callers skip those images. The target is
// TargetNone whenever compression is globally disabled.
func Classify(format PixelFormat, compress bool) (eligible bool, mode AveragingMode, target CompressionTarget) {
	switch format {
	case FormatR8:
		mode, target = AverageLinear, TargetBC4R
	case FormatRG8:
		mode, target = AverageLinear, TargetBC5RG
	case FormatRGBA8:
		mode, target = AverageLinear, TargetBC7RGBA
	case FormatRGBA8SRGB:
		mode, target = AverageGamma, TargetBC7RGBASRGB
	default:
		return false, AverageLinear, TargetNone
	}

	if !compress {
		target = TargetNone
	}

	return true, mode, target
}

// compressedDataLength returns the encoded byte length of one level, or -1
// for an unknown target.
func compressedDataLength(target CompressionTarget, width, height int) int {
	blockBytes := target.BlockBytes()
	if blockBytes == 0 {
		return -1
	}

	blocksW := (width + 3) / 4
	blocksH := (height + 3) / 4

	return blocksW * blocksH * blockBytes
}
