package mipgen

// mipDimension calculates the dimension of a mipmap level.
func mipDimension(base, level int) int {
	result := base >> level
	if result < 1 {
		return 1
	}

	return result
}

// mipLevelCount calculates the number of levels in a full chain, i.e.
// floor(log2(max(width,height))) + 1.
func mipLevelCount(width, height int) int {
	count := 1
	for width > 1 || height > 1 {
		count++
		width = mipDimension(width, 1)
		height = mipDimension(height, 1)
	}

	return count
}

// BuildPyramid builds the full mip chain for base down to 1x1. The base
// level is copied, so the caller keeps ownership of its buffer.
func BuildPyramid(base *RasterImage, mode AveragingMode) (*MipPyramid, error) {
	return BuildPyramidLimit(base, mode, 1, 0)
}

// BuildPyramidLimit builds a mip chain with an early stop: no level smaller
// than minLevelSize in either dimension is generated, and at most maxLevels
// levels (0 meaning unlimited) are produced. minLevelSize of 1 or less and
// maxLevels of 0 yield the full chain.
func BuildPyramidLimit(base *RasterImage, mode AveragingMode, minLevelSize, maxLevels int) (*MipPyramid, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if minLevelSize < 1 {
		minLevelSize = 1
	}

	level0 := make([]byte, len(base.Pix))
	copy(level0, base.Pix)

	pyramid := &MipPyramid{
		Format: base.Format,
		Levels: []MipLevel{{Index: 0, Width: base.Width, Height: base.Height, Data: level0}},
	}

	channels := base.Format.Channels()
	width, height := base.Width, base.Height
	data := level0

	for width > 1 || height > 1 {
		if maxLevels > 0 && len(pyramid.Levels) >= maxLevels {
			break
		}

		nextW := mipDimension(width, 1)
		nextH := mipDimension(height, 1)
		if nextW < minLevelSize || nextH < minLevelSize {
			break
		}

		data = downsampleLevel(data, width, height, channels, mode)
		width, height = nextW, nextH

		pyramid.Levels = append(pyramid.Levels, MipLevel{
			Index:  len(pyramid.Levels),
			Width:  width,
			Height: height,
			Data:   data,
		})
	}

	return pyramid, nil
}

// downsampleLevel box-filters one level into the next. Each output pixel
// averages the 2x2 source block it covers with equal weights; when a
// dimension is odd the remaining row or column folds into the last output
// pixel. Color channels honor the averaging mode, alpha stays linear.
func downsampleLevel(src []byte, width, height, channels int, mode AveragingMode) []byte {
	dstW := mipDimension(width, 1)
	dstH := mipDimension(height, 1)
	dst := make([]byte, dstW*dstH*channels)

	gammaChannels := 0
	if mode == AverageGamma {
		gammaChannels = channels
		if gammaChannels > 3 {
			gammaChannels = 3
		}
	}

	for y := 0; y < dstH; y++ {
		y0 := y * 2
		y1 := y0 + 2
		if y == dstH-1 {
			y1 = height
		}

		for x := 0; x < dstW; x++ {
			x0 := x * 2
			x1 := x0 + 2
			if x == dstW-1 {
				x1 = width
			}

			n := (y1 - y0) * (x1 - x0)
			out := (y*dstW + x) * channels

			for c := 0; c < channels; c++ {
				if c < gammaChannels {
					var sum float32
					for sy := y0; sy < y1; sy++ {
						for sx := x0; sx < x1; sx++ {
							sum += srgbToLinear[src[(sy*width+sx)*channels+c]]
						}
					}
					dst[out+c] = linearToSRGB8(sum / float32(n))
					continue
				}

				var sum int
				for sy := y0; sy < y1; sy++ {
					for sx := x0; sx < x1; sx++ {
						sum += int(src[(sy*width+sx)*channels+c])
					}
				}
				// #nosec G115 -- average of byte values.
				dst[out+c] = uint8((sum + n/2) / n)
			}
		}
	}

	return dst
}
