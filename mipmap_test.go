package mipgen

import (
	"errors"
	"testing"
)

func grayImage(width, height int) *RasterImage {
	pix := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Deterministic pattern with mixed low/high frequencies.
			pix[y*width+x] = byte((x*7 + y*13) & 0xff)
		}
	}
	return &RasterImage{Width: width, Height: height, Format: FormatR8, Pix: pix}
}

func TestPyramidLevelCount(t *testing.T) {
	tests := []struct {
		width, height int
		want          int
	}{
		{1, 1, 1},
		{2, 2, 2},
		{2, 1, 2},
		{5, 3, 3},
		{7, 1, 3},
		{16, 16, 5},
		{640, 480, 10},
		{256, 1, 9},
	}

	for _, tt := range tests {
		pyramid, err := BuildPyramid(grayImage(tt.width, tt.height), AverageLinear)
		if err != nil {
			t.Fatalf("BuildPyramid(%dx%d): %v", tt.width, tt.height, err)
		}
		if got := len(pyramid.Levels); got != tt.want {
			t.Fatalf("%dx%d: got %d levels, want %d", tt.width, tt.height, got, tt.want)
		}

		base := pyramid.Levels[0]
		if base.Width != tt.width || base.Height != tt.height {
			t.Fatalf("%dx%d: level 0 is %dx%d", tt.width, tt.height, base.Width, base.Height)
		}

		for i := 1; i < len(pyramid.Levels); i++ {
			prev, cur := pyramid.Levels[i-1], pyramid.Levels[i]
			if cur.Width != mipDimension(prev.Width, 1) || cur.Height != mipDimension(prev.Height, 1) {
				t.Fatalf("%dx%d: level %d is %dx%d after %dx%d",
					tt.width, tt.height, i, cur.Width, cur.Height, prev.Width, prev.Height)
			}
			if len(cur.Data) != cur.Width*cur.Height {
				t.Fatalf("level %d: buffer %d for %dx%d", i, len(cur.Data), cur.Width, cur.Height)
			}
		}

		last := pyramid.Levels[len(pyramid.Levels)-1]
		if last.Width != 1 || last.Height != 1 {
			t.Fatalf("%dx%d: last level is %dx%d", tt.width, tt.height, last.Width, last.Height)
		}
	}
}

func TestPyramid5x3Dimensions(t *testing.T) {
	pyramid, err := BuildPyramid(grayImage(5, 3), AverageLinear)
	if err != nil {
		t.Fatalf("BuildPyramid: %v", err)
	}

	want := [][2]int{{5, 3}, {2, 1}, {1, 1}}
	if len(pyramid.Levels) != len(want) {
		t.Fatalf("got %d levels, want %d", len(pyramid.Levels), len(want))
	}
	for i, dims := range want {
		level := pyramid.Levels[i]
		if level.Width != dims[0] || level.Height != dims[1] {
			t.Fatalf("level %d: got %dx%d, want %dx%d", i, level.Width, level.Height, dims[0], dims[1])
		}
	}
}

func TestGammaAwareAveraging(t *testing.T) {
	// Two pure white and two pure black pixels. Linear-light averaging must
	// land near 186-188 after re-encoding; naive byte averaging lands at 128
	// and looks too dark.
	base := &RasterImage{
		Width:  2,
		Height: 2,
		Format: FormatRGBA8SRGB,
		Pix: []byte{
			255, 255, 255, 255, 0, 0, 0, 0,
			255, 255, 255, 255, 0, 0, 0, 0,
		},
	}

	gamma, err := BuildPyramid(base, AverageGamma)
	if err != nil {
		t.Fatalf("BuildPyramid gamma: %v", err)
	}
	top := gamma.Levels[1]
	for c := 0; c < 3; c++ {
		if v := top.Data[c]; v < 183 || v > 191 {
			t.Fatalf("gamma average channel %d: got %d, want midtone near 187", c, v)
		}
	}
	// Alpha averages linearly even under gamma mode.
	if a := top.Data[3]; a != 128 {
		t.Fatalf("gamma mode alpha: got %d, want 128", a)
	}

	linear, err := BuildPyramid(base, AverageLinear)
	if err != nil {
		t.Fatalf("BuildPyramid linear: %v", err)
	}
	for c := 0; c < 3; c++ {
		if v := linear.Levels[1].Data[c]; v != 128 {
			t.Fatalf("linear average channel %d: got %d, want 128", c, v)
		}
	}
}

func TestOddDimensionFolding(t *testing.T) {
	// Odd trailing column folds into the last output pixel with equal weight.
	base := &RasterImage{Width: 3, Height: 1, Format: FormatR8, Pix: []byte{10, 20, 90}}

	pyramid, err := BuildPyramid(base, AverageLinear)
	if err != nil {
		t.Fatalf("BuildPyramid: %v", err)
	}

	if len(pyramid.Levels) != 2 {
		t.Fatalf("got %d levels, want 2", len(pyramid.Levels))
	}
	if got := pyramid.Levels[1].Data[0]; got != 40 {
		t.Fatalf("folded average: got %d, want 40", got)
	}
}

func TestPyramidLimits(t *testing.T) {
	base := grayImage(16, 16)

	limited, err := BuildPyramidLimit(base, AverageLinear, 4, 0)
	if err != nil {
		t.Fatalf("BuildPyramidLimit min=4: %v", err)
	}
	if len(limited.Levels) != 3 {
		t.Fatalf("min=4: got %d levels, want 3 (16, 8, 4)", len(limited.Levels))
	}
	if last := limited.Levels[2]; last.Width != 4 || last.Height != 4 {
		t.Fatalf("min=4: last level %dx%d", last.Width, last.Height)
	}

	capped, err := BuildPyramidLimit(base, AverageLinear, 1, 2)
	if err != nil {
		t.Fatalf("BuildPyramidLimit max=2: %v", err)
	}
	if len(capped.Levels) != 2 {
		t.Fatalf("max=2: got %d levels, want 2", len(capped.Levels))
	}
}

func TestBuildPyramidValidatesBuffer(t *testing.T) {
	bad := &RasterImage{Width: 4, Height: 4, Format: FormatRGBA8, Pix: make([]byte, 4*4*3)}
	if _, err := BuildPyramid(bad, AverageLinear); !errors.Is(err, ErrBufferSizeMismatch) {
		t.Fatalf("got %v, want ErrBufferSizeMismatch", err)
	}

	empty := &RasterImage{Width: 0, Height: 4, Format: FormatR8}
	if _, err := BuildPyramid(empty, AverageLinear); !errors.Is(err, ErrZeroDimension) {
		t.Fatalf("got %v, want ErrZeroDimension", err)
	}
}

func TestBuildPyramidCopiesBase(t *testing.T) {
	base := grayImage(4, 4)
	pyramid, err := BuildPyramid(base, AverageLinear)
	if err != nil {
		t.Fatalf("BuildPyramid: %v", err)
	}

	before := pyramid.Levels[0].Data[0]
	base.Pix[0] ^= 0xff
	if pyramid.Levels[0].Data[0] != before {
		t.Fatal("level 0 aliases the caller's buffer")
	}
}
