package mipgen

import "math"

// srgbToLinear maps stored sRGB bytes to linear light.
var srgbToLinear [256]float32

func init() {
	for i := range srgbToLinear {
		v := float64(i) / 255.0
		if v <= 0.04045 {
			v /= 12.92
		} else {
			v = math.Pow((v+0.055)/1.055, 2.4)
		}
		srgbToLinear[i] = float32(v)
	}
}

// linearToSRGB8 encodes a linear value in [0,1] back to a stored sRGB byte.
func linearToSRGB8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}

	f := float64(v)
	if f <= 0.0031308 {
		f *= 12.92
	} else {
		f = 1.055*math.Pow(f, 1.0/2.4) - 0.055
	}

	return uint8(math.Round(f * 255.0))
}
