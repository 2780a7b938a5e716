package mipgen

// BC4 stores one 4x4 single-channel block in 8 bytes: two 8-bit endpoints
// followed by 48 bits of 3-bit palette indices, LSB first.

const bc4BlockBytes = 8

// bc4Palette expands the two endpoints into the 8-entry index palette.
// e0 > e1 selects the eight-step mode; otherwise four interpolated values
// plus literal 0 and 255.
func bc4Palette(e0, e1 byte) (pal [8]byte) {
	pal[0], pal[1] = e0, e1
	a, b := int(e0), int(e1)

	if e0 > e1 {
		for i := 1; i <= 6; i++ {
			pal[i+1] = byte(((7-i)*a + i*b + 3) / 7)
		}
		return pal
	}

	for i := 1; i <= 4; i++ {
		pal[i+1] = byte(((5-i)*a + i*b + 2) / 5)
	}
	pal[6] = 0
	pal[7] = 255

	return pal
}

// bc4NearestIndex picks the palette entry closest to v.
func bc4NearestIndex(pal *[8]byte, v byte) int {
	best, bestDist := 0, 1<<30
	for i, p := range pal {
		d := int(v) - int(p)
		d *= d
		if d < bestDist {
			best, bestDist = i, d
		}
	}

	return best
}

// encodeBlockBC4 encodes 16 row-major texels into dst[:8]. Always emits the
// eight-step mode with endpoint0 >= endpoint1.
func encodeBlockBC4(texels *[16]byte, dst []byte) {
	lo, hi := texels[0], texels[0]
	for _, v := range texels {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	dst[0], dst[1] = hi, lo
	if lo == hi {
		// Flat block: palette entry 0 is the value, all index bits zero.
		for i := 2; i < bc4BlockBytes; i++ {
			dst[i] = 0
		}
		return
	}

	pal := bc4Palette(hi, lo)
	var bits uint64
	for i, v := range texels {
		bits |= uint64(bc4NearestIndex(&pal, v)) << (3 * i)
	}
	for i := 0; i < 6; i++ {
		dst[2+i] = byte(bits >> (8 * i))
	}
}

// decodeBlockBC4 decodes dst-compatible block bytes into 16 texels.
func decodeBlockBC4(block []byte, texels *[16]byte) {
	pal := bc4Palette(block[0], block[1])

	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(block[2+i]) << (8 * i)
	}
	for i := range texels {
		texels[i] = pal[(bits>>(3*i))&0x7]
	}
}
