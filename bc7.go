package mipgen

// BC7 encoding uses mode 6 for every block: one subset, 7-bit RGBA
// endpoints with a per-endpoint p-bit, and 4-bit indices. Mode 6 is the
// standard fast path for RGBA content and keeps the encoder a pure function
// of the block texels. The decoder accepts only blocks this encoder emits.

const bc7BlockBytes = 16

// bc7Weights4 are the standard 4-bit BC7 interpolation weights.
var bc7Weights4 = [16]int{0, 4, 9, 13, 17, 21, 26, 30, 34, 38, 43, 47, 51, 55, 60, 64}

type bitWriter struct {
	data [16]byte
	pos  int
}

func (w *bitWriter) write(v uint32, bits int) {
	for i := 0; i < bits; i++ {
		if (v>>i)&1 != 0 {
			w.data[w.pos>>3] |= 1 << (w.pos & 7)
		}
		w.pos++
	}
}

type bitReader struct {
	data []byte
	pos  int
}

func (r *bitReader) read(bits int) uint32 {
	var v uint32
	for i := 0; i < bits; i++ {
		if r.data[r.pos>>3]>>(r.pos&7)&1 != 0 {
			v |= 1 << i
		}
		r.pos++
	}

	return v
}

// quantize7 finds the 7-bit endpoint and p-bit reconstructing closest to v.
// Mode 6 reconstructs an endpoint channel as (e<<1)|p.
func quantize7(v byte, p uint32) uint32 {
	q := (int(v) - int(p)) >> 1
	if q < 0 {
		q = 0
	}
	if q > 127 {
		q = 127
	}
	if q < 127 {
		lowErr := absInt(int(v) - (q<<1 | int(p)))
		highErr := absInt(int(v) - ((q+1)<<1 | int(p)))
		if highErr < lowErr {
			q++
		}
	}

	return uint32(q)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

// endpointError is the total reconstruction error of quantizing all four
// channels of an endpoint with p-bit p.
func endpointError(e *[4]byte, p uint32) int {
	total := 0
	for _, v := range e {
		q := quantize7(v, p)
		recon := int(q<<1 | p)
		d := int(v) - recon
		if d < 0 {
			d = -d
		}
		total += d
	}

	return total
}

// encodeBlockBC7 encodes 16 row-major RGBA texels (64 bytes) into dst[:16].
func encodeBlockBC7(texels *[64]byte, dst []byte) {
	var lo, hi [4]byte
	for c := 0; c < 4; c++ {
		lo[c], hi[c] = texels[c], texels[c]
	}
	for i := 1; i < 16; i++ {
		for c := 0; c < 4; c++ {
			v := texels[i*4+c]
			if v < lo[c] {
				lo[c] = v
			}
			if v > hi[c] {
				hi[c] = v
			}
		}
	}

	p0, p1 := uint32(0), uint32(0)
	if endpointError(&lo, 1) < endpointError(&lo, 0) {
		p0 = 1
	}
	if endpointError(&hi, 1) < endpointError(&hi, 0) {
		p1 = 1
	}

	var q0, q1 [4]uint32
	var r0, r1 [4]int
	for c := 0; c < 4; c++ {
		q0[c] = quantize7(lo[c], p0)
		q1[c] = quantize7(hi[c], p1)
		r0[c] = int(q0[c]<<1 | p0)
		r1[c] = int(q1[c]<<1 | p1)
	}

	// Palette of the 16 interpolated RGBA values.
	var pal [16][4]int
	for i, w := range bc7Weights4 {
		for c := 0; c < 4; c++ {
			pal[i][c] = (r0[c]*(64-w) + r1[c]*w + 32) >> 6
		}
	}

	var indices [16]int
	for i := 0; i < 16; i++ {
		best, bestDist := 0, 1<<30
		for j := range pal {
			dist := 0
			for c := 0; c < 4; c++ {
				d := int(texels[i*4+c]) - pal[j][c]
				dist += d * d
			}
			if dist < bestDist {
				best, bestDist = j, dist
			}
		}
		indices[i] = best
	}

	// The anchor index drops its MSB, so it must land in the lower half;
	// otherwise swap endpoints and invert every index.
	if indices[0] >= 8 {
		q0, q1 = q1, q0
		p0, p1 = p1, p0
		for i := range indices {
			indices[i] = 15 - indices[i]
		}
	}

	var w bitWriter
	w.write(1<<6, 7) // mode 6: six zero bits then a one
	for c := 0; c < 4; c++ {
		w.write(q0[c], 7)
		w.write(q1[c], 7)
	}
	w.write(p0, 1)
	w.write(p1, 1)
	w.write(uint32(indices[0]), 3)
	for i := 1; i < 16; i++ {
		w.write(uint32(indices[i]), 4)
	}

	copy(dst[:bc7BlockBytes], w.data[:])
}

// decodeBlockBC7 decodes a mode 6 block into 16 RGBA texels.
func decodeBlockBC7(block []byte, texels *[64]byte) error {
	r := bitReader{data: block}

	mode := 0
	for mode < 8 && r.read(1) == 0 {
		mode++
	}
	if mode != 6 {
		return ErrUnsupportedBC7Mode
	}

	var q0, q1 [4]uint32
	for c := 0; c < 4; c++ {
		q0[c] = r.read(7)
		q1[c] = r.read(7)
	}
	p0 := r.read(1)
	p1 := r.read(1)

	var r0, r1 [4]int
	for c := 0; c < 4; c++ {
		r0[c] = int(q0[c]<<1 | p0)
		r1[c] = int(q1[c]<<1 | p1)
	}

	var indices [16]int
	indices[0] = int(r.read(3))
	for i := 1; i < 16; i++ {
		indices[i] = int(r.read(4))
	}

	for i := 0; i < 16; i++ {
		w := bc7Weights4[indices[i]]
		for c := 0; c < 4; c++ {
			texels[i*4+c] = byte((r0[c]*(64-w) + r1[c]*w + 32) >> 6)
		}
	}

	return nil
}
