package mipgen

// BC5 stores one 4x4 dual-channel block as two independent BC4 payloads,
// first channel then second, 16 bytes total.

const bc5BlockBytes = 16

// encodeBlockBC5 encodes 16 row-major two-channel texels into dst[:16].
func encodeBlockBC5(texels *[32]byte, dst []byte) {
	var plane [16]byte

	for i := 0; i < 16; i++ {
		plane[i] = texels[i*2]
	}
	encodeBlockBC4(&plane, dst[:bc4BlockBytes])

	for i := 0; i < 16; i++ {
		plane[i] = texels[i*2+1]
	}
	encodeBlockBC4(&plane, dst[bc4BlockBytes:bc5BlockBytes])
}

// decodeBlockBC5 decodes one BC5 block into 16 interleaved two-channel texels.
func decodeBlockBC5(block []byte, texels *[32]byte) {
	var plane [16]byte

	decodeBlockBC4(block[:bc4BlockBytes], &plane)
	for i := 0; i < 16; i++ {
		texels[i*2] = plane[i]
	}

	decodeBlockBC4(block[bc4BlockBytes:bc5BlockBytes], &plane)
	for i := 0; i < 16; i++ {
		texels[i*2+1] = plane[i]
	}
}
