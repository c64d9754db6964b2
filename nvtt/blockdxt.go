package nvtt

import "encoding/binary"

// Decoder selects between the bit-exact reference block decoder and the
// hardware-approximate NV5x variant.
type Decoder uint32

const (
	DecoderReference Decoder = iota
	DecoderNV5x
)

// colorBlock is a decoded 4x4 tile of RGBA8 texels in row-major order.
type colorBlock [16][4]uint8

// expand565 expands packed 5:6:5 endpoints to 8-bit components by bit
// replication.
func expand565(c uint16) (r, g, b uint8) {
	r5 := uint8(c >> 11)
	g6 := uint8((c >> 5) & 0x3F)
	b5 := uint8(c & 0x1F)
	r = (r5 << 3) | (r5 >> 2)
	g = (g6 << 2) | (g6 >> 4)
	b = (b5 << 3) | (b5 >> 2)
	return
}

// evaluatePaletteDXT1 builds the four-entry color palette of a BC1 color
// block. Index 3 is transparent black in three-color mode.
func evaluatePaletteDXT1(c0, c1 uint16, palette *[4][4]uint8) {
	r0, g0, b0 := expand565(c0)
	r1, g1, b1 := expand565(c1)

	palette[0] = [4]uint8{r0, g0, b0, 0xFF}
	palette[1] = [4]uint8{r1, g1, b1, 0xFF}

	if c0 > c1 {
		// Four-color block.
		palette[2] = [4]uint8{
			uint8((2*int(r0) + int(r1)) / 3),
			uint8((2*int(g0) + int(g1)) / 3),
			uint8((2*int(b0) + int(b1)) / 3),
			0xFF,
		}
		palette[3] = [4]uint8{
			uint8((2*int(r1) + int(r0)) / 3),
			uint8((2*int(g1) + int(g0)) / 3),
			uint8((2*int(b1) + int(b0)) / 3),
			0xFF,
		}
	} else {
		// Three-color block.
		palette[2] = [4]uint8{
			uint8((int(r0) + int(r1)) / 2),
			uint8((int(g0) + int(g1)) / 2),
			uint8((int(b0) + int(b1)) / 2),
			0xFF,
		}
		palette[3] = [4]uint8{0, 0, 0, 0}
	}
}

// evaluatePaletteDXT1NV5x builds the palette using the interpolation the
// NV5x hardware performs, which works on the raw 5- and 6-bit endpoints.
func evaluatePaletteDXT1NV5x(c0, c1 uint16, palette *[4][4]uint8) {
	r0 := int(c0 >> 11)
	g0 := int((c0 >> 5) & 0x3F)
	b0 := int(c0 & 0x1F)
	r1 := int(c1 >> 11)
	g1 := int((c1 >> 5) & 0x3F)
	b1 := int(c1 & 0x1F)

	eg0 := (g0 << 2) | (g0 >> 4)
	eg1 := (g1 << 2) | (g1 >> 4)

	palette[0] = [4]uint8{uint8((3 * r0 * 22) / 8), uint8(eg0), uint8((3 * b0 * 22) / 8), 0xFF}
	palette[1] = [4]uint8{uint8((3 * r1 * 22) / 8), uint8(eg1), uint8((3 * b1 * 22) / 8), 0xFF}

	gdiff := eg1 - eg0

	if c0 > c1 {
		palette[2] = [4]uint8{
			uint8(((2*r0 + r1) * 22) / 8),
			uint8((256*eg0 + gdiff/4 + 128 + gdiff*80) / 256),
			uint8(((2*b0 + b1) * 22) / 8),
			0xFF,
		}
		palette[3] = [4]uint8{
			uint8(((2*r1 + r0) * 22) / 8),
			uint8((256*eg1 - gdiff/4 + 128 - gdiff*80) / 256),
			uint8(((2*b1 + b0) * 22) / 8),
			0xFF,
		}
	} else {
		palette[2] = [4]uint8{
			uint8(((r0 + r1) * 33) / 8),
			uint8((256*eg0 + gdiff/4 + 128 + gdiff*128) / 256),
			uint8(((b0 + b1) * 33) / 8),
			0xFF,
		}
		palette[3] = [4]uint8{0, 0, 0, 0}
	}
}

// decodeColorDXT1 decodes an 8-byte BC1 color block.
func decodeColorDXT1(block []byte, nv5x bool, out *colorBlock) {
	c0 := binary.LittleEndian.Uint16(block[0:2])
	c1 := binary.LittleEndian.Uint16(block[2:4])
	indices := binary.LittleEndian.Uint32(block[4:8])

	var palette [4][4]uint8
	if nv5x {
		evaluatePaletteDXT1NV5x(c0, c1, &palette)
	} else {
		evaluatePaletteDXT1(c0, c1, &palette)
	}

	for i := 0; i < 16; i++ {
		out[i] = palette[(indices>>(2*uint(i)))&0x3]
	}
}

// decodeAlphaDXT3 decodes the 8-byte explicit alpha block of BC2 into the
// alpha components of out. 4-bit values expand by replication (a*17).
func decodeAlphaDXT3(block []byte, out *colorBlock) {
	for i := 0; i < 16; i++ {
		a := (block[i/2] >> (4 * uint(i&1))) & 0xF
		out[i][3] = (a << 4) | a
	}
}

// evaluatePaletteAlphaDXT5 builds the 8-entry alpha palette of a BC3/BC4/BC5
// alpha block: 8 interpolated alphas, or 6 interpolated plus 0 and 255.
func evaluatePaletteAlphaDXT5(a0, a1 uint8, palette *[8]uint8) {
	palette[0] = a0
	palette[1] = a1
	if a0 > a1 {
		palette[2] = uint8((6*int(a0) + 1*int(a1)) / 7)
		palette[3] = uint8((5*int(a0) + 2*int(a1)) / 7)
		palette[4] = uint8((4*int(a0) + 3*int(a1)) / 7)
		palette[5] = uint8((3*int(a0) + 4*int(a1)) / 7)
		palette[6] = uint8((2*int(a0) + 5*int(a1)) / 7)
		palette[7] = uint8((1*int(a0) + 6*int(a1)) / 7)
	} else {
		palette[2] = uint8((4*int(a0) + 1*int(a1)) / 5)
		palette[3] = uint8((3*int(a0) + 2*int(a1)) / 5)
		palette[4] = uint8((2*int(a0) + 3*int(a1)) / 5)
		palette[5] = uint8((1*int(a0) + 4*int(a1)) / 5)
		palette[6] = 0x00
		palette[7] = 0xFF
	}
}

// decodeAlphaDXT5 decodes an 8-byte interpolated alpha block into 16 values.
func decodeAlphaDXT5(block []byte, out *[16]uint8) {
	var palette [8]uint8
	evaluatePaletteAlphaDXT5(block[0], block[1], &palette)

	// 48 bits of 3-bit indices.
	bits := uint64(block[2]) | uint64(block[3])<<8 | uint64(block[4])<<16 |
		uint64(block[5])<<24 | uint64(block[6])<<32 | uint64(block[7])<<40
	for i := 0; i < 16; i++ {
		out[i] = palette[(bits>>(3*uint(i)))&0x7]
	}
}

func decodeBlockDXT1(block []byte, nv5x bool, out *colorBlock) {
	decodeColorDXT1(block, nv5x, out)
}

func decodeBlockDXT3(block []byte, nv5x bool, out *colorBlock) {
	decodeColorDXT1(block[8:16], nv5x, out)
	decodeAlphaDXT3(block[0:8], out)
}

func decodeBlockDXT5(block []byte, nv5x bool, out *colorBlock) {
	decodeColorDXT1(block[8:16], nv5x, out)

	var alpha [16]uint8
	decodeAlphaDXT5(block[0:8], &alpha)
	for i := 0; i < 16; i++ {
		out[i][3] = alpha[i]
	}
}

// decodeBlockBC4 decodes a single-channel block, replicating the channel to
// RGB with opaque alpha.
func decodeBlockBC4(block []byte, out *colorBlock) {
	var v [16]uint8
	decodeAlphaDXT5(block[0:8], &v)
	for i := 0; i < 16; i++ {
		out[i] = [4]uint8{v[i], v[i], v[i], 0xFF}
	}
}

// decodeBlockBC5 decodes a two-channel block: X to red, Y to green.
func decodeBlockBC5(block []byte, out *colorBlock) {
	var x, y [16]uint8
	decodeAlphaDXT5(block[0:8], &x)
	decodeAlphaDXT5(block[8:16], &y)
	for i := 0; i < 16; i++ {
		out[i] = [4]uint8{x[i], y[i], 0, 0xFF}
	}
}

// DecodeBlocks decodes a block-compressed byte stream covering a w x h pixel
// area into a fresh 4-channel float image with samples in [0,1].
//
// Supported formats: BC1 (DXT1), BC2 (DXT3), BC3 (DXT5) with both decoder
// variants, and BC4/BC5 which always use the reference decode. Edge blocks
// are decoded whole but only in-bounds pixels are written. On any failure no
// image is returned.
func DecodeBlocks(format Format, decoder Decoder, w, h int, data []byte) (*FloatImage, error) {
	if w <= 0 || h <= 0 {
		return nil, newError(ErrBadParam, "nvtt: invalid image dimensions")
	}
	if decoder != DecoderReference && decoder != DecoderNV5x {
		return nil, newError(ErrBadParam, "nvtt: invalid decoder")
	}
	switch format {
	case FormatBC1, FormatBC2, FormatBC3, FormatBC4, FormatBC5:
	default:
		return nil, newError(ErrUnsupportedFormat, "nvtt: unsupported block format")
	}

	bw := (w + 3) / 4
	bh := (h + 3) / 4
	bs := BlockByteSize(format)
	if len(data) < bw*bh*bs {
		return nil, newError(ErrTruncatedData, "nvtt: compressed data too short")
	}

	nv5x := decoder == DecoderNV5x
	img := newFloatImage(4, w, h)
	r := img.Channel(0)
	g := img.Channel(1)
	b := img.Channel(2)
	a := img.Channel(3)

	var colors colorBlock
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			block := data[(by*bw+bx)*bs:]

			switch format {
			case FormatBC1:
				decodeBlockDXT1(block[:8], nv5x, &colors)
			case FormatBC2:
				decodeBlockDXT3(block[:16], nv5x, &colors)
			case FormatBC3:
				decodeBlockDXT5(block[:16], nv5x, &colors)
			case FormatBC4:
				decodeBlockBC4(block[:8], &colors)
			case FormatBC5:
				decodeBlockBC5(block[:16], &colors)
			}

			for yy := 0; yy < 4; yy++ {
				for xx := 0; xx < 4; xx++ {
					x := bx*4 + xx
					y := by*4 + yy
					if x >= w || y >= h {
						continue
					}
					c := colors[yy*4+xx]
					idx := y*w + x
					r[idx] = float32(c[0]) / 255.0
					g[idx] = float32(c[1]) / 255.0
					b[idx] = float32(c[2]) / 255.0
					a[idx] = float32(c[3]) / 255.0
				}
			}
		}
	}
	return img, nil
}
