package nvtt

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bc1Block(c0, c1 uint16, indices uint32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b[0:], c0)
	binary.LittleEndian.PutUint16(b[2:], c1)
	binary.LittleEndian.PutUint32(b[4:], indices)
	return b
}

func dxt5AlphaBlock(a0, a1 uint8, indices uint64) []byte {
	b := make([]byte, 8)
	b[0] = a0
	b[1] = a1
	for i := 0; i < 6; i++ {
		b[2+i] = byte(indices >> (8 * uint(i)))
	}
	return b
}

const red565 = uint16(0xF800)
const blue565 = uint16(0x001F)

func TestDecodeBlocks_BC1_SolidRed(t *testing.T) {
	// Both endpoints equal: every index selects the same palette entry.
	block := bc1Block(red565, red565, 0)

	for _, decoder := range []Decoder{DecoderReference, DecoderNV5x} {
		img, err := DecodeBlocks(FormatBC1, decoder, 4, 4, block)
		require.NoError(t, err, "decoder %d", decoder)
		require.Equal(t, 4, img.Width())
		require.Equal(t, 4, img.Height())

		for i := 0; i < 16; i++ {
			assert.Equal(t, float32(1.0), img.Channel(0)[i], "red, decoder %d", decoder)
			assert.Equal(t, float32(0.0), img.Channel(1)[i], "green, decoder %d", decoder)
			assert.Equal(t, float32(0.0), img.Channel(2)[i], "blue, decoder %d", decoder)
			assert.Equal(t, float32(1.0), img.Channel(3)[i], "alpha, decoder %d", decoder)
		}
	}
}

func TestDecodeBlocks_BC1_FourColorPalette(t *testing.T) {
	// red565 > blue565 selects four-color mode. Index pattern: texel i uses
	// palette entry i%4.
	var indices uint32
	for i := 0; i < 16; i++ {
		indices |= uint32(i%4) << (2 * uint(i))
	}
	block := bc1Block(red565, blue565, indices)

	img, err := DecodeBlocks(FormatBC1, DecoderReference, 4, 4, block)
	require.NoError(t, err)

	// Palette: red, blue, (2*red+blue)/3, (red+2*blue)/3.
	wantR := []float32{1.0, 0.0, 170.0 / 255.0, 85.0 / 255.0}
	wantB := []float32{0.0, 1.0, 85.0 / 255.0, 170.0 / 255.0}
	for i := 0; i < 16; i++ {
		assert.Equal(t, wantR[i%4], img.Channel(0)[i], "red at %d", i)
		assert.Equal(t, float32(0.0), img.Channel(1)[i], "green at %d", i)
		assert.Equal(t, wantB[i%4], img.Channel(2)[i], "blue at %d", i)
		assert.Equal(t, float32(1.0), img.Channel(3)[i], "alpha at %d", i)
	}
}

func TestDecodeBlocks_BC1_ThreeColorTransparent(t *testing.T) {
	// c0 <= c1 selects three-color mode; index 3 is transparent black.
	var indices uint32
	for i := 0; i < 16; i++ {
		indices |= uint32(3) << (2 * uint(i))
	}
	block := bc1Block(blue565, red565, indices)

	img, err := DecodeBlocks(FormatBC1, DecoderReference, 4, 4, block)
	require.NoError(t, err)
	for i := 0; i < 16; i++ {
		assert.Equal(t, float32(0.0), img.Channel(0)[i])
		assert.Equal(t, float32(0.0), img.Channel(3)[i], "transparent at %d", i)
	}
}

func TestDecodeBlocks_BC2_ExplicitAlpha(t *testing.T) {
	block := make([]byte, 16)
	// Alpha nibbles 0x0 and 0xF alternating; expansion replicates bits.
	for i := 0; i < 8; i++ {
		block[i] = 0xF0
	}
	copy(block[8:], bc1Block(red565, red565, 0))

	img, err := DecodeBlocks(FormatBC2, DecoderReference, 4, 4, block)
	require.NoError(t, err)
	for i := 0; i < 16; i++ {
		assert.Equal(t, float32(1.0), img.Channel(0)[i], "red at %d", i)
		if i%2 == 0 {
			assert.Equal(t, float32(0.0), img.Channel(3)[i], "low nibble at %d", i)
		} else {
			assert.Equal(t, float32(1.0), img.Channel(3)[i], "high nibble at %d", i)
		}
	}
}

func TestDecodeBlocks_BC3_InterpolatedAlpha(t *testing.T) {
	// a0 > a1: eight-entry palette. Texel i uses alpha index i%8.
	var indices uint64
	for i := 0; i < 16; i++ {
		indices |= uint64(i%8) << (3 * uint(i))
	}
	block := make([]byte, 16)
	copy(block[0:8], dxt5AlphaBlock(240, 16, indices))
	copy(block[8:], bc1Block(red565, red565, 0))

	img, err := DecodeBlocks(FormatBC3, DecoderReference, 4, 4, block)
	require.NoError(t, err)

	want := []uint8{
		240, 16,
		uint8((6*240 + 16) / 7),
		uint8((5*240 + 2*16) / 7),
		uint8((4*240 + 3*16) / 7),
		uint8((3*240 + 4*16) / 7),
		uint8((2*240 + 5*16) / 7),
		uint8((1*240 + 6*16) / 7),
	}
	for i := 0; i < 16; i++ {
		assert.Equal(t, float32(want[i%8])/255.0, img.Channel(3)[i], "alpha at %d", i)
		assert.Equal(t, float32(1.0), img.Channel(0)[i], "red at %d", i)
	}
}

func TestDecodeBlocks_BC3_SixAlphaMode(t *testing.T) {
	// a0 <= a1: six interpolated entries plus explicit 0 and 255.
	var indices uint64
	for i := 0; i < 16; i++ {
		indices |= uint64(i%8) << (3 * uint(i))
	}
	block := make([]byte, 16)
	copy(block[0:8], dxt5AlphaBlock(16, 240, indices))
	copy(block[8:], bc1Block(red565, red565, 0))

	img, err := DecodeBlocks(FormatBC3, DecoderReference, 4, 4, block)
	require.NoError(t, err)

	assert.Equal(t, float32(0.0), img.Channel(3)[6], "index 6 is 0")
	assert.Equal(t, float32(1.0), img.Channel(3)[7], "index 7 is 255")
}

func TestDecodeBlocks_BC4_ReplicatesChannel(t *testing.T) {
	block := dxt5AlphaBlock(100, 50, 0)

	img, err := DecodeBlocks(FormatBC4, DecoderReference, 4, 4, block)
	require.NoError(t, err)
	for i := 0; i < 16; i++ {
		v := float32(100) / 255.0
		assert.Equal(t, v, img.Channel(0)[i])
		assert.Equal(t, v, img.Channel(1)[i])
		assert.Equal(t, v, img.Channel(2)[i])
		assert.Equal(t, float32(1.0), img.Channel(3)[i])
	}
}

func TestDecodeBlocks_BC5_TwoChannels(t *testing.T) {
	block := make([]byte, 16)
	copy(block[0:8], dxt5AlphaBlock(200, 0, 0))
	copy(block[8:16], dxt5AlphaBlock(10, 0, 0))

	img, err := DecodeBlocks(FormatBC5, DecoderReference, 4, 4, block)
	require.NoError(t, err)
	for i := 0; i < 16; i++ {
		assert.Equal(t, float32(200)/255.0, img.Channel(0)[i], "x to red")
		assert.Equal(t, float32(10)/255.0, img.Channel(1)[i], "y to green")
		assert.Equal(t, float32(0.0), img.Channel(2)[i])
		assert.Equal(t, float32(1.0), img.Channel(3)[i])
	}
}

func TestDecodeBlocks_NV5x_Differs(t *testing.T) {
	// Green interpolation rounds differently on NV5x hardware: the
	// reference gives (2*255+0)/3 = 170, NV5x gives 175.
	var indices uint32
	for i := 0; i < 16; i++ {
		indices |= uint32(2) << (2 * uint(i))
	}
	block := bc1Block(0x07E0, 0x0000, indices)

	ref, err := DecodeBlocks(FormatBC1, DecoderReference, 4, 4, block)
	require.NoError(t, err)
	nv, err := DecodeBlocks(FormatBC1, DecoderNV5x, 4, 4, block)
	require.NoError(t, err)

	assert.Equal(t, float32(170)/255.0, ref.Channel(1)[0])
	assert.Equal(t, float32(175)/255.0, nv.Channel(1)[0])
	assert.Equal(t, float32(1.0), nv.Channel(3)[0])
}

func TestDecodeBlocks_PartialEdgeBlocks(t *testing.T) {
	// 5x3 pixels: 2x1 blocks; out-of-bounds texels are discarded.
	data := make([]byte, 16)
	copy(data[0:8], bc1Block(red565, red565, 0))
	copy(data[8:16], bc1Block(blue565, blue565, 0))

	img, err := DecodeBlocks(FormatBC1, DecoderReference, 5, 3, data)
	require.NoError(t, err)
	require.Equal(t, 5, img.Width())
	require.Equal(t, 3, img.Height())

	assert.Equal(t, float32(1.0), img.Pixel(0, 2, 0), "left block is red")
	assert.Equal(t, float32(0.0), img.Pixel(4, 0, 0), "right block has no red")
	assert.Equal(t, float32(1.0), img.Pixel(4, 0, 2), "right block is blue")
}

func TestDecodeBlocks_Failures(t *testing.T) {
	block := bc1Block(red565, red565, 0)

	_, err := DecodeBlocks(FormatBC7, DecoderReference, 4, 4, make([]byte, 16))
	assert.Equal(t, ErrUnsupportedFormat, ErrorCodeOf(err))

	_, err = DecodeBlocks(FormatRGBA, DecoderReference, 4, 4, make([]byte, 64))
	assert.Equal(t, ErrUnsupportedFormat, ErrorCodeOf(err))

	_, err = DecodeBlocks(FormatBC1, Decoder(99), 4, 4, block)
	assert.Equal(t, ErrBadParam, ErrorCodeOf(err))

	_, err = DecodeBlocks(FormatBC1, DecoderReference, 8, 8, block)
	assert.Equal(t, ErrTruncatedData, ErrorCodeOf(err), "four blocks needed, one supplied")

	_, err = DecodeBlocks(FormatBC1, DecoderReference, 0, 4, block)
	assert.Equal(t, ErrBadParam, ErrorCodeOf(err))
}
