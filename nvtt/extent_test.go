package nvtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerOfTwo_Bounds(t *testing.T) {
	for v := uint32(1); v <= 4096; v++ {
		np2 := NextPowerOfTwo(v)
		pp2 := PreviousPowerOfTwo(v)

		require.LessOrEqual(t, pp2, v, "previous power of two must not exceed v=%d", v)
		require.GreaterOrEqual(t, np2, v, "next power of two must not be below v=%d", v)
		require.Equal(t, np2&(np2-1), uint32(0), "next(%d)=%d is not a power of two", v, np2)
		require.Equal(t, pp2&(pp2-1), uint32(0), "previous(%d)=%d is not a power of two", v, pp2)

		nearest := NearestPowerOfTwo(v)
		if np2-v < v-pp2 {
			require.Equal(t, np2, nearest, "v=%d", v)
		} else if np2-v > v-pp2 {
			require.Equal(t, pp2, nearest, "v=%d", v)
		} else {
			// Ties go to the next power of two.
			require.Equal(t, np2, nearest, "v=%d tie", v)
		}
	}
}

func TestPowerOfTwo_Sequence(t *testing.T) {
	// 1 -> 1, 2 -> 2, 3 -> 2, 4 -> 4, 5 -> 4, ...
	prev := []uint32{1, 2, 2, 4, 4, 4, 4, 8, 8}
	for i, want := range prev {
		assert.Equal(t, want, PreviousPowerOfTwo(uint32(i+1)), "previousPowerOfTwo(%d)", i+1)
	}
}

func TestCountMipmaps(t *testing.T) {
	tests := []struct {
		w, h, d int
		want    int
	}{
		{1, 1, 1, 1},
		{256, 256, 1, 9},
		{256, 1, 1, 9},
		{4, 2, 1, 3},
		{5, 3, 1, 3},
		{16, 16, 16, 5},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CountMipmaps(tc.w, tc.h, tc.d), "CountMipmaps(%d,%d,%d)", tc.w, tc.h, tc.d)
	}
}

func TestComputePitch(t *testing.T) {
	assert.Equal(t, 40, ComputePitch(10, 32, 1))
	assert.Equal(t, 12, ComputePitch(10, 8, 4))
	assert.Equal(t, 4, ComputePitch(10, 1, 4))
}

func TestComputeImageSize(t *testing.T) {
	// Uncompressed: d * h * rowPitch.
	assert.Equal(t, 160, ComputeImageSize(10, 4, 1, 32, 1, FormatRGBA))
	assert.Equal(t, 320, ComputeImageSize(10, 4, 2, 32, 1, FormatRGBA))

	// Block compressed: ceil(w/4)*ceil(h/4)*blockByteSize.
	assert.Equal(t, 8, ComputeImageSize(4, 4, 1, 0, 1, FormatDXT1))
	assert.Equal(t, 72, ComputeImageSize(10, 10, 1, 0, 1, FormatDXT1))
	assert.Equal(t, 144, ComputeImageSize(10, 10, 1, 0, 1, FormatDXT5))
	assert.Equal(t, 72, ComputeImageSize(10, 10, 1, 0, 1, FormatBC4))
	assert.Equal(t, 144, ComputeImageSize(10, 10, 1, 0, 1, FormatBC7))
}

func TestBlockByteSize(t *testing.T) {
	for _, f := range []Format{FormatDXT1, FormatDXT1a, FormatDXT1n, FormatBC4, FormatCTX1} {
		assert.Equal(t, 8, BlockByteSize(f), "format %d", f)
	}
	for _, f := range []Format{FormatDXT3, FormatDXT5, FormatDXT5n, FormatBC5, FormatBC6, FormatBC7} {
		assert.Equal(t, 16, BlockByteSize(f), "format %d", f)
	}
	assert.Equal(t, 0, BlockByteSize(FormatRGBA))
}

func TestGetTargetExtent(t *testing.T) {
	t.Run("scale preserves aspect ratio", func(t *testing.T) {
		w, h, d := GetTargetExtent(256, 128, 1, 64, RoundNone, TextureType2D)
		assert.Equal(t, 64, w)
		assert.Equal(t, 32, h)
		assert.Equal(t, 1, d)
	})

	t.Run("no scaling when within bound", func(t *testing.T) {
		w, h, d := GetTargetExtent(100, 60, 1, 256, RoundNone, TextureType2D)
		assert.Equal(t, 100, w)
		assert.Equal(t, 60, h)
		assert.Equal(t, 1, d)
	})

	t.Run("maxExtent clamped to previous power of two when rounding", func(t *testing.T) {
		w, h, _ := GetTargetExtent(512, 512, 1, 100, RoundToNextPowerOfTwo, TextureType2D)
		// Bound rounds down to 64, then the extents round up to 64.
		assert.Equal(t, 64, w)
		assert.Equal(t, 64, h)
	})

	t.Run("cube textures are forced square", func(t *testing.T) {
		for _, tc := range [][2]int{{100, 60}, {7, 12}, {512, 1}} {
			w, h, d := GetTargetExtent(tc[0], tc[1], 1, 0, RoundNone, TextureTypeCube)
			assert.Equal(t, w, h, "cube w==h for input %v", tc)
			assert.Equal(t, 1, d)
		}
	})

	t.Run("round modes", func(t *testing.T) {
		w, _, _ := GetTargetExtent(100, 60, 1, 0, RoundToNextPowerOfTwo, TextureType2D)
		assert.Equal(t, 128, w)
		w, _, _ = GetTargetExtent(100, 60, 1, 0, RoundToPreviousPowerOfTwo, TextureType2D)
		assert.Equal(t, 64, w)
		w, _, _ = GetTargetExtent(100, 60, 1, 0, RoundToNearestPowerOfTwo, TextureType2D)
		assert.Equal(t, 128, w)
	})

	t.Run("minimum extent is 1", func(t *testing.T) {
		w, h, _ := GetTargetExtent(512, 2, 1, 16, RoundNone, TextureType2D)
		assert.Equal(t, 16, w)
		assert.Equal(t, 1, h)
	})
}
