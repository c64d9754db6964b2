package nvtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testImage builds a deterministic 4-channel gradient image.
func testImage(w, h int) *FloatImage {
	img := newFloatImage(4, w, h)
	for c := 0; c < 4; c++ {
		ch := img.Channel(c)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				ch[y*w+x] = float32((x*7+y*13+c*29)%255) / 255.0
			}
		}
	}
	return img
}

func TestDefaultFilterWidthAndParams(t *testing.T) {
	w, _ := DefaultFilterWidthAndParams(ResizeFilterBox)
	assert.Equal(t, float32(0.5), w)
	w, _ = DefaultFilterWidthAndParams(ResizeFilterTriangle)
	assert.Equal(t, float32(1.0), w)
	w, p := DefaultFilterWidthAndParams(ResizeFilterKaiser)
	assert.Equal(t, float32(3.0), w)
	assert.Equal(t, [2]float32{4.0, 1.0}, p)
	w, p = DefaultFilterWidthAndParams(ResizeFilterMitchell)
	assert.Equal(t, float32(2.0), w)
	assert.InDelta(t, 1.0/3.0, p[0], 1e-6)
	assert.InDelta(t, 1.0/3.0, p[1], 1e-6)
}

func TestResample_ConstantImageStaysConstant(t *testing.T) {
	img := newFloatImage(4, 16, 16)
	for c := 0; c < 4; c++ {
		ch := img.Channel(c)
		for i := range ch {
			ch[i] = 0.25
		}
	}

	for _, filter := range []ResizeFilter{ResizeFilterBox, ResizeFilterTriangle, ResizeFilterKaiser, ResizeFilterMitchell} {
		for _, wm := range []WrapMode{WrapClamp, WrapRepeat, WrapMirror} {
			width, params := DefaultFilterWidthAndParams(filter)
			out := img.Resample(filter, width, params, 7, 5, wm)
			require.Equal(t, 7, out.Width())
			require.Equal(t, 5, out.Height())
			for c := 0; c < 4; c++ {
				for i, v := range out.Channel(c) {
					assert.InDelta(t, 0.25, v, 1e-5, "filter %d wm %d channel %d sample %d", filter, wm, c, i)
				}
			}
		}
	}
}

func TestResample_UpsampleInRange(t *testing.T) {
	img := testImage(8, 8)
	out := img.Resample(ResizeFilterTriangle, 1.0, [2]float32{}, 16, 16, WrapClamp)
	require.Equal(t, 16, out.Width())
	require.Equal(t, 16, out.Height())

	// Triangle weights are non-negative, so output stays within input range.
	for c := 0; c < 4; c++ {
		for _, v := range out.Channel(c) {
			assert.GreaterOrEqual(t, v, float32(0.0))
			assert.LessOrEqual(t, v, float32(1.0))
		}
	}
}

func TestFastDownSample_MatchesGeneralBox(t *testing.T) {
	// The 2x2 shortcut must be bit-for-bit identical to the general box
	// path at the default width on even extents.
	for _, size := range [][2]int{{8, 6}, {16, 16}, {2, 2}, {10, 4}} {
		img := testImage(size[0], size[1])

		fast := img.FastDownSample()
		general := img.Resample(ResizeFilterBox, 0.5, [2]float32{}, size[0]/2, size[1]/2, WrapClamp)

		require.Equal(t, general.Width(), fast.Width())
		require.Equal(t, general.Height(), fast.Height())
		for c := 0; c < 4; c++ {
			require.Equal(t, general.Channel(c), fast.Channel(c), "size %v channel %d", size, c)
		}
	}
}

func TestFastDownSample_AveragesQuads(t *testing.T) {
	img := newFloatImage(4, 2, 2)
	ch := img.Channel(0)
	ch[0], ch[1], ch[2], ch[3] = 0.0, 1.0, 0.5, 0.5

	out := img.FastDownSample()
	require.Equal(t, 1, out.Width())
	require.Equal(t, 1, out.Height())
	assert.Equal(t, float32(0.5), out.Channel(0)[0])
}

func TestDownSample_MinimumExtentIsOne(t *testing.T) {
	img := testImage(4, 1)
	out := img.DownSample(ResizeFilterBox, 0.5, [2]float32{}, WrapClamp)
	assert.Equal(t, 2, out.Width())
	assert.Equal(t, 1, out.Height())

	img = testImage(1, 1)
	out = img.DownSample(ResizeFilterTriangle, 1.0, [2]float32{}, WrapClamp)
	assert.Equal(t, 1, out.Width())
	assert.Equal(t, 1, out.Height())
}

func TestResampleWeighted_FavorsOpaquePixels(t *testing.T) {
	// Left half bright red and opaque, right half dark and transparent:
	// the weighted average leans strongly toward the opaque color.
	img := newFloatImage(4, 8, 8)
	r := img.Channel(0)
	a := img.Channel(3)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 {
				r[y*8+x] = 1.0
				a[y*8+x] = 1.0
			} else {
				r[y*8+x] = 0.0
				a[y*8+x] = 0.0
			}
		}
	}

	weighted := img.ResampleWeighted(ResizeFilterBox, 0.5, [2]float32{}, 1, 1, WrapClamp, 3)
	unweighted := img.Resample(ResizeFilterBox, 0.5, [2]float32{}, 1, 1, WrapClamp)

	assert.InDelta(t, 0.5, unweighted.Channel(0)[0], 1e-5)
	assert.Greater(t, weighted.Channel(0)[0], float32(0.95), "alpha weighting should dominate with opaque red")
	// Alpha itself is filtered unweighted.
	assert.InDelta(t, 0.5, weighted.Channel(3)[0], 1e-5)
}

func TestWrapCoord(t *testing.T) {
	assert.Equal(t, 0, wrapCoord(-3, 8, WrapClamp))
	assert.Equal(t, 7, wrapCoord(11, 8, WrapClamp))
	assert.Equal(t, 5, wrapCoord(-3, 8, WrapRepeat))
	assert.Equal(t, 3, wrapCoord(11, 8, WrapRepeat))
	assert.Equal(t, 3, wrapCoord(-3, 8, WrapMirror))
	assert.Equal(t, 3, wrapCoord(11, 8, WrapMirror))
	assert.Equal(t, 0, wrapCoord(5, 1, WrapMirror))
}
