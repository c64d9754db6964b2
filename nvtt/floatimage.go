package nvtt

import (
	"math"

	"golang.org/x/image/math/f32"
)

// WrapMode selects how samples outside the image bounds are resolved.
type WrapMode uint32

const (
	WrapClamp WrapMode = iota
	WrapRepeat
	WrapMirror
)

// AlphaMode describes how the alpha channel of an image is interpreted.
type AlphaMode uint32

const (
	AlphaModeNone AlphaMode = iota
	AlphaModeTransparency
	AlphaModePremultiplied
)

// FloatImage is a planar floating-point pixel buffer: channelCount contiguous
// arrays of width*height float32 samples. Pixel (x,y) of channel c lives at
// offset y*width+x within channel c's array.
type FloatImage struct {
	channels int
	width    int
	height   int
	data     []float32
}

func newFloatImage(channels, width, height int) *FloatImage {
	return &FloatImage{
		channels: channels,
		width:    width,
		height:   height,
		data:     make([]float32, channels*width*height),
	}
}

// Clone returns a deep copy of the image.
func (img *FloatImage) Clone() *FloatImage {
	c := &FloatImage{
		channels: img.channels,
		width:    img.width,
		height:   img.height,
		data:     make([]float32, len(img.data)),
	}
	copy(c.data, img.data)
	return c
}

// Width returns the image width in pixels.
func (img *FloatImage) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *FloatImage) Height() int { return img.height }

// Channels returns the channel count.
func (img *FloatImage) Channels() int { return img.channels }

// Channel returns channel c's sample array, width*height floats long.
func (img *FloatImage) Channel(c int) []float32 {
	count := img.width * img.height
	return img.data[c*count : (c+1)*count]
}

// Pixel returns the sample at (x,y) in channel c.
func (img *FloatImage) Pixel(x, y, c int) float32 {
	return img.data[c*img.width*img.height+y*img.width+x]
}

// SetPixel stores a sample at (x,y) in channel c.
func (img *FloatImage) SetPixel(x, y, c int, v float32) {
	img.data[c*img.width*img.height+y*img.width+x] = v
}

func clampCoord(x, n int) int {
	if x < 0 {
		return 0
	}
	if x >= n {
		return n - 1
	}
	return x
}

func repeatCoord(x, n int) int {
	x %= n
	if x < 0 {
		x += n
	}
	return x
}

func mirrorCoord(x, n int) int {
	if n == 1 {
		return 0
	}
	if x < 0 {
		x = -x
	}
	for x >= n {
		x = 2*n - x - 2
		if x < 0 {
			x = -x
		}
	}
	return x
}

func wrapCoord(x, n int, wm WrapMode) int {
	switch wm {
	case WrapRepeat:
		return repeatCoord(x, n)
	case WrapMirror:
		return mirrorCoord(x, n)
	default:
		return clampCoord(x, n)
	}
}

// ScaleBias applies s*x+b to num channels starting at base.
func (img *FloatImage) ScaleBias(base, num int, scale, bias float32) {
	for c := base; c < base+num; c++ {
		ch := img.Channel(c)
		for i, v := range ch {
			ch[i] = v*scale + bias
		}
	}
}

// Clamp clamps num channels starting at base to [low, high].
func (img *FloatImage) Clamp(base, num int, low, high float32) {
	for c := base; c < base+num; c++ {
		ch := img.Channel(c)
		for i, v := range ch {
			if v < low {
				ch[i] = low
			} else if v > high {
				ch[i] = high
			}
		}
	}
}

// ToLinear exponentiates num channels starting at base by gamma.
func (img *FloatImage) ToLinear(base, num int, gamma float32) {
	img.exponentiate(base, num, gamma)
}

// ToGamma exponentiates num channels starting at base by 1/gamma.
func (img *FloatImage) ToGamma(base, num int, gamma float32) {
	img.exponentiate(base, num, 1.0/gamma)
}

func (img *FloatImage) exponentiate(base, num int, power float32) {
	for c := base; c < base+num; c++ {
		ch := img.Channel(c)
		for i, v := range ch {
			if v < 0 {
				v = 0
			}
			ch[i] = float32(math.Pow(float64(v), float64(power)))
		}
	}
}

// Transform applies out = m*in + offset to every pixel, starting at channel
// base. m is indexed row-then-column as documented by f32.Mat4.
func (img *FloatImage) Transform(base int, m f32.Mat4, offset f32.Vec4) {
	r := img.Channel(base + 0)
	g := img.Channel(base + 1)
	b := img.Channel(base + 2)
	a := img.Channel(base + 3)

	for i := range r {
		ir, ig, ib, ia := r[i], g[i], b[i], a[i]
		r[i] = m[0]*ir + m[1]*ig + m[2]*ib + m[3]*ia + offset[0]
		g[i] = m[4]*ir + m[5]*ig + m[6]*ib + m[7]*ia + offset[1]
		b[i] = m[8]*ir + m[9]*ig + m[10]*ib + m[11]*ia + offset[2]
		a[i] = m[12]*ir + m[13]*ig + m[14]*ib + m[15]*ia + offset[3]
	}
}

// Swizzle permutes or duplicates the four channels starting at base. Channel
// source indices must be in [0,3].
func (img *FloatImage) Swizzle(base, r, g, b, a int) {
	count := img.width * img.height
	src := [4][]float32{
		img.Channel(base + 0),
		img.Channel(base + 1),
		img.Channel(base + 2),
		img.Channel(base + 3),
	}
	var tmp [4]float32
	for i := 0; i < count; i++ {
		tmp[0] = src[r][i]
		tmp[1] = src[g][i]
		tmp[2] = src[b][i]
		tmp[3] = src[a][i]
		src[0][i] = tmp[0]
		src[1][i] = tmp[1]
		src[2][i] = tmp[2]
		src[3][i] = tmp[3]
	}
}

// Flip reverses the row order of every channel in place.
func (img *FloatImage) Flip() {
	w, h := img.width, img.height
	for c := 0; c < img.channels; c++ {
		ch := img.Channel(c)
		for y := 0; y < h/2; y++ {
			top := ch[y*w : y*w+w]
			bot := ch[(h-1-y)*w : (h-1-y)*w+w]
			for x := 0; x < w; x++ {
				top[x], bot[x] = bot[x], top[x]
			}
		}
	}
}

// AlphaTestCoverage returns the fraction of pixels whose alpha channel
// exceeds alphaRef.
func (img *FloatImage) AlphaTestCoverage(alphaRef float32, alphaChannel int) float32 {
	a := img.Channel(alphaChannel)
	coverage := 0
	for _, v := range a {
		if v > alphaRef {
			coverage++
		}
	}
	return float32(coverage) / float32(len(a))
}

// ScaleAlphaToCoverage rescales the alpha channel so that the alpha-test
// coverage at alphaRef approximates desiredCoverage. The scale is found with
// a binary search over the test threshold.
func (img *FloatImage) ScaleAlphaToCoverage(desiredCoverage, alphaRef float32, alphaChannel int) {
	minAlphaRef := float32(0.0)
	maxAlphaRef := float32(1.0)
	midAlphaRef := float32(0.5)

	for i := 0; i < 10; i++ {
		currentCoverage := img.AlphaTestCoverage(midAlphaRef, alphaChannel)
		if currentCoverage > desiredCoverage {
			minAlphaRef = midAlphaRef
		} else if currentCoverage < desiredCoverage {
			maxAlphaRef = midAlphaRef
		} else {
			break
		}
		midAlphaRef = (minAlphaRef + maxAlphaRef) * 0.5
	}

	alphaScale := alphaRef / midAlphaRef
	img.ScaleBias(alphaChannel, 1, alphaScale, 0.0)
	img.Clamp(alphaChannel, 1, 0.0, 1.0)
}

// expandNormals maps three channels starting at base from [0,1] storage to
// [-1,1] vectors.
func (img *FloatImage) expandNormals(base int) {
	img.ScaleBias(base, 3, 2.0, -1.0)
}

// packNormals maps three channels starting at base from [-1,1] vectors to
// [0,1] storage.
func (img *FloatImage) packNormals(base int) {
	img.ScaleBias(base, 3, 0.5, 0.5)
}

// normalizeVectors renormalizes the 3-vectors stored in three channels
// starting at base to unit length.
func (img *FloatImage) normalizeVectors(base int) {
	x := img.Channel(base + 0)
	y := img.Channel(base + 1)
	z := img.Channel(base + 2)
	for i := range x {
		l := float32(math.Sqrt(float64(x[i]*x[i] + y[i]*y[i] + z[i]*z[i])))
		if l == 0 {
			x[i], y[i], z[i] = 0, 0, 1
			continue
		}
		il := 1.0 / l
		x[i] *= il
		y[i] *= il
		z[i] *= il
	}
}
