package nvtt

import (
	"math"

	"golang.org/x/image/math/f32"
)

func nearEqual(a, b float32) bool {
	d := a - b
	return d < 1e-4 && d > -1e-4
}

// ToLinear exponentiates the color channels by gamma. No-op when gamma is 1.
func (t *TexImage) ToLinear(gamma float32) {
	if t.m.image == nil || nearEqual(gamma, 1.0) {
		return
	}
	t.detach()
	t.m.image.ToLinear(0, 3, gamma)
}

// ToGamma exponentiates the color channels by 1/gamma. No-op when gamma is 1.
func (t *TexImage) ToGamma(gamma float32) {
	if t.m.image == nil || nearEqual(gamma, 1.0) {
		return
	}
	t.detach()
	t.m.image.ToGamma(0, 3, gamma)
}

// Transform applies out = m*in + offset to every pixel across all four
// channels. m is indexed row-then-column as documented by f32.Mat4.
func (t *TexImage) Transform(m f32.Mat4, offset f32.Vec4) {
	if t.m.image == nil {
		return
	}
	t.detach()
	t.m.image.Transform(0, m, offset)
}

// Swizzle permutes or duplicates channels by source index. Indices outside
// [0,3] leave the image unchanged; the identity permutation is a no-op.
func (t *TexImage) Swizzle(r, g, b, a int) {
	if t.m.image == nil {
		return
	}
	if r == 0 && g == 1 && b == 2 && a == 3 {
		return
	}
	if r < 0 || r > 3 || g < 0 || g > 3 || b < 0 || b > 3 || a < 0 || a > 3 {
		return
	}
	t.detach()
	t.m.image.Swizzle(0, r, g, b, a)
}

// ScaleBias applies v*scale+bias to one channel. No-op for scale 1, bias 0.
func (t *TexImage) ScaleBias(channel int, scale, bias float32) {
	if t.m.image == nil || channel < 0 || channel > 3 {
		return
	}
	if nearEqual(scale, 1.0) && nearEqual(bias, 0.0) {
		return
	}
	t.detach()
	t.m.image.ScaleBias(channel, 1, scale, bias)
}

// Clamp clamps one channel to [low, high].
func (t *TexImage) Clamp(channel int, low, high float32) {
	if t.m.image == nil || channel < 0 || channel > 3 {
		return
	}
	t.detach()
	t.m.image.Clamp(channel, 1, low, high)
}

// PackNormal maps unit-vector components from [-1,1] to [0,1] storage.
func (t *TexImage) PackNormal() {
	t.ScaleBias(0, 0.5, 0.5)
	t.ScaleBias(1, 0.5, 0.5)
	t.ScaleBias(2, 0.5, 0.5)
}

// ExpandNormal maps stored normal components from [0,1] back to [-1,1].
func (t *TexImage) ExpandNormal() {
	t.ScaleBias(0, 2.0, -1.0)
	t.ScaleBias(1, 2.0, -1.0)
	t.ScaleBias(2, 2.0, -1.0)
}

// Blend interpolates every pixel toward a constant color by the given factor.
func (t *TexImage) Blend(red, green, blue, alpha, factor float32) {
	if t.m.image == nil {
		return
	}
	t.detach()

	img := t.m.image
	r := img.Channel(0)
	g := img.Channel(1)
	b := img.Channel(2)
	a := img.Channel(3)
	for i := range r {
		r[i] += (red - r[i]) * factor
		g[i] += (green - g[i]) * factor
		b[i] += (blue - b[i]) * factor
		a[i] += (alpha - a[i]) * factor
	}
}

// PremultiplyAlpha multiplies the color channels by alpha.
func (t *TexImage) PremultiplyAlpha() {
	if t.m.image == nil {
		return
	}
	t.detach()

	img := t.m.image
	r := img.Channel(0)
	g := img.Channel(1)
	b := img.Channel(2)
	a := img.Channel(3)
	for i := range r {
		r[i] *= a[i]
		g[i] *= a[i]
		b[i] *= a[i]
	}
}

// ToGreyScale replaces every channel with the weighted luminance sum. The
// weights are normalized to sum to 1.
func (t *TexImage) ToGreyScale(redScale, greenScale, blueScale, alphaScale float32) {
	if t.m.image == nil {
		return
	}
	t.detach()

	sum := redScale + greenScale + blueScale + alphaScale
	redScale /= sum
	greenScale /= sum
	blueScale /= sum
	alphaScale /= sum

	img := t.m.image
	r := img.Channel(0)
	g := img.Channel(1)
	b := img.Channel(2)
	a := img.Channel(3)
	for i := range r {
		grey := r[i]*redScale + g[i]*greenScale + b[i]*blueScale + a[i]*alphaScale
		r[i] = grey
		g[i] = grey
		b[i] = grey
		a[i] = grey
	}
}

// SetBorder writes a constant color to the one-pixel border ring.
func (t *TexImage) SetBorder(r, g, b, a float32) {
	if t.m.image == nil {
		return
	}
	t.detach()

	img := t.m.image
	w := img.width
	h := img.height
	border := [4]float32{r, g, b, a}

	for c := 0; c < 4; c++ {
		ch := img.Channel(c)
		for x := 0; x < w; x++ {
			ch[x] = border[c]
			ch[(h-1)*w+x] = border[c]
		}
		for y := 0; y < h; y++ {
			ch[y*w] = border[c]
			ch[y*w+w-1] = border[c]
		}
	}
}

// Fill writes a constant color to the entire image.
func (t *TexImage) Fill(red, green, blue, alpha float32) {
	if t.m.image == nil {
		return
	}
	t.detach()

	img := t.m.image
	fill := [4]float32{red, green, blue, alpha}
	for c := 0; c < 4; c++ {
		ch := img.Channel(c)
		for i := range ch {
			ch[i] = fill[c]
		}
	}
}

// ScaleAlphaToCoverage rescales alpha so the alpha-test coverage at alphaRef
// approximates coverage, preserving alpha-tested edge density after
// resizing or mipmapping.
func (t *TexImage) ScaleAlphaToCoverage(coverage, alphaRef float32) {
	if t.m.image == nil {
		return
	}
	t.detach()
	t.m.image.ScaleAlphaToCoverage(coverage, alphaRef, 3)
}

// NormalizeRange rescales all four channels so the global sample range
// becomes [0,1], returning the original range. A constant image has no range
// and fails with ErrConstantImage; an already normalized image succeeds
// without mutation.
func (t *TexImage) NormalizeRange() (rangeMin, rangeMax float32, err error) {
	if t.m.image == nil {
		return 0, 0, newError(ErrBadParam, "nvtt: empty image")
	}

	img := t.m.image
	rangeMin = float32(math.Inf(1))
	rangeMax = float32(math.Inf(-1))
	for _, v := range img.data {
		if v < rangeMin {
			rangeMin = v
		}
		if v > rangeMax {
			rangeMax = v
		}
	}

	if rangeMin == rangeMax {
		// Single-color image.
		return 0, 0, newError(ErrConstantImage, "nvtt: image has no value range")
	}
	if rangeMin == 0.0 && rangeMax == 1.0 {
		// Already normalized.
		return rangeMin, rangeMax, nil
	}

	t.detach()
	scale := 1.0 / (rangeMax - rangeMin)
	t.m.image.ScaleBias(0, 4, scale, -rangeMin*scale)
	return rangeMin, rangeMax, nil
}

// rgbmEpsilon avoids division by zero when factoring out the magnitude.
const rgbmEpsilon = 1e-6

// ToRGBM re-encodes HDR color as a normalized RGB direction with the
// max-component magnitude stored in alpha. Color is clamped to [0,1] after
// dividing by colorRange. threshold is accepted for API compatibility and
// currently unused.
func (t *TexImage) ToRGBM(colorRange, threshold float32) {
	if t.m.image == nil {
		return
	}
	t.detach()

	irange := 1.0 / colorRange
	img := t.m.image
	r := img.Channel(0)
	g := img.Channel(1)
	b := img.Channel(2)
	a := img.Channel(3)

	for i := range r {
		cr := clampf(r[i]*irange, 0.0, 1.0)
		cg := clampf(g[i]*irange, 0.0, 1.0)
		cb := clampf(b[i]*irange, 0.0, 1.0)

		m := max(max(cr, cg), max(cb, rgbmEpsilon))

		r[i] = cr / m
		g[i] = cg / m
		b[i] = cb / m
		a[i] = m
	}
}

// FromRGBM inverts ToRGBM: rgb *= a*colorRange, a = 1.
func (t *TexImage) FromRGBM(colorRange float32) {
	if t.m.image == nil {
		return
	}
	t.detach()

	img := t.m.image
	r := img.Channel(0)
	g := img.Channel(1)
	b := img.Channel(2)
	a := img.Channel(3)

	for i := range r {
		m := a[i] * colorRange
		r[i] *= m
		g[i] *= m
		b[i] *= m
		a[i] = 1.0
	}
}

// ToYCoCg converts RGB to YCoCg and stores Co in red, Cg in green, a unit
// scale in blue and Y in alpha. Y lands in [0,1], Co and Cg in [-1,1].
func (t *TexImage) ToYCoCg() {
	if t.m.image == nil {
		return
	}
	t.detach()

	img := t.m.image
	r := img.Channel(0)
	g := img.Channel(1)
	b := img.Channel(2)
	a := img.Channel(3)

	for i := range r {
		cr := r[i]
		cg := g[i]
		cb := b[i]

		y := (2*cg + cr + cb) * 0.25
		co := cr - cb
		cgc := (2*cg - cr - cb) * 0.5

		r[i] = co
		g[i] = cgc
		b[i] = 1.0
		a[i] = y
	}
}

// quantizeCeil quantizes v upward to the given bit depth, never returning a
// value below v.
func quantizeCeil(v float32, bits int) float32 {
	scale := float64(uint32(1)<<uint(bits) - 1)
	q := float32(math.Ceil(float64(v)*scale) / scale)
	for q < v {
		q = math.Nextafter32(q, 2)
	}
	return q
}

// BlockScaleCoCg rescales the chroma of each non-overlapping 4x4 block into
// [-1,1] at the given bit depth and stores the block scale in the blue
// channel. Pixels past the right or bottom edge of a partial block repeat
// the edge sample when computing the scale. threshold is accepted for API
// compatibility and currently unused.
func (t *TexImage) BlockScaleCoCg(bits int, threshold float32) {
	if t.m.image == nil {
		return
	}
	t.detach()

	img := t.m.image
	w := img.width
	h := img.height
	bw := (w + 3) / 4
	bh := (h + 3) / 4

	co := img.Channel(0)
	cg := img.Channel(1)
	bl := img.Channel(2)

	for bj := 0; bj < bh; bj++ {
		for bi := 0; bi < bw; bi++ {
			// Per-block chroma magnitude, floored at 1/256.
			m := float32(1.0 / 256.0)
			for j := 0; j < 4; j++ {
				for i := 0; i < 4; i++ {
					x := min(bi*4+i, w-1)
					y := min(bj*4+j, h-1)
					idx := y*w + x

					m = max(m, absf(co[idx]))
					m = max(m, absf(cg[idx]))
				}
			}

			scale := quantizeCeil(m, bits)

			for j := 0; j < 4; j++ {
				for i := 0; i < 4; i++ {
					x := min(bi*4+i, w-1)
					y := min(bj*4+j, h-1)
					idx := y*w + x

					co[idx] /= scale
					cg[idx] /= scale
					bl[idx] = scale
				}
			}
		}
	}
}

// FromYCoCg converts the ToYCoCg storage layout back to RGB, applying the
// per-pixel chroma scale from the blue channel. The chroma terms are halved
// during reconstruction because ToYCoCg stores Co and Cg at twice the
// analysis amplitude, so the pair inverts exactly.
func (t *TexImage) FromYCoCg() {
	if t.m.image == nil {
		return
	}
	t.detach()

	img := t.m.image
	r := img.Channel(0)
	g := img.Channel(1)
	b := img.Channel(2)
	a := img.Channel(3)

	for i := range r {
		co := r[i] * b[i] * 0.5
		cgc := g[i] * b[i] * 0.5
		y := a[i]

		r[i] = y + co - cgc
		g[i] = y + cgc
		b[i] = y - co - cgc
		a[i] = 1.0
	}
}

// ToLUVW is the vector-length variant of ToRGBM: colors are normalized by
// their euclidean length, which is stored in alpha.
func (t *TexImage) ToLUVW(colorRange float32) {
	if t.m.image == nil {
		return
	}
	t.detach()

	irange := 1.0 / colorRange
	img := t.m.image
	r := img.Channel(0)
	g := img.Channel(1)
	b := img.Channel(2)
	a := img.Channel(3)

	for i := range r {
		cr := clampf(r[i]*irange, 0.0, 1.0)
		cg := clampf(g[i]*irange, 0.0, 1.0)
		cb := clampf(b[i]*irange, 0.0, 1.0)

		l := max(float32(math.Sqrt(float64(cr*cr+cg*cg+cb*cb))), rgbmEpsilon)

		r[i] = cr / l
		g[i] = cg / l
		b[i] = cb / l
		a[i] = l
	}
}

// FromLUVW inverts ToLUVW. Decompression is the same as RGBM.
func (t *TexImage) FromLUVW(colorRange float32) {
	t.FromRGBM(colorRange)
}

// Binarize is declared for API compatibility but intentionally
// unimplemented; it always returns ErrNotImplemented.
func (t *TexImage) Binarize(channel int, threshold float32, dither bool) error {
	return newError(ErrNotImplemented, "nvtt: Binarize is not implemented")
}

// Quantize is declared for API compatibility but intentionally
// unimplemented; it always returns ErrNotImplemented.
func (t *TexImage) Quantize(channel int, bits int, dither bool) error {
	return newError(ErrNotImplemented, "nvtt: Quantize is not implemented")
}

// FlipVertically reverses the row order in place.
func (t *TexImage) FlipVertically() {
	if t.m.image == nil {
		return
	}
	t.detach()
	t.m.image.Flip()
}

// CopyChannel overwrites one of this image's channels with a channel from
// src. Both images must be non-empty and share the same extent, and both
// channel indices must be in [0,3].
func (t *TexImage) CopyChannel(src TexImage, srcChannel, dstChannel int) error {
	if srcChannel < 0 || srcChannel > 3 || dstChannel < 0 || dstChannel > 3 {
		return newError(ErrBadParam, "nvtt: channel index out of range")
	}

	dstImg := t.m.image
	srcImg := src.m.image
	if dstImg == nil || srcImg == nil {
		return newError(ErrBadParam, "nvtt: empty image")
	}
	if dstImg.width != srcImg.width || dstImg.height != srcImg.height {
		return newError(ErrSizeMismatch, "nvtt: image extents differ")
	}

	t.detach()
	copy(t.m.image.Channel(dstChannel), srcImg.Channel(srcChannel))
	return nil
}

func clampf(v, low, high float32) float32 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
