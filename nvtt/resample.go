package nvtt

import "math"

// ResizeFilter selects the reconstruction kernel used for resizing.
type ResizeFilter uint32

const (
	ResizeFilterBox ResizeFilter = iota
	ResizeFilterTriangle
	ResizeFilterKaiser
	ResizeFilterMitchell
)

// MipmapFilter selects the kernel used for mipmap-chain generation.
type MipmapFilter uint32

const (
	MipmapFilterBox MipmapFilter = iota
	MipmapFilterTriangle
	MipmapFilterKaiser
)

// ResizeFilter returns the equivalent resize kernel selector.
func (f MipmapFilter) ResizeFilter() ResizeFilter {
	return ResizeFilter(f)
}

// DefaultFilterWidthAndParams returns the default support radius and shape
// parameters for a kernel: box 0.5, triangle 1.0, Kaiser 3.0 {alpha 4,
// stretch 1}, Mitchell 2.0 {B 1/3, C 1/3}.
func DefaultFilterWidthAndParams(filter ResizeFilter) (float32, [2]float32) {
	switch filter {
	case ResizeFilterBox:
		return 0.5, [2]float32{}
	case ResizeFilterTriangle:
		return 1.0, [2]float32{}
	case ResizeFilterKaiser:
		return 3.0, [2]float32{4.0, 1.0}
	default:
		return 2.0, [2]float32{1.0 / 3.0, 1.0 / 3.0}
	}
}

// kernelFunc evaluates a reconstruction kernel at x. The kernel does not
// need to be normalized; polyphase rows are normalized after sampling.
type kernelFunc func(x float32) float32

// compileKernel resolves the kernel selector and shape parameters once per
// resample call, so the inner loops stay free of per-sample dispatch.
func compileKernel(filter ResizeFilter, width float32, params [2]float32) kernelFunc {
	switch filter {
	case ResizeFilterBox:
		return func(x float32) float32 {
			if x < 0 {
				x = -x
			}
			if x <= width {
				return 1.0
			}
			return 0.0
		}

	case ResizeFilterTriangle:
		return func(x float32) float32 {
			if x < 0 {
				x = -x
			}
			if x < width {
				return width - x
			}
			return 0.0
		}

	case ResizeFilterKaiser:
		alpha := params[0]
		stretch := params[1]
		ibessel := 1.0 / bessel0(alpha)
		return func(x float32) float32 {
			sincValue := sincf(math.Pi * x * stretch)
			t := x / width
			if t2 := 1 - t*t; t2 >= 0 {
				return sincValue * bessel0(alpha*float32(math.Sqrt(float64(t2)))) * ibessel
			}
			return 0.0
		}

	default: // ResizeFilterMitchell
		b, c := params[0], params[1]
		p0 := (6.0 - 2.0*b) / 6.0
		p2 := (-18.0 + 12.0*b + 6.0*c) / 6.0
		p3 := (12.0 - 9.0*b - 6.0*c) / 6.0
		q0 := (8.0*b + 24.0*c) / 6.0
		q1 := (-12.0*b - 48.0*c) / 6.0
		q2 := (6.0*b + 30.0*c) / 6.0
		q3 := (-b - 6.0*c) / 6.0
		return func(x float32) float32 {
			if x < 0 {
				x = -x
			}
			if x < 1.0 {
				return p0 + x*x*(p2+x*p3)
			}
			if x < 2.0 {
				return q0 + x*(q1+x*(q2+x*q3))
			}
			return 0.0
		}
	}
}

func sincf(x float32) float32 {
	if x < 1e-4 && x > -1e-4 {
		// Taylor expansion around 0.
		return 1.0 + x*x*(-1.0/6.0+x*x*(1.0/120.0))
	}
	return float32(math.Sin(float64(x))) / x
}

// bessel0 is the zeroth-order modified Bessel function of the first kind.
func bessel0(x float32) float32 {
	const epsilonRatio = 1e-6
	xh := float64(0.5 * x)
	sum := 1.0
	pow := 1.0
	k := 0
	ds := 1.0
	for ds > sum*epsilonRatio {
		k++
		pow = pow * (xh / float64(k))
		ds = pow * pow
		sum += ds
	}
	return float32(sum)
}

// polyphaseKernel holds one normalized weight row per destination sample of
// a separable resampling pass.
type polyphaseKernel struct {
	length     int
	windowSize int
	width      float32
	weights    []float32
}

// sampleBox integrates the kernel over a unit source-pixel footprint with
// midpoint sampling.
func sampleBox(k kernelFunc, x, scale float32, samples int) float32 {
	sum := float32(0)
	isamples := 1.0 / float32(samples)
	for s := 0; s < samples; s++ {
		p := (x + (float32(s)+0.5)*isamples) * scale
		sum += k(p)
	}
	return sum * isamples
}

func newPolyphaseKernel(filter ResizeFilter, filterWidth float32, params [2]float32, srcLength, dstLength int) *polyphaseKernel {
	k := compileKernel(filter, filterWidth, params)

	scale := float32(dstLength) / float32(srcLength)
	iscale := 1.0 / scale
	samples := 32
	width := filterWidth
	if scale > 1 {
		// Upsampling: evaluate the kernel at source-pixel centers.
		samples = 1
		scale = 1
	} else {
		// Downsampling: stretch the kernel support over the source
		// footprint of one destination pixel.
		width = filterWidth * iscale
	}

	pk := &polyphaseKernel{
		length:     dstLength,
		windowSize: int(math.Ceil(float64(width*2))) + 1,
		width:      width,
	}
	pk.weights = make([]float32, pk.windowSize*pk.length)

	for i := 0; i < dstLength; i++ {
		center := (float32(i) + 0.5) * iscale
		left := int(math.Floor(float64(center - width)))

		row := pk.weights[i*pk.windowSize : (i+1)*pk.windowSize]
		total := float32(0)
		for j := 0; j < pk.windowSize; j++ {
			sample := sampleBox(k, float32(left+j)-center, scale, samples)
			row[j] = sample
			total += sample
		}
		for j := range row {
			row[j] /= total
		}
	}
	return pk
}

func (pk *polyphaseKernel) firstTap(i int, iscale float32) int {
	center := (float32(i) + 0.5) * iscale
	return int(math.Floor(float64(center - pk.width)))
}

// applyKernelHorizontal filters row y of channel c into out (len pk.length).
func (img *FloatImage) applyKernelHorizontal(pk *polyphaseKernel, y, c int, wm WrapMode, out []float32) {
	iscale := float32(img.width) / float32(pk.length)
	channel := img.Channel(c)
	rowBase := wrapCoord(y, img.height, wm) * img.width

	for i := 0; i < pk.length; i++ {
		left := pk.firstTap(i, iscale)
		row := pk.weights[i*pk.windowSize : (i+1)*pk.windowSize]

		sum := float32(0)
		for j, w := range row {
			idx := rowBase + wrapCoord(left+j, img.width, wm)
			sum += w * channel[idx]
		}
		out[i] = sum
	}
}

// applyKernelVertical filters column x of channel c into out (len pk.length).
func (img *FloatImage) applyKernelVertical(pk *polyphaseKernel, x, c int, wm WrapMode, out []float32) {
	iscale := float32(img.height) / float32(pk.length)
	channel := img.Channel(c)
	col := wrapCoord(x, img.width, wm)

	for i := 0; i < pk.length; i++ {
		left := pk.firstTap(i, iscale)
		row := pk.weights[i*pk.windowSize : (i+1)*pk.windowSize]

		sum := float32(0)
		for j, w := range row {
			idx := wrapCoord(left+j, img.height, wm)*img.width + col
			sum += w * channel[idx]
		}
		out[i] = sum
	}
}

// Alpha-weighted variants: each tap's weight is multiplied by the sample's
// alpha (plus 1/256 so fully transparent regions still contribute), and the
// result is renormalized by the accumulated weight.

func (img *FloatImage) applyKernelHorizontalWeighted(pk *polyphaseKernel, y, c, alphaChannel int, wm WrapMode, out []float32) {
	iscale := float32(img.width) / float32(pk.length)
	channel := img.Channel(c)
	alpha := img.Channel(alphaChannel)
	rowBase := wrapCoord(y, img.height, wm) * img.width

	for i := 0; i < pk.length; i++ {
		left := pk.firstTap(i, iscale)
		row := pk.weights[i*pk.windowSize : (i+1)*pk.windowSize]

		norm := float32(0)
		sum := float32(0)
		for j, w := range row {
			idx := rowBase + wrapCoord(left+j, img.width, wm)
			w *= alpha[idx] + 1.0/256.0
			norm += w
			sum += w * channel[idx]
		}
		out[i] = sum / norm
	}
}

func (img *FloatImage) applyKernelVerticalWeighted(pk *polyphaseKernel, x, c, alphaChannel int, wm WrapMode, out []float32) {
	iscale := float32(img.height) / float32(pk.length)
	channel := img.Channel(c)
	alpha := img.Channel(alphaChannel)
	col := wrapCoord(x, img.width, wm)

	for i := 0; i < pk.length; i++ {
		left := pk.firstTap(i, iscale)
		row := pk.weights[i*pk.windowSize : (i+1)*pk.windowSize]

		norm := float32(0)
		sum := float32(0)
		for j, w := range row {
			idx := wrapCoord(left+j, img.height, wm)*img.width + col
			w *= alpha[idx] + 1.0/256.0
			norm += w
			sum += w * channel[idx]
		}
		out[i] = sum / norm
	}
}

// Resample returns a new image filtered to (w,h) with the given kernel.
// Samples outside the image are resolved with wm. The source is unchanged.
func (img *FloatImage) Resample(filter ResizeFilter, filterWidth float32, params [2]float32, w, h int, wm WrapMode) *FloatImage {
	xk := newPolyphaseKernel(filter, filterWidth, params, img.width, w)
	yk := newPolyphaseKernel(filter, filterWidth, params, img.height, h)

	tmp := newFloatImage(img.channels, w, img.height)
	dst := newFloatImage(img.channels, w, h)
	column := make([]float32, h)

	for c := 0; c < img.channels; c++ {
		for y := 0; y < img.height; y++ {
			img.applyKernelHorizontal(xk, y, c, wm, tmp.Channel(c)[y*w:y*w+w])
		}
		for x := 0; x < w; x++ {
			tmp.applyKernelVertical(yk, x, c, wm, column)
			ch := dst.Channel(c)
			for y := 0; y < h; y++ {
				ch[y*w+x] = column[y]
			}
		}
	}
	return dst
}

// ResampleWeighted is Resample with alpha-weighted filtering: every channel
// except alphaChannel is filtered with alpha as an importance weight, while
// alphaChannel itself is filtered unweighted.
func (img *FloatImage) ResampleWeighted(filter ResizeFilter, filterWidth float32, params [2]float32, w, h int, wm WrapMode, alphaChannel int) *FloatImage {
	xk := newPolyphaseKernel(filter, filterWidth, params, img.width, w)
	yk := newPolyphaseKernel(filter, filterWidth, params, img.height, h)

	tmp := newFloatImage(img.channels, w, img.height)
	dst := newFloatImage(img.channels, w, h)
	column := make([]float32, h)

	// The alpha plane is filtered first so the vertical pass of the color
	// channels can weight by the horizontally filtered alpha.
	for y := 0; y < img.height; y++ {
		img.applyKernelHorizontal(xk, y, alphaChannel, wm, tmp.Channel(alphaChannel)[y*w:y*w+w])
	}
	for x := 0; x < w; x++ {
		tmp.applyKernelVertical(yk, x, alphaChannel, wm, column)
		ch := dst.Channel(alphaChannel)
		for y := 0; y < h; y++ {
			ch[y*w+x] = column[y]
		}
	}

	for c := 0; c < img.channels; c++ {
		if c == alphaChannel {
			continue
		}
		for y := 0; y < img.height; y++ {
			img.applyKernelHorizontalWeighted(xk, y, c, alphaChannel, wm, tmp.Channel(c)[y*w:y*w+w])
		}
		for x := 0; x < w; x++ {
			tmp.applyKernelVerticalWeighted(yk, x, c, alphaChannel, wm, column)
			ch := dst.Channel(c)
			for y := 0; y < h; y++ {
				ch[y*w+x] = column[y]
			}
		}
	}
	return dst
}

// DownSample returns the next mipmap level (each dimension halved, floor,
// minimum 1) filtered with the given kernel.
func (img *FloatImage) DownSample(filter ResizeFilter, filterWidth float32, params [2]float32, wm WrapMode) *FloatImage {
	w := max(1, img.width/2)
	h := max(1, img.height/2)
	return img.Resample(filter, filterWidth, params, w, h, wm)
}

// DownSampleWeighted is DownSample with alpha-weighted filtering.
func (img *FloatImage) DownSampleWeighted(filter ResizeFilter, filterWidth float32, params [2]float32, wm WrapMode, alphaChannel int) *FloatImage {
	w := max(1, img.width/2)
	h := max(1, img.height/2)
	return img.ResampleWeighted(filter, filterWidth, params, w, h, wm, alphaChannel)
}

// FastDownSample is the specialized 2x2 box reduction. For even extents it
// produces bit-identical results to DownSample with a box kernel of width
// 0.5: the same 0.5-weighted horizontal pair sum followed by the same
// vertical pair sum.
func (img *FloatImage) FastDownSample() *FloatImage {
	w := max(1, img.width/2)
	h := max(1, img.height/2)
	dst := newFloatImage(img.channels, w, h)

	for c := 0; c < img.channels; c++ {
		src := img.Channel(c)
		out := dst.Channel(c)
		for y := 0; y < h; y++ {
			r0 := src[(2*y)*img.width:]
			r1 := src[min(2*y+1, img.height-1)*img.width:]
			for x := 0; x < w; x++ {
				x0 := 2 * x
				x1 := min(2*x+1, img.width-1)
				top := r0[x0]*0.5 + r0[x1]*0.5
				bot := r1[x0]*0.5 + r1[x1]*0.5
				out[y*w+x] = top*0.5 + bot*0.5
			}
		}
	}
	return dst
}
