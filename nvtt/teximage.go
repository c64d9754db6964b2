package nvtt

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// InputFormat identifies the layout of raw pixel data passed to SetImage2D.
type InputFormat uint32

const (
	// InputFormatBGRA8 is 8-bit interleaved BGRA.
	InputFormatBGRA8 InputFormat = iota
	// InputFormatRGBA16F is 16-bit float interleaved RGBA, little endian.
	InputFormatRGBA16F
	// InputFormatRGBA32F is 32-bit float interleaved RGBA, little endian.
	InputFormatRGBA32F
)

type texImagePrivate struct {
	refs atomic.Int32

	image       *FloatImage // nil for an empty handle
	wrapMode    WrapMode
	alphaMode   AlphaMode
	isNormalMap bool
}

func (m *texImagePrivate) clone() *texImagePrivate {
	c := &texImagePrivate{
		wrapMode:    m.wrapMode,
		alphaMode:   m.alphaMode,
		isNormalMap: m.isNormalMap,
	}
	if m.image != nil {
		c.image = m.image.Clone()
	}
	c.refs.Store(1)
	return c
}

// TexImage is a shared-ownership handle to one FloatImage plus per-image
// metadata. Handles duplicated with Clone share the underlying image until
// one of them is mutated; every mutator detaches first, so a mutation is
// never observable through another handle.
//
// A TexImage must be duplicated with Clone, not by copying the struct:
// plain copies share state without the reference bookkeeping that makes
// detach-on-write safe.
//
// Handles are not safe for concurrent mutation; callers serialize access or
// give each goroutine its own Clone.
type TexImage struct {
	m *texImagePrivate
}

// NewTexImage returns an empty handle.
func NewTexImage() TexImage {
	m := &texImagePrivate{}
	m.refs.Store(1)
	return TexImage{m: m}
}

// Clone returns a new handle sharing this handle's image and metadata.
func (t TexImage) Clone() TexImage {
	t.m.refs.Add(1)
	return TexImage{m: t.m}
}

// detach ensures exclusive ownership of the private state, cloning it if it
// is shared with another handle.
func (t *TexImage) detach() {
	if t.m.refs.Load() > 1 {
		c := t.m.clone()
		t.m.refs.Add(-1)
		t.m = c
	}
}

// SetWrapMode sets the edge-wrap policy used by resampling.
func (t *TexImage) SetWrapMode(wm WrapMode) {
	if t.m.wrapMode != wm {
		t.detach()
		t.m.wrapMode = wm
	}
}

// SetAlphaMode sets how the alpha channel is interpreted.
func (t *TexImage) SetAlphaMode(am AlphaMode) {
	if t.m.alphaMode != am {
		t.detach()
		t.m.alphaMode = am
	}
}

// SetNormalMap flags the image as a packed normal map.
func (t *TexImage) SetNormalMap(isNormalMap bool) {
	if t.m.isNormalMap != isNormalMap {
		t.detach()
		t.m.isNormalMap = isNormalMap
	}
}

// Width returns the image width, or 0 for an empty handle.
func (t TexImage) Width() int {
	if t.m.image != nil {
		return t.m.image.width
	}
	return 0
}

// Height returns the image height, or 0 for an empty handle.
func (t TexImage) Height() int {
	if t.m.image != nil {
		return t.m.image.height
	}
	return 0
}

// Depth returns 1 for a 2D image, or 0 for an empty handle.
func (t TexImage) Depth() int {
	if t.m.image != nil {
		return 1
	}
	return 0
}

func (t TexImage) WrapMode() WrapMode   { return t.m.wrapMode }
func (t TexImage) AlphaMode() AlphaMode { return t.m.alphaMode }
func (t TexImage) IsNormalMap() bool    { return t.m.isNormalMap }

// CountMipmaps returns the mipmap chain length down to 1x1, or 0 for an
// empty handle.
func (t TexImage) CountMipmaps() int {
	if t.m.image == nil {
		return 0
	}
	return CountMipmaps(t.m.image.width, t.m.image.height, 1)
}

// AlphaTestCoverage returns the fraction of pixels whose alpha exceeds
// alphaRef, or 0 for an empty handle.
func (t TexImage) AlphaTestCoverage(alphaRef float32) float32 {
	if t.m.image == nil {
		return 0.0
	}
	return t.m.image.AlphaTestCoverage(alphaRef, 3)
}

// Average returns the mean of one channel, or 0 for an empty handle or an
// out-of-range channel.
func (t TexImage) Average(channel int) float32 {
	if t.m.image == nil || channel < 0 || channel >= t.m.image.channels {
		return 0.0
	}
	sum := float32(0)
	ch := t.m.image.Channel(channel)
	for _, v := range ch {
		sum += v
	}
	return sum / float32(len(ch))
}

// Data returns one channel's planar sample array, or nil for an empty
// handle. The returned slice aliases the handle's image and must be treated
// as read-only; writes would be visible through every sharing handle.
func (t TexImage) Data(channel int) []float32 {
	if t.m.image == nil || channel < 0 || channel >= t.m.image.channels {
		return nil
	}
	return t.m.image.Channel(channel)
}

// SetImage2D replaces the handle's contents with raw interleaved pixel data.
func (t *TexImage) SetImage2D(format InputFormat, w, h int, data []byte) error {
	if w <= 0 || h <= 0 {
		return newError(ErrBadParam, "nvtt: invalid image dimensions")
	}

	var bytesPerPixel int
	switch format {
	case InputFormatBGRA8:
		bytesPerPixel = 4
	case InputFormatRGBA16F:
		bytesPerPixel = 8
	case InputFormatRGBA32F:
		bytesPerPixel = 16
	default:
		return newError(ErrBadParam, "nvtt: invalid input format")
	}
	if len(data) < w*h*bytesPerPixel {
		return newError(ErrTruncatedData, "nvtt: pixel data too short")
	}

	img := newFloatImage(4, w, h)
	r := img.Channel(0)
	g := img.Channel(1)
	b := img.Channel(2)
	a := img.Channel(3)
	count := w * h

	switch format {
	case InputFormatBGRA8:
		for i := 0; i < count; i++ {
			b[i] = float32(data[4*i+0]) / 255.0
			g[i] = float32(data[4*i+1]) / 255.0
			r[i] = float32(data[4*i+2]) / 255.0
			a[i] = float32(data[4*i+3]) / 255.0
		}
	case InputFormatRGBA16F:
		for i := 0; i < count; i++ {
			r[i] = halfToFloat32(binary.LittleEndian.Uint16(data[8*i+0:]))
			g[i] = halfToFloat32(binary.LittleEndian.Uint16(data[8*i+2:]))
			b[i] = halfToFloat32(binary.LittleEndian.Uint16(data[8*i+4:]))
			a[i] = halfToFloat32(binary.LittleEndian.Uint16(data[8*i+6:]))
		}
	case InputFormatRGBA32F:
		for i := 0; i < count; i++ {
			r[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[16*i+0:]))
			g[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[16*i+4:]))
			b[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[16*i+8:]))
			a[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[16*i+12:]))
		}
	}

	t.detach()
	t.m.image = img
	return nil
}

// SetImage2DPlanar replaces the handle's contents with per-channel planar
// buffers. For InputFormatBGRA8 each buffer holds w*h bytes; for the float
// formats, w*h little-endian 16- or 32-bit values.
func (t *TexImage) SetImage2DPlanar(format InputFormat, w, h int, r, g, b, a []byte) error {
	if w <= 0 || h <= 0 {
		return newError(ErrBadParam, "nvtt: invalid image dimensions")
	}

	var bytesPerSample int
	switch format {
	case InputFormatBGRA8:
		bytesPerSample = 1
	case InputFormatRGBA16F:
		bytesPerSample = 2
	case InputFormatRGBA32F:
		bytesPerSample = 4
	default:
		return newError(ErrBadParam, "nvtt: invalid input format")
	}
	count := w * h
	for _, plane := range [][]byte{r, g, b, a} {
		if len(plane) < count*bytesPerSample {
			return newError(ErrTruncatedData, "nvtt: pixel data too short")
		}
	}

	img := newFloatImage(4, w, h)
	planes := [][]byte{r, g, b, a}
	for c := 0; c < 4; c++ {
		dst := img.Channel(c)
		src := planes[c]
		switch format {
		case InputFormatBGRA8:
			for i := 0; i < count; i++ {
				dst[i] = float32(src[i]) / 255.0
			}
		case InputFormatRGBA16F:
			for i := 0; i < count; i++ {
				dst[i] = halfToFloat32(binary.LittleEndian.Uint16(src[2*i:]))
			}
		case InputFormatRGBA32F:
			for i := 0; i < count; i++ {
				dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
			}
		}
	}

	t.detach()
	t.m.image = img
	return nil
}

// SetImage2DCompressed replaces the handle's contents by decoding
// block-compressed data. The handle is left unchanged on failure.
func (t *TexImage) SetImage2DCompressed(format Format, decoder Decoder, w, h int, data []byte) error {
	img, err := DecodeBlocks(format, decoder, w, h, data)
	if err != nil {
		return err
	}
	t.detach()
	t.m.image = img
	return nil
}

// Resize filters the image to (w,h) with the kernel's default width and
// shape parameters. Resizing to the current size is a no-op.
func (t *TexImage) Resize(w, h int, filter ResizeFilter) {
	width, params := DefaultFilterWidthAndParams(filter)
	t.ResizeWithParams(w, h, filter, width, params)
}

// ResizeWithParams filters the image to (w,h) with an explicit support
// radius and kernel shape parameters. When the handle's alpha mode is
// transparency, color channels are filtered with alpha weighting.
func (t *TexImage) ResizeWithParams(w, h int, filter ResizeFilter, filterWidth float32, params [2]float32) {
	img := t.m.image
	if img == nil || (w == img.width && h == img.height) {
		return
	}

	t.detach()
	img = t.m.image
	wm := t.m.wrapMode

	if t.m.alphaMode == AlphaModeTransparency {
		t.m.image = img.ResampleWeighted(filter, filterWidth, params, w, h, wm, 3)
	} else {
		t.m.image = img.Resample(filter, filterWidth, params, w, h, wm)
	}
}

// ResizeMax scales the image down so its largest extent is at most
// maxExtent, preserving aspect ratio and applying roundMode.
func (t *TexImage) ResizeMax(maxExtent int, roundMode RoundMode, filter ResizeFilter) {
	width, params := DefaultFilterWidthAndParams(filter)
	t.ResizeMaxWithParams(maxExtent, roundMode, filter, width, params)
}

// ResizeMaxWithParams is ResizeMax with explicit kernel parameters.
func (t *TexImage) ResizeMaxWithParams(maxExtent int, roundMode RoundMode, filter ResizeFilter, filterWidth float32, params [2]float32) {
	if t.m.image == nil {
		return
	}
	w, h, _ := GetTargetExtent(t.m.image.width, t.m.image.height, 1, maxExtent, roundMode, TextureType2D)
	t.ResizeWithParams(w, h, filter, filterWidth, params)
}

// BuildNextMipmap replaces the image with the next mipmap level using the
// kernel's default parameters. It returns false, leaving the image
// unchanged, when the handle is empty or either extent is already 1.
func (t *TexImage) BuildNextMipmap(filter MipmapFilter) bool {
	width, params := DefaultFilterWidthAndParams(filter.ResizeFilter())
	return t.BuildNextMipmapWithParams(filter, width, params)
}

// BuildNextMipmapWithParams is BuildNextMipmap with explicit kernel
// parameters. The default box kernel on an even-sized opaque image takes the
// specialized 2x2 reduction, which is numerically identical to the general
// box path.
func (t *TexImage) BuildNextMipmapWithParams(filter MipmapFilter, filterWidth float32, params [2]float32) bool {
	img := t.m.image
	if img == nil || img.width == 1 || img.height == 1 {
		return false
	}

	t.detach()
	img = t.m.image
	wm := t.m.wrapMode

	if t.m.alphaMode == AlphaModeTransparency {
		t.m.image = img.DownSampleWeighted(filter.ResizeFilter(), filterWidth, params, wm, 3)
	} else if filter == MipmapFilterBox && filterWidth == 0.5 && img.width%2 == 0 && img.height%2 == 0 {
		t.m.image = img.FastDownSample()
	} else {
		t.m.image = img.DownSample(filter.ResizeFilter(), filterWidth, params, wm)
	}
	return true
}
