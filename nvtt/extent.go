package nvtt

// Format is a texture pixel or block-compression format.
type Format uint32

const (
	FormatRGB Format = iota
	FormatDXT1
	FormatDXT1a
	FormatDXT3
	FormatDXT5
	FormatDXT5n
	FormatBC4
	FormatBC5
	FormatDXT1n
	FormatCTX1
	FormatBC6
	FormatBC7
)

// Aliases matching the DX10 block-compression names.
const (
	FormatRGBA = FormatRGB
	FormatBC1  = FormatDXT1
	FormatBC1a = FormatDXT1a
	FormatBC2  = FormatDXT3
	FormatBC3  = FormatDXT5
	FormatBC3n = FormatDXT5n
)

// RoundMode selects how extents are rounded to powers of two.
type RoundMode uint32

const (
	RoundNone RoundMode = iota
	RoundToNextPowerOfTwo
	RoundToNearestPowerOfTwo
	RoundToPreviousPowerOfTwo
)

// TextureType distinguishes 2D, cube and volume textures for extent rules.
type TextureType uint32

const (
	TextureType2D TextureType = iota
	TextureTypeCube
	TextureType3D
)

// NextPowerOfTwo returns the smallest power of two >= v. v must be > 0.
func NextPowerOfTwo(v uint32) uint32 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	return v + 1
}

// PreviousPowerOfTwo returns the largest power of two <= v.
//
// 1 -> 1, 2 -> 2, 3 -> 2, 4 -> 4, 5 -> 4, ...
func PreviousPowerOfTwo(v uint32) uint32 {
	return NextPowerOfTwo(v+1) / 2
}

// NearestPowerOfTwo returns whichever of the next and previous powers of two
// is closer to v. Ties go to the next power of two.
func NearestPowerOfTwo(v uint32) uint32 {
	np2 := NextPowerOfTwo(v)
	pp2 := PreviousPowerOfTwo(v)
	if np2-v <= v-pp2 {
		return np2
	}
	return pp2
}

// CountMipmaps returns the number of mipmap levels from (w,h,d) down to
// (1,1,1) inclusive, halving each dimension per level.
func CountMipmaps(w, h, d int) int {
	mipmap := 0
	for w != 1 || h != 1 || d != 1 {
		w = max(1, w/2)
		h = max(1, h/2)
		d = max(1, d/2)
		mipmap++
	}
	return mipmap + 1
}

// BlockByteSize returns the compressed block size in bytes for format, or 0
// for uncompressed formats.
func BlockByteSize(format Format) int {
	switch format {
	case FormatDXT1, FormatDXT1a, FormatDXT1n, FormatBC4, FormatCTX1:
		return 8
	case FormatDXT3, FormatDXT5, FormatDXT5n, FormatBC5, FormatBC6, FormatBC7:
		return 16
	}
	return 0
}

// ComputePitch returns the row byte pitch of a w-pixel row at the given bits
// per pixel, rounded up to alignment bytes. alignment must be a power of two.
func ComputePitch(w, bitsPerPixel, alignment int) int {
	return ((w*bitsPerPixel+7)/8 + alignment - 1) & ^(alignment - 1)
}

// ComputeImageSize returns the byte size of a (w,h,d) image: row-pitched for
// uncompressed formats, block-counted for block-compressed formats.
func ComputeImageSize(w, h, d, bitsPerPixel, alignment int, format Format) int {
	if format == FormatRGBA {
		return d * h * ComputePitch(w, bitsPerPixel, alignment)
	}
	// DXT and VTC differ for 3D textures; this is the DXT rule.
	return ((w + 3) / 4) * ((h + 3) / 4) * BlockByteSize(format)
}

// GetTargetExtent scales (w,h,d) so the largest dimension does not exceed
// maxExtent, preserving aspect ratio, then applies the texture-type extent
// rules and rounds each dimension per roundMode. All inputs must be > 0.
func GetTargetExtent(w, h, d, maxExtent int, roundMode RoundMode, textureType TextureType) (int, int, int) {
	if roundMode != RoundNone && maxExtent > 0 {
		// The rounded max extent must never exceed the caller's bound.
		maxExtent = int(PreviousPowerOfTwo(uint32(maxExtent)))
	}

	// Scale extents without changing the aspect ratio.
	m := max(max(w, h), d)
	if maxExtent > 0 && m > maxExtent {
		w = max((w*maxExtent)/m, 1)
		h = max((h*maxExtent)/m, 1)
		d = max((d*maxExtent)/m, 1)
	}

	if textureType == TextureType2D {
		d = 1
	} else if textureType == TextureTypeCube {
		w = (w + h) / 2
		h = w
		d = 1
	}

	switch roundMode {
	case RoundToNextPowerOfTwo:
		w = int(NextPowerOfTwo(uint32(w)))
		h = int(NextPowerOfTwo(uint32(h)))
		d = int(NextPowerOfTwo(uint32(d)))
	case RoundToNearestPowerOfTwo:
		w = int(NearestPowerOfTwo(uint32(w)))
		h = int(NearestPowerOfTwo(uint32(h)))
		d = int(NearestPowerOfTwo(uint32(d)))
	case RoundToPreviousPowerOfTwo:
		w = int(PreviousPowerOfTwo(uint32(w)))
		h = int(PreviousPowerOfTwo(uint32(h)))
		d = int(PreviousPowerOfTwo(uint32(d)))
	}

	return w, h, d
}
