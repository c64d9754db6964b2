package nvtt

import "math"

// halfToFloat32 converts an IEEE 754 binary16 bit pattern to float32.
func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	mant := uint32(h) & 0x3FF

	switch exp {
	case 0:
		if mant == 0 {
			return math.Float32frombits(sign << 31)
		}
		// Subnormal -> normalized float32.
		e := int32(-14)
		for (mant & 0x400) == 0 {
			mant <<= 1
			e--
		}
		mant &= 0x3FF
		exp32 := uint32(e + 127)
		mant32 := mant << 13
		return math.Float32frombits((sign << 31) | (exp32 << 23) | mant32)
	case 0x1F:
		// Inf/NaN
		return math.Float32frombits((sign << 31) | 0x7F800000 | (mant << 13))
	default:
		// Normal number.
		exp32 := exp + (127 - 15)
		mant32 := mant << 13
		return math.Float32frombits((sign << 31) | (exp32 << 23) | mant32)
	}
}
