package nvtt

import "math"

// RMSError returns the root-mean-square color error between two same-sized
// images over channels 0-2. When the reference image's alpha mode is
// transparency, each squared difference is weighted by the reference alpha.
// Empty handles or mismatched extents yield the maximum float32 value.
func RMSError(reference, image TexImage) float32 {
	ref := reference.m.image
	img := image.m.image
	if ref == nil || img == nil || ref.width != img.width || ref.height != img.height {
		return math.MaxFloat32
	}

	r0 := img.Channel(0)
	g0 := img.Channel(1)
	b0 := img.Channel(2)
	r1 := ref.Channel(0)
	g1 := ref.Channel(1)
	b1 := ref.Channel(2)
	a1 := ref.Channel(3)

	weighted := reference.AlphaMode() == AlphaModeTransparency

	mse := float64(0)
	for i := range r0 {
		r := float64(r0[i] - r1[i])
		g := float64(g0[i] - g1[i])
		b := float64(b0[i] - b1[i])

		if weighted {
			a := float64(a1[i])
			mse += r * r * a
			mse += g * g * a
			mse += b * b * a
		} else {
			mse += r * r
			mse += g * g
			mse += b * b
		}
	}

	return float32(math.Sqrt(mse / float64(len(r0))))
}

// RMSAlphaError is RMSError restricted to the alpha channel, unweighted.
func RMSAlphaError(reference, image TexImage) float32 {
	ref := reference.m.image
	img := image.m.image
	if ref == nil || img == nil || ref.width != img.width || ref.height != img.height {
		return math.MaxFloat32
	}

	a0 := img.Channel(3)
	a1 := ref.Channel(3)

	mse := float64(0)
	for i := range a0 {
		a := float64(a0[i] - a1[i])
		mse += a * a
	}

	return float32(math.Sqrt(mse / float64(len(a0))))
}
