package nvtt

import "math"

// gradientKernel is a square convolution kernel used to estimate height
// derivatives.
type gradientKernel struct {
	windowSize int
	data       []float32
}

// addGradientScale accumulates a Sobel-style horizontal gradient kernel of
// the given radius, scaled by weight, into the center of k. Coefficients
// follow dx/(dx^2+dy^2).
func (k *gradientKernel) addGradientScale(radius int, weight float32) {
	if weight == 0 {
		return
	}
	offset := k.windowSize / 2
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			v := weight * float32(dx) / float32(dx*dx+dy*dy)
			k.data[(dy+offset)*k.windowSize+(dx+offset)] += v
		}
	}
}

func (k *gradientKernel) normalize() {
	total := float32(0)
	for _, v := range k.data {
		total += absf(v)
	}
	if total == 0 {
		return
	}
	for i := range k.data {
		k.data[i] /= total
	}
}

func (k *gradientKernel) transpose() *gradientKernel {
	t := &gradientKernel{
		windowSize: k.windowSize,
		data:       make([]float32, len(k.data)),
	}
	for y := 0; y < k.windowSize; y++ {
		for x := 0; x < k.windowSize; x++ {
			t.data[x*k.windowSize+y] = k.data[y*k.windowSize+x]
		}
	}
	return t
}

// blendedGradientKernel builds one 9x9 kernel combining gradient kernels of
// radius 1..4 (four frequency bands) by the given weights.
func blendedGradientKernel(weights [4]float32) *gradientKernel {
	k := &gradientKernel{
		windowSize: 9,
		data:       make([]float32, 9*9),
	}
	for band, w := range weights {
		k.addGradientScale(band+1, w)
	}
	k.normalize()
	return k
}

// convolve applies the kernel centered at (x,y) over a single plane.
func convolve(plane []float32, w, h, x, y int, k *gradientKernel, wm WrapMode) float32 {
	offset := k.windowSize / 2
	sum := float32(0)
	for ky := 0; ky < k.windowSize; ky++ {
		row := wrapCoord(y+ky-offset, h, wm) * w
		for kx := 0; kx < k.windowSize; kx++ {
			c := k.data[ky*k.windowSize+kx]
			if c == 0 {
				continue
			}
			sum += c * plane[row+wrapCoord(x+kx-offset, w, wm)]
		}
	}
	return sum
}

// createNormalMap derives unpacked tangent-space normals from the image's
// luminance treated as a height field. The returned image stores the normal
// in RGB ([-1,1] range) and the height in alpha.
func createNormalMap(img *FloatImage, wm WrapMode, filterWeights [4]float32) *FloatImage {
	w := img.width
	h := img.height

	nm := newFloatImage(4, w, h)

	// Height field from RGB luminance.
	r := img.Channel(0)
	g := img.Channel(1)
	b := img.Channel(2)
	heights := nm.Channel(3)
	for i := range heights {
		heights[i] = (r[i] + g[i] + b[i]) * (1.0 / 3.0)
	}

	kdu := blendedGradientKernel(filterWeights)
	kdv := kdu.transpose()

	const heightScale = 1.0 / 16.0

	nx := nm.Channel(0)
	ny := nm.Channel(1)
	nz := nm.Channel(2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			du := convolve(heights, w, h, x, y, kdu, wm)
			dv := convolve(heights, w, h, x, y, kdv, wm)

			il := 1.0 / float32(math.Sqrt(float64(du*du+dv*dv+heightScale*heightScale)))
			idx := y*w + x
			nx[idx] = du * il
			ny[idx] = dv * il
			nz[idx] = heightScale * il
		}
	}
	return nm
}

// ToNormalMap derives a packed tangent-space normal map from the image's
// luminance using a four-band gradient filter bank weighted by small, medium,
// big and large, then flags the image as a normal map.
func (t *TexImage) ToNormalMap(small, medium, big, large float32) {
	if t.m.image == nil {
		return
	}
	t.detach()

	t.m.image = createNormalMap(t.m.image, t.m.wrapMode, [4]float32{small, medium, big, large})
	t.m.image.packNormals(0)
	t.m.isNormalMap = true
}

// NormalizeNormalMap renormalizes every stored vector to unit length. It
// does nothing unless the image is flagged as a normal map.
func (t *TexImage) NormalizeNormalMap() {
	if t.m.image == nil || !t.m.isNormalMap {
		return
	}
	t.detach()

	img := t.m.image
	img.expandNormals(0)
	img.normalizeVectors(0)
	img.packNormals(0)
}
