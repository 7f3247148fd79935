package raster

import "math"

// GaussianKernel generates a normalized 1D Gaussian kernel using radius as
// sigma. The kernel spans 3 sigma on each side; radius <= 0 yields [1].
func GaussianKernel(radius float64) []float32 {
	if radius <= 0 {
		return []float32{1.0}
	}

	halfSize := int(math.Ceil(radius * 3))
	size := halfSize*2 + 1
	kernel := make([]float32, size)

	twoSigmaSq := 2 * radius * radius
	var sum float64
	for i := 0; i < size; i++ {
		x := float64(i - halfSize)
		val := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(val)
		sum += val
	}

	invSum := float32(1.0 / sum)
	for i := range kernel {
		kernel[i] *= invSum
	}
	return kernel
}

// Blur returns a new field convolved with a separable Gaussian of the given
// radius. Samples outside the field count as zero.
func Blur(src *Field, radius float64) *Field {
	dst := NewField(src.W, src.H)
	if radius <= 0 {
		copy(dst.Data, src.Data)
		return dst
	}

	kernel := GaussianKernel(radius)
	half := len(kernel) / 2
	temp := make([]float32, len(src.Data))

	// Horizontal pass: src -> temp
	for y := 0; y < src.H; y++ {
		row := y * src.W
		for x := 0; x < src.W; x++ {
			var acc float32
			for k, w := range kernel {
				kx := x + k - half
				if kx < 0 || kx >= src.W {
					continue
				}
				acc += src.Data[row+kx] * w
			}
			temp[row+x] = acc
		}
	}

	// Vertical pass: temp -> dst
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			var acc float32
			for k, w := range kernel {
				ky := y + k - half
				if ky < 0 || ky >= src.H {
					continue
				}
				acc += temp[ky*src.W+x] * w
			}
			dst.Data[y*src.W+x] = acc
		}
	}
	return dst
}
