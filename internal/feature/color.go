package feature

import "github.com/cespare/xxhash/v2"

// HashToRGB derives a stable color from a feature name. The channels are
// shifted up so the brightest one is always 255.
func HashToRGB(name string) (r, g, b uint8) {
	h := xxhash.Sum64String(name)

	r = uint8(h >> 16)
	g = uint8(h >> 8)
	b = uint8(h)

	hi := max(r, g, b)
	diff := 255 - hi
	return r + diff, g + diff, b + diff
}

// RGBFloat returns HashToRGB normalized to [0, 1].
func RGBFloat(name string) [3]float32 {
	r, g, b := HashToRGB(name)
	return Normalize([3]uint8{r, g, b})
}

// Normalize converts an 8-bit color to floats in [0, 1].
func Normalize(c [3]uint8) [3]float32 {
	return [3]float32{
		float32(c[0]) / 255,
		float32(c[1]) / 255,
		float32(c[2]) / 255,
	}
}
