package render

// RGB is a 24-bit colour, one byte per channel
type RGB struct {
	R, G, B uint8
}

// Predefined colors
var (
	RGBBlack = RGB{0, 0, 0}
	RGBWhite = RGB{255, 255, 255}
)

// clamp converts float to uint8, saturating at both ends
func clamp(v float64) uint8 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 {
		return 0
	}
	return uint8(v)
}

// Clamp exposes byte saturation for callers composing their own channel math
func Clamp(v float64) uint8 {
	return clamp(v)
}

// Blend is linear alpha blending: c*(1-alpha) + src*alpha, truncated
// alpha <= 0 returns c and alpha >= 1 returns src unchanged
func Blend(c, src RGB, alpha float64) RGB {
	if alpha >= 1.0 {
		return src
	}
	if alpha <= 0.0 {
		return c
	}

	inv := 1.0 - alpha

	return RGB{
		R: uint8(float64(src.R)*alpha + float64(c.R)*inv),
		G: uint8(float64(src.G)*alpha + float64(c.G)*inv),
		B: uint8(float64(src.B)*alpha + float64(c.B)*inv),
	}
}

// AddScaled adds src*factor to c per channel, clamped to the byte range
func AddScaled(c, src RGB, factor float64) RGB {
	if factor <= 0 {
		return c
	}
	return RGB{
		R: clamp(float64(c.R) + float64(src.R)*factor),
		G: clamp(float64(c.G) + float64(src.G)*factor),
		B: clamp(float64(c.B) + float64(src.B)*factor),
	}
}

// Scale multiplies all channels by factor, saturating above 255
func Scale(c RGB, factor float64) RGB {
	return RGB{
		R: clamp(float64(c.R) * factor),
		G: clamp(float64(c.G) * factor),
		B: clamp(float64(c.B) * factor),
	}
}

// Luma returns the Rec. 601 brightness of c in [0, 255]
func Luma(c RGB) int {
	return (int(c.R)*299 + int(c.G)*587 + int(c.B)*114) / 1000
}

// Lerp linearly interpolates between two colors
// t=0 returns a, t=1 returns b
func Lerp(a, b RGB, t float64) RGB {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return RGB{
		R: uint8(float64(a.R) + t*float64(int(b.R)-int(a.R))),
		G: uint8(float64(a.G) + t*float64(int(b.G)-int(a.G))),
		B: uint8(float64(a.B) + t*float64(int(b.B)-int(a.B))),
	}
}
