package render

// Composite blends raw and styled into dst and returns dst
// beta is clamped to [0, 1]; 0 yields raw and 1 yields styled pixel-exactly,
// anything between is raw*(1-beta) + styled*beta truncated per channel.
// A nil styled frame yields raw. A styled frame of a different size is resampled
// to raw's size first. dst is (re)allocated when nil or mis-sized.
func Composite(dst, raw, styled *Frame, beta float64) *Frame {
	if dst == nil || !dst.SameSize(raw) {
		dst = NewFrame(raw.Width, raw.Height)
	}

	if beta < 0 {
		beta = 0
	} else if beta > 1 {
		beta = 1
	}

	if styled == nil || beta == 0 {
		copy(dst.Pix, raw.Pix)
		return dst
	}

	if !styled.SameSize(raw) {
		styled = Resize(styled, raw.Width, raw.Height)
	}

	if beta == 1 {
		copy(dst.Pix, styled.Pix)
		return dst
	}

	for i := range dst.Pix {
		dst.Pix[i] = Blend(raw.Pix[i], styled.Pix[i], beta)
	}
	return dst
}
