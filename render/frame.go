package render

// Frame is a fixed-size row-major grid of RGB pixels
// A frame has a single writer at a time; stages hand off ownership or Clone
type Frame struct {
	Width  int
	Height int
	Pix    []RGB
}

// NewFrame allocates a black frame of the given size
func NewFrame(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]RGB, width*height),
	}
}

// InBounds reports whether (x, y) addresses a pixel
func (f *Frame) InBounds(x, y int) bool {
	return x >= 0 && x < f.Width && y >= 0 && y < f.Height
}

// At returns the pixel at (x, y), black when out of bounds
func (f *Frame) At(x, y int) RGB {
	if !f.InBounds(x, y) {
		return RGBBlack
	}
	return f.Pix[y*f.Width+x]
}

// Set writes the pixel at (x, y), ignoring out of bounds writes
func (f *Frame) Set(x, y int, c RGB) {
	if !f.InBounds(x, y) {
		return
	}
	f.Pix[y*f.Width+x] = c
}

// FillRow paints an entire row with c
func (f *Frame) FillRow(y int, c RGB) {
	if y < 0 || y >= f.Height {
		return
	}
	row := f.Pix[y*f.Width : (y+1)*f.Width]
	for i := range row {
		row[i] = c
	}
}

// FillColumn paints rows [y0, y1] of column x with c, clipped to the frame
func (f *Frame) FillColumn(x, y0, y1 int, c RGB) {
	if x < 0 || x >= f.Width {
		return
	}
	y0 = max(y0, 0)
	y1 = min(y1, f.Height-1)
	for y := y0; y <= y1; y++ {
		f.Pix[y*f.Width+x] = c
	}
}

// Clear resets every pixel to c using exponential copy
func (f *Frame) Clear(c RGB) {
	if len(f.Pix) == 0 {
		return
	}
	f.Pix[0] = c
	for filled := 1; filled < len(f.Pix); filled *= 2 {
		copy(f.Pix[filled:], f.Pix[:filled])
	}
}

// Clone returns a deep copy
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	out := &Frame{
		Width:  f.Width,
		Height: f.Height,
		Pix:    make([]RGB, len(f.Pix)),
	}
	copy(out.Pix, f.Pix)
	return out
}

// SameSize reports whether both frames share dimensions
func (f *Frame) SameSize(o *Frame) bool {
	return o != nil && f.Width == o.Width && f.Height == o.Height
}

// Equal reports pixel-exact equality
func (f *Frame) Equal(o *Frame) bool {
	if !f.SameSize(o) {
		return false
	}
	for i := range f.Pix {
		if f.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// IsBlank reports whether every pixel is black
func (f *Frame) IsBlank() bool {
	for _, p := range f.Pix {
		if p != RGBBlack {
			return false
		}
	}
	return true
}

// SubFrame copies the w x h region at (x, y) into a new frame
// Pixels outside f read as black
func (f *Frame) SubFrame(x, y, w, h int) *Frame {
	out := NewFrame(w, h)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			out.Pix[dy*w+dx] = f.At(x+dx, y+dy)
		}
	}
	return out
}

// Blit copies src into f with its top-left corner at (x, y), clipped
func (f *Frame) Blit(src *Frame, x, y int) {
	for sy := 0; sy < src.Height; sy++ {
		for sx := 0; sx < src.Width; sx++ {
			f.Set(x+sx, y+sy, src.Pix[sy*src.Width+sx])
		}
	}
}
