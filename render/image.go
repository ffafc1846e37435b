package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ToImage converts the frame into an opaque RGBA image
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < f.Width; x++ {
			c := f.Pix[y*f.Width+x]
			o := x * 4
			row[o] = c.R
			row[o+1] = c.G
			row[o+2] = c.B
			row[o+3] = 0xFF
		}
	}
	return img
}

// FromImage converts any image into a frame, dropping alpha
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy())

	// Fast path for the common RGBA layout
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < f.Height; y++ {
			row := rgba.Pix[(y+b.Min.Y-rgba.Rect.Min.Y)*rgba.Stride:]
			for x := 0; x < f.Width; x++ {
				o := (x + b.Min.X - rgba.Rect.Min.X) * 4
				f.Pix[y*f.Width+x] = RGB{row[o], row[o+1], row[o+2]}
			}
		}
		return f
	}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			f.Pix[y*f.Width+x] = RGB{c.R, c.G, c.B}
		}
	}
	return f
}

// Resize resamples src to width x height
// Returns a clone when the dimensions already match so callers may always own the result
func Resize(src *Frame, width, height int) *Frame {
	if src.Width == width && src.Height == height {
		return src.Clone()
	}
	if width <= 0 || height <= 0 {
		return NewFrame(max(width, 0), max(height, 0))
	}
	if src.Width == 0 || src.Height == 0 {
		return NewFrame(width, height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// CatmullRom weights every covered source pixel when shrinking
	draw.CatmullRom.Scale(dst, dst.Bounds(), src.ToImage(), image.Rect(0, 0, src.Width, src.Height), draw.Src, nil)
	return FromImage(dst)
}

// ScaleNearest resamples src with nearest-neighbour lookup into dst's dimensions
// Used for display upscaling where blocky pixels are intended
func ScaleNearest(dst, src *Frame) {
	if src.Width == 0 || src.Height == 0 {
		dst.Clear(RGBBlack)
		return
	}
	for y := 0; y < dst.Height; y++ {
		sy := y * src.Height / dst.Height
		srow := src.Pix[sy*src.Width:]
		drow := dst.Pix[y*dst.Width:]
		for x := 0; x < dst.Width; x++ {
			drow[x] = srow[x*src.Width/dst.Width]
		}
	}
}
