package render

import (
	"image"
	"image/color"
	"testing"
)

func TestFrameBounds(t *testing.T) {
	f := NewFrame(4, 3)
	f.Set(-1, 0, RGBWhite)
	f.Set(4, 0, RGBWhite)
	f.Set(0, 3, RGBWhite)
	if !f.IsBlank() {
		t.Error("Expected out of bounds writes to be ignored")
	}
	if f.At(10, 10) != RGBBlack {
		t.Error("Expected out of bounds reads to return black")
	}

	f.Set(3, 2, RGBWhite)
	if f.At(3, 2) != RGBWhite {
		t.Error("Expected in bounds write to land")
	}
}

func TestFrameFillColumnClips(t *testing.T) {
	f := NewFrame(2, 5)
	f.FillColumn(1, -10, 10, RGB{1, 2, 3})
	for y := 0; y < 5; y++ {
		if f.At(1, y) != (RGB{1, 2, 3}) {
			t.Errorf("Row %d: expected filled pixel", y)
		}
		if f.At(0, y) != RGBBlack {
			t.Errorf("Row %d: expected neighbouring column untouched", y)
		}
	}
}

func TestFrameCloneIsDeep(t *testing.T) {
	f := gradientFrame(5, 5, 7)
	c := f.Clone()
	if !c.Equal(f) {
		t.Fatal("Expected clone to equal source")
	}
	c.Set(0, 0, RGB{1, 1, 1})
	if f.At(0, 0) == (RGB{1, 1, 1}) {
		t.Error("Expected clone mutation not to affect source")
	}
}

func TestFrameClear(t *testing.T) {
	f := NewFrame(7, 3)
	f.Clear(RGB{9, 8, 7})
	for i, p := range f.Pix {
		if p != (RGB{9, 8, 7}) {
			t.Fatalf("Pixel %d not cleared: %v", i, p)
		}
	}
}

func TestSubFrameAndBlit(t *testing.T) {
	src := gradientFrame(8, 8, 5)
	sub := src.SubFrame(2, 3, 4, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if sub.At(x, y) != src.At(x+2, y+3) {
				t.Fatalf("SubFrame mismatch at %d,%d", x, y)
			}
		}
	}

	dst := NewFrame(8, 8)
	dst.Blit(sub, 2, 3)
	if dst.At(5, 4) != src.At(5, 4) {
		t.Error("Expected blit to place pixels at offset")
	}
}

func TestImageRoundTrip(t *testing.T) {
	f := gradientFrame(9, 6, 42)
	back := FromImage(f.ToImage())
	if !back.Equal(f) {
		t.Error("Expected ToImage/FromImage to round trip")
	}
}

func TestFromImageGeneric(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 0, 255, 255})
	f := FromImage(img)
	if f.At(0, 0) != (RGB{255, 0, 0}) || f.At(1, 0) != (RGB{0, 0, 255}) {
		t.Errorf("Unexpected conversion: %v", f.Pix)
	}
}

func TestResize(t *testing.T) {
	src := NewFrame(10, 10)
	src.Clear(RGB{50, 60, 70})

	same := Resize(src, 10, 10)
	if same == src || !same.Equal(src) {
		t.Error("Expected same-size resize to return an equal copy")
	}

	out := Resize(src, 3, 7)
	if out.Width != 3 || out.Height != 7 {
		t.Fatalf("Expected 3x7, got %dx%d", out.Width, out.Height)
	}
	for _, p := range out.Pix {
		if p != (RGB{50, 60, 70}) {
			t.Fatalf("Expected uniform colour preserved, got %v", p)
		}
	}
}

func TestScaleNearest(t *testing.T) {
	src := NewFrame(2, 1)
	src.Set(0, 0, RGB{255, 0, 0})
	src.Set(1, 0, RGB{0, 255, 0})

	dst := NewFrame(4, 2)
	ScaleNearest(dst, src)
	if dst.At(1, 1) != (RGB{255, 0, 0}) || dst.At(2, 0) != (RGB{0, 255, 0}) {
		t.Errorf("Unexpected nearest upscale: %v", dst.Pix)
	}
}
