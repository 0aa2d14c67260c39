package main

import (
	"errors"
	"testing"
)

func TestScale(t *testing.T) {
	a, b := Color(0xFF112233), Color(0x80445566)
	img := rowImage(t, a, b)

	scaled, err := Scale(img, 3)
	if err != nil {
		t.Fatalf("Scale: %v", err)
	}
	if scaled.Width != 6 || scaled.Height != 3 {
		t.Fatalf("size = %dx%d, want 6x3", scaled.Width, scaled.Height)
	}
	counts := map[Color]int{}
	for y := 0; y < scaled.Height; y++ {
		for x := 0; x < scaled.Width; x++ {
			want := a
			if x >= 3 {
				want = b
			}
			got := scaled.At(x, y)
			if got != want {
				t.Fatalf("(%d,%d) = %#08x, want %#08x", x, y, uint32(got), uint32(want))
			}
			counts[got]++
		}
	}
	if counts[a] != 9 || counts[b] != 9 {
		t.Fatalf("counts = %v, want 9 of each", counts)
	}
}

func TestScaleFactorBelowOne(t *testing.T) {
	img := rowImage(t, 0xFF010203, 0xFF040506)
	for _, f := range []int{0, 1, -3} {
		scaled, err := Scale(img, f)
		if err != nil {
			t.Fatalf("Scale(%d): %v", f, err)
		}
		if scaled.Width != 2 || scaled.Height != 1 || scaled.At(1, 0) != 0xFF040506 {
			t.Fatalf("Scale(%d) = %dx%d", f, scaled.Width, scaled.Height)
		}
		if scaled == img {
			t.Fatalf("Scale(%d) returned the source buffer", f)
		}
	}
}

func TestScaleRejectsNarrowBuffers(t *testing.T) {
	img, _ := NewPixmap(2, 2, 8)
	if _, err := Scale(img, 2); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}
