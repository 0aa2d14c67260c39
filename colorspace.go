package main

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color — упакованный 32-битный цвет, каналы A:R:G:B от старшего байта к младшему.
type Color uint32

const (
	Transparent Color = 0
	OpaqueBlack Color = 0xFF000000
)

func NewColor(a, r, g, b uint8) Color {
	return Color(a)<<24 | Color(r)<<16 | Color(g)<<8 | Color(b)
}

func (c Color) A() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// RGB возвращает 24-битный ключ цвета без альфа-канала.
func (c Color) RGB() uint32 {
	return uint32(c) & 0xFFFFFF
}

// Normalized переводит цвет в RGB с каналами в диапазоне [0,1].
func (c Color) Normalized() colorful.Color {
	return colorful.Color{
		R: float64(c.R()) / 255.0,
		G: float64(c.G()) / 255.0,
		B: float64(c.B()) / 255.0,
	}
}

// FromNormalized упаковывает нормализованный RGB обратно, каналы округляются.
func FromNormalized(col colorful.Color, alpha uint8) Color {
	r, g, b := col.Clamped().RGB255()
	return NewColor(alpha, r, g, b)
}

// HSV: тон в градусах [0,360), насыщенность и яркость в [0,1].
func (c Color) HSV() (h, s, v float64) {
	return c.Normalized().Hsv()
}

// Distance — евклидово расстояние в RGB без учёта альфы, усечённое до целого.
func Distance(c1, c2 Color) uint {
	dr := int(c1.R()) - int(c2.R())
	dg := int(c1.G()) - int(c2.G())
	db := int(c1.B()) - int(c2.B())
	return uint(math.Sqrt(float64(dr*dr + dg*dg + db*db)))
}
