package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrDecode            = errors.New("decode failure")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrAllocation        = errors.New("allocation failure")
)

const MaxDimension = 0xFFFF

// ImageData — буфер пикселей. 32-битные пиксели хранятся как Color в little-endian,
// 24-битные как R,G,B, 8 бит и меньше — индексы в Palette (старший бит первым).
type ImageData struct {
	Width    int
	Height   int
	BitWidth int
	Data     []byte
	Palette  []Color
}

func validBitWidth(bitWidth int) bool {
	switch bitWidth {
	case 1, 2, 4, 8, 24, 32:
		return true
	}
	return false
}

// NewPixmap создаёт буфер, заполненный нулями (прозрачный чёрный для 32 бит).
func NewPixmap(w, h, bitWidth int) (*ImageData, error) {
	if !validBitWidth(bitWidth) {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, bitWidth)
	}
	if w < 0 || h < 0 || w > MaxDimension || h > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrAllocation, w, h)
	}
	img := &ImageData{Width: w, Height: h, BitWidth: bitWidth}
	img.Data = make([]byte, img.Stride()*h)
	return img, nil
}

// Stride — длина строки в байтах.
func (img *ImageData) Stride() int {
	return (img.Width*img.BitWidth + 7) / 8
}

func (img *ImageData) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < img.Width && y < img.Height
}

// At читает 32-битный пиксель; за пределами буфера возвращает 0.
func (img *ImageData) At(x, y int) Color {
	if img.BitWidth != 32 || !img.inside(x, y) {
		return Transparent
	}
	return Color(binary.LittleEndian.Uint32(img.Data[(x+y*img.Width)*4:]))
}

// Set пишет 32-битный пиксель; запись за пределами буфера игнорируется.
func (img *ImageData) Set(x, y int, c Color) {
	if img.BitWidth != 32 || !img.inside(x, y) {
		return
	}
	binary.LittleEndian.PutUint32(img.Data[(x+y*img.Width)*4:], uint32(c))
}

// Index возвращает «сырое» значение пикселя любой глубины.
func (img *ImageData) Index(x, y int) uint32 {
	if !img.inside(x, y) {
		return 0
	}
	row := img.Data[y*img.Stride():]
	switch img.BitWidth {
	case 32:
		return binary.LittleEndian.Uint32(row[x*4:])
	case 24:
		i := x * 3
		return uint32(row[i])<<16 | uint32(row[i+1])<<8 | uint32(row[i+2])
	case 8:
		return uint32(row[x])
	default:
		perByte := 8 / img.BitWidth
		b := row[x/perByte]
		shift := uint(8 - img.BitWidth*(x%perByte+1))
		return uint32(b>>shift) & (1<<img.BitWidth - 1)
	}
}

func (img *ImageData) Pixels() int {
	return img.Width * img.Height
}

func (img *ImageData) Clone() *ImageData {
	out := *img
	out.Data = append([]byte(nil), img.Data...)
	if img.Palette != nil {
		out.Palette = append([]Color(nil), img.Palette...)
	}
	return &out
}

// paletteColor — цвет индекса: из таблицы, если она есть, иначе из градаций серого.
func (img *ImageData) paletteColor(idx uint32) Color {
	if int(idx) < len(img.Palette) {
		return img.Palette[idx]
	}
	levels := uint32(1)<<img.BitWidth - 1
	v := uint8(idx * 255 / levels)
	return NewColor(255, v, v, v)
}

// To32 переводит буфер любой глубины в новый 32-битный буфер.
func (img *ImageData) To32() (*ImageData, error) {
	if img.BitWidth == 32 {
		return img.Clone(), nil
	}
	out, err := NewPixmap(img.Width, img.Height, 32)
	if err != nil {
		return nil, err
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			v := img.Index(x, y)
			if img.BitWidth == 24 {
				out.Set(x, y, Color(0xFF000000|v))
				continue
			}
			out.Set(x, y, img.paletteColor(v))
		}
	}
	return out, nil
}

// ToNRGBA отдаёт буфер в виде image.NRGBA (для кодеров и превью).
func (img *ImageData) ToNRGBA() (*image.NRGBA, error) {
	src := img
	if img.BitWidth != 32 {
		var err error
		if src, err = img.To32(); err != nil {
			return nil, err
		}
	}
	out := image.NewNRGBA(image.Rect(0, 0, src.Width, src.Height))
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			c := src.At(x, y)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = c.R()
			out.Pix[i+1] = c.G()
			out.Pix[i+2] = c.B()
			out.Pix[i+3] = c.A()
		}
	}
	return out, nil
}

// FromImage копирует произвольное image.Image в 32-битный буфер без предумножения альфы.
func FromImage(m image.Image) (*ImageData, error) {
	b := m.Bounds()
	nrgba, ok := m.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), m, b.Min, draw.Src)
	}
	img, err := NewPixmap(b.Dx(), b.Dy(), 32)
	if err != nil {
		return nil, err
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := nrgba.NRGBAAt(x, y)
			img.Set(x, y, NewColor(c.A, c.R, c.G, c.B))
		}
	}
	return img, nil
}
