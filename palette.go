package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math"
	"os"
	"slices"
	"sort"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

const (
	ACTColors      = 256
	ACTTableSize   = ACTColors * 3
	ACTFileSize    = ACTTableSize + 4
	MaxKMeansInput = 12000
)

// ColorTable — палитра до 256 цветов. Defined <= 0 означает «палитры нет».
type ColorTable struct {
	Colors       [ACTColors]Color
	Defined      int16
	Transparency int16
}

// adobeColorTable — раскладка .act на диске; оба 16-битных поля big-endian.
type adobeColorTable struct {
	Colors       [ACTTableSize]byte
	Defined      int16
	Transparency int16
}

func NewColorTable() *ColorTable {
	return &ColorTable{Transparency: -1}
}

// LoadAdobeColorTable читает файл Adobe Color Table (.act).
func LoadAdobeColorTable(filename string) (*ColorTable, error) {
	f, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filename)
		}
		return nil, err
	}
	defer f.Close()

	ct, err := ReadAdobeColorTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return ct, nil
}

// ReadAdobeColorTable разбирает 772-байтную таблицу. Старый 768-байтный вариант
// без хвоста считается полной палитрой без прозрачности.
func ReadAdobeColorTable(r io.Reader) (*ColorTable, error) {
	raw := make([]byte, ACTFileSize)
	n, err := io.ReadFull(r, raw)
	switch {
	case err == nil:
	case errors.Is(err, io.ErrUnexpectedEOF) && n == ACTTableSize:
		binary.BigEndian.PutUint16(raw[ACTTableSize:], ACTColors)
		binary.BigEndian.PutUint16(raw[ACTTableSize+2:], 0xFFFF)
	default:
		return nil, fmt.Errorf("%w: color table of %d bytes", ErrDecode, n)
	}

	var act adobeColorTable
	if err := binary.Read(bytes.NewReader(raw), binary.BigEndian, &act); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	ct := NewColorTable()
	ct.Defined = max(0, min(ACTColors, act.Defined))
	if act.Transparency >= 0 && act.Transparency < ACTColors {
		ct.Transparency = act.Transparency
	}
	for i := 0; i < int(ct.Defined); i++ {
		ct.Colors[i] = NewColor(255, act.Colors[i*3+0], act.Colors[i*3+1], act.Colors[i*3+2])
	}
	return ct, nil
}

// Entries возвращает первые Defined цветов.
func (ct *ColorTable) Entries() []Color {
	if ct == nil || ct.Defined <= 0 {
		return nil
	}
	return ct.Colors[:ct.Defined]
}

// TransparentColor возвращает цвет, который заменяется на прозрачный.
func (ct *ColorTable) TransparentColor() (Color, bool) {
	if ct == nil || ct.Transparency < 0 {
		return 0, false
	}
	return ct.Colors[ct.Transparency], true
}

type PaletteMethod int

const (
	PaletteMethodKMeans PaletteMethod = iota
	PaletteMethodDominantColor
	PaletteMethodFrequency
)

// ParsePaletteMethod разбирает имя метода из командной строки.
func ParsePaletteMethod(name string) (PaletteMethod, error) {
	for _, m := range []PaletteMethod{PaletteMethodKMeans, PaletteMethodDominantColor, PaletteMethodFrequency} {
		if m.String() == name {
			return m, nil
		}
	}
	return PaletteMethodKMeans, fmt.Errorf("unknown palette method %q", name)
}

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodDominantColor:
		return "dominantcolor"
	case PaletteMethodFrequency:
		return "frequency"
	default:
		return "kmeans"
	}
}

// ExtractPalette подбирает палитру из k цветов по самому изображению.
// Порядок отката: k-means → доминантные цвета → самые частые цвета.
func ExtractPalette(img *ImageData, k int, method PaletteMethod) (*ColorTable, error) {
	if k <= 0 {
		return NewColorTable(), nil
	}
	k = min(k, ACTColors)
	src, err := img.To32()
	if err != nil {
		return nil, err
	}
	var colors []Color
	if method == PaletteMethodKMeans {
		colors = kmeansPalette(src, k)
		if len(colors) == 0 {
			log.Println("k-means не дал палитры, используются доминантные цвета")
		}
	}
	if len(colors) == 0 && method != PaletteMethodFrequency {
		nrgba, err := src.ToNRGBA()
		if err != nil {
			return nil, err
		}
		for _, c := range dominantcolor.FindWeight(nrgba, k) {
			colors = append(colors, NewColor(255, c.RGBA.R, c.RGBA.G, c.RGBA.B))
		}
	}
	if len(colors) == 0 {
		colors = frequencyPalette(src, k)
	}
	SortPaletteByHue(colors)

	ct := NewColorTable()
	ct.Defined = int16(copy(ct.Colors[:], colors))
	return ct, nil
}

func kmeansPalette(src *ImageData, k int) []Color {
	n := src.Pixels()
	if n == 0 {
		return nil
	}
	step := 1
	if n > MaxKMeansInput {
		step = int(math.Sqrt(float64(n)/MaxKMeansInput)) + 1
	}
	dataset := make(clusters.Observations, 0, min(n, MaxKMeansInput))
	for y := 0; y < src.Height; y += step {
		for x := 0; x < src.Width; x += step {
			c := src.At(x, y)
			if c.A() == 0 {
				continue
			}
			nc := c.Normalized()
			dataset = append(dataset, clusters.Coordinates{nc.R, nc.G, nc.B})
		}
	}
	if len(dataset) == 0 {
		return nil
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, min(k, len(dataset)))
	if err != nil {
		return nil
	}
	// Пустые кластеры не дают цвета.
	colors := make([]Color, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		colors = append(colors, FromNormalized(colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}, 255))
	}
	return colors
}

// frequencyPalette берёт k самых частых непрозрачных цветов.
func frequencyPalette(src *ImageData, k int) []Color {
	freqMap := make(map[Color]int)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			if c := src.At(x, y); c.A() != 0 {
				freqMap[c|OpaqueBlack]++
			}
		}
	}

	type kv struct {
		c Color
		n int
	}
	arr := make([]kv, 0, len(freqMap))
	for c, n := range freqMap {
		arr = append(arr, kv{c, n})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].n != arr[j].n {
			return arr[i].n > arr[j].n
		}
		return arr[i].c < arr[j].c
	})

	colors := make([]Color, 0, k)
	for i := 0; i < len(arr) && i < k; i++ {
		colors = append(colors, arr[i].c)
	}
	return colors
}

// SortPaletteByHue упорядочивает цвета по тону, затем по яркости.
func SortPaletteByHue(palette []Color) {
	slices.SortStableFunc(palette, func(a, b Color) int {
		ha, _, va := a.HSV()
		hb, _, vb := b.HSV()
		switch {
		case ha < hb:
			return -1
		case ha > hb:
			return 1
		case va < vb:
			return -1
		case va > vb:
			return 1
		}
		return 0
	})
}
