package main

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalidLevels = errors.New("posterize needs at least 2 levels")

// Adjustment — шаг обработки, меняющий 32-битный буфер на месте.
type Adjustment interface {
	Apply(*ImageData) error
}

type Posterizer struct{ Levels int }

type ColorNormalizer struct{ Threshold uint }

type PaletteMapper struct{ Table *ColorTable }

func (p Posterizer) Apply(img *ImageData) error      { return Posterize(img, p.Levels) }
func (n ColorNormalizer) Apply(img *ImageData) error { return NormalizeColors(img, n.Threshold) }
func (m PaletteMapper) Apply(img *ImageData) error   { return MapToNearestPalette(img, m.Table) }

func require32(img *ImageData, op string) error {
	if img == nil || img.BitWidth != 32 {
		return fmt.Errorf("%w: %s needs a 32-bit buffer", ErrUnsupportedFormat, op)
	}
	return nil
}

// forEachRow делит строки между ядрами. Годится только для попиксельно
// независимых операций.
func forEachRow(img *ImageData, fn func(y int)) {
	numCPU := runtime.NumCPU()
	if img.Height < numCPU {
		numCPU = max(img.Height, 1)
	}
	step := img.Height / numCPU

	var wg sync.WaitGroup
	for i := 0; i < numCPU; i++ {
		start := i * step
		end := start + step
		if i == numCPU-1 {
			end = img.Height
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for y := s; y < e; y++ {
				fn(y)
			}
		}(start, end)
	}
	wg.Wait()
}

func posterizeChannel(v float64, step float64) float64 {
	return math.Round(v/step) * step
}

// Posterize сводит каждый канал к levels уровням; альфа становится непрозрачной.
func Posterize(img *ImageData, levels int) error {
	if err := require32(img, "posterize"); err != nil {
		return err
	}
	if levels < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidLevels, levels)
	}
	step := 1.0 / float64(levels-1)
	forEachRow(img, func(y int) {
		for x := 0; x < img.Width; x++ {
			c := img.At(x, y).Normalized()
			c = colorful.Color{
				R: posterizeChannel(c.R, step),
				G: posterizeChannel(c.G, step),
				B: posterizeChannel(c.B, step),
			}
			img.Set(x, y, FromNormalized(c, 255))
		}
	})
	return nil
}

// NormalizeColors сливает близкие цвета за один проход: каждый ещё не
// встречавшийся цвет становится представителем и перекрашивает все пиксели
// ближе threshold. Сложность O(цветов × пикселей), порядок обхода важен.
func NormalizeColors(img *ImageData, threshold uint) error {
	if err := require32(img, "normalize"); err != nil {
		return err
	}
	if threshold == 0 {
		return nil
	}
	n := img.Pixels()
	seen := make(map[uint32]struct{})
	for i := 0; i < n; i++ {
		base := img.At(i%img.Width, i/img.Width)
		key := base.RGB()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			x, y := j%img.Width, j/img.Width
			if Distance(base, img.At(x, y)) < threshold {
				img.Set(x, y, base)
			}
		}
	}
	return nil
}

// nearest ищет ближайший цвет линейным проходом; при равенстве побеждает меньший индекс.
func nearest(c Color, entries []Color) Color {
	best := entries[0]
	bestDist := Distance(c, best)
	for _, e := range entries[1:] {
		if bestDist == 0 {
			break
		}
		if d := Distance(c, e); d < bestDist {
			bestDist = d
			best = e
		}
	}
	return best
}

// MapToNearestPalette заменяет каждый пиксель ближайшим цветом палитры.
// Совпадение с цветом прозрачности даёт 0. Без палитры ничего не делает.
func MapToNearestPalette(img *ImageData, ct *ColorTable) error {
	if err := require32(img, "palette mapping"); err != nil {
		return err
	}
	entries := ct.Entries()
	if len(entries) == 0 {
		return nil
	}
	transparent, hasTransparent := ct.TransparentColor()
	forEachRow(img, func(y int) {
		for x := 0; x < img.Width; x++ {
			matched := nearest(img.At(x, y), entries)
			if hasTransparent && matched == transparent {
				matched = Transparent
			}
			img.Set(x, y, matched)
		}
	})
	return nil
}
