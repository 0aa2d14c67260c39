package main

import (
	"fmt"
	"math"
)

// Restore восстанавливает логическую сетку пиксель-арта: на каждый блок
// blockSize×blockSize исходника приходится один пиксель результата.
// Вокруг результата остаётся прозрачная рамка шириной margin.
func Restore(src *ImageData, blockSize float32, sampleSize, margin int) (*ImageData, error) {
	if src.BitWidth != 32 {
		return nil, fmt.Errorf("%w: restore needs 32 bits per pixel, got %d", ErrUnsupportedFormat, src.BitWidth)
	}
	if blockSize < 1 {
		blockSize = 1
	}
	sampleSize = max(sampleSize, 1)
	margin = max(margin, 0)

	w := int(float32(src.Width) / blockSize)
	h := int(float32(src.Height) / blockSize)
	dst, err := NewPixmap(w+margin*2, h+margin*2, 32)
	if err != nil {
		return nil, err
	}

	// Шаг накапливается сложением; на больших изображениях сетка дрейфует.
	half := blockSize / 2
	for y := float32(0); y < float32(src.Height); y += blockSize {
		dy := int(math.Floor(float64(y/blockSize))) + margin
		for x := float32(0); x < float32(src.Width); x += blockSize {
			dx := int(math.Floor(float64(x/blockSize))) + margin
			if dx-margin >= w || dy-margin >= h {
				continue
			}
			dst.Set(dx, dy, sampleColor(src, x+half, y+half, sampleSize))
		}
	}
	return dst, nil
}

// sampleColor усредняет окно size×size с центром в (cx, cy). Чтения за
// пределами буфера дают 0 и входят в знаменатель.
func sampleColor(src *ImageData, cx, cy float32, size int) Color {
	x0 := int(math.Floor(float64(cx) - float64(size/2)))
	y0 := int(math.Floor(float64(cy) - float64(size/2)))
	if size == 1 {
		return src.At(x0, y0)
	}

	var a, r, g, b int
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			c := src.At(x0+j, y0+i)
			a += int(c.A())
			r += int(c.R())
			g += int(c.G())
			b += int(c.B())
		}
	}
	n := size * size
	return NewColor(uint8(a/n), uint8(r/n), uint8(g/n), uint8(b/n))
}

// BlockSizeForTarget пересчитывает размер блока под заданную ширину или высоту
// результата; ширина имеет приоритет. Без цели возвращается blockSize.
func BlockSizeForTarget(width, height, targetWidth, targetHeight int, blockSize float32) float32 {
	switch {
	case targetWidth > 0:
		return fitBlockSize(width, targetWidth)
	case targetHeight > 0:
		return fitBlockSize(height, targetHeight)
	}
	return blockSize
}

// fitBlockSize возвращает size/target, уменьшенный на несколько ulp, если
// из-за округления float32 int(size/bs) получается меньше target.
func fitBlockSize(size, target int) float32 {
	bs := float32(size) / float32(target)
	if target > size {
		return bs
	}
	for int(float32(size)/bs) < target {
		bs = math.Nextafter32(bs, 0)
	}
	return bs
}

// AutoAdjustBlockSize подгоняет размер блока так, чтобы ширина делилась на
// целое число блоков. Эвристика: при дробной части больше 0.01 размер
// уменьшается на 0.01, чтобы накопленная ошибка не выводила выборку за блок.
func AutoAdjustBlockSize(width int, blockSize float32) float32 {
	whole := float32(math.Floor(float64(blockSize)))
	if whole < 1 || width <= 0 {
		return blockSize
	}
	blocks := math.Floor(float64(float32(width) / whole))
	if blocks < 1 {
		return blockSize
	}
	adjusted := float32(width) / float32(blocks)
	if _, frac := math.Modf(float64(adjusted)); frac > 0.01 {
		adjusted -= 0.01
	}
	return adjusted
}
