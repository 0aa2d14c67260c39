package main

import "fmt"

// Scale увеличивает изображение в factor раз методом ближайшего соседа:
// каждый пиксель становится блоком factor×factor.
func Scale(img *ImageData, factor int) (*ImageData, error) {
	if img == nil || img.BitWidth != 32 {
		return nil, fmt.Errorf("%w: scaling needs a 32-bit buffer", ErrUnsupportedFormat)
	}
	factor = max(factor, 1)
	scaled, err := NewPixmap(img.Width*factor, img.Height*factor, 32)
	if err != nil {
		return nil, err
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.At(x, y)
			for sy := 0; sy < factor; sy++ {
				for sx := 0; sx < factor; sx++ {
					scaled.Set(x*factor+sx, y*factor+sy, c)
				}
			}
		}
	}
	return scaled, nil
}
