package main

// Outliner добавляет чёрный контур вокруг непрозрачных областей.
type Outliner struct{}

func (Outliner) Apply(img *ImageData) error { return ApplyOutline(img) }

// ApplyOutline за один проход (строка за строкой, слева направо) красит в
// непрозрачный чёрный прозрачных соседей каждого цветного пикселя. Соседи,
// закрашенные раньше в этом же проходе, уже видны как чёрные, поэтому
// порядок обхода менять нельзя.
func ApplyOutline(img *ImageData) error {
	if err := require32(img, "outline"); err != nil {
		return err
	}
	w, h := img.Width, img.Height
	mark := func(x, y int) {
		if img.At(x, y) == Transparent {
			img.Set(x, y, OpaqueBlack)
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(x, y)
			if c == Transparent || c == OpaqueBlack {
				continue
			}
			if x > 0 {
				mark(x-1, y)
			}
			if x < w-1 {
				mark(x+1, y)
			}
			if y > 0 {
				mark(x, y-1)
			}
			if y < h-1 {
				mark(x, y+1)
			}
		}
	}
	return nil
}
