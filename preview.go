//go:build !nosdl

package main

import (
	"log"

	"github.com/veandco/go-sdl2/sdl"
)

// Preview показывает исходник и результат в двух окнах до закрытия любого из них.
func Preview(source, result *ImageData) error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return err
	}
	defer sdl.Quit()

	winOrig, rendOrig, texOrig, err := createWindowAndTexture("Original", source, 100, 100)
	if err != nil {
		return err
	}
	defer winOrig.Destroy()
	defer rendOrig.Destroy()
	defer texOrig.Destroy()

	winConv, rendConv, texConv, err := createWindowAndTexture("rePix", result, 300, 150)
	if err != nil {
		return err
	}
	defer winConv.Destroy()
	defer rendConv.Destroy()
	defer texConv.Destroy()

	showLoop(rendOrig, texOrig, rendConv, texConv)
	return nil
}

func showLoop(rendOrig *sdl.Renderer, texOrig *sdl.Texture, rendConv *sdl.Renderer, texConv *sdl.Texture) {
	for {
		ev := sdl.PollEvent()
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			log.Println("Завершение SDL-цикла")
			return
		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_CLOSE {
				log.Println("Окно закрыто")
				return
			}
		case nil:
			renderWindow(rendOrig, texOrig)
			renderWindow(rendConv, texConv)
			sdl.Delay(16) // ~60 FPS
		}
	}
}

func renderWindow(rend *sdl.Renderer, tex *sdl.Texture) {
	rend.SetDrawColor(0, 0, 0, 255)
	rend.Clear()
	rend.Copy(tex, nil, nil)
	rend.Present()
}

func createWindowAndTexture(title string, img *ImageData, x, y int) (*sdl.Window, *sdl.Renderer, *sdl.Texture, error) {
	nrgba, err := img.ToNRGBA()
	if err != nil {
		return nil, nil, nil, err
	}
	w, h := img.Width, img.Height

	win, err := sdl.CreateWindow(title, int32(x), int32(y), int32(w), int32(h), sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, nil, nil, err
	}
	rend, err := sdl.CreateRenderer(win, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		win.Destroy()
		return nil, nil, nil, err
	}
	// ABGR8888 на little-endian — это байты R,G,B,A, как в image.NRGBA.
	tex, err := rend.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, int32(w), int32(h))
	if err != nil {
		rend.Destroy()
		win.Destroy()
		return nil, nil, nil, err
	}
	tex.SetBlendMode(sdl.BLENDMODE_BLEND)
	pixels, pitch, err := tex.Lock(nil)
	if err != nil {
		tex.Destroy()
		rend.Destroy()
		win.Destroy()
		return nil, nil, nil, err
	}
	for row := 0; row < h; row++ {
		src := nrgba.Pix[row*nrgba.Stride : row*nrgba.Stride+w*4]
		copy(pixels[row*pitch:row*pitch+w*4], src)
	}
	tex.Unlock()
	return win, rend, tex, nil
}
