package main

import (
	"errors"
	"fmt"
	"log"
)

var ErrNotRestored = errors.New("image has not been restored")

// Repix хранит состояние одного прогона: исходник, рабочий буфер и параметры.
// Каждый этап, создающий новый буфер, забирает его себе, старый отпускается.
type Repix struct {
	source  *ImageData
	working *ImageData

	blockSize    float32
	sampleSize   int
	targetWidth  int
	targetHeight int
	margin       int
	scale        int
	autoAdjust   bool
}

// New готовит прогон для исходника любой поддерживаемой глубины.
func New(source *ImageData) (*Repix, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: no source image", ErrDecode)
	}
	src, err := source.To32()
	if err != nil {
		return nil, err
	}
	return &Repix{source: src, blockSize: 1, sampleSize: 1, scale: 1}, nil
}

func (r *Repix) SetBlockSize(v float32) {
	if v < 1 {
		v = 1
	}
	r.blockSize = v
}

func (r *Repix) SetScale(scale int)     { r.scale = max(scale, 1) }
func (r *Repix) SetSampleSize(size int) { r.sampleSize = max(size, 1) }
func (r *Repix) SetMargin(margin int)   { r.margin = max(margin, 0) }
func (r *Repix) SetAutoAdjust(on bool)  { r.autoAdjust = on }
func (r *Repix) SetTargetSize(w, h int) { r.targetWidth, r.targetHeight = max(w, 0), max(h, 0) }
func (r *Repix) Source() *ImageData     { return r.source }
func (r *Repix) Image() *ImageData      { return r.working }

// BlockSize — итоговый размер блока с учётом целевого размера и автоподгонки.
func (r *Repix) BlockSize() float32 {
	bs := BlockSizeForTarget(r.source.Width, r.source.Height, r.targetWidth, r.targetHeight, r.blockSize)
	if r.autoAdjust {
		bs = AutoAdjustBlockSize(r.source.Width, bs)
	}
	if bs < 1 {
		bs = 1
	}
	return bs
}

// Restore заменяет рабочий буфер восстановленной сеткой пикселей.
func (r *Repix) Restore() error {
	restored, err := Restore(r.source, r.BlockSize(), r.sampleSize, r.margin)
	if err != nil {
		return err
	}
	r.working = restored
	return nil
}

// Apply выполняет шаги по порядку и останавливается на первой ошибке.
func (r *Repix) Apply(steps ...Adjustment) error {
	if r.working == nil {
		return ErrNotRestored
	}
	for _, step := range steps {
		if err := step.Apply(r.working); err != nil {
			return err
		}
	}
	return nil
}

// Upscale заменяет рабочий буфер увеличенной копией.
func (r *Repix) Upscale() error {
	if r.working == nil {
		return ErrNotRestored
	}
	scaled, err := Scale(r.working, r.scale)
	if err != nil {
		return err
	}
	r.working = scaled
	return nil
}

// Settings — параметры полного прогона. Нулевые значения выключают шаг.
type Settings struct {
	BlockSize     float32
	SampleSize    int
	Width         int
	Height        int
	Margin        int
	Scale         int
	AutoAdjust    bool
	Levels        int
	Threshold     uint
	Palette       *ColorTable
	PaletteColors int
	PaletteMethod PaletteMethod
	Outline       bool
	Verbose       bool
}

// Process: восстановление → постеризация → нормализация → палитра → контур → масштаб.
// При любой ошибке результата нет.
func Process(src *ImageData, s Settings) (*ImageData, error) {
	r, err := New(src)
	if err != nil {
		return nil, err
	}
	r.SetBlockSize(s.BlockSize)
	r.SetSampleSize(s.SampleSize)
	r.SetTargetSize(s.Width, s.Height)
	r.SetMargin(s.Margin)
	r.SetScale(s.Scale)
	r.SetAutoAdjust(s.AutoAdjust)

	if err := r.Restore(); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	if s.Verbose {
		log.Printf("блок %.3f: %dx%d → %dx%d", r.BlockSize(), r.Source().Width, r.Source().Height, r.working.Width, r.working.Height)
	}

	var steps []Adjustment
	if s.Levels != 0 {
		steps = append(steps, Posterizer{Levels: s.Levels})
	}
	if s.Threshold > 0 {
		steps = append(steps, ColorNormalizer{Threshold: s.Threshold})
	}
	if err := r.Apply(steps...); err != nil {
		return nil, err
	}

	palette := s.Palette
	if palette.Entries() == nil && s.PaletteColors > 0 {
		if palette, err = ExtractPalette(r.working, s.PaletteColors, s.PaletteMethod); err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		if s.Verbose {
			log.Printf("подобрана палитра из %d цветов (%s)", palette.Defined, s.PaletteMethod)
		}
	}
	steps = steps[:0]
	if palette.Entries() != nil {
		steps = append(steps, PaletteMapper{Table: palette})
	}
	if s.Outline {
		steps = append(steps, Outliner{})
	}
	if err := r.Apply(steps...); err != nil {
		return nil, err
	}

	if err := r.Upscale(); err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	return r.Image(), nil
}
