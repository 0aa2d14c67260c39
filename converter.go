package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type BMPHeader struct {
	Type       [2]byte
	Size       uint32
	Reserved1  uint16
	Reserved2  uint16
	OffBits    uint32
	InfoSize   uint32
	Width      int32
	Height     int32
	Planes     uint16
	BitCount   uint16
	Compress   uint32
	SizeImage  uint32
	XPelsPerM  int32
	YPelsPerM  int32
	ClrUsed    uint32
	ClrImportn uint32
}

const (
	BMPFileHeaderSize = 14
	BMPInfoHeaderSize = 40
	BiRGB             = 0
	BiBitfields       = 3
	PBMMagic          = "P4"
)

// LoadImage читает PNG, BMP или PBM (по расширению) в буфер исходной глубины.
func LoadImage(filename string) (*ImageData, error) {
	f, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filename)
		}
		return nil, err
	}
	defer f.Close()

	var img *ImageData
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bmp":
		img, err = DecodeBMP(f)
	case ".pbm":
		img, err = DecodePBM(f)
	default:
		img, err = DecodePNG(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return img, nil
}

// DecodePNG приводит PNG любой глубины и типа к 32-битному RGBA без предумножения.
func DecodePNG(r io.Reader) (*ImageData, error) {
	m, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: png: %v", ErrDecode, err)
	}
	return FromImage(m)
}

// DecodeBMP читает несжатый BMP 1/4/8/24/32 бит. Строки выровнены по 4 байта,
// порядок снизу вверх, если высота положительная.
func DecodeBMP(r io.Reader) (*ImageData, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: bmp: %v", ErrDecode, err)
	}
	var hdr BMPHeader
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: bmp header: %v", ErrDecode, err)
	}
	if hdr.Type != [2]byte{'B', 'M'} {
		return nil, fmt.Errorf("%w: not a BMP", ErrDecode)
	}
	if hdr.InfoSize < BMPInfoHeaderSize {
		return nil, fmt.Errorf("%w: bmp info header of %d bytes", ErrUnsupportedFormat, hdr.InfoSize)
	}
	bitCount := int(hdr.BitCount)
	switch bitCount {
	case 1, 4, 8, 24:
		if hdr.Compress != BiRGB {
			return nil, fmt.Errorf("%w: bmp compression %d", ErrUnsupportedFormat, hdr.Compress)
		}
	case 32:
		if hdr.Compress != BiRGB && hdr.Compress != BiBitfields {
			return nil, fmt.Errorf("%w: bmp compression %d", ErrUnsupportedFormat, hdr.Compress)
		}
	default:
		return nil, fmt.Errorf("%w: bmp with %d bits per pixel", ErrUnsupportedFormat, bitCount)
	}

	w := int(hdr.Width)
	h := int(hdr.Height)
	topDown := h < 0
	if topDown {
		h = -h
	}
	if w < 0 {
		w = -w
	}
	img, err := NewPixmap(w, h, bitCount)
	if err != nil {
		return nil, err
	}

	if bitCount <= 8 {
		palCount := int(hdr.ClrUsed)
		if palCount == 0 || palCount > 1<<bitCount {
			palCount = 1 << bitCount
		}
		palOff := BMPFileHeaderSize + int(hdr.InfoSize)
		if palOff+palCount*4 > len(raw) {
			return nil, fmt.Errorf("%w: bmp palette truncated", ErrDecode)
		}
		img.Palette = make([]Color, palCount)
		for i := range img.Palette {
			p := raw[palOff+i*4:]
			img.Palette[i] = NewColor(255, p[2], p[1], p[0])
		}
	}

	fileStride := (w*bitCount + 31) / 32 * 4
	off := int(hdr.OffBits)
	if off < 0 || off+fileStride*h > len(raw) {
		return nil, fmt.Errorf("%w: bmp pixel data truncated", ErrDecode)
	}
	stride := img.Stride()
	var alpha byte
	for row := 0; row < h; row++ {
		y := h - 1 - row
		if topDown {
			y = row
		}
		src := raw[off+row*fileStride : off+row*fileStride+stride]
		dst := img.Data[y*stride : (y+1)*stride]
		switch bitCount {
		case 24:
			for x := 0; x < w; x++ {
				dst[x*3+0] = src[x*3+2]
				dst[x*3+1] = src[x*3+1]
				dst[x*3+2] = src[x*3+0]
			}
		case 32:
			// B,G,R,A в little-endian — это и есть упакованный Color.
			copy(dst, src)
			for x := 0; x < w; x++ {
				alpha |= src[x*4+3]
			}
		default:
			copy(dst, src)
		}
	}
	// Большинство 32-битных BMP не заполняют альфу.
	if bitCount == 32 && alpha == 0 {
		for i := 3; i < len(img.Data); i += 4 {
			img.Data[i] = 255
		}
	}
	return img, nil
}

// DecodePBM читает «сырой» PBM (P4): 1 бит на пиксель, старший бит первым, 1 — чёрный.
func DecodePBM(r io.Reader) (*ImageData, error) {
	br := bufio.NewReader(r)
	magic, err := pbmToken(br)
	if err != nil {
		return nil, fmt.Errorf("%w: pbm: %v", ErrDecode, err)
	}
	if magic != PBMMagic {
		return nil, fmt.Errorf("%w: pbm magic %q", ErrDecode, magic)
	}
	var dims [2]int
	for i := range dims {
		tok, err := pbmToken(br)
		if err != nil {
			return nil, fmt.Errorf("%w: pbm: %v", ErrDecode, err)
		}
		if _, err := fmt.Sscanf(tok, "%d", &dims[i]); err != nil {
			return nil, fmt.Errorf("%w: pbm size %q", ErrDecode, tok)
		}
	}
	img, err := NewPixmap(dims[0], dims[1], 1)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(br, img.Data); err != nil {
		return nil, fmt.Errorf("%w: pbm pixel data: %v", ErrDecode, err)
	}
	img.Palette = []Color{NewColor(255, 255, 255, 255), OpaqueBlack}
	return img, nil
}

// pbmToken читает очередное слово заголовка, пропуская комментарии;
// завершающий пробельный символ поглощается.
func pbmToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", err
		}
		switch {
		case c == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", err
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, c)
		}
	}
}

// EncodePNG пишет 8-битный (серый), 24-битный (RGB) или 32-битный (RGBA) буфер.
func EncodePNG(w io.Writer, img *ImageData) error {
	var m image.Image
	switch img.BitWidth {
	case 8:
		gray := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
		copy(gray.Pix, img.Data)
		m = gray
	case 24, 32:
		nrgba, err := img.ToNRGBA()
		if err != nil {
			return err
		}
		m = nrgba
	default:
		return fmt.Errorf("%w: cannot save %d bits per pixel as PNG", ErrUnsupportedFormat, img.BitWidth)
	}
	return png.Encode(w, m)
}

// SavePNG кодирует изображение целиком в память и только потом создаёт файл.
func SavePNG(filename string, img *ImageData) error {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return err
	}
	return os.WriteFile(filename, buf.Bytes(), 0o644)
}
