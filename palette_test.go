package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func makeACT(colors [][3]byte, defined, transparency int16) []byte {
	raw := make([]byte, ACTFileSize)
	for i, c := range colors {
		copy(raw[i*3:], c[:])
	}
	binary.BigEndian.PutUint16(raw[ACTTableSize:], uint16(defined))
	binary.BigEndian.PutUint16(raw[ACTTableSize+2:], uint16(transparency))
	return raw
}

func TestReadAdobeColorTable(t *testing.T) {
	raw := makeACT([][3]byte{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}}, 3, 1)
	ct, err := ReadAdobeColorTable(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadAdobeColorTable: %v", err)
	}
	if ct.Defined != 3 || ct.Transparency != 1 {
		t.Fatalf("defined=%d transparency=%d", ct.Defined, ct.Transparency)
	}
	want := []Color{0xFFFF0000, 0xFF00FF00, 0xFF0000FF}
	entries := ct.Entries()
	if len(entries) != len(want) {
		t.Fatalf("len(Entries) = %d", len(entries))
	}
	for i, c := range want {
		if entries[i] != c {
			t.Fatalf("entry %d = %#08x, want %#08x", i, uint32(entries[i]), uint32(c))
		}
	}
	if tc, ok := ct.TransparentColor(); !ok || tc != 0xFF00FF00 {
		t.Fatalf("TransparentColor = %#08x, %v", uint32(tc), ok)
	}
}

func TestReadAdobeColorTableVariants(t *testing.T) {
	for _, tc := range []struct {
		name         string
		raw          []byte
		defined      int16
		transparency int16
	}{
		{name: "legacy_768", raw: make([]byte, ACTTableSize), defined: 256, transparency: -1},
		{name: "unset_count", raw: makeACT(nil, -1, -1), defined: 0, transparency: -1},
		{name: "count_too_big", raw: makeACT(nil, 1000, 300), defined: 256, transparency: -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ct, err := ReadAdobeColorTable(bytes.NewReader(tc.raw))
			if err != nil {
				t.Fatalf("ReadAdobeColorTable: %v", err)
			}
			if ct.Defined != tc.defined || ct.Transparency != tc.transparency {
				t.Fatalf("defined=%d transparency=%d, want %d %d", ct.Defined, ct.Transparency, tc.defined, tc.transparency)
			}
		})
	}
}

func TestReadAdobeColorTableShort(t *testing.T) {
	if _, err := ReadAdobeColorTable(bytes.NewReader(make([]byte, 100))); !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}

func TestLoadAdobeColorTable(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadAdobeColorTable(filepath.Join(dir, "none.act")); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("missing: err = %v", err)
	}
	path := filepath.Join(dir, "pico.act")
	if err := os.WriteFile(path, makeACT([][3]byte{{1, 2, 3}}, 1, -1), 0o644); err != nil {
		t.Fatal(err)
	}
	ct, err := LoadAdobeColorTable(path)
	if err != nil {
		t.Fatalf("LoadAdobeColorTable: %v", err)
	}
	if ct.Defined != 1 || ct.Colors[0] != 0xFF010203 {
		t.Fatalf("unexpected table %+v", ct.Entries())
	}
	if _, ok := ct.TransparentColor(); ok {
		t.Fatalf("no transparency expected")
	}
}

func TestNewColorTableIsEmpty(t *testing.T) {
	ct := NewColorTable()
	if ct.Defined != 0 || ct.Transparency != -1 || ct.Entries() != nil {
		t.Fatalf("default table not empty: %+v", ct)
	}
	var nilTable *ColorTable
	if nilTable.Entries() != nil {
		t.Fatalf("nil table has entries")
	}
}

func TestSortPaletteByHue(t *testing.T) {
	blue, red, green := Color(0xFF0000FF), Color(0xFFFF0000), Color(0xFF00FF00)
	darkRed := Color(0xFF800000)
	palette := []Color{blue, red, green, darkRed}
	SortPaletteByHue(palette)
	want := []Color{darkRed, red, green, blue}
	for i := range want {
		if palette[i] != want[i] {
			t.Fatalf("position %d = %#08x, want %#08x", i, uint32(palette[i]), uint32(want[i]))
		}
	}
}

func TestExtractPalette(t *testing.T) {
	red := Color(0xFFFF0000)
	img := solidImage(t, 8, 8, red)

	ct, err := ExtractPalette(img, 0, PaletteMethodKMeans)
	if err != nil || ct.Entries() != nil {
		t.Fatalf("k=0: %v %v", ct.Entries(), err)
	}

	for _, method := range []PaletteMethod{PaletteMethodKMeans, PaletteMethodDominantColor} {
		t.Run(method.String(), func(t *testing.T) {
			ct, err := ExtractPalette(img, 3, method)
			if err != nil {
				t.Fatalf("ExtractPalette: %v", err)
			}
			if ct.Defined < 1 || ct.Defined > 3 {
				t.Fatalf("defined = %d", ct.Defined)
			}
			if ct.Transparency != -1 {
				t.Fatalf("transparency = %d", ct.Transparency)
			}
		})
	}
}

func TestParsePaletteMethod(t *testing.T) {
	for _, m := range []PaletteMethod{PaletteMethodKMeans, PaletteMethodDominantColor, PaletteMethodFrequency} {
		got, err := ParsePaletteMethod(m.String())
		if err != nil || got != m {
			t.Fatalf("ParsePaletteMethod(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParsePaletteMethod("median"); err == nil {
		t.Fatalf("unknown method accepted")
	}
}

func TestExtractPaletteFrequency(t *testing.T) {
	red, green, blue := Color(0xFFFF0000), Color(0xFF00FF00), Color(0xFF0000FF)
	img := rowImage(t, blue, red, green, red, blue, red, Transparent)
	ct, err := ExtractPalette(img, 2, PaletteMethodFrequency)
	if err != nil {
		t.Fatalf("ExtractPalette: %v", err)
	}
	got := ct.Entries()
	if len(got) != 2 || got[0] != red || got[1] != blue {
		t.Fatalf("entries = %#v, want red and blue", got)
	}
}
