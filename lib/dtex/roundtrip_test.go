// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

import (
	"image"
	"image/color"
	"testing"
)

// checkerboard fills a side x side raster with one of the given
// already-quantized colors per pixel, chosen by (x+y)%len(colors), so
// callers control exactly how many distinct colors/quads appear.
func checkerboard(side int, colors []color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.SetNRGBA(x, y, colors[(x+y)%len(colors)])
		}
	}
	return img
}

func assertImagesEqual(tt *testing.T, got, want *image.NRGBA) {
	tt.Helper()
	gb, wb := got.Bounds(), want.Bounds()
	if gb != wb {
		tt.Fatalf("bounds = %v, want %v", gb, wb)
	}
	for y := wb.Min.Y; y < wb.Max.Y; y++ {
		for x := wb.Min.X; x < wb.Max.X; x++ {
			if g, w := got.NRGBAAt(x, y), want.NRGBAAt(x, y); g != w {
				tt.Errorf("(%d,%d): got %v, want %v", x, y, g, w)
			}
		}
	}
}

func TestRoundTripRGB565UncompressedNonMipmapped(tt *testing.T) {
	colors := []color.NRGBA{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 248, G: 252, B: 248, A: 255},
		{R: 0, G: 252, B: 0, A: 255},
		{R: 248, G: 0, B: 248, A: 255},
	}
	src := checkerboard(8, colors)

	data, _, err := Encode([]*image.NRGBA{src}, PixelFormatRGB565, false, false, false, nil, nil)
	if err != nil {
		tt.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data, nil, nil)
	if err != nil {
		tt.Fatalf("Decode: %v", err)
	}
	assertImagesEqual(tt, decoded.Image, src)
}

func TestRoundTripRGB565CompressedLosslessMipmapped(tt *testing.T) {
	colors := []color.NRGBA{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 248, G: 252, B: 248, A: 255},
		{R: 0, G: 252, B: 0, A: 255},
		{R: 248, G: 0, B: 248, A: 255},
	}
	src := checkerboard(8, colors)

	data, _, err := Encode([]*image.NRGBA{src}, PixelFormatRGB565, true, true, false, NearestNeighborDownsampler, nil)
	if err != nil {
		tt.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data, nil, nil)
	if err != nil {
		tt.Fatalf("Decode: %v", err)
	}
	assertImagesEqual(tt, decoded.Levels[8], src)
}

func TestRoundTripPAL8BPPUncompressedMipmapped(tt *testing.T) {
	colors := []color.NRGBA{
		{R: 10, G: 20, B: 30, A: 255},
		{R: 40, G: 50, B: 60, A: 255},
		{R: 70, G: 80, B: 90, A: 255},
		{R: 100, G: 110, B: 120, A: 255},
		{R: 130, G: 140, B: 150, A: 255},
	}
	src := checkerboard(8, colors)

	data, pal, err := Encode([]*image.NRGBA{src}, PixelFormatPAL8BPP, true, false, false, NearestNeighborDownsampler, nil)
	if err != nil {
		tt.Fatalf("Encode: %v", err)
	}
	if pal == nil {
		tt.Fatalf("palette is nil for PAL8BPP")
	}
	decoded, err := Decode(data, pal, nil)
	if err != nil {
		tt.Fatalf("Decode: %v", err)
	}
	assertImagesEqual(tt, decoded.Levels[8], src)
}

func TestRoundTripPAL4BPPUncompressedNonMipmapped(tt *testing.T) {
	colors := []color.NRGBA{
		{R: 10, G: 20, B: 30, A: 255},
		{R: 40, G: 50, B: 60, A: 255},
		{R: 70, G: 80, B: 90, A: 255},
	}
	src := checkerboard(8, colors)

	data, pal, err := Encode([]*image.NRGBA{src}, PixelFormatPAL4BPP, false, false, false, nil, nil)
	if err != nil {
		tt.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data, pal, nil)
	if err != nil {
		tt.Fatalf("Decode: %v", err)
	}
	assertImagesEqual(tt, decoded.Image, src)
}

func TestRoundTripStridedARGB1555(tt *testing.T) {
	colors := []color.NRGBA{
		{R: 0, G: 0, B: 0, A: 0},
		{R: 248, G: 248, B: 248, A: 255},
	}
	src := checkerboard(32, colors)
	// Give the raster its required 32x8 strided shape (width multiple of
	// 32, height a power of two >= 8) rather than the square checkerboard
	// helper's default.
	img := image.NewNRGBA(image.Rect(0, 0, 32, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, src.NRGBAAt(x, y))
		}
	}

	data, pal, err := Encode([]*image.NRGBA{img}, PixelFormatARGB1555, false, false, true, nil, nil)
	if err != nil {
		tt.Fatalf("Encode: %v", err)
	}
	if pal != nil {
		tt.Errorf("palette = %v, want nil for a non-paletted format", pal)
	}
	decoded, err := Decode(data, nil, nil)
	if err != nil {
		tt.Fatalf("Decode: %v", err)
	}
	assertImagesEqual(tt, decoded.Image, img)
}

// TestStridedHeaderWidthIsNextPowerOfTwo pins the on-disk header Width
// field for a stride width that is a multiple of 32 but not itself a
// power of two: the header stores the rounded-up value, and the real
// width is recovered from the stride setting, not from this field.
func TestStridedHeaderWidthIsNextPowerOfTwo(tt *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 96, 8))

	data, _, err := Encode([]*image.NRGBA{img}, PixelFormatARGB1555, false, false, true, nil, nil)
	if err != nil {
		tt.Fatalf("Encode: %v", err)
	}

	h, err := ParseHeader(data)
	if err != nil {
		tt.Fatalf("ParseHeader: %v", err)
	}
	if h.Width != 128 {
		tt.Errorf("header Width = %d, want 128 (next power of two above 96)", h.Width)
	}
	if got := h.Type.StrideSetting() * 32; got != 96 {
		tt.Errorf("StrideSetting()*32 = %d, want 96 (the real width)", got)
	}

	decoded, err := Decode(data, nil, nil)
	if err != nil {
		tt.Fatalf("Decode: %v", err)
	}
	if b := decoded.Image.Bounds(); b.Dx() != 96 || b.Dy() != 8 {
		tt.Errorf("decoded bounds = %v, want 96x8", b)
	}
}
