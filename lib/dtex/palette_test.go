// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

import (
	"image/color"
	"testing"
)

func TestPaletteAddDeduplicates(tt *testing.T) {
	p := NewPalette()
	red := color.NRGBA{R: 255, A: 255}
	i0 := p.Add(red)
	i1 := p.Add(red)
	if i0 != i1 {
		tt.Errorf("adding the same color twice returned different indices: %d, %d", i0, i1)
	}
	if p.Len() != 1 {
		tt.Errorf("Len() = %d, want 1", p.Len())
	}

	green := color.NRGBA{G: 255, A: 255}
	i2 := p.Add(green)
	if i2 != 1 {
		tt.Errorf("second distinct color got index %d, want 1", i2)
	}
	if got, ok := p.IndexOf(red); !ok || got != i0 {
		tt.Errorf("IndexOf(red) = (%d, %v), want (%d, true)", got, ok, i0)
	}
}

func TestPaletteEncodeDecodeRoundTrip(tt *testing.T) {
	p := NewPalette()
	colors := []color.NRGBA{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 0, A: 128},
		{R: 0, G: 0, B: 255, A: 0},
		{R: 10, G: 20, B: 30, A: 40},
	}
	for _, c := range colors {
		p.Add(c)
	}

	got, err := DecodePalette(p.Encode())
	if err != nil {
		tt.Fatalf("DecodePalette: %v", err)
	}
	if got.Len() != p.Len() {
		tt.Fatalf("Len() = %d, want %d", got.Len(), p.Len())
	}
	for i, c := range colors {
		if got.ColorAt(i) != c {
			tt.Errorf("ColorAt(%d) = %v, want %v", i, got.ColorAt(i), c)
		}
	}
}

func TestDecodePaletteRejectsBadMagic(tt *testing.T) {
	if _, err := DecodePalette([]byte("nope")); err != ErrNotADPALFile {
		tt.Errorf("err = %v, want ErrNotADPALFile", err)
	}
}

func TestPaletteColorAtOutOfRangeReturnsOpaqueBlack(tt *testing.T) {
	p := NewPalette()
	p.Add(color.NRGBA{R: 255, A: 255})

	want := color.NRGBA{A: 255}
	cases := []int{-1, 1, 2, 1000}
	for _, i := range cases {
		if got := p.ColorAt(i); got != want {
			tt.Errorf("ColorAt(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestPaletteIndexOfUnknownColor(tt *testing.T) {
	p := NewPalette()
	p.Add(color.NRGBA{R: 255, A: 255})

	if _, ok := p.IndexOf(color.NRGBA{G: 255, A: 255}); ok {
		tt.Errorf("IndexOf on an unknown color reported ok=true")
	}
}
