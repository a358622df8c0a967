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

func TestPackQuadRoundTrip(tt *testing.T) {
	cases := []struct {
		f              PixelFormat
		tl, tr, bl, br color.NRGBA
	}{
		{
			PixelFormatARGB1555,
			color.NRGBA{R: 248, G: 0, B: 0, A: 255},
			color.NRGBA{R: 0, G: 248, B: 0, A: 255},
			color.NRGBA{R: 0, G: 0, B: 248, A: 255},
			color.NRGBA{R: 248, G: 248, B: 248, A: 0},
		},
		{
			PixelFormatRGB565,
			color.NRGBA{R: 248, G: 4, B: 0, A: 255},
			color.NRGBA{R: 0, G: 248, B: 0, A: 255},
			color.NRGBA{R: 0, G: 0, B: 248, A: 255},
			color.NRGBA{R: 248, G: 248, B: 248, A: 255},
		},
		{
			PixelFormatARGB4444,
			color.NRGBA{R: 240, G: 0, B: 0, A: 240},
			color.NRGBA{R: 0, G: 240, B: 0, A: 240},
			color.NRGBA{R: 0, G: 0, B: 240, A: 240},
			color.NRGBA{R: 240, G: 240, B: 240, A: 0},
		},
	}

	for _, c := range cases {
		quad, err := packQuad(c.tl, c.tr, c.bl, c.br, c.f)
		if err != nil {
			tt.Fatalf("f=%v: packQuad: %v", c.f, err)
		}
		gtl, gtr, gbl, gbr, err := quadCorners(quad, c.f)
		if err != nil {
			tt.Fatalf("f=%v: quadCorners: %v", c.f, err)
		}

		want := [4]color.NRGBA{c.tl, c.tr, c.bl, c.br}
		got := [4]color.NRGBA{gtl, gtr, gbl, gbr}
		for i := range want {
			if got[i] != want[i] {
				tt.Errorf("f=%v corner %d: got %v, want %v", c.f, i, got[i], want[i])
			}
		}
	}
}

func TestCodebookOrderRoundTrip(tt *testing.T) {
	tl := color.NRGBA{R: 248, G: 0, B: 0, A: 255}
	tr := color.NRGBA{R: 0, G: 248, B: 0, A: 255}
	bl := color.NRGBA{R: 0, G: 0, B: 248, A: 255}
	br := color.NRGBA{R: 8, G: 16, B: 24, A: 255}

	quad, err := packQuad(tl, tr, bl, br, PixelFormatARGB1555)
	if err != nil {
		tt.Fatalf("packQuad: %v", err)
	}

	dst := make([]uint16, 4)
	writeCodebookOrder(dst, quad)

	roundTripped := quadFromCodebookOrder(dst[0], dst[1], dst[2], dst[3])
	if roundTripped != quad {
		tt.Errorf("codebook order round trip: got %#x, want %#x", roundTripped, quad)
	}
}
