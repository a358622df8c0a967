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
	"math"
	"testing"
)

// quantizedSamples5Bit returns colors whose channels already sit on the
// format's quantization grid, so To16BPP/From16BPP round-trips exactly.
func quantizedSamples5Bit() []color.NRGBA {
	var out []color.NRGBA
	for _, a := range []uint8{0, 255} {
		for v := 0; v < 256; v += 8 {
			out = append(out, color.NRGBA{R: uint8(v), G: uint8(v), B: uint8(248 - v), A: a})
		}
	}
	return out
}

func TestARGB1555RoundTrip(tt *testing.T) {
	for _, c := range quantizedSamples5Bit() {
		texel, err := To16BPP(c, PixelFormatARGB1555)
		if err != nil {
			tt.Fatalf("To16BPP(%v): %v", c, err)
		}
		got, err := From16BPP(texel, PixelFormatARGB1555)
		if err != nil {
			tt.Fatalf("From16BPP: %v", err)
		}
		if got != c {
			tt.Errorf("ARGB1555 round trip: got %v, want %v", got, c)
		}
	}
}

func TestRGB565RoundTrip(tt *testing.T) {
	for g := 0; g < 256; g += 4 {
		for v := 0; v < 256; v += 8 {
			c := color.NRGBA{R: uint8(v), G: uint8(g), B: uint8(255 - v), A: 255}
			texel, err := To16BPP(c, PixelFormatRGB565)
			if err != nil {
				tt.Fatalf("To16BPP(%v): %v", c, err)
			}
			got, err := From16BPP(texel, PixelFormatRGB565)
			if err != nil {
				tt.Fatalf("From16BPP: %v", err)
			}
			want := color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
			if got != want {
				tt.Errorf("RGB565 round trip: got %v, want %v", got, want)
			}
		}
	}
}

func TestARGB4444RoundTrip(tt *testing.T) {
	for v := 0; v < 256; v += 16 {
		c := color.NRGBA{R: uint8(v), G: uint8(240 - v), B: uint8(v), A: uint8(240 - v)}
		texel, err := To16BPP(c, PixelFormatARGB4444)
		if err != nil {
			tt.Fatalf("To16BPP(%v): %v", c, err)
		}
		got, err := From16BPP(texel, PixelFormatARGB4444)
		if err != nil {
			tt.Fatalf("From16BPP: %v", err)
		}
		if got != c {
			tt.Errorf("ARGB4444 round trip: got %v, want %v", got, c)
		}
	}
}

// TestBumpMapRoundTrip checks the spherical-coordinate codec on unit
// surface normals: every channel must stay within a small tolerance of
// its expected value, since the polar/azimuth quantization to a byte
// each is inherently lossy. R and G (x and y, mapped from [-1, 1]) are
// expected back as given. B is read as z in [0, 1] on encode but decoded
// as (cos(elevation)+1)/2, so its expected value is that remapping of
// the input z.
func TestBumpMapRoundTrip(tt *testing.T) {
	const tolerance = 3

	for x := 16; x < 256; x += 32 {
		for y := 16; y < 256; y += 32 {
			nx := float64(x)/255.0*2.0 - 1.0
			ny := float64(y)/255.0*2.0 - 1.0
			if nx*nx+ny*ny >= 1 {
				continue
			}
			z := uint8(math.Sqrt(1-nx*nx-ny*ny)*255.0 + 0.5)
			c := color.NRGBA{R: uint8(x), G: uint8(y), B: z, A: 255}
			want := color.NRGBA{R: c.R, G: c.G, B: uint8((float64(z)/255.0 + 1.0) * 0.5 * 255.0), A: 255}
			texel, err := To16BPP(c, PixelFormatBumpMap)
			if err != nil {
				tt.Fatalf("To16BPP(%v): %v", c, err)
			}
			got, err := From16BPP(texel, PixelFormatBumpMap)
			if err != nil {
				tt.Fatalf("From16BPP: %v", err)
			}
			if absDiff(got.R, want.R) > tolerance || absDiff(got.G, want.G) > tolerance || absDiff(got.B, want.B) > tolerance {
				tt.Errorf("bumpmap round trip of %v: got %v, want near %v", c, got, want)
			}
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// TestYUV422PairBoundedError checks the lossy YUV round trip stays within
// the error budget the averaged-chroma, co-located-pair encoding implies:
// luma is near-exact, chroma can drift more since it's shared by two
// pixels.
func TestYUV422PairBoundedError(tt *testing.T) {
	const chromaTolerance = 12

	pairs := []struct{ c0, c1 color.NRGBA }{
		{color.NRGBA{R: 200, G: 50, B: 10, A: 255}, color.NRGBA{R: 190, G: 60, B: 20, A: 255}},
		{color.NRGBA{R: 0, G: 0, B: 0, A: 255}, color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{color.NRGBA{R: 128, G: 128, B: 128, A: 255}, color.NRGBA{R: 128, G: 128, B: 128, A: 255}},
	}

	for _, p := range pairs {
		y0, y1 := EncodeYUV422Pair(p.c0, p.c1)
		gotC0, gotC1 := DecodeYUV422Pair(y0, y1)

		for _, diff := range []struct{ got, want color.NRGBA }{{gotC0, p.c0}, {gotC1, p.c1}} {
			if absDiff(diff.got.R, diff.want.R) > chromaTolerance ||
				absDiff(diff.got.G, diff.want.G) > chromaTolerance ||
				absDiff(diff.got.B, diff.want.B) > chromaTolerance {
				tt.Errorf("YUV422 pair %v/%v: got %v, want near %v", p.c0, p.c1, diff.got, diff.want)
			}
		}
	}
}
