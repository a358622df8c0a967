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
)

// To16BPP converts a straight-alpha ARGB pixel to its packed 16-bit
// on-disk encoding for pixel format f. YUV422 and the palette formats are
// not single-pixel encodings and are rejected; see EncodeYUV422Pair and
// the palette encoders for those.
func To16BPP(c color.NRGBA, f PixelFormat) (uint16, error) {
	switch f {
	case PixelFormatARGB1555:
		var a uint16
		if c.A >= 128 {
			a = 1
		}
		r := uint16(c.R>>3) & 0x1F
		g := uint16(c.G>>3) & 0x1F
		b := uint16(c.B>>3) & 0x1F
		return (a << 15) | (r << 10) | (g << 5) | b, nil
	case PixelFormatRGB565:
		r := uint16(c.R>>3) & 0x1F
		g := uint16(c.G>>2) & 0x3F
		b := uint16(c.B>>3) & 0x1F
		return (r << 11) | (g << 5) | b, nil
	case PixelFormatARGB4444:
		a := uint16(c.A>>4) & 0xF
		r := uint16(c.R>>4) & 0xF
		g := uint16(c.G>>4) & 0xF
		b := uint16(c.B>>4) & 0xF
		return (a << 12) | (r << 8) | (g << 4) | b, nil
	case PixelFormatBumpMap:
		return toSpherical(c), nil
	}
	return 0xFFFF, errUnsupportedFormat(f)
}

// From16BPP is the inverse of To16BPP.
func From16BPP(texel uint16, f PixelFormat) (color.NRGBA, error) {
	switch f {
	case PixelFormatARGB1555:
		a := uint8(0)
		if (texel >> 15) == 1 {
			a = 255
		}
		r := uint8((texel>>10)&0x1F) << 3
		g := uint8((texel>>5)&0x1F) << 3
		b := uint8((texel>>0)&0x1F) << 3
		return color.NRGBA{R: r, G: g, B: b, A: a}, nil
	case PixelFormatRGB565:
		r := uint8((texel>>11)&0x1F) << 3
		g := uint8((texel>>5)&0x3F) << 2
		b := uint8((texel>>0)&0x1F) << 3
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	case PixelFormatARGB4444:
		a := uint8((texel>>12)&0xF) << 4
		r := uint8((texel>>8)&0xF) << 4
		g := uint8((texel>>4)&0xF) << 4
		b := uint8((texel>>0)&0xF) << 4
		return color.NRGBA{R: r, G: g, B: b, A: a}, nil
	case PixelFormatBumpMap:
		return toCartesian(texel), nil
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}, errUnsupportedFormat(f)
}

const (
	doublePi = math.Pi * 2.0
	halfPi   = math.Pi / 2.0
)

// toSpherical packs the (R, G, B) of c, read as the (x, y, z) of a unit
// surface normal, into a BUMPMAP texel: elevation (0 = flat) in the high
// byte, azimuth in the low byte.
func toSpherical(c color.NRGBA) uint16 {
	x := float64(c.R)/255.0*2.0 - 1.0
	y := float64(c.G)/255.0*2.0 - 1.0
	z := float64(c.B) / 255.0

	radius := math.Sqrt(x*x + y*y + z*z)
	polar := math.Acos(z / radius)
	azimuth := math.Atan2(y, x)

	polar = halfPi - polar
	polar = (polar / halfPi) * 255.0
	s := clampInt(int(polar), 0, 255)

	if azimuth < 0 {
		azimuth += doublePi
	}
	azimuth = (azimuth / doublePi) * 255.0
	r := clampInt(int(azimuth), 0, 255)

	return uint16((s << 8) | r)
}

// toCartesian decodes a BUMPMAP texel into the (R, G, B) of a unit
// normal. R and G are x and y remapped from [-1, 1] to [0, 255], the
// inverse of toSpherical's mapping. B is cos(elevation) remapped the same
// way, so it lands in [127, 255], whereas toSpherical reads B as z in
// [0, 1]; B therefore does not round-trip to its input value.
func toCartesian(sr uint16) color.NRGBA {
	s := (1.0 - (float64(sr>>8) / 255.0)) * halfPi
	r := (float64(sr&0xFF) / 255.0) * doublePi
	if r > math.Pi {
		r -= doublePi
	}

	x := (math.Sin(s)*math.Cos(r) + 1.0) * 0.5
	y := (math.Sin(s)*math.Sin(r) + 1.0) * 0.5
	z := (math.Cos(s) + 1.0) * 0.5

	return color.NRGBA{
		R: clampByte(x * 255.0),
		G: clampByte(y * 255.0),
		B: clampByte(z * 255.0),
		A: 255,
	}
}

// EncodeYUV422Pair packs two horizontally-adjacent pixels into the
// co-located YUV422 pair: Y0/Y1 from each pixel's own luma, U/V from the
// pair's averaged R/G/B.
func EncodeYUV422Pair(c0, c1 color.NRGBA) (yuv0, yuv1 uint16) {
	avgR := (int(c0.R) + int(c1.R)) / 2
	avgG := (int(c0.G) + int(c1.G)) / 2
	avgB := (int(c0.B) + int(c1.B)) / 2

	y0 := clampInt(int(0.299*float64(c0.R)+0.587*float64(c0.G)+0.114*float64(c0.B)), 0, 255)
	y1 := clampInt(int(0.299*float64(c1.R)+0.587*float64(c1.G)+0.114*float64(c1.B)), 0, 255)

	u := clampInt(int(-0.169*float64(avgR)-0.331*float64(avgG)+0.499*float64(avgB)+128), 0, 255)
	v := clampInt(int(0.499*float64(avgR)-0.418*float64(avgG)-0.0813*float64(avgB)+128), 0, 255)

	yuv0 = uint16(y0)<<8 | uint16(u)
	yuv1 = uint16(y1)<<8 | uint16(v)
	return yuv0, yuv1
}

// DecodeYUV422Pair is the (lossy) inverse of EncodeYUV422Pair.
func DecodeYUV422Pair(yuv0, yuv1 uint16) (c0, c1 color.NRGBA) {
	y0 := int(yuv0>>8) & 0xFF
	y1 := int(yuv1>>8) & 0xFF
	u := int(yuv0&0xFF) - 128
	v := int(yuv1&0xFF) - 128

	c0 = color.NRGBA{
		R: clampByte(float64(y0) + 1.375*float64(v)),
		G: clampByte(float64(y0) - 0.34375*float64(u) - 0.6875*float64(v)),
		B: clampByte(float64(y0) + 1.71875*float64(u)),
		A: 255,
	}
	c1 = color.NRGBA{
		R: clampByte(float64(y1) + 1.375*float64(v)),
		G: clampByte(float64(y1) - 0.34375*float64(u) - 0.6875*float64(v)),
		B: clampByte(float64(y1) + 1.71875*float64(u)),
		A: 255,
	}
	return c0, c1
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampByte(v float64) uint8 {
	return uint8(clampInt(int(v), 0, 255))
}
