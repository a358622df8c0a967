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
	"sort"
)

// codeUsageColors is a fixed, roughly evenly distributed 256-color
// palette used to visualize which codebook entry produced which block
// of a decoded compressed texture. Index i is always drawn in the same
// color, so comparing two code-usage images highlights where codebook
// assignment changed.
var codeUsageColors = buildCodeUsageColors()

func buildCodeUsageColors() [256]color.NRGBA {
	var out [256]color.NRGBA
	for i, hex := range codeUsageHex {
		out[i] = hexToNRGBA(hex)
	}
	return out
}

func hexToNRGBA(hex string) color.NRGBA {
	v := func(c byte) uint8 {
		switch {
		case c >= '0' && c <= '9':
			return c - '0'
		default:
			return c - 'a' + 10
		}
	}
	r := v(hex[0])*16 + v(hex[1])
	g := v(hex[2])*16 + v(hex[3])
	b := v(hex[4])*16 + v(hex[5])
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

var codeUsageHex = [256]string{
	"ffffff", "e3aaaa", "ffc7c7", "aac7c7", "aac7aa", "aaaae3", "aaaaff", "aae3ff",
	"ffaae3", "e3ffaa", "ffffaa", "ffaaff", "aaffc7", "e3c7ff", "c7aaaa", "e3e3e3",
	"aa7171", "c78e8e", "718e8e", "718e71", "7171aa", "7171c7", "71aac7", "c771aa",
	"aac771", "c7c771", "c771c7", "71c78e", "aa8ec7", "8e7171", "aaaaaa", "c7c7c7",
	"710000", "8e1c1c", "381c1c", "381c00", "380038", "380055", "383855", "8e0038",
	"715500", "8e5500", "8e0055", "38551c", "711c55", "550000", "713838", "8e5555",
	"aa38aa", "c755c7", "7155c7", "7155aa", "7138e3", "7138ff", "7171ff", "c738e3",
	"aa8eaa", "c78eaa", "c738ff", "718ec7", "aa55ff", "8e38aa", "aa71e3", "c78eff",
	"38aa38", "55c755", "00c755", "00c738", "00aa71", "00aa8e", "00e38e", "55aa71",
	"38ff38", "55ff38", "55aa8e", "00ff55", "38c78e", "1caa38", "38e371", "55ff8e",
	"e300aa", "ff1cc7", "aa1cc7", "aa1caa", "aa00e3", "aa00ff", "aa38ff", "ff00e3",
	"e355aa", "ff55aa", "ff00ff", "aa55c7", "e31cff", "c700aa", "e338e3", "ff55ff",
	"e3aa00", "ffc71c", "aac71c", "aac700", "aaaa38", "aaaa55", "aae355", "ffaa38",
	"e3ff00", "ffff00", "ffaa55", "aaff1c", "e3c755", "c7aa00", "e3e338", "ffff55",
	"aaaa00", "c7c71c", "71c71c", "71c700", "71aa38", "71aa55", "71e355", "c7aa38",
	"aaff00", "c7ff00", "c7aa55", "71ff1c", "aac755", "8eaa00", "aae338", "c7ff55",
	"e30071", "ff1c8e", "aa1c8e", "aa1c71", "aa00aa", "aa00c7", "aa38c7", "ff00aa",
	"e35571", "ff5571", "ff00c7", "aa558e", "e31cc7", "c70071", "e338aa", "ff55c7",
	"3871aa", "558ec7", "008ec7", "008eaa", "0071e3", "0071ff", "00aaff", "5571e3",
	"38c7aa", "55c7aa", "5571ff", "00c7c7", "388eff", "1c71aa", "38aae3", "55c7ff",
	"3800aa", "551cc7", "001cc7", "001caa", "0000e3", "0000ff", "0038ff", "5500e3",
	"3855aa", "5555aa", "5500ff", "0055c7", "381cff", "1c00aa", "3838e3", "5555ff",
	"380071", "551c8e", "001c8e", "001c71", "0000aa", "0000c7", "0038c7", "5500aa",
	"385571", "555571", "5500c7", "00558e", "381cc7", "1c0071", "3838aa", "5555c7",
	"383800", "55551c", "00551c", "005500", "003838", "003855", "007155", "553838",
	"388e00", "558e00", "553855", "008e1c", "385555", "1c3800", "387138", "558e55",
	"383838", "555555", "005555", "005538", "003871", "00388e", "00718e", "553871",
	"388e38", "558e38", "55388e", "008e55", "38558e", "1c3838", "387171", "558e8e",
	"e33838", "ff5555", "aa5555", "aa5538", "aa3871", "aa388e", "aa718e", "ff3871",
	"e38e38", "ff8e38", "ff388e", "aa8e55", "e3558e", "c73838", "e37171", "ff8e8e",
	"aa0000", "c71c1c", "711c1c", "711c00", "710038", "710055", "713855", "c70038",
	"aa5500", "c75500", "c70055", "71551c", "aa1c55", "8e0000", "aa3838", "c75555",
}

// drawCodeUsageBlock paints one codebook-index assignment into img as a
// solid rectangle of its fixed visualization color.
func drawCodeUsageBlock(img *image.NRGBA, b CodeUsageBlock) {
	c := codeUsageColors[b.Code]
	for y := b.Y; y < b.Y+b.H; y++ {
		for x := b.X; x < b.X+b.W; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// RenderCodeUsageLevel draws one mipmap level's code assignments as a
// flat-colored raster, one solid block per codebook index used.
func RenderCodeUsageLevel(level CodeUsageLevel) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, level.Width, level.Height))
	for _, b := range level.Blocks {
		drawCodeUsageBlock(img, b)
	}
	return img
}

func sortedSidesDescending(levels map[int]*image.NRGBA) []int {
	sides := make([]int, 0, len(levels))
	for side := range levels {
		sides = append(sides, side)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sides)))
	return sides
}

// mosaic lays out a chain of square mipmap levels the way a DTEX
// preview image conventionally does: the largest level at the top
// left, then every smaller level in descending size order stacked in a
// column to its right.
func mosaic(largest int, ordered []*image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, largest+largest/2, largest))
	x, y := 0, 0
	for i, img := range ordered {
		b := img.Bounds()
		drawInto(out, img, x, y)
		if i == 0 {
			x, y = largest, 0
		} else {
			y += b.Dy()
		}
	}
	return out
}

func drawInto(dst, src *image.NRGBA, x, y int) {
	b := src.Bounds()
	for sy := 0; sy < b.Dy(); sy++ {
		for sx := 0; sx < b.Dx(); sx++ {
			dst.SetNRGBA(x+sx, y+sy, src.NRGBAAt(b.Min.X+sx, b.Min.Y+sy))
		}
	}
}

// RenderPreview returns a single image depicting t: the raw image for a
// non-mipmapped texture, or a mosaic of every level (largest first,
// then smaller levels stacked to its right) for a mipmapped one.
func RenderPreview(t *DecodedTexture) *image.NRGBA {
	if t.Image != nil {
		return t.Image
	}
	sides := sortedSidesDescending(t.Levels)
	if len(sides) == 1 {
		return t.Levels[sides[0]]
	}
	ordered := make([]*image.NRGBA, len(sides))
	for i, side := range sides {
		ordered[i] = t.Levels[side]
	}
	return mosaic(sides[0], ordered)
}

// RenderCodeUsage returns a single image visualizing codebook usage
// across every level of t, laid out the same way as RenderPreview. It
// returns nil if t carries no code usage data (the texture wasn't
// compressed).
func RenderCodeUsage(t *DecodedTexture) *image.NRGBA {
	if len(t.CodeUsage) == 0 {
		return nil
	}

	if t.Image != nil {
		for _, lvl := range t.CodeUsage {
			return RenderCodeUsageLevel(lvl)
		}
	}

	sides := make([]int, 0, len(t.CodeUsage))
	for side := range t.CodeUsage {
		sides = append(sides, side)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sides)))

	if len(sides) == 1 {
		return RenderCodeUsageLevel(t.CodeUsage[sides[0]])
	}

	ordered := make([]*image.NRGBA, len(sides))
	for i, side := range sides {
		ordered[i] = RenderCodeUsageLevel(t.CodeUsage[side])
	}
	return mosaic(sides[0], ordered)
}
