// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

import (
	"encoding/binary"
	"image/color"
)

// dpalMagic identifies a DPAL sidecar file: the palette that accompanies a
// PAL4BPP or PAL8BPP DTEX texture.
const dpalMagic = "DPAL"

// Palette is an insertion-ordered, deduplicated set of colors, with O(1)
// lookup in both directions. Encoding a paletted texture assigns each
// distinct input color an index the first time it's seen; Palette is the
// structure that remembers that assignment.
type Palette struct {
	colors []color.NRGBA
	index  map[uint32]int
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{index: make(map[uint32]int)}
}

func paletteKey(c color.NRGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Add returns the index of c in the palette, inserting it at the end if
// it is not already present.
func (p *Palette) Add(c color.NRGBA) int {
	k := paletteKey(c)
	if i, ok := p.index[k]; ok {
		return i
	}
	i := len(p.colors)
	p.colors = append(p.colors, c)
	p.index[k] = i
	return i
}

// IndexOf returns the index of c and whether it is present.
func (p *Palette) IndexOf(c color.NRGBA) (int, bool) {
	i, ok := p.index[paletteKey(c)]
	return i, ok
}

// ColorAt returns the color at index i, or opaque black if i is out of
// range — a decoder reading a mismatched or truncated sidecar palette
// must not panic on an out-of-range index.
func (p *Palette) ColorAt(i int) color.NRGBA {
	if i < 0 || i >= len(p.colors) {
		return color.NRGBA{A: 255}
	}
	return p.colors[i]
}

// Len returns the number of distinct colors in the palette.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Colors returns the palette's colors in insertion order. The returned
// slice must not be modified.
func (p *Palette) Colors() []color.NRGBA {
	return p.colors
}

// Encode serializes the palette as a DPAL sidecar: a 4-byte magic, a
// little-endian uint32 color count, then that many 4-byte ARGB entries in
// insertion order.
func (p *Palette) Encode() []byte {
	buf := make([]byte, 8+4*len(p.colors))
	copy(buf, dpalMagic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(p.colors)))
	for i, c := range p.colors {
		off := 8 + 4*i
		buf[off+0] = c.B
		buf[off+1] = c.G
		buf[off+2] = c.R
		buf[off+3] = c.A
	}
	return buf
}

// DecodePalette parses a DPAL sidecar produced by Encode.
func DecodePalette(data []byte) (*Palette, error) {
	if len(data) < 8 || string(data[:4]) != dpalMagic {
		return nil, ErrNotADPALFile
	}
	count := binary.LittleEndian.Uint32(data[4:8])
	want := 8 + 4*int(count)
	if len(data) < want {
		return nil, ErrTruncatedBody
	}

	p := NewPalette()
	for i := 0; i < int(count); i++ {
		off := 8 + 4*i
		c := color.NRGBA{
			B: data[off+0],
			G: data[off+1],
			R: data[off+2],
			A: data[off+3],
		}
		p.Add(c)
	}
	return p, nil
}
