// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

import (
	"bytes"
	"image"
	"image/color"
)

const minMipmapSidePalVQ = 4

const (
	store32Full = iota
	store64Left
	store64Right
)

// grab2x4BlockLUT maps the linear scan order of an 8-pixel 2x4 block (4
// rows of 2 columns, row-major) to the float offset each pixel's (A, R,
// G, B) is written at, for each of grab2x4Block's three storage modes.
var grab2x4BlockLUT = [3][8]int{
	store32Full:  {0, 4, 8, 12, 16, 20, 24, 28},
	store64Left:  {0, 4, 16, 20, 32, 36, 48, 52},
	store64Right: {8, 12, 24, 28, 40, 44, 56, 60},
}

// indexedRaster is a palette-indexed mipmap level built during paletted
// encoding: one byte (holding a nibble or a full index) per pixel,
// row-major, not yet twiddled.
type indexedRaster struct {
	width, height int
	data          []uint8
}

func (r indexedRaster) at(x, y int) uint8 {
	return r.data[y*r.width+x]
}

// grab2x4Block reads the 2x4 pixel block at (x, y) of r (looked up
// through pal) into v at the offsets store selects, and returns the
// running hash seeded by hash.
func grab2x4Block(r indexedRaster, pal *Palette, x, y int, v vec, store int, hash uint32) uint32 {
	lut := grab2x4BlockLUT[store]
	idx := 0
	for yy := y; yy < y+4; yy++ {
		for xx := x; xx < x+2; xx++ {
			c := pal.ColorAt(int(r.at(xx, yy)))
			argbToVec(c, v, lut[idx])
			hash = combineHash(c, hash)
			idx++
		}
	}
	return hash
}

func levelRastersSmallestToLargest(c *ImageContainer) []*image.NRGBA {
	if !c.mipmapped {
		return []*image.NRGBA{c.Rectangle()}
	}
	out := make([]*image.NRGBA, 0, len(c.Levels()))
	for _, side := range c.Levels() {
		out = append(out, c.Level(side))
	}
	return out
}

// EncodePaletted builds the body of a PAL4BPP or PAL8BPP DTEX texture,
// plus the sidecar palette it requires. It builds a palette by scanning
// every pixel of every level; if that palette exceeds the format's
// capacity, it reduces color count via 4-dim vector quantization before
// indexing.
func EncodePaletted(c *ImageContainer, pf PixelFormat, mipmapped, compressed bool, log Logger) ([]byte, *Palette, error) {
	log = logOrNop(log)

	maxColors := pal8bppCapacity
	if pf == PixelFormatPAL4BPP {
		maxColors = pal4bppCapacity
	}

	pal, rasters := buildPaletteAndIndices(levelRastersSmallestToLargest(c), maxColors, log)

	var body []byte
	if compressed {
		if pf == PixelFormatPAL4BPP {
			body = encodeCompressed4BPP(rasters, pal, log)
		} else {
			body = encodeCompressed8BPP(rasters, pal, log)
		}
	} else {
		if pf == PixelFormatPAL4BPP {
			body = encodeUncompressed4BPP(rasters, mipmapped)
		} else {
			body = encodeUncompressed8BPP(rasters, mipmapped)
		}
	}

	return body, pal, nil
}

// buildPaletteAndIndices scans every pixel of every level into a
// palette. If the palette stays within maxColors, every level is
// indexed directly against it. Otherwise the palette is rebuilt from a
// 4-dim ARGB vector quantization of every pixel (across every level,
// with duplicates — this is color reduction, not deduplication) and
// every pixel reassigned to its closest resulting code.
func buildPaletteAndIndices(levels []*image.NRGBA, maxColors int, log Logger) (*Palette, []indexedRaster) {
	pal := NewPalette()
	for _, lvl := range levels {
		b := lvl.Bounds()
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				pal.Add(lvl.NRGBAAt(b.Min.X+x, b.Min.Y+y))
			}
		}
	}

	if pal.Len() <= maxColors {
		rasters := make([]indexedRaster, len(levels))
		for i, lvl := range levels {
			b := lvl.Bounds()
			r := indexedRaster{width: b.Dx(), height: b.Dy(), data: make([]uint8, b.Dx()*b.Dy())}
			for y := 0; y < b.Dy(); y++ {
				for x := 0; x < b.Dx(); x++ {
					idx, _ := pal.IndexOf(lvl.NRGBAAt(b.Min.X+x, b.Min.Y+y))
					r.data[y*r.width+x] = uint8(idx)
				}
			}
			rasters[i] = r
		}
		return pal, rasters
	}

	log.Debugf("palette: %d colors exceeds %d, reducing via vector quantization", pal.Len(), maxColors)

	type position struct{ level, x, y int }
	var vectors []vec
	var positions []position

	for li, lvl := range levels {
		b := lvl.Bounds()
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				v := newVec(4)
				argbToVec(lvl.NRGBAAt(b.Min.X+x, b.Min.Y+y), v, 0)
				vectors = append(vectors, v)
				positions = append(positions, position{li, x, y})
			}
		}
	}

	vq := NewVectorQuantizer(4, log)
	vq.Compress(vectors, maxColors)

	rasters := make([]indexedRaster, len(levels))
	for i, lvl := range levels {
		b := lvl.Bounds()
		rasters[i] = indexedRaster{width: b.Dx(), height: b.Dy(), data: make([]uint8, b.Dx()*b.Dy())}
	}
	for i, v := range vectors {
		idx := vq.findClosest(v)
		pos := positions[i]
		rasters[pos.level].data[pos.y*rasters[pos.level].width+pos.x] = uint8(idx)
	}

	newPal := NewPalette()
	for i := 0; i < vq.CodeCount(); i++ {
		cv := vec{v: vq.CodeVector(i)}
		newPal.Add(vecToARGB(cv, 0))
	}

	return newPal, rasters
}

func encodeUncompressed4BPP(rasters []indexedRaster, mipmapped bool) []byte {
	var buf bytes.Buffer
	if mipmapped {
		buf.Write(make([]byte, pal4bppMipOffset))
	}

	for _, r := range rasters {
		if r.width == 1 && r.height == 1 {
			buf.WriteByte(r.data[0])
			continue
		}

		t := NewTwiddler(r.width, r.height)
		for j := 0; j < t.Len(); j += 2 {
			x0, y0 := t.XY(j)
			x1, y1 := t.XY(j + 1)
			p0 := r.at(x0, y0)
			p1 := r.at(x1, y1)
			buf.WriteByte(((p1 & 0xF) << 4) | (p0 & 0xF))
		}
	}
	return buf.Bytes()
}

func encodeUncompressed8BPP(rasters []indexedRaster, mipmapped bool) []byte {
	var buf bytes.Buffer
	if mipmapped {
		buf.Write(make([]byte, pal8bppMipOffset))
	}

	for _, r := range rasters {
		t := NewTwiddler(r.width, r.height)
		for j := 0; j < t.Len(); j++ {
			x, y := t.XY(j)
			buf.WriteByte(r.at(x, y))
		}
	}
	return buf.Bytes()
}

// paletteVec returns the i-th palette color as a 4-dim ARGB vector.
func paletteVec(pal *Palette, i int) vec {
	v := newVec(4)
	argbToVec(pal.ColorAt(i), v, 0)
	return v
}

// findClosestPaletteIndex brute-force scans pal for the color closest to
// c — used to re-quantize a VQ code's per-pixel sub-vectors back onto
// real palette entries, since a code vector's components are a blend
// that may not land exactly on any one palette color.
func findClosestPaletteIndex(pal *Palette, c color.NRGBA) int {
	v := newVec(4)
	argbToVec(c, v, 0)

	closest := 0
	bestDist := distanceSquared(paletteVec(pal, 0), v)
	for i := 1; i < pal.Len(); i++ {
		d := distanceSquared(paletteVec(pal, i), v)
		if d < bestDist {
			bestDist = d
			closest = i
		}
	}
	return closest
}

func eligiblePalVQLevels(rasters []indexedRaster) []indexedRaster {
	var out []indexedRaster
	for _, r := range rasters {
		if r.width >= minMipmapSidePalVQ && r.height >= minMipmapSidePalVQ {
			out = append(out, r)
		}
	}
	return out
}

// vectorize8BPP builds one 32-dim vector per 2x4 half of every eligible
// level's 4x4 blocks, visiting blocks in twiddled order.
func vectorize8BPP(rasters []indexedRaster, pal *Palette) []vec {
	var vectors []vec
	for _, r := range eligiblePalVQLevels(rasters) {
		blockSide := r.width / 4
		t := NewTwiddler(blockSide, blockSide)
		for j := 0; j < t.Len(); j++ {
			bx, by := t.XY(j)
			x, y := bx*4, by*4

			v0 := newVec(32)
			grab2x4Block(r, pal, x, y, v0, store32Full, 0)
			vectors = append(vectors, v0)

			v1 := newVec(32)
			grab2x4Block(r, pal, x+2, y, v1, store32Full, 0)
			vectors = append(vectors, v1)
		}
	}
	return vectors
}

func encodeCompressed8BPP(rasters []indexedRaster, pal *Palette, log Logger) []byte {
	vectors := vectorize8BPP(rasters, pal)

	vq := NewVectorQuantizer(32, log)
	vq.Compress(vectors, vqMaxCodes)

	codebook := make([]byte, codebookSize)
	nibbleLUT := NewTwiddler(2, 4)
	for i := 0; i < vq.CodeCount(); i++ {
		cv := vec{v: vq.CodeVector(i)}
		for j := 0; j < 8; j++ {
			pos := nibbleLUT.Index(j)
			sub := vecToARGB(cv, pos*4)
			codebook[i*8+j] = byte(findClosestPaletteIndex(pal, sub))
		}
	}

	var buf bytes.Buffer
	buf.Write(codebook)

	if len(rasters) > 1 {
		buf.WriteByte(0)
	}

	for _, v := range vectors {
		buf.WriteByte(byte(vq.findClosest(v)))
	}
	return buf.Bytes()
}

// vectorize4BPPSingle handles the non-mipmapped case: each 4x4 block is
// one straightforward 64-dim vector built from its two 2x4 halves, no
// straddling needed since there's only one level.
func vectorize4BPPSingle(r indexedRaster, pal *Palette) []vec {
	blockSide := r.width / 4
	t := NewTwiddler(blockSide, blockSide)

	vectors := make([]vec, 0, t.Len())
	for j := 0; j < t.Len(); j++ {
		bx, by := t.XY(j)
		x, y := bx*4, by*4

		v := newVec(64)
		hash := grab2x4Block(r, pal, x, y, v, store64Left, 0)
		hash = grab2x4Block(r, pal, x+2, y, v, store64Right, hash)
		v.hash = hash
		vectors = append(vectors, v)
	}
	return vectors
}

// vectorize4BPPMipmapped builds the nibble-straddling vector stream for
// a mipmap chain: each 64-dim vector holds the second half of one 4x4
// block and the first half of the next, because the on-disk stream packs
// nibbles with no per-level byte alignment. The very first block has no
// preceding half to pair with, so its own left image-half is duplicated
// into the vector's otherwise-empty left slot as well as its right slot,
// rather than leaving that slot empty; the trailing half of the very
// last vector is filled the same way with that block's right image-half.
func vectorize4BPPMipmapped(levels []indexedRaster, pal *Palette) []vec {
	var vectors []vec
	cur := newVec(64)
	var hash uint32

	type block struct {
		r    indexedRaster
		x, y int
	}
	var blocks []block
	for _, r := range levels {
		blockSide := r.width / 4
		t := NewTwiddler(blockSide, blockSide)
		for j := 0; j < t.Len(); j++ {
			bx, by := t.XY(j)
			blocks = append(blocks, block{r, bx * 4, by * 4})
		}
	}

	for i, b := range blocks {
		if len(vectors) == 0 {
			hash = grab2x4Block(b.r, pal, b.x, b.y, cur, store64Left, hash)
		}

		hash = grab2x4Block(b.r, pal, b.x, b.y, cur, store64Right, hash)
		cur.hash = hash
		vectors = append(vectors, cur.clone())
		hash = 0

		hash = grab2x4Block(b.r, pal, b.x+2, b.y, cur, store64Left, hash)

		if i == len(blocks)-1 {
			hash = grab2x4Block(b.r, pal, b.x+2, b.y, cur, store64Right, hash)
			cur.hash = hash
			vectors = append(vectors, cur.clone())
		}
	}

	return vectors
}

func encodeCompressed4BPP(rasters []indexedRaster, pal *Palette, log Logger) []byte {
	var vectors []vec
	if len(rasters) > 1 {
		vectors = vectorize4BPPMipmapped(eligiblePalVQLevels(rasters), pal)
	} else {
		vectors = vectorize4BPPSingle(rasters[0], pal)
	}

	vq := NewVectorQuantizer(64, log)
	vq.Compress(vectors, vqMaxCodes)

	codebook := make([]byte, codebookSize)
	nibbleLUT := NewTwiddler(4, 4)
	for i := 0; i < vq.CodeCount(); i++ {
		cv := vec{v: vq.CodeVector(i)}
		for j := 0; j < 16; j++ {
			pos := nibbleLUT.Index(j)
			sub := vecToARGB(cv, pos*4)
			closest := findClosestPaletteIndex(pal, sub)

			byteIdx := j / 2
			nibble := j % 2
			if nibble == 1 {
				codebook[i*8+byteIdx] |= byte((closest & 0xF) << 4)
			} else {
				codebook[i*8+byteIdx] |= byte(closest & 0xF)
			}
		}
	}

	var buf bytes.Buffer
	buf.Write(codebook)

	for _, v := range vectors {
		buf.WriteByte(byte(vq.findClosest(v)))
	}
	return buf.Bytes()
}
