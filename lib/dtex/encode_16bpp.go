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
	"encoding/binary"
	"image"
	"image/color"
)

const minLevelSideVQ16BPP = 2

// Encode16BPP builds the body of a twiddled 16-bpp (non-paletted) DTEX
// texture: uncompressed or block-VQ compressed, per the pixel format and
// flags. Strided textures aren't twiddled at all; callers route those to
// EncodeStrided16BPP instead.
func Encode16BPP(c *ImageContainer, pf PixelFormat, mipmapped, compressed bool, log Logger) ([]byte, error) {
	log = logOrNop(log)

	if !mipmapped && !compressed {
		return encodeUncompressed16BPP(c, pf, false), nil
	}
	if compressed {
		return encodeCompressed16BPP(c, pf, mipmapped, log)
	}
	return encodeUncompressed16BPP(c, pf, true), nil
}

// EncodeStrided16BPP writes img row-major, one 16-bit texel per pixel,
// with YUV422 pairing two pixels at a time.
func EncodeStrided16BPP(img *image.NRGBA, pf PixelFormat) ([]byte, error) {
	var buf bytes.Buffer
	b := img.Bounds()

	if pf == PixelFormatYUV422 {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x += 2 {
				c0 := img.NRGBAAt(x, y)
				c1 := img.NRGBAAt(x+1, y)
				y0, y1 := EncodeYUV422Pair(c0, c1)
				binary.Write(&buf, binary.LittleEndian, y0)
				binary.Write(&buf, binary.LittleEndian, y1)
			}
		}
		return buf.Bytes(), nil
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			texel, err := To16BPP(img.NRGBAAt(x, y), pf)
			if err != nil {
				return nil, err
			}
			binary.Write(&buf, binary.LittleEndian, texel)
		}
	}
	return buf.Bytes(), nil
}

func writeTexel16BPP(buf *bytes.Buffer, c color.NRGBA, pf PixelFormat) error {
	texel, err := To16BPP(c, pf)
	if err != nil {
		return err
	}
	binary.Write(buf, binary.LittleEndian, texel)
	return nil
}

// writeLevelTwiddled writes one mipmap level's texels in twiddled order.
// YUV422 groups every four consecutive twiddled entries — which twiddle
// order always emits as one 2×2 pixel block, in TL, BL, TR, BR order —
// and encodes the block's top and bottom pairs together.
func writeLevelTwiddled(buf *bytes.Buffer, img *image.NRGBA, pf PixelFormat) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if w == 1 && h == 1 && pf == PixelFormatYUV422 {
		return writeTexel16BPP(buf, img.NRGBAAt(b.Min.X, b.Min.Y), PixelFormatRGB565)
	}

	t := NewTwiddler(w, h)

	if pf != PixelFormatYUV422 {
		for j := 0; j < t.Len(); j++ {
			x, y := t.XY(j)
			if err := writeTexel16BPP(buf, img.NRGBAAt(b.Min.X+x, b.Min.Y+y), pf); err != nil {
				return err
			}
		}
		return nil
	}

	for j := 0; j < t.Len(); j += 4 {
		xTL, yTL := t.XY(j)
		xBL, yBL := t.XY(j + 1)
		xTR, yTR := t.XY(j + 2)
		xBR, yBR := t.XY(j + 3)

		tl := img.NRGBAAt(b.Min.X+xTL, b.Min.Y+yTL)
		bl := img.NRGBAAt(b.Min.X+xBL, b.Min.Y+yBL)
		tr := img.NRGBAAt(b.Min.X+xTR, b.Min.Y+yTR)
		br := img.NRGBAAt(b.Min.X+xBR, b.Min.Y+yBR)

		topY0, topY1 := EncodeYUV422Pair(tl, tr)
		botY0, botY1 := EncodeYUV422Pair(bl, br)
		binary.Write(buf, binary.LittleEndian, topY0)
		binary.Write(buf, binary.LittleEndian, botY0)
		binary.Write(buf, binary.LittleEndian, topY1)
		binary.Write(buf, binary.LittleEndian, botY1)
	}
	return nil
}

func encodeUncompressed16BPP(c *ImageContainer, pf PixelFormat, mipmapped bool) []byte {
	var buf bytes.Buffer

	if mipmapped {
		buf.Write(make([]byte, bpp16MipOffset))
		for _, side := range c.Levels() {
			writeLevelTwiddled(&buf, c.Level(side), pf)
		}
	} else {
		writeLevelTwiddled(&buf, c.Rectangle(), pf)
	}
	return buf.Bytes()
}

// vqDimension16BPP returns the vector dimension used to quantize 2x2
// blocks of this pixel format: 12-dim RGB for ARGB1555/RGB565/BUMPMAP,
// 16-dim ARGB for ARGB4444/YUV422. YUV422 takes the ARGB path (rather
// than the RGB path a format with no alpha might suggest) because
// quantizing on all four corners' full channels preserves chroma detail
// that the pair-averaging YUV encode then collapses; shortcutting to RGB
// would throw that detail away before it's ever used.
func vqDimension16BPP(pf PixelFormat) int {
	if pf == PixelFormatARGB4444 || pf == PixelFormatYUV422 {
		return 16
	}
	return 12
}

// levelsForBlockVQ returns the image container's levels (largest-first
// doesn't matter here; callers iterate in container order) that are
// large enough to contribute 2x2 blocks.
func levelsForBlockVQ(c *ImageContainer) []int {
	var sides []int
	for _, side := range levelsOf(c) {
		if side >= minLevelSideVQ16BPP {
			sides = append(sides, side)
		}
	}
	return sides
}

// levelsOf returns a container's levels in smallest-to-largest order,
// whether it is a single rectangle or a mipmap chain.
func levelsOf(c *ImageContainer) []int {
	if !c.mipmapped {
		b := c.Rectangle().Bounds()
		return []int{b.Dx()}
	}
	return c.Levels()
}

func encodeCompressed16BPP(c *ImageContainer, pf PixelFormat, mipmapped bool, log Logger) ([]byte, error) {
	codebook, indexedLevels, err := encodeLossless16BPP(c, pf)
	if err != nil {
		return nil, err
	}

	if len(codebook) > vqMaxCodes {
		log.Debugf("16bpp VQ: %d unique quads exceeds %d codes, falling back to lossy quantization", len(codebook), vqMaxCodes)
		codebook, indexedLevels = vqCompress16BPP(c, pf, log)
	} else {
		log.Debugf("16bpp: %d unique quads, lossless compression", len(codebook))
	}

	var buf bytes.Buffer
	codes := make([]uint16, vqMaxCodes*4)
	for i, quad := range codebook {
		writeCodebookOrder(codes[i*4:i*4+4], quad)
	}
	binary.Write(&buf, binary.LittleEndian, codes)

	if mipmapped {
		buf.WriteByte(0)
	}

	for _, level := range indexedLevels {
		t := NewTwiddler(level.width, level.width)
		for j := 0; j < t.Len(); j++ {
			x, y := t.XY(j)
			buf.WriteByte(level.indices[y*level.width+x])
		}
	}

	return buf.Bytes(), nil
}

// indexedLevel16BPP is one quad-indexed mipmap level: a raster, half the
// side length of the source level, whose (x, y) entry is the codebook
// index of the source's 2x2 block at (2x, 2y).
type indexedLevel16BPP struct {
	width   int
	indices []uint8
}

// encodeLossless16BPP scans every level at least 2x2, packing every 2x2
// block (in raw, non-twiddled raster order) into a quad and deduplicating
// by value. If the total distinct quad count is within the codebook
// limit, the result is already a valid lossless encoding; the caller is
// responsible for falling back to vqCompress16BPP otherwise.
func encodeLossless16BPP(c *ImageContainer, pf PixelFormat) ([]uint64, []indexedLevel16BPP, error) {
	quadIndex := make(map[uint64]int)
	var codebook []uint64
	var levels []indexedLevel16BPP

	for _, side := range levelsForBlockVQ(c) {
		img := levelRaster(c, side)
		indexedWidth := side / 2
		indices := make([]uint8, indexedWidth*indexedWidth)

		for y := 0; y < side; y += 2 {
			for x := 0; x < side; x += 2 {
				tl := img.NRGBAAt(x, y)
				tr := img.NRGBAAt(x+1, y)
				bl := img.NRGBAAt(x, y+1)
				br := img.NRGBAAt(x+1, y+1)

				quad, err := packQuad(tl, tr, bl, br, pf)
				if err != nil {
					return nil, nil, err
				}

				idx, ok := quadIndex[quad]
				if !ok {
					idx = len(codebook)
					quadIndex[quad] = idx
					codebook = append(codebook, quad)
				}
				if idx <= 255 {
					indices[(y/2)*indexedWidth+(x/2)] = uint8(idx)
				}
			}
		}

		levels = append(levels, indexedLevel16BPP{width: indexedWidth, indices: indices})
	}

	return codebook, levels, nil
}

func levelRaster(c *ImageContainer, side int) *image.NRGBA {
	if !c.mipmapped {
		return c.Rectangle()
	}
	return c.Level(side)
}

func vqCompress16BPP(c *ImageContainer, pf PixelFormat, log Logger) ([]uint64, []indexedLevel16BPP) {
	dim := vqDimension16BPP(pf)

	var vectors []vec
	var positions []struct{ side, bx, by int }

	for _, side := range levelsForBlockVQ(c) {
		img := levelRaster(c, side)
		for y := 0; y < side; y += 2 {
			for x := 0; x < side; x += 2 {
				v := newVec(dim)
				hash := uint32(0)
				offset := 0
				step := dim / 4
				corners := [4]color.NRGBA{
					img.NRGBAAt(x, y), img.NRGBAAt(x+1, y),
					img.NRGBAAt(x, y+1), img.NRGBAAt(x+1, y+1),
				}
				for _, px := range corners {
					if dim == 16 {
						argbToVec(px, v, offset)
					} else {
						rgbToVec(px, v, offset)
					}
					hash = combineHash(px, hash)
					offset += step
				}
				v.hash = hash

				vectors = append(vectors, v)
				positions = append(positions, struct{ side, bx, by int }{side, x / 2, y / 2})
			}
		}
	}

	vq := NewVectorQuantizer(dim, log)
	vq.Compress(vectors, vqMaxCodes)

	levelByWidth := make(map[int]*indexedLevel16BPP)
	var order []int
	for _, side := range levelsForBlockVQ(c) {
		w := side / 2
		if _, ok := levelByWidth[w]; !ok {
			levelByWidth[w] = &indexedLevel16BPP{width: w, indices: make([]uint8, w*w)}
			order = append(order, w)
		}
	}

	for i, v := range vectors {
		idx := vq.findClosest(v)
		pos := positions[i]
		lvl := levelByWidth[pos.side/2]
		lvl.indices[pos.by*lvl.width+pos.bx] = uint8(idx)
	}

	var levels []indexedLevel16BPP
	for _, w := range order {
		levels = append(levels, *levelByWidth[w])
	}

	codebook := make([]uint64, vq.CodeCount())
	for i := 0; i < vq.CodeCount(); i++ {
		cv := vec{v: vq.CodeVector(i)}
		var tl, tr, bl, br color.NRGBA
		if dim == 16 {
			tl, tr, bl, br = vecToARGB(cv, 0), vecToARGB(cv, 4), vecToARGB(cv, 8), vecToARGB(cv, 12)
		} else {
			tl, tr, bl, br = vecToRGB(cv, 0), vecToRGB(cv, 3), vecToRGB(cv, 6), vecToRGB(cv, 9)
		}
		quad, _ := packQuad(tl, tr, bl, br, pf)
		codebook[i] = quad
	}

	return codebook, levels
}
