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
	"image"
)

// CodeUsageBlock is one codebook-index assignment within a decoded
// compressed level: the rectangle of pixels (X, Y, W, H) that Code was
// used to reconstruct. A 16-bpp block covers one 2x2 quad with a single
// code; a paletted block covers either one 4x4 region with a single
// code (PAL4BPP, non-mipmapped) or two 2x4 halves each with their own
// code (PAL8BPP always, PAL4BPP mipmapped).
type CodeUsageBlock struct {
	X, Y, W, H int
	Code       uint8
}

// CodeUsageLevel is the set of codebook-index assignments for one
// decoded mipmap level of a compressed texture, at the pixel dimensions
// of that level. Decode populates this alongside the reconstructed
// image so callers can render a code-usage visualization without
// re-deriving block boundaries.
type CodeUsageLevel struct {
	Width, Height int
	Blocks        []CodeUsageBlock
}

// DecodedTexture is the result of decoding a DTEX body: either a single
// raster (non-mipmapped) or a chain of square levels keyed by side
// length, plus, for compressed textures, the per-level codebook-index
// raster used to build a code-usage visualization.
type DecodedTexture struct {
	Format    Format
	Width     int
	Height    int
	Image     *image.NRGBA
	Levels    map[int]*image.NRGBA
	CodeUsage map[int]CodeUsageLevel
}

// Decode parses a DTEX file and reconstructs its image. pal is required
// for PAL4BPP/PAL8BPP textures (nil is only valid for 16-bpp formats).
func Decode(data []byte, pal *Palette, log Logger) (*DecodedTexture, error) {
	log = logOrNop(log)

	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize+h.Size {
		return nil, ErrTruncatedBody
	}
	body := data[headerSize : headerSize+h.Size]

	f := h.Type
	pf := f.PixelFormat()

	if f.Strided() {
		actualWidth := f.StrideSetting() * 32
		img, err := decodeStrided16BPP(body, pf, actualWidth, h.Height)
		if err != nil {
			return nil, err
		}
		return &DecodedTexture{Format: f, Width: actualWidth, Height: h.Height, Image: img}, nil
	}

	if pf.IsPaletted() {
		return decodePaletted(body, pf, f.Mipmapped(), f.Compressed(), h.Width, pal, log)
	}
	return decode16BPP(body, pf, f.Mipmapped(), f.Compressed(), h.Width, h.Height, log)
}

func decodeStrided16BPP(body []byte, pf PixelFormat, width, height int) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	pos := 0

	if pf == PixelFormatYUV422 {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x += 2 {
				if pos+4 > len(body) {
					return nil, ErrTruncatedBody
				}
				yuv0 := binary.LittleEndian.Uint16(body[pos:])
				yuv1 := binary.LittleEndian.Uint16(body[pos+2:])
				pos += 4
				c0, c1 := DecodeYUV422Pair(yuv0, yuv1)
				img.SetNRGBA(x, y, c0)
				img.SetNRGBA(x+1, y, c1)
			}
		}
		return img, nil
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if pos+2 > len(body) {
				return nil, ErrTruncatedBody
			}
			texel := binary.LittleEndian.Uint16(body[pos:])
			pos += 2
			c, err := From16BPP(texel, pf)
			if err != nil {
				return nil, err
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img, nil
}

// mipmapLevelsAscending returns side lengths from floor up to side,
// doubling — the order bodies are written in.
func mipmapLevelsAscending(side, floor int) []int {
	levels := mipmapLevels(side, floor)
	for i, j := 0, len(levels)-1; i < j; i, j = i+1, j-1 {
		levels[i], levels[j] = levels[j], levels[i]
	}
	return levels
}

func decode16BPP(body []byte, pf PixelFormat, mipmapped, compressed bool, width, height int, log Logger) (*DecodedTexture, error) {
	if compressed {
		return decodeCompressed16BPP(body, pf, mipmapped, width, log)
	}
	return decodeUncompressed16BPP(body, pf, mipmapped, width, height)
}

func decodeUncompressed16BPP(body []byte, pf PixelFormat, mipmapped bool, width, height int) (*DecodedTexture, error) {
	if !mipmapped {
		img, err := decodeLevelTwiddled16BPP(body, pf, width, height)
		if err != nil {
			return nil, err
		}
		return &DecodedTexture{Width: width, Height: height, Image: img}, nil
	}

	pos := bpp16MipOffset
	levels := make(map[int]*image.NRGBA)
	for _, side := range mipmapLevelsAscending(width, 1) {
		n := readableTexelBytes(pf, side)
		if pos+n > len(body) {
			return nil, ErrTruncatedBody
		}
		img, err := decodeLevelTwiddled16BPP(body[pos:pos+n], pf, side, side)
		if err != nil {
			return nil, err
		}
		levels[side] = img
		pos += n
	}
	return &DecodedTexture{Width: width, Height: width, Levels: levels}, nil
}

func readableTexelBytes(pf PixelFormat, side int) int {
	if side == 1 && pf == PixelFormatYUV422 {
		return 2
	}
	return side * side * 2
}

// decodeLevelTwiddled16BPP inverts writeLevelTwiddled.
func decodeLevelTwiddled16BPP(body []byte, pf PixelFormat, w, h int) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	if w == 1 && h == 1 && pf == PixelFormatYUV422 {
		if len(body) < 2 {
			return nil, ErrTruncatedBody
		}
		c, err := From16BPP(binary.LittleEndian.Uint16(body), PixelFormatRGB565)
		if err != nil {
			return nil, err
		}
		img.SetNRGBA(0, 0, c)
		return img, nil
	}

	t := NewTwiddler(w, h)

	if pf != PixelFormatYUV422 {
		for j := 0; j < t.Len(); j++ {
			off := j * 2
			if off+2 > len(body) {
				return nil, ErrTruncatedBody
			}
			texel := binary.LittleEndian.Uint16(body[off:])
			c, err := From16BPP(texel, pf)
			if err != nil {
				return nil, err
			}
			x, y := t.XY(j)
			img.SetNRGBA(x, y, c)
		}
		return img, nil
	}

	for j := 0; j < t.Len(); j += 4 {
		off := j * 2
		if off+8 > len(body) {
			return nil, ErrTruncatedBody
		}
		topY0 := binary.LittleEndian.Uint16(body[off:])
		botY0 := binary.LittleEndian.Uint16(body[off+2:])
		topY1 := binary.LittleEndian.Uint16(body[off+4:])
		botY1 := binary.LittleEndian.Uint16(body[off+6:])

		tl, tr := DecodeYUV422Pair(topY0, topY1)
		bl, br := DecodeYUV422Pair(botY0, botY1)

		xTL, yTL := t.XY(j)
		xBL, yBL := t.XY(j + 1)
		xTR, yTR := t.XY(j + 2)
		xBR, yBR := t.XY(j + 3)
		img.SetNRGBA(xTL, yTL, tl)
		img.SetNRGBA(xBL, yBL, bl)
		img.SetNRGBA(xTR, yTR, tr)
		img.SetNRGBA(xBR, yBR, br)
	}
	return img, nil
}

func decodeCodebook16BPP(body []byte, pf PixelFormat) ([vqMaxCodes]uint64, error) {
	var codebook [vqMaxCodes]uint64
	if len(body) < codebookSize {
		return codebook, ErrTruncatedBody
	}
	for i := 0; i < vqMaxCodes; i++ {
		off := i * 8
		tl := binary.LittleEndian.Uint16(body[off:])
		bl := binary.LittleEndian.Uint16(body[off+2:])
		tr := binary.LittleEndian.Uint16(body[off+4:])
		br := binary.LittleEndian.Uint16(body[off+6:])
		codebook[i] = quadFromCodebookOrder(tl, bl, tr, br)
	}
	return codebook, nil
}

func decodeCompressed16BPP(body []byte, pf PixelFormat, mipmapped bool, width int, log Logger) (*DecodedTexture, error) {
	codebook, err := decodeCodebook16BPP(body, pf)
	if err != nil {
		return nil, err
	}
	pos := codebookSize
	if mipmapped {
		pos++
	}

	floor := 2
	var sides []int
	if mipmapped {
		sides = mipmapLevelsAscending(width, floor)
	} else {
		sides = []int{width}
	}

	levels := make(map[int]*image.NRGBA)
	usage := make(map[int]CodeUsageLevel)

	for _, side := range sides {
		indexedWidth := side / 2
		n := indexedWidth * indexedWidth
		if pos+n > len(body) {
			return nil, ErrTruncatedBody
		}

		indices := make([]uint8, n)
		t := NewTwiddler(indexedWidth, indexedWidth)
		for j := 0; j < n; j++ {
			x, y := t.XY(j)
			indices[y*indexedWidth+x] = body[pos+j]
		}
		pos += n

		img := image.NewNRGBA(image.Rect(0, 0, side, side))
		var blocks []CodeUsageBlock
		for by := 0; by < indexedWidth; by++ {
			for bx := 0; bx < indexedWidth; bx++ {
				idx := indices[by*indexedWidth+bx]
				quad := codebook[idx]
				tl, tr, bl, br, err := quadCorners(quad, pf)
				if err != nil {
					return nil, err
				}
				x, y := bx*2, by*2
				img.SetNRGBA(x, y, tl)
				img.SetNRGBA(x+1, y, tr)
				img.SetNRGBA(x, y+1, bl)
				img.SetNRGBA(x+1, y+1, br)
				blocks = append(blocks, CodeUsageBlock{X: x, Y: y, W: 2, H: 2, Code: idx})
			}
		}

		levels[side] = img
		usage[side] = CodeUsageLevel{Width: side, Height: side, Blocks: blocks}
	}

	if !mipmapped {
		return &DecodedTexture{Width: width, Height: width, Image: levels[width], CodeUsage: usage}, nil
	}
	return &DecodedTexture{Width: width, Height: width, Levels: levels, CodeUsage: usage}, nil
}

func decodePaletted(body []byte, pf PixelFormat, mipmapped, compressed bool, width int, pal *Palette, log Logger) (*DecodedTexture, error) {
	if pal == nil {
		return nil, ErrBadArgument
	}
	if compressed {
		if pf == PixelFormatPAL4BPP {
			return decodeCompressed4BPP(body, mipmapped, width, pal)
		}
		return decodeCompressed8BPP(body, mipmapped, width, pal)
	}
	if pf == PixelFormatPAL4BPP {
		return decodeUncompressed4BPP(body, mipmapped, width, pal)
	}
	return decodeUncompressed8BPP(body, mipmapped, width, pal)
}

func decodeUncompressed4BPP(body []byte, mipmapped bool, width int, pal *Palette) (*DecodedTexture, error) {
	pos := 0
	if mipmapped {
		pos += pal4bppMipOffset
	}

	sides := []int{width}
	if mipmapped {
		sides = mipmapLevelsAscending(width, 1)
	}

	levels := make(map[int]*image.NRGBA)
	for _, side := range sides {
		img := image.NewNRGBA(image.Rect(0, 0, side, side))

		if side == 1 {
			if pos >= len(body) {
				return nil, ErrTruncatedBody
			}
			img.SetNRGBA(0, 0, pal.ColorAt(int(body[pos]&0xF)))
			pos++
			levels[side] = img
			continue
		}

		t := NewTwiddler(side, side)
		pixels := side * side
		for j := 0; j < pixels; j += 2 {
			if pos >= len(body) {
				return nil, ErrTruncatedBody
			}
			b := body[pos]
			pos++

			x0, y0 := t.XY(j)
			x1, y1 := t.XY(j + 1)
			img.SetNRGBA(x0, y0, pal.ColorAt(int(b&0xF)))
			img.SetNRGBA(x1, y1, pal.ColorAt(int((b>>4)&0xF)))
		}
		levels[side] = img
	}

	if !mipmapped {
		return &DecodedTexture{Width: width, Height: width, Image: levels[width]}, nil
	}
	return &DecodedTexture{Width: width, Height: width, Levels: levels}, nil
}

func decodeUncompressed8BPP(body []byte, mipmapped bool, width int, pal *Palette) (*DecodedTexture, error) {
	pos := 0
	if mipmapped {
		pos += pal8bppMipOffset
	}

	sides := []int{width}
	if mipmapped {
		sides = mipmapLevelsAscending(width, 1)
	}

	levels := make(map[int]*image.NRGBA)
	for _, side := range sides {
		img := image.NewNRGBA(image.Rect(0, 0, side, side))
		t := NewTwiddler(side, side)
		pixels := side * side
		for j := 0; j < pixels; j++ {
			if pos >= len(body) {
				return nil, ErrTruncatedBody
			}
			x, y := t.XY(j)
			img.SetNRGBA(x, y, pal.ColorAt(int(body[pos])))
			pos++
		}
		levels[side] = img
	}

	if !mipmapped {
		return &DecodedTexture{Width: width, Height: width, Image: levels[width]}, nil
	}
	return &DecodedTexture{Width: width, Height: width, Levels: levels}, nil
}

// decodeNibbleGrid4x4 inverts the 4x4 nibble-twiddled codebook layout
// used by PAL4BPP VQ: entry is 8 bytes (16 nibbles); the returned grid is
// indexed row-major (row*4+col).
func decodeNibbleGrid4x4(entry []byte) [16]uint8 {
	var grid [16]uint8
	t := NewTwiddler(4, 4)
	for j := 0; j < 16; j++ {
		byteIdx := j / 2
		var val uint8
		if j%2 == 1 {
			val = (entry[byteIdx] >> 4) & 0xF
		} else {
			val = entry[byteIdx] & 0xF
		}
		x, y := t.XY(j)
		grid[y*4+x] = val
	}
	return grid
}

// decodeByteGrid2x4 inverts the 2x4 byte-twiddled codebook layout used
// by PAL8BPP VQ: entry is 8 bytes; the returned grid is indexed row-major
// over a 2-wide, 4-tall block (row*2+col).
func decodeByteGrid2x4(entry []byte) [8]uint8 {
	var grid [8]uint8
	t := NewTwiddler(2, 4)
	for j := 0; j < 8; j++ {
		x, y := t.XY(j)
		grid[y*2+x] = entry[j]
	}
	return grid
}

func decodeCompressed4BPP(body []byte, mipmapped bool, width int, pal *Palette) (*DecodedTexture, error) {
	if len(body) < codebookSize {
		return nil, ErrTruncatedBody
	}
	grids := make([][16]uint8, vqMaxCodes)
	for i := 0; i < vqMaxCodes; i++ {
		grids[i] = decodeNibbleGrid4x4(body[i*8 : i*8+8])
	}
	pos := codebookSize

	type blockPos struct {
		side, bx, by int
	}
	var blocks []blockPos
	var sides []int
	if mipmapped {
		sides = mipmapLevelsAscending(width, minMipmapSidePalVQ)
	} else {
		sides = []int{width}
	}
	for _, side := range sides {
		blockSide := side / 4
		t := NewTwiddler(blockSide, blockSide)
		for j := 0; j < t.Len(); j++ {
			bx, by := t.XY(j)
			blocks = append(blocks, blockPos{side, bx, by})
		}
	}

	nIndices := len(blocks)
	if mipmapped {
		nIndices++
	}
	if pos+nIndices > len(body) {
		return nil, ErrTruncatedBody
	}
	indices := body[pos : pos+nIndices]

	levels := make(map[int]*image.NRGBA)
	for _, side := range sides {
		levels[side] = image.NewNRGBA(image.Rect(0, 0, side, side))
	}

	blocksByLevel := make(map[int][]CodeUsageBlock)

	for k, b := range blocks {
		// The nibble stream straddles block boundaries: this block's left
		// half comes from the *right* half of the grid at indices[k], and
		// its right half comes from the *left* half of the grid at
		// indices[k+1]. Without mipmapping there's no straddle — both
		// halves come straight from the block's own code.
		var left, right [16]uint8
		var leftIdx, rightIdx uint8
		if mipmapped {
			leftIdx, rightIdx = indices[k], indices[k+1]
			left = grids[leftIdx]
			right = grids[rightIdx]
		} else {
			leftIdx = indices[k]
			left = grids[leftIdx]
			right = left
			rightIdx = leftIdx
		}

		img := levels[b.side]
		x0, y0 := b.bx*4, b.by*4

		if mipmapped {
			blocksByLevel[b.side] = append(blocksByLevel[b.side],
				CodeUsageBlock{X: x0, Y: y0, W: 2, H: 4, Code: leftIdx},
				CodeUsageBlock{X: x0 + 2, Y: y0, W: 2, H: 4, Code: rightIdx})
		} else {
			blocksByLevel[b.side] = append(blocksByLevel[b.side], CodeUsageBlock{X: x0, Y: y0, W: 4, H: 4, Code: leftIdx})
		}

		for row := 0; row < 4; row++ {
			for col := 0; col < 2; col++ {
				var idx uint8
				if mipmapped {
					idx = left[row*4+col+2]
				} else {
					idx = left[row*4+col]
				}
				img.SetNRGBA(x0+col, y0+row, pal.ColorAt(int(idx)))
			}
			for col := 2; col < 4; col++ {
				var idx uint8
				if mipmapped {
					idx = right[row*4+col-2]
				} else {
					idx = right[row*4+col]
				}
				img.SetNRGBA(x0+col, y0+row, pal.ColorAt(int(idx)))
			}
		}
	}

	usage := make(map[int]CodeUsageLevel)
	for _, side := range sides {
		usage[side] = CodeUsageLevel{Width: side, Height: side, Blocks: blocksByLevel[side]}
	}

	if !mipmapped {
		return &DecodedTexture{Width: width, Height: width, Image: levels[width], CodeUsage: usage}, nil
	}
	return &DecodedTexture{Width: width, Height: width, Levels: levels, CodeUsage: usage}, nil
}

func decodeCompressed8BPP(body []byte, mipmapped bool, width int, pal *Palette) (*DecodedTexture, error) {
	if len(body) < codebookSize {
		return nil, ErrTruncatedBody
	}
	grids := make([][8]uint8, vqMaxCodes)
	for i := 0; i < vqMaxCodes; i++ {
		grids[i] = decodeByteGrid2x4(body[i*8 : i*8+8])
	}
	pos := codebookSize
	if mipmapped {
		pos++
	}

	var sides []int
	if mipmapped {
		sides = mipmapLevelsAscending(width, minMipmapSidePalVQ)
	} else {
		sides = []int{width}
	}

	levels := make(map[int]*image.NRGBA)
	usage := make(map[int]CodeUsageLevel)

	for _, side := range sides {
		img := image.NewNRGBA(image.Rect(0, 0, side, side))
		blockSide := side / 4
		t := NewTwiddler(blockSide, blockSide)
		var blocks []CodeUsageBlock

		for j := 0; j < t.Len(); j++ {
			if pos+2 > len(body) {
				return nil, ErrTruncatedBody
			}
			leftCode := body[pos]
			rightCode := body[pos+1]
			pos += 2

			bx, by := t.XY(j)
			x0, y0 := bx*4, by*4
			blocks = append(blocks,
				CodeUsageBlock{X: x0, Y: y0, W: 2, H: 4, Code: leftCode},
				CodeUsageBlock{X: x0 + 2, Y: y0, W: 2, H: 4, Code: rightCode})

			left := grids[leftCode]
			right := grids[rightCode]
			for row := 0; row < 4; row++ {
				for col := 0; col < 2; col++ {
					img.SetNRGBA(x0+col, y0+row, pal.ColorAt(int(left[row*2+col])))
				}
				for col := 0; col < 2; col++ {
					img.SetNRGBA(x0+2+col, y0+row, pal.ColorAt(int(right[row*2+col])))
				}
			}
		}

		levels[side] = img
		usage[side] = CodeUsageLevel{Width: side, Height: side, Blocks: blocks}
	}

	if !mipmapped {
		return &DecodedTexture{Width: width, Height: width, Image: levels[width], CodeUsage: usage}, nil
	}
	return &DecodedTexture{Width: width, Height: width, Levels: levels, CodeUsage: usage}, nil
}
