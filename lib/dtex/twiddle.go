// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

// Twiddler maps a linear texel index, in the order the PowerVR2 hardware
// reads them, to the (x, y) pixel offset it corresponds to in an ordinary
// row-major raster.
//
// For a square region it is a Morton-Z (recursive quadrant) ordering: each
// block of size b is visited as four sub-blocks of size b/2, in
// top-left, bottom-left, top-right, bottom-right order — note the
// column-major sub-order, which is the hardware's convention and must be
// matched exactly. Rectangular regions tile the square min(w, h) ordering
// along the longer axis.
type Twiddler struct {
	width, height int
	index          []int32
}

// NewTwiddler builds the permutation table for a w×h region.
func NewTwiddler(w, h int) *Twiddler {
	t := &Twiddler{width: w, height: h, index: make([]int32, w*h)}

	pos := 0
	if w < h {
		for y := 0; y < h; y += w {
			pos += twiddleQuadrant(t.index, w, 0, y, w, pos)
		}
	} else {
		for x := 0; x < w; x += h {
			pos += twiddleQuadrant(t.index, w, x, 0, h, pos)
		}
	}
	return t
}

// twiddleQuadrant recursively fills output[seq:] with the Morton-Z offsets
// of the blocksize×blocksize quadrant rooted at (x, y), stride being the
// width of the full raster that x/y are offsets into. It returns the
// number of entries written.
func twiddleQuadrant(output []int32, stride, x, y, blocksize, seq int) int {
	before := seq

	if blocksize == 1 {
		output[seq] = int32(y*stride + x)
		seq++
	} else {
		half := blocksize >> 1
		seq += twiddleQuadrant(output, stride, x, y, half, seq)
		seq += twiddleQuadrant(output, stride, x, y+half, half, seq)
		seq += twiddleQuadrant(output, stride, x+half, y, half, seq)
		seq += twiddleQuadrant(output, stride, x+half, y+half, half, seq)
	}

	return seq - before
}

// Index returns the pixel offset (y*width+x) that the i-th twiddled texel
// corresponds to.
func (t *Twiddler) Index(i int) int {
	return int(t.index[i])
}

// XY returns the (x, y) pixel coordinate that the i-th twiddled texel
// corresponds to.
func (t *Twiddler) XY(i int) (x, y int) {
	offset := int(t.index[i])
	return offset % t.width, offset / t.width
}

// Len returns width*height.
func (t *Twiddler) Len() int {
	return len(t.index)
}
