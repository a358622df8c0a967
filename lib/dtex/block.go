// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

import "image/color"

// packQuad packs a 2×2 block of 16bpp-encoded texels into a 64-bit word as
// (topLeft<<48)|(topRight<<32)|(bottomLeft<<16)|bottomRight, after per-texel
// conversion to pixelFormat. YUV422 is special-cased: the top pair and the
// bottom pair are each encoded together via the co-located-pair rule, so
// the four packed values are (yuv(tl,tr)[0], yuv(tl,tr)[1], yuv(bl,br)[0],
// yuv(bl,br)[1]).
func packQuad(topLeft, topRight, bottomLeft, bottomRight color.NRGBA, f PixelFormat) (uint64, error) {
	var a, b, c, d uint64

	if f == PixelFormatYUV422 {
		y0, y1 := EncodeYUV422Pair(topLeft, topRight)
		y2, y3 := EncodeYUV422Pair(bottomLeft, bottomRight)
		a, b, c, d = uint64(y0), uint64(y1), uint64(y2), uint64(y3)
	} else {
		tl, err := To16BPP(topLeft, f)
		if err != nil {
			return 0, err
		}
		tr, err := To16BPP(topRight, f)
		if err != nil {
			return 0, err
		}
		bl, err := To16BPP(bottomLeft, f)
		if err != nil {
			return 0, err
		}
		br, err := To16BPP(bottomRight, f)
		if err != nil {
			return 0, err
		}
		a, b, c, d = uint64(tl), uint64(tr), uint64(bl), uint64(br)
	}

	return (a << 48) | (b << 32) | (c << 16) | d, nil
}

// quadTexels splits a packed quad back into its four 16-bit texels, in
// (topLeft, topRight, bottomLeft, bottomRight) order.
func quadTexels(quad uint64) (tl, tr, bl, br uint16) {
	tl = uint16((quad >> 48) & 0xFFFF)
	tr = uint16((quad >> 32) & 0xFFFF)
	bl = uint16((quad >> 16) & 0xFFFF)
	br = uint16(quad & 0xFFFF)
	return tl, tr, bl, br
}

// quadCorners decodes a packed quad back into its four ARGB corners for
// pixel format f.
func quadCorners(quad uint64, f PixelFormat) (tl, tr, bl, br color.NRGBA, err error) {
	t, r, b, c := quadTexels(quad)
	if f == PixelFormatYUV422 {
		tl, tr = DecodeYUV422Pair(t, r)
		bl, br = DecodeYUV422Pair(b, c)
		return tl, tr, bl, br, nil
	}
	if tl, err = From16BPP(t, f); err != nil {
		return
	}
	if tr, err = From16BPP(r, f); err != nil {
		return
	}
	if bl, err = From16BPP(b, f); err != nil {
		return
	}
	br, err = From16BPP(c, f)
	return
}

// writeCodebookOrder writes a quad's four 16-bit texels into dst (which
// must have room for 4 entries) in the on-disk codebook order: TL, BL,
// TR, BR — columns first. This layout is only used for the VQ codebook;
// the packed 64-bit quad itself, as split by quadTexels, keeps plain
// TL/TR/BL/BR order.
func writeCodebookOrder(dst []uint16, quad uint64) {
	tl, tr, bl, br := quadTexels(quad)
	dst[0] = tl
	dst[1] = bl
	dst[2] = tr
	dst[3] = br
}

// quadFromCodebookOrder is the inverse of writeCodebookOrder: given the
// four texels as stored (TL, BL, TR, BR), it repacks them into the
// TL/TR/BL/BR-ordered 64-bit word used elsewhere in this package.
func quadFromCodebookOrder(tl, bl, tr, br uint16) uint64 {
	return (uint64(tl) << 48) | (uint64(tr) << 32) | (uint64(bl) << 16) | uint64(br)
}
