// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

import "image"

// Encode builds a complete DTEX file — header plus 32-byte-aligned body
// — for rasters under pixel format pf and the given flags. Non-strided
// textures may supply any subset of mipmap levels (NewImageContainer
// synthesizes the rest); a non-mipmapped texture must supply exactly
// one. Strided textures must supply exactly one raster whose width is a
// multiple of 32 in [32, 992] and whose height is a power of two at
// least 8; strided textures can't be mipmapped or compressed, and only
// the four direct-color 16-bpp formats can be strided.
//
// It returns the sidecar palette for PAL4BPP/PAL8BPP textures, or nil
// for every other format.
func Encode(rasters []*image.NRGBA, pf PixelFormat, mipmapped, compressed, strided bool, downsampler Downsampler, log Logger) ([]byte, *Palette, error) {
	log = logOrNop(log)

	if strided {
		return encodeStridedFile(rasters, pf, log)
	}

	c, err := NewImageContainer(rasters, mipmapped, compressed, pf.IsPaletted(), downsampler)
	if err != nil {
		return nil, nil, err
	}

	width, height := containerDimensions(c, mipmapped)

	var body []byte
	var pal *Palette
	if pf.IsPaletted() {
		body, pal, err = EncodePaletted(c, pf, mipmapped, compressed, log)
	} else {
		body, err = Encode16BPP(c, pf, mipmapped, compressed, log)
	}
	if err != nil {
		return nil, nil, err
	}

	f := NewFormat(pf, mipmapped, compressed, false)
	if expected := calculateBodySize(f, width, height); expected != len(body) {
		log.Criticalf("dtex: calculated body size %d does not match encoded size %d for %s", expected, len(body), f)
	}

	h := Header{Width: width, Height: height, Type: f, Size: len(body)}
	return append(MarshalHeader(h), padTo32(body, log)...), pal, nil
}

func containerDimensions(c *ImageContainer, mipmapped bool) (width, height int) {
	if mipmapped {
		return c.Largest(), c.Largest()
	}
	b := c.Rectangle().Bounds()
	return b.Dx(), b.Dy()
}

func encodeStridedFile(rasters []*image.NRGBA, pf PixelFormat, log Logger) ([]byte, *Palette, error) {
	if pf.IsPaletted() || pf == PixelFormatBumpMap {
		return nil, nil, ErrIncompatibleFlags
	}
	if len(rasters) != 1 {
		return nil, nil, ErrBadArgument
	}

	img := rasters[0]
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if !isValidStrideWidth(width) || !isValidStrideHeight(height) {
		return nil, nil, ErrInvalidSize
	}

	body, err := EncodeStrided16BPP(img, pf)
	if err != nil {
		return nil, nil, err
	}

	f := NewFormat(pf, false, false, true).WithStrideSetting(width)
	// The header's Width field holds the next power of two at or above
	// the actual stride width; the real width is recovered from the
	// stride setting in the texture type, not from this field.
	h := Header{Width: nextPowerOfTwo(width), Height: height, Type: f, Size: len(body)}
	return append(MarshalHeader(h), padTo32(body, log)...), nil, nil
}
