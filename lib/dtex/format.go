// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package dtex implements the DTEX texture format used by the PowerVR2
// graphics unit in the Dreamcast console: encoding ordinary 32-bit ARGB
// rasters into the hardware's native twiddled, palettized and
// vector-quantized texel layouts, and decoding DTEX files back into
// ordinary rasters for preview.
package dtex

import "fmt"

// PixelFormat identifies a DTEX texel encoding. Its numerical value matches
// the 3-bit tag stored in bits 27..29 of a texture's Format word.
type PixelFormat uint8

const (
	PixelFormatARGB1555 = PixelFormat(0)
	PixelFormatRGB565   = PixelFormat(1)
	PixelFormatARGB4444 = PixelFormat(2)
	PixelFormatYUV422   = PixelFormat(3)
	PixelFormatBumpMap  = PixelFormat(4)
	PixelFormatPAL4BPP  = PixelFormat(5)
	PixelFormatPAL8BPP  = PixelFormat(6)

	pixelFormatMask  = uint32(7)
	pixelFormatShift = uint32(27)
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatARGB1555:
		return "ARGB1555"
	case PixelFormatRGB565:
		return "RGB565"
	case PixelFormatARGB4444:
		return "ARGB4444"
	case PixelFormatYUV422:
		return "YUV422"
	case PixelFormatBumpMap:
		return "BUMPMAP"
	case PixelFormatPAL4BPP:
		return "PAL4BPP"
	case PixelFormatPAL8BPP:
		return "PAL8BPP"
	}
	return fmt.Sprintf("PixelFormat(%d)", uint8(f))
}

// IsPaletted reports whether f addresses a palette rather than packing
// color channels directly into the texel.
func (f PixelFormat) IsPaletted() bool {
	return f == PixelFormatPAL4BPP || f == PixelFormatPAL8BPP
}

// Is16BPP reports whether f packs one 16-bit texel per pixel (the
// complement of IsPaletted — every DTEX pixel format is one or the other).
func (f PixelFormat) Is16BPP() bool {
	return !f.IsPaletted()
}

// Format is the 32-bit bitfield stored as the texture's "type" word: it
// names the pixel format and the mipmapped/compressed/strided/twiddled
// flags, and, for strided textures, carries width/32 in its low 5 bits.
type Format uint32

const (
	flagStrided     = Format(1 << 25)
	flagNonTwiddled = Format(1 << 26)
	flagCompressed  = Format(1 << 30)
	flagMipmapped   = Format(1 << 31)

	strideSettingMask = Format(0x1F)
)

// NewFormat builds a Format word for pixel format f with the given flags.
// Strided implies non-twiddled; the caller must OR in the stride setting
// (actualWidth/32) separately once the source width is known, via
// WithStrideSetting.
func NewFormat(f PixelFormat, mipmapped, compressed, strided bool) Format {
	t := Format(uint32(f)&pixelFormatMask) << pixelFormatShift
	if mipmapped {
		t |= flagMipmapped
	}
	if compressed {
		t |= flagCompressed
	}
	if strided {
		t |= flagStrided | flagNonTwiddled
	}
	return t
}

// WithStrideSetting returns t with its low 5 bits set to width/32.
func (t Format) WithStrideSetting(width int) Format {
	return (t &^ strideSettingMask) | Format((width/32)&int(strideSettingMask))
}

// StrideSetting returns the low 5 bits of t (width/32 for strided textures).
func (t Format) StrideSetting() int {
	return int(t & strideSettingMask)
}

// PixelFormat returns the pixel format tag encoded in t.
func (t Format) PixelFormat() PixelFormat {
	return PixelFormat((uint32(t) >> pixelFormatShift) & pixelFormatMask)
}

func (t Format) Mipmapped() bool   { return t&flagMipmapped != 0 }
func (t Format) Compressed() bool  { return t&flagCompressed != 0 }
func (t Format) Strided() bool     { return t&flagStrided != 0 }
func (t Format) NonTwiddled() bool { return t&flagNonTwiddled != 0 }

// IsPaletted and Is16BPP forward to the encoded PixelFormat.
func (t Format) IsPaletted() bool { return t.PixelFormat().IsPaletted() }
func (t Format) Is16BPP() bool    { return t.PixelFormat().Is16BPP() }

func (t Format) String() string {
	s := t.PixelFormat().String()
	if t.Mipmapped() {
		s += "+mipmap"
	}
	if t.Compressed() {
		s += "+vq"
	}
	if t.Strided() {
		s += "+stride"
	}
	return s
}
