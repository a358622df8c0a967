// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

import "encoding/binary"

const (
	dtexMagic  = "DTEX"
	headerSize = 16
	alignment  = 32

	codebookSize      = 2048
	vqMaxCodes        = 256
	pal4bppMipOffset  = 1
	pal8bppMipOffset  = 3
	bpp16MipOffset    = 6
	pal4bppCapacity   = 16
	pal8bppCapacity   = 256
)

// Header is the 16-byte DTEX file header.
type Header struct {
	Width  int
	Height int
	Type   Format
	Size   int
}

// MarshalHeader encodes h as the 16-byte little-endian DTEX header.
func MarshalHeader(h Header) []byte {
	buf := make([]byte, headerSize)
	copy(buf, dtexMagic)
	binary.LittleEndian.PutUint16(buf[4:], uint16(h.Width))
	binary.LittleEndian.PutUint16(buf[6:], uint16(h.Height))
	binary.LittleEndian.PutUint32(buf[8:], uint32(h.Type))
	binary.LittleEndian.PutUint32(buf[12:], uint32(h.Size))
	return buf
}

// ParseHeader decodes the 16-byte DTEX header from the front of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize || string(data[:4]) != dtexMagic {
		return Header{}, ErrNotADTEXFile
	}
	return Header{
		Width:  int(binary.LittleEndian.Uint16(data[4:])),
		Height: int(binary.LittleEndian.Uint16(data[6:])),
		Type:   Format(binary.LittleEndian.Uint32(data[8:])),
		Size:   int(binary.LittleEndian.Uint32(data[12:])),
	}, nil
}

// padTo32 returns data followed by zero bytes up to the next multiple of
// 32. It warns via log if the padding added is a full block or more,
// since that would indicate the size calculation producing data is
// wrong.
func padTo32(data []byte, log Logger) []byte {
	pad := (alignment - len(data)%alignment) % alignment
	if pad >= alignment {
		logOrNop(log).Criticalf("dtex: padding overrun: %d bytes of padding for a %d-byte body", pad, len(data))
	}
	if pad == 0 {
		return data
	}
	return append(data, make([]byte, pad)...)
}

// calculateBodySize computes the exact unpadded byte length of the body
// for a texture with the given format, flags and dimensions, following
// the accumulation rule in the external interface description: sum
// pixels over every mipmap level at or above the format's minimum level,
// scale by bytes-per-pixel, add the format's structural offset, and add
// the codebook size if compressed. Padding to the 32-byte alignment is
// not included; padTo32 adds it.
//
// This must match what the corresponding encoder actually writes; tests
// cross-check the two independently.
func calculateBodySize(f Format, width, height int) int {
	pf := f.PixelFormat()
	mipmapped := f.Mipmapped()
	compressed := f.Compressed()
	strided := f.Strided()

	if strided {
		return width * height * 2
	}

	if pf.IsPaletted() {
		return calculatePalettedBodySize(pf, mipmapped, compressed, width)
	}
	return calculate16BPPBodySize(pf, mipmapped, compressed, width)
}

// nextPowerOfTwo returns the smallest power of two >= x, or 1 if x <= 0.
func nextPowerOfTwo(x int) int {
	if x <= 0 {
		return 1
	}
	pw2 := 1
	for pw2 < x {
		pw2 *= 2
	}
	return pw2
}

// mipmapLevels returns the side lengths of every square mipmap level from
// side down to floor, largest first.
func mipmapLevels(side, floor int) []int {
	levels := make([]int, 0)
	for s := side; s >= floor; s /= 2 {
		levels = append(levels, s)
	}
	return levels
}

func calculate16BPPBodySize(pf PixelFormat, mipmapped, compressed bool, side int) int {
	if !compressed {
		size := 0
		levels := []int{side}
		if mipmapped {
			levels = mipmapLevels(side, 1)
			size += bpp16MipOffset
		}
		for _, s := range levels {
			size += s * s * 2
		}
		return size
	}

	size := codebookSize
	levels := []int{side}
	if mipmapped {
		levels = mipmapLevels(side, 2)
		size += 1
	}
	for _, s := range levels {
		size += (s / 2) * (s / 2)
	}
	return size
}

func calculatePalettedBodySize(pf PixelFormat, mipmapped, compressed bool, side int) int {
	if !compressed {
		offset := pal8bppMipOffset
		bytesPerPixel := 1.0
		if pf == PixelFormatPAL4BPP {
			offset = pal4bppMipOffset
			bytesPerPixel = 0.5
		}

		size := 0
		levels := []int{side}
		if mipmapped {
			levels = mipmapLevels(side, 1)
			size += offset
		}
		for _, s := range levels {
			pixels := s * s
			if s == 1 {
				size += 1
			} else {
				size += int(float64(pixels) * bytesPerPixel)
			}
		}
		return size
	}

	size := codebookSize
	levels := []int{side}
	if mipmapped {
		levels = mipmapLevels(side, 4)
		if pf == PixelFormatPAL8BPP {
			size += 1
		}
	}
	totalBlocks := 0
	for _, s := range levels {
		totalBlocks += (s / 4) * (s / 4)
	}
	if pf == PixelFormatPAL8BPP {
		size += totalBlocks * 2
	} else {
		size += totalBlocks
		if mipmapped {
			// The 4x4-block nibble stream straddles block boundaries, so
			// a chain of N blocks needs N+1 boundary code indices.
			size += 1
		}
	}
	return size
}
