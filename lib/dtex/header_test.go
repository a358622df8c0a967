// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

import "testing"

func TestHeaderMarshalParseRoundTrip(tt *testing.T) {
	h := Header{Width: 64, Height: 128, Type: NewFormat(PixelFormatRGB565, true, false, false), Size: 4096}
	got, err := ParseHeader(MarshalHeader(h))
	if err != nil {
		tt.Fatalf("ParseHeader: %v", err)
	}
	if got != h {
		tt.Errorf("round trip: got %+v, want %+v", got, h)
	}
}

func TestParseHeaderRejectsBadMagic(tt *testing.T) {
	if _, err := ParseHeader(make([]byte, 16)); err != ErrNotADTEXFile {
		tt.Errorf("err = %v, want ErrNotADTEXFile", err)
	}
}

func TestPadTo32(tt *testing.T) {
	cases := []struct{ in, want int }{
		{0, 0}, {1, 32}, {31, 32}, {32, 32}, {33, 64},
	}
	for _, c := range cases {
		got := padTo32(make([]byte, c.in), nil)
		if len(got) != c.want {
			tt.Errorf("padTo32(%d bytes) = %d bytes, want %d", c.in, len(got), c.want)
		}
	}
}

func TestCalculateBodySize16BPPUncompressed(tt *testing.T) {
	// 8x8 non-mipmapped: one texel per pixel, 2 bytes each.
	f := NewFormat(PixelFormatRGB565, false, false, false)
	if got, want := calculateBodySize(f, 8, 8), 8*8*2; got != want {
		tt.Errorf("got %d, want %d", got, want)
	}

	// 8x8 mipmapped: levels 8,4,2,1 plus the 6-byte offset.
	f = NewFormat(PixelFormatRGB565, true, false, false)
	want := bpp16MipOffset + (8*8+4*4+2*2+1*1)*2
	if got := calculateBodySize(f, 8, 8); got != want {
		tt.Errorf("got %d, want %d", got, want)
	}
}

func TestCalculateBodySize16BPPCompressed(tt *testing.T) {
	// 8x8 mipmapped compressed: codebook + 1-byte offset + one index byte
	// per 2x2 block at every level down to 2x2.
	f := NewFormat(PixelFormatRGB565, true, true, false)
	want := codebookSize + 1 + (4*4 + 2*2 + 1*1)
	if got := calculateBodySize(f, 8, 8); got != want {
		tt.Errorf("got %d, want %d", got, want)
	}
}

// TestCalculateBodySizePAL4BPPCompressedMipmappedStraddle pins the
// nibble-straddle size correction: a chain of N 4x4 blocks needs N+1
// boundary index bytes, not N.
func TestCalculateBodySizePAL4BPPCompressedMipmappedStraddle(tt *testing.T) {
	f := NewFormat(PixelFormatPAL4BPP, true, true, false)
	// 16x16 mipmapped down to the 4x4 floor: levels 16, 8, 4 -> blocks
	// 16+4+1 = 21, so 22 index bytes.
	blocks := 16 + 4 + 1
	want := codebookSize + blocks + 1
	if got := calculateBodySize(f, 16, 16); got != want {
		tt.Errorf("got %d, want %d", got, want)
	}
}

func TestCalculateBodySizePAL8BPPCompressedMipmapped(tt *testing.T) {
	f := NewFormat(PixelFormatPAL8BPP, true, true, false)
	blocks := 16 + 4 + 1
	want := codebookSize + 1 + blocks*2
	if got := calculateBodySize(f, 16, 16); got != want {
		tt.Errorf("got %d, want %d", got, want)
	}
}

func TestCalculateBodySizeStrided(tt *testing.T) {
	f := NewFormat(PixelFormatARGB1555, false, false, true)
	if got, want := calculateBodySize(f, 64, 32), 64*32*2; got != want {
		tt.Errorf("got %d, want %d", got, want)
	}
}
