// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

import (
	"image"
	"testing"
)

// recordingDownsampler records the requested side of every level it's
// asked to synthesize, and returns a flat raster of that side so
// tests can assert on both the call pattern and the resulting levels.
type recordingDownsampler struct {
	calls []int // requested newSide, one entry per call
}

func (d *recordingDownsampler) Downsample(src image.Image, newSide int) *image.NRGBA {
	d.calls = append(d.calls, newSide)
	return image.NewNRGBA(image.Rect(0, 0, newSide, newSide))
}

func square(side int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, side, side))
}

func TestNewImageContainerFillsMissingMipmapLevels(tt *testing.T) {
	d := &recordingDownsampler{}
	c, err := NewImageContainer([]*image.NRGBA{square(16), square(4)}, true, false, false, d)
	if err != nil {
		tt.Fatalf("NewImageContainer: %v", err)
	}

	want := []int{1, 2, 4, 8, 16}
	got := c.Levels()
	if len(got) != len(want) {
		tt.Fatalf("Levels() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			tt.Errorf("Levels()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	// 16 and 4 were supplied directly; only 8, 2, 1 needed synthesis.
	wantCalls := map[int]bool{8: true, 2: true, 1: true}
	if len(d.calls) != len(wantCalls) {
		tt.Fatalf("downsampler called %d times (%v), want %d", len(d.calls), d.calls, len(wantCalls))
	}
	for _, side := range d.calls {
		if !wantCalls[side] {
			tt.Errorf("unexpected downsample call for side %d", side)
		}
	}

	for _, side := range []int{1, 2, 4, 8, 16} {
		lvl := c.Level(side)
		if lvl == nil {
			tt.Errorf("Level(%d) = nil", side)
			continue
		}
		if b := lvl.Bounds(); b.Dx() != side || b.Dy() != side {
			tt.Errorf("Level(%d) bounds = %v, want %dx%d", side, b, side, side)
		}
	}

	if c.Largest() != 16 {
		tt.Errorf("Largest() = %d, want 16", c.Largest())
	}
	if !c.Mipmapped() {
		tt.Errorf("Mipmapped() = false, want true")
	}
}

func TestNewImageContainerSingleLevelUsesLevelItself(tt *testing.T) {
	d := &recordingDownsampler{}
	c, err := NewImageContainer([]*image.NRGBA{square(32)}, true, false, false, d)
	if err != nil {
		tt.Fatalf("NewImageContainer: %v", err)
	}
	if len(d.calls) != 5 { // 16, 8, 4, 2, 1
		tt.Errorf("downsampler called %d times, want 5", len(d.calls))
	}
	if c.Level(32) == nil {
		tt.Errorf("Level(32) = nil")
	}
}

func TestNewImageContainerNonMipmappedUsesRectangle(tt *testing.T) {
	r := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	c, err := NewImageContainer([]*image.NRGBA{r}, false, false, false, nil)
	if err != nil {
		tt.Fatalf("NewImageContainer: %v", err)
	}
	if c.Mipmapped() {
		tt.Errorf("Mipmapped() = true, want false")
	}
	if c.Rectangle() != r {
		tt.Errorf("Rectangle() did not return the supplied raster")
	}
}

func TestNewImageContainerErrors(tt *testing.T) {
	cases := []struct {
		name       string
		rasters    []*image.NRGBA
		mipmapped  bool
		compressed bool
		want       error
	}{
		{"no rasters", nil, true, false, ErrNoUsableImage},
		{"multiple rasters without mipmap flag", []*image.NRGBA{square(16), square(8)}, false, false, ErrNoMipmapFlag},
		{"non-square single raster when compressed", []*image.NRGBA{image.NewNRGBA(image.Rect(0, 0, 16, 8))}, false, true, ErrNotSquare},
		{"too small to be usable", []*image.NRGBA{square(4)}, false, false, ErrNoUsableImage},
		{"asymmetric raster with one dimension under the floor", []*image.NRGBA{image.NewNRGBA(image.Rect(0, 0, 4, 1024))}, false, false, ErrNoUsableImage},
		{"non-power-of-two non-mipmapped raster", []*image.NRGBA{image.NewNRGBA(image.Rect(0, 0, 100, 100))}, false, false, ErrInvalidSize},
		{"non-square mipmap level", []*image.NRGBA{image.NewNRGBA(image.Rect(0, 0, 16, 8))}, true, false, ErrNotSquare},
		{"non-power-of-two mipmap level", []*image.NRGBA{square(24)}, true, false, ErrInvalidSize},
	}
	for _, c := range cases {
		_, err := NewImageContainer(c.rasters, c.mipmapped, c.compressed, false, nil)
		if err != c.want {
			tt.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}
