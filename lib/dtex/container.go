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
	"image/color"

	"golang.org/x/image/draw"
)

const (
	minSide       = 1
	minUsableSide = 8
	maxSide       = 1024
)

// Downsampler synthesizes a smaller raster from a larger one. It exists
// as an interface so callers can override the default nearest-neighbor
// (paletted) / bilinear (direct color) policy.
type Downsampler interface {
	Downsample(src image.Image, newSide int) *image.NRGBA
}

type scalerDownsampler struct {
	scaler draw.Scaler
}

func (d scalerDownsampler) Downsample(src image.Image, newSide int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, newSide, newSide))
	d.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// NearestNeighborDownsampler never introduces colors absent from the
// source, the policy required for paletted targets.
var NearestNeighborDownsampler Downsampler = scalerDownsampler{draw.NearestNeighbor}

// BilinearDownsampler is the default policy for direct-color targets.
var BilinearDownsampler Downsampler = scalerDownsampler{draw.BiLinear}

// ImageContainer holds one or more mipmap levels of a texture being
// encoded, indexed by side length. A non-mipmapped texture holds exactly
// one raster, which may be rectangular. A mipmapped texture holds a
// chain of square power-of-two rasters; levels absent from the input are
// synthesized by downsampling.
type ImageContainer struct {
	levels     map[int]*image.NRGBA
	rectangle  *image.NRGBA
	mipmapped  bool
}

// NewImageContainer validates the supplied rasters against mipmapped and
// compressed, and builds any missing mipmap levels via downsampler
// (nearest-neighbor if nil and paletted is true, bilinear otherwise).
// compressed forces squareness even for a non-mipmapped single raster,
// since block VQ operates on square power-of-two regions.
func NewImageContainer(rasters []*image.NRGBA, mipmapped, compressed, paletted bool, downsampler Downsampler) (*ImageContainer, error) {
	if len(rasters) == 0 {
		return nil, ErrNoUsableImage
	}

	if !mipmapped {
		if len(rasters) != 1 {
			return nil, ErrNoMipmapFlag
		}
		r := rasters[0]
		b := r.Bounds()
		if b.Dx() < minUsableSide || b.Dy() < minUsableSide {
			return nil, ErrNoUsableImage
		}
		if !isValidNonMipmapSide(b.Dx()) || !isValidNonMipmapSide(b.Dy()) {
			return nil, ErrInvalidSize
		}
		if compressed && b.Dx() != b.Dy() {
			return nil, ErrNotSquare
		}
		return &ImageContainer{rectangle: r}, nil
	}

	if downsampler == nil {
		if paletted {
			downsampler = NearestNeighborDownsampler
		} else {
			downsampler = BilinearDownsampler
		}
	}

	largest := 0
	levels := make(map[int]*image.NRGBA, len(rasters))
	for _, r := range rasters {
		b := r.Bounds()
		w, h := b.Dx(), b.Dy()
		if w != h {
			return nil, ErrNotSquare
		}
		if !isValidMipmapSide(w) {
			return nil, ErrInvalidSize
		}
		levels[w] = r
		if w > largest {
			largest = w
		}
	}
	if largest < minUsableSide {
		return nil, ErrNoUsableImage
	}

	for side := largest / 2; side >= 1; side /= 2 {
		if _, ok := levels[side]; ok {
			continue
		}
		source := levels[side*2]
		levels[side] = downsampler.Downsample(source, side)
	}

	return &ImageContainer{levels: levels, mipmapped: true}, nil
}

// Mipmapped reports whether the container holds a mipmap chain rather
// than a single rectangular raster.
func (c *ImageContainer) Mipmapped() bool {
	return c.mipmapped
}

// Rectangle returns the single raster of a non-mipmapped container.
func (c *ImageContainer) Rectangle() *image.NRGBA {
	return c.rectangle
}

// Largest returns the side length of the largest mipmap level.
func (c *ImageContainer) Largest() int {
	largest := 0
	for side := range c.levels {
		if side > largest {
			largest = side
		}
	}
	return largest
}

// Level returns the raster at the given side length.
func (c *ImageContainer) Level(side int) *image.NRGBA {
	return c.levels[side]
}

// Levels returns every level's side length, ordered smallest to largest
// — the order every encoder writes mipmap data in.
func (c *ImageContainer) Levels() []int {
	largest := c.Largest()
	sides := make([]int, 0, 1)
	for s := 1; s <= largest; s *= 2 {
		if _, ok := c.levels[s]; ok {
			sides = append(sides, s)
		}
	}
	return sides
}

// At returns the color at (x, y) in the level with the given side
// length, or transparent black if out of range.
func (c *ImageContainer) At(side, x, y int) color.NRGBA {
	var img *image.NRGBA
	if c.mipmapped {
		img = c.levels[side]
	} else {
		img = c.rectangle
	}
	if img == nil {
		return color.NRGBA{}
	}
	return img.NRGBAAt(x, y)
}

func isValidSize(side, floor int) bool {
	if side < floor || side > maxSide {
		return false
	}
	return side&(side-1) == 0
}

func isValidMipmapSide(side int) bool {
	return isValidSize(side, minSide)
}

// isValidNonMipmapSide checks a non-mipmapped raster's width or height:
// power-of-two, floored at minUsableSide rather than the 1-side floor a
// mipmap chain's smallest level allows.
func isValidNonMipmapSide(side int) bool {
	return isValidSize(side, minUsableSide)
}

func isValidStrideWidth(width int) bool {
	return width >= 32 && width <= 992 && width%32 == 0
}

func isValidStrideHeight(height int) bool {
	return isValidMipmapSide(height) && height >= minUsableSide
}
