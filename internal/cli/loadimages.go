// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadImages decodes each named file into an *image.NRGBA, in order.
// Every registered format decoder (PNG, GIF, JPEG, BMP, TIFF, WebP)
// is available, matching the breadth etc2pack's command-line tool
// reads.
func LoadImages(filenames []string) ([]*image.NRGBA, error) {
	out := make([]*image.NRGBA, 0, len(filenames))
	for _, name := range filenames {
		img, err := loadImage(name)
		if err != nil {
			return nil, fmt.Errorf("cli: loading %q: %w", name, err)
		}
		out = append(out, img)
	}
	return out, nil
}

func loadImage(filename string) (*image.NRGBA, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	if n, ok := src.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n, nil
	}

	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}

// SavePNG writes img to filename as PNG, the format every preview and
// code-usage image is emitted in.
func SavePNG(filename string, img image.Image) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
