// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// texconv converts ordinary pixel images into the DTEX texture format
// native to the PowerVR2 graphics unit in the Dreamcast console, and
// can decode a DTEX file back into a preview image.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tvspelsfreak/texconv/internal/cli"
	"github.com/tvspelsfreak/texconv/lib/dtex"
)

var supportedFormats = map[string]dtex.PixelFormat{
	"ARGB1555": dtex.PixelFormatARGB1555,
	"RGB565":   dtex.PixelFormatRGB565,
	"ARGB4444": dtex.PixelFormatARGB4444,
	"YUV422":   dtex.PixelFormatYUV422,
	"BUMPMAP":  dtex.PixelFormatBumpMap,
	"PAL4BPP":  dtex.PixelFormatPAL4BPP,
	"PAL8BPP":  dtex.PixelFormatPAL8BPP,
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		in          []string
		out         string
		format      string
		mipmap      bool
		compress    bool
		stride      bool
		preview     string
		vqCodeUsage string
		verbose     bool
		nearest     bool
		bilinear    bool
	)

	cmd := &cobra.Command{
		Use:   "texconv",
		Short: "Converts images to the Dreamcast DTEX texture format",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(runOptions{
				in:          in,
				out:         out,
				format:      format,
				mipmap:      mipmap,
				compress:    compress,
				stride:      stride,
				preview:     preview,
				vqCodeUsage: vqCodeUsage,
				verbose:     verbose,
				nearest:     nearest,
				bilinear:    bilinear,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&in, "in", "i", nil, "Input file(s). (REQUIRED)")
	flags.StringVarP(&out, "out", "o", "", "Output file. (REQUIRED)")
	flags.StringVarP(&format, "format", "f", "", "Texture format: ARGB1555, RGB565, ARGB4444, YUV422, BUMPMAP, PAL4BPP or PAL8BPP. (REQUIRED)")
	flags.BoolVarP(&mipmap, "mipmap", "m", false, "Generate/allow mipmaps.")
	flags.BoolVarP(&compress, "compress", "c", false, "Output a compressed (vector-quantized) texture.")
	flags.BoolVarP(&stride, "stride", "s", false, "Output a stride texture.")
	flags.StringVarP(&preview, "preview", "p", "", "Write a preview PNG of the decoded texture.")
	flags.StringVar(&vqCodeUsage, "vqcodeusage", "", "Write a PNG visualizing compression code usage.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Extra printouts.")
	flags.BoolVarP(&nearest, "nearest", "n", false, "Use nearest-neighbor filtering for scaling mipmaps.")
	flags.BoolVarP(&bilinear, "bilinear", "b", false, "Use bilinear filtering for scaling mipmaps.")

	return cmd
}

type runOptions struct {
	in          []string
	out         string
	format      string
	mipmap      bool
	compress    bool
	stride      bool
	preview     string
	vqCodeUsage string
	verbose     bool
	nearest     bool
	bilinear    bool
}

func run(opt runOptions) error {
	logger := cli.NewLogger(log.New(os.Stderr, "", 0), opt.verbose)

	if len(opt.in) == 0 {
		return fmt.Errorf("texconv: no input file(s) specified")
	}
	if opt.out == "" {
		return fmt.Errorf("texconv: no output file specified")
	}
	pf, ok := supportedFormats[opt.format]
	if !ok {
		return fmt.Errorf("texconv: unsupported format %q", opt.format)
	}

	if opt.stride {
		if opt.compress || opt.mipmap {
			return fmt.Errorf("texconv: stride textures can't be compressed or have mipmaps")
		}
		if pf.IsPaletted() || pf == dtex.PixelFormatBumpMap {
			return fmt.Errorf("texconv: only RGB565, ARGB1555, ARGB4444 and YUV422 can be strided")
		}
	}

	rasters, err := cli.LoadImages(opt.in)
	if err != nil {
		return err
	}

	downsampler := defaultDownsampler(pf, opt.nearest, opt.bilinear)

	data, pal, err := dtex.Encode(rasters, pf, opt.mipmap, opt.compress, opt.stride, downsampler, logger)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opt.out, data, 0o644); err != nil {
		return err
	}
	logger.Debugf("texconv: saved texture %s", opt.out)

	palFilename := opt.out + ".pal"
	if pal != nil {
		if err := os.WriteFile(palFilename, pal.Encode(), 0o644); err != nil {
			return err
		}
		logger.Debugf("texconv: saved palette %s", palFilename)
	}

	if opt.preview == "" && opt.vqCodeUsage == "" {
		return nil
	}
	return writePreviews(data, pal, opt, logger)
}

func defaultDownsampler(pf dtex.PixelFormat, nearest, bilinear bool) dtex.Downsampler {
	switch {
	case nearest:
		return dtex.NearestNeighborDownsampler
	case bilinear:
		return dtex.BilinearDownsampler
	case pf.IsPaletted():
		return dtex.NearestNeighborDownsampler
	default:
		return dtex.BilinearDownsampler
	}
}

func writePreviews(data []byte, pal *dtex.Palette, opt runOptions, logger *cli.Logger) error {
	decoded, err := dtex.Decode(data, pal, logger)
	if err != nil {
		return fmt.Errorf("texconv: decoding %s for preview: %w", opt.out, err)
	}

	if opt.preview != "" {
		if err := cli.SavePNG(opt.preview, dtex.RenderPreview(decoded)); err != nil {
			logger.Debugf("texconv: failed to save %s", opt.preview)
			return err
		}
		logger.Debugf("texconv: saved preview image %s", opt.preview)
	}

	if opt.vqCodeUsage != "" && opt.compress {
		img := dtex.RenderCodeUsage(decoded)
		if img == nil {
			logger.Warnf("texconv: no code usage data to visualize for %s", opt.out)
			return nil
		}
		if err := cli.SavePNG(opt.vqCodeUsage, img); err != nil {
			logger.Debugf("texconv: failed to save %s", opt.vqCodeUsage)
			return err
		}
		logger.Debugf("texconv: saved code usage image %s", opt.vqCodeUsage)
	}

	return nil
}
