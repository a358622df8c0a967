// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

import (
	"errors"
	"fmt"
)

var (
	ErrBadArgument       = errors.New("dtex: bad argument")
	ErrInvalidSize       = errors.New("dtex: invalid texture size")
	ErrNotSquare         = errors.New("dtex: image must be square for mipmapped or compressed textures")
	ErrNoMipmapFlag      = errors.New("dtex: more than one input image requires the mipmap flag")
	ErrNoUsableImage     = errors.New("dtex: at least one input image must be 8x8 or larger")
	ErrNotADTEXFile      = errors.New("dtex: not a valid DTEX file")
	ErrNotADPALFile      = errors.New("dtex: not a valid DPAL file")
	ErrTruncatedBody     = errors.New("dtex: truncated texture body")
	ErrIncompatibleFlags = errors.New("dtex: incompatible flag combination")
)

func errUnsupportedFormat(f PixelFormat) error {
	return fmt.Errorf("dtex: unsupported pixel format %v", f)
}
