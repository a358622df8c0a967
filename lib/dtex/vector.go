// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

import (
	"image/color"
	"math"
)

// vecEqualEpsilon is the per-component tolerance for approximate vector
// equality, used by the vector quantizer's deduplication pass.
const vecEqualEpsilon = 1e-3

// vec is an N-dimensional real vector with an attached hash, used as the
// input and code representation for VectorQuantizer. The dimension is
// fixed at construction and is not tracked separately from len(v) — all
// vectors fed to one VectorQuantizer must share it.
//
// The quantizer is instantiated at five dimensions across the encoders (4,
// 12, 16, 32, 64); vec is runtime-dimensioned rather than using a
// compile-time array length, since Go generics cannot parameterize an
// array's length by an arbitrary value the way the original C++ template
// does.
type vec struct {
	v    []float64
	hash uint32
}

func newVec(n int) vec {
	return vec{v: make([]float64, n)}
}

func (a vec) clone() vec {
	v := make([]float64, len(a.v))
	copy(v, a.v)
	return vec{v: v, hash: a.hash}
}

func (a vec) dim() int { return len(a.v) }

// approxEqual reports whether every component of a and b differs by less
// than vecEqualEpsilon.
func (a vec) approxEqual(b vec) bool {
	for i := range a.v {
		d := a.v[i] - b.v[i]
		if d < 0 {
			d = -d
		}
		if d >= vecEqualEpsilon {
			return false
		}
	}
	return true
}

func (a vec) add(b vec) vec {
	out := newVec(len(a.v))
	for i := range a.v {
		out.v[i] = a.v[i] + b.v[i]
	}
	return out
}

func (a vec) sub(b vec) vec {
	out := newVec(len(a.v))
	for i := range a.v {
		out.v[i] = a.v[i] - b.v[i]
	}
	return out
}

// addScaled adds b*x into a in place.
func (a vec) addScaled(b vec, x float64) {
	for i := range a.v {
		a.v[i] += b.v[i] * x
	}
}

func (a vec) scaleInPlace(x float64) {
	inv := 1.0 / x
	for i := range a.v {
		a.v[i] *= inv
	}
}

func (a vec) lengthSquared() float64 {
	sum := 0.0
	for _, x := range a.v {
		sum += x * x
	}
	return sum
}

func (a vec) length() float64 {
	return math.Sqrt(a.lengthSquared())
}

// setLength rescales a in place to have the given length.
func (a vec) setLength(length float64) {
	x := (1.0 / a.length()) * length
	for i := range a.v {
		a.v[i] *= x
	}
}

// distanceSquared returns the squared Euclidean distance between a and b.
func distanceSquared(a, b vec) float64 {
	sum := 0.0
	for i := range a.v {
		d := a.v[i] - b.v[i]
		sum += d * d
	}
	return sum
}

// zero resets a's components to 0, leaving its hash untouched.
func (a vec) zero() {
	for i := range a.v {
		a.v[i] = 0
	}
}

// combineHash folds rgba into seed using the Boost-style mixing constant,
// giving much better hash dispersion than a plain xor for the small
// integer inputs used here.
func combineHash(rgba color.NRGBA, seed uint32) uint32 {
	h := uint32(rgba.A)<<24 | uint32(rgba.R)<<16 | uint32(rgba.G)<<8 | uint32(rgba.B)
	seed ^= h + 0x9E3779B9 + (seed << 6) + (seed >> 2)
	return seed
}

// rgbToVec writes the (R, G, B) of c, normalized to [0, 1], into vec
// starting at offset.
func rgbToVec(c color.NRGBA, v vec, offset int) {
	v.v[offset+0] = float64(c.R) / 255.0
	v.v[offset+1] = float64(c.G) / 255.0
	v.v[offset+2] = float64(c.B) / 255.0
}

// argbToVec writes the (A, R, G, B) of c, normalized to [0, 1], into vec
// starting at offset.
func argbToVec(c color.NRGBA, v vec, offset int) {
	v.v[offset+0] = float64(c.A) / 255.0
	v.v[offset+1] = float64(c.R) / 255.0
	v.v[offset+2] = float64(c.G) / 255.0
	v.v[offset+3] = float64(c.B) / 255.0
}

// vecToRGB reads three components starting at offset as an opaque color.
func vecToRGB(v vec, offset int) color.NRGBA {
	return color.NRGBA{
		R: clampByte(v.v[offset+0] * 255.0),
		G: clampByte(v.v[offset+1] * 255.0),
		B: clampByte(v.v[offset+2] * 255.0),
		A: 255,
	}
}

// vecToARGB reads four components starting at offset as (A, R, G, B).
func vecToARGB(v vec, offset int) color.NRGBA {
	return color.NRGBA{
		A: clampByte(v.v[offset+0] * 255.0),
		R: clampByte(v.v[offset+1] * 255.0),
		G: clampByte(v.v[offset+2] * 255.0),
		B: clampByte(v.v[offset+3] * 255.0),
	}
}
