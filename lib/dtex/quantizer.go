// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dtex

// splitPerturbation is the distance a code is displaced from its parent
// when splitting, in the direction of (and away from) the code's
// farthest-assigned vector.
const splitPerturbation = 0.01

// closestEarlyExitDistSq short-circuits findClosest once a sufficiently
// close code is found; findClosest is the hot loop of compression.
const closestEarlyExitDistSq = 1e-4

// quantizerCode is one entry of a VectorQuantizer's codebook while it is
// being built: the current code vector, plus the running statistics
// place() accumulates for it during one assignment sweep.
type quantizerCode struct {
	vecCount       int
	vecSum         vec
	maxDistance    float64
	maxDistanceVec vec
	codeVec        vec
}

// VectorQuantizer builds a codebook of up to K representative vectors from
// a multiset of N-dimensional input vectors, using a generalized
// Linde-Buzo-Gray splitting algorithm: seed with the global centroid,
// repeatedly double the codebook by perturbing and re-assigning, then
// greedily split the highest-error code until K is reached or no further
// split helps.
//
// findClosest does an O(K*N) linear scan; at the dimensions used here (up
// to 64) a kd-tree does not outperform it, so none is attempted.
type VectorQuantizer struct {
	dim   int
	codes []quantizerCode
	log   Logger
}

// NewVectorQuantizer creates a quantizer for vectors of the given
// dimension. log may be nil.
func NewVectorQuantizer(dim int, log Logger) *VectorQuantizer {
	return &VectorQuantizer{dim: dim, log: logOrNop(log)}
}

// CodeCount returns the number of codes currently in the codebook. After
// Compress it may be less than the requested K if splitting stalled.
func (q *VectorQuantizer) CodeCount() int {
	return len(q.codes)
}

// CodeVector returns the i-th code vector's components.
func (q *VectorQuantizer) CodeVector(i int) []float64 {
	return q.codes[i].codeVec.v
}

// weightedVec is one entry of the deduplicated input multiset: a distinct
// vector (by hash + approximate equality) and how many times it occurred
// in the original input.
type weightedVec struct {
	v     vec
	count int
}

// dedupe builds the weighted multiset {vector -> occurrence count} in
// stable insertion order. This is purely an optimization — the result of
// Compress is identical to operating on the unweighted input, since
// place() accumulates a weighted sum — but cuts the O(K*N) findClosest
// cost down to the number of distinct vectors.
//
// Vectors aren't Go-comparable (they're slice-backed), so a plain map
// can't key on them directly; instead we hash-bucket indices into a
// stable-order result slice and fall back to approxEqual within a bucket,
// mirroring the original's hash-plus-custom-equality hash table.
func dedupe(vectors []vec) []weightedVec {
	buckets := make(map[uint32][]int, len(vectors))
	result := make([]weightedVec, 0, len(vectors))

	for _, v := range vectors {
		matched := -1
		for _, idx := range buckets[v.hash] {
			if result[idx].v.approxEqual(v) {
				matched = idx
				break
			}
		}
		if matched >= 0 {
			result[matched].count++
			continue
		}
		buckets[v.hash] = append(buckets[v.hash], len(result))
		result = append(result, weightedVec{v: v, count: 1})
	}

	return result
}

// Compress builds a codebook of up to numCodes codes from vectors.
func (q *VectorQuantizer) Compress(vectors []vec, numCodes int) {
	weighted := dedupe(vectors)
	q.log.Debugf("VQ: deduplicated %d vectors to %d distinct", len(vectors), len(weighted))

	q.codes = make([]quantizerCode, 1, numCodes)
	q.codes[0].codeVec = newVec(q.dim)
	q.place(weighted)

	splits := 0
	for len(q.codes)*2 <= numCodes {
		before := len(q.codes)

		q.split()
		q.place(weighted)
		q.place(weighted)
		q.place(weighted)
		q.removeUnusedCodes()

		if len(q.codes) == before {
			q.log.Debugf("VQ: could not further improve the codebook by splitting")
			break
		}
		splits++
		q.log.Debugf("VQ: split %d done, codes=%d", splits, len(q.codes))
	}

	repairs := 0
	for len(q.codes) < numCodes {
		before := len(q.codes)
		n := numCodes - before

		for i := 0; i < n; i++ {
			candidate := q.findBestSplitCandidate()
			if candidate == -1 {
				break
			}
			q.splitCode(candidate)
			q.codes[candidate].maxDistance = 0
		}

		if len(q.codes) == before {
			q.log.Debugf("VQ: could not further improve the codebook by repairing")
			break
		}

		q.place(weighted)
		q.place(weighted)
		q.place(weighted)
		q.removeUnusedCodes()

		if len(q.codes) == before {
			q.log.Debugf("VQ: could not further improve the codebook by repairing")
			break
		}
		repairs++
		q.log.Debugf("VQ: repair %d done, codes=%d", repairs, len(q.codes))
	}
}

// findClosest returns the index of the code closest to v by squared
// Euclidean distance. Ties break toward the lower index.
func (q *VectorQuantizer) findClosest(v vec) int {
	if len(q.codes) <= 1 {
		return 0
	}
	closestIndex := 0
	closestDist := distanceSquared(q.codes[0].codeVec, v)

	for i := 1; i < len(q.codes); i++ {
		d := distanceSquared(q.codes[i].codeVec, v)
		if d < closestDist {
			closestIndex = i
			closestDist = d
			if closestDist < closestEarlyExitDistSq {
				return closestIndex
			}
		}
	}
	return closestIndex
}

// FindClosest is the public form of findClosest, for callers reassigning
// already-vectorized pixels to a finished codebook.
func (q *VectorQuantizer) FindClosest(v []float64) int {
	return q.findClosest(vec{v: v})
}

func (q *VectorQuantizer) findBestSplitCandidate() int {
	best := -1
	furthest := 0.0
	for i := range q.codes {
		if q.codes[i].vecCount > 1 && q.codes[i].maxDistance > furthest {
			furthest = q.codes[i].maxDistance
			best = i
		}
	}
	return best
}

func (q *VectorQuantizer) removeUnusedCodes() {
	removed := 0
	kept := q.codes[:0]
	for _, c := range q.codes {
		if c.vecCount == 0 {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	q.codes = kept
	if removed > 0 {
		q.log.Debugf("VQ: removed %d unused codes", removed)
	}
}

// place resets every code's running statistics, then assigns every
// weighted vector to its closest code, updating that code's weighted sum,
// count, and farthest-assigned-vector bookkeeping. Finally every code
// with a nonzero count moves to the mean of its assigned vectors.
func (q *VectorQuantizer) place(weighted []weightedVec) {
	for i := range q.codes {
		q.codes[i].vecCount = 0
		q.codes[i].vecSum = newVec(q.dim)
		q.codes[i].maxDistance = 0
		q.codes[i].maxDistanceVec = newVec(q.dim)
	}

	for _, wv := range weighted {
		code := &q.codes[q.findClosest(wv.v)]

		code.vecSum.addScaled(wv.v, float64(wv.count))
		code.vecCount += wv.count

		d := distanceSquared(code.codeVec, wv.v)
		if d > code.maxDistance {
			code.maxDistance = d
			code.maxDistanceVec = wv.v.clone()
		}
	}

	for i := range q.codes {
		if q.codes[i].vecCount > 0 {
			q.codes[i].vecSum.scaleInPlace(float64(q.codes[i].vecCount))
			q.codes[i].codeVec = q.codes[i].vecSum
		}
	}
}

// split splits every code that currently has more than one assigned
// vector. The codebook grows while this iterates, so it bounds itself to
// the size at entry.
func (q *VectorQuantizer) split() {
	size := len(q.codes)
	for i := 0; i < size; i++ {
		if q.codes[i].vecCount > 1 {
			q.splitCode(i)
		}
	}
}

// splitCode turns code[index] into two codes: the original moved away
// from its farthest-assigned vector, and a new one moved toward it, each
// by splitPerturbation. A subsequent place() sweep tears the two apart.
func (q *VectorQuantizer) splitCode(index int) {
	code := &q.codes[index]
	diff := code.maxDistanceVec.sub(code.codeVec)
	diff.setLength(splitPerturbation)

	newVec := code.codeVec.clone()
	newVec.addScaled(diff, 1)
	code.codeVec.addScaled(diff, -1)

	q.codes = append(q.codes, quantizerCode{codeVec: newVec})
}
