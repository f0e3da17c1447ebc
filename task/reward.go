// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RewardFunc computes one reward per row of achieved / desired
type RewardFunc func(achieved, desired mat.Matrix, info Info) []float64

// bindReward picks the reward function for rt once, at construction.
// rt has already been validated.
func bindReward(rt RewardTypes, sparse, dense RewardFunc) RewardFunc {
	if rt == Dense {
		return dense
	}
	return sparse
}

// penalty is min(0, thr - d): zero within the threshold, negative beyond
func penalty(thr float64, ds []float64) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = math.Min(0, thr-d)
	}
	return out
}

// sparse is -1 where d > thr, else 0
func sparse(thr float64, ds []float64) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		if d > thr {
			out[i] = -1
		}
	}
	return out
}

// within is d < thr per row
func within(thr float64, ds []float64) []bool {
	out := make([]bool, len(ds))
	for i, d := range ds {
		out[i] = d < thr
	}
	return out
}

// negate returns -d per row
func negate(ds []float64) []float64 {
	out := make([]float64, len(ds))
	floats.ScaleTo(out, -1, ds)
	return out
}

// flagDiff is achieved - desired for column col
func flagDiff(a, d mat.Matrix, col int) []float64 {
	n := rowsOf(a, d)
	out := make([]float64, n)
	for i := range out {
		out[i] = a.At(i, col) - d.At(i, col)
	}
	return out
}

// zeroWhere zeroes v[i] wherever cond[i] is zero
func zeroWhere(v, cond []float64) {
	for i := range v {
		if cond[i] == 0 {
			v[i] = 0
		}
	}
}

// term is one weighted reward component
type term struct {
	w float64
	v []float64
}

// weighted sums the weighted terms
func weighted(terms ...term) []float64 {
	out := make([]float64, len(terms[0].v))
	for _, t := range terms {
		floats.AddScaled(out, t.w, t.v)
	}
	return out
}

// rowsOf returns the row count of a and d, panicking with mat.ErrShape
// unless their shapes match.
func rowsOf(a, d mat.Matrix) int {
	ra, ca := a.Dims()
	rd, cd := d.Dims()
	if ra != rd || ca != cd {
		panic(mat.ErrShape)
	}
	return ra
}
