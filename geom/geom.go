// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom has the distance and sampling helpers shared by the
// manipulation tasks.  Every distance has a batched form that works row-wise
// on an N x D matrix, and the single-vector forms are defined in terms of it
// so that the two always agree.
package geom

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Distance returns the Euclidean distance between a and b.
// Panics if the lengths differ.
func Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// BatchDistance returns the per-row Euclidean distance between a and b,
// which must have the same shape.
func BatchDistance(a, b mat.Matrix) []float64 {
	_, c := a.Dims()
	return FieldDistance(a, b, 0, c)
}

// FieldDistance returns the per-row Euclidean distance between columns
// [lo, hi) of a and b.
func FieldDistance(a, b mat.Matrix, lo, hi int) []float64 {
	return OffsetDistance(a, lo, b, lo, hi-lo)
}

// OffsetDistance returns the per-row Euclidean distance between the n
// columns of a starting at alo and the n columns of b starting at blo.
// It compares two fields with the same meaning stored at different offsets.
func OffsetDistance(a mat.Matrix, alo int, b mat.Matrix, blo, n int) []float64 {
	rows := checkShape(a, b, maxInt(alo, blo)+n)
	ds := make([]float64, rows)
	ra := make([]float64, n)
	rb := make([]float64, n)
	for i := 0; i < rows; i++ {
		for j := 0; j < n; j++ {
			ra[j] = a.At(i, alo+j)
			rb[j] = b.At(i, blo+j)
		}
		ds[i] = floats.Distance(ra, rb, 2)
	}
	return ds
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// AngleDistance returns 1 - (qa . qb)^2 per row for the quaternions stored in
// columns [lo, lo+4) of a and b.  It is 0 for identical orientations (either
// sign of the quaternion) and 1 for orientations 180 degrees apart.
func AngleDistance(a, b mat.Matrix, lo int) []float64 {
	n := checkShape(a, b, lo+4)
	ds := make([]float64, n)
	qa := make([]float64, 4)
	qb := make([]float64, 4)
	for i := 0; i < n; i++ {
		for j := 0; j < 4; j++ {
			qa[j] = a.At(i, lo+j)
			qb[j] = b.At(i, lo+j)
		}
		dot := floats.Dot(qa, qb)
		ds[i] = math.Max(0, 1-dot*dot)
	}
	return ds
}

// checkShape panics with mat.ErrShape unless a and b have identical shapes
// with at least hi columns, returning the number of rows.
func checkShape(a, b mat.Matrix, hi int) int {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb || hi > ca {
		panic(mat.ErrShape)
	}
	return ra
}
