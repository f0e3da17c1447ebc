// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"math"

	"github.com/goki/mat32"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// Box is an axis-aligned sampling range, inclusive at both ends.
// Axes with Low == High always sample that value.
type Box struct {
	Low  mat32.Vec3 `desc:"lower corner"`
	High mat32.Vec3 `desc:"upper corner"`

	src  rand.Source
	dist *distmv.Uniform
}

// NewBox returns a box drawing from src, which is normally the environment's
// *rand.Rand so that reseeding it reproduces the samples.
func NewBox(low, high mat32.Vec3, src rand.Source) *Box {
	bx := &Box{Low: low, High: high, src: src}
	bx.dist = distmv.NewUniform([]r1.Interval{
		{Min: float64(low.X), Max: float64(high.X)},
		{Min: float64(low.Y), Max: float64(high.Y)},
		{Min: float64(low.Z), Max: float64(high.Z)},
	}, src)
	return bx
}

// CenteredBox is the usual task range: [-xy/2, -xy/2, 0] .. [xy/2, xy/2, z]
func CenteredBox(xy, z float32, src rand.Source) *Box {
	return NewBox(mat32.Vec3{X: -xy / 2, Y: -xy / 2, Z: 0}, mat32.Vec3{X: xy / 2, Y: xy / 2, Z: z}, src)
}

// Sample draws a uniform point from the box.
func (bx *Box) Sample() mat32.Vec3 {
	x := bx.dist.Rand(nil)
	return bx.clamp(mat32.Vec3{X: float32(x[0]), Y: float32(x[1]), Z: float32(x[2])})
}

// clamp guards against float32 rounding pushing a sample past High.
func (bx *Box) clamp(p mat32.Vec3) mat32.Vec3 {
	p.X = float32(math.Min(math.Max(float64(p.X), float64(bx.Low.X)), float64(bx.High.X)))
	p.Y = float32(math.Min(math.Max(float64(p.Y), float64(bx.Low.Y)), float64(bx.High.Y)))
	p.Z = float32(math.Min(math.Max(float64(p.Z), float64(bx.Low.Z)), float64(bx.High.Z)))
	return p
}

// Contains reports whether p lies inside the box, boundary included.
func (bx *Box) Contains(p mat32.Vec3) bool {
	return p.X >= bx.Low.X && p.X <= bx.High.X &&
		p.Y >= bx.Low.Y && p.Y <= bx.High.Y &&
		p.Z >= bx.Low.Z && p.Z <= bx.High.Z
}

// Center returns the midpoint of the box.
func (bx *Box) Center() mat32.Vec3 {
	return bx.Low.Add(bx.High).MulScalar(0.5)
}

// Scale returns a box with the same center and each side scaled by f,
// sharing the same random source.
func (bx *Box) Scale(f float32) *Box {
	c := bx.Center()
	half := bx.High.Sub(bx.Low).MulScalar(0.5 * f)
	return NewBox(c.Sub(half), c.Add(half), bx.src)
}

// RandomQuat returns a uniformly distributed unit quaternion (Shoemake 1992).
func RandomQuat(rnd *rand.Rand) mat32.Quat {
	u1 := rnd.Float64()
	u2 := 2 * math.Pi * rnd.Float64()
	u3 := 2 * math.Pi * rnd.Float64()
	a := math.Sqrt(1 - u1)
	b := math.Sqrt(u1)
	return mat32.Quat{
		X: float32(a * math.Sin(u2)),
		Y: float32(a * math.Cos(u2)),
		Z: float32(b * math.Sin(u3)),
		W: float32(b * math.Cos(u3)),
	}
}
