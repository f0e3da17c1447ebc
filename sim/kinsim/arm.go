// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kinsim

import (
	"errors"
	"fmt"

	"github.com/goki/mat32"
)

// ErrJointControl is returned for joint-space control, which needs an
// articulated arm model that this package does not have.
var ErrJointControl = errors.New("kinsim: joint control requires an articulated robot model")

// Arm is a free-floating two finger gripper driven by end-effector
// displacements.  Action is [dx, dy, dz, dfinger], each in -1..1.
type Arm struct {
	Nm        string     `desc:"body name used for contact queries"`
	MaxStep   float32    `desc:"end-effector displacement for an action of 1"`
	FingerVel float32    `desc:"finger width change for an action of 1"`
	MaxWidth  float32    `desc:"fully open finger width"`
	FingerRad float32    `desc:"finger contact radius"`
	Neutral   mat32.Vec3 `desc:"end-effector position after Reset"`
	Low       mat32.Vec3 `desc:"workspace lower corner -- fingertips stay a finger radius above the table"`
	High      mat32.Vec3 `desc:"workspace upper corner"`
	EE        CurPrvVel  `inactive:"+" desc:"end-effector position and velocity"`
	Width     float32    `inactive:"+" desc:"current finger width"`
	Act       []float64  `inactive:"+" desc:"pending action"`
	World     *World     `view:"-" desc:"world the arm lives in"`
}

// NewArm adds an arm to the world.  Only end-effector control is available.
func NewArm(w *World, joints bool) (*Arm, error) {
	if joints {
		return nil, ErrJointControl
	}
	ar := &Arm{World: w}
	ar.Defaults()
	w.Arm = ar
	ar.Reset()
	return ar, nil
}

func (ar *Arm) Defaults() {
	ar.Nm = "panda"
	ar.MaxStep = 0.05
	ar.FingerVel = 0.04
	ar.MaxWidth = 0.08
	ar.FingerRad = 0.01
	ar.Neutral = mat32.Vec3{X: 0, Y: 0, Z: 0.2}
	ar.Low = mat32.Vec3{X: -0.4, Y: -0.4, Z: ar.FingerRad}
	ar.High = mat32.Vec3{X: 0.4, Y: 0.4, Z: 0.5}
}

func (ar *Arm) Name() string { return ar.Nm }

func (ar *Arm) ActionSize() int { return 4 }

func (ar *Arm) Reset() {
	ar.EE.Set(ar.Neutral)
	ar.Width = ar.MaxWidth
	ar.Act = nil
}

// SetAction records the action applied at the next World.Step.
// Components are clipped to -1..1.
func (ar *Arm) SetAction(act []float64) error {
	if len(act) != ar.ActionSize() {
		return fmt.Errorf("kinsim: action has %d components, want %d", len(act), ar.ActionSize())
	}
	ar.Act = make([]float64, len(act))
	for i, a := range act {
		ar.Act[i] = clip(a, -1, 1)
	}
	return nil
}

// Obs is end-effector position, velocity and finger width
func (ar *Arm) Obs() []float64 {
	p, v := ar.EE.Cur, ar.EE.Vel
	return []float64{
		float64(p.X), float64(p.Y), float64(p.Z),
		float64(v.X), float64(v.Y), float64(v.Z),
		float64(ar.Width),
	}
}

func (ar *Arm) EEPosition() mat32.Vec3 { return ar.EE.Cur }

// Fingers returns the left (+Y) and right (-Y) finger positions
func (ar *Arm) Fingers() (left, right mat32.Vec3) {
	off := mat32.Vec3{X: 0, Y: ar.Width / 2, Z: 0}
	return ar.EE.Cur.Add(off), ar.EE.Cur.Sub(off)
}

// Contacts returns the normals of the faces each finger touches on b.
func (ar *Arm) Contacts(b *Body) []mat32.Vec3 {
	if b.Ghost {
		return nil
	}
	var ns []mat32.Vec3
	l, r := ar.Fingers()
	for _, f := range []mat32.Vec3{l, r} {
		if n, ok := ar.faceNormal(f, b); ok {
			ns = append(ns, n)
		}
	}
	return ns
}

// Pinches is true when the fingers touch opposite Y faces of b
func (ar *Arm) Pinches(b *Body) bool {
	var pos, neg bool
	for _, n := range ar.Contacts(b) {
		pos = pos || n.Y > 0.99
		neg = neg || n.Y < -0.99
	}
	return pos && neg
}

// faceNormal returns the outward normal of the face of b nearest to f, if f
// is within the finger radius of b.
func (ar *Arm) faceNormal(f mat32.Vec3, b *Body) (mat32.Vec3, bool) {
	d := f.Sub(b.Pos.Cur)
	dv := [3]float32{d.X, d.Y, d.Z}
	hv := [3]float32{b.Half.X, b.Half.Y, b.Half.Z}
	best, bax := float32(-1e9), 0
	for i := 0; i < 3; i++ {
		out := mat32.Abs(dv[i]) - hv[i]
		if out > ar.FingerRad {
			return mat32.Vec3{}, false
		}
		if out > best {
			best, bax = out, i
		}
	}
	var n [3]float32
	if dv[bax] < 0 {
		n[bax] = -1
	} else {
		n[bax] = 1
	}
	return mat32.Vec3{X: n[0], Y: n[1], Z: n[2]}, true
}

// between is true when b lies in the gap between the fingers
func (ar *Arm) between(b *Body) bool {
	if !b.Dynamic() {
		return false
	}
	d := ar.EE.Cur.Sub(b.Pos.Cur)
	return mat32.Abs(d.X) <= b.Half.X+ar.FingerRad &&
		mat32.Abs(d.Z) <= b.Half.Z+ar.FingerRad &&
		mat32.Abs(d.Y) <= ar.Width/2
}

// move applies the pending action.  Closing fingers stop at the faces of a
// body between them and pull it onto the finger pads, centering it in x
// and y.
func (ar *Arm) move() {
	if ar.Act == nil {
		ar.EE.Update(ar.EE.Cur, ar.World.Dt)
		return
	}
	d := mat32.Vec3{X: float32(ar.Act[0]), Y: float32(ar.Act[1]), Z: float32(ar.Act[2])}.MulScalar(ar.MaxStep)
	p := ar.EE.Cur.Add(d)
	p.X = clampf(p.X, ar.Low.X, ar.High.X)
	p.Y = clampf(p.Y, ar.Low.Y, ar.High.Y)
	p.Z = clampf(p.Z, ar.Low.Z, ar.High.Z)

	w := clampf(ar.Width+float32(ar.Act[3])*ar.FingerVel, 0, ar.MaxWidth)
	if w < ar.Width {
		for _, nm := range ar.World.Order {
			b := ar.World.Bodies[nm]
			if !ar.between(b) {
				continue
			}
			if mw := 2 * b.Half.Y; w <= mw {
				w = mw
				b.Pos.Cur.X = ar.EE.Cur.X
				b.Pos.Cur.Y = ar.EE.Cur.Y
			}
		}
	}
	ar.Width = w
	ar.EE.Update(p, ar.World.Dt)
	ar.Act = nil
}

func clip(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

func clampf(v, lo, hi float32) float32 {
	return float32(clip(float64(v), float64(lo), float64(hi)))
}
