// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kinsim

import "github.com/goki/mat32"

// CurPrvVel is basic state management for current, previous and velocity
// of a position
type CurPrvVel struct {
	Cur mat32.Vec3 `desc:"current value"`
	Prv mat32.Vec3 `desc:"previous value"`
	Vel mat32.Vec3 `desc:"velocity as (Cur - Prv) / dt"`
}

// Update updates the new current value, copying Cur to Prv and computing Vel
func (cv *CurPrvVel) Update(cur mat32.Vec3, dt float32) {
	cv.Prv = cv.Cur
	cv.Cur = cur
	cv.Vel = cv.Cur.Sub(cv.Prv).MulScalar(1 / dt)
}

// Set jumps to cur with zero velocity
func (cv *CurPrvVel) Set(cur mat32.Vec3) {
	cv.Cur = cur
	cv.Prv = cur
	cv.Vel = mat32.Vec3{}
}

// Delta is the change made by the last Update
func (cv *CurPrvVel) Delta() mat32.Vec3 {
	return cv.Cur.Sub(cv.Prv)
}
