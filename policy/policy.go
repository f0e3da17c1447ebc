// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package policy has simple scripted policies for driving the
// manipulation environments, used for rollouts and data collection.
package policy

import (
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"
	"golang.org/x/exp/rand"
)

// Scene is what a scripted policy sees of the world
type Scene struct {
	EE     mat32.Vec3 `desc:"end-effector position"`
	Object mat32.Vec3 `desc:"object position"`
	Target mat32.Vec3 `desc:"target position"`
}

// Policy is a scripted pick-and-place policy for end-effector control:
// approach above the object, descend, close the gripper, carry the object
// to the target.  With ReachOnly it just moves to the target.
type Policy struct {
	Gain       float32   `desc:"proportional gain from position error (in units of a full step) to action"`
	StepSize   float32   `desc:"end-effector displacement of a full action"`
	Hover      float32   `desc:"height above the object to approach from"`
	Tolerance  float32   `desc:"per-axis position error at which a phase is complete"`
	GripSteps  int       `desc:"steps spent closing the gripper"`
	PExplore   float64   `desc:"probability of a random action instead of the scripted one"`
	ReachOnly  bool      `desc:"only move the end effector to the target"`
	CurState   ActState  `inactive:"+" desc:"current action state"`
	PrvState   ActState  `inactive:"+" desc:"prev action state"`
	StateSteps int       `inactive:"+" desc:"steps spent in the current state"`
	PrvAct     []float64 `inactive:"+" desc:"previous action"`
}

func (pl *Policy) Defaults() {
	pl.Gain = 1
	pl.StepSize = 0.05
	pl.Hover = 0.05
	pl.Tolerance = 0.005
	pl.GripSteps = 2
	pl.PExplore = 0
}

// Init starts a new episode
func (pl *Policy) Init() {
	pl.CurState = NoActState
	pl.PrvState = NoActState
	pl.StateSteps = 0
	pl.PrvAct = nil
}

// Act is main interface call that selects the action and updates state.
// Actions are [dx, dy, dz, dfinger] in -1..1.  Exploration draws from rnd,
// so a seeded rnd gives reproducible actions.
func (pl *Policy) Act(sc Scene, rnd *rand.Rand) []float64 {
	var act []float64
	if pl.PExplore > 0 && rnd.Float64() < pl.PExplore {
		act = RandomAction(4, rnd)
	} else {
		act = pl.ActChoose(sc)
	}
	pl.StateSteps++
	pl.PrvAct = act
	return act
}

// ActChoose makes actual choice based on current state -- called by Act
func (pl *Policy) ActChoose(sc Scene) []float64 {
	above := sc.Object.Add(mat32.Vec3{X: 0, Y: 0, Z: pl.Hover})
	switch {
	case pl.ReachOnly:
		pl.NewState(Carry)
		return pl.moveTo(sc.EE, sc.Target, 0)
	case pl.CurState == NoActState:
		pl.NewState(Approach)
		return pl.moveTo(sc.EE, above, 1)
	case pl.CurState == Approach:
		if pl.reached(sc.EE, above) {
			pl.NewState(Descend)
			return pl.moveTo(sc.EE, sc.Object, 1)
		}
		return pl.moveTo(sc.EE, above, 1)
	case pl.CurState == Descend:
		if pl.reached(sc.EE, sc.Object) {
			pl.NewState(Grip)
			return []float64{0, 0, 0, -1}
		}
		return pl.moveTo(sc.EE, sc.Object, 1)
	case pl.CurState == Grip:
		if pl.StateSteps >= pl.GripSteps {
			pl.NewState(Carry)
			return pl.moveTo(sc.Object, sc.Target, -1)
		}
		return []float64{0, 0, 0, -1}
	}
	// the held object moves with the end effector
	return pl.moveTo(sc.Object, sc.Target, -1)
}

// reached is true when every axis of to-at is within Tolerance
func (pl *Policy) reached(at, to mat32.Vec3) bool {
	d := to.Sub(at)
	return mat32.Abs(d.X) < pl.Tolerance && mat32.Abs(d.Y) < pl.Tolerance && mat32.Abs(d.Z) < pl.Tolerance
}

// moveTo is a proportional step moving from toward to, with the given finger command
func (pl *Policy) moveTo(from, to mat32.Vec3, finger float64) []float64 {
	d := to.Sub(from).MulScalar(pl.Gain / pl.StepSize)
	return []float64{clip(d.X), clip(d.Y), clip(d.Z), finger}
}

func (pl *Policy) NewState(st ActState) {
	if st == pl.CurState {
		return
	}
	pl.PrvState = pl.CurState
	pl.CurState = st
	pl.StateSteps = 0
}

// RandomAction draws a uniform action in -1..1
func RandomAction(size int, rnd *rand.Rand) []float64 {
	act := make([]float64, size)
	for i := range act {
		act[i] = 2*rnd.Float64() - 1
	}
	return act
}

func clip(v float32) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return float64(v)
}

// ActState is action state
type ActState int

//go:generate stringer -type=ActState

var KiT_ActState = kit.Enums.AddEnum(ActStateN, false, nil)

// The action states
const (
	NoActState ActState = iota

	// Approach moves above the object with the gripper open
	Approach

	// Descend lowers the open gripper around the object
	Descend

	// Grip closes the gripper
	Grip

	// Carry moves to the target with the gripper closed
	Carry

	ActStateN
)
