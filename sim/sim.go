// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim defines the simulator and robot interfaces that the
// manipulation tasks are written against.  Physics, rendering and robot
// control live behind these interfaces; see sim/kinsim for a kinematic
// implementation.
package sim

import (
	"github.com/goki/mat32"
)

// RGBA is a body color with components in 0..1
type RGBA struct {
	R, G, B, A float32
}

// Standard body colors
var (
	Green      = RGBA{0.1, 0.9, 0.1, 1}
	GreenGhost = RGBA{0.1, 0.9, 0.1, 0.3}
	Blue       = RGBA{0.1, 0.1, 0.9, 1}
	BlueGhost  = RGBA{0.1, 0.1, 0.9, 0.3}
)

// Renderer can switch rendering on and off.
type Renderer interface {
	SetRendering(on bool)
}

// Sim is the physics simulator as seen by a task.  Bodies are referred to
// by name.  Quaternions are (X, Y, Z, W).
type Sim interface {
	Renderer

	// CreatePlane adds a ground plane at the given height.
	CreatePlane(zOffset float32)

	// CreateTable adds a static table whose top is at z = 0.
	CreateTable(length, width, height, xOffset float32)

	// CreateBox adds a box with the given half extents.  Ghost bodies are
	// visual only and never collide.
	CreateBox(name string, halfExtents mat32.Vec3, mass float32, pos mat32.Vec3, color RGBA, ghost bool)

	CreateSphere(name string, radius, mass float32, pos mat32.Vec3, color RGBA, ghost bool)

	CreateCylinder(name string, radius, height, mass float32, pos mat32.Vec3, color RGBA, ghost bool)

	BasePosition(body string) mat32.Vec3
	BaseRotation(body string) mat32.Quat
	BaseVelocity(body string) mat32.Vec3
	BaseAngularVelocity(body string) mat32.Vec3

	// SetBasePose teleports a body, zeroing its velocity.
	SetBasePose(body string, pos mat32.Vec3, orient mat32.Quat)

	// ContactNormals returns the contact normals between two bodies,
	// nil when they are not in contact.
	ContactNormals(bodyA, bodyB string) []mat32.Vec3

	PlaceVisualizer(target mat32.Vec3, distance, yaw, pitch float32)

	// Step advances the simulation by one control period.
	Step()

	Close() error
}

// Robot is an opaque actuator: it takes an action vector and exposes its
// own observation and end-effector position.
type Robot interface {
	// Name is the body name used for contact queries.
	Name() string
	Reset()
	SetAction(act []float64) error
	Obs() []float64
	EEPosition() mat32.Vec3
	ActionSize() int
}

// NoRendering runs fn with rendering disabled, re-enabling it on every exit
// path, including a panic in fn.
func NoRendering(r Renderer, fn func() error) error {
	r.SetRendering(false)
	defer r.SetRendering(true)
	return fn()
}

// IdentityQuat is the no-rotation orientation.
var IdentityQuat = mat32.Quat{X: 0, Y: 0, Z: 0, W: 1}
