// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kinsim is a kinematic stand-in for a physics simulator.  Bodies
// are axis-aligned boxes for contact purposes, a body pinched between the
// arm's fingers moves with the end effector, and every other dynamic body
// rests on the table top.  There is no dynamics beyond that.
package kinsim

import (
	"fmt"
	"log"
	"strings"

	"github.com/ccnlab/manipgym/sim"
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"
)

// Shapes are the body shapes
type Shapes int

//go:generate stringer -type=Shapes

var KiT_Shapes = kit.Enums.AddEnum(ShapesN, false, nil)

const (
	PlaneShape Shapes = iota
	BoxShape
	SphereShape
	CylinderShape

	ShapesN
)

// Body is one simulated body
type Body struct {
	Name  string     `desc:"unique body name"`
	Shape Shapes     `desc:"shape of the body"`
	Half  mat32.Vec3 `desc:"half extents of the bounding box, used for contacts and resting height"`
	Mass  float32    `desc:"mass -- zero mass bodies are static"`
	Color sim.RGBA   `desc:"display color"`
	Ghost bool       `desc:"visual only, never collides"`
	Pos   CurPrvVel  `desc:"position and linear velocity"`
	Rot   mat32.Quat `desc:"orientation"`
	Held  bool       `inactive:"+" desc:"currently pinched by the arm"`
}

// Dynamic bodies are moved by the world
func (b *Body) Dynamic() bool {
	return !b.Ghost && b.Mass > 0
}

// Camera records the visualizer placement
type Camera struct {
	Target   mat32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
}

// World implements sim.Sim
type World struct {
	Dt        float32          `desc:"control period in seconds, used for velocities"`
	TableTop  float32          `desc:"height of the table surface"`
	Rendering bool             `desc:"whether rendering is on"`
	RenderLog []bool           `view:"-" desc:"every SetRendering call in order"`
	Camera    Camera           `desc:"visualizer placement"`
	Bodies    map[string]*Body `view:"-" desc:"bodies by name"`
	Order     []string         `view:"-" desc:"body names in creation order"`
	Arm       *Arm             `view:"-" desc:"the robot, if any"`
	Steps     int              `inactive:"+" desc:"number of Step calls"`
	Closed    bool             `inactive:"+" desc:"Close has been called"`
}

// NewWorld returns an empty world with default settings
func NewWorld() *World {
	w := &World{}
	w.Defaults()
	return w
}

func (w *World) Defaults() {
	w.Dt = 0.04
	w.TableTop = 0
	w.Rendering = true
	w.Bodies = make(map[string]*Body)
}

// AddBody adds or replaces a body
func (w *World) AddBody(b *Body) {
	if _, has := w.Bodies[b.Name]; !has {
		w.Order = append(w.Order, b.Name)
	}
	if b.Rot == (mat32.Quat{}) {
		b.Rot = sim.IdentityQuat
	}
	w.Bodies[b.Name] = b
}

// Body returns the named body, logging and returning nil if missing
func (w *World) Body(name string) *Body {
	b, has := w.Bodies[name]
	if !has {
		log.Printf("kinsim: unknown body %q\n", name)
		return nil
	}
	return b
}

func (w *World) CreatePlane(zOffset float32) {
	b := &Body{Name: "plane", Shape: PlaneShape, Half: mat32.Vec3{X: 1.5, Y: 1.5, Z: 0.005}}
	b.Pos.Set(mat32.Vec3{X: 0, Y: 0, Z: zOffset - 0.005})
	w.AddBody(b)
}

func (w *World) CreateTable(length, width, height, xOffset float32) {
	b := &Body{Name: "table", Shape: BoxShape, Half: mat32.Vec3{X: length / 2, Y: width / 2, Z: height / 2}}
	b.Pos.Set(mat32.Vec3{X: xOffset, Y: 0, Z: w.TableTop - height/2})
	w.AddBody(b)
}

func (w *World) CreateBox(name string, halfExtents mat32.Vec3, mass float32, pos mat32.Vec3, color sim.RGBA, ghost bool) {
	b := &Body{Name: name, Shape: BoxShape, Half: halfExtents, Mass: mass, Color: color, Ghost: ghost}
	b.Pos.Set(pos)
	w.AddBody(b)
}

func (w *World) CreateSphere(name string, radius, mass float32, pos mat32.Vec3, color sim.RGBA, ghost bool) {
	b := &Body{Name: name, Shape: SphereShape, Half: mat32.Vec3{X: radius, Y: radius, Z: radius}, Mass: mass, Color: color, Ghost: ghost}
	b.Pos.Set(pos)
	w.AddBody(b)
}

func (w *World) CreateCylinder(name string, radius, height, mass float32, pos mat32.Vec3, color sim.RGBA, ghost bool) {
	b := &Body{Name: name, Shape: CylinderShape, Half: mat32.Vec3{X: radius, Y: radius, Z: height / 2}, Mass: mass, Color: color, Ghost: ghost}
	b.Pos.Set(pos)
	w.AddBody(b)
}

func (w *World) BasePosition(body string) mat32.Vec3 {
	if b := w.Body(body); b != nil {
		return b.Pos.Cur
	}
	return mat32.Vec3{}
}

func (w *World) BaseRotation(body string) mat32.Quat {
	if b := w.Body(body); b != nil {
		return b.Rot
	}
	return sim.IdentityQuat
}

func (w *World) BaseVelocity(body string) mat32.Vec3 {
	if b := w.Body(body); b != nil {
		return b.Pos.Vel
	}
	return mat32.Vec3{}
}

// BaseAngularVelocity is always zero: bodies only rotate when teleported.
func (w *World) BaseAngularVelocity(body string) mat32.Vec3 {
	w.Body(body)
	return mat32.Vec3{}
}

func (w *World) SetBasePose(body string, pos mat32.Vec3, orient mat32.Quat) {
	if b := w.Body(body); b != nil {
		b.Pos.Set(pos)
		b.Rot = orient
		b.Held = false
	}
}

// ContactNormals returns the finger contact normals when one of the bodies
// is the arm, with normals pointing from the other body toward the arm.
func (w *World) ContactNormals(bodyA, bodyB string) []mat32.Vec3 {
	if w.Arm == nil {
		return nil
	}
	switch w.Arm.Nm {
	case bodyA:
		if b := w.Body(bodyB); b != nil {
			return w.Arm.Contacts(b)
		}
	case bodyB:
		if b := w.Body(bodyA); b != nil {
			ns := w.Arm.Contacts(b)
			for i := range ns {
				ns[i] = ns[i].MulScalar(-1)
			}
			return ns
		}
	}
	return nil
}

func (w *World) SetRendering(on bool) {
	w.Rendering = on
	w.RenderLog = append(w.RenderLog, on)
}

func (w *World) PlaceVisualizer(target mat32.Vec3, distance, yaw, pitch float32) {
	w.Camera = Camera{Target: target, Distance: distance, Yaw: yaw, Pitch: pitch}
}

// Step moves the arm, carries whatever it was pinching before the move,
// and settles the remaining dynamic bodies on the table.
func (w *World) Step() {
	w.Steps++
	var held map[*Body]bool
	if w.Arm != nil {
		held = make(map[*Body]bool)
		for _, nm := range w.Order {
			b := w.Bodies[nm]
			if b.Dynamic() && w.Arm.Pinches(b) {
				held[b] = true
			}
		}
		w.Arm.move()
	}
	for _, nm := range w.Order {
		b := w.Bodies[nm]
		if !b.Dynamic() {
			b.Pos.Update(b.Pos.Cur, w.Dt)
			continue
		}
		p := b.Pos.Cur
		b.Held = held[b]
		if b.Held {
			p = p.Add(w.Arm.EE.Delta())
		} else if rest := w.TableTop + b.Half.Z; p.Z > rest {
			p.Z = rest
		}
		b.Pos.Update(p, w.Dt)
	}
}

func (w *World) Close() error {
	w.Closed = true
	return nil
}

// String summarizes body positions, one per line
func (w *World) String() string {
	var sb strings.Builder
	if w.Arm != nil {
		fmt.Fprintf(&sb, "%s\tee: %v\twidth: %.3f\n", w.Arm.Nm, w.Arm.EE.Cur, w.Arm.Width)
	}
	for _, nm := range w.Order {
		b := w.Bodies[nm]
		if b.Shape == PlaneShape || nm == "table" {
			continue
		}
		fmt.Fprintf(&sb, "%s\tpos: %v\trot: %v\theld: %v\n", nm, b.Pos.Cur, b.Rot, b.Held)
	}
	return sb.String()
}
