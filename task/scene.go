// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"github.com/ccnlab/manipgym/sim"
	"github.com/goki/mat32"
)

// SceneParams are the shared scene dimensions
type SceneParams struct {
	PlaneZ       float32    `desc:"height of the ground plane"`
	TableLength  float32    `desc:"table length along x"`
	TableWidth   float32    `desc:"table width along y"`
	TableHeight  float32    `desc:"table height"`
	TableXOffset float32    `desc:"table center offset along x"`
	CamTarget    mat32.Vec3 `desc:"visualizer target"`
	CamDistance  float32    `desc:"visualizer distance"`
	CamYaw       float32    `desc:"visualizer yaw in degrees"`
	CamPitch     float32    `desc:"visualizer pitch in degrees"`
}

func (sp *SceneParams) Defaults() {
	sp.PlaneZ = -0.4
	sp.TableLength = 1.1
	sp.TableWidth = 0.7
	sp.TableHeight = 0.4
	sp.TableXOffset = -0.3
	sp.CamDistance = 0.9
	sp.CamYaw = 45
	sp.CamPitch = -30
}

// buildScene creates the plane and table plus whatever fn adds, with
// rendering off, then places the visualizer.
func buildScene(s sim.Sim, fn func()) error {
	var sp SceneParams
	sp.Defaults()
	err := sim.NoRendering(s, func() error {
		s.CreatePlane(sp.PlaneZ)
		s.CreateTable(sp.TableLength, sp.TableWidth, sp.TableHeight, sp.TableXOffset)
		fn()
		return nil
	})
	if err != nil {
		return err
	}
	s.PlaceVisualizer(sp.CamTarget, sp.CamDistance, sp.CamYaw, sp.CamPitch)
	return nil
}

// cube returns the half extents of a cube with edge size
func cube(size float32) mat32.Vec3 {
	return mat32.Vec3{X: size / 2, Y: size / 2, Z: size / 2}
}

// objectObs is position, rotation, velocity and angular velocity of body
func objectObs(s sim.Sim, body string) []float64 {
	obs := make([]float64, 0, 13)
	obs = append(obs, vec(s.BasePosition(body))...)
	obs = append(obs, quat(s.BaseRotation(body))...)
	obs = append(obs, vec(s.BaseVelocity(body))...)
	obs = append(obs, vec(s.BaseAngularVelocity(body))...)
	return obs
}

// contactFlags returns the grasped and touching flags as 0 or 1
func contactFlags(s sim.Sim, robot, body string) (grasped, touching float64) {
	ns := s.ContactNormals(robot, body)
	return boolFlag(Grasped(ns)), boolFlag(Touching(ns))
}

func boolFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func vec(v mat32.Vec3) []float64 {
	return []float64{float64(v.X), float64(v.Y), float64(v.Z)}
}

func quat(q mat32.Quat) []float64 {
	return []float64{float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)}
}

// concat appends all the parts into a new slice
func concat(parts ...[]float64) []float64 {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]float64, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func copyOf(v []float64) []float64 {
	return append([]float64(nil), v...)
}
