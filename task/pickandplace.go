// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"github.com/ccnlab/manipgym/geom"
	"github.com/ccnlab/manipgym/sim"
	"github.com/goki/mat32"
	"gonum.org/v1/gonum/mat"
)

// PickAndPlaceTask moves a cube to a target that is on the table or in
// the air.
//
// Goal layout, length 8:
//
//	achieved: [grasped, touching, end effector(3), object(3)]
//	desired:  [1, 1, object start(3), target(3)]
type PickAndPlaceTask struct {
	Params
	GoalRange   *geom.Box `desc:"target offset range"`
	ObjRange    *geom.Box `desc:"object start offset range"`
	PZeroHeight float64   `desc:"probability that the target is put on the table"`

	goal   []float64
	reward RewardFunc
}

func NewPickAndPlace(p Params) (*PickAndPlaceTask, error) {
	if err := p.validate(PickAndPlace); err != nil {
		return nil, err
	}
	pt := &PickAndPlaceTask{Params: p, PZeroHeight: 0.3}
	rg := p.Ranges
	pt.GoalRange = geom.CenteredBox(rg.GoalXYRange, rg.GoalZRange, p.Rand)
	pt.ObjRange = geom.CenteredBox(rg.ObjXYRange, 0, p.Rand)
	pt.reward = bindReward(p.Reward, pt.sparseReward, pt.denseReward)
	sz := rg.ObjectSize
	err := buildScene(p.Sim, func() {
		p.Sim.CreateBox("object", cube(sz), 1, mat32.Vec3{X: 0, Y: 0, Z: sz / 2}, sim.Green, false)
		p.Sim.CreateBox("target", cube(sz), 0, mat32.Vec3{X: 0, Y: 0, Z: 0.05}, sim.GreenGhost, true)
	})
	return pt, err
}

func (pt *PickAndPlaceTask) Name() string { return PickAndPlace.String() }

// base is the resting position of the object at the origin
func (pt *PickAndPlaceTask) base() mat32.Vec3 {
	return mat32.Vec3{X: 0, Y: 0, Z: pt.Ranges.ObjectSize / 2}
}

func (pt *PickAndPlaceTask) sampleTarget() mat32.Vec3 {
	noise := pt.GoalRange.Sample()
	if pt.Rand.Float64() < pt.PZeroHeight {
		noise.Z = 0
	}
	return pt.base().Add(noise)
}

func (pt *PickAndPlaceTask) Reset() {
	target := pt.sampleTarget()
	obj := pt.base().Add(pt.ObjRange.Sample())
	pt.Sim.SetBasePose("target", target, sim.IdentityQuat)
	pt.Sim.SetBasePose("object", obj, sim.IdentityQuat)
	pt.goal = concat([]float64{1, 1}, vec(obj), vec(target))
}

func (pt *PickAndPlaceTask) Obs() []float64 { return objectObs(pt.Sim, "object") }

func (pt *PickAndPlaceTask) AchievedGoal() []float64 {
	g, t := contactFlags(pt.Sim, pt.RobotBody, "object")
	return concat([]float64{g, t}, vec(pt.EEPosition()), vec(pt.Sim.BasePosition("object")))
}

func (pt *PickAndPlaceTask) Goal() []float64 { return copyOf(pt.goal) }

func (pt *PickAndPlaceTask) IsSuccess(achieved, desired mat.Matrix) []bool {
	return within(pt.Ranges.DistanceThreshold, geom.FieldDistance(achieved, desired, 5, 8))
}

func (pt *PickAndPlaceTask) ComputeReward(achieved, desired mat.Matrix, info Info) []float64 {
	return pt.reward(achieved, desired, info)
}

func (pt *PickAndPlaceTask) sparseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	return sparse(pt.Ranges.DistanceThreshold, geom.FieldDistance(achieved, desired, 5, 8))
}

// denseReward shapes reaching, touching and grasping the object and moving
// it to the target.  The reaching term is dropped once the object is
// grasped.
func (pt *PickAndPlaceTask) denseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	thr := pt.Ranges.DistanceThreshold
	dist := penalty(thr, geom.FieldDistance(achieved, desired, 2, 5))
	contact := flagDiff(achieved, desired, 1)
	grasp := flagDiff(achieved, desired, 0)
	zeroWhere(dist, grasp)
	return weighted(
		term{1.0 / 6, dist},
		term{2.0 / 6, contact},
		term{2.0 / 6, grasp},
		term{1.0 / 6, penalty(thr, geom.FieldDistance(achieved, desired, 5, 8))},
	)
}
