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

// PushTask pushes a cube to a target on the table without grasping it.
// Goal layout is that of PickAndPlaceTask with desired flags [0, 1].
type PushTask struct {
	Params
	GoalRange *geom.Box `desc:"target offset range"`
	ObjRange  *geom.Box `desc:"object start offset range"`

	goal   []float64
	reward RewardFunc
}

func NewPush(p Params) (*PushTask, error) {
	if err := p.validate(Push); err != nil {
		return nil, err
	}
	pt := &PushTask{Params: p}
	rg := p.Ranges
	pt.GoalRange = geom.CenteredBox(rg.GoalXYRange, 0, p.Rand)
	pt.ObjRange = geom.CenteredBox(rg.ObjXYRange, 0, p.Rand)
	pt.reward = bindReward(p.Reward, pt.sparseReward, pt.denseReward)
	sz := rg.ObjectSize
	err := buildScene(p.Sim, func() {
		p.Sim.CreateBox("object", cube(sz), 1, mat32.Vec3{X: 0, Y: 0, Z: sz / 2}, sim.Green, false)
		p.Sim.CreateBox("target", cube(sz), 0, mat32.Vec3{X: 0, Y: 0, Z: sz / 2}, sim.GreenGhost, true)
	})
	return pt, err
}

func (pt *PushTask) Name() string { return Push.String() }

func (pt *PushTask) Reset() {
	base := mat32.Vec3{X: 0, Y: 0, Z: pt.Ranges.ObjectSize / 2}
	target := base.Add(pt.GoalRange.Sample())
	obj := base.Add(pt.ObjRange.Sample())
	pt.Sim.SetBasePose("target", target, sim.IdentityQuat)
	pt.Sim.SetBasePose("object", obj, sim.IdentityQuat)
	pt.goal = concat([]float64{0, 1}, vec(obj), vec(target))
}

func (pt *PushTask) Obs() []float64 { return objectObs(pt.Sim, "object") }

func (pt *PushTask) AchievedGoal() []float64 {
	g, t := contactFlags(pt.Sim, pt.RobotBody, "object")
	return concat([]float64{g, t}, vec(pt.EEPosition()), vec(pt.Sim.BasePosition("object")))
}

func (pt *PushTask) Goal() []float64 { return copyOf(pt.goal) }

func (pt *PushTask) IsSuccess(achieved, desired mat.Matrix) []bool {
	return within(pt.Ranges.DistanceThreshold, geom.FieldDistance(achieved, desired, 5, 8))
}

func (pt *PushTask) ComputeReward(achieved, desired mat.Matrix, info Info) []float64 {
	return pt.reward(achieved, desired, info)
}

func (pt *PushTask) sparseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	return sparse(pt.Ranges.DistanceThreshold, geom.FieldDistance(achieved, desired, 5, 8))
}

// denseReward drops the reaching term while the gripper touches the object.
func (pt *PushTask) denseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	thr := pt.Ranges.DistanceThreshold
	dist := penalty(thr, geom.FieldDistance(achieved, desired, 2, 5))
	contact := flagDiff(achieved, desired, 1)
	zeroWhere(dist, contact)
	return weighted(
		term{0.25, dist},
		term{0.25, contact},
		term{0.5, penalty(thr, geom.FieldDistance(achieved, desired, 5, 8))},
	)
}
