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

// SlideTask strikes a puck so that it slides to a target beyond the
// gripper's reach.  Goal layout is that of PickAndPlaceTask with desired
// flags [0, 0].
type SlideTask struct {
	Params
	GoalRange *geom.Box `desc:"target offset range, already shifted by the goal x offset"`
	ObjRange  *geom.Box `desc:"puck start offset range"`

	goal   []float64
	reward RewardFunc
}

func NewSlide(p Params) (*SlideTask, error) {
	if err := p.validate(Slide); err != nil {
		return nil, err
	}
	st := &SlideTask{Params: p}
	rg := p.Ranges
	off := mat32.Vec3{X: rg.GoalXOffset, Y: 0, Z: 0}
	gr := geom.CenteredBox(rg.GoalXYRange, 0, p.Rand)
	st.GoalRange = geom.NewBox(gr.Low.Add(off), gr.High.Add(off), p.Rand)
	st.ObjRange = geom.CenteredBox(rg.ObjXYRange, 0, p.Rand)
	st.reward = bindReward(p.Reward, st.sparseReward, st.denseReward)
	r, h := rg.ObjectSize/2, rg.ObjectSize/2
	err := buildScene(p.Sim, func() {
		p.Sim.CreateCylinder("object", r, h, 1, mat32.Vec3{X: 0, Y: 0, Z: h / 2}, sim.Green, false)
		p.Sim.CreateCylinder("target", r, h, 0, mat32.Vec3{X: 0, Y: 0, Z: h / 2}, sim.GreenGhost, true)
	})
	return st, err
}

func (st *SlideTask) Name() string { return Slide.String() }

func (st *SlideTask) Reset() {
	base := mat32.Vec3{X: 0, Y: 0, Z: st.Ranges.ObjectSize / 4}
	target := base.Add(st.GoalRange.Sample())
	obj := base.Add(st.ObjRange.Sample())
	st.Sim.SetBasePose("target", target, sim.IdentityQuat)
	st.Sim.SetBasePose("object", obj, sim.IdentityQuat)
	st.goal = concat([]float64{0, 0}, vec(obj), vec(target))
}

func (st *SlideTask) Obs() []float64 { return objectObs(st.Sim, "object") }

func (st *SlideTask) AchievedGoal() []float64 {
	g, t := contactFlags(st.Sim, st.RobotBody, "object")
	return concat([]float64{g, t}, vec(st.EEPosition()), vec(st.Sim.BasePosition("object")))
}

func (st *SlideTask) Goal() []float64 { return copyOf(st.goal) }

func (st *SlideTask) IsSuccess(achieved, desired mat.Matrix) []bool {
	return within(st.Ranges.DistanceThreshold, geom.FieldDistance(achieved, desired, 5, 8))
}

func (st *SlideTask) ComputeReward(achieved, desired mat.Matrix, info Info) []float64 {
	return st.reward(achieved, desired, info)
}

func (st *SlideTask) sparseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	return sparse(st.Ranges.DistanceThreshold, geom.FieldDistance(achieved, desired, 5, 8))
}

// denseReward drops the reaching term once the puck has left its start.
func (st *SlideTask) denseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	thr := st.Ranges.DistanceThreshold
	dist := penalty(thr, geom.FieldDistance(achieved, desired, 2, 5))
	moved := geom.OffsetDistance(achieved, 5, desired, 2, 3)
	for i, m := range moved {
		if m > thr {
			dist[i] = 0
		}
	}
	return weighted(
		term{0.25, dist},
		term{0.75, penalty(thr, geom.FieldDistance(achieved, desired, 5, 8))},
	)
}
