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

// StackTask puts two cubes on a target, object2 on top of object1.
// The contact flags refer to object1, the cube placed first.
//
// Goal layout, length 11:
//
//	achieved: [grasped, touching, end effector(3), object1(3), object2(3)]
//	desired:  [1, 1, object1 start(3), target1(3), target2(3)]
type StackTask struct {
	Params
	GoalRange   *geom.Box `desc:"target1 offset range"`
	ObjRange    *geom.Box `desc:"object start offset range"`
	MinObjDist  float32   `desc:"minimum distance between the two object starts"`
	MaxResample int       `desc:"maximum draws for a non-overlapping second object"`

	goal   []float64
	reward RewardFunc
}

func NewStack(p Params) (*StackTask, error) {
	if err := p.validate(Stack); err != nil {
		return nil, err
	}
	st := &StackTask{Params: p, MinObjDist: 0.1, MaxResample: 100}
	rg := p.Ranges
	st.GoalRange = geom.CenteredBox(rg.GoalXYRange, 0, p.Rand)
	st.ObjRange = geom.CenteredBox(rg.ObjXYRange, 0, p.Rand)
	st.reward = bindReward(p.Reward, st.sparseReward, st.denseReward)
	sz := rg.ObjectSize
	err := buildScene(p.Sim, func() {
		p.Sim.CreateBox("object1", cube(sz), 2, mat32.Vec3{X: 0, Y: 0, Z: sz / 2}, sim.Blue, false)
		p.Sim.CreateBox("target1", cube(sz), 0, mat32.Vec3{X: 0, Y: 0, Z: sz / 2}, sim.BlueGhost, true)
		p.Sim.CreateBox("object2", cube(sz), 1, mat32.Vec3{X: 0.5, Y: 0, Z: sz / 2}, sim.Green, false)
		p.Sim.CreateBox("target2", cube(sz), 0, mat32.Vec3{X: 0.5, Y: 0, Z: 1.5 * sz}, sim.GreenGhost, true)
	})
	return st, err
}

func (st *StackTask) Name() string { return Stack.String() }

func (st *StackTask) Reset() {
	sz := st.Ranges.ObjectSize
	base := mat32.Vec3{X: 0, Y: 0, Z: sz / 2}
	t1 := base.Add(st.GoalRange.Sample())
	t2 := t1.Add(mat32.Vec3{X: 0, Y: 0, Z: sz})
	o1 := base.Add(st.ObjRange.Sample())
	o2 := base.Add(st.ObjRange.Sample())
	for i := 0; i < st.MaxResample && o1.DistTo(o2) < st.MinObjDist; i++ {
		o2 = base.Add(st.ObjRange.Sample())
	}
	st.Sim.SetBasePose("target1", t1, sim.IdentityQuat)
	st.Sim.SetBasePose("target2", t2, sim.IdentityQuat)
	st.Sim.SetBasePose("object1", o1, sim.IdentityQuat)
	st.Sim.SetBasePose("object2", o2, sim.IdentityQuat)
	st.goal = concat([]float64{1, 1}, vec(o1), vec(t1), vec(t2))
}

func (st *StackTask) Obs() []float64 {
	return concat(objectObs(st.Sim, "object1"), objectObs(st.Sim, "object2"))
}

func (st *StackTask) AchievedGoal() []float64 {
	g, t := contactFlags(st.Sim, st.RobotBody, "object1")
	return concat([]float64{g, t}, vec(st.EEPosition()),
		vec(st.Sim.BasePosition("object1")), vec(st.Sim.BasePosition("object2")))
}

func (st *StackTask) Goal() []float64 { return copyOf(st.goal) }

// IsSuccess requires both objects, taken together, within the threshold.
func (st *StackTask) IsSuccess(achieved, desired mat.Matrix) []bool {
	return within(st.Ranges.DistanceThreshold, geom.FieldDistance(achieved, desired, 5, 11))
}

func (st *StackTask) ComputeReward(achieved, desired mat.Matrix, info Info) []float64 {
	return st.reward(achieved, desired, info)
}

func (st *StackTask) sparseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	return sparse(st.Ranges.DistanceThreshold, geom.FieldDistance(achieved, desired, 5, 11))
}

func (st *StackTask) denseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	thr := st.Ranges.DistanceThreshold
	dist := penalty(thr, geom.FieldDistance(achieved, desired, 2, 5))
	contact := flagDiff(achieved, desired, 1)
	grasp := flagDiff(achieved, desired, 0)
	zeroWhere(dist, grasp)
	return weighted(
		term{0.125, dist},
		term{0.125, contact},
		term{0.25, grasp},
		term{0.5, penalty(thr, geom.FieldDistance(achieved, desired, 5, 11))},
	)
}
