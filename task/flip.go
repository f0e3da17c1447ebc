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

// FlipTask rotates a cube to a target orientation.  The distance
// threshold applies to the quaternion angle distance 1 - (qa . qb)^2.
//
// Goal layout, length 9:
//
//	achieved: [grasped, touching, end effector(3), object rotation(4)]
//	desired:  [1, 1, object start(3), target rotation(4)]
type FlipTask struct {
	Params
	ObjRange *geom.Box `desc:"object start offset range"`

	goal   []float64
	reward RewardFunc
}

func NewFlip(p Params) (*FlipTask, error) {
	if err := p.validate(Flip); err != nil {
		return nil, err
	}
	ft := &FlipTask{Params: p}
	ft.ObjRange = geom.CenteredBox(p.Ranges.ObjXYRange, 0, p.Rand)
	ft.reward = bindReward(p.Reward, ft.sparseReward, ft.denseReward)
	sz := p.Ranges.ObjectSize
	err := buildScene(p.Sim, func() {
		p.Sim.CreateBox("object", cube(sz), 1, mat32.Vec3{X: 0, Y: 0, Z: sz / 2}, sim.Green, false)
		p.Sim.CreateBox("target", cube(sz), 0, ft.markerPos(), sim.GreenGhost, true)
	})
	return ft, err
}

// markerPos is where the target orientation marker floats
func (ft *FlipTask) markerPos() mat32.Vec3 {
	return mat32.Vec3{X: 0, Y: 0, Z: 3 * ft.Ranges.ObjectSize / 2}
}

func (ft *FlipTask) Name() string { return Flip.String() }

func (ft *FlipTask) Reset() {
	obj := mat32.Vec3{X: 0, Y: 0, Z: ft.Ranges.ObjectSize / 2}.Add(ft.ObjRange.Sample())
	q := geom.RandomQuat(ft.Rand)
	ft.Sim.SetBasePose("target", ft.markerPos(), q)
	ft.Sim.SetBasePose("object", obj, sim.IdentityQuat)
	ft.goal = concat([]float64{1, 1}, vec(obj), quat(q))
}

func (ft *FlipTask) Obs() []float64 { return objectObs(ft.Sim, "object") }

func (ft *FlipTask) AchievedGoal() []float64 {
	g, t := contactFlags(ft.Sim, ft.RobotBody, "object")
	return concat([]float64{g, t}, vec(ft.EEPosition()), quat(ft.Sim.BaseRotation("object")))
}

func (ft *FlipTask) Goal() []float64 { return copyOf(ft.goal) }

func (ft *FlipTask) IsSuccess(achieved, desired mat.Matrix) []bool {
	return within(ft.Ranges.DistanceThreshold, geom.AngleDistance(achieved, desired, 5))
}

func (ft *FlipTask) ComputeReward(achieved, desired mat.Matrix, info Info) []float64 {
	return ft.reward(achieved, desired, info)
}

func (ft *FlipTask) sparseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	return sparse(ft.Ranges.DistanceThreshold, geom.AngleDistance(achieved, desired, 5))
}

func (ft *FlipTask) denseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	thr := ft.Ranges.DistanceThreshold
	dist := penalty(thr, geom.FieldDistance(achieved, desired, 2, 5))
	contact := flagDiff(achieved, desired, 1)
	grasp := flagDiff(achieved, desired, 0)
	zeroWhere(dist, grasp)
	return weighted(
		term{1.0 / 6, dist},
		term{1.0 / 6, contact},
		term{1.0 / 6, grasp},
		term{0.5, penalty(thr, geom.AngleDistance(achieved, desired, 5))},
	)
}
