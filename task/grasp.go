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

// GraspTask grasps a cube lying on the table.
//
// With sparse rewards the goal is just the grasp flag, [1].  With dense
// rewards it is [grasped, touching, position(3)] where the desired position
// is the cube's start and the achieved one is the end effector.
type GraspTask struct {
	Params
	ObjRange *geom.Box `desc:"object start range"`

	goal   []float64
	reward RewardFunc
}

func NewGrasp(p Params) (*GraspTask, error) {
	if err := p.validate(Grasp); err != nil {
		return nil, err
	}
	gt := &GraspTask{Params: p}
	gt.ObjRange = geom.CenteredBox(p.Ranges.ObjXYRange, 0, p.Rand)
	gt.reward = bindReward(p.Reward, gt.sparseReward, gt.denseReward)
	sz := p.Ranges.ObjectSize
	err := buildScene(p.Sim, func() {
		p.Sim.CreateBox("object", cube(sz), 1, mat32.Vec3{X: 0, Y: 0, Z: sz / 2}, sim.Green, false)
	})
	return gt, err
}

func (gt *GraspTask) Name() string { return Grasp.String() }

func (gt *GraspTask) Reset() {
	obj := mat32.Vec3{X: 0, Y: 0, Z: gt.Ranges.ObjectSize / 2}.Add(gt.ObjRange.Sample())
	gt.Sim.SetBasePose("object", obj, sim.IdentityQuat)
	if gt.Reward == Sparse {
		gt.goal = []float64{1}
		return
	}
	gt.goal = concat([]float64{1, 1}, vec(obj))
}

func (gt *GraspTask) Obs() []float64 { return objectObs(gt.Sim, "object") }

func (gt *GraspTask) AchievedGoal() []float64 {
	g, t := contactFlags(gt.Sim, gt.RobotBody, "object")
	if gt.Reward == Sparse {
		return []float64{g}
	}
	return concat([]float64{g, t}, vec(gt.EEPosition()))
}

func (gt *GraspTask) Goal() []float64 { return copyOf(gt.goal) }

// IsSuccess reads the achieved grasp flag, column 0 in both layouts.
func (gt *GraspTask) IsSuccess(achieved, desired mat.Matrix) []bool {
	out := make([]bool, rowsOf(achieved, desired))
	for i := range out {
		out[i] = achieved.At(i, 0) > 0.5
	}
	return out
}

func (gt *GraspTask) ComputeReward(achieved, desired mat.Matrix, info Info) []float64 {
	return gt.reward(achieved, desired, info)
}

// sparseReward is the mean of achieved - desired over the row, which for
// the [grasped] layout is -1 or 0.
func (gt *GraspTask) sparseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	out := make([]float64, rowsOf(achieved, desired))
	_, c := achieved.Dims()
	for j := 0; j < c; j++ {
		for i, d := range flagDiff(achieved, desired, j) {
			out[i] += d / float64(c)
		}
	}
	return out
}

func (gt *GraspTask) denseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	return weighted(
		term{0.25, penalty(gt.Ranges.DistanceThreshold, geom.FieldDistance(achieved, desired, 2, 5))},
		term{0.25, flagDiff(achieved, desired, 1)},
		term{0.5, flagDiff(achieved, desired, 0)},
	)
}
