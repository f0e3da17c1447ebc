// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"math"

	"github.com/ccnlab/manipgym/geom"
	"github.com/ccnlab/manipgym/sim"
	"github.com/goki/mat32"
	"gonum.org/v1/gonum/mat"
)

// ReachTask moves the end effector to a target point.
// Goal layout is the target position.
type ReachTask struct {
	Params
	GoalRange *geom.Box `desc:"target sampling range"`

	goal   []float64
	reward RewardFunc
}

func NewReach(p Params) (*ReachTask, error) {
	if err := p.validate(Reach); err != nil {
		return nil, err
	}
	rt := &ReachTask{Params: p}
	rt.GoalRange = geom.CenteredBox(p.Ranges.GoalXYRange, p.Ranges.GoalZRange, p.Rand)
	rt.reward = bindReward(p.Reward, rt.sparseReward, rt.denseReward)
	err := buildScene(p.Sim, func() {
		p.Sim.CreateSphere("target", 0.02, 0, mat32.Vec3{}, sim.GreenGhost, true)
	})
	return rt, err
}

func (rt *ReachTask) Name() string { return Reach.String() }

func (rt *ReachTask) Reset() {
	g := rt.GoalRange.Sample()
	rt.goal = vec(g)
	rt.Sim.SetBasePose("target", g, sim.IdentityQuat)
}

func (rt *ReachTask) Obs() []float64 { return []float64{} }

func (rt *ReachTask) AchievedGoal() []float64 { return vec(rt.EEPosition()) }

func (rt *ReachTask) Goal() []float64 { return copyOf(rt.goal) }

func (rt *ReachTask) IsSuccess(achieved, desired mat.Matrix) []bool {
	return within(rt.Ranges.DistanceThreshold, geom.BatchDistance(achieved, desired))
}

func (rt *ReachTask) ComputeReward(achieved, desired mat.Matrix, info Info) []float64 {
	return rt.reward(achieved, desired, info)
}

func (rt *ReachTask) sparseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	return sparse(rt.Ranges.DistanceThreshold, geom.BatchDistance(achieved, desired))
}

func (rt *ReachTask) denseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	return negate(geom.BatchDistance(achieved, desired))
}

// ReachCurriculumTask is reach in the object-task goal layout,
// [0, 0, position(3), 0, 0, 0], with a goal range that starts small and
// grows as the success rate passes PromoteRate.
type ReachCurriculumTask struct {
	Params
	FullRange   *geom.Box `desc:"goal range at level 1"`
	GoalRange   *geom.Box `inactive:"+" desc:"goal range at the current level"`
	Lvl         float64   `inactive:"+" desc:"current fraction of the full range"`
	StartLevel  float64   `desc:"initial level"`
	LevelStep   float64   `desc:"level increase on promotion"`
	PromoteRate float64   `desc:"success rate needed for promotion"`

	goal   []float64
	reward RewardFunc
}

func NewReachCurriculum(p Params) (*ReachCurriculumTask, error) {
	if err := p.validate(ReachCurriculum); err != nil {
		return nil, err
	}
	rt := &ReachCurriculumTask{Params: p}
	rt.Defaults()
	rt.FullRange = geom.CenteredBox(p.Ranges.GoalXYRange, p.Ranges.GoalZRange, p.Rand)
	rt.setLevel(rt.StartLevel)
	rt.reward = bindReward(p.Reward, rt.sparseReward, rt.denseReward)
	err := buildScene(p.Sim, func() {
		p.Sim.CreateSphere("target", 0.02, 0, mat32.Vec3{}, sim.GreenGhost, true)
	})
	return rt, err
}

func (rt *ReachCurriculumTask) Defaults() {
	rt.StartLevel = 0.25
	rt.LevelStep = 0.25
	rt.PromoteRate = 0.8
}

func (rt *ReachCurriculumTask) setLevel(lvl float64) {
	rt.Lvl = lvl
	rt.GoalRange = rt.FullRange.Scale(float32(lvl))
}

func (rt *ReachCurriculumTask) Level() float64 { return rt.Lvl }

func (rt *ReachCurriculumTask) Advance(successRate float64) bool {
	if successRate < rt.PromoteRate || rt.Lvl >= 1 {
		return false
	}
	rt.setLevel(math.Min(1, rt.Lvl+rt.LevelStep))
	return true
}

func (rt *ReachCurriculumTask) Name() string { return ReachCurriculum.String() }

func (rt *ReachCurriculumTask) Reset() {
	g := rt.GoalRange.Sample()
	rt.goal = concat([]float64{0, 0}, vec(g), []float64{0, 0, 0})
	rt.Sim.SetBasePose("target", g, sim.IdentityQuat)
}

func (rt *ReachCurriculumTask) Obs() []float64 { return []float64{} }

func (rt *ReachCurriculumTask) AchievedGoal() []float64 {
	return concat([]float64{0, 0}, vec(rt.EEPosition()), []float64{0, 0, 0})
}

func (rt *ReachCurriculumTask) Goal() []float64 { return copyOf(rt.goal) }

func (rt *ReachCurriculumTask) IsSuccess(achieved, desired mat.Matrix) []bool {
	return within(rt.Ranges.DistanceThreshold, geom.FieldDistance(achieved, desired, 2, 5))
}

func (rt *ReachCurriculumTask) ComputeReward(achieved, desired mat.Matrix, info Info) []float64 {
	return rt.reward(achieved, desired, info)
}

func (rt *ReachCurriculumTask) sparseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	return sparse(rt.Ranges.DistanceThreshold, geom.FieldDistance(achieved, desired, 2, 5))
}

func (rt *ReachCurriculumTask) denseReward(achieved, desired mat.Matrix, _ Info) []float64 {
	return negate(geom.FieldDistance(achieved, desired, 2, 5))
}
