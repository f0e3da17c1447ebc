// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package task implements goal-conditioned manipulation tasks: scene
// construction, goal sampling, observations, success tests and rewards.
//
// Success and reward are always computed on batches: achieved and desired
// goals are N x D matrices with one transition per row.  The single
// transition forms Success and Reward wrap their arguments as 1 x D
// matrices, so a transition scores the same alone or inside a batch, which
// is what hindsight relabeling relies on.
package task

import (
	"fmt"

	"github.com/ccnlab/manipgym/sim"
	"github.com/goki/mat32"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Info carries auxiliary step information.  Tasks do not read it.
type Info map[string]any

// Task is the goal-conditioned part of an environment
type Task interface {
	// Name is the task kind name
	Name() string

	// Reset samples a new goal and places the scene objects
	Reset()

	// Obs returns the task-specific observation
	Obs() []float64

	// AchievedGoal returns the achieved goal in the same layout as Goal
	AchievedGoal() []float64

	// Goal returns a copy of the current desired goal
	Goal() []float64

	// IsSuccess tests each row of achieved against the same row of desired
	IsSuccess(achieved, desired mat.Matrix) []bool

	// ComputeReward scores each row of achieved against desired
	ComputeReward(achieved, desired mat.Matrix, info Info) []float64
}

// Success is IsSuccess for a single transition
func Success(t Task, achieved, desired []float64) bool {
	return t.IsSuccess(Row(achieved), Row(desired))[0]
}

// Reward is ComputeReward for a single transition
func Reward(t Task, achieved, desired []float64, info Info) float64 {
	return t.ComputeReward(Row(achieved), Row(desired), info)[0]
}

// Row wraps v as a 1 x len(v) matrix sharing its storage
func Row(v []float64) *mat.Dense {
	return mat.NewDense(1, len(v), v)
}

// Ranges are the sampling ranges and success threshold of a task.
// Fields a task does not use are ignored.
type Ranges struct {
	DistanceThreshold float64 `desc:"success distance (or angle distance for Flip)"`
	GoalXYRange       float32 `desc:"width of the goal sampling square"`
	GoalZRange        float32 `desc:"height of the goal sampling range"`
	ObjXYRange        float32 `desc:"width of the object sampling square"`
	GoalXOffset       float32 `desc:"x offset added to the goal range (Slide)"`
	ObjectSize        float32 `desc:"object edge length"`
}

// DefaultRanges returns the standard ranges for kind
func DefaultRanges(kind Kinds) Ranges {
	rg := Ranges{DistanceThreshold: 0.05, GoalXYRange: 0.3, GoalZRange: 0.2, ObjXYRange: 0.3, ObjectSize: 0.04}
	switch kind {
	case Reach, ReachCurriculum:
		rg.GoalZRange = 0.3
		rg.ObjXYRange = 0
		rg.ObjectSize = 0
	case PickAndPlace:
		rg.DistanceThreshold = 0.045
	case Push:
		rg.GoalZRange = 0
	case Slide:
		rg.GoalZRange = 0
		rg.GoalXOffset = 0.4
		rg.ObjectSize = 0.06
	case Stack:
		rg.DistanceThreshold = 0.1
		rg.GoalZRange = 0
	case Flip:
		rg.DistanceThreshold = 0.2
		rg.GoalZRange = 0
	}
	return rg
}

// Params configure a task at construction
type Params struct {
	Sim        sim.Sim           `desc:"simulator the task builds its scene in"`
	Rand       *rand.Rand        `desc:"random source owned by the environment"`
	EEPosition func() mat32.Vec3 `desc:"end-effector position of the robot"`
	Reward     RewardTypes       `desc:"reward type"`
	RobotBody  string            `desc:"robot body name for contact queries"`
	Ranges     Ranges            `desc:"sampling ranges -- zero value selects the kind's defaults"`
}

func (p *Params) validate(kind Kinds) error {
	if p.Sim == nil || p.Rand == nil || p.EEPosition == nil {
		return fmt.Errorf("%w: %v needs a simulator, a random source and an end-effector position", ErrConfig, kind)
	}
	if p.Reward < 0 || p.Reward >= RewardTypesN {
		return fmt.Errorf("%w: reward type %d out of range", ErrConfig, int(p.Reward))
	}
	if p.RobotBody == "" {
		p.RobotBody = "panda"
	}
	if p.Ranges == (Ranges{}) {
		p.Ranges = DefaultRanges(kind)
	}
	return nil
}

// New makes a task of the given kind
func New(kind Kinds, p Params) (Task, error) {
	switch kind {
	case Reach:
		return NewReach(p)
	case ReachCurriculum:
		return NewReachCurriculum(p)
	case Grasp:
		return NewGrasp(p)
	case Push:
		return NewPush(p)
	case Slide:
		return NewSlide(p)
	case PickAndPlace:
		return NewPickAndPlace(p)
	case Stack:
		return NewStack(p)
	case Flip:
		return NewFlip(p)
	}
	return nil, fmt.Errorf("%w: unknown task kind %d", ErrConfig, int(kind))
}

// Curriculum is a task whose goal difficulty can be raised
type Curriculum interface {
	// Level is the current fraction of the full goal range
	Level() float64

	// Advance raises the level if successRate is high enough,
	// reporting whether it changed.
	Advance(successRate float64) bool
}
