// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goki/ki/kit"
)

// ErrConfig is wrapped by every error reporting an invalid task or
// environment configuration.
var ErrConfig = errors.New("configuration error")

// RewardTypes select how rewards are computed
type RewardTypes int

//go:generate stringer -type=RewardTypes

var KiT_RewardTypes = kit.Enums.AddEnum(RewardTypesN, false, nil)

const (
	// Sparse gives -1 until the task is solved, then 0
	Sparse RewardTypes = iota

	// Dense gives a shaped, non-positive reward
	Dense

	RewardTypesN
)

// ControlTypes select what the robot action controls
type ControlTypes int

//go:generate stringer -type=ControlTypes

var KiT_ControlTypes = kit.Enums.AddEnum(ControlTypesN, false, nil)

const (
	// EE is end-effector displacement control
	EE ControlTypes = iota

	// Joints is joint-space control
	Joints

	ControlTypesN
)

// ActionTypes select continuous or discrete action spaces
type ActionTypes int

//go:generate stringer -type=ActionTypes

var KiT_ActionTypes = kit.Enums.AddEnum(ActionTypesN, false, nil)

const (
	Continuous ActionTypes = iota
	Discrete

	ActionTypesN
)

// Kinds are the available tasks
type Kinds int

//go:generate stringer -type=Kinds

var KiT_Kinds = kit.Enums.AddEnum(KindsN, false, nil)

const (
	// Reach moves the end effector to a target point
	Reach Kinds = iota

	// ReachCurriculum is Reach in the full goal layout with a growing goal range
	ReachCurriculum

	// Grasp grasps a cube
	Grasp

	// Push pushes a cube to a target on the table
	Push

	// Slide slides a puck to a target beyond the gripper's reach
	Slide

	// PickAndPlace moves a cube to a target that may be in the air
	PickAndPlace

	// Stack stacks two cubes at a target
	Stack

	// Flip rotates a cube to a target orientation
	Flip

	KindsN
)

// enumFromString does a case-insensitive match against the names of the
// first n values of an enum.
func enumFromString(s, typ string, n int, name func(i int) string) (int, error) {
	for i := 0; i < n; i++ {
		if strings.EqualFold(s, name(i)) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: unknown %s %q", ErrConfig, typ, s)
}

// ParseRewardType parses "sparse" or "dense", in any case
func ParseRewardType(s string) (RewardTypes, error) {
	i, err := enumFromString(s, "reward type", int(RewardTypesN), func(i int) string { return RewardTypes(i).String() })
	return RewardTypes(i), err
}

// ParseControlType parses "ee" or "joints", in any case
func ParseControlType(s string) (ControlTypes, error) {
	i, err := enumFromString(s, "control type", int(ControlTypesN), func(i int) string { return ControlTypes(i).String() })
	return ControlTypes(i), err
}

// ParseActionType parses "continuous" or "discrete", in any case
func ParseActionType(s string) (ActionTypes, error) {
	i, err := enumFromString(s, "action type", int(ActionTypesN), func(i int) string { return ActionTypes(i).String() })
	return ActionTypes(i), err
}

// ParseKind parses a task kind name such as "PickAndPlace", in any case
func ParseKind(s string) (Kinds, error) {
	i, err := enumFromString(s, "task kind", int(KindsN), func(i int) string { return Kinds(i).String() })
	return Kinds(i), err
}
