// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package policy

import (
	"github.com/ccnlab/manipgym/envs"
	"github.com/ccnlab/manipgym/task"
	"github.com/goki/mat32"
)

// ForKind returns a default policy suited to the task kind
func ForKind(kind task.Kinds) *Policy {
	pl := &Policy{}
	pl.Defaults()
	pl.ReachOnly = kind == task.Reach || kind == task.ReachCurriculum
	pl.Init()
	return pl
}

// ForEnv returns the policy for ev.  With discrete actions every move is
// a full step, so a phase is complete within half a step on each axis.
func ForEnv(ev *envs.Env) *Policy {
	pl := ForKind(ev.Spec.Kind)
	if ev.Spec.Action == task.Discrete {
		pl.Tolerance = pl.StepSize / 2
	}
	return pl
}

// SceneOf reads the scene of an environment from its simulator and
// current goal.
func SceneOf(ev *envs.Env) Scene {
	sc := Scene{EE: ev.Robot.EEPosition()}
	g := ev.Task.Goal()
	switch ev.Spec.Kind {
	case task.Reach:
		sc.Target = vec3(g[0:3])
		sc.Object = sc.Target
	case task.ReachCurriculum:
		sc.Target = vec3(g[2:5])
		sc.Object = sc.Target
	case task.Stack:
		sc.Object = ev.Sim.BasePosition("object1")
		sc.Target = vec3(g[5:8])
	case task.Grasp, task.Flip:
		sc.Object = ev.Sim.BasePosition("object")
		sc.Target = sc.Object.Add(mat32.Vec3{X: 0, Y: 0, Z: 0.1})
	default:
		sc.Object = ev.Sim.BasePosition("object")
		sc.Target = vec3(g[5:8])
	}
	return sc
}

func vec3(v []float64) mat32.Vec3 {
	return mat32.Vec3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}
}
