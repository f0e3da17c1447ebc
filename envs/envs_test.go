// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package envs

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ccnlab/manipgym/sim/kinsim"
	"github.com/ccnlab/manipgym/task"
	"github.com/emer/emergent/env"
	"github.com/emer/etable/etensor"
)

func TestRegistry(t *testing.T) {
	rg := NewRegistry()
	if rg.Len() != 64 {
		t.Fatalf("registry has %d entries, want 64", rg.Len())
	}
	for _, id := range []string{
		"PandaReach-v3",
		"PandaReach-v4",
		"PandaReachJointsDenseDiscrete-v4",
		"PandaPickAndPlace-v3",
		"PandaPickAndPlaceDense-v3",
		"PandaPickAndPlaceJointsDenseDiscrete-v3",
		"PandaStackDiscrete-v3",
		"PandaFlipJoints-v3",
	} {
		sp, err := rg.Lookup(id)
		if err != nil {
			t.Errorf("%s: %v", id, err)
			continue
		}
		if sp.MaxEpisodeSteps != MaxEpisodeSteps || sp.ID != id {
			t.Errorf("%s: spec %+v", id, sp)
		}
	}
	ids := rg.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("ids not sorted and unique at %q %q", ids[i-1], ids[i])
		}
	}
	if _, err := rg.Lookup("PandaJuggle-v3"); !errors.Is(err, ErrUnknownID) {
		t.Errorf("unknown id err = %v", err)
	}
	sp, _ := rg.Lookup("PandaPush-v3")
	if err := rg.Register(sp); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate registration err = %v", err)
	}
	if err := rg.Register(Spec{ID: "X-v0"}); !errors.Is(err, task.ErrConfig) {
		t.Errorf("zero budget err = %v", err)
	}
}

func TestNewRegistryFrom(t *testing.T) {
	specs := StandardSpecs()
	if len(specs) != 64 {
		t.Fatalf("%d standard specs", len(specs))
	}
	if _, err := NewRegistryFrom(specs...); err != nil {
		t.Fatalf("standard specs: %v", err)
	}
	dup := append(specs[:2:2], specs[1])
	if _, err := NewRegistryFrom(dup...); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate ids err = %v", err)
	}
	bad := append(specs[:1:1], Spec{ID: "PandaBroken-v3"})
	if _, err := NewRegistryFrom(bad...); !errors.Is(err, task.ErrConfig) {
		t.Errorf("zero budget err = %v", err)
	}
}

func TestSupported(t *testing.T) {
	rg := NewRegistry()
	ee, _ := rg.Lookup("PandaPush-v3")
	if err := Supported(ee, Kinematic); err != nil {
		t.Errorf("end-effector control: %v", err)
	}
	jt, _ := rg.Lookup("PandaPushJoints-v3")
	if err := Supported(jt, Kinematic); !errors.Is(err, kinsim.ErrJointControl) {
		t.Errorf("joint control err = %v", err)
	}
}

func TestSpecFor(t *testing.T) {
	sp, err := SpecFor("pickandplace", "dense", "ee", "continuous")
	if err != nil {
		t.Fatal(err)
	}
	if sp.ID != "PandaPickAndPlaceDense-v3" || sp.Kind != task.PickAndPlace || sp.Reward != task.Dense {
		t.Errorf("spec %+v", sp)
	}
	if sp, _ := SpecFor("ReachCurriculum", "sparse", "joints", "discrete"); sp.ID != "PandaReachJointsDiscrete-v4" {
		t.Errorf("curriculum id %q", sp.ID)
	}
	if _, err := SpecFor("push", "shaped", "ee", "continuous"); !errors.Is(err, task.ErrConfig) {
		t.Errorf("unknown reward type err = %v", err)
	}
}

func TestMakeAll(t *testing.T) {
	rg := NewRegistry()
	for _, id := range rg.IDs() {
		sp, _ := rg.Lookup(id)
		ev, err := rg.Make(id, Kinematic)
		if sp.Control == task.Joints {
			if !errors.Is(err, kinsim.ErrJointControl) {
				t.Errorf("%s: err = %v", id, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", id, err)
			continue
		}
		obs, _ := ev.Reset()
		if len(obs.AchievedGoal) != len(obs.DesiredGoal) {
			t.Errorf("%s: achieved %d desired %d", id, len(obs.AchievedGoal), len(obs.DesiredGoal))
		}
		if _, err := ev.StepAction(ev.noop()); err != nil {
			t.Errorf("%s: %v", id, err)
		}
		if err := ev.Close(); err != nil {
			t.Errorf("%s: close: %v", id, err)
		}
	}
}

func TestTruncation(t *testing.T) {
	ev, err := NewRegistry().Make("PandaGrasp-v3", Kinematic)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= MaxEpisodeSteps; i++ {
		ts, err := ev.StepAction([]float64{0, 0, 0, 0})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if ts.Reward != -1 || ts.Terminated {
			t.Fatalf("step %d: reward %g terminated %v", i, ts.Reward, ts.Terminated)
		}
		if ts.Truncated != (i == MaxEpisodeSteps) {
			t.Fatalf("step %d: truncated %v", i, ts.Truncated)
		}
	}
	if _, err := ev.StepAction([]float64{0, 0, 0, 0}); !errors.Is(err, ErrEpisodeDone) {
		t.Errorf("step after budget err = %v", err)
	}
	ev.Reset()
	if _, err := ev.StepAction([]float64{0, 0, 0, 0}); err != nil {
		t.Errorf("step after reset: %v", err)
	}
}

func TestReachTerminates(t *testing.T) {
	ev, err := NewRegistry().Make("PandaReach-v3", Kinematic)
	if err != nil {
		t.Fatal(err)
	}
	ev.Seed(3)
	obs, _ := ev.Reset()
	for i := 0; i < MaxEpisodeSteps; i++ {
		act := make([]float64, 4)
		for j := 0; j < 3; j++ {
			act[j] = (obs.DesiredGoal[j] - obs.AchievedGoal[j]) / 0.05
		}
		ts, err := ev.StepAction(act)
		if err != nil {
			t.Fatal(err)
		}
		if ts.Terminated {
			if ts.Reward != 0 || ts.Info["is_success"] != true || ts.Info["TimeLimit.truncated"] != false {
				t.Errorf("terminal step %+v", ts)
			}
			return
		}
		obs = ts.Obs
	}
	t.Fatalf("reach never succeeded")
}

func TestSeedReproducible(t *testing.T) {
	rg := NewRegistry()
	a, _ := rg.Make("PandaPickAndPlace-v3", Kinematic)
	b, _ := rg.Make("PandaPickAndPlace-v3", Kinematic)
	a.Seed(11)
	b.Seed(11)
	oa, _ := a.Reset()
	ob, _ := b.Reset()
	for i := range oa.DesiredGoal {
		if oa.DesiredGoal[i] != ob.DesiredGoal[i] {
			t.Fatalf("goals differ: %v %v", oa.DesiredGoal, ob.DesiredGoal)
		}
	}
	if a.EpisodeID == b.EpisodeID {
		t.Errorf("episode ids collide")
	}
}

func TestResetWithoutRendering(t *testing.T) {
	ev, _ := NewRegistry().Make("PandaPush-v3", Kinematic)
	w := ev.Sim.(*kinsim.World)
	n := len(w.RenderLog)
	ev.Reset()
	if len(w.RenderLog) != n+2 || w.RenderLog[n] || !w.Rendering {
		t.Errorf("render log %v", w.RenderLog)
	}
	if !strings.Contains(ev.Render(), "object") {
		t.Errorf("render %q", ev.Render())
	}
}

type panicTask struct {
	task.Task
}

func (panicTask) Reset() { panic("reset failed") }

func TestResetPanicRestoresRendering(t *testing.T) {
	ev, _ := NewRegistry().Make("PandaPush-v3", Kinematic)
	w := ev.Sim.(*kinsim.World)
	ev.Task = panicTask{ev.Task}
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("reset did not panic")
			}
		}()
		ev.Reset()
	}()
	if !w.Rendering {
		t.Errorf("rendering left off after a panicking reset")
	}
}

func TestDiscreteActions(t *testing.T) {
	tests := []struct {
		idx  int
		want []float64
	}{
		{0, []float64{0, 0, 0, 0}},
		{1, []float64{1, 0, 0, 0}},
		{2, []float64{-1, 0, 0, 0}},
		{5, []float64{0, 0, 1, 0}},
		{8, []float64{0, 0, 0, -1}},
	}
	for _, tt := range tests {
		got, err := DecodeDiscrete(tt.idx, 4)
		if err != nil {
			t.Fatalf("%d: %v", tt.idx, err)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%d: got %v want %v", tt.idx, got, tt.want)
				break
			}
		}
	}
	for _, tt := range tests {
		if got := EncodeDiscrete(tt.want, 0.5); got != tt.idx {
			t.Errorf("encode %v = %d, want %d", tt.want, got, tt.idx)
		}
	}
	if got := EncodeDiscrete([]float64{0.2, -0.7, 0.6, 0.1}, 0.5); got != 4 {
		t.Errorf("encode picks %d, want 4", got)
	}
	moves := []struct {
		cmd  []float64
		want int
	}{
		{[]float64{1, 0.2, 0, -1}, 1},
		{[]float64{0, 0, -1, 1}, 6},
		{[]float64{0.3, 0.1, 0, -1}, 8},
		{[]float64{0, 0, 0, 1}, 7},
		{[]float64{0.1, 0, 0, 0.2}, 0},
	}
	for _, tt := range moves {
		if got := EncodeDiscreteMove(tt.cmd, 3, 0.5); got != tt.want {
			t.Errorf("encode move %v = %d, want %d", tt.cmd, got, tt.want)
		}
	}
	if _, err := DecodeDiscrete(9, 4); err == nil {
		t.Errorf("index 9 accepted for a 4-dim actuator")
	}

	ev, err := NewRegistry().Make("PandaReachDiscrete-v3", Kinematic)
	if err != nil {
		t.Fatal(err)
	}
	sp := ev.ActionSpace()
	if !sp.Discrete() || sp.N != 9 {
		t.Fatalf("action space %+v", sp)
	}
	for _, bad := range [][]float64{{9}, {1.5}, {-1}, {1, 2}} {
		if _, err := ev.StepAction(bad); err == nil {
			t.Errorf("action %v accepted", bad)
		}
	}
	before := ev.Robot.EEPosition()
	if _, err := ev.StepAction([]float64{5}); err != nil {
		t.Fatal(err)
	}
	if dz := ev.Robot.EEPosition().Z - before.Z; math.Abs(float64(dz)-0.05) > 1e-6 {
		t.Errorf("action 5 moved z by %g", dz)
	}
}

func TestEmergentInterface(t *testing.T) {
	ev, err := NewRegistry().Make("PandaPickAndPlaceDense-v3", Kinematic)
	if err != nil {
		t.Fatal(err)
	}
	if err := ev.Validate(); err != nil {
		t.Fatal(err)
	}
	ev.Init(2)
	if cur, _, _ := ev.Counter(env.Run); cur != 2 {
		t.Errorf("run %d", cur)
	}
	act := etensor.NewFloat64([]int{4}, nil, nil)
	act.Values[0] = 1
	ev.Action("Action", act)
	if !ev.Step() {
		t.Fatalf("step failed")
	}
	if cur, _, _ := ev.Counter(env.Trial); cur != 1 {
		t.Errorf("trial %d after one step", cur)
	}
	os := ev.ObservationSpace()
	if ev.State("Observation").Len() != os["observation"][0] || os["observation"][0] != 7+13 {
		t.Errorf("observation state %d, space %v", ev.State("Observation").Len(), os)
	}
	if ev.State("DesiredGoal").Len() != 8 || ev.State("Reward").Len() != 1 {
		t.Errorf("goal state %d", ev.State("DesiredGoal").Len())
	}
	if r := ev.State("Reward").FloatVal1D(0); r > 0 {
		t.Errorf("dense reward %g", r)
	}
	if ev.State("Nope") != nil {
		t.Errorf("unknown state element returned a tensor")
	}
}
