// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package policy

import (
	"testing"

	"github.com/ccnlab/manipgym/envs"
	"github.com/ccnlab/manipgym/task"
	"github.com/goki/mat32"
	"golang.org/x/exp/rand"
)

// rollout runs one episode of pl on ev, returning whether it succeeded
// and the sequence of states visited.  Discrete environments get the
// encoded action.
func rollout(t *testing.T, ev *envs.Env, pl *Policy) (bool, []ActState) {
	t.Helper()
	rnd := rand.New(rand.NewSource(1))
	ev.Reset()
	pl.Init()
	var states []ActState
	for i := 0; i < ev.Spec.MaxEpisodeSteps; i++ {
		act := pl.Act(SceneOf(ev), rnd)
		if ev.ActionSpace().Discrete() {
			act = []float64{float64(envs.EncodeDiscreteMove(act, 3, 0.5))}
		}
		if n := len(states); n == 0 || states[n-1] != pl.CurState {
			states = append(states, pl.CurState)
		}
		ts, err := ev.StepAction(act)
		if err != nil {
			t.Fatal(err)
		}
		if ts.Terminated {
			return true, states
		}
		if ts.Truncated {
			break
		}
	}
	return false, states
}

func TestPickAndPlaceSolved(t *testing.T) {
	for _, id := range []string{"PandaPickAndPlace-v3", "PandaPickAndPlaceDiscrete-v3"} {
		t.Run(id, func(t *testing.T) {
			testPickAndPlaceSolved(t, id)
		})
	}
}

func testPickAndPlaceSolved(t *testing.T, id string) {
	ev, err := envs.NewRegistry().Make(id, envs.Kinematic)
	if err != nil {
		t.Fatal(err)
	}
	pl := ForEnv(ev)
	for seed := uint64(0); seed < 20; seed++ {
		ev.Seed(seed)
		ok, states := rollout(t, ev, pl)
		if !ok {
			t.Fatalf("seed %d: not solved, states %v", seed, states)
		}
		// a target sampled next to the object can finish the episode early
		want := []ActState{Approach, Descend, Grip, Carry}
		if len(states) > len(want) {
			t.Fatalf("seed %d: states %v", seed, states)
		}
		for i := range states {
			if states[i] != want[i] {
				t.Fatalf("seed %d: states %v, want %v", seed, states, want)
			}
		}
	}
}

func TestReachSolved(t *testing.T) {
	for _, id := range []string{"PandaReach-v3", "PandaReachDense-v4"} {
		ev, err := envs.NewRegistry().Make(id, envs.Kinematic)
		if err != nil {
			t.Fatal(err)
		}
		pl := ForKind(ev.Spec.Kind)
		if !pl.ReachOnly {
			t.Fatalf("%s: reach policy not ReachOnly", id)
		}
		for seed := uint64(0); seed < 10; seed++ {
			ev.Seed(seed)
			if ok, _ := rollout(t, ev, pl); !ok {
				t.Errorf("%s seed %d: not solved", id, seed)
			}
		}
	}
}

func TestGripWaits(t *testing.T) {
	pl := &Policy{}
	pl.Defaults()
	pl.Init()
	sc := Scene{EE: mat32.Vec3{X: 0, Y: 0, Z: 0.02}, Object: mat32.Vec3{X: 0, Y: 0, Z: 0.02}, Target: mat32.Vec3{X: 0.1, Y: 0, Z: 0.1}}
	pl.CurState = Descend
	for i := 0; i < pl.GripSteps; i++ {
		act := pl.Act(sc, nil)
		if pl.CurState != Grip || act[3] != -1 || act[0] != 0 {
			t.Fatalf("grip step %d: state %v act %v", i, pl.CurState, act)
		}
	}
	act := pl.Act(sc, nil)
	if pl.CurState != Carry || pl.PrvState != Grip || act[0] != 1 || act[3] != -1 {
		t.Errorf("after grip: state %v act %v", pl.CurState, act)
	}
}

func TestForEnvTolerance(t *testing.T) {
	rg := envs.NewRegistry()
	ct, _ := rg.Make("PandaPush-v3", envs.Kinematic)
	dt, _ := rg.Make("PandaPushDiscrete-v3", envs.Kinematic)
	if pc, pd := ForEnv(ct), ForEnv(dt); pc.Tolerance != 0.005 || pd.Tolerance != pd.StepSize/2 {
		t.Errorf("tolerance continuous %g discrete %g", pc.Tolerance, pd.Tolerance)
	}
}

func TestExploreReproducible(t *testing.T) {
	sc := Scene{EE: mat32.Vec3{X: 0, Y: 0, Z: 0.2}, Object: mat32.Vec3{X: 0.1, Y: -0.05, Z: 0.02}, Target: mat32.Vec3{X: -0.1, Y: 0.1, Z: 0.02}}
	run := func() [][]float64 {
		pl := ForKind(task.Push)
		pl.PExplore = 0.5
		rnd := rand.New(rand.NewSource(1))
		var acts [][]float64
		for i := 0; i < 40; i++ {
			acts = append(acts, pl.Act(sc, rnd))
		}
		return acts
	}
	a, b := run(), run()
	explored := 0
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("step %d: actions %v and %v differ with the same seed", i, a[i], b[i])
			}
		}
		if a[i][3] != 1 {
			explored++
		}
	}
	if explored == 0 {
		t.Errorf("no exploratory actions with pexplore 0.5")
	}
}

func TestRandomAction(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	pl := &Policy{}
	pl.Defaults()
	pl.PExplore = 1
	pl.Init()
	for i := 0; i < 100; i++ {
		act := pl.Act(Scene{}, rnd)
		if len(act) != 4 {
			t.Fatalf("action %v", act)
		}
		for _, a := range act {
			if a < -1 || a > 1 {
				t.Fatalf("action %v out of range", act)
			}
		}
	}
	if pl.CurState != NoActState {
		t.Errorf("exploration changed state to %v", pl.CurState)
	}
}
