// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import (
	"errors"
	"math"
	"testing"

	"github.com/ccnlab/manipgym/sim/kinsim"
	"github.com/goki/mat32"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func newTask(t *testing.T, kind Kinds, rt RewardTypes) (Task, *kinsim.World, *kinsim.Arm) {
	t.Helper()
	w := kinsim.NewWorld()
	ar, err := kinsim.NewArm(w, false)
	if err != nil {
		t.Fatal(err)
	}
	tk, err := New(kind, Params{
		Sim:        w,
		Rand:       rand.New(rand.NewSource(1)),
		EEPosition: ar.EEPosition,
		Reward:     rt,
		RobotBody:  ar.Name(),
	})
	if err != nil {
		t.Fatalf("%v: %v", kind, err)
	}
	tk.Reset()
	return tk, w, ar
}

// randomBatch makes n achieved / desired rows around the task's goals,
// with flag-like values in the first columns.
func randomBatch(tk Task, rnd *rand.Rand, n int) (*mat.Dense, *mat.Dense) {
	dim := len(tk.Goal())
	a := mat.NewDense(n, dim, nil)
	d := mat.NewDense(n, dim, nil)
	for i := 0; i < n; i++ {
		tk.Reset()
		g := tk.Goal()
		for j := 0; j < dim; j++ {
			d.Set(i, j, g[j])
			a.Set(i, j, g[j]+0.05*rnd.NormFloat64())
		}
		if dim > 1 && rnd.Float64() < 0.5 {
			a.Set(i, 0, float64(rnd.Intn(2)))
			a.Set(i, 1, float64(rnd.Intn(2)))
		}
		if dim == 1 {
			a.Set(i, 0, float64(rnd.Intn(2)))
		}
	}
	return a, d
}

func allKinds() []Kinds {
	ks := make([]Kinds, KindsN)
	for i := range ks {
		ks[i] = Kinds(i)
	}
	return ks
}

func TestSingleMatchesBatch(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	for _, kind := range allKinds() {
		for _, rt := range []RewardTypes{Sparse, Dense} {
			t.Run(kind.String()+rt.String(), func(t *testing.T) {
				tk, _, _ := newTask(t, kind, rt)
				a, d := randomBatch(tk, rnd, 32)
				rews := tk.ComputeReward(a, d, nil)
				succ := tk.IsSuccess(a, d)
				if len(rews) != 32 || len(succ) != 32 {
					t.Fatalf("got %d rewards and %d successes", len(rews), len(succ))
				}
				for i := 0; i < 32; i++ {
					ar := mat.Row(nil, i, a)
					dr := mat.Row(nil, i, d)
					if r := Reward(tk, ar, dr, nil); r != rews[i] {
						t.Errorf("row %d: single reward %g, batch %g", i, r, rews[i])
					}
					if s := Success(tk, ar, dr); s != succ[i] {
						t.Errorf("row %d: single success %v, batch %v", i, s, succ[i])
					}
				}
			})
		}
	}
}

func TestSparseRewardValues(t *testing.T) {
	rnd := rand.New(rand.NewSource(6))
	for _, kind := range allKinds() {
		tk, _, _ := newTask(t, kind, Sparse)
		a, d := randomBatch(tk, rnd, 64)
		succ := tk.IsSuccess(a, d)
		for i, r := range tk.ComputeReward(a, d, nil) {
			if r != 0 && r != -1 {
				t.Errorf("%v row %d: sparse reward %g", kind, i, r)
			}
			if kind != Grasp && (r == 0) != succ[i] {
				t.Errorf("%v row %d: reward %g but success %v", kind, i, r, succ[i])
			}
		}
	}
}

func TestRewardAtGoal(t *testing.T) {
	for _, kind := range allKinds() {
		for _, rt := range []RewardTypes{Sparse, Dense} {
			tk, _, _ := newTask(t, kind, rt)
			g := tk.Goal()
			if r := Reward(tk, g, tk.Goal(), nil); r != 0 {
				t.Errorf("%v %v: reward at goal %g", kind, rt, r)
			}
			if !Success(tk, g, tk.Goal()) {
				t.Errorf("%v %v: not successful at goal", kind, rt)
			}
		}
	}
}

func TestDenseRewardNonPositive(t *testing.T) {
	rnd := rand.New(rand.NewSource(8))
	for _, kind := range allKinds() {
		tk, _, _ := newTask(t, kind, Dense)
		a, d := randomBatch(tk, rnd, 64)
		if kind != Reach && kind != ReachCurriculum {
			// achieved flags can only fall short of the desired ones
			for i := 0; i < 64; i++ {
				for j := 0; j < 2; j++ {
					a.Set(i, j, math.Min(a.At(i, j), d.At(i, j)))
				}
			}
		}
		for i, r := range tk.ComputeReward(a, d, nil) {
			if r > 0 {
				t.Errorf("%v row %d: dense reward %g > 0", kind, i, r)
			}
		}
	}
}

func TestPickAndPlaceGoalLayout(t *testing.T) {
	tk, w, _ := newTask(t, PickAndPlace, Dense)
	for i := 0; i < 20; i++ {
		tk.Reset()
		g := tk.Goal()
		if len(g) != 8 || g[0] != 1 || g[1] != 1 {
			t.Fatalf("goal %v", g)
		}
		obj := vec(w.BasePosition("object"))
		tgt := vec(w.BasePosition("target"))
		for j := 0; j < 3; j++ {
			if g[2+j] != obj[j] || g[5+j] != tgt[j] {
				t.Fatalf("goal %v, object %v, target %v", g, obj, tgt)
			}
		}
		if ag := tk.AchievedGoal(); len(ag) != len(g) {
			t.Fatalf("achieved goal length %d", len(ag))
		}
	}
	if n := len(tk.Obs()); n != 13 {
		t.Errorf("observation length %d", n)
	}
}

func TestGoalLengths(t *testing.T) {
	want := map[Kinds]int{Reach: 3, ReachCurriculum: 8, Push: 8, Slide: 8, PickAndPlace: 8, Stack: 11, Flip: 9}
	for kind, n := range want {
		tk, _, _ := newTask(t, kind, Dense)
		if len(tk.Goal()) != n || len(tk.AchievedGoal()) != n {
			t.Errorf("%v: goal %d achieved %d, want %d", kind, len(tk.Goal()), len(tk.AchievedGoal()), n)
		}
	}
	sp, _, _ := newTask(t, Grasp, Sparse)
	dn, _, _ := newTask(t, Grasp, Dense)
	if len(sp.Goal()) != 1 || len(sp.AchievedGoal()) != 1 || len(dn.Goal()) != 5 {
		t.Errorf("grasp goals %v %v", sp.Goal(), dn.Goal())
	}
}

func TestResetWithinBounds(t *testing.T) {
	tk, w, _ := newTask(t, PickAndPlace, Sparse)
	pt := tk.(*PickAndPlaceTask)
	base := pt.base()
	glo, ghi := base.Add(pt.GoalRange.Low), base.Add(pt.GoalRange.High)
	olo, ohi := base.Add(pt.ObjRange.Low), base.Add(pt.ObjRange.High)
	in := func(p, lo, hi mat32.Vec3) bool {
		return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y && p.Z >= lo.Z && p.Z <= hi.Z
	}
	for seed := 0; seed < 10000; seed++ {
		pt.Rand.Seed(uint64(seed))
		pt.Reset()
		if p := w.BasePosition("target"); !in(p, glo, ghi) {
			t.Fatalf("seed %d: target %v outside %v..%v", seed, p, glo, ghi)
		}
		if p := w.BasePosition("object"); !in(p, olo, ohi) {
			t.Fatalf("seed %d: object %v outside %v..%v", seed, p, olo, ohi)
		}
	}
}

func TestTargetOnTableFrequency(t *testing.T) {
	tk, w, _ := newTask(t, PickAndPlace, Sparse)
	pt := tk.(*PickAndPlaceTask)
	const n = 10000
	onTable := 0
	for i := 0; i < n; i++ {
		pt.Reset()
		if w.BasePosition("target").Z == pt.base().Z {
			onTable++
		}
	}
	if f := float64(onTable) / n; math.Abs(f-0.3) > 0.02 {
		t.Errorf("target on table in %.3f of resets, want about 0.3", f)
	}
}

func TestContactDetection(t *testing.T) {
	up := mat32.Vec3{X: 0, Y: 1, Z: 0}
	down := mat32.Vec3{X: 0, Y: -1, Z: 0}
	side := mat32.Vec3{X: 1, Y: 0, Z: 0}
	tests := []struct {
		name     string
		normals  []mat32.Vec3
		grasped  bool
		touching bool
	}{
		{"none", nil, false, false},
		{"zero", []mat32.Vec3{{}}, false, false},
		{"one side", []mat32.Vec3{up}, false, true},
		{"same side twice", []mat32.Vec3{up, up}, false, true},
		{"both sides", []mat32.Vec3{up, down}, true, true},
		{"both sides and more", []mat32.Vec3{side, down, up}, true, true},
		{"tilted", []mat32.Vec3{{X: 0, Y: 0.98, Z: 0.2}, down}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if g := Grasped(tt.normals); g != tt.grasped {
				t.Errorf("Grasped = %v", g)
			}
			if tc := Touching(tt.normals); tc != tt.touching {
				t.Errorf("Touching = %v", tc)
			}
		})
	}
}

func TestGraspWithArm(t *testing.T) {
	tk, w, ar := newTask(t, Grasp, Sparse)
	if Success(tk, tk.AchievedGoal(), tk.Goal()) {
		t.Fatalf("success before grasping")
	}
	ar.EE.Set(w.BasePosition("object"))
	ar.SetAction([]float64{0, 0, 0, -1})
	w.Step()
	ag := tk.AchievedGoal()
	if ag[0] != 1 {
		t.Fatalf("achieved %v after closing on the object", ag)
	}
	if !Success(tk, ag, tk.Goal()) || Reward(tk, ag, tk.Goal(), nil) != 0 {
		t.Errorf("grasp not rewarded")
	}
}

func TestConfigErrors(t *testing.T) {
	if rt, err := ParseRewardType("dense"); err != nil || rt != Dense {
		t.Errorf("dense parsed as %v, %v", rt, err)
	}
	if ct, err := ParseControlType("ee"); err != nil || ct != EE {
		t.Errorf("ee parsed as %v, %v", ct, err)
	}
	if at, err := ParseActionType("Discrete"); err != nil || at != Discrete {
		t.Errorf("Discrete parsed as %v, %v", at, err)
	}
	for _, fn := range []func() error{
		func() error { _, err := ParseRewardType("shaped"); return err },
		func() error { _, err := ParseControlType("torque"); return err },
		func() error { _, err := ParseActionType("hybrid"); return err },
		func() error { _, err := ParseKind("Juggle"); return err },
		func() error {
			_, err := New(PickAndPlace, Params{Sim: kinsim.NewWorld(), Rand: rand.New(rand.NewSource(0)),
				EEPosition: func() mat32.Vec3 { return mat32.Vec3{} }, Reward: RewardTypes(7)})
			return err
		},
		func() error { _, err := New(KindsN, Params{}); return err },
		func() error { _, err := NewReach(Params{}); return err },
	} {
		if err := fn(); !errors.Is(err, ErrConfig) {
			t.Errorf("err = %v, want ErrConfig", err)
		}
	}
}

func TestRewardShapeMismatchPanics(t *testing.T) {
	tk, _, _ := newTask(t, PickAndPlace, Dense)
	defer func() {
		if r := recover(); r != mat.ErrShape {
			t.Fatalf("recovered %v", r)
		}
	}()
	tk.ComputeReward(mat.NewDense(2, 8, nil), mat.NewDense(3, 8, nil), nil)
}

func TestSceneBuiltWithoutRendering(t *testing.T) {
	_, w, _ := newTask(t, Stack, Sparse)
	if len(w.RenderLog) != 2 || w.RenderLog[0] || !w.RenderLog[1] {
		t.Errorf("render log %v", w.RenderLog)
	}
	if w.Camera.Distance != 0.9 || w.Camera.Yaw != 45 || w.Camera.Pitch != -30 {
		t.Errorf("camera %+v", w.Camera)
	}
	for _, nm := range []string{"plane", "table", "object1", "object2", "target1", "target2"} {
		if _, has := w.Bodies[nm]; !has {
			t.Errorf("missing body %q", nm)
		}
	}
}

func TestCurriculum(t *testing.T) {
	tk, w, _ := newTask(t, ReachCurriculum, Sparse)
	rc := tk.(Curriculum)
	ct := tk.(*ReachCurriculumTask)
	if rc.Level() != 0.25 {
		t.Fatalf("start level %g", rc.Level())
	}
	for i := 0; i < 200; i++ {
		ct.Reset()
		if !ct.FullRange.Contains(w.BasePosition("target")) || !ct.GoalRange.Contains(w.BasePosition("target")) {
			t.Fatalf("target %v outside range", w.BasePosition("target"))
		}
	}
	if rc.Advance(0.5) {
		t.Errorf("advanced on a low success rate")
	}
	for i := 0; i < 5; i++ {
		rc.Advance(0.9)
	}
	if rc.Level() != 1 || rc.Advance(1) {
		t.Errorf("level %g after promotions", rc.Level())
	}
}

func TestStackObjectsApart(t *testing.T) {
	tk, w, _ := newTask(t, Stack, Sparse)
	for i := 0; i < 200; i++ {
		tk.Reset()
		if d := w.BasePosition("object1").DistTo(w.BasePosition("object2")); d < 0.1 {
			t.Fatalf("objects %g apart", d)
		}
		g := tk.Goal()
		if math.Abs(g[10]-g[7]-0.04) > 1e-6 {
			t.Fatalf("target2 not on target1: %v", g)
		}
	}
}
