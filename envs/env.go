// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package envs assembles simulator, robot and task into goal-conditioned
// environments, and keeps the registry of standard environment ids.
package envs

import (
	"errors"
	"fmt"
	"log"

	"github.com/ccnlab/manipgym/sim"
	"github.com/ccnlab/manipgym/task"
	"github.com/emer/emergent/env"
	"github.com/emer/etable/etensor"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// ErrEpisodeDone is returned when stepping a finished episode
var ErrEpisodeDone = errors.New("episode is done, call Reset")

// Observation is the goal-conditioned observation
type Observation struct {
	Observation  []float64 `desc:"robot observation followed by task observation"`
	AchievedGoal []float64 `desc:"goal achieved in the current state"`
	DesiredGoal  []float64 `desc:"goal of the episode"`
}

// TimeStep is the result of one step
type TimeStep struct {
	Obs        Observation
	Reward     float64
	Terminated bool `desc:"the task was solved"`
	Truncated  bool `desc:"the step budget ran out"`
	Info       task.Info
}

// Env is a goal-conditioned manipulation environment.  It has a gym-like
// interface (Seed, Reset, StepAction) and also implements the emergent
// env.Env interface, with the action given through Action and applied by
// Step.
type Env struct {
	Nm          string          `desc:"name of this environment"`
	Dsc         string          `desc:"description of this environment"`
	Spec        Spec            `desc:"registry entry this environment was made from"`
	Sim         sim.Sim         `view:"-" desc:"simulator"`
	Robot       sim.Robot       `view:"-" desc:"robot"`
	Task        task.Task       `view:"-" desc:"task"`
	Rand        *rand.Rand      `view:"-" desc:"random source shared with the task"`
	Run         env.Ctr         `view:"inline" desc:"current run of model as provided during Init"`
	Episode     env.Ctr         `view:"inline" desc:"number of episodes started"`
	Trial       env.Ctr         `view:"inline" desc:"steps taken in the current episode"`
	EpisodeID   uuid.UUID       `desc:"id of the current episode"`
	Done        bool            `inactive:"+" desc:"current episode has terminated or been truncated"`
	PendingAct  []float64       `desc:"action applied by the next Step"`
	CurObs      etensor.Float64 `desc:"current observation, returned as state"`
	CurAchieved etensor.Float64 `desc:"current achieved goal, returned as state"`
	CurGoal     etensor.Float64 `desc:"current desired goal, returned as state"`
	CurReward   etensor.Float64 `desc:"last reward, returned as state"`
	CurSuccess  etensor.Float64 `desc:"1 if the last step solved the task, returned as state"`
}

// NewEnv builds the environment described by sp on a backend
func NewEnv(sp Spec, be Backend) (*Env, error) {
	s, robot, err := be(sp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sp.ID, err)
	}
	rnd := rand.New(rand.NewSource(0))
	tk, err := task.New(sp.Kind, task.Params{
		Sim:        s,
		Rand:       rnd,
		EEPosition: robot.EEPosition,
		Reward:     sp.Reward,
		RobotBody:  robot.Name(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sp.ID, err)
	}
	ev := &Env{Nm: sp.ID, Spec: sp, Sim: s, Robot: robot, Task: tk, Rand: rnd}
	ev.Dsc = fmt.Sprintf("%v task, %v reward, %v control, %v actions, %d steps",
		sp.Kind, sp.Reward, sp.Control, sp.Action, sp.MaxEpisodeSteps)
	ev.Init(0)
	return ev, nil
}

func (ev *Env) Name() string { return ev.Nm }
func (ev *Env) Desc() string { return ev.Dsc }

func (ev *Env) Validate() error {
	if ev.Sim == nil || ev.Robot == nil || ev.Task == nil {
		return fmt.Errorf("%s: simulator, robot and task must be set", ev.Nm)
	}
	return nil
}

// Seed reseeds the random source used for goal sampling
func (ev *Env) Seed(seed uint64) {
	ev.Rand.Seed(seed)
}

// Init resets the counters and starts a new episode
func (ev *Env) Init(run int) {
	ev.Run.Scale = env.Run
	ev.Episode.Scale = env.Episode
	ev.Trial.Scale = env.Trial
	ev.Run.Init()
	ev.Episode.Init()
	ev.Trial.Init()
	ev.Run.Cur = run
	ev.Episode.Cur = -1
	ev.Reset()
}

// Reset starts a new episode: robot and task are reset with rendering off
func (ev *Env) Reset() (Observation, task.Info) {
	ev.resetScene()
	ev.EpisodeID = uuid.New()
	ev.Episode.Incr()
	ev.Trial.Init()
	ev.Done = false
	ev.PendingAct = nil
	obs := ev.observe()
	ev.CurReward.SetFloat1D(0, 0)
	ev.CurSuccess.SetFloat1D(0, 0)
	return obs, task.Info{"episode_id": ev.EpisodeID.String()}
}

// resetScene resets robot and task with rendering off, turning it back on
// even if a reset panics.
func (ev *Env) resetScene() {
	ev.Sim.SetRendering(false)
	defer ev.Sim.SetRendering(true)
	ev.Robot.Reset()
	ev.Task.Reset()
}

// ActionSpace is the space StepAction accepts
func (ev *Env) ActionSpace() Space {
	if ev.Spec.Action == task.Discrete {
		return DiscreteSpace(ev.Robot.ActionSize())
	}
	return ContinuousSpace(ev.Robot.ActionSize())
}

// ObservationSpace gives the length of each observation part
func (ev *Env) ObservationSpace() map[string][]int {
	return map[string][]int{
		"observation":   {ev.CurObs.Len()},
		"achieved_goal": {ev.CurAchieved.Len()},
		"desired_goal":  {ev.CurGoal.Len()},
	}
}

// StepAction applies act, advances the simulator one step and scores the
// result.  Discrete actions are a single index.
func (ev *Env) StepAction(act []float64) (TimeStep, error) {
	if ev.Done {
		return TimeStep{}, fmt.Errorf("%s: %w", ev.Nm, ErrEpisodeDone)
	}
	cmd := act
	if ev.Spec.Action == task.Discrete {
		if !ev.ActionSpace().Contains(act) {
			return TimeStep{}, fmt.Errorf("%s: invalid discrete action %v", ev.Nm, act)
		}
		cmd, _ = DecodeDiscrete(int(act[0]), ev.Robot.ActionSize())
	}
	if err := ev.Robot.SetAction(cmd); err != nil {
		return TimeStep{}, fmt.Errorf("%s: %w", ev.Nm, err)
	}
	ev.Sim.Step()
	ev.Trial.Incr()

	obs := ev.observe()
	success := task.Success(ev.Task, obs.AchievedGoal, obs.DesiredGoal)
	info := task.Info{"is_success": success, "episode_id": ev.EpisodeID.String()}
	ts := TimeStep{
		Obs:        obs,
		Reward:     task.Reward(ev.Task, obs.AchievedGoal, obs.DesiredGoal, info),
		Terminated: success,
		Truncated:  ev.Trial.Cur >= ev.Spec.MaxEpisodeSteps,
		Info:       info,
	}
	info["TimeLimit.truncated"] = ts.Truncated && !ts.Terminated
	ev.Done = ts.Terminated || ts.Truncated
	ev.CurReward.SetFloat1D(0, ts.Reward)
	if success {
		ev.CurSuccess.SetFloat1D(0, 1)
	} else {
		ev.CurSuccess.SetFloat1D(0, 0)
	}
	return ts, nil
}

// observe collects the current observation into the state tensors
func (ev *Env) observe() Observation {
	obs := Observation{
		Observation:  append(ev.Robot.Obs(), ev.Task.Obs()...),
		AchievedGoal: ev.Task.AchievedGoal(),
		DesiredGoal:  ev.Task.Goal(),
	}
	setTensor(&ev.CurObs, obs.Observation)
	setTensor(&ev.CurAchieved, obs.AchievedGoal)
	setTensor(&ev.CurGoal, obs.DesiredGoal)
	if ev.CurReward.Len() != 1 {
		setTensor(&ev.CurReward, []float64{0})
		setTensor(&ev.CurSuccess, []float64{0})
	}
	return obs
}

func setTensor(tsr *etensor.Float64, vals []float64) {
	if tsr.Len() != len(vals) {
		tsr.SetShape([]int{len(vals)}, nil, []string{"N"})
	}
	copy(tsr.Values, vals)
}

// Step applies the pending action (a no-op if none was given), starting a
// new episode first if the last one is done.
func (ev *Env) Step() bool {
	if ev.Done {
		ev.Reset()
	}
	act := ev.PendingAct
	if act == nil {
		act = ev.noop()
	}
	ev.PendingAct = nil
	if _, err := ev.StepAction(act); err != nil {
		log.Println(err)
		return false
	}
	return true
}

func (ev *Env) noop() []float64 {
	if ev.Spec.Action == task.Discrete {
		return []float64{0}
	}
	return make([]float64, ev.Robot.ActionSize())
}

func (ev *Env) States() env.Elements {
	return env.Elements{
		{Name: "Observation", Shape: []int{ev.CurObs.Len()}, DimNames: []string{"N"}},
		{Name: "AchievedGoal", Shape: []int{ev.CurAchieved.Len()}, DimNames: []string{"N"}},
		{Name: "DesiredGoal", Shape: []int{ev.CurGoal.Len()}, DimNames: []string{"N"}},
		{Name: "Reward", Shape: []int{1}, DimNames: []string{"N"}},
		{Name: "Success", Shape: []int{1}, DimNames: []string{"N"}},
	}
}

func (ev *Env) State(element string) etensor.Tensor {
	switch element {
	case "Observation":
		return &ev.CurObs
	case "AchievedGoal":
		return &ev.CurAchieved
	case "DesiredGoal":
		return &ev.CurGoal
	case "Reward":
		return &ev.CurReward
	case "Success":
		return &ev.CurSuccess
	}
	return nil
}

func (ev *Env) Counters() []env.TimeScales {
	return []env.TimeScales{env.Run, env.Episode, env.Trial}
}

func (ev *Env) Counter(scale env.TimeScales) (cur, prv int, chg bool) {
	switch scale {
	case env.Run:
		return ev.Run.Query()
	case env.Episode:
		return ev.Episode.Query()
	case env.Trial:
		return ev.Trial.Query()
	}
	return -1, -1, false
}

func (ev *Env) Actions() env.Elements {
	sp := ev.ActionSpace()
	return env.Elements{
		{Name: "Action", Shape: []int{sp.Size}, DimNames: []string{"N"}},
	}
}

// Action sets the action applied by the next Step
func (ev *Env) Action(element string, input etensor.Tensor) {
	act := make([]float64, input.Len())
	for i := range act {
		act[i] = input.FloatVal1D(i)
	}
	ev.PendingAct = act
}

// Render returns a text snapshot of the scene when the simulator provides
// one.
func (ev *Env) Render() string {
	if st, ok := ev.Sim.(fmt.Stringer); ok {
		return st.String()
	}
	return ev.Nm
}

func (ev *Env) Close() error {
	return ev.Sim.Close()
}
