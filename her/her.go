// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package her does hindsight experience replay relabeling: recorded
// transitions are re-scored against goals that were actually achieved
// later in the same episode, using the batched reward of the task.
package her

import (
	"errors"
	"fmt"

	"github.com/ccnlab/manipgym/envs"
	"github.com/ccnlab/manipgym/task"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/tsragg"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// ErrEmptyEpisode is returned when relabeling an episode with no steps
var ErrEmptyEpisode = errors.New("her: episode has no steps")

// Transition is one recorded step
type Transition struct {
	Action       []float64
	Observation  []float64
	AchievedGoal []float64 `desc:"goal achieved after the step"`
	DesiredGoal  []float64
	Reward       float64
	Success      bool
}

// Episode is the sequence of steps of one episode
type Episode struct {
	ID    uuid.UUID
	Steps []Transition
}

// Return is the sum of the recorded rewards
func (ep *Episode) Return() float64 {
	r := 0.0
	for _, st := range ep.Steps {
		r += st.Reward
	}
	return r
}

// Solved is true if the last step solved the task
func (ep *Episode) Solved() bool {
	n := len(ep.Steps)
	return n > 0 && ep.Steps[n-1].Success
}

// Record runs one episode on ev, taking actions from act until the
// episode terminates or is truncated.
func Record(ev *envs.Env, act func() []float64) (*Episode, error) {
	ev.Reset()
	ep := &Episode{ID: ev.EpisodeID}
	for {
		a := act()
		ts, err := ev.StepAction(a)
		if err != nil {
			return ep, err
		}
		ep.Steps = append(ep.Steps, Transition{
			Action:       a,
			Observation:  ts.Obs.Observation,
			AchievedGoal: ts.Obs.AchievedGoal,
			DesiredGoal:  ts.Obs.DesiredGoal,
			Reward:       ts.Reward,
			Success:      ts.Terminated,
		})
		if ts.Terminated || ts.Truncated {
			return ep, nil
		}
	}
}

// Batch is a relabeled episode.  Row i*(K+1) holds step i with its
// original goal, the following K rows the same step with future goals.
type Batch struct {
	Achieved *mat.Dense      `desc:"achieved goal per row"`
	Desired  *mat.Dense      `desc:"desired goal per row, original or relabeled"`
	Step     []int           `desc:"step index of each row"`
	Rewards  etensor.Float64 `desc:"reward per row"`
	Success  []bool          `desc:"success per row"`
}

// Rows is the number of rows in the batch
func (bt *Batch) Rows() int {
	r, _ := bt.Achieved.Dims()
	return r
}

// MeanReward is the mean reward over all rows
func (bt *Batch) MeanReward() float64 {
	return tsragg.Mean(&bt.Rewards)
}

// SuccessRate is the fraction of rows that are successes
func (bt *Batch) SuccessRate() float64 {
	n := 0
	for _, s := range bt.Success {
		if s {
			n++
		}
	}
	return float64(n) / float64(len(bt.Success))
}

// Sampler relabels episodes with the future strategy
type Sampler struct {
	Task task.Task  `desc:"task whose reward is recomputed"`
	K    int        `desc:"number of future goals per step"`
	Rand *rand.Rand `desc:"random source for picking future steps"`
}

// Relabel builds the (K+1)*T row batch for ep.  Rewards and successes of
// all rows come from a single batched call on the task.
func (sm *Sampler) Relabel(ep *Episode) (*Batch, error) {
	if sm.Task == nil || sm.Rand == nil || sm.K < 0 {
		return nil, fmt.Errorf("%w: sampler needs a task, a random source and K >= 0", task.ErrConfig)
	}
	nt := len(ep.Steps)
	if nt == 0 {
		return nil, fmt.Errorf("%w: %v", ErrEmptyEpisode, ep.ID)
	}
	dim := len(ep.Steps[0].AchievedGoal)
	rows := nt * (sm.K + 1)
	bt := &Batch{
		Achieved: mat.NewDense(rows, dim, nil),
		Desired:  mat.NewDense(rows, dim, nil),
		Step:     make([]int, rows),
	}
	r := 0
	for t, st := range ep.Steps {
		if len(st.AchievedGoal) != dim || len(st.DesiredGoal) != dim {
			return nil, fmt.Errorf("her: step %d of %v has goal lengths %d, %d, want %d", t, ep.ID, len(st.AchievedGoal), len(st.DesiredGoal), dim)
		}
		bt.Achieved.SetRow(r, st.AchievedGoal)
		bt.Desired.SetRow(r, st.DesiredGoal)
		bt.Step[r] = t
		r++
		for k := 0; k < sm.K; k++ {
			f := t + sm.Rand.Intn(nt-t)
			bt.Achieved.SetRow(r, st.AchievedGoal)
			bt.Desired.SetRow(r, ep.Steps[f].AchievedGoal)
			bt.Step[r] = t
			r++
		}
	}
	info := task.Info{"episode_id": ep.ID.String()}
	rew := sm.Task.ComputeReward(bt.Achieved, bt.Desired, info)
	bt.Rewards.SetShape([]int{rows}, nil, []string{"Row"})
	copy(bt.Rewards.Values, rew)
	bt.Success = sm.Task.IsSuccess(bt.Achieved, bt.Desired)
	return bt, nil
}
