// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ccnlab/manipgym/config"
	"github.com/ccnlab/manipgym/envs"
	"github.com/ccnlab/manipgym/her"
	"github.com/ccnlab/manipgym/policy"
	"github.com/ccnlab/manipgym/task"
	"github.com/emer/empi/mpi"
	"github.com/emer/etable/agg"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"golang.org/x/exp/rand"
)

// CurriculumWindow is the number of episodes over which the success rate
// for curriculum promotion is measured
const CurriculumWindow = 10

// Runner rolls out episodes of one environment and logs them
type Runner struct {
	Cfg     *config.Config `desc:"run configuration"`
	Env     *envs.Env      `desc:"environment"`
	Policy  *policy.Policy `desc:"scripted policy"`
	Rand    *rand.Rand     `view:"-" desc:"random source for the policy"`
	EpcLog  *etable.Table  `view:"no-inline" desc:"one row per episode"`
	LogFile io.Writer      `view:"-" desc:"episode log file, nil for none"`
	Out     io.Writer      `view:"-" desc:"where summaries are printed, nil for mpi.Printf"`
}

// NewRunner makes the environment named by cf.  The seed is offset by the
// mpi rank so that parallel runs sample different goals.
func NewRunner(cf *config.Config) (*Runner, error) {
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	id, err := cf.EnvID()
	if err != nil {
		return nil, err
	}
	ev, err := envs.NewRegistry().Make(id, envs.Kinematic)
	if err != nil {
		return nil, err
	}
	seed := cf.Seed + uint64(mpi.WorldRank())
	ev.Seed(seed)
	rn := &Runner{Cfg: cf, Env: ev, Rand: rand.New(rand.NewSource(seed))}
	rn.Policy = policy.ForEnv(ev)
	rn.Policy.PExplore = cf.PExplore
	rn.EpcLog = &etable.Table{}
	rn.ConfigEpcLog(rn.EpcLog)
	return rn, nil
}

// Act returns the next action of the configured policy, as a discrete
// index for discrete environments.  Discrete moves take priority over the
// finger command, which is sent once the end effector is in place.
func (rn *Runner) Act() []float64 {
	sp := rn.Env.ActionSpace()
	if rn.Cfg.Policy == config.Random {
		return sp.Sample(rn.Rand)
	}
	act := rn.Policy.Act(policy.SceneOf(rn.Env), rn.Rand)
	if sp.Discrete() {
		return []float64{float64(envs.EncodeDiscreteMove(act, 3, 0.5))}
	}
	return act
}

// Episode records one episode and logs it
func (rn *Runner) Episode() (*her.Episode, error) {
	rn.Policy.Init()
	ep, err := her.Record(rn.Env, rn.Act)
	if err != nil {
		return ep, err
	}
	rn.LogEpisode(rn.EpcLog, ep)
	return ep, nil
}

// Rollout runs the configured number of episodes.  Curriculum tasks are
// advanced on the success rate of each window of episodes.
func (rn *Runner) Rollout() error {
	cur, _ := rn.Env.Task.(task.Curriculum)
	solved := 0
	for i := 0; i < rn.Cfg.Episodes; i++ {
		ep, err := rn.Episode()
		if err != nil {
			return err
		}
		if ep.Solved() {
			solved++
		}
		if cur != nil && (i+1)%CurriculumWindow == 0 {
			if cur.Advance(float64(solved) / CurriculumWindow) {
				rn.Printf("episode %d: curriculum level %g\n", i, cur.Level())
			}
			solved = 0
		}
	}
	ix := etable.NewIdxView(rn.EpcLog)
	rn.Printf("%s: %d episodes, mean return %.3f, success rate %.3f, mean steps %.1f\n",
		rn.Env.Name(), rn.EpcLog.Rows,
		agg.Agg(ix, "Return", agg.AggMean)[0],
		agg.Agg(ix, "Solved", agg.AggMean)[0],
		agg.Agg(ix, "Steps", agg.AggMean)[0])
	return nil
}

// Relabel runs the configured number of episodes and relabels each with
// future goals, reporting original and relabeled rewards.
func (rn *Runner) Relabel() error {
	sm := &her.Sampler{Task: rn.Env.Task, K: rn.Cfg.FutureK, Rand: rn.Rand}
	var orig, relab, succ float64
	for i := 0; i < rn.Cfg.Episodes; i++ {
		ep, err := rn.Episode()
		if err != nil {
			return err
		}
		bt, err := sm.Relabel(ep)
		if err != nil {
			return err
		}
		orig += ep.Return() / float64(len(ep.Steps))
		relab += bt.MeanReward()
		succ += bt.SuccessRate()
	}
	n := float64(rn.Cfg.Episodes)
	rn.Printf("%s: k=%d, mean reward %.3f, relabeled %.3f, relabeled success rate %.3f\n",
		rn.Env.Name(), sm.K, orig/n, relab/n, succ/n)
	return nil
}

func (rn *Runner) Printf(format string, args ...any) {
	if rn.Out != nil {
		fmt.Fprintf(rn.Out, format, args...)
		return
	}
	mpi.Printf(format, args...)
}

// OpenLog creates the episode log file, if one is configured.  The
// returned close func is never nil.
func (rn *Runner) OpenLog() (func(), error) {
	if rn.Cfg.LogFile == "" {
		return func() {}, nil
	}
	f, err := os.Create(rn.Cfg.LogFile)
	if err != nil {
		return func() {}, err
	}
	rn.LogFile = f
	rn.Printf("Saving episode log to: %v\n", rn.Cfg.LogFile)
	return func() {
		if err := f.Close(); err != nil {
			log.Println(err)
		}
	}, nil
}

//////////////////////////////////////////////
//  EpcLog

// LogEpisode adds a row for ep and writes it to the log file
func (rn *Runner) LogEpisode(dt *etable.Table, ep *her.Episode) {
	row := dt.Rows
	dt.SetNumRows(row + 1)

	solved := 0.0
	if ep.Solved() {
		solved = 1
	}
	dt.SetCellFloat("Run", row, float64(rn.Env.Run.Cur))
	dt.SetCellFloat("Episode", row, float64(rn.Env.Episode.Cur))
	dt.SetCellString("EpisodeID", row, ep.ID.String())
	dt.SetCellFloat("Steps", row, float64(len(ep.Steps)))
	dt.SetCellFloat("Return", row, ep.Return())
	dt.SetCellFloat("Solved", row, solved)

	if rn.LogFile != nil {
		if row == 0 {
			dt.WriteCSVHeaders(rn.LogFile, etable.Tab)
		}
		dt.WriteCSVRow(rn.LogFile, row, etable.Tab)
	}
}

func (rn *Runner) ConfigEpcLog(dt *etable.Table) {
	dt.SetMetaData("name", "EpcLog")
	dt.SetMetaData("desc", "Record of episodes of "+rn.Env.Name())

	sch := etable.Schema{
		{Name: "Run", Type: etensor.INT64, CellShape: nil, DimNames: nil},
		{Name: "Episode", Type: etensor.INT64, CellShape: nil, DimNames: nil},
		{Name: "EpisodeID", Type: etensor.STRING, CellShape: nil, DimNames: nil},
		{Name: "Steps", Type: etensor.INT64, CellShape: nil, DimNames: nil},
		{Name: "Return", Type: etensor.FLOAT64, CellShape: nil, DimNames: nil},
		{Name: "Solved", Type: etensor.FLOAT64, CellShape: nil, DimNames: nil},
	}
	dt.SetFromSchema(sch, 0)
}
