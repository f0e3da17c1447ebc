// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// manipgym lists, rolls out and relabels the goal-conditioned manipulation
// environments on the kinematic simulator.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ccnlab/manipgym/config"
	"github.com/ccnlab/manipgym/envs"
	"github.com/emer/empi/mpi"
	"github.com/spf13/cobra"
)

func main() {
	cf, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}
	if err := newRootCmd(cf).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cf *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "manipgym",
		Short:        "Goal-conditioned robot manipulation environments",
		SilenceUsage: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cf.Env, "env", cf.Env, "environment id, overrides kind, reward, control and action")
	pf.StringVar(&cf.Kind, "kind", cf.Kind, "task kind")
	pf.StringVar(&cf.Reward, "reward", cf.Reward, "reward type: sparse or dense")
	pf.StringVar(&cf.Control, "control", cf.Control, "control type: ee or joints")
	pf.StringVar(&cf.Action, "action", cf.Action, "action type: continuous or discrete")
	pf.IntVar(&cf.Episodes, "episodes", cf.Episodes, "number of episodes")
	pf.Uint64Var(&cf.Seed, "seed", cf.Seed, "random seed")
	pf.StringVar(&cf.Policy, "policy", cf.Policy, "policy: scripted or random")
	pf.Float64Var(&cf.PExplore, "pexplore", cf.PExplore, "probability of a random action")
	pf.StringVar(&cf.LogFile, "log", cf.LogFile, "episode log file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the registered environments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mpi.WorldRank() == 0 {
				listEnvs(cmd.OutOrStdout(), envs.NewRegistry(), envs.Kinematic)
			}
			return nil
		},
	}

	rolloutCmd := &cobra.Command{
		Use:   "rollout",
		Short: "Roll out episodes and log them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cf, (*Runner).Rollout)
		},
	}

	relabelCmd := &cobra.Command{
		Use:   "relabel",
		Short: "Roll out episodes and relabel them with future goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cf, (*Runner).Relabel)
		},
	}
	relabelCmd.Flags().IntVar(&cf.FutureK, "k", cf.FutureK, "future goals per step")

	rootCmd.AddCommand(listCmd, rolloutCmd, relabelCmd)
	return rootCmd
}

// listEnvs writes one line per registered id, noting ids the backend
// cannot build.
func listEnvs(w io.Writer, rg *envs.Registry, be envs.Backend) {
	for _, id := range rg.IDs() {
		sp, _ := rg.Lookup(id)
		fmt.Fprintf(w, "%s\t%v\t%v\t%v\t%v\t%d", id, sp.Kind, sp.Reward, sp.Control, sp.Action, sp.MaxEpisodeSteps)
		if err := envs.Supported(sp, be); err != nil {
			fmt.Fprintf(w, "\tunavailable: %v", err)
		}
		fmt.Fprintln(w)
	}
}

func run(cf *config.Config, fn func(rn *Runner) error) error {
	rn, err := NewRunner(cf)
	if err != nil {
		return err
	}
	defer rn.Env.Close()
	closeLog, err := rn.OpenLog()
	if err != nil {
		log.Println(err)
	}
	defer closeLog()
	return fn(rn)
}
