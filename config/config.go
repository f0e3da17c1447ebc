// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the run configuration of the command line tool.
// Values start from Defaults, are overridden by an optional .env file and
// the environment, and finally by command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/ccnlab/manipgym/envs"
	"github.com/ccnlab/manipgym/task"
	"github.com/joho/godotenv"
)

// Policies that can drive rollouts
const (
	Scripted = "scripted"
	Random   = "random"
)

// Config is the run configuration
type Config struct {
	Env      string  `env:"MANIP_ENV" desc:"registered environment id; when empty it is built from Kind, Reward, Control and Action"`
	Kind     string  `env:"MANIP_KIND" desc:"task kind, e.g. pickandplace"`
	Reward   string  `env:"MANIP_REWARD" desc:"sparse or dense"`
	Control  string  `env:"MANIP_CONTROL" desc:"ee or joints"`
	Action   string  `env:"MANIP_ACTION" desc:"continuous or discrete"`
	Episodes int     `env:"MANIP_EPISODES" desc:"number of episodes to roll out"`
	Seed     uint64  `env:"MANIP_SEED" desc:"base random seed, offset by the mpi rank"`
	Policy   string  `env:"MANIP_POLICY" desc:"scripted or random"`
	PExplore float64 `env:"MANIP_PEXPLORE" desc:"probability of a random action in scripted rollouts"`
	FutureK  int     `env:"MANIP_FUTURE_K" desc:"future goals per step when relabeling"`
	LogFile  string  `env:"MANIP_LOG" desc:"episode log file, tab separated; none if empty"`
}

func (cf *Config) Defaults() {
	cf.Kind = "pickandplace"
	cf.Reward = "sparse"
	cf.Control = "ee"
	cf.Action = "continuous"
	cf.Episodes = 10
	cf.Seed = 1
	cf.Policy = Scripted
	cf.PExplore = 0.1
	cf.FutureK = 4
}

// Load returns the defaults overridden by the first of envFiles that
// exists, then by the environment.
func Load(envFiles ...string) (*Config, error) {
	cf := &Config{}
	cf.Defaults()
	for _, fn := range envFiles {
		err := godotenv.Load(fn)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", fn, err)
		}
	}
	if err := env.Parse(cf); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cf, nil
}

// Validate checks the value ranges
func (cf *Config) Validate() error {
	switch {
	case cf.Episodes <= 0:
		return fmt.Errorf("%w: episodes must be positive, got %d", task.ErrConfig, cf.Episodes)
	case cf.FutureK < 0:
		return fmt.Errorf("%w: future k must not be negative, got %d", task.ErrConfig, cf.FutureK)
	case cf.PExplore < 0 || cf.PExplore > 1:
		return fmt.Errorf("%w: pexplore %g is not a probability", task.ErrConfig, cf.PExplore)
	case cf.Policy != Scripted && cf.Policy != Random:
		return fmt.Errorf("%w: unknown policy %q", task.ErrConfig, cf.Policy)
	}
	return nil
}

// EnvID is the environment id to run
func (cf *Config) EnvID() (string, error) {
	if cf.Env != "" {
		return cf.Env, nil
	}
	sp, err := envs.SpecFor(cf.Kind, cf.Reward, cf.Control, cf.Action)
	if err != nil {
		return "", err
	}
	return sp.ID, nil
}
