// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package envs

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ccnlab/manipgym/sim"
	"github.com/ccnlab/manipgym/sim/kinsim"
	"github.com/ccnlab/manipgym/task"
)

// MaxEpisodeSteps is the step budget of every standard environment
const MaxEpisodeSteps = 50

// ErrUnknownID is returned for ids that are not registered
var ErrUnknownID = errors.New("unknown environment id")

// ErrDuplicateID is returned when registering an id twice
var ErrDuplicateID = errors.New("environment id already registered")

// Spec is one registry entry
type Spec struct {
	ID              string            `desc:"environment id, e.g. PandaPickAndPlaceDense-v3"`
	Kind            task.Kinds        `desc:"task kind"`
	Reward          task.RewardTypes  `desc:"reward type"`
	Control         task.ControlTypes `desc:"robot control type"`
	Action          task.ActionTypes  `desc:"action space type"`
	MaxEpisodeSteps int               `desc:"episodes are truncated after this many steps"`
}

// ID returns the standard id for a combination:
// "Panda" + kind + [Joints] + [Dense] + [Discrete] + version.  The
// curriculum variant of reach is registered as PandaReach...-v4.
func ID(kind task.Kinds, rt task.RewardTypes, ct task.ControlTypes, at task.ActionTypes) string {
	name, version := kind.String(), "v3"
	if kind == task.ReachCurriculum {
		name, version = task.Reach.String(), "v4"
	}
	id := "Panda" + name
	if ct == task.Joints {
		id += "Joints"
	}
	if rt == task.Dense {
		id += "Dense"
	}
	if at == task.Discrete {
		id += "Discrete"
	}
	return id + "-" + version
}

// SpecFor parses type names ("pickandplace", "dense", "ee", "continuous")
// into a standard spec.
func SpecFor(kind, reward, control, action string) (Spec, error) {
	var sp Spec
	var err error
	if sp.Kind, err = task.ParseKind(kind); err != nil {
		return sp, err
	}
	if sp.Reward, err = task.ParseRewardType(reward); err != nil {
		return sp, err
	}
	if sp.Control, err = task.ParseControlType(control); err != nil {
		return sp, err
	}
	if sp.Action, err = task.ParseActionType(action); err != nil {
		return sp, err
	}
	sp.ID = ID(sp.Kind, sp.Reward, sp.Control, sp.Action)
	sp.MaxEpisodeSteps = MaxEpisodeSteps
	return sp, nil
}

// Backend supplies the simulator and robot for a new environment
type Backend func(sp Spec) (sim.Sim, sim.Robot, error)

// Kinematic is the Backend using the kinematic reference simulator
func Kinematic(sp Spec) (sim.Sim, sim.Robot, error) {
	w := kinsim.NewWorld()
	ar, err := kinsim.NewArm(w, sp.Control == task.Joints)
	if err != nil {
		return nil, nil, err
	}
	return w, ar, nil
}

// Registry maps ids to specs
type Registry struct {
	specs map[string]Spec
}

// StandardSpecs returns every standard combination of reward, control and
// action type for every task kind.
func StandardSpecs() []Spec {
	var specs []Spec
	for rt := task.RewardTypes(0); rt < task.RewardTypesN; rt++ {
		for ct := task.ControlTypes(0); ct < task.ControlTypesN; ct++ {
			for at := task.ActionTypes(0); at < task.ActionTypesN; at++ {
				for kind := task.Kinds(0); kind < task.KindsN; kind++ {
					specs = append(specs, Spec{
						ID:              ID(kind, rt, ct, at),
						Kind:            kind,
						Reward:          rt,
						Control:         ct,
						Action:          at,
						MaxEpisodeSteps: MaxEpisodeSteps,
					})
				}
			}
		}
	}
	return specs
}

// NewRegistry returns a registry holding the StandardSpecs.  It panics if
// they do not register cleanly, which only a broken ID scheme can cause.
func NewRegistry() *Registry {
	rg, err := NewRegistryFrom(StandardSpecs()...)
	if err != nil {
		panic(err)
	}
	return rg
}

// NewRegistryFrom returns a registry holding specs
func NewRegistryFrom(specs ...Spec) (*Registry, error) {
	rg := &Registry{specs: make(map[string]Spec)}
	for _, sp := range specs {
		if err := rg.Register(sp); err != nil {
			return nil, err
		}
	}
	return rg, nil
}

// Register adds sp, failing if its id is taken
func (rg *Registry) Register(sp Spec) error {
	if _, has := rg.specs[sp.ID]; has {
		return fmt.Errorf("%w: %q", ErrDuplicateID, sp.ID)
	}
	if sp.ID == "" || sp.MaxEpisodeSteps <= 0 {
		return fmt.Errorf("%w: spec %q needs an id and a positive step budget", task.ErrConfig, sp.ID)
	}
	rg.specs[sp.ID] = sp
	return nil
}

// Lookup returns the spec for id
func (rg *Registry) Lookup(id string) (Spec, error) {
	sp, has := rg.specs[id]
	if !has {
		return sp, fmt.Errorf("%w: %q", ErrUnknownID, id)
	}
	return sp, nil
}

// IDs returns the registered ids in sorted order
func (rg *Registry) IDs() []string {
	ids := make([]string, 0, len(rg.specs))
	for id := range rg.specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of registered specs
func (rg *Registry) Len() int { return len(rg.specs) }

// Supported returns the error be gives for sp, nil if be can build it
func Supported(sp Spec, be Backend) error {
	s, _, err := be(sp)
	if err != nil {
		return err
	}
	return s.Close()
}

// Make builds the environment registered as id
func (rg *Registry) Make(id string, be Backend) (*Env, error) {
	sp, err := rg.Lookup(id)
	if err != nil {
		return nil, err
	}
	return NewEnv(sp, be)
}
