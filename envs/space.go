// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package envs

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// Space describes an action space.  Continuous spaces are boxes of Size
// values in Low..High; discrete spaces are the N integers 0..N-1 passed as
// a single value.
type Space struct {
	Size int     `desc:"number of continuous values, 1 for discrete spaces"`
	Low  float64 `desc:"lower bound of each continuous value"`
	High float64 `desc:"upper bound of each continuous value"`
	N    int     `desc:"number of discrete actions -- 0 for continuous"`
}

// ContinuousSpace returns a box space of size values in -1..1
func ContinuousSpace(size int) Space {
	return Space{Size: size, Low: -1, High: 1}
}

// DiscreteSpace returns the discrete space driving an actuator of the
// given size: no-op plus a positive and a negative move per dimension.
func DiscreteSpace(size int) Space {
	return Space{Size: 1, N: 2*size + 1}
}

func (sp Space) Discrete() bool { return sp.N > 0 }

// Contains reports whether act is a valid action
func (sp Space) Contains(act []float64) bool {
	if len(act) != sp.Size {
		return false
	}
	if sp.Discrete() {
		a := act[0]
		return a == math.Trunc(a) && a >= 0 && int(a) < sp.N
	}
	for _, a := range act {
		if a < sp.Low || a > sp.High {
			return false
		}
	}
	return true
}

// Sample draws a uniform action
func (sp Space) Sample(rnd *rand.Rand) []float64 {
	if sp.Discrete() {
		return []float64{float64(rnd.Intn(sp.N))}
	}
	act := make([]float64, sp.Size)
	for i := range act {
		act[i] = sp.Low + rnd.Float64()*(sp.High-sp.Low)
	}
	return act
}

// DecodeDiscrete maps a discrete action index to a continuous command for
// an actuator of the given size.  Index 0 is the no-op; index k > 0 moves
// dimension (k-1)/2 by +1 for odd k and -1 for even k.
func DecodeDiscrete(idx, size int) ([]float64, error) {
	if idx < 0 || idx > 2*size {
		return nil, fmt.Errorf("discrete action %d out of range 0..%d", idx, 2*size)
	}
	cmd := make([]float64, size)
	if idx == 0 {
		return cmd, nil
	}
	dim := (idx - 1) / 2
	if idx%2 == 1 {
		cmd[dim] = 1
	} else {
		cmd[dim] = -1
	}
	return cmd, nil
}

// EncodeDiscrete maps a continuous command to the discrete action moving
// its largest component in the same direction, or 0 if all components are
// below thr in magnitude.
func EncodeDiscrete(cmd []float64, thr float64) int {
	idx, best := 0, thr
	for i, c := range cmd {
		if math.Abs(c) < best {
			continue
		}
		best = math.Abs(c)
		if c > 0 {
			idx = 2*i + 1
		} else {
			idx = 2*i + 2
		}
	}
	return idx
}

// EncodeDiscreteMove is EncodeDiscrete over the first n components of cmd,
// the movement dimensions.  The remaining components are encoded only when
// no movement component reaches thr.
func EncodeDiscreteMove(cmd []float64, n int, thr float64) int {
	if idx := EncodeDiscrete(cmd[:n], thr); idx != 0 {
		return idx
	}
	rest := make([]float64, len(cmd))
	copy(rest[n:], cmd[n:])
	return EncodeDiscrete(rest, thr)
}
