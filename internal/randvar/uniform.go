// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package randvar

import (
	"math"

	"golang.org/x/exp/rand"
)

// Uniform generates draws from a uniform distribution over [min, max).
type Uniform struct {
	rng      *rand.Rand
	min, max float64
}

// NewUniform constructs a new Uniform generator with the given parameters.
func NewUniform(rng *rand.Rand, min, max float64) *Uniform {
	return &Uniform{rng: ensureRand(rng), min: min, max: max}
}

// Float64 returns a random value drawn from the distribution.
func (g *Uniform) Float64() float64 {
	return g.min + g.rng.Float64()*(g.max-g.min)
}

// Sequential generates a deterministic increasing ramp, useful as an
// adversarial fully-ordered input.
type Sequential struct {
	base, step float64
}

// NewSequential constructs a Sequential generator advancing by step.
func NewSequential(step float64) *Sequential {
	return &Sequential{step: step}
}

// Float64 returns the next value of the ramp.
func (g *Sequential) Float64() float64 {
	g.base += g.step
	return g.base
}

// Rounded draws from an underlying distribution and rounds to the nearest
// 1/steps increment, concentrating mass on a small lattice of repeated
// values.
type Rounded struct {
	dist  Distribution
	steps float64
}

// NewRounded constructs a Rounded generator over dist with the given number
// of lattice steps per unit.
func NewRounded(dist Distribution, steps int) *Rounded {
	return &Rounded{dist: dist, steps: float64(steps)}
}

// Float64 returns a draw rounded to the lattice.
func (g *Rounded) Float64() float64 {
	return math.Round(g.dist.Float64()*g.steps) / g.steps
}

// Mix draws from one of several distributions, choosing uniformly at random
// for each sample.
type Mix struct {
	rng   *rand.Rand
	dists []Distribution
}

// NewMix constructs a Mix over the given distributions.
func NewMix(rng *rand.Rand, dists ...Distribution) *Mix {
	return &Mix{rng: ensureRand(rng), dists: dists}
}

// Float64 returns a draw from a randomly chosen component.
func (g *Mix) Float64() float64 {
	return g.dists[g.rng.Intn(len(g.dists))].Float64()
}
