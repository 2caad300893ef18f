// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package randvar

import (
	"math"

	"golang.org/x/exp/rand"
)

// Normal generates draws from a normal distribution with the given mean and
// standard deviation.
type Normal struct {
	rng          *rand.Rand
	mean, stddev float64
}

// NewNormal constructs a new Normal generator with the given parameters.
func NewNormal(rng *rand.Rand, mean, stddev float64) *Normal {
	return &Normal{rng: ensureRand(rng), mean: mean, stddev: stddev}
}

// Float64 returns a random value drawn from the distribution.
func (g *Normal) Float64() float64 {
	return g.mean + g.stddev*g.rng.NormFloat64()
}

// Gamma generates draws from a gamma distribution with shape alpha and rate
// lambda (mean alpha/lambda), using the Marsaglia-Tsang method. Small alpha
// (< 1) produces a severely right-skewed distribution whose low quantiles
// span many orders of magnitude, a useful stress case for tail accuracy.
type Gamma struct {
	rng         *rand.Rand
	alpha, rate float64
}

// NewGamma constructs a new Gamma generator with the given shape and rate.
func NewGamma(rng *rand.Rand, alpha, rate float64) *Gamma {
	return &Gamma{rng: ensureRand(rng), alpha: alpha, rate: rate}
}

// Float64 returns a random value drawn from the distribution.
func (g *Gamma) Float64() float64 {
	a := g.alpha
	boost := 1.0
	if a < 1 {
		// Gamma(a) = Gamma(a+1) * U^(1/a).
		boost = math.Pow(g.rng.Float64(), 1/a)
		a++
	}
	d := a - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := g.rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := g.rng.Float64()
		if u < 1-0.0331*x*x*x*x || math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return boost * d * v / g.rate
		}
	}
}
