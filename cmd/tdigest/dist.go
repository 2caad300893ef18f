// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package main

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/tdigest/internal/randvar"
	"golang.org/x/exp/rand"
)

// makeDistribution builds a named sample distribution over the given
// generator. The shapes mirror the scenarios the digest is tested under: a
// flat uniform, a severely skewed gamma, a narrow normal spike inside a wide
// uniform, a fully ordered ramp and a decile lattice of repeated values.
func makeDistribution(name string, rng *rand.Rand) (randvar.Distribution, error) {
	switch name {
	case "uniform":
		return randvar.NewUniform(rng, 0, 1), nil
	case "gamma":
		return randvar.NewGamma(rng, 0.1, 0.1), nil
	case "normal":
		return randvar.NewNormal(rng, 0, 1), nil
	case "mixture":
		return randvar.NewMix(rng,
			randvar.NewUniform(rng, -1, 1),
			randvar.NewNormal(rng, 0, 1e-5),
		), nil
	case "sequential":
		return randvar.NewSequential(math.Pi * 1e-5), nil
	case "repeated":
		return randvar.NewRounded(randvar.NewUniform(rng, 0, 1), 10), nil
	default:
		return nil, errors.Newf("unknown distribution %q", name)
	}
}

// exactQuantile returns the empirical q'th quantile of sorted data.
func exactQuantile(sorted []float64, q float64) float64 {
	i := int(q * float64(len(sorted)))
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

// exactCDF returns the empirical fraction of sorted data that is <= x.
func exactCDF(sorted []float64, x float64) float64 {
	n := sort.SearchFloat64s(sorted, x)
	for n < len(sorted) && sorted[n] <= x {
		n++
	}
	return float64(n) / float64(len(sorted))
}
