// Copyright 2025 The Cockroach Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package randvar provides seedable random sample distributions used to
// drive digest accuracy tests and benchmarks. Generators are deliberately
// constructed from an explicit *rand.Rand so reproducibility is decided at
// the call site; there is no package-level mutable state. Generators are not
// safe for concurrent use.
package randvar

import (
	"time"

	"golang.org/x/exp/rand"
)

// Distribution produces a stream of sample values.
type Distribution interface {
	Float64() float64
}

// NewRand creates a new random number generator with the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func ensureRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
}
